package leanix

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	xerrors "github.com/matzehuels/xmigraph/pkg/errors"
	"github.com/matzehuels/xmigraph/pkg/integrations"
)

// TokenPath is the OAuth2 token endpoint relative to the instance.
const TokenPath = "/services/mtm/v1/oauth2/token"

// apiTokenClientID is the fixed client id for API-token grants.
const apiTokenClientID = "apitoken"

// ErrSessionClosed is returned by requests made through a session client
// after its [Authenticator.Do] call returned.
var ErrSessionClosed = errors.New("leanix session closed")

// Authenticator exchanges a workspace API token for bearer credentials.
// It is safe for concurrent use; each [Authenticator.Do] call gets its own
// session.
type Authenticator struct {
	instance string
	apiToken string
	http     *http.Client

	mu     sync.Mutex
	active int
}

// NewAuthenticator creates an authenticator for instance (a bare hostname
// such as "acme.leanix.net") and a workspace API token.
func NewAuthenticator(instance, apiToken string) *Authenticator {
	return &Authenticator{
		instance: instance,
		apiToken: apiToken,
		http:     integrations.NewHTTPClient(),
	}
}

// WithHTTPClient returns a copy of a that performs the token exchange and
// all session requests with h as the base client.
func (a *Authenticator) WithHTTPClient(h *http.Client) *Authenticator {
	if h == nil {
		h = integrations.NewHTTPClient()
	}
	return &Authenticator{instance: a.instance, apiToken: a.apiToken, http: h}
}

// Instance returns the configured instance host.
func (a *Authenticator) Instance() string { return a.instance }

// Validate checks the instance and token without contacting the server.
func (a *Authenticator) Validate() error {
	if err := xerrors.ValidateInstance(a.instance); err != nil && !isTestHost(a.instance) {
		return err
	}
	if a.apiToken == "" {
		return xerrors.New(xerrors.ErrCodeUnauthorized, "api token is empty")
	}
	return nil
}

// Active reports how many sessions are currently open.
func (a *Authenticator) Active() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Do acquires a bearer token, calls fn with an authorized client, and ends
// the session when fn returns or panics. Token failures are returned as
// UNAUTHORIZED or NETWORK_ERROR without calling fn.
func (a *Authenticator) Do(ctx context.Context, fn func(ctx context.Context, h *http.Client) error) error {
	if err := a.Validate(); err != nil {
		return err
	}

	tok, err := a.token(ctx)
	if err != nil {
		return err
	}

	tr := &sessionTransport{base: &oauth2.Transport{
		Source: oauth2.StaticTokenSource(tok),
		Base:   a.baseTransport(),
	}}
	a.mu.Lock()
	a.active++
	a.mu.Unlock()
	defer func() {
		tr.closed.Store(true)
		a.mu.Lock()
		a.active--
		a.mu.Unlock()
	}()

	return fn(ctx, &http.Client{Transport: tr, Timeout: a.http.Timeout})
}

func (a *Authenticator) token(ctx context.Context) (*oauth2.Token, error) {
	cfg := clientcredentials.Config{
		ClientID:     apiTokenClientID,
		ClientSecret: a.apiToken,
		TokenURL:     integrations.ServiceURL(a.instance, TokenPath, nil),
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.http)

	tok, err := cfg.Token(ctx)
	if err == nil {
		return tok, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		switch re.Response.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return nil, xerrors.Wrap(xerrors.ErrCodeUnauthorized, err, "token exchange rejected for %s", a.instance)
		}
	}
	return nil, xerrors.Wrap(xerrors.ErrCodeNetwork, err, "token exchange with %s", a.instance)
}

func (a *Authenticator) baseTransport() http.RoundTripper {
	if a.http != nil && a.http.Transport != nil {
		return a.http.Transport
	}
	return http.DefaultTransport
}

// sessionTransport refuses requests once its session has ended.
type sessionTransport struct {
	base   http.RoundTripper
	closed atomic.Bool
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.closed.Load() {
		return nil, ErrSessionClosed
	}
	return t.base.RoundTrip(req)
}

// isTestHost accepts loopback URLs so that httptest servers can stand in
// for an instance.
func isTestHost(instance string) bool {
	for _, p := range []string{"http://127.0.0.1:", "http://localhost:", "http://[::1]:"} {
		if strings.HasPrefix(instance, p) {
			return true
		}
	}
	return false
}
