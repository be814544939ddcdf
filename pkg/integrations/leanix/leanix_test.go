package leanix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/xmigraph/pkg/cache"
	xerrors "github.com/matzehuels/xmigraph/pkg/errors"
	"github.com/matzehuels/xmigraph/pkg/integrations"
)

const testToken = "secret-api-token"

// fakeWorkspace serves the token and bookmark endpoints.
type fakeWorkspace struct {
	t           *testing.T
	tokenStatus int
	listStatus  int
	tokenCalls  atomic.Int32
	listCalls   atomic.Int32

	mu        sync.Mutex
	created   []createRequest
	lastReqID string
}

func (f *fakeWorkspace) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == TokenPath:
		f.tokenCalls.Add(1)
		if f.tokenStatus != 0 {
			w.WriteHeader(f.tokenStatus)
			io.WriteString(w, `{"error":"invalid_client"}`)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "apitoken" || pass != testToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		r.ParseForm()
		if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
			f.t.Errorf("grant_type = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token":"bearer-123","token_type":"bearer","expires_in":3600}`)

	case r.URL.Path == BookmarksPath:
		if got := r.Header.Get("Authorization"); got != "Bearer bearer-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		f.lastReqID = r.Header.Get("X-Request-ID")
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			f.listCalls.Add(1)
			if f.listStatus != 0 {
				w.WriteHeader(f.listStatus)
				return
			}
			if got := r.URL.Query().Get("bookmarkType"); got != TypeVisualizer {
				f.t.Errorf("bookmarkType = %q, want %q", got, TypeVisualizer)
			}
			io.WriteString(w, `{"status":"OK","data":[{"id":"b1","name":"Overview","type":"VISUALIZER","groupKey":"freedraw","state":{"graphXml":"<mxGraphModel/>"}},{"id":"b2","name":"Other","type":"VISUALIZER"}]}`)
		case http.MethodPost:
			var req createRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				f.t.Errorf("decode create body: %v", err)
			}
			f.mu.Lock()
			f.created = append(f.created, req)
			f.mu.Unlock()
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
				"id": "new-1", "name": req.Name, "type": req.Type, "description": req.Description,
			}})
		}

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestWorkspace(t *testing.T) (*fakeWorkspace, *Authenticator) {
	t.Helper()
	ws := &fakeWorkspace{t: t}
	srv := httptest.NewServer(ws)
	t.Cleanup(srv.Close)
	auth := NewAuthenticator(srv.URL, testToken).WithHTTPClient(srv.Client())
	return ws, auth
}

func TestAuthenticatorDo(t *testing.T) {
	_, auth := newTestWorkspace(t)

	var leaked *http.Client
	err := auth.Do(context.Background(), func(ctx context.Context, h *http.Client) error {
		if auth.Active() != 1 {
			t.Errorf("Active() inside Do = %d, want 1", auth.Active())
		}
		leaked = h
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if auth.Active() != 0 {
		t.Errorf("Active() after Do = %d, want 0", auth.Active())
	}

	_, err = leaked.Get(auth.Instance() + BookmarksPath)
	if !errors.Is(err, ErrSessionClosed) {
		t.Errorf("request after session end = %v, want ErrSessionClosed", err)
	}
}

func TestAuthenticatorDoReleasesOnError(t *testing.T) {
	_, auth := newTestWorkspace(t)
	boom := errors.New("boom")

	err := auth.Do(context.Background(), func(context.Context, *http.Client) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("Do() = %v, want callback error", err)
	}
	if auth.Active() != 0 {
		t.Errorf("Active() = %d, want 0", auth.Active())
	}
}

func TestAuthenticatorDoReleasesOnPanic(t *testing.T) {
	_, auth := newTestWorkspace(t)

	func() {
		defer func() { _ = recover() }()
		_ = auth.Do(context.Background(), func(context.Context, *http.Client) error { panic("boom") })
	}()
	if auth.Active() != 0 {
		t.Errorf("Active() after panic = %d, want 0", auth.Active())
	}
}

func TestAuthenticatorRejected(t *testing.T) {
	ws, auth := newTestWorkspace(t)
	ws.tokenStatus = http.StatusUnauthorized

	called := false
	err := auth.Do(context.Background(), func(context.Context, *http.Client) error {
		called = true
		return nil
	})
	if !xerrors.Is(err, xerrors.ErrCodeUnauthorized) {
		t.Errorf("Do() = %v, want UNAUTHORIZED", err)
	}
	if called {
		t.Error("callback must not run without a token")
	}
}

func TestAuthenticatorValidate(t *testing.T) {
	tests := []struct {
		instance, token string
		code            xerrors.Code
	}{
		{"acme.leanix.net", "t", ""},
		{"", "t", xerrors.ErrCodeInvalidInstance},
		{"https://acme.leanix.net", "t", xerrors.ErrCodeInvalidInstance},
		{"acme.leanix.net", "", xerrors.ErrCodeUnauthorized},
		{"http://127.0.0.1:8080", "t", ""},
	}
	for _, tt := range tests {
		err := NewAuthenticator(tt.instance, tt.token).Validate()
		if got := xerrors.GetCode(err); got != tt.code {
			t.Errorf("Validate(%q, %q) code = %q, want %q", tt.instance, tt.token, got, tt.code)
		}
	}
}

func TestListBookmarks(t *testing.T) {
	ws, auth := newTestWorkspace(t)
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := NewClient(auth, c)

	marks, err := client.ListBookmarks(context.Background(), "", false)
	if err != nil {
		t.Fatalf("ListBookmarks() error: %v", err)
	}
	if len(marks) != 2 {
		t.Fatalf("len = %d, want 2", len(marks))
	}
	if marks[0].ID != "b1" || marks[0].Name != "Overview" {
		t.Errorf("first bookmark = %+v", marks[0])
	}
	if got := marks[0].GraphXML(); got != "<mxGraphModel/>" {
		t.Errorf("GraphXML() = %q", got)
	}
	if marks[1].GraphXML() != "" {
		t.Error("bookmark without state should have no graph")
	}
	if ws.lastReqID == "" {
		t.Error("request id header not sent")
	}

	if _, err := client.ListBookmarks(context.Background(), TypeVisualizer, false); err != nil {
		t.Fatal(err)
	}
	if n := ws.listCalls.Load(); n != 1 {
		t.Errorf("list calls = %d, want 1 (second served from cache)", n)
	}
	if _, err := client.ListBookmarks(context.Background(), TypeVisualizer, true); err != nil {
		t.Fatal(err)
	}
	if n := ws.listCalls.Load(); n != 2 {
		t.Errorf("list calls after refresh = %d, want 2", n)
	}
}

func TestListBookmarksFailure(t *testing.T) {
	ws, auth := newTestWorkspace(t)
	ws.listStatus = http.StatusForbidden
	client := NewClient(auth, nil)

	_, err := client.ListBookmarks(context.Background(), "", false)
	if err == nil {
		t.Fatal("ListBookmarks() should fail on 403")
	}
	if !xerrors.Is(err, xerrors.ErrCodeForbidden) {
		t.Errorf("code = %q, want FORBIDDEN", xerrors.GetCode(err))
	}
	if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "fetching bookmarks") {
		t.Errorf("error %q should name the status and the operation", err)
	}
}

func TestCreateBookmark(t *testing.T) {
	ws, auth := newTestWorkspace(t)
	client := NewClient(auth, nil)

	b, err := client.CreateBookmark(context.Background(), "<mxGraphModel/>", CreateOptions{Description: "from EA"})
	if err != nil {
		t.Fatalf("CreateBookmark() error: %v", err)
	}
	if b.ID != "new-1" || b.Name != DefaultBookmarkName {
		t.Errorf("bookmark = %+v", b)
	}
	if len(ws.created) != 1 {
		t.Fatalf("created = %d, want 1", len(ws.created))
	}
	want := createRequest{
		GroupKey:    GroupFreedraw,
		Description: "from EA",
		Name:        DefaultBookmarkName,
		Type:        TypeVisualizer,
		State:       State{GraphXML: "<mxGraphModel/>"},
	}
	if ws.created[0] != want {
		t.Errorf("request = %+v, want %+v", ws.created[0], want)
	}
	if auth.Active() != 0 {
		t.Error("session left open after create")
	}
}

// stickyCache is a cache whose entries cannot be deleted.
type stickyCache struct{ cache.Cache }

func (stickyCache) Delete(context.Context, string) error { return errors.New("delete refused") }

func TestCreateBookmarkLogsFailedInvalidation(t *testing.T) {
	_, auth := newTestWorkspace(t)
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	client := NewClient(auth, stickyCache{cache.NewNullCache()}, integrations.WithLogger(logger))

	if _, err := client.CreateBookmark(context.Background(), "<mxGraphModel/>", CreateOptions{Name: "x"}); err != nil {
		t.Fatalf("CreateBookmark() error: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "bookmark listing not invalidated") || !strings.Contains(out, "delete refused") {
		t.Errorf("log output = %q", out)
	}
}

func TestCreateBookmarkRejectsEmptyGraph(t *testing.T) {
	ws, auth := newTestWorkspace(t)
	client := NewClient(auth, nil)

	for _, xml := range []string{"", "  \n"} {
		_, err := client.CreateBookmark(context.Background(), xml, CreateOptions{Name: "x"})
		if !xerrors.Is(err, xerrors.ErrCodeInvalidInput) {
			t.Errorf("CreateBookmark(%q) = %v, want INVALID_INPUT", xml, err)
		}
	}
	if n := ws.tokenCalls.Load(); n != 0 {
		t.Errorf("token calls = %d, want 0", n)
	}
}
