package leanix

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/xmigraph/pkg/cache"
	xerrors "github.com/matzehuels/xmigraph/pkg/errors"
	"github.com/matzehuels/xmigraph/pkg/integrations"
)

// BookmarksPath is the pathfinder bookmarks endpoint relative to the instance.
const BookmarksPath = "/services/pathfinder/v1/bookmarks"

// cacheNamespace scopes cached listings per instance.
const cacheNamespace = "leanix"

// Client provides access to the bookmarks API of one workspace.
type Client struct {
	*integrations.Client
	auth *Authenticator
}

// NewClient creates a bookmarks client. Listings are cached in c for
// [cache.HTTPTTL]; a nil cache disables caching.
func NewClient(auth *Authenticator, c cache.Cache, opts ...integrations.Option) *Client {
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), auth.Instance()+":")
	opts = append([]integrations.Option{integrations.WithKeyer(keyer)}, opts...)
	return &Client{
		Client: integrations.NewClient(c, cacheNamespace, cache.HTTPTTL, nil, opts...),
		auth:   auth,
	}
}

// ListBookmarks returns the workspace bookmarks of type typ (VISUALIZER
// when empty). If refresh is true, a cached listing is bypassed.
func (c *Client) ListBookmarks(ctx context.Context, typ string, refresh bool) ([]Bookmark, error) {
	if typ == "" {
		typ = TypeVisualizer
	}
	u := integrations.ServiceURL(c.auth.Instance(), BookmarksPath, url.Values{"bookmarkType": {typ}})

	var marks []Bookmark
	err := c.Cached(ctx, "bookmarks:"+typ, refresh, &marks, func() error {
		return c.auth.Do(ctx, func(ctx context.Context, h *http.Client) error {
			var env envelope[[]Bookmark]
			if err := c.WithHTTP(h).GetWithHeaders(ctx, u, requestHeaders(), &env); err != nil {
				return err
			}
			marks = env.Data
			return nil
		})
	})
	if err != nil {
		return nil, xerrors.Wrap(codeOf(err), err, "while fetching bookmarks")
	}
	if marks == nil {
		marks = []Bookmark{}
	}
	return marks, nil
}

// CreateBookmark stores graphXML as a visualizer bookmark and returns the
// created record. An empty graph is rejected before any request is made.
func (c *Client) CreateBookmark(ctx context.Context, graphXML string, opts CreateOptions) (*Bookmark, error) {
	if strings.TrimSpace(graphXML) == "" {
		return nil, xerrors.New(xerrors.ErrCodeInvalidInput, "graph xml is empty")
	}
	if opts.Name == "" {
		opts.Name = DefaultBookmarkName
	}
	if opts.GroupKey == "" {
		opts.GroupKey = GroupFreedraw
	}
	if err := xerrors.ValidateBookmarkName(opts.Name); err != nil {
		return nil, err
	}

	req := createRequest{
		GroupKey:    opts.GroupKey,
		Description: opts.Description,
		Name:        opts.Name,
		Type:        TypeVisualizer,
		State:       State{GraphXML: graphXML},
	}
	u := integrations.ServiceURL(c.auth.Instance(), BookmarksPath, nil)

	var env envelope[Bookmark]
	err := c.auth.Do(ctx, func(ctx context.Context, h *http.Client) error {
		return c.WithHTTP(h).PostWithHeaders(ctx, u, requestHeaders(), req, &env)
	})
	if err != nil {
		return nil, xerrors.Wrap(codeOf(err), err, "while creating bookmark")
	}
	if err := c.Invalidate(ctx, "bookmarks:"+TypeVisualizer); err != nil {
		// The next listing may be stale until the cached entry expires.
		c.Logger().Debug("bookmark listing not invalidated", "ttl", cache.HTTPTTL, "err", err)
	}
	return &env.Data, nil
}

func requestHeaders() map[string]string {
	return map[string]string{"X-Request-ID": uuid.NewString()}
}

func codeOf(err error) xerrors.Code {
	var rl *xerrors.RateLimitedError
	if errors.As(err, &rl) {
		return xerrors.ErrCodeRateLimited
	}
	if code := xerrors.GetCode(err); code != "" {
		return code
	}
	return xerrors.ErrCodeNetwork
}
