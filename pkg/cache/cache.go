// Package cache stores extraction results and graph documents between
// runs.
//
// A [Cache] is a byte store with per-entry TTLs. Backends:
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: Redis, for shared deployments of the API server
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: stores nothing
//
// Keys are produced by a [Keyer] so that every component derives the same
// key for the same input. Keys embed a content hash of the input document
// or diagram plus every option that changes the output.
package cache

import (
	"context"
	"time"
)

// Default TTLs.
const (
	// DocumentTTL bounds how long extracted diagrams are kept. Entries are
	// keyed by document content, so they never go stale.
	DocumentTTL = 7 * 24 * time.Hour

	// GraphTTL bounds how long serialized graphs are kept.
	GraphTTL = 7 * 24 * time.Hour

	// HTTPTTL bounds how long remote API listings are kept.
	HTTPTTL = 5 * time.Minute
)

// Cache is a byte store with expiring entries. Implementations must be
// safe for concurrent use.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// DocumentKeyOpts are the extraction options that affect the result.
type DocumentKeyOpts struct {
	IncludeUnconnected bool `json:"include_unconnected,omitempty"`
}

// GraphKeyOpts are the graph building options that affect the result.
type GraphKeyOpts struct {
	StyleHash        string `json:"style_hash,omitempty"`
	SkipUnknown      bool   `json:"skip_unknown,omitempty"`
	AbsoluteGeometry bool   `json:"absolute_geometry,omitempty"`
	Indent           bool   `json:"indent,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// DocumentKey keys the diagrams extracted from a document.
	DocumentKey(docHash string, opts DocumentKeyOpts) string

	// GraphKey keys the serialized graph of one diagram.
	GraphKey(diagramHash string, opts GraphKeyOpts) string

	// HTTPKey keys a cached remote response.
	HTTPKey(namespace, key string) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DocumentKey returns "doc:" followed by a hash of the inputs.
func (DefaultKeyer) DocumentKey(docHash string, opts DocumentKeyOpts) string {
	return hashKey("doc", docHash, opts)
}

// GraphKey returns "graph:" followed by a hash of the inputs.
func (DefaultKeyer) GraphKey(diagramHash string, opts GraphKeyOpts) string {
	return hashKey("graph", diagramHash, opts)
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}
