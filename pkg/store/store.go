// Package store defines the document database capability the tree is built
// on and provides the diskv, sqlite and in-memory implementations of it.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

var (
	// ErrNotFound is returned by Get and Remove for unknown ids.
	ErrNotFound = errors.New("store: document not found")
	// ErrInvalidDoc is returned for documents without a usable _id.
	ErrInvalidDoc = errors.New("store: invalid document")
	// ErrUnsupported is returned by Open for unknown URL schemes.
	ErrUnsupported = errors.New("store: unsupported database url")
	// ErrClosed is returned by operations on a closed database.
	ErrClosed = errors.New("store: database closed")
)

// IDField is the document key holding the document id.
const IDField = "_id"

// Doc is a schemaless JSON document.
type Doc map[string]any

// ID returns the document id or "" when unset.
func (d Doc) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// Clone returns a deep copy made through a JSON round trip so callers can
// never alias stored state.
func (d Doc) Clone() Doc {
	if d == nil {
		return nil
	}
	out, err := decodeDoc(mustEncode(d))
	if err != nil {
		return Doc{}
	}
	return out
}

// Selector matches documents whose fields equal the given values. A field
// missing from a document never matches, even against false or nil.
type Selector map[string]any

// Match reports whether doc satisfies every field of the selector.
func (s Selector) Match(doc Doc) bool {
	for field, want := range s {
		got, ok := doc[field]
		if !ok {
			return false
		}
		if !sameValue(got, want) {
			return false
		}
	}
	return true
}

func sameValue(a, b any) bool {
	// Normalise through JSON so 1 == 1.0 and typed strings compare equal.
	var na, nb any
	if err := json.Unmarshal(mustEncode(a), &na); err != nil {
		return false
	}
	if err := json.Unmarshal(mustEncode(b), &nb); err != nil {
		return false
	}
	return reflect.DeepEqual(na, nb)
}

// Change is a single notification on the live feed. A non-nil Err reports a
// transport problem; the feed keeps running after it.
type Change struct {
	ID      string
	Deleted bool
	Err     error
}

// Database is the capability the tree engine needs from its backing store.
type Database interface {
	Get(ctx context.Context, id string) (Doc, error)
	// Put replaces the whole document stored under doc's _id.
	Put(ctx context.Context, doc Doc) error
	// Post stores doc under a newly assigned id and returns it.
	Post(ctx context.Context, doc Doc) (string, error)
	Remove(ctx context.Context, doc Doc) error
	Find(ctx context.Context, sel Selector) ([]Doc, error)
	// Changes streams notifications for mutations made after the call. The
	// channel is closed once ctx is done or the database is closed.
	Changes(ctx context.Context) (<-chan Change, error)
	Close() error
}

// Options are the physical connection options for a database.
type Options struct {
	URL      string `json:"url" mapstructure:"url"`
	Username string `json:"username,omitempty" mapstructure:"username"`
	Password string `json:"-" mapstructure:"password"`
}

// Open connects to the database described by opts.URL. Supported schemes are
// diskv://, sqlite:// and memory://.
func Open(ctx context.Context, opts Options) (Database, error) {
	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("store: parse url %q: %w", opts.URL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "diskv":
		return OpenDiskv(localPath(u))
	case "sqlite":
		return OpenSQLite(ctx, localPath(u))
	case "memory", "mem":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, opts.URL)
	}
}

// localPath joins host and path so both diskv://rel/dir and
// diskv:///abs/dir work.
func localPath(u *url.URL) string {
	if u.Opaque != "" {
		return u.Opaque
	}
	return u.Host + u.Path
}

func mustEncode(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return b
}

func encodeDoc(doc Doc) ([]byte, error) {
	return json.Marshal(doc)
}

func decodeDoc(data []byte) (Doc, error) {
	doc := Doc{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func requireID(doc Doc) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("%w: nil document", ErrInvalidDoc)
	}
	id := doc.ID()
	if id == "" {
		return "", fmt.Errorf("%w: missing %s", ErrInvalidDoc, IDField)
	}
	return id, nil
}
