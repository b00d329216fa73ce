package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"
)

const (
	lockFile          = ".lock"
	lockRetryInterval = 10 * time.Millisecond
	shardWidth        = 2
)

// Diskv is a Database keeping one JSON file per document under a base
// directory. Writers in different processes are serialised with a file lock
// and the live feed is driven by filesystem notifications, so several
// processes can share one directory.
type Diskv struct {
	d        *diskv.Diskv
	basePath string

	mu   sync.Mutex
	lock *flock.Flock
}

var _ Database = (*Diskv)(nil)

// OpenDiskv creates a Diskv database rooted at basePath.
func OpenDiskv(basePath string) (*Diskv, error) {
	if basePath == "" {
		return nil, errors.New("store: diskv base path required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &Diskv{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      0, // other processes write here, always read from disk
		}),
		basePath: basePath,
		lock:     flock.New(filepath.Join(basePath, lockFile)),
	}, nil
}

// BasePath is the directory holding the documents.
func (p *Diskv) BasePath() string {
	return p.basePath
}

func (p *Diskv) Get(_ context.Context, id string) (Doc, error) {
	return p.read(toKey(id))
}

func (p *Diskv) read(key string) (Doc, error) {
	val, err := p.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, fromKey(key))
		}
		return nil, err
	}
	doc, err := decodeDoc(val)
	if err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", fromKey(key), err)
	}
	return doc, nil
}

func (p *Diskv) Put(ctx context.Context, doc Doc) error {
	id, err := requireID(doc)
	if err != nil {
		return err
	}
	return p.write(ctx, id, doc)
}

func (p *Diskv) Post(ctx context.Context, doc Doc) (string, error) {
	stored := doc.Clone()
	if stored == nil {
		stored = Doc{}
	}
	id := uuid.New().String()
	stored[IDField] = id
	if err := p.write(ctx, id, stored); err != nil {
		return "", err
	}
	return id, nil
}

func (p *Diskv) write(ctx context.Context, id string, doc Doc) error {
	data, err := encodeDoc(doc)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", id, err)
	}
	return p.locked(ctx, func() error {
		return p.d.Write(toKey(id), data)
	})
}

func (p *Diskv) Remove(ctx context.Context, doc Doc) error {
	id, err := requireID(doc)
	if err != nil {
		return err
	}
	key := toKey(id)
	return p.locked(ctx, func() error {
		if !p.d.Has(key) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return p.d.Erase(key)
	})
}

// locked runs fn holding both the in-process mutex and the directory lock.
func (p *Diskv) locked(ctx context.Context, fn func() error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ok, err := p.lock.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return fmt.Errorf("store: acquire lock: %w", err)
	}
	if !ok {
		return errors.New("store: acquire lock: not acquired")
	}
	defer func() {
		if err := p.lock.Unlock(); err != nil {
			fmt.Fprintf(os.Stderr, "store: release lock: %v\n", err)
		}
	}()
	return fn()
}

// Find scans every document; results are ordered by id.
func (p *Diskv) Find(ctx context.Context, sel Selector) ([]Doc, error) {
	out := make([]Doc, 0)
	for key := range p.d.Keys(ctx.Done()) {
		doc, err := p.read(key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// Removed between listing and reading.
				continue
			}
			return nil, err
		}
		if sel.Match(doc) {
			out = append(out, doc)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (p *Diskv) Close() error {
	return nil
}

// keyToPathTransform shards documents into directories named after the
// first characters of the encoded key.
func keyToPathTransform(key string) *diskv.PathKey {
	shard := key
	if len(shard) > shardWidth {
		shard = shard[:shardWidth]
	}
	return &diskv.PathKey{
		Path:     []string{shard},
		FileName: key,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return pathKey.FileName
}

// toKey encodes an id so ids containing path separators stay a single file.
func toKey(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

func fromKey(key string) string {
	id, err := base64.RawURLEncoding.DecodeString(key)
	if err != nil {
		return ""
	}
	return string(id)
}
