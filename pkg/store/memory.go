package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Database. Documents are deep-copied on the way in
// and out.
type Memory struct {
	mu     sync.RWMutex
	docs   map[string]Doc
	hub    *hub
	closed bool
}

var _ Database = (*Memory)(nil)

// NewMemory returns an empty in-memory database.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]Doc), hub: newHub()}
}

func (m *Memory) Get(_ context.Context, id string) (Doc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	doc, ok := m.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return doc.Clone(), nil
}

func (m *Memory) Put(_ context.Context, doc Doc) error {
	id, err := requireID(doc)
	if err != nil {
		return err
	}
	if err := m.write(id, doc.Clone()); err != nil {
		return err
	}
	m.hub.publish(Change{ID: id})
	return nil
}

func (m *Memory) Post(_ context.Context, doc Doc) (string, error) {
	stored := doc.Clone()
	if stored == nil {
		stored = Doc{}
	}
	id := uuid.New().String()
	stored[IDField] = id
	if err := m.write(id, stored); err != nil {
		return "", err
	}
	m.hub.publish(Change{ID: id})
	return id, nil
}

func (m *Memory) write(id string, doc Doc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.docs[id] = doc
	return nil
}

func (m *Memory) Remove(_ context.Context, doc Doc) error {
	id, err := requireID(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if _, ok := m.docs[id]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.docs, id)
	m.mu.Unlock()
	m.hub.publish(Change{ID: id, Deleted: true})
	return nil
}

// Find returns matching documents ordered by id.
func (m *Memory) Find(_ context.Context, sel Selector) ([]Doc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	out := make([]Doc, 0)
	for _, doc := range m.docs {
		if sel.Match(doc) {
			out = append(out, doc.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (m *Memory) Changes(ctx context.Context) (<-chan Change, error) {
	return m.hub.subscribe(ctx)
}

// Inject pushes a raw notification to subscribers, as a replication peer
// would. A Change carrying Err simulates a transport error.
func (m *Memory) Inject(c Change) {
	m.hub.publish(c)
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.hub.close()
	return nil
}
