// Package cache holds the in-memory view of the selected subtree.
package cache

import (
	"sort"
	"sync"

	"github.com/rejonpardenilla/minderal/pkg/node"
)

// Crumb is one step of the breadcrumb path.
type Crumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Snapshot is a consistent copy of the view. It is safe to keep and modify.
type Snapshot struct {
	Version  uint64
	Selected node.Parent
	Children []node.Node
	Path     []Crumb
}

// Updated is emitted each time a refresh result is applied.
type Updated struct {
	Version  uint64
	Selected node.Parent
}

// Ticket identifies one refresh. It is issued by Begin before the store is
// queried and presented to Apply with the results.
type Ticket struct {
	token     uint64
	selection uint64
	selected  node.Parent
}

// Selected is the node the refresh was started for.
func (t Ticket) Selected() node.Parent {
	return t.selected
}

// Cache is the view state shared by CRUD calls and the change feed. Results
// are applied in the order refreshes began: a refresh that started before
// the most recently applied one, or before the selection last changed, is
// discarded.
type Cache struct {
	mu sync.RWMutex

	selected  node.Parent
	selection uint64

	nextToken    uint64
	appliedToken uint64
	version      uint64

	children []node.Node
	path     []Crumb

	eventCh chan Updated
}

// New creates an empty cache with the root selected.
func New() *Cache {
	return &Cache{
		selected: node.Root,
		eventCh:  make(chan Updated, 64),
	}
}

// Events delivers an Updated for every applied refresh. Events are dropped
// when the reader falls behind; Snapshot always has the latest state.
func (c *Cache) Events() <-chan Updated {
	return c.eventCh
}

// Select changes the selection. Refreshes begun earlier will be discarded.
func (c *Cache) Select(p node.Parent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = p
	c.selection++
}

// Selected returns the current selection.
func (c *Cache) Selected() node.Parent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

// Begin issues the ticket for a refresh of the current selection.
func (c *Cache) Begin() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextToken++
	return Ticket{token: c.nextToken, selection: c.selection, selected: c.selected}
}

// Apply replaces children and path with a refresh result. It reports false,
// leaving the view untouched, when the ticket has been superseded.
func (c *Cache) Apply(t Ticket, children []node.Node, path []Crumb) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.token <= c.appliedToken || t.selection != c.selection {
		return false
	}
	c.appliedToken = t.token
	c.version++
	c.children = append([]node.Node(nil), children...)
	c.path = append([]Crumb(nil), path...)
	c.emit(Updated{Version: c.version, Selected: c.selected})
	return true
}

func (c *Cache) emit(u Updated) {
	select {
	case c.eventCh <- u:
	default:
	}
}

// Snapshot returns a copy of the current view.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Version:  c.version,
		Selected: c.selected,
		Children: append([]node.Node(nil), c.children...),
		Path:     append([]Crumb(nil), c.path...),
	}
}

// SortByOrder sorts siblings ascending by order. Equal orders keep their
// incoming relative order.
func SortByOrder(nodes []node.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Order < nodes[j].Order
	})
}
