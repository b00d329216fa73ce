package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/rejonpardenilla/minderal/pkg/cache"
	"github.com/rejonpardenilla/minderal/pkg/config"
	"github.com/rejonpardenilla/minderal/pkg/node"
	"github.com/rejonpardenilla/minderal/pkg/store"
	"github.com/rejonpardenilla/minderal/pkg/widget"
)

// OrderGap is the distance between the order keys of consecutive new siblings.
const OrderGap = 100

var ErrClosed = errors.New("app: session is closed")

// Session binds one database connection to the tree view. CLIs and UIs share
// it so the tree invariants are kept in one place.
type Session struct {
	info config.ConnectionInfo
	db   store.Database
	view *cache.Cache
	log  zerolog.Logger

	remember bool

	cancel    context.CancelFunc
	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

type settings struct {
	log      zerolog.Logger
	remember bool
}

// Option configures Open.
type Option func(*settings)

// WithLogger sets the logger used for change feed and refresh diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(s *settings) { s.log = log }
}

// WithRememberSelection restores the last selection on open and saves it on
// every Select.
func WithRememberSelection() Option {
	return func(s *settings) { s.remember = true }
}

// Open resolves databaseID through provider, connects to it and starts
// following its change feed. The feed runs until Close or ctx is done.
func Open(ctx context.Context, provider config.Provider, databaseID string, opts ...Option) (*Session, error) {
	set := settings{log: zerolog.Nop()}
	for _, o := range opts {
		o(&set)
	}
	if provider == nil {
		return nil, errors.New("app: no connection provider configured")
	}
	info, err := provider.ConnectionInfo(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	db, err := store.Open(ctx, info.Options)
	if err != nil {
		return nil, fmt.Errorf("app: open %s: %w", databaseID, err)
	}
	s, err := newSession(ctx, info, db, set)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSession wraps an already opened database. The session owns db and
// closes it on Close.
func NewSession(ctx context.Context, databaseID string, db store.Database, opts ...Option) (*Session, error) {
	set := settings{log: zerolog.Nop()}
	for _, o := range opts {
		o(&set)
	}
	return newSession(ctx, config.ConnectionInfo{ID: databaseID}, db, set)
}

func newSession(ctx context.Context, info config.ConnectionInfo, db store.Database, set settings) (*Session, error) {
	s := &Session{
		info:     info,
		db:       db,
		view:     cache.New(),
		log:      set.log.With().Str("db", info.ID).Logger(),
		remember: set.remember,
		done:     make(chan struct{}),
	}
	if s.remember {
		if err := s.restoreSelection(ctx); err != nil {
			return nil, err
		}
	}

	feedCtx, cancel := context.WithCancel(ctx)
	feed, err := db.Changes(feedCtx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("app: subscribe %s: %w", info.ID, err)
	}
	s.cancel = cancel
	go s.follow(feedCtx, feed)
	return s, nil
}

// follow refreshes the view for every change notification until the feed
// is closed.
func (s *Session) follow(ctx context.Context, feed <-chan store.Change) {
	defer close(s.done)
	for c := range feed {
		if c.Err != nil {
			s.log.Warn().Err(c.Err).Msg("change feed error")
			continue
		}
		s.log.Debug().Str("id", c.ID).Bool("deleted", c.Deleted).Msg("change")
		if err := s.Refresh(ctx); err != nil && ctx.Err() == nil && !errors.Is(err, ErrClosed) {
			s.log.Warn().Err(err).Str("selected", s.view.Selected().String()).Msg("refresh after change failed")
		}
	}
}

// Info describes the connection the session was opened with.
func (s *Session) Info() config.ConnectionInfo {
	return s.info
}

// DB exposes the underlying database.
func (s *Session) DB() store.Database {
	return s.db
}

// Snapshot returns a copy of the current view.
func (s *Session) Snapshot() cache.Snapshot {
	return s.view.Snapshot()
}

// Events notifies about every applied view update.
func (s *Session) Events() <-chan cache.Updated {
	return s.view.Events()
}

// Select makes id the selected node and refreshes. An empty id selects the
// root.
func (s *Session) Select(ctx context.Context, id string) error {
	if id == "" {
		return s.selectParent(ctx, node.Root)
	}
	return s.selectParent(ctx, node.Ref(id))
}

// SelectRoot selects the top of the tree.
func (s *Session) SelectRoot(ctx context.Context) error {
	return s.selectParent(ctx, node.Root)
}

func (s *Session) selectParent(ctx context.Context, p node.Parent) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.view.Select(p)
	if s.remember {
		if err := s.saveSelection(ctx, p); err != nil {
			s.log.Warn().Err(err).Msg("could not save selection")
		}
	}
	return s.Refresh(ctx)
}

// Node loads a single node by id.
func (s *Session) Node(ctx context.Context, id string) (node.Node, error) {
	if s.closed.Load() {
		return node.Node{}, ErrClosed
	}
	doc, err := s.db.Get(ctx, id)
	if err != nil {
		return node.Node{}, err
	}
	return node.FromDoc(doc)
}

// Create adds a child of kind w under the selected node, after its current
// last child. For text widgets value is the body, otherwise it is the name.
func (s *Session) Create(ctx context.Context, value string, w widget.Widget) (node.Node, error) {
	if s.closed.Load() {
		return node.Node{}, ErrClosed
	}
	parent := s.view.Selected()
	siblings, err := s.children(ctx, parent)
	if err != nil {
		return node.Node{}, err
	}
	order := 0.0
	if len(siblings) > 0 {
		order = siblings[len(siblings)-1].Order + OrderGap
	}
	n, err := node.New(value, w, parent, order)
	if err != nil {
		return node.Node{}, err
	}
	doc, err := n.Doc()
	if err != nil {
		return node.Node{}, err
	}
	delete(doc, store.IDField)
	id, err := s.db.Post(ctx, doc)
	if err != nil {
		return node.Node{}, fmt.Errorf("app: create %s: %w", w.Index, err)
	}
	n.ID = id
	s.log.Debug().Str("id", id).Str("kind", string(w.Index)).Float64("order", order).Msg("created")
	return n, s.Refresh(ctx)
}

// Update sets the value of n and stores the whole node.
func (s *Session) Update(ctx context.Context, n *node.Node, value any) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if n == nil {
		return fmt.Errorf("app: update: %w", store.ErrInvalidDoc)
	}
	if err := n.SetValue(value); err != nil {
		return err
	}
	doc, err := n.Doc()
	if err != nil {
		return err
	}
	if err := s.db.Put(ctx, doc); err != nil {
		return fmt.Errorf("app: update %s: %w", n.ID, err)
	}
	return s.Refresh(ctx)
}

// DeleteNonCascading removes n only. Its children keep pointing at the
// removed id and are no longer reachable from the root.
func (s *Session) DeleteNonCascading(ctx context.Context, n node.Node) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := s.db.Remove(ctx, store.Doc{store.IDField: n.ID}); err != nil {
		return fmt.Errorf("app: delete %s: %w", n.ID, err)
	}
	return s.Refresh(ctx)
}

// Refresh reloads the children and breadcrumb path of the selected node. The
// result is dropped if a later refresh or selection overtook it. When the
// path cannot be rebuilt the children are still applied with an empty path
// and the path error is returned.
func (s *Session) Refresh(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	t := s.view.Begin()
	children, err := s.children(ctx, t.Selected())
	if err != nil {
		return err
	}
	path, pathErr := s.Path(ctx, t.Selected())
	if pathErr != nil {
		path = nil
	}
	if !s.view.Apply(t, children, path) {
		s.log.Debug().Str("selected", t.Selected().String()).Msg("discarded stale refresh")
	}
	return pathErr
}

// children returns the children of parent sorted by order. Records that do
// not decode are logged and skipped.
func (s *Session) children(ctx context.Context, parent node.Parent) ([]node.Node, error) {
	docs, err := s.childDocs(ctx, parent)
	if err != nil {
		return nil, fmt.Errorf("app: find children of %s: %w", parent, err)
	}
	nodes := make([]node.Node, 0, len(docs))
	for _, doc := range docs {
		n, err := node.FromDoc(doc)
		if err != nil {
			s.log.Warn().Err(err).Str("id", doc.ID()).Msg("skipping unreadable node")
			continue
		}
		nodes = append(nodes, n)
	}
	cache.SortByOrder(nodes)
	return nodes, nil
}

// childDocs finds the documents under parent. Root children are matched on
// every stored form of the root sentinel.
func (s *Session) childDocs(ctx context.Context, parent node.Parent) ([]store.Doc, error) {
	if !parent.IsRoot() {
		return s.db.Find(ctx, store.Selector{"parent_id": parent.Value()})
	}
	var docs []store.Doc
	seen := map[string]bool{}
	for _, v := range node.RootValues {
		found, err := s.db.Find(ctx, store.Selector{"parent_id": v})
		if err != nil {
			return nil, err
		}
		for _, doc := range found {
			if seen[doc.ID()] {
				continue
			}
			seen[doc.ID()] = true
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// Path walks from p up to the top of the tree and returns the crumbs root
// first, including p itself. The root sentinel has an empty path.
func (s *Session) Path(ctx context.Context, p node.Parent) ([]cache.Crumb, error) {
	var crumbs []cache.Crumb
	seen := map[string]bool{}
	for cur := p; !cur.IsRoot(); {
		id := cur.ID()
		if seen[id] {
			return nil, fmt.Errorf("app: path of %s: cycle at %s", p, id)
		}
		seen[id] = true
		doc, err := s.db.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("app: path of %s: %w", p, err)
		}
		r, err := node.RecordFromDoc(doc)
		if err != nil {
			return nil, fmt.Errorf("app: path of %s: %w", p, err)
		}
		crumbs = append(crumbs, cache.Crumb{ID: id, Name: r.Name})
		cur = r.ParentID
	}
	for i, j := 0, len(crumbs)-1; i < j; i, j = i+1, j-1 {
		crumbs[i], crumbs[j] = crumbs[j], crumbs[i]
	}
	return crumbs, nil
}

// Close stops the change feed and closes the database.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.cancel()
		<-s.done
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}
