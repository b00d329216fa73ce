package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rejonpardenilla/minderal/pkg/cache"
	"github.com/rejonpardenilla/minderal/pkg/config"
	"github.com/rejonpardenilla/minderal/pkg/node"
	"github.com/rejonpardenilla/minderal/pkg/store"
	"github.com/rejonpardenilla/minderal/pkg/widget"
)

var (
	folderWidget  = widget.MustLookup(widget.Folder)
	textWidget    = widget.MustLookup(widget.Text)
	counterWidget = widget.MustLookup(widget.Counter)
)

func newTestSession(t *testing.T, db store.Database, opts ...Option) *Session {
	t.Helper()
	s, err := NewSession(context.Background(), "test", db, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// keepOpen lets several sessions share one memory database.
type keepOpen struct {
	*store.Memory
}

func (keepOpen) Close() error { return nil }

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, store.NewMemory())

	require.NoError(t, s.SelectRoot(ctx))
	assert.Empty(t, s.Snapshot().Children)

	folder, err := s.Create(ctx, "Notes", folderWidget)
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Len(t, snap.Children, 1)
	got := snap.Children[0]
	assert.Equal(t, folder.ID, got.ID)
	assert.Equal(t, "Notes", got.Name())
	assert.Equal(t, float64(0), got.Order)
	assert.True(t, got.Parent.IsRoot())

	require.NoError(t, s.Select(ctx, folder.ID))
	_, err = s.Create(ctx, "body text", textWidget)
	require.NoError(t, err)

	snap = s.Snapshot()
	require.Len(t, snap.Children, 1)
	body := snap.Children[0]
	assert.JSONEq(t, `"body text"`, string(body.Value()))
	assert.Equal(t, "", body.Name())
	assert.Equal(t, float64(0), body.Order)
	assert.Equal(t, []cache.Crumb{{ID: folder.ID, Name: "Notes"}}, snap.Path)
}

func TestChildrenSortedByOrder(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemory()
	for i, order := range []float64{300, 0, 200, 100, 100, 50} {
		n, err := node.New("n", folderWidget, node.Root, order)
		require.NoError(t, err)
		doc, err := n.Doc()
		require.NoError(t, err)
		doc[store.IDField] = string(rune('a' + i))
		require.NoError(t, db.Put(ctx, doc))
	}
	s := newTestSession(t, db)
	require.NoError(t, s.SelectRoot(ctx))

	children := s.Snapshot().Children
	require.Len(t, children, 6)
	for i := 1; i < len(children); i++ {
		assert.LessOrEqual(t, children[i-1].Order, children[i].Order)
	}
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemory()
	s := newTestSession(t, db)
	require.NoError(t, s.SelectRoot(ctx))

	first, err := s.Create(ctx, "first", folderWidget)
	require.NoError(t, err)
	assert.Equal(t, float64(0), first.Order)

	second, err := s.Create(ctx, "second", folderWidget)
	require.NoError(t, err)
	assert.Equal(t, float64(100), second.Order)

	// Order keys written elsewhere are respected.
	n, err := node.New("far", folderWidget, node.Root, 1250)
	require.NoError(t, err)
	doc, err := n.Doc()
	require.NoError(t, err)
	doc[store.IDField] = "far"
	require.NoError(t, db.Put(ctx, doc))

	third, err := s.Create(ctx, "third", folderWidget)
	require.NoError(t, err)
	assert.Equal(t, float64(1350), third.Order)
}

func TestCreateText(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, store.NewMemory())
	require.NoError(t, s.SelectRoot(ctx))

	n, err := s.Create(ctx, "hello", textWidget)
	require.NoError(t, err)
	assert.JSONEq(t, `"hello"`, string(n.Value()))
	assert.Equal(t, "", n.Name())
	assert.True(t, n.IndexValue)

	stored, err := s.Node(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, node.Text{Body: "hello"}, stored.Content())
}

func TestCreateNonText(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, store.NewMemory())
	require.NoError(t, s.SelectRoot(ctx))

	n, err := s.Create(ctx, "Score", counterWidget)
	require.NoError(t, err)
	assert.Equal(t, "Score", n.Name())
	assert.JSONEq(t, `null`, string(n.Value()))
	assert.False(t, n.IndexValue)

	box, err := s.Create(ctx, "Done?", widget.MustLookup(widget.Checkbox))
	require.NoError(t, err)
	assert.JSONEq(t, `false`, string(box.Value()))
}

func TestPathDepthThree(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, store.NewMemory())
	require.NoError(t, s.SelectRoot(ctx))

	a, err := s.Create(ctx, "A", folderWidget)
	require.NoError(t, err)
	require.NoError(t, s.Select(ctx, a.ID))
	b, err := s.Create(ctx, "B", folderWidget)
	require.NoError(t, err)
	require.NoError(t, s.Select(ctx, b.ID))
	c, err := s.Create(ctx, "C", folderWidget)
	require.NoError(t, err)
	require.NoError(t, s.Select(ctx, c.ID))

	assert.Equal(t, []cache.Crumb{
		{ID: a.ID, Name: "A"},
		{ID: b.ID, Name: "B"},
		{ID: c.ID, Name: "C"},
	}, s.Snapshot().Path)

	require.NoError(t, s.SelectRoot(ctx))
	assert.Empty(t, s.Snapshot().Path)
}

func TestSelectMissingShowsEmptyView(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, store.NewMemory())
	require.NoError(t, s.SelectRoot(ctx))
	_, err := s.Create(ctx, "A", folderWidget)
	require.NoError(t, err)
	require.Len(t, s.Snapshot().Children, 1)

	err = s.Select(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	after := s.Snapshot()
	assert.Equal(t, node.Ref("missing"), after.Selected)
	assert.Empty(t, after.Children)
	assert.Empty(t, after.Path)

	require.NoError(t, s.SelectRoot(ctx))
	assert.Len(t, s.Snapshot().Children, 1)
}

func TestDeleteNonCascading(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemory()
	s := newTestSession(t, db)
	require.NoError(t, s.SelectRoot(ctx))

	a, err := s.Create(ctx, "A", folderWidget)
	require.NoError(t, err)
	keep, err := s.Create(ctx, "keep", folderWidget)
	require.NoError(t, err)
	require.NoError(t, s.Select(ctx, a.ID))
	child, err := s.Create(ctx, "child", textWidget)
	require.NoError(t, err)

	require.NoError(t, s.SelectRoot(ctx))
	require.NoError(t, s.DeleteNonCascading(ctx, a))

	children := s.Snapshot().Children
	require.Len(t, children, 1)
	assert.Equal(t, keep.ID, children[0].ID)

	// The child survives, pointing at the removed parent.
	docs, err := db.Find(ctx, store.Selector{"parent_id": a.ID})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, child.ID, docs[0].ID())

	require.NoError(t, s.Select(ctx, keep.ID))
	assert.Empty(t, s.Snapshot().Children)

	err = s.DeleteNonCascading(ctx, a)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRefreshIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, store.NewMemory())
	require.NoError(t, s.SelectRoot(ctx))
	a, err := s.Create(ctx, "A", folderWidget)
	require.NoError(t, err)
	require.NoError(t, s.Select(ctx, a.ID))
	for _, v := range []string{"one", "two", "three"} {
		_, err := s.Create(ctx, v, textWidget)
		require.NoError(t, err)
	}

	require.NoError(t, s.Refresh(ctx))
	first := s.Snapshot()
	require.NoError(t, s.Refresh(ctx))
	second := s.Snapshot()

	assert.Equal(t, first.Children, second.Children)
	assert.Equal(t, first.Path, second.Path)
	assert.Greater(t, second.Version, first.Version)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, store.NewMemory())
	require.NoError(t, s.SelectRoot(ctx))

	n, err := s.Create(ctx, "Score", counterWidget)
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, &n, 3))

	stored, err := s.Node(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, node.Counter{Name: "Score", Count: 3}, stored.Content())
	assert.Equal(t, n.Order, stored.Order)
	assert.True(t, stored.Parent.IsRoot())

	children := s.Snapshot().Children
	require.Len(t, children, 1)
	assert.JSONEq(t, `3`, string(children[0].Value()))

	err = s.Update(ctx, &n, "not a number")
	assert.ErrorIs(t, err, node.ErrValueMismatch)
	assert.JSONEq(t, `3`, string(n.Value()))
}

func TestUpdateKeepsOtherFields(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemory()
	s := newTestSession(t, keepOpen{db})
	require.NoError(t, s.SelectRoot(ctx))

	n, err := s.Create(ctx, "Score", counterWidget)
	require.NoError(t, err)
	doc, err := db.Get(ctx, n.ID)
	require.NoError(t, err)
	doc["color"] = "red"
	require.NoError(t, db.Put(ctx, doc))

	cur, err := s.Node(ctx, n.ID)
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, &cur, 5))

	stored, err := db.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(5), stored["value"])
	assert.Equal(t, "red", stored["color"])
}

func TestRootListsEveryRootEncoding(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemory()
	for i, parent := range []any{false, "", nil} {
		_, err := db.Post(ctx, store.Doc{
			"name": fmt.Sprintf("F%d", i), "value": nil, "type": "folder",
			"index_value": false, "parent_id": parent, "order": i * 100,
		})
		require.NoError(t, err)
	}
	_, err := db.Post(ctx, store.Doc{"name": "placeholder"})
	require.NoError(t, err)

	s := newTestSession(t, keepOpen{db})
	require.NoError(t, s.SelectRoot(ctx))

	var names []string
	for _, n := range s.Snapshot().Children {
		names = append(names, n.Name())
	}
	assert.Equal(t, []string{"F0", "F1", "F2"}, names)
}

func TestChangeFeedRefreshes(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemory()
	log := &syncBuffer{}
	s := newTestSession(t, db, WithLogger(zerolog.New(log)))
	require.NoError(t, s.SelectRoot(ctx))

	db.Inject(store.Change{Err: errors.New("connection reset")})

	// A write that bypasses the session, as another client would do.
	n, err := node.New("remote", folderWidget, node.Root, 0)
	require.NoError(t, err)
	doc, err := n.Doc()
	require.NoError(t, err)
	_, err = db.Post(ctx, doc)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(s.Snapshot().Children) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "remote", s.Snapshot().Children[0].Name())
	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(log.String()), []byte("connection reset"))
	}, time.Second, 10*time.Millisecond)
}

func TestEventsFollowRefreshes(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, store.NewMemory())
	require.NoError(t, s.SelectRoot(ctx))

	select {
	case u := <-s.Events():
		assert.True(t, u.Selected.IsRoot())
		assert.NotZero(t, u.Version)
	case <-time.After(time.Second):
		t.Fatal("no update event")
	}
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	s, err := NewSession(ctx, "test", store.NewMemory())
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.SelectRoot(ctx), ErrClosed)
	_, err = s.Create(ctx, "x", folderWidget)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Refresh(ctx), ErrClosed)
}

func TestContextCancelStopsFeed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, err := NewSession(ctx, "test", store.NewMemory())
	require.NoError(t, err)
	cancel()

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("feed still running after cancel")
	}
	require.NoError(t, s.Close())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	provider := config.Static{
		"mem":  {URL: "memory://"},
		"ftp":  {URL: "ftp://example.com/db"},
		"disk": {URL: "diskv://" + t.TempDir()},
	}

	s, err := Open(ctx, provider, "mem")
	require.NoError(t, err)
	assert.Equal(t, "mem", s.Info().ID)
	require.NoError(t, s.SelectRoot(ctx))
	require.NoError(t, s.Close())

	s, err = Open(ctx, provider, "disk")
	require.NoError(t, err)
	require.NoError(t, s.SelectRoot(ctx))
	_, err = s.Create(ctx, "on disk", folderWidget)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(ctx, provider, "ftp")
	assert.ErrorIs(t, err, store.ErrUnsupported)

	_, err = Open(ctx, provider, "nope")
	assert.ErrorIs(t, err, config.ErrUnknownDatabase)

	_, err = Open(ctx, nil, "mem")
	assert.Error(t, err)
}

func TestRememberSelection(t *testing.T) {
	ctx := context.Background()
	db := keepOpen{store.NewMemory()}

	s := newTestSession(t, db, WithRememberSelection())
	require.NoError(t, s.SelectRoot(ctx))
	a, err := s.Create(ctx, "A", folderWidget)
	require.NoError(t, err)
	require.NoError(t, s.Select(ctx, a.ID))
	require.NoError(t, s.Close())

	again := newTestSession(t, db, WithRememberSelection())
	assert.Equal(t, node.Ref(a.ID), again.Snapshot().Selected)
	require.NoError(t, again.Refresh(ctx))
	assert.Equal(t, []cache.Crumb{{ID: a.ID, Name: "A"}}, again.Snapshot().Path)

	// The selection document is not part of the tree.
	require.NoError(t, again.SelectRoot(ctx))
	children := again.Snapshot().Children
	require.Len(t, children, 1)
	assert.Equal(t, a.ID, children[0].ID)

	doc, err := db.Get(ctx, SelectionDocID)
	require.NoError(t, err)
	assert.Equal(t, false, doc[selectedField])
}
