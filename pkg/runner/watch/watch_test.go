package watch

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rejonpardenilla/minderal/pkg/app"
	"github.com/rejonpardenilla/minderal/pkg/node"
	"github.com/rejonpardenilla/minderal/pkg/store"
	"github.com/rejonpardenilla/minderal/pkg/widget"
)

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

func TestWatchReprintsOnRemoteChange(t *testing.T) {
	color.NoColor = true
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	db := store.NewMemory()
	s, err := app.NewSession(ctx, "test", db)
	require.NoError(t, err)
	defer s.Close()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		w := Watch{Session: s, Out: out}
		done <- w.Do(ctx)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "watching for changes")
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), "empty")

	n, err := node.New("from elsewhere", widget.MustLookup(widget.Text), node.Root, 0)
	require.NoError(t, err)
	doc, err := n.Doc()
	require.NoError(t, err)
	_, err = db.Post(context.Background(), doc)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "¶ from elsewhere")
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop")
	}
}
