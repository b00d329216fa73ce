package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestDiskvWatchSeesOtherProcessWrites(t *testing.T) {
	base := t.TempDir()
	watcherSide, err := OpenDiskv(base)
	if err != nil {
		t.Fatalf("open watcher side: %v", err)
	}
	writerSide, err := OpenDiskv(base)
	if err != nil {
		t.Fatalf("open writer side: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := watcherSide.Changes(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe to directories before storing.
	time.Sleep(50 * time.Millisecond)

	if err := writerSide.Put(ctx, Doc{IDField: "inbox", "name": "Inbox"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case c := <-ch:
			if c.Err != nil {
				continue
			}
			if c.ID != "inbox" {
				t.Fatalf("expected change for 'inbox', got %q", c.ID)
			}
			return
		case <-deadline:
			t.Fatal("timed out waiting for change")
		}
	}
}

func TestIDForPath(t *testing.T) {
	base := t.TempDir()
	p, err := OpenDiskv(base)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := toKey("abc/def")
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "document", path: filepath.Join(base, key[:2], key), want: "abc/def"},
		{name: "wrong shard", path: filepath.Join(base, "zz", key), want: ""},
		{name: "lock file", path: filepath.Join(base, lockFile), want: ""},
		{name: "base", path: base, want: ""},
		{name: "shard dir", path: filepath.Join(base, key[:2]), want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.idForPath(tt.path); got != tt.want {
				t.Errorf("idForPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestChangeThrottleCoalesces(t *testing.T) {
	th := newChangeThrottle(20 * time.Millisecond)
	defer th.Stop()

	var (
		mu  sync.Mutex
		got []Change
	)
	send := func(c Change) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, c)
	}

	th.Enqueue(Change{ID: "a"}, send)
	th.Enqueue(Change{ID: "b"}, send)
	th.Enqueue(Change{ID: "a", Deleted: true}, send)

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("expected 2 coalesced changes, got %d: %+v", len(got), got)
	}
	if got[0].ID != "a" || !got[0].Deleted {
		t.Errorf("expected last event for 'a' to win, got %+v", got[0])
	}
	if got[1].ID != "b" {
		t.Errorf("expected 'b' second, got %+v", got[1])
	}
}
