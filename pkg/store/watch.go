package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchCoalesce = 50 * time.Millisecond

// Changes streams document notifications until ctx is cancelled. Writes from
// any process sharing the directory are reported. Bursts of filesystem
// events for the same document are coalesced into one Change.
func (p *Diskv) Changes(ctx context.Context) (<-chan Change, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "store: watcher close: %v\n", err)
			}
		})
	}

	dirs, err := collectDirs(p.basePath)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: enumerate directories: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	changes := make(chan Change, 64)

	go func() {
		defer close(changes)
		defer closeWatcher()

		// Track watched shard directories so new ones are added once.
		watched := make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			watched[dir] = struct{}{}
		}

		var sendMu sync.Mutex
		done := false
		send := func(c Change) {
			sendMu.Lock()
			defer sendMu.Unlock()
			if done {
				return
			}
			select {
			case changes <- c:
			default:
				// Drop when the consumer is behind; its next refresh reads
				// the current state anyway.
			}
		}
		defer func() {
			sendMu.Lock()
			done = true
			sendMu.Unlock()
		}()

		throttle := newChangeThrottle(watchCoalesce)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				send(Change{Err: fmt.Errorf("store: watcher: %w", err)})
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				removed := evt.Op&(fsnotify.Remove|fsnotify.Rename) != 0
				if evt.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						dir := filepath.Clean(evt.Name)
						if _, found := watched[dir]; !found {
							if err := watcher.Add(dir); err != nil {
								send(Change{Err: fmt.Errorf("store: watch %s: %w", dir, err)})
								continue
							}
							watched[dir] = struct{}{}
						}
						// Files written before the watch was added.
						for _, id := range p.idsInDir(dir) {
							throttle.Enqueue(Change{ID: id}, send)
						}
						continue
					}
				}
				if removed {
					// diskv prunes empty shard directories on erase.
					delete(watched, filepath.Clean(evt.Name))
				}
				id := p.idForPath(evt.Name)
				if id == "" {
					continue
				}
				throttle.Enqueue(Change{ID: id, Deleted: removed}, send)
			}
		}
	}()

	return changes, nil
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// idForPath derives the document id from a file path inside the store.
func (p *Diskv) idForPath(path string) string {
	rel, err := filepath.Rel(p.basePath, path)
	if err != nil || rel == "." {
		return ""
	}
	parts := strings.Split(rel, string(os.PathSeparator))
	if len(parts) != 2 {
		return ""
	}
	name := parts[1]
	if strings.HasPrefix(name, ".") || keyToPathTransform(name).Path[0] != parts[0] {
		return ""
	}
	return fromKey(name)
}

func (p *Diskv) idsInDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if id := p.idForPath(filepath.Join(dir, e.Name())); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// changeThrottle coalesces rapid notifications for the same document so a
// write that touches a file several times yields one Change.
type changeThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]Change
	order   []string
	delay   time.Duration
}

func newChangeThrottle(delay time.Duration) *changeThrottle {
	return &changeThrottle{
		delay:   delay,
		pending: make(map[string]Change),
	}
}

func (t *changeThrottle) Enqueue(c Change, send func(Change)) {
	t.mu.Lock()
	if _, ok := t.pending[c.ID]; !ok {
		t.order = append(t.order, c.ID)
	}
	// The last event wins so a write followed by a delete reports the delete.
	t.pending[c.ID] = c

	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *changeThrottle) flush(send func(Change)) {
	t.mu.Lock()
	pending := t.pending
	order := t.order
	t.pending = make(map[string]Change)
	t.order = nil
	t.timer = nil
	t.mu.Unlock()

	for _, id := range order {
		send(pending[id])
	}
}

func (t *changeThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
