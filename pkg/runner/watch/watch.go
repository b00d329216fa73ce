// Package watch reprints a node's children whenever the tree changes.
package watch

import (
	"context"
	"errors"
	"io"

	"github.com/fatih/color"

	"github.com/rejonpardenilla/minderal/pkg/app"
	"github.com/rejonpardenilla/minderal/pkg/cache"
	"github.com/rejonpardenilla/minderal/pkg/printers"
)

type Watch struct {
	Session *app.Session
	At      string
	ShowID  bool
	Out     io.Writer
}

// Do prints the current children and then every newer view until ctx is
// done.
func (n *Watch) Do(ctx context.Context) error {
	if n.Session == nil {
		return errors.New("can not watch, no session")
	}
	if err := n.Session.Select(ctx, n.At); err != nil {
		return err
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	printed := n.print(pp, n.Session.Snapshot())

	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprintln(n.out(), "watching for changes, ctrl-c to stop")

	for {
		select {
		case <-ctx.Done():
			return nil
		case u, ok := <-n.Session.Events():
			if !ok {
				return nil
			}
			if u.Version <= printed {
				continue
			}
			printed = n.print(pp, n.Session.Snapshot())
		}
	}
}

func (n *Watch) print(pp printers.PrettyPrint, snap cache.Snapshot) uint64 {
	pp.NewLine()
	pp.Breadcrumb(snap.Path)
	pp.Children(snap.Children...)
	return snap.Version
}

func (n *Watch) out() io.Writer {
	if n.Out == nil {
		return color.Output
	}
	return n.Out
}
