package rm

import (
	"context"
	"errors"
	"io"

	"github.com/rejonpardenilla/minderal/pkg/app"
	"github.com/rejonpardenilla/minderal/pkg/printers"
)

// Remove deletes one node. Its children are left in place.
type Remove struct {
	Session *app.Session
	ID      string
	Out     io.Writer
}

func (n *Remove) Do(ctx context.Context) error {
	if n.Session == nil {
		return errors.New("can not remove, no session")
	}
	target, err := n.Session.Node(ctx, n.ID)
	if err != nil {
		return err
	}
	if err := n.Session.Select(ctx, target.Parent.ID()); err != nil {
		return err
	}
	if err := n.Session.DeleteNonCascading(ctx, target); err != nil {
		return err
	}

	snap := n.Session.Snapshot()
	pp := printers.PrettyPrint{ShowID: true, Out: n.Out}
	pp.NewLine()
	pp.Breadcrumb(snap.Path)
	pp.Children(snap.Children...)
	return nil
}
