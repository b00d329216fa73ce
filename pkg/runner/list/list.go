// Package list prints the children of a node.
package list

import (
	"context"
	"errors"
	"io"

	"github.com/rejonpardenilla/minderal/pkg/app"
	"github.com/rejonpardenilla/minderal/pkg/printers"
)

type List struct {
	Session *app.Session
	At      string
	ShowID  bool
	JSON    bool
	Out     io.Writer
}

func (n *List) Do(ctx context.Context) error {
	if n.Session == nil {
		return errors.New("can not list, no session")
	}
	if err := n.Session.Select(ctx, n.At); err != nil {
		return err
	}
	snap := n.Session.Snapshot()

	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	if n.JSON {
		return pp.JSON(printers.NewView(snap))
	}
	pp.NewLine()
	pp.Breadcrumb(snap.Path)
	pp.Children(snap.Children...)
	return nil
}
