package add

import (
	"context"
	"errors"
	"io"

	"github.com/rejonpardenilla/minderal/pkg/app"
	"github.com/rejonpardenilla/minderal/pkg/printers"
	"github.com/rejonpardenilla/minderal/pkg/widget"
)

// Add creates a node under At and prints its new siblings.
type Add struct {
	Session *app.Session
	At      string
	Widget  widget.Widget
	Value   string
	ShowID  bool
	JSON    bool
	Out     io.Writer
}

func (n *Add) Do(ctx context.Context) error {
	if n.Session == nil {
		return errors.New("can not add, no session")
	}
	if n.Widget.Index == "" {
		return errors.New("can not add, no widget kind")
	}
	if err := n.Session.Select(ctx, n.At); err != nil {
		return err
	}
	created, err := n.Session.Create(ctx, n.Value, n.Widget)
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	if n.JSON {
		return pp.JSON(created.Record())
	}
	snap := n.Session.Snapshot()
	pp.NewLine()
	pp.Breadcrumb(snap.Path)
	pp.Children(snap.Children...)
	return nil
}
