// Package path prints the breadcrumb of a node.
package path

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/rejonpardenilla/minderal/pkg/app"
	"github.com/rejonpardenilla/minderal/pkg/node"
	"github.com/rejonpardenilla/minderal/pkg/printers"
)

type Path struct {
	Session *app.Session
	ID      string
	ShowID  bool
	JSON    bool
	Out     io.Writer
}

func (n *Path) Do(ctx context.Context) error {
	if n.Session == nil {
		return errors.New("can not print path, no session")
	}
	target := node.Root
	if n.ID != "" {
		target = node.Ref(n.ID)
	}
	crumbs, err := n.Session.Path(ctx, target)
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	if n.JSON {
		if crumbs == nil {
			return pp.JSON([]any{})
		}
		return pp.JSON(crumbs)
	}
	if !n.ShowID {
		pp.Breadcrumb(crumbs)
		return nil
	}
	out := n.Out
	if out == nil {
		out = color.Output
	}
	for i, c := range crumbs {
		_, _ = fmt.Fprintf(out, "%*s%s  %s\n", i*2, "", c.ID, c.Name)
	}
	return nil
}
