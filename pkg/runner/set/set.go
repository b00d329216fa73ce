// Package set replaces the value of a node.
package set

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/rejonpardenilla/minderal/pkg/app"
	"github.com/rejonpardenilla/minderal/pkg/node"
	"github.com/rejonpardenilla/minderal/pkg/printers"
)

type Set struct {
	Session *app.Session
	ID      string
	Raw     string
	JSON    bool
	Out     io.Writer
}

func (n *Set) Do(ctx context.Context) error {
	if n.Session == nil {
		return errors.New("can not set, no session")
	}
	target, err := n.Session.Node(ctx, n.ID)
	if err != nil {
		return err
	}
	// Refresh runs against the node's siblings.
	if err := n.Session.Select(ctx, target.Parent.ID()); err != nil {
		return err
	}
	if err := n.Session.Update(ctx, &target, ValueFor(target, n.Raw)); err != nil {
		return err
	}

	pp := printers.PrettyPrint{ShowID: true, Out: n.Out}
	if n.JSON {
		return pp.JSON(target.Record())
	}
	pp.Node(target)
	return nil
}

// ParseValue reads raw as JSON and falls back to the literal string.
func ParseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

// ValueFor converts typed text into a value for n's kind. Kinds holding a
// string keep the text as typed; the others go through ParseValue.
func ValueFor(n node.Node, raw string) any {
	switch n.Content().(type) {
	case node.Text, node.Link, node.Audio, node.Countdown:
		return raw
	}
	return ParseValue(raw)
}
