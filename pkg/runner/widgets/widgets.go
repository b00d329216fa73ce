// Package widgets prints the widget registry.
package widgets

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/rejonpardenilla/minderal/pkg/widget"
)

// Widgets prints the kinds that can be added and their defaults.
type Widgets struct {
	Out io.Writer
}

// Do renders the registry table.
func (k *Widgets) Do(_ context.Context) error {
	out := k.Out
	if out == nil {
		out = color.Output
	}
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("  "), bold.Sprint("Kind"), bold.Sprint("Label"), bold.Sprint("Input"), bold.Sprint("Default"))
	for _, w := range widget.List() {
		input := "name"
		if w.IsText() {
			input = "value"
		}
		def := "null"
		if w.DefaultValue != nil {
			def = fmt.Sprint(w.DefaultValue)
		}
		tbl.AddRow(w.Symbol, string(w.Index), w.Label, input, def)
	}
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(out, "")
	_, _ = fmt.Fprintln(out, tbl)
	_, _ = fmt.Fprintln(out, "")
	return nil
}
