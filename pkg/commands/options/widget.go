package options

import (
	"github.com/spf13/cobra"

	"github.com/rejonpardenilla/minderal/pkg/widget"
)

// WidgetOptions holds the widget kind parsed from the first argument.
type WidgetOptions struct {
	Widget widget.Widget
}

// Parse resolves a kind id or label.
func (o *WidgetOptions) Parse(raw string) error {
	w, err := widget.ParseKind(raw)
	if err != nil {
		return err
	}
	o.Widget = w
	return nil
}

// WidgetKinds lists the kind ids for shell completion.
func WidgetKinds() []string {
	kinds := widget.AllKinds()
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, string(k))
	}
	return out
}

// CompleteWidgetKinds completes the kind argument only.
func CompleteWidgetKinds(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return WidgetKinds(), cobra.ShellCompDirectiveNoFileComp
}
