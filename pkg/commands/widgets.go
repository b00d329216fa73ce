package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rejonpardenilla/minderal/pkg/runner/widgets"
)

func addWidgets(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "widgets",
		Aliases: []string{"kinds", "key"},
		Short:   "Print the kinds of node that can be added",
		Example: `
minderal widgets
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			k := widgets.Widgets{Out: cmd.OutOrStdout()}
			err := k.Do(context.Background())
			return oo.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}
