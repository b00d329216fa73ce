package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"github.com/rejonpardenilla/minderal/pkg/commands/options"
	"github.com/rejonpardenilla/minderal/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	wo := &options.WidgetOptions{}

	cmd := &cobra.Command{
		Use:   "add <kind> <value...>",
		Short: "Add a node as the last child of a node.",
		Long: base.Wrap80("Add a node as the last child of a node. For text the value is the " +
			"body; for every other kind it is the name and the value starts at the kind's default. " +
			"Kinds: " + strings.Join(options.WidgetKinds(), ", ") + "."),
		Example: `
minderal add folder Notes
minderal add text remember the milk --at 0d8e2f5c-6b7a-4b55-9c1e-3c1f0f2a7d10
minderal add checkbox Milk
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("expected a kind and a value")
			}
			return wo.Parse(args[0])
		},
		ValidArgsFunction: options.CompleteWidgetKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, done, err := openSession(cmd.Context(), dbo, false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer done()

			a := add.Add{
				Session: s,
				At:      io.At,
				Widget:  wo.Widget,
				Value:   strings.Join(args[1:], " "),
				ShowID:  io.ShowID,
				JSON:    oo.JSON,
				Out:     cmd.OutOrStdout(),
			}
			err = a.Do(cmd.Context())
			return oo.HandleError(err)
		},
	}

	options.AddAtArgs(cmd, io)
	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, oo)
	_ = cmd.RegisterFlagCompletionFunc("at", nodeCompletions)

	topLevel.AddCommand(cmd)
}
