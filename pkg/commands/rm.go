package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"github.com/rejonpardenilla/minderal/pkg/runner/rm"
)

func addRemove(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a node. Its children are not deleted.",
		Long: base.Wrap80("Delete a single node. Children of the node are left in the " +
			"store still pointing at it, so they no longer show up anywhere in the tree."),
		Example: `
minderal rm 0d8e2f5c-6b7a-4b55-9c1e-3c1f0f2a7d10
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: nodeArgCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, done, err := openSession(cmd.Context(), dbo, false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer done()

			r := rm.Remove{
				Session: s,
				ID:      args[0],
				Out:     cmd.OutOrStdout(),
			}
			err = r.Do(cmd.Context())
			return oo.HandleError(err)
		},
	}

	base.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
