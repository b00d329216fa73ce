package commands

import (
	"strings"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"github.com/rejonpardenilla/minderal/pkg/runner/set"
)

func addSet(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "set <id> <value...>",
		Short: "Replace the value of a node.",
		Long: base.Wrap80("Replace the value of a node. The value is read as JSON when it " +
			"parses, otherwise it is stored as a string. It must fit the node's kind."),
		Example: `
minderal set 0d8e2f5c-6b7a-4b55-9c1e-3c1f0f2a7d10 true
minderal set 0d8e2f5c-6b7a-4b55-9c1e-3c1f0f2a7d10 42
minderal set 0d8e2f5c-6b7a-4b55-9c1e-3c1f0f2a7d10 buy oat milk
`,
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: nodeArgCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, done, err := openSession(cmd.Context(), dbo, false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer done()

			r := set.Set{
				Session: s,
				ID:      args[0],
				Raw:     strings.Join(args[1:], " "),
				JSON:    oo.JSON,
				Out:     cmd.OutOrStdout(),
			}
			err = r.Do(cmd.Context())
			return oo.HandleError(err)
		},
	}

	base.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
