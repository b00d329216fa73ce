package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"github.com/rejonpardenilla/minderal/pkg/commands/options"
	"github.com/rejonpardenilla/minderal/pkg/runner/path"
)

func addPath(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "path <id>",
		Short: "Print the breadcrumb from the top of the tree to a node.",
		Example: `
minderal path 0d8e2f5c-6b7a-4b55-9c1e-3c1f0f2a7d10
minderal path 0d8e2f5c-6b7a-4b55-9c1e-3c1f0f2a7d10 --json
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

			p := path.Path{
				Session: s,
				ID:      args[0],
				ShowID:  io.ShowID,
				JSON:    oo.JSON,
				Out:     cmd.OutOrStdout(),
			}
			err = p.Do(cmd.Context())
			return oo.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
