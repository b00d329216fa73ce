package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"github.com/rejonpardenilla/minderal/pkg/commands/options"
	"github.com/rejonpardenilla/minderal/pkg/runner/list"
)

func addList(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List the children of a node, in order.",
		Example: `
minderal ls
minderal ls --at 0d8e2f5c-6b7a-4b55-9c1e-3c1f0f2a7d10 --show-id
minderal ls --db work --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			s, done, err := openSession(cmd.Context(), dbo, false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer done()

			l := list.List{
				Session: s,
				At:      io.At,
				ShowID:  io.ShowID,
				JSON:    oo.JSON,
				Out:     cmd.OutOrStdout(),
			}
			err = l.Do(cmd.Context())
			return oo.HandleError(err)
		},
	}

	options.AddAtArgs(cmd, io)
	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, oo)
	_ = cmd.RegisterFlagCompletionFunc("at", nodeCompletions)

	topLevel.AddCommand(cmd)
}
