package commands

import (
	"github.com/spf13/cobra"

	"github.com/rejonpardenilla/minderal/pkg/commands/options"
	"github.com/rejonpardenilla/minderal/pkg/runner/watch"
)

func addWatch(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the children of a node again every time they change.",
		Example: `
minderal watch
minderal watch --at 0d8e2f5c-6b7a-4b55-9c1e-3c1f0f2a7d10
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			s, done, err := openSession(cmd.Context(), dbo, false)
			if err != nil {
				return err
			}
			defer done()

			w := watch.Watch{
				Session: s,
				At:      io.At,
				ShowID:  io.ShowID,
				Out:     cmd.OutOrStdout(),
			}
			return w.Do(cmd.Context())
		},
	}

	options.AddAtArgs(cmd, io)
	options.AddShowIDArgs(cmd, io)
	_ = cmd.RegisterFlagCompletionFunc("at", nodeCompletions)

	topLevel.AddCommand(cmd)
}
