package commands

import (
	"github.com/spf13/cobra"

	"github.com/rejonpardenilla/minderal/pkg/commands/options"
	teaui "github.com/rejonpardenilla/minderal/pkg/runner/tea"
)

func addUI(topLevel *cobra.Command) {
	ro := &options.RememberOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based user interface",
		Example: `
minderal ui
minderal ui --db work --log-file /tmp/minderal.log
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			// Log lines on stderr would tear the full screen view.
			if dbo.LogFile == "" {
				dbo.LogLevel = "disabled"
			}
			s, done, err := openSession(cmd.Context(), dbo, ro.Remember)
			if err != nil {
				return err
			}
			defer done()

			i := teaui.UI{Session: s}
			return i.Do(cmd.Context())
		},
	}

	options.AddRememberArgs(cmd, ro)

	topLevel.AddCommand(cmd)
}
