package commands

import (
	"github.com/spf13/cobra"

	"github.com/rejonpardenilla/minderal/pkg/config"
	"github.com/rejonpardenilla/minderal/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the config and where a database is stored.",
		Example: `
minderal info
minderal info --db work
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			s := info.Info{
				Config:     cfg,
				DatabaseID: dbo.DB,
				Out:        cmd.OutOrStdout(),
			}
			err = s.Do(cmd.Context())
			return oo.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}
