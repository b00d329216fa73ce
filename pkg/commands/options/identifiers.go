package options

import (
	"github.com/spf13/cobra"
)

// IDOptions
type IDOptions struct {
	ShowID bool
	At     string
}

func AddShowIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Show the ID of each node.")
}

func AddAtArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().StringVar(&o.At, "at", "",
		"Id of the node to work under. Defaults to the root.")
}
