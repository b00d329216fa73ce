package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"github.com/rejonpardenilla/minderal/pkg/commands/options"
)

var (
	oo  = &base.OutputOptions{}
	dbo = &options.DatabaseOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "minderal",
		Short: base.Wrap80("Browse and edit a tree of notes, folders and widgets kept in a document store."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	options.AddDatabaseArgs(cmd, dbo)
	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addList(topLevel)
	addAdd(topLevel)
	addSet(topLevel)
	addRemove(topLevel)
	addPath(topLevel)
	addWatch(topLevel)
	addWidgets(topLevel)
	addInfo(topLevel)
	addUI(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}
