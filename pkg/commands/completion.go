package commands

import (
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rejonpardenilla/minderal/pkg/node"
	"github.com/rejonpardenilla/minderal/pkg/printers"
	"github.com/rejonpardenilla/minderal/pkg/store"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(minderal completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(minderal completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(os.Stdout)
		},
	}

	topLevel.AddCommand(cmd)
}

// nodeCompletions offers every node id with its text as description.
func nodeCompletions(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	s, done, err := openSession(cmd.Context(), dbo, false)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer done()

	docs, err := s.DB().Find(cmd.Context(), store.Selector{})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	out := make([]string, 0, len(docs))
	for _, doc := range docs {
		n, err := node.FromDoc(doc)
		if err != nil {
			continue
		}
		out = append(out, n.ID+"\t"+printers.Describe(n.Content()))
	}
	sort.Strings(out)
	return out, cobra.ShellCompDirectiveNoFileComp
}

func nodeArgCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return nodeCompletions(cmd, args, toComplete)
}
