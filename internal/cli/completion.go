package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/xmigraph/pkg/diag"
	"github.com/matzehuels/xmigraph/pkg/model"
	"github.com/matzehuels/xmigraph/pkg/xmi"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for xmigraph.

Diagram names complete from the document given as the first argument:

  $ xmigraph graph model.xmi -d <TAB>

To load completions:

Bash:
  $ source <(xmigraph completion bash)

Zsh:
  $ xmigraph completion zsh > "${fpath[1]}/_xmigraph"

Fish:
  $ xmigraph completion fish | source

PowerShell:
  PS> xmigraph completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeXMIFile completes the document argument.
func completeXMIFile(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"xmi", "xml"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeDiagram completes --diagram with the names found in the document
// argument. Parsing is best effort; any failure yields no suggestions.
func completeDiagram(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 || args[0] == stdinPath {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer f.Close()

	root, err := xmi.Parse(f)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	diagrams, err := model.Extract(root, diag.Discard)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var out []string
	for _, name := range model.Names(diagrams) {
		if strings.HasPrefix(name, toComplete) {
			out = append(out, name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
