package cli

import (
	"github.com/spf13/cobra"
)

// commonSignatures are offered when completing --signature.
var commonSignatures = []string{"4/4", "3/4", "2/4", "6/8", "9/8", "12/8", "5/4", "7/8", "2+2+3/8", "3+3+2/8"}

// completionCommand prints a completion script for the named shell.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for regroup and print it to stdout.

  $ source <(regroup completion bash)
  $ regroup completion zsh > "${fpath[1]}/_regroup"
  $ regroup completion fish > ~/.config/fish/completions/regroup.fish
  PS> regroup completion powershell | Out-String | Invoke-Expression

Completion covers subcommands, output formats and common time signatures.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
		},
	}
}

// completeValues completes a flag from a fixed list.
func completeValues(values ...string) cobra.CompletionFunc {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}
