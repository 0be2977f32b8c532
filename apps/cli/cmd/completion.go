package cmd

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for hitfwd.

To load completions:

Bash:
  $ source <(hitfwd completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ hitfwd completion bash > /etc/bash_completion.d/hitfwd
  # macOS:
  $ hitfwd completion bash > $(brew --prefix)/etc/bash_completion.d/hitfwd

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ hitfwd completion zsh > "${fpath[1]}/_hitfwd"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ hitfwd completion fish | source

  # To load completions for each session, execute once:
  $ hitfwd completion fish > ~/.config/fish/completions/hitfwd.fish

PowerShell:
  PS> hitfwd completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> hitfwd completion powershell > hitfwd.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
