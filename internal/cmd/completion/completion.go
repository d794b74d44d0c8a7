// Package completion provides shell completion generation commands.
package completion

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// SourceExtensions are the file extensions offered when completing Creole
// source arguments.
var SourceExtensions = []string{"creole", "wiki", "txt"}

// SourceFiles completes Creole source file arguments.
func SourceFiles(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return SourceExtensions, cobra.ShellCompDirectiveFilterFileExt
}

// shell describes how to generate and install one completion script.
type shell struct {
	name    string
	title   string
	install string
	gen     func(root *cobra.Command, w io.Writer) error
}

var shells = []shell{
	{
		name:  "bash",
		title: "bash",
		install: `To load completions in your current shell session:

  source <(crl completion bash)

To load completions for every new session:

  # Linux
  crl completion bash > /etc/bash_completion.d/crl

  # macOS (requires bash-completion)
  crl completion bash > $(brew --prefix)/etc/bash_completion.d/crl`,
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenBashCompletion(w)
		},
	},
	{
		name:  "zsh",
		title: "zsh",
		install: `If shell completion is not already enabled in your environment,
enable it once:

  echo "autoload -U compinit; compinit" >> ~/.zshrc

To load completions in your current shell session:

  source <(crl completion zsh)

To load completions for every new session:

  crl completion zsh > "${fpath[1]}/_crl"`,
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenZshCompletion(w)
		},
	},
	{
		name:  "fish",
		title: "fish",
		install: `To load completions in your current shell session:

  crl completion fish | source

To load completions for every new session:

  crl completion fish > ~/.config/fish/completions/crl.fish`,
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenFishCompletion(w, true)
		},
	},
	{
		name:  "powershell",
		title: "PowerShell",
		install: `To load completions in your current shell session:

  crl completion powershell | Out-String | Invoke-Expression

To load completions for every new session, add the output to your profile:

  crl completion powershell >> $PROFILE`,
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenPowerShellCompletionWithDesc(w)
		},
	},
}

// NewCmdCompletion creates the completion command.
func NewCmdCompletion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for crl.

These scripts enable tab-completion for commands, flags, and arguments.
See each sub-command's help for installation instructions.`,
	}

	for _, sh := range shells {
		cmd.AddCommand(newShellCmd(sh))
	}

	return cmd
}

func newShellCmd(sh shell) *cobra.Command {
	return &cobra.Command{
		Use:                   sh.name,
		Short:                 fmt.Sprintf("Generate %s completion script", sh.title),
		Long:                  fmt.Sprintf("Generate %s completion script for crl.\n\n%s", sh.title, sh.install),
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sh.gen(cmd.Root(), cmd.OutOrStdout())
		},
	}
}
