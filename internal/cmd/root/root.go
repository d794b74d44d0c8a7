// Package root provides the root command for the crl CLI.
package root

import (
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/creole-cli/internal/cmd/args"
	"github.com/open-cli-collective/creole-cli/internal/cmd/check"
	"github.com/open-cli-collective/creole-cli/internal/cmd/completion"
	"github.com/open-cli-collective/creole-cli/internal/cmd/configcmd"
	"github.com/open-cli-collective/creole-cli/internal/cmd/convert"
	initcmd "github.com/open-cli-collective/creole-cli/internal/cmd/init"
	"github.com/open-cli-collective/creole-cli/internal/cmd/preview"
	"github.com/open-cli-collective/creole-cli/internal/cmd/serve"
	"github.com/open-cli-collective/creole-cli/internal/version"
)

// NewCmdRoot creates the root command for crl.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crl",
		Short: "Convert Creole wiki markup to HTML",
		Long: `crl converts Creole 1.0 wiki markup to HTML.

It supports the Creole inline and block syntax, user-defined macros
written as <<name args>>...<</name>>, syntax highlighting for code
blocks, and live previews in the terminal or the browser.

Get started by running: crl convert page.creole`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	// Global flags
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: ~/.config/crl/config.yml)")
	cmd.PersistentFlags().StringP("output", "o", "", "output format: table, json, plain")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	// Set version template
	cmd.SetVersionTemplate("crl version {{.Version}} (commit: " + version.Commit + ", built: " + version.Date + ")\n")

	// Subcommands
	cmd.AddCommand(convert.NewCmdConvert())
	cmd.AddCommand(check.NewCmdCheck())
	cmd.AddCommand(preview.NewCmdPreview())
	cmd.AddCommand(serve.NewCmdServe())
	cmd.AddCommand(args.NewCmdArgs())
	cmd.AddCommand(initcmd.NewCmdInit())
	cmd.AddCommand(configcmd.NewCmdConfig())
	cmd.AddCommand(completion.NewCmdCompletion())

	return cmd
}
