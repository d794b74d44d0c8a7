// Package configcmd provides config management commands.
package configcmd

import (
	"github.com/spf13/cobra"
)

// NewCmdConfig creates the config command.
func NewCmdConfig() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage crl configuration",
		Long:  `Commands for viewing, testing, and clearing crl configuration.`,
	}

	cmd.AddCommand(NewCmdShow())
	cmd.AddCommand(NewCmdTest())
	cmd.AddCommand(NewCmdClear())

	return cmd
}

// envVars lists every environment variable crl reads.
var envVars = []string{
	"CRL_VERBOSE", "CRL_LINE_BREAKS", "CRL_DEBUG", "CRL_HIGHLIGHT_STYLE",
	"CRL_HIGHLIGHT_URL", "CRL_HIGHLIGHT_TOKEN", "CRL_OUTPUT_FORMAT", "CRL_JOBS",
}
