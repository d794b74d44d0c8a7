package configcmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/creole-cli/internal/config"
	"github.com/open-cli-collective/creole-cli/internal/view"
)

// NewCmdClear creates the config clear command.
func NewCmdClear() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove stored configuration",
		Long: `Delete the crl configuration file.

CRL_* environment variables are not touched and still apply afterwards.`,
		Example: `  crl config clear
  crl config clear --config ./crl.yml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			noColor, _ := cmd.Flags().GetBool("no-color")
			return runClear(config.PathOrDefault(configPath), noColor, cmd.OutOrStdout())
		},
	}

	return cmd
}

func runClear(configPath string, noColor bool, out io.Writer) error {
	renderer := view.NewRenderer(view.FormatTable, noColor)
	if out != nil {
		renderer.SetWriter(out)
	}

	switch err := os.Remove(configPath); {
	case errors.Is(err, fs.ErrNotExist):
		renderer.Success("No config file to remove")
	case err != nil:
		return fmt.Errorf("failed to remove config file: %w", err)
	default:
		renderer.Success("Configuration cleared from " + configPath)
	}

	if active := activeEnvVars(); len(active) > 0 {
		renderer.Warning("Environment variables still apply: " + strings.Join(active, ", "))
	}
	return nil
}

func activeEnvVars() []string {
	var active []string
	for _, v := range envVars {
		if os.Getenv(v) != "" {
			active = append(active, v)
		}
	}
	return active
}
