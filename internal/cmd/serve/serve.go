// Package serve provides the serve command.
package serve

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/creole-cli/internal/cmd/completion"
	"github.com/open-cli-collective/creole-cli/internal/config"
	"github.com/open-cli-collective/creole-cli/internal/converter"
	"github.com/open-cli-collective/creole-cli/internal/logging"
	"github.com/open-cli-collective/creole-cli/internal/preview"
)

type serveOptions struct {
	addr       string
	interval   time.Duration
	open       bool
	configPath string

	openBrowser func(url string) error
}

// NewCmdServe creates the serve command.
func NewCmdServe() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve <file>",
		Short: "Serve a live HTML preview of a Creole file",
		Long: `Serve the converted HTML of a Creole file over HTTP.

The file is re-converted whenever its content changes and connected browsers
are updated over a websocket. Stop with Ctrl-C.`,
		Example: `  # Preview on the default address
  crl serve notes.creole

  # Pick an address and open a browser
  crl serve notes.creole --addr 127.0.0.1:9000 --open`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.SourceFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.configPath, _ = cmd.Flags().GetString("config")

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "127.0.0.1:8080", "Listen address")
	cmd.Flags().DurationVar(&opts.interval, "interval", preview.DefaultInterval, "How often to check the file for changes")
	cmd.Flags().BoolVar(&opts.open, "open", false, "Open the preview in a browser")

	return cmd
}

func runServe(ctx context.Context, file string, opts *serveOptions) error {
	cfg, err := config.LoadWithEnv(config.PathOrDefault(opts.configPath))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logging.ForVerbosity(os.Stderr, max(cfg.Verbose, 1))
	conv := converter.New(ctx, cfg, converter.Options{Stderr: os.Stderr, Logger: log})

	srv := preview.NewServer(file, conv.Convert,
		preview.WithInterval(opts.interval),
		preview.WithLogger(log),
	)

	if opts.open {
		open := opts.openBrowser
		if open == nil {
			open = openBrowser
		}
		if err := open("http://" + opts.addr + "/"); err != nil {
			log.Warn("failed to open browser", "error", err)
		}
	}

	return srv.ListenAndServe(ctx, opts.addr)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform")
	}

	return cmd.Start()
}
