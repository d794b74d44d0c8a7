// Package init provides the init command for crl.
package init

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/creole-cli/internal/config"
	"github.com/open-cli-collective/creole-cli/internal/view"
	"github.com/open-cli-collective/creole-cli/pkg/highlight"
)

// NewCmdInit creates the init command.
func NewCmdInit() *cobra.Command {
	var (
		highlightURL string
		noVerify     bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize crl configuration",
		Long: `Initialize crl conversion defaults.

This command guides you through choosing how macro errors are reported,
how paragraph line breaks are handled, and how code is highlighted. The
configuration is saved to ~/.config/crl/config.yml.

Code is highlighted locally unless you point crl at a highlighting service.`,
		Example: `  # Interactive setup
  crl init

  # Pre-populate a highlighting service
  crl init --highlight-url https://highlight.example.com`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return runInit(config.PathOrDefault(configPath), highlightURL, noVerify)
		},
	}

	cmd.Flags().StringVar(&highlightURL, "highlight-url", "", "Highlighting service URL")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip highlighting service verification")

	return cmd
}

func runInit(configPath, prefillURL string, noVerify bool) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		err := huh.NewConfirm().
			Title("Configuration already exists").
			Description(fmt.Sprintf("Overwrite %s?", configPath)).
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Println("Initialization cancelled.")
			return nil
		}
	}

	cfg := config.Default()
	cfg.HighlightURL = prefillURL
	jobs := ""

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Macro error reporting").
				Options(
					huh.NewOption("Silent", 0),
					huh.NewOption("Inline error markers", 1),
					huh.NewOption("Markers plus stderr traces", 2),
				).
				Value(&cfg.Verbose),

			huh.NewSelect[string]().
				Title("Paragraph line breaks").
				Description("blog keeps single newlines; wiki joins lines").
				Options(
					huh.NewOption("blog", config.LineBreaksBlog),
					huh.NewOption("wiki", config.LineBreaksWiki),
				).
				Value(&cfg.LineBreaks),

			huh.NewInput().
				Title("Parallel jobs (optional)").
				Description("Files converted at once; empty uses every CPU").
				Value(&jobs).
				Validate(validateJobs),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Highlight style").
				Description("chroma style name for local highlighting").
				Placeholder(highlight.DefaultStyle).
				Value(&cfg.HighlightStyle),

			huh.NewInput().
				Title("Highlighting service URL (optional)").
				Description("Leave empty to highlight locally").
				Placeholder("https://highlight.example.com").
				Value(&cfg.HighlightURL),

			huh.NewInput().
				Title("Highlighting service token (optional)").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.HighlightToken),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	if jobs != "" {
		cfg.Jobs, _ = strconv.Atoi(jobs)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Verify the highlighting service unless skipped
	if cfg.HighlightURL != "" && !noVerify {
		fmt.Print("Verifying highlighting service... ")
		if err := verifyHighlighter(cfg); err != nil {
			fmt.Println("failed!")
			return fmt.Errorf("highlighting service verification failed: %w", err)
		}
		fmt.Println("success!")
	}

	if err := cfg.Save(configPath); err != nil {
		return err
	}

	renderer := view.NewRenderer(view.FormatTable, false)
	renderer.Success("Configuration saved to " + configPath)
	fmt.Println("\nYou're all set! Try running:")
	fmt.Println("  crl convert page.creole")
	fmt.Println("  crl preview page.creole")

	return nil
}

func validateJobs(s string) error {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("jobs must be a non-negative number")
	}
	return nil
}

func verifyHighlighter(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := highlight.NewClient(cfg.HighlightURL, cfg.HighlightToken)
	_, err := client.Highlight(ctx, "print('ok')", "python")
	if err == nil {
		return nil
	}

	var errResp *highlight.ErrorResponse
	if !errors.As(err, &errResp) {
		return err
	}
	switch errResp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("authentication failed - check your highlighting service token")
	case http.StatusForbidden:
		return fmt.Errorf("access denied - check your permissions")
	default:
		return fmt.Errorf("unexpected status code: %d", errResp.StatusCode)
	}
}
