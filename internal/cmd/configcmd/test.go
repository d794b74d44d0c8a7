package configcmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/creole-cli/internal/config"
	"github.com/open-cli-collective/creole-cli/internal/converter"
	"github.com/open-cli-collective/creole-cli/pkg/highlight"
)

const sampleDocument = `= Sample

<<code ext="go">>
package main
<</code>>

<<note title="Check">>
**configured**
<</note>>`

// NewCmdTest creates the config test command.
func NewCmdTest() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the configured conversion setup",
		Long: `Convert a sample document with the current configuration, exercising
the built-in macros and the configured highlighter.`,
		Example: `  # Test configuration
  crl config test`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			noColor, _ := cmd.Flags().GetBool("no-color")
			return runTest(config.PathOrDefault(configPath), noColor, nil)
		},
	}

	return cmd
}

func runTest(configPath string, noColor bool, h highlight.Highlighter, cfgs ...*config.Config) error {
	if noColor {
		color.NoColor = true
	}

	var cfg *config.Config
	if len(cfgs) > 0 && cfgs[0] != nil {
		cfg = cfgs[0]
	} else {
		var err error
		cfg, err = config.LoadWithEnv(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w (run 'crl init' to configure)", err)
		}
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	if h == nil {
		h = converter.NewHighlighter(cfg)
	}
	if cfg.HighlightURL != "" {
		fmt.Printf("Testing highlighting service at %s...\n", cfg.HighlightURL)
	} else {
		style := cfg.HighlightStyle
		if style == "" {
			style = highlight.DefaultStyle
		}
		fmt.Printf("Testing local highlighting (style %s)...\n", style)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := h.Highlight(ctx, "package main", "go"); err != nil {
		red.Println("✗ Highlighting failed:", err)
		fmt.Println("\nCheck your settings with: crl config show")
		fmt.Println("Reconfigure with: crl init")
		return fmt.Errorf("highlighting failed: %w", err)
	}
	green.Println("✓ Highlighting works")

	// Debug mode makes any macro failure an error.
	testCfg := *cfg
	testCfg.Debug = true
	conv := converter.New(ctx, &testCfg, converter.Options{Highlighter: h})
	html, err := conv.Convert(sampleDocument)
	if err != nil {
		red.Println("✗ Sample conversion failed:", err)
		return fmt.Errorf("sample conversion failed: %w", err)
	}
	if !strings.Contains(html, `class="admonition note"`) {
		red.Println("✗ Sample conversion produced unexpected output")
		return fmt.Errorf("sample conversion produced unexpected output")
	}
	green.Println("✓ Macros render")

	return nil
}
