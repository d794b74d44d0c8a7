// Package check provides the check command.
package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/creole-cli/internal/cmd/completion"
	"github.com/open-cli-collective/creole-cli/internal/config"
	"github.com/open-cli-collective/creole-cli/internal/converter"
	"github.com/open-cli-collective/creole-cli/internal/view"
	"github.com/open-cli-collective/creole-cli/pkg/highlight"
)

// ErrMismatch is returned when the converted output differs from the
// expected HTML.
var ErrMismatch = errors.New("output differs from expected HTML")

type checkOptions struct {
	wiki       bool
	configPath string
	output     string
	noColor    bool

	stdout      io.Writer
	stderr      io.Writer
	highlighter highlight.Highlighter
}

// NewCmdCheck creates the check command.
func NewCmdCheck() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check <source> <expected.html>",
		Short: "Compare a conversion against expected HTML",
		Long: `Convert a Creole file and compare the result with an expected HTML file.

On mismatch a unified diff from the expected to the produced HTML is printed
and the command fails.`,
		Example: `  # Regression-check a fixture
  crl check testdata/lists.creole testdata/lists.html`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completion.SourceFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.stdout = cmd.OutOrStdout()
			opts.stderr = cmd.ErrOrStderr()
			return runCheck(cmd.Context(), args[0], args[1], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.wiki, "wiki", false, "Convert with wiki line breaks")

	return cmd
}

func runCheck(ctx context.Context, source, expected string, opts *checkOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.stdout == nil {
		opts.stdout = os.Stdout
	}
	if opts.stderr == nil {
		opts.stderr = os.Stderr
	}

	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}

	cfg, err := config.LoadWithEnv(config.PathOrDefault(opts.configPath))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.wiki {
		cfg.LineBreaks = config.LineBreaksWiki
	}

	markup, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("failed to read source: %w", err)
	}
	want, err := os.ReadFile(expected)
	if err != nil {
		return fmt.Errorf("failed to read expected HTML: %w", err)
	}

	conv := converter.New(ctx, cfg, converter.Options{Stderr: opts.stderr, Highlighter: opts.highlighter})
	got, err := conv.Convert(string(markup))
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", source, err)
	}

	diff := converter.Diff(filepath.Base(expected), filepath.Base(source)+" (converted)", string(want), got)

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	renderer.SetWriter(opts.stdout)

	switch {
	case renderer.Format() == view.FormatJSON:
		if err := renderer.RenderJSON(struct {
			Source   string `json:"source"`
			Expected string `json:"expected"`
			Match    bool   `json:"match"`
			Diff     string `json:"diff,omitempty"`
		}{source, expected, diff == "", diff}); err != nil {
			return err
		}
	case renderer.Format() == view.FormatPlain && diff == "":
		renderer.RenderText("no differences")
	case renderer.Format() == view.FormatPlain:
		renderer.RenderText(strings.TrimSuffix(diff, "\n"))
	case diff == "":
		renderer.Success(fmt.Sprintf("%s matches %s", source, expected))
	default:
		renderer.RenderDiff(diff)
	}

	if diff != "" {
		return ErrMismatch
	}
	return nil
}
