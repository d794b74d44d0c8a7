// Package preview provides the preview command.
package preview

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/creole-cli/internal/cmd/completion"
	"github.com/open-cli-collective/creole-cli/internal/config"
	"github.com/open-cli-collective/creole-cli/internal/converter"
	"github.com/open-cli-collective/creole-cli/internal/view"
)

type previewOptions struct {
	html       bool
	wrap       int
	configPath string
	noColor    bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewCmdPreview creates the preview command.
func NewCmdPreview() *cobra.Command {
	opts := &previewOptions{}

	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Render a Creole document in the terminal",
		Long: `Convert a Creole document and display it in the terminal.

The HTML is turned into Markdown and rendered with terminal styling. Use
--html to print the HTML instead.`,
		Example: `  # Preview a file
  crl preview README.creole

  # Preview stdin without styling
  cat page.creole | crl preview --no-color`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completion.SourceFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.stdin = cmd.InOrStdin()
			opts.stdout = cmd.OutOrStdout()
			opts.stderr = cmd.ErrOrStderr()
			file := ""
			if len(args) == 1 {
				file = args[0]
			}
			return runPreview(cmd.Context(), file, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.html, "html", false, "Print the converted HTML")
	cmd.Flags().IntVarP(&opts.wrap, "wrap", "w", view.DefaultWrap, "Word-wrap width")

	return cmd
}

func runPreview(ctx context.Context, file string, opts *previewOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.stdout == nil {
		opts.stdout = os.Stdout
	}
	if opts.stderr == nil {
		opts.stderr = os.Stderr
	}

	cfg, err := config.LoadWithEnv(config.PathOrDefault(opts.configPath))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	in := opts.stdin
	if file != "" && file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", file, err)
		}
		defer f.Close()
		in = f
	}
	if in == nil {
		in = os.Stdin
	}

	conv := converter.New(ctx, cfg, converter.Options{Stderr: opts.stderr})
	html, err := conv.ConvertReader(in)
	if err != nil {
		return err
	}

	renderer := view.NewRenderer(view.FormatTable, opts.noColor)
	renderer.SetWriter(opts.stdout)

	if opts.html {
		_, err := io.WriteString(opts.stdout, html)
		return err
	}

	markdown, err := converter.ToMarkdown(html)
	if err != nil {
		// Fall back to the HTML when it cannot be turned into Markdown.
		_, werr := io.WriteString(opts.stdout, html)
		return werr
	}
	renderer.RenderMarkdown(markdown, opts.wrap)
	return nil
}
