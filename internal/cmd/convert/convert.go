// Package convert provides the convert command.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/creole-cli/internal/cmd/completion"
	"github.com/open-cli-collective/creole-cli/internal/config"
	"github.com/open-cli-collective/creole-cli/internal/converter"
	"github.com/open-cli-collective/creole-cli/internal/logging"
	"github.com/open-cli-collective/creole-cli/internal/view"
	"github.com/open-cli-collective/creole-cli/pkg/highlight"
)

type convertOptions struct {
	outDir     string
	verbose    int
	wiki       bool
	debug      bool
	nfc        bool
	jobs       int
	configPath string
	output     string
	noColor    bool

	// Set only for flags given on the command line.
	verboseSet bool
	debugSet   bool
	jobsSet    bool

	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	highlighter highlight.Highlighter
}

// NewCmdConvert creates the convert command.
func NewCmdConvert() *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Convert Creole files to HTML",
		Long: `Convert Creole markup to HTML.

With no files, or with "-", markup is read from stdin and HTML is written to
stdout. Otherwise each file is converted to <name>.html next to the source,
or in --out-dir. Macro diagnostics are written to stderr.`,
		Example: `  # Convert stdin
  echo '**bold**' | crl convert

  # Convert files into a directory using 4 workers
  crl convert docs/*.creole --out-dir site --jobs 4

  # Report unknown macros with stack traces
  crl convert page.creole --verbose 2`,
		ValidArgsFunction: completion.SourceFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.verboseSet = cmd.Flags().Changed("verbose")
			opts.debugSet = cmd.Flags().Changed("debug")
			opts.jobsSet = cmd.Flags().Changed("jobs")
			opts.stdin = cmd.InOrStdin()
			opts.stdout = cmd.OutOrStdout()
			opts.stderr = cmd.ErrOrStderr()
			return runConvert(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "out-dir", "d", "", "Directory for generated HTML files")
	cmd.Flags().IntVarP(&opts.verbose, "verbose", "v", 1, "Macro error reporting: 0 silent, 1 inline markers, 2 markers and stderr traces")
	cmd.Flags().BoolVar(&opts.wiki, "wiki", false, "Join paragraph lines without a separator (wiki line breaks)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Fail on macro errors instead of inlining markers")
	cmd.Flags().BoolVar(&opts.nfc, "nfc", false, "Normalize input to Unicode NFC before converting")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 0, "Files converted in parallel (default: number of CPUs)")

	return cmd
}

// loadConfig reads the configuration and applies command line overrides.
func loadConfig(opts *convertOptions) (*config.Config, error) {
	cfg, err := config.LoadWithEnv(config.PathOrDefault(opts.configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.verboseSet {
		cfg.Verbose = opts.verbose
	}
	if opts.debugSet {
		cfg.Debug = opts.debug
	}
	if opts.jobsSet {
		cfg.Jobs = opts.jobs
	}
	if opts.wiki {
		cfg.LineBreaks = config.LineBreaksWiki
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

// maxStatusWidth bounds the STATUS column of the table report. Plain and JSON
// output keep the full error.
const maxStatusWidth = 60

func runConvert(ctx context.Context, files []string, opts *convertOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.stdin == nil {
		opts.stdin = os.Stdin
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

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if opts.output == "" {
		opts.output = cfg.OutputFormat
	}

	log := logging.ForVerbosity(opts.stderr, cfg.Verbose)
	log.ConfigLoaded(config.PathOrDefault(opts.configPath), cfg.Verbose, cfg.LineBreaks)

	conv := converter.New(ctx, cfg, converter.Options{
		NFC:         opts.nfc,
		Stderr:      opts.stderr,
		Highlighter: opts.highlighter,
		Logger:      log,
	})

	if len(files) == 0 || (len(files) == 1 && files[0] == "-") {
		html, err := conv.ConvertReader(opts.stdin)
		if err != nil {
			return err
		}
		_, err = io.WriteString(opts.stdout, html)
		return err
	}

	results, err := conv.ConvertFiles(ctx, files, opts.outDir, cfg.Jobs)
	if err != nil {
		return err
	}

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	renderer.SetWriter(opts.stdout)

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}

	if renderer.Format() == view.FormatJSON {
		if err := renderer.RenderJSON(results); err != nil {
			return err
		}
	} else {
		rows := make([][]string, 0, len(results))
		for _, r := range results {
			status := "ok"
			if !r.OK() {
				status = r.Error
				if renderer.Format() == view.FormatTable {
					status = view.Truncate(status, maxStatusWidth)
				}
			}
			rows = append(rows, []string{r.Source, r.Output, strconv.Itoa(r.Bytes), status})
		}
		renderer.RenderTable([]string{"SOURCE", "OUTPUT", "BYTES", "STATUS"}, rows)
		if renderer.Format() == view.FormatTable {
			if failed == 0 {
				renderer.Success(fmt.Sprintf("Converted %d file(s)", len(results)))
			} else {
				renderer.Error(fmt.Sprintf("%d of %d file(s) failed", failed, len(results)))
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to convert", failed, len(results))
	}
	return nil
}
