package configcmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/creole-cli/internal/config"
	"github.com/open-cli-collective/creole-cli/internal/view"
)

type showOptions struct {
	configPath string
	output     string
	noColor    bool
	stdout     io.Writer
}

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	opts := &showOptions{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current crl configuration with the source of each value.

With -o plain each setting is printed as "key: value"; with -o json the
settings, their sources and the config file path are printed as one object.`,
		Example: `  # Show current config
  crl config show

  # Machine readable
  crl config show -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			opts.configPath = config.PathOrDefault(configPath)
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.stdout = cmd.OutOrStdout()
			return runShow(opts)
		},
	}

	return cmd
}

// setting is one configuration value and where it came from.
type setting struct {
	Key    string `json:"key"`
	Label  string `json:"-"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

func runShow(opts *showOptions) error {
	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}
	if opts.stdout == nil {
		opts.stdout = os.Stdout
	}

	fileCfg, fileErr := config.Load(opts.configPath)
	if fileErr != nil {
		fileCfg = config.Default()
	}

	cfg, err := config.LoadWithEnv(opts.configPath)
	if err != nil {
		return err
	}

	field := func(key, label, value, fileValue, envVar string) setting {
		source := "default"
		switch {
		case os.Getenv(envVar) != "":
			source = envVar
		case fileErr == nil && fileValue == value:
			source = "config"
		}
		if key == "highlight_token" {
			value = maskToken(value)
		}
		return setting{Key: key, Label: label, Value: value, Source: source}
	}

	settings := []setting{
		field("verbose", "Verbose", strconv.Itoa(cfg.Verbose), strconv.Itoa(fileCfg.Verbose), "CRL_VERBOSE"),
		field("line_breaks", "Line breaks", cfg.LineBreaks, fileCfg.LineBreaks, "CRL_LINE_BREAKS"),
		field("debug", "Debug", strconv.FormatBool(cfg.Debug), strconv.FormatBool(fileCfg.Debug), "CRL_DEBUG"),
		field("highlight_style", "Highlight style", cfg.HighlightStyle, fileCfg.HighlightStyle, "CRL_HIGHLIGHT_STYLE"),
		field("highlight_url", "Highlight URL", cfg.HighlightURL, fileCfg.HighlightURL, "CRL_HIGHLIGHT_URL"),
		field("highlight_token", "Highlight token", cfg.HighlightToken, fileCfg.HighlightToken, "CRL_HIGHLIGHT_TOKEN"),
		field("output_format", "Output", cfg.OutputFormat, fileCfg.OutputFormat, "CRL_OUTPUT_FORMAT"),
		field("jobs", "Jobs", strconv.Itoa(cfg.Jobs), strconv.Itoa(fileCfg.Jobs), "CRL_JOBS"),
	}

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	renderer.SetWriter(opts.stdout)

	switch renderer.Format() {
	case view.FormatJSON:
		return renderer.RenderJSON(struct {
			Path      string    `json:"path"`
			FileFound bool      `json:"file_found"`
			Settings  []setting `json:"settings"`
		}{opts.configPath, fileErr == nil, settings})
	case view.FormatPlain:
		for _, s := range settings {
			renderer.RenderKeyValue(s.Key, s.Value)
		}
		return nil
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	w := opts.stdout

	for _, s := range settings {
		_, _ = bold.Fprintf(w, "%-16s", s.Label+":")
		if s.Value == "" {
			_, _ = dim.Fprintln(w, "-")
			continue
		}
		_, _ = fmt.Fprint(w, s.Value)
		_, _ = dim.Fprintf(w, "  (source: %s)\n", s.Source)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = dim.Fprintf(w, "Config file: %s\n", opts.configPath)
	if fileErr != nil {
		_, _ = dim.Fprintln(w, "(file not found)")
	}

	return nil
}

// maskToken keeps the first and last four characters of long tokens.
func maskToken(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}
