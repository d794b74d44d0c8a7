// Package converter wires configuration, macros and highlighting around the
// creole core and converts files in parallel for the CLI.
package converter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/open-cli-collective/creole-cli/internal/config"
	"github.com/open-cli-collective/creole-cli/internal/logging"
	"github.com/open-cli-collective/creole-cli/pkg/creole"
	"github.com/open-cli-collective/creole-cli/pkg/creole/macros"
	"github.com/open-cli-collective/creole-cli/pkg/highlight"
)

// Options holds settings that come from flags rather than the config file.
type Options struct {
	// NFC normalizes input to Unicode NFC before conversion.
	NFC bool

	// Stderr receives macro diagnostics; os.Stderr when nil.
	Stderr io.Writer

	// Highlighter overrides the one selected by the configuration.
	Highlighter highlight.Highlighter

	// Logger records per-file progress; discarded when nil.
	Logger *logging.Logger
}

// Converter converts Creole documents with a fixed option set. It is safe
// for concurrent use.
type Converter struct {
	opts creole.ConvertOptions
	nfc  bool
	log  *logging.Logger
}

// New builds a converter from cfg. Code highlighting uses the remote service
// when cfg.HighlightURL is set and chroma otherwise.
func New(ctx context.Context, cfg *config.Config, o Options) *Converter {
	h := o.Highlighter
	if h == nil {
		h = NewHighlighter(cfg)
	}

	stderr := o.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	opts := cfg.ConvertOptions()
	opts.Stderr = &lockedWriter{w: stderr}
	opts.Highlight = highlight.ForConvert(ctx, h)

	set := &macros.Set{Highlighter: h, Context: ctx, Options: opts}
	opts.Macros = set.Map()

	log := o.Logger
	if log == nil {
		log = logging.Discard()
	}

	return &Converter{opts: opts, nfc: o.NFC, log: log}
}

// NewHighlighter selects the highlighter described by cfg.
func NewHighlighter(cfg *config.Config) highlight.Highlighter {
	if cfg.HighlightURL != "" {
		return highlight.NewClient(cfg.HighlightURL, cfg.HighlightToken)
	}
	return highlight.NewChroma(cfg.HighlightStyle)
}

// ConvertOptions returns the options used for every conversion.
func (c *Converter) ConvertOptions() creole.ConvertOptions {
	return c.opts
}

// Convert converts markup to HTML.
func (c *Converter) Convert(markup string) (string, error) {
	if c.nfc {
		markup = norm.NFC.String(markup)
	}
	return creole.ToHTMLWithOptions(markup, c.opts)
}

// ConvertReader converts everything read from r.
func (c *Converter) ConvertReader(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return c.Convert(string(data))
}

// Result describes the conversion of one file.
type Result struct {
	Source   string        `json:"source"`
	Output   string        `json:"output,omitempty"`
	Bytes    int           `json:"bytes"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
}

// OK reports whether the file converted.
func (r Result) OK() bool {
	return r.Err == nil
}

// OutputPath returns where the HTML for source is written: next to the
// source when outDir is empty, with the extension replaced by .html.
func OutputPath(source, outDir string) string {
	base := filepath.Base(source)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".html"
	if outDir == "" {
		return filepath.Join(filepath.Dir(source), name)
	}
	return filepath.Join(outDir, name)
}

// ConvertFile converts source and writes the HTML to OutputPath.
func (c *Converter) ConvertFile(source, outDir string) Result {
	start := time.Now()
	res := Result{Source: source, Output: OutputPath(source, outDir)}

	fail := func(err error) Result {
		res.Err = err
		res.Error = err.Error()
		res.Output = ""
		res.Duration = time.Since(start)
		c.log.ConversionFailed(source, err)
		return res
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return fail(fmt.Errorf("failed to read %s: %w", source, err))
	}

	html, err := c.Convert(string(data))
	if err != nil {
		return fail(fmt.Errorf("failed to convert %s: %w", source, err))
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fail(fmt.Errorf("failed to create output directory: %w", err))
		}
	}
	if err := os.WriteFile(res.Output, []byte(html), 0644); err != nil {
		return fail(fmt.Errorf("failed to write %s: %w", res.Output, err))
	}

	res.Bytes = len(html)
	res.Duration = time.Since(start)
	c.log.FileConverted(source, res.Output, res.Bytes, res.Duration)
	return res
}

// ConvertFiles converts files with at most jobs conversions in flight
// (GOMAXPROCS when jobs <= 0). Results keep the order of files. Per-file
// failures are reported in the results; the error is non-nil only when ctx
// is cancelled.
func (c *Converter) ConvertFiles(ctx context.Context, files []string, outDir string, jobs int) ([]Result, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(files))
	if len(files) == 0 {
		return results, nil
	}

	start := time.Now()
	c.log.ConversionStarted(len(files), min(jobs, len(files)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			// Each index is written by exactly one goroutine.
			results[i] = c.ConvertFile(path, outDir)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	c.log.ConversionCompleted(len(files)-failed, failed, time.Since(start))
	return results, nil
}

// lockedWriter serializes diagnostics written by concurrent conversions.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
