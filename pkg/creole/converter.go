// Package creole converts Creole wiki markup to HTML fragments.
//
// A conversion normalizes line endings, splits the input into typed block
// units, renders each block's inline markup and resolves macros through a
// caller-supplied Registry. Macro failures are reported inline according to
// ConvertOptions.Verbose; only debug mode turns them into returned errors.
//
// Conversions share no state. Several may run concurrently as long as the
// Registry they use is not modified while they run.
package creole

import (
	"io"
	"strings"
)

// LineBreakMode selects how newlines inside a paragraph are rendered.
type LineBreakMode int

const (
	// LineBreaksBlog turns every newline into <br />.
	LineBreaksBlog LineBreakMode = iota
	// LineBreaksWiki only honors explicit \\ breaks; newlines are dropped.
	LineBreaksWiki
)

// String returns the configuration name of the mode.
func (m LineBreakMode) String() string {
	if m == LineBreaksWiki {
		return "wiki"
	}
	return "blog"
}

// Verbosity controls how macro problems are reported.
type Verbosity int

const (
	VerboseSilent Verbosity = iota // unknown or failing macros produce nothing
	VerboseErrors                  // an [Error: ...] marker replaces the macro
	VerboseTrace                   // marker plus a diagnostic written to Stderr
)

// HighlightFunc renders source in the given language as HTML.
type HighlightFunc func(source, lang string) (string, error)

// ConvertOptions configures one conversion. The zero value converts with no
// macros, silent errors and blog line breaks.
type ConvertOptions struct {
	Macros     Registry
	Verbose    Verbosity
	Stderr     io.Writer // diagnostic sink for VerboseTrace; os.Stderr when nil
	LineBreaks LineBreakMode
	Debug      bool

	// Highlight renders preformatted blocks whose first line is "#!lang".
	// Without it, or when it fails, they are rendered as plain <pre>.
	Highlight HighlightFunc
}

// ToHTML converts markup with default options.
func ToHTML(markup string) (string, error) {
	return ToHTMLWithOptions(markup, ConvertOptions{})
}

// ToHTMLWithOptions converts markup to an HTML fragment.
//
// Each rendered block group ends with a newline; a blank line in the source
// between two groups becomes one empty line in the output. On error no
// partial output is returned.
func ToHTMLWithOptions(markup string, opts ConvertOptions) (string, error) {
	doc := Parse(markup)
	h := &htmlRenderer{opts: opts, resolver: newResolver(opts)}

	var sb strings.Builder
	pendingBlank := false
	blocks := doc.Blocks
	for len(blocks) > 0 {
		group := nextGroup(blocks)
		blocks = blocks[len(group):]

		out, err := h.renderGroup(group)
		if err != nil {
			return "", err
		}
		blank := pendingBlank || group[0].BlankBefore
		if out == "" {
			pendingBlank = blank
			continue
		}
		if blank && sb.Len() > 0 {
			sb.WriteString("\n")
		}
		pendingBlank = false
		sb.WriteString(out)
	}
	return sb.String(), nil
}

// nextGroup returns the leading blocks that render together: consecutive
// list items or table rows not separated by a blank line, or a single block.
func nextGroup(blocks []*Block) []*Block {
	n := 1
	switch first := blocks[0]; {
	case isListItem(first):
		for n < len(blocks) && isListItem(blocks[n]) && !blocks[n].BlankBefore {
			n++
		}
	case first.Kind == BlockTableRow:
		for n < len(blocks) && blocks[n].Kind == BlockTableRow && !blocks[n].BlankBefore {
			n++
		}
	}
	return blocks[:n]
}

func isListItem(b *Block) bool {
	return b.Kind == BlockUnorderedItem || b.Kind == BlockOrderedItem
}

func (h *htmlRenderer) renderGroup(group []*Block) (string, error) {
	b := group[0]
	switch b.Kind {
	case BlockUnorderedItem, BlockOrderedItem:
		return h.renderLists(group)
	case BlockTableRow:
		return h.renderTable(group)
	case BlockHeading:
		return h.renderHeading(b)
	case BlockRule:
		return "<hr />\n", nil
	case BlockPreformatted:
		return h.renderPreformatted(b), nil
	case BlockMacro:
		raw, err := h.resolveBlock(b)
		if err != nil {
			return "", err
		}
		return h.renderRaw(raw), nil
	case BlockRawHTML:
		return h.renderRaw(b), nil
	default:
		return h.renderParagraph(b)
	}
}

// resolveBlock runs a block macro and returns its output as a raw HTML block.
func (h *htmlRenderer) resolveBlock(b *Block) (*Block, error) {
	out, err := h.resolver.Emit(b.Macro)
	if err != nil {
		return nil, err
	}
	raw := *b
	raw.Kind = BlockRawHTML
	raw.Text = out
	raw.Macro = nil
	return &raw, nil
}

// renderRaw emits macro output unescaped, ending in exactly one newline.
func (h *htmlRenderer) renderRaw(b *Block) string {
	if b.Text == "" {
		return ""
	}
	return strings.TrimSuffix(b.Text, "\n") + "\n"
}
