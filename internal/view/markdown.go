package view

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// DefaultWrap is the word-wrap width for rendered Markdown.
const DefaultWrap = 100

// RenderMarkdown renders Markdown for the terminal. With colors disabled,
// or when glamour cannot render, the Markdown is printed as is.
func (r *Renderer) RenderMarkdown(markdown string, wrap int) {
	if wrap <= 0 {
		wrap = DefaultWrap
	}
	if r.noColor || r.format == FormatPlain {
		fmt.Fprint(r.writer, markdown)
		return
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		fmt.Fprint(r.writer, markdown)
		return
	}
	out, err := tr.Render(markdown)
	if err != nil {
		fmt.Fprint(r.writer, markdown)
		return
	}
	fmt.Fprint(r.writer, out)
}
