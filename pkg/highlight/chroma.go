package highlight

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "colorful"

// Chroma highlights source locally.
type Chroma struct {
	style     *chroma.Style
	formatter *html.Formatter
}

// NewChroma creates a local highlighter using the named style.
// Unknown style names fall back to chroma's default style.
func NewChroma(style string) *Chroma {
	if style == "" {
		style = DefaultStyle
	}
	return &Chroma{
		style:     styles.Get(style),
		formatter: html.New(html.WithClasses(false)),
	}
}

// Highlight picks a lexer by language name, then by analysing the source,
// then falls back to plain text.
func (c *Chroma) Highlight(ctx context.Context, source, lang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	lexer := lexers.Get(strings.ToLower(strings.TrimSpace(lang)))
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", fmt.Errorf("failed to tokenise %s source: %w", lang, err)
	}

	var sb strings.Builder
	if err := c.formatter.Format(&sb, c.style, iterator); err != nil {
		return "", fmt.Errorf("failed to format %s source: %w", lang, err)
	}
	return sb.String(), nil
}

// StyleName returns the name of the style in use.
func (c *Chroma) StyleName() string {
	return c.style.Name
}
