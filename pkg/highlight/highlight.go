// Package highlight renders source code as HTML, either locally with chroma
// or through a remote highlighting service.
package highlight

import (
	"context"

	"github.com/open-cli-collective/creole-cli/pkg/creole"
)

// Highlighter renders source in the named language as an HTML fragment.
type Highlighter interface {
	Highlight(ctx context.Context, source, lang string) (string, error)
}

// ForConvert adapts h to the highlight hook of creole.ConvertOptions.
// It returns nil when h is nil so preformatted blocks stay plain.
func ForConvert(ctx context.Context, h Highlighter) creole.HighlightFunc {
	if h == nil {
		return nil
	}
	return func(source, lang string) (string, error) {
		return h.Highlight(ctx, source, lang)
	}
}
