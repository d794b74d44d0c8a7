// Package macros provides ready-made macros for the creole converter:
// raw HTML, preformatted and highlighted code, Markdown, and admonition
// panels whose body is Creole.
package macros

import (
	"context"
	"sort"

	"github.com/open-cli-collective/creole-cli/pkg/creole"
	"github.com/open-cli-collective/creole-cli/pkg/highlight"
)

// BodyType indicates how a macro's body content is handled.
type BodyType string

const (
	BodyTypeRaw       BodyType = "raw"        // inserted unchanged
	BodyTypePlainText BodyType = "plain-text" // escaped or highlighted
	BodyTypeMarkdown  BodyType = "markdown"   // rendered as CommonMark
	BodyTypeRichText  BodyType = "rich-text"  // converted as Creole
)

// MacroType describes one built-in macro.
type MacroType struct {
	Name     string
	BodyType BodyType
	Panel    bool // rendered as an admonition panel
}

// Types lists the built-in macros.
// Adding a macro = adding an entry here and a case in Set.render.
var Types = map[string]MacroType{
	"html":     {Name: "html", BodyType: BodyTypeRaw},
	"pre":      {Name: "pre", BodyType: BodyTypePlainText},
	"code":     {Name: "code", BodyType: BodyTypePlainText},
	"markdown": {Name: "markdown", BodyType: BodyTypeMarkdown},
	"info":     {Name: "info", BodyType: BodyTypeRichText, Panel: true},
	"warning":  {Name: "warning", BodyType: BodyTypeRichText, Panel: true},
	"note":     {Name: "note", BodyType: BodyTypeRichText, Panel: true},
	"tip":      {Name: "tip", BodyType: BodyTypeRichText, Panel: true},
	"expand":   {Name: "expand", BodyType: BodyTypeRichText},
}

// Names returns the built-in macro names in sorted order.
func Names() []string {
	names := make([]string, 0, len(Types))
	for name := range Types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set configures the built-in macros.
type Set struct {
	// Highlighter renders the body of code macros. Without it code is
	// rendered like pre.
	Highlighter highlight.Highlighter

	// Context is passed to the highlighter; context.Background when nil.
	Context context.Context

	// Options converts rich-text bodies. Its Macros field is replaced by
	// the set itself so panels can contain macros.
	Options creole.ConvertOptions
}

// Default returns the built-in macros using h for code highlighting.
func Default(h highlight.Highlighter) creole.MacroMap {
	return (&Set{Highlighter: h}).Map()
}

// Map returns the set as a registry.
func (s *Set) Map() creole.MacroMap {
	m := make(creole.MacroMap, len(Types))
	for name, mt := range Types {
		mt := mt
		m[name] = func(call *creole.MacroCall) (string, error) {
			return s.render(mt, call, m)
		}
	}
	return m
}

func (s *Set) context() context.Context {
	if s.Context == nil {
		return context.Background()
	}
	return s.Context
}
