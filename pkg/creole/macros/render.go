package macros

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/open-cli-collective/creole-cli/pkg/creole"
)

// mdParser is a pre-configured goldmark instance with GFM table extension.
var mdParser = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

func (s *Set) render(mt MacroType, call *creole.MacroCall, self creole.MacroMap) (string, error) {
	switch mt.BodyType {
	case BodyTypeRaw:
		return call.Text, nil
	case BodyTypeMarkdown:
		return renderMarkdown(call.Text)
	case BodyTypePlainText:
		if mt.Name == "code" {
			return s.renderCode(call)
		}
		return renderPre(call.Text), nil
	case BodyTypeRichText:
		body, err := s.renderRichText(call.Text, self)
		if err != nil {
			return "", err
		}
		if mt.Panel {
			return renderPanel(mt.Name, stringArg(call.Args, "title"), body), nil
		}
		return renderExpand(stringArg(call.Args, "title"), body), nil
	default:
		return "", fmt.Errorf("macro %q has unknown body type %q", mt.Name, mt.BodyType)
	}
}

func renderPre(text string) string {
	return "<pre>" + creole.EscapeHTML(text) + "</pre>"
}

// renderCode highlights the body in the language given by the "ext" or
// "lang" argument.
func (s *Set) renderCode(call *creole.MacroCall) (string, error) {
	lang := stringArg(call.Args, "ext")
	if lang == "" {
		lang = stringArg(call.Args, "lang")
	}
	if s.Highlighter == nil {
		return renderPre(call.Text), nil
	}
	out, err := s.Highlighter.Highlight(s.context(), call.Text, strings.TrimPrefix(lang, "."))
	if err != nil {
		return "", fmt.Errorf("failed to highlight %s code: %w", lang, err)
	}
	return out, nil
}

func renderMarkdown(text string) (string, error) {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

func (s *Set) renderRichText(text string, self creole.MacroMap) (string, error) {
	opts := s.Options
	opts.Macros = self
	return creole.ToHTMLWithOptions(text, opts)
}

func renderPanel(name, title, body string) string {
	var sb strings.Builder
	sb.WriteString(`<div class="admonition `)
	sb.WriteString(name)
	sb.WriteString(`">`)
	sb.WriteString("\n")
	if title != "" {
		sb.WriteString(`<p class="admonition-title">`)
		sb.WriteString(creole.EscapeHTML(title))
		sb.WriteString("</p>\n")
	}
	sb.WriteString(body)
	sb.WriteString("</div>")
	return sb.String()
}

func renderExpand(title, body string) string {
	if title == "" {
		title = "Click here to expand..."
	}
	var sb strings.Builder
	sb.WriteString("<details>\n<summary>")
	sb.WriteString(creole.EscapeHTML(title))
	sb.WriteString("</summary>\n")
	sb.WriteString(body)
	sb.WriteString("</details>")
	return sb.String()
}

// stringArg returns a string argument, formatting non-string values.
func stringArg(args creole.Args, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
