// render.go renders spans and blocks to HTML.
package creole

import (
	"strconv"
	"strings"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// EscapeHTML escapes the HTML metacharacters &, < and >.
func EscapeHTML(s string) string {
	return textEscaper.Replace(s)
}

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// htmlRenderer renders one document; it owns the resolver for that call.
type htmlRenderer struct {
	opts     ConvertOptions
	resolver *resolver
}

// renderInline converts the inline text of a block starting at line.
func (h *htmlRenderer) renderInline(text string, line int) (string, error) {
	var sb strings.Builder
	if err := h.renderSpans(&sb, ParseInline(text, h.opts.LineBreaks), text, line); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (h *htmlRenderer) renderSpans(sb *strings.Builder, spans []*Span, text string, line int) error {
	for _, sp := range spans {
		switch sp.Kind {
		case SpanText, SpanEscaped:
			sb.WriteString(EscapeHTML(sp.Text))
		case SpanNowiki:
			sb.WriteString("<tt>")
			sb.WriteString(EscapeHTML(sp.Text))
			sb.WriteString("</tt>")
		case SpanLineBreak:
			sb.WriteString("<br />\n")
		case SpanBold, SpanItalic, SpanMonospace:
			tag := spanTag(sp.Kind)
			sb.WriteString("<" + tag + ">")
			if err := h.renderSpans(sb, sp.Children, text, line); err != nil {
				return err
			}
			sb.WriteString("</" + tag + ">")
		case SpanLink:
			sb.WriteString(`<a href="`)
			sb.WriteString(escapeAttr(sp.Target))
			sb.WriteString(`">`)
			if err := h.renderSpans(sb, sp.Children, text, line); err != nil {
				return err
			}
			sb.WriteString("</a>")
		case SpanImage:
			sb.WriteString(`<img src="`)
			sb.WriteString(escapeAttr(sp.Target))
			sb.WriteString(`" alt="`)
			sb.WriteString(escapeAttr(sp.Text))
			sb.WriteString(`" />`)
		case SpanMacro:
			node := *sp.Macro
			if sp.Position <= len(text) {
				node.Line = line + strings.Count(text[:sp.Position], "\n")
			}
			out, err := h.resolver.Emit(&node)
			if err != nil {
				return err
			}
			sb.WriteString(out)
		}
	}
	return nil
}

func spanTag(kind SpanKind) string {
	switch kind {
	case SpanBold:
		return "strong"
	case SpanItalic:
		return "i"
	default:
		return "tt"
	}
}

func (h *htmlRenderer) renderHeading(b *Block) (string, error) {
	text, err := h.renderInline(b.Text, b.StartLine)
	if err != nil {
		return "", err
	}
	level := strconv.Itoa(b.Level)
	return "<h" + level + ">" + text + "</h" + level + ">\n", nil
}

func (h *htmlRenderer) renderParagraph(b *Block) (string, error) {
	text, err := h.renderInline(b.Text, b.StartLine)
	if err != nil {
		return "", err
	}
	return "<p>" + text + "</p>\n", nil
}

// renderPreformatted escapes the block verbatim, or hands "#!lang" blocks
// to the highlighter when one is configured. A failing highlighter falls
// back to the plain rendering.
func (h *htmlRenderer) renderPreformatted(b *Block) string {
	if b.Lang != "" && h.opts.Highlight != nil {
		source := b.Text
		if _, rest, ok := strings.Cut(b.Text, "\n"); ok {
			source = rest
		} else {
			source = ""
		}
		if out, err := h.opts.Highlight(source, b.Lang); err == nil {
			return strings.TrimSuffix(out, "\n") + "\n"
		}
	}
	return "<pre>" + EscapeHTML(b.Text) + "</pre>\n"
}

// renderTable renders consecutive rows as one table.
func (h *htmlRenderer) renderTable(rows []*Block) (string, error) {
	var sb strings.Builder
	sb.WriteString("<table>\n")
	for _, row := range rows {
		sb.WriteString("<tr>\n")
		for _, cell := range row.Cells {
			text, err := h.renderInline(cell.Text, row.StartLine)
			if err != nil {
				return "", err
			}
			tag := "td"
			if cell.Header {
				tag = "th"
			}
			sb.WriteString("\t<" + tag + ">" + text + "</" + tag + ">\n")
		}
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("</table>\n")
	return sb.String(), nil
}

// listNode is one <ul> or <ol> with its items.
type listNode struct {
	ordered bool
	items   []*listItem
}

type listItem struct {
	block    *Block
	children []*listNode
}

// buildLists nests consecutive list items by depth. A depth more than one
// below the current level is clamped to the next level; a marker type change
// at the same depth closes the list and opens one of the other kind.
func buildLists(items []*Block) []*listNode {
	var roots []*listNode
	var stack []*listNode

	for _, b := range items {
		ordered := b.Kind == BlockOrderedItem
		depth := b.Level
		if depth > len(stack)+1 {
			depth = len(stack) + 1
		}
		if len(stack) > depth {
			stack = stack[:depth]
		}
		if len(stack) == depth && stack[depth-1].ordered != ordered {
			stack = stack[:depth-1]
		}
		if len(stack) < depth {
			l := &listNode{ordered: ordered}
			if depth == 1 {
				roots = append(roots, l)
			} else {
				parent := stack[depth-2]
				last := parent.items[len(parent.items)-1]
				last.children = append(last.children, l)
			}
			stack = append(stack, l)
		}
		stack[depth-1].items = append(stack[depth-1].items, &listItem{block: b})
	}
	return roots
}

func (h *htmlRenderer) renderLists(items []*Block) (string, error) {
	var sb strings.Builder
	for _, l := range buildLists(items) {
		if err := h.renderList(&sb, l, ""); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func (h *htmlRenderer) renderList(sb *strings.Builder, l *listNode, indent string) error {
	tag := "ul"
	if l.ordered {
		tag = "ol"
	}
	sb.WriteString(indent + "<" + tag + ">\n")
	for _, item := range l.items {
		text, err := h.renderInline(item.block.Text, item.block.StartLine)
		if err != nil {
			return err
		}
		sb.WriteString(indent + "\t<li>" + text)
		if len(item.children) == 0 {
			sb.WriteString("</li>\n")
			continue
		}
		var nested strings.Builder
		for _, child := range item.children {
			if err := h.renderList(&nested, child, indent+"\t"); err != nil {
				return err
			}
		}
		sb.WriteString("\n")
		sb.WriteString(strings.TrimSuffix(nested.String(), "\n"))
		sb.WriteString("</li>\n")
	}
	sb.WriteString(indent + "</" + tag + ">\n")
	return nil
}
