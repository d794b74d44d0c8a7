// inline.go builds inline span trees from the token stream.
package creole

// SpanKind identifies the variant of an inline span.
type SpanKind int

const (
	SpanText      SpanKind = iota // plain text
	SpanBold                      // **...**
	SpanItalic                    // //...//
	SpanMonospace                 // ##...##
	SpanLineBreak                 // <br />
	SpanLink                      // [[target|label]] or free URL
	SpanImage                     // {{src|alt}}
	SpanMacro                     // <<name>>
	SpanEscaped                   // ~x
	SpanNowiki                    // {{{...}}}
)

// Span is one node of an inline tree.
type Span struct {
	Kind     SpanKind
	Text     string     // text, escaped literal, nowiki content or image alt
	Target   string     // link target or image source
	Children []*Span    // content of Bold, Italic, Monospace and link labels
	Macro    *MacroNode // set for SpanMacro
	Position int        // byte offset in the block text
}

// ParseInline tokenizes text and pairs emphasis markers into a span tree.
//
// A closing marker closes the nearest open span of its kind; spans opened
// after it and still unclosed are dissolved back into literal marker text.
// Markers still open at the end of the text are likewise left literal, so
// emphasis never leaks past the block being parsed.
func ParseInline(text string, mode LineBreakMode) []*Span {
	return buildSpans(TokenizeInline(text, mode), mode)
}

// spanFrame is an open emphasis span waiting for its closing marker.
type spanFrame struct {
	kind     SpanKind
	marker   string
	position int
	children []*Span
}

func buildSpans(tokens []InlineToken, mode LineBreakMode) []*Span {
	stack := []*spanFrame{{}}

	appendSpan := func(sp *Span) {
		top := stack[len(stack)-1]
		top.children = append(top.children, sp)
	}

	for _, tok := range tokens {
		switch tok.Type {
		case InlineTokenText:
			appendSpan(&Span{Kind: SpanText, Text: tok.Text, Position: tok.Position})
		case InlineTokenEscaped:
			appendSpan(&Span{Kind: SpanEscaped, Text: tok.Text, Position: tok.Position})
		case InlineTokenBreak:
			appendSpan(&Span{Kind: SpanLineBreak, Position: tok.Position})
		case InlineTokenNowiki:
			appendSpan(&Span{Kind: SpanNowiki, Text: tok.Text, Position: tok.Position})
		case InlineTokenImage:
			appendSpan(&Span{Kind: SpanImage, Target: tok.Target, Text: tok.Text, Position: tok.Position})
		case InlineTokenMacro:
			appendSpan(&Span{Kind: SpanMacro, Macro: tok.Macro, Position: tok.Position})
		case InlineTokenLink:
			link := &Span{Kind: SpanLink, Target: tok.Target, Position: tok.Position}
			if tok.HasLabel {
				link.Children = ParseInline(tok.Text, mode)
			} else {
				link.Children = []*Span{{Kind: SpanText, Text: tok.Text, Position: tok.Position}}
			}
			appendSpan(link)
		case InlineTokenStrong, InlineTokenEmphasis, InlineTokenMonospace:
			kind := markerKind(tok.Type)
			idx := -1
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].kind == kind {
					idx = i
					break
				}
			}
			if idx < 0 {
				stack = append(stack, &spanFrame{kind: kind, marker: tok.Text, position: tok.Position})
				continue
			}
			for len(stack)-1 > idx {
				stack = dissolveTop(stack)
			}
			frame := stack[idx]
			stack = stack[:idx]
			appendSpan(&Span{Kind: kind, Children: frame.children, Position: frame.position})
		}
	}

	for len(stack) > 1 {
		stack = dissolveTop(stack)
	}
	return stack[0].children
}

// dissolveTop turns the innermost unclosed frame back into literal text
// inside its parent.
func dissolveTop(stack []*spanFrame) []*spanFrame {
	top := stack[len(stack)-1]
	stack = stack[:len(stack)-1]
	parent := stack[len(stack)-1]
	parent.children = append(parent.children, &Span{Kind: SpanText, Text: top.marker, Position: top.position})
	parent.children = append(parent.children, top.children...)
	return stack
}

func markerKind(t InlineTokenType) SpanKind {
	switch t {
	case InlineTokenStrong:
		return SpanBold
	case InlineTokenEmphasis:
		return SpanItalic
	default:
		return SpanMonospace
	}
}
