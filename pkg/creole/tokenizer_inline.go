// tokenizer_inline.go implements tokenization of inline markup within one block.
package creole

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// freeURLPattern matches a bare URL. Every scheme but mailto needs "://" so
// prose such as "news:today" stays text. Trailing punctuation is trimmed
// separately.
var freeURLPattern = regexp.MustCompile(`^(?:(?:https?|ftp|nntp|news|telnet|file|irc)://|mailto:)\S+`)

// urlTrailingPunct may end a sentence right after a URL and is not part of it.
const urlTrailingPunct = ",.:;!?()"

// TokenizeInline scans the text of one block and returns a token stream.
// At each position the first matching rule wins, in this order:
//   - ~ escape (a following URL is taken whole)
//   - <<macro>> tag, with body when the matching <</macro>> follows
//   - \\ line break, and in blog mode every newline
//   - [[link]] and [[link|label]]
//   - {{{nowiki}}}, then {{image}} and {{image|alt}}
//   - ** strong, // emphasis (not after ':'), ## monospace markers
//   - free URLs at the start of text or after whitespace
//
// Everything else accumulates into text tokens. In wiki mode a newline
// produces no token and no text.
func TokenizeInline(input string, mode LineBreakMode) []InlineToken {
	s := &inlineScanner{input: input, mode: mode}
	s.run()
	return s.tokens
}

type inlineScanner struct {
	input     string
	mode      LineBreakMode
	tokens    []InlineToken
	textStart int
}

func (s *inlineScanner) run() {
	pos := 0
	for pos < len(s.input) {
		if next, ok := s.scanAt(pos); ok {
			pos = next
			s.textStart = pos
			continue
		}
		pos++
	}
	s.flushText(len(s.input))
}

// scanAt tries every rule at pos. On success the token has been emitted and
// the position after it is returned.
func (s *inlineScanner) scanAt(pos int) (int, bool) {
	in := s.input
	switch in[pos] {
	case '~':
		return s.scanEscape(pos)
	case '<':
		return s.scanMacro(pos)
	case '\\':
		if strings.HasPrefix(in[pos:], `\\`) {
			s.emit(pos, InlineToken{Type: InlineTokenBreak})
			return pos + 2, true
		}
	case '\n':
		s.flushText(pos)
		if s.mode == LineBreaksBlog {
			s.emit(pos, InlineToken{Type: InlineTokenBreak})
		}
		return pos + 1, true
	case '[':
		return s.scanLink(pos)
	case '{':
		if strings.HasPrefix(in[pos:], "{{{") {
			return s.scanNowiki(pos)
		}
		return s.scanImage(pos)
	case '*':
		if strings.HasPrefix(in[pos:], "**") {
			s.emit(pos, InlineToken{Type: InlineTokenStrong, Text: "**"})
			return pos + 2, true
		}
	case '/':
		if strings.HasPrefix(in[pos:], "//") && (pos == 0 || in[pos-1] != ':') {
			s.emit(pos, InlineToken{Type: InlineTokenEmphasis, Text: "//"})
			return pos + 2, true
		}
	case '#':
		if strings.HasPrefix(in[pos:], "##") {
			s.emit(pos, InlineToken{Type: InlineTokenMonospace, Text: "##"})
			return pos + 2, true
		}
	}

	if url, ok := s.freeURL(pos); ok {
		s.emit(pos, InlineToken{Type: InlineTokenLink, Target: url, Text: url, FreeURL: true})
		return pos + len(url), true
	}
	return pos, false
}

func (s *inlineScanner) scanEscape(pos int) (int, bool) {
	if pos+1 >= len(s.input) {
		return pos, false
	}
	r, size := utf8.DecodeRuneInString(s.input[pos+1:])
	if unicode.IsSpace(r) {
		return pos, false
	}

	if url, ok := s.freeURLAfterEscape(pos); ok {
		s.emit(pos, InlineToken{Type: InlineTokenEscaped, Text: url})
		return pos + 1 + len(url), true
	}

	s.emit(pos, InlineToken{Type: InlineTokenEscaped, Text: s.input[pos+1 : pos+1+size]})
	return pos + 1 + size, true
}

func (s *inlineScanner) scanMacro(pos int) (int, bool) {
	tag, ok := ScanMacroTag(s.input, pos)
	if !ok || tag.Type == MacroTagClose {
		return pos, false
	}

	node := &MacroNode{Name: tag.Name, RawArgs: tag.RawArgs}
	end := tag.End
	if tag.Type == MacroTagOpen {
		closing := closeTag(tag.Name)
		if idx := strings.Index(s.input[end:], closing); idx >= 0 {
			node.Body = s.input[end : end+idx]
			node.HasBody = true
			end += idx + len(closing)
		}
	}

	s.emit(pos, InlineToken{Type: InlineTokenMacro, Macro: node})
	return end, true
}

func (s *inlineScanner) scanLink(pos int) (int, bool) {
	if !strings.HasPrefix(s.input[pos:], "[[") {
		return pos, false
	}
	idx := strings.Index(s.input[pos+2:], "]]")
	if idx < 0 {
		return pos, false
	}
	content := s.input[pos+2 : pos+2+idx]
	if strings.Contains(content, "\n") {
		return pos, false
	}

	target, label, hasLabel := strings.Cut(content, "|")
	target = strings.TrimSpace(target)
	if target == "" {
		return pos, false
	}
	tok := InlineToken{Type: InlineTokenLink, Target: target, Text: target}
	if hasLabel {
		tok.Text = strings.TrimSpace(label)
		tok.HasLabel = true
	}
	s.emit(pos, tok)
	return pos + 2 + idx + 2, true
}

func (s *inlineScanner) scanNowiki(pos int) (int, bool) {
	idx := strings.Index(s.input[pos+3:], "}}}")
	if idx < 0 {
		return pos, false
	}
	end := pos + 3 + idx + 3
	// Extra closing braces belong to the content: {{{a}}}} is "a}".
	for end < len(s.input) && s.input[end] == '}' {
		end++
	}
	s.emit(pos, InlineToken{Type: InlineTokenNowiki, Text: s.input[pos+3 : end-3]})
	return end, true
}

func (s *inlineScanner) scanImage(pos int) (int, bool) {
	if !strings.HasPrefix(s.input[pos:], "{{") {
		return pos, false
	}
	idx := strings.Index(s.input[pos+2:], "}}")
	if idx < 0 {
		return pos, false
	}
	content := s.input[pos+2 : pos+2+idx]
	if strings.Contains(content, "\n") {
		return pos, false
	}

	src, alt, hasAlt := strings.Cut(content, "|")
	src = strings.TrimSpace(src)
	if src == "" {
		return pos, false
	}
	tok := InlineToken{Type: InlineTokenImage, Target: src, Text: src}
	if hasAlt {
		tok.Text = strings.TrimSpace(alt)
		tok.HasLabel = true
	}
	s.emit(pos, tok)
	return pos + 2 + idx + 2, true
}

// freeURL matches a bare URL at pos when pos starts the text or follows whitespace.
func (s *inlineScanner) freeURL(pos int) (string, bool) {
	if pos > 0 {
		r, _ := utf8.DecodeLastRuneInString(s.input[:pos])
		if !unicode.IsSpace(r) {
			return "", false
		}
	}
	return matchFreeURL(s.input[pos:])
}

// freeURLAfterEscape matches "~URL" under the same boundary rule as freeURL.
func (s *inlineScanner) freeURLAfterEscape(pos int) (string, bool) {
	if pos > 0 {
		r, _ := utf8.DecodeLastRuneInString(s.input[:pos])
		if !unicode.IsSpace(r) {
			return "", false
		}
	}
	return matchFreeURL(s.input[pos+1:])
}

func matchFreeURL(text string) (string, bool) {
	url := freeURLPattern.FindString(text)
	if url == "" {
		return "", false
	}
	if strings.ContainsRune(urlTrailingPunct, rune(url[len(url)-1])) {
		url = url[:len(url)-1]
	}
	if strings.HasSuffix(url, ":") {
		return "", false
	}
	return url, true
}

// emit flushes pending text and appends tok at pos.
func (s *inlineScanner) emit(pos int, tok InlineToken) {
	s.flushText(pos)
	tok.Position = pos
	s.tokens = append(s.tokens, tok)
}

func (s *inlineScanner) flushText(pos int) {
	if pos > s.textStart {
		s.tokens = append(s.tokens, InlineToken{
			Type:     InlineTokenText,
			Text:     s.input[s.textStart:pos],
			Position: s.textStart,
		})
	}
	s.textStart = pos
}
