// block.go splits a document into typed block units.
package creole

import (
	"strings"
	"unicode"
)

// BlockKind identifies the variant of a block unit.
type BlockKind int

const (
	BlockParagraph     BlockKind = iota // inline text
	BlockHeading                        // = .. ======
	BlockUnorderedItem                  // * item
	BlockOrderedItem                    // # item
	BlockTableRow                       // |cell|=header|
	BlockPreformatted                   // {{{ ... }}} on their own lines
	BlockMacro                          // <<name>> ... <</name>> at line start
	BlockRule                           // ----
	BlockRawHTML                        // resolved macro output
)

// Block is one block unit of a document.
type Block struct {
	Kind        BlockKind
	Level       int         // heading level or list depth
	Indent      int         // leading whitespace of the first line, in runes
	Text        string      // inline source, preformatted text or raw HTML
	Lang        string      // preformatted "#!lang" tag, if any
	Cells       []TableCell // set for BlockTableRow
	Macro       *MacroNode  // set for BlockMacro
	StartLine   int         // 1-based, inclusive
	EndLine     int         // 1-based, inclusive
	BlankBefore bool        // a blank line separates this block from the previous one
}

// TableCell is one cell of a table row.
type TableCell struct {
	Header bool
	Text   string
}

// Document is the ordered sequence of blocks parsed from one input.
type Document struct {
	Blocks []*Block
}

// NormalizeLineEndings converts \r\n and lone \r to \n.
func NormalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Parse splits markup into block units. Line endings are normalized first.
//
// Classification looks at each line in turn: blank lines end the current
// paragraph, list or table; then preformatted blocks, block macros,
// headings, rules, list items and table rows are recognized; remaining
// lines continue the current list item or paragraph.
//
// List depth is the number of marker characters; leading whitespace is
// recorded but never changes nesting. A list only starts with a single
// marker ("* " or "# "); inside a list, longer runs open deeper levels.
func Parse(markup string) *Document {
	p := &blockParser{
		lines: strings.Split(NormalizeLineEndings(markup), "\n"),
		doc:   &Document{},
	}
	for p.pos < len(p.lines) {
		p.step()
	}
	p.flushParagraph()
	return p.doc
}

type blockParser struct {
	lines []string
	pos   int
	doc   *Document

	para      []string
	paraStart int
	paraBlank bool

	blank   bool // blank line seen since the last block
	inList  bool
	inTable bool
}

func (p *blockParser) step() {
	line := p.lines[p.pos]

	if strings.TrimSpace(line) == "" {
		p.flushParagraph()
		p.blank = true
		p.inList = false
		p.inTable = false
		p.pos++
		return
	}

	if p.tryPreformatted() || p.tryMacroBlock() || p.tryHeading(line) ||
		p.tryRule(line) || p.tryListItem(line) || p.tryTableRow(line) {
		return
	}

	if p.inList {
		last := p.doc.Blocks[len(p.doc.Blocks)-1]
		last.Text += "\n" + strings.TrimRightFunc(line, unicode.IsSpace)
		last.EndLine = p.pos + 1
		p.pos++
		return
	}

	p.inTable = false
	if len(p.para) == 0 {
		p.paraStart = p.pos
		p.paraBlank = p.blank
		p.blank = false
		line = strings.TrimLeftFunc(line, unicode.IsSpace)
	}
	p.para = append(p.para, strings.TrimRightFunc(line, unicode.IsSpace))
	p.pos++
}

// addBlock closes any open paragraph and appends b.
func (p *blockParser) addBlock(b *Block, startLine, endLine int) {
	p.flushParagraph()
	b.StartLine = startLine + 1
	b.EndLine = endLine + 1
	b.Indent = leadingWhitespace(p.lines[startLine])
	b.BlankBefore = p.blank
	p.blank = false
	p.inList = b.Kind == BlockUnorderedItem || b.Kind == BlockOrderedItem
	p.inTable = b.Kind == BlockTableRow
	p.doc.Blocks = append(p.doc.Blocks, b)
}

func (p *blockParser) flushParagraph() {
	if len(p.para) == 0 {
		return
	}
	p.doc.Blocks = append(p.doc.Blocks, &Block{
		Kind:        BlockParagraph,
		Text:        strings.Join(p.para, "\n"),
		Indent:      leadingWhitespace(p.lines[p.paraStart]),
		StartLine:   p.paraStart + 1,
		EndLine:     p.paraStart + len(p.para),
		BlankBefore: p.paraBlank,
	})
	p.para = nil
}

// tryPreformatted recognizes a "{{{" line closed by a later "}}}" line.
// Inside, a line " }}}" stands for a literal "}}}".
func (p *blockParser) tryPreformatted() bool {
	if strings.TrimRightFunc(p.lines[p.pos], unicode.IsSpace) != "{{{" {
		return false
	}
	closeAt := -1
	for i := p.pos + 1; i < len(p.lines); i++ {
		if strings.TrimRightFunc(p.lines[i], unicode.IsSpace) == "}}}" {
			closeAt = i
			break
		}
	}
	if closeAt < 0 {
		return false
	}

	content := make([]string, 0, closeAt-p.pos-1)
	for _, l := range p.lines[p.pos+1 : closeAt] {
		if strings.HasPrefix(l, " ") && strings.TrimSpace(l) == "}}}" {
			l = l[1:]
		}
		content = append(content, l)
	}

	b := &Block{Kind: BlockPreformatted, Text: strings.Join(content, "\n")}
	if len(content) > 0 && strings.HasPrefix(content[0], "#!") {
		lang := strings.TrimSpace(strings.TrimPrefix(content[0], "#!"))
		if lang != "" && !strings.ContainsFunc(lang, unicode.IsSpace) {
			b.Lang = lang
		}
	}
	p.addBlock(b, p.pos, closeAt)
	p.pos = closeAt + 1
	return true
}

// tryMacroBlock recognizes <<name args>> at line start whose <</name>>
// follows, on the same line or later. Text after the closing tag on its
// line is parsed again as the start of the next block.
func (p *blockParser) tryMacroBlock() bool {
	line := p.lines[p.pos]
	start := len(line) - len(strings.TrimLeftFunc(line, unicode.IsSpace))
	tag, ok := ScanMacroTag(line, start)
	if !ok || tag.Type != MacroTagOpen {
		return false
	}

	closing := closeTag(tag.Name)
	var body strings.Builder
	endLine, endCol := -1, 0
	if idx := strings.Index(line[tag.End:], closing); idx >= 0 {
		body.WriteString(line[tag.End : tag.End+idx])
		endLine, endCol = p.pos, tag.End+idx+len(closing)
	} else {
		body.WriteString(line[tag.End:])
		for i := p.pos + 1; i < len(p.lines); i++ {
			body.WriteString("\n")
			if idx := strings.Index(p.lines[i], closing); idx >= 0 {
				body.WriteString(p.lines[i][:idx])
				endLine, endCol = i, idx+len(closing)
				break
			}
			body.WriteString(p.lines[i])
		}
	}
	if endLine < 0 {
		return false
	}

	text := strings.TrimPrefix(body.String(), "\n")
	text = strings.TrimSuffix(text, "\n")
	node := &MacroNode{
		Name:    tag.Name,
		RawArgs: tag.RawArgs,
		Body:    text,
		HasBody: true,
		Block:   true,
		Line:    p.pos + 1,
	}
	p.addBlock(&Block{Kind: BlockMacro, Macro: node, Text: text}, p.pos, endLine)

	rest := p.lines[endLine][endCol:]
	if strings.TrimSpace(rest) != "" {
		p.lines[endLine] = rest
		p.pos = endLine
	} else {
		p.pos = endLine + 1
	}
	return true
}

func (p *blockParser) tryHeading(line string) bool {
	trimmed := strings.TrimSpace(line)
	level := 0
	for level < len(trimmed) && trimmed[level] == '=' {
		level++
	}
	if level == 0 || level > 6 {
		return false
	}
	text := strings.TrimRight(trimmed[level:], "=")
	p.addBlock(&Block{Kind: BlockHeading, Level: level, Text: strings.TrimSpace(text)}, p.pos, p.pos)
	p.pos++
	return true
}

func (p *blockParser) tryRule(line string) bool {
	if strings.TrimSpace(line) != "----" {
		return false
	}
	p.addBlock(&Block{Kind: BlockRule}, p.pos, p.pos)
	p.pos++
	return true
}

func (p *blockParser) tryListItem(line string) bool {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	depth := 0
	for depth < len(trimmed) && (trimmed[depth] == '*' || trimmed[depth] == '#') {
		depth++
	}
	if depth == 0 || (!p.inList && depth > 1) {
		return false
	}

	kind := BlockUnorderedItem
	if trimmed[depth-1] == '#' {
		kind = BlockOrderedItem
	}
	p.addBlock(&Block{
		Kind:  kind,
		Level: depth,
		Text:  strings.TrimSpace(trimmed[depth:]),
	}, p.pos, p.pos)
	p.pos++
	return true
}

func (p *blockParser) tryTableRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "|") {
		return false
	}
	p.addBlock(&Block{Kind: BlockTableRow, Cells: splitTableRow(trimmed), Text: trimmed}, p.pos, p.pos)
	p.pos++
	return true
}

// splitTableRow splits a row on "|" outside of links, images, nowiki,
// macro tags and ~ escapes. A leading "=" marks a header cell.
func splitTableRow(row string) []TableCell {
	s := strings.TrimPrefix(row, "|")
	var raw []string
	var cur strings.Builder

	skipTo := func(i int, open, close string) (int, bool) {
		if !strings.HasPrefix(s[i:], open) {
			return i, false
		}
		idx := strings.Index(s[i+len(open):], close)
		if idx < 0 {
			return i, false
		}
		end := i + len(open) + idx + len(close)
		cur.WriteString(s[i:end])
		return end, true
	}

	for i := 0; i < len(s); {
		if s[i] == '~' && i+1 < len(s) {
			cur.WriteString(s[i : i+2])
			i += 2
			continue
		}
		if end, ok := skipTo(i, "[[", "]]"); ok {
			i = end
			continue
		}
		if end, ok := skipTo(i, "{{{", "}}}"); ok {
			i = end
			continue
		}
		if end, ok := skipTo(i, "{{", "}}"); ok {
			i = end
			continue
		}
		if end, ok := skipTo(i, "<<", ">>"); ok {
			i = end
			continue
		}
		if s[i] == '|' {
			raw = append(raw, cur.String())
			cur.Reset()
			i++
			continue
		}
		cur.WriteByte(s[i])
		i++
	}
	if strings.TrimSpace(cur.String()) != "" {
		raw = append(raw, cur.String())
	}

	cells := make([]TableCell, 0, len(raw))
	for _, c := range raw {
		c = strings.TrimSpace(c)
		if strings.HasPrefix(c, "=") {
			cells = append(cells, TableCell{Header: true, Text: strings.TrimSpace(c[1:])})
			continue
		}
		cells = append(cells, TableCell{Text: c})
	}
	return cells
}

func leadingWhitespace(line string) int {
	n := 0
	for _, r := range line {
		if !unicode.IsSpace(r) {
			break
		}
		n++
	}
	return n
}
