// tokens.go defines token types for macro tags and inline markup.
package creole

// MacroTagType represents the forms a macro tag can take.
type MacroTagType int

const (
	MacroTagOpen      MacroTagType = iota // <<name args>>
	MacroTagClose                         // <</name>>
	MacroTagSelfClose                     // <<name args />>
)

// MacroTag is a single scanned macro tag.
type MacroTag struct {
	Type     MacroTagType
	Name     string
	RawArgs  string // attribute text, trimmed, without a trailing "/"
	Position int    // byte offset of "<<"
	End      int    // byte offset just past ">>"
}

// InlineTokenType represents token types produced by the inline tokenizer.
type InlineTokenType int

const (
	InlineTokenText      InlineTokenType = iota // plain text, escaped on output
	InlineTokenEscaped                          // ~x or ~URL, emitted literally
	InlineTokenBreak                            // \\ or (blog mode) a newline
	InlineTokenLink                             // [[target|label]] or a free URL
	InlineTokenImage                            // {{src|alt}}
	InlineTokenNowiki                           // {{{text}}}
	InlineTokenMacro                            // <<name ...>> with optional body
	InlineTokenStrong                           // **
	InlineTokenEmphasis                         // //
	InlineTokenMonospace                        // ##
)

// InlineToken represents a single token from inline tokenization.
type InlineToken struct {
	Type     InlineTokenType
	Text     string     // text, escaped literal, nowiki content, link label or image alt
	Target   string     // link target or image source
	HasLabel bool       // set for links and images written with "|"
	FreeURL  bool       // set for links recognized from a bare URL
	Macro    *MacroNode // set for InlineTokenMacro
	Position int        // byte offset in the tokenized text
}
