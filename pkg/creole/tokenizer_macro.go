// tokenizer_macro.go implements scanning of <<macro>> tags.
package creole

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ScanMacroTag attempts to scan a macro tag starting at pos.
// Recognized forms:
//   - <<name args>>   - open tag (a body may follow, closed by <</name>>)
//   - <</name>>       - close tag
//   - <<name args />> - self-closing tag
//
// The attribute text ends at the first ">>" and never spans a newline.
func ScanMacroTag(input string, pos int) (MacroTag, bool) {
	if !strings.HasPrefix(input[pos:], "<<") {
		return MacroTag{}, false
	}

	start := pos
	pos += 2

	isClose := false
	if pos < len(input) && input[pos] == '/' {
		isClose = true
		pos++
	}

	pos = skipSpaces(input, pos)

	nameStart := pos
	for pos < len(input) {
		r, size := utf8.DecodeRuneInString(input[pos:])
		if !isValidMacroNameChar(r) {
			break
		}
		pos += size
	}
	if pos == nameStart {
		return MacroTag{}, false
	}
	name := input[nameStart:pos]

	end := strings.Index(input[pos:], ">>")
	if end < 0 {
		return MacroTag{}, false
	}
	rest := input[pos : pos+end]
	if strings.Contains(rest, "\n") {
		return MacroTag{}, false
	}
	end = pos + end + 2

	if isClose {
		if strings.TrimSpace(rest) != "" {
			return MacroTag{}, false
		}
		return MacroTag{Type: MacroTagClose, Name: name, Position: start, End: end}, true
	}

	// The name must be delimited from the arguments.
	if rest != "" && !unicode.IsSpace(rune(rest[0])) && rest[0] != '/' {
		return MacroTag{}, false
	}

	args := strings.TrimSpace(rest)
	tagType := MacroTagOpen
	if strings.HasSuffix(args, "/") {
		tagType = MacroTagSelfClose
		args = strings.TrimSpace(strings.TrimSuffix(args, "/"))
	}

	return MacroTag{
		Type:     tagType,
		Name:     name,
		RawArgs:  args,
		Position: start,
		End:      end,
	}, true
}

// closeTag returns the closing tag text for a macro name.
func closeTag(name string) string {
	return "<</" + name + ">>"
}

func skipSpaces(input string, pos int) int {
	for pos < len(input) && (input[pos] == ' ' || input[pos] == '\t') {
		pos++
	}
	return pos
}

// isValidMacroNameChar returns true if r is valid in a macro name.
func isValidMacroNameChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}
