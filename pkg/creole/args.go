// args.go implements the macro argument codec: key=value attribute text <-> Args.
package creole

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Args holds decoded macro arguments.
// Values are always one of string, int, bool or nil.
type Args map[string]any

// keywordValues maps the literal spellings that decode to non-string values.
var keywordValues = map[string]any{
	"True":  true,
	"False": false,
	"None":  nil,
}

// argGrammar is the participle grammar for macro attribute text.
// Adjacent value parts are concatenated the way a shell joins `a"b c"` into one word.
type argGrammar struct {
	Pairs []*argPair `parser:"( @@ ( Whitespace @@ )* )?"`
}

type argPair struct {
	Key   string     `parser:"@Word Eq"`
	Parts []*argPart `parser:"@@*"`
}

type argPart struct {
	Double *string `parser:"  @DQuoted"`
	Single *string `parser:"| @SQuoted"`
	Bare   *string `parser:"| @( Word | Eq )"`
}

// argLexer tokenizes attribute text. An unterminated quote matches no rule
// and surfaces as a lexer error.
var argLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "DQuoted", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "SQuoted", Pattern: `'[^']*'`},
	{Name: "Word", Pattern: `[^\s"'=]+`},
	{Name: "Eq", Pattern: `=`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var argParser = participle.MustBuild[argGrammar](
	participle.Lexer(argLexer),
)

// DecodeArgs converts raw macro attribute text like `key="value" no=123`
// into Args.
//
// Quoted values may contain spaces, unquoted values may not. After quote
// removal, "True", "False" and "None" decode to true, false and nil; values
// that parse as integers (ignoring surrounding quote characters) decode to int;
// everything else stays a string. A later duplicate key wins.
func DecodeArgs(raw string) (Args, error) {
	args := Args{}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return args, nil
	}

	parsed, err := argParser.ParseString("", trimmed)
	if err != nil {
		return nil, &MalformedArgumentError{Raw: raw, Err: err}
	}

	for _, pair := range parsed.Pairs {
		var value strings.Builder
		for _, part := range pair.Parts {
			switch {
			case part.Double != nil:
				value.WriteString(unquoteDouble(*part.Double))
			case part.Single != nil:
				s := *part.Single
				value.WriteString(s[1 : len(s)-1])
			case part.Bare != nil:
				value.WriteString(*part.Bare)
			}
		}
		args[pair.Key] = typedValue(value.String())
	}

	return args, nil
}

// ValidArgKey reports whether key can appear in attribute text: it must be
// non-empty and free of whitespace, quotes and "=".
func ValidArgKey(key string) bool {
	return key != "" && !strings.ContainsFunc(key, func(r rune) bool {
		return unicode.IsSpace(r) || r == '"' || r == '\'' || r == '='
	})
}

// EncodeArgs serializes Args back into attribute text. Only keys accepted by
// ValidArgKey decode again; DecodeArgs never produces any other.
// Keys are emitted in sorted order; strings are double-quoted with JSON
// escaping, integers are bare, booleans and nil use the True/False/None
// spelling DecodeArgs understands.
func EncodeArgs(args Args) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+encodeValue(args[key]))
	}
	return strings.Join(parts, " ")
}

// typedValue applies the keyword and integer rules to a decoded value.
func typedValue(s string) any {
	if v, ok := keywordValues[s]; ok {
		return v
	}
	if n, err := strconv.Atoi(strings.Trim(s, `'"`)); err == nil {
		return n
	}
	return s
}

// unquoteDouble strips the quotes from a double-quoted value. Valid JSON
// strings use JSON escapes (the form EncodeArgs writes); anything else only
// unescapes \" and \\.
func unquoteDouble(s string) string {
	var decoded string
	if err := json.Unmarshal([]byte(s), &decoded); err == nil {
		return decoded
	}

	inner := s[1 : len(s)-1]
	var sb strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) && (inner[i+1] == '"' || inner[i+1] == '\\') {
			sb.WriteByte(inner[i+1])
			i++
			continue
		}
		sb.WriteByte(inner[i])
	}
	return sb.String()
}

func encodeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case bool:
		if val {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case string:
		return quoteJSON(val)
	default:
		return quoteJSON(fmt.Sprint(val))
	}
}

// quoteJSON returns s as a JSON string literal without HTML escaping.
func quoteJSON(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
