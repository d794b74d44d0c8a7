package creole

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeArgs_Empty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t"} {
		args, err := DecodeArgs(raw)
		require.NoError(t, err)
		assert.Empty(t, args)
	}
}

func TestDecodeArgs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Args
	}{
		{"string and int", `foo="bar" no=123`, Args{"foo": "bar", "no": 123}},
		{"single quotes", `bar='b' foo='a'`, Args{"bar": "b", "foo": "a"}},
		{"quoted spaces", `title="Hello World"`, Args{"title": "Hello World"}},
		{"bare string", `ext=py`, Args{"ext": "py"}},
		{"quoted int", `a="1" b='2'`, Args{"a": 1, "b": 2}},
		{"negative int", `n=-5`, Args{"n": -5}},
		{"keywords", `t=True f=False n=None`, Args{"t": true, "f": false, "n": nil}},
		{"keyword case sensitive", `t=true`, Args{"t": "true"}},
		{"quoted keyword", `t="True"`, Args{"t": true}},
		{"empty value", `title=""`, Args{"title": ""}},
		{"bare empty value", `title=`, Args{"title": ""}},
		{"equals in value", `expr=a=b`, Args{"expr": "a=b"}},
		{"adjacent parts", `path=a"b c"`, Args{"path": "ab c"}},
		{"escaped quote", `q="say \"hi\""`, Args{"q": `say "hi"`}},
		{"json escape", `q="tab\there"`, Args{"q": "tab\there"}},
		{"duplicate key", `a=1 a=2`, Args{"a": 2}},
		{"pipe char", `char="|"`, Args{"char": "|"}},
		{"surrounding whitespace", "  a=1   b=2  ", Args{"a": 1, "b": 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeArgs(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeArgs_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing equals", `foo`},
		{"missing equals after pair", `a=1 foo`},
		{"unterminated double quote", `foo="bar`},
		{"unterminated single quote", `foo='bar`},
		{"missing key", `="bar"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeArgs(tt.input)
			require.Error(t, err)
			var malformed *MalformedArgumentError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.input, malformed.Raw)
		})
	}
}

func TestEncodeArgs(t *testing.T) {
	tests := []struct {
		name string
		args Args
		want string
	}{
		{"empty", Args{}, ""},
		{"sorted keys", Args{"no": 123, "foo": "bar"}, `foo="bar" no=123`},
		{"strings quoted", Args{"foo": "bar", "no": "ABC"}, `foo="bar" no="ABC"`},
		{"keywords", Args{"a": true, "b": false, "c": nil}, `a=True b=False c=None`},
		{"json escaping", Args{"q": "say \"hi\"\n"}, `q="say \"hi\"\n"`},
		{"no html escaping", Args{"h": "<b>&"}, `h="<b>&"`},
		{"int64", Args{"n": int64(7)}, `n=7`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeArgs(tt.args))
		})
	}
}

func TestValidArgKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"foo", true},
		{"data-id", true},
		{"ünï", true},
		{"", false},
		{"a b", false},
		{"a\tb", false},
		{"a=b", false},
		{`a"b`, false},
		{"a'b", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidArgKey(tt.key))
			if tt.want {
				decoded, err := DecodeArgs(EncodeArgs(Args{tt.key: 1}))
				require.NoError(t, err)
				assert.Equal(t, Args{tt.key: 1}, decoded)
			}
		})
	}
}

func TestArgs_RoundTrip(t *testing.T) {
	inputs := []string{
		`foo="bar" no=123`,
		`bar='b' foo='a'`,
		`title="Hello World" flag=True none=None off=False`,
		`q="say \"hi\"" path=/usr/local/bin`,
		`expr=a=b n=-42 s="007"`,
		`text="line1\nline2" html="<p class=\"x\">"`,
		`unicode="grüße ✓"`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first, err := DecodeArgs(input)
			require.NoError(t, err)

			encoded := EncodeArgs(first)
			second, err := DecodeArgs(encoded)
			require.NoError(t, err, "re-decoding %q", encoded)
			assert.Equal(t, first, second)

			assert.Equal(t, encoded, EncodeArgs(second), "encoding is stable")
		})
	}
}
