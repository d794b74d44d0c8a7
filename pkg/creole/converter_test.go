package creole

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// testMacros mirrors the three macro shapes: inline with body, inline
// without body and a block macro joining its lines.
var testMacros = MacroMap{
	"test_macro1": func(call *MacroCall) (string, error) {
		text := "None"
		if call.HasText {
			text = call.Text
		}
		return fmt.Sprintf("[test macro1 - kwargs: %s, text: %s]", EncodeArgs(call.Args), text), nil
	},
	"test_macro2": func(call *MacroCall) (string, error) {
		sep, _ := call.Args["char"].(string)
		return strings.Join(strings.Split(call.Text, "\n"), sep), nil
	},
	"html": func(call *MacroCall) (string, error) {
		return call.Text, nil
	},
}

// assertBalanced parses an HTML fragment and checks that every opened
// element is closed in order.
func assertBalanced(t *testing.T, fragment string) {
	t.Helper()
	z := html.NewTokenizer(strings.NewReader(fragment))
	var stack []string
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			require.ErrorIs(t, z.Err(), io.EOF)
			assert.Empty(t, stack, "unclosed elements in %q", fragment)
			return
		case html.StartTagToken:
			name, _ := z.TagName()
			stack = append(stack, string(name))
		case html.EndTagToken:
			name, _ := z.TagName()
			require.NotEmpty(t, stack, "unexpected </%s> in %q", name, fragment)
			assert.Equal(t, stack[len(stack)-1], string(name), "misnested tags in %q", fragment)
			stack = stack[:len(stack)-1]
		}
	}
}

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "basic line",
			input:    "a text line.",
			expected: "<p>a text line.</p>\n",
		},
		{
			name:     "forced line break",
			input:    `Force\\linebreak`,
			expected: "<p>Force<br />\nlinebreak</p>\n",
		},
		{
			name: "html is escaped",
			input: "This is a normal Text block witch would\n" +
				"escape html chars like < and > ;)\n\n" +
				"So you can't insert <html> directly.\n\n" +
				"<p>This escaped, too.</p>",
			expected: "<p>This is a normal Text block witch would<br />\n" +
				"escape html chars like &lt; and &gt; ;)</p>\n\n" +
				"<p>So you can't insert &lt;html&gt; directly.</p>\n\n" +
				"<p>&lt;p&gt;This escaped, too.&lt;/p&gt;</p>\n",
		},
		{
			name:  "escape char",
			input: "~#1\nhttp://domain.tld/~bar/\n~http://domain.tld/\n[[Link]]\n~[[Link]]",
			expected: "<p>#1<br />\n" +
				"<a href=\"http://domain.tld/~bar/\">http://domain.tld/~bar/</a><br />\n" +
				"http://domain.tld/<br />\n" +
				"<a href=\"Link\">Link</a><br />\n" +
				"[[Link]]</p>\n",
		},
		{
			name:  "emphasis does not cross paragraphs",
			input: "Bold and italics should //not be...\n\n...able// to **cross \n\nparagraphs.**",
			expected: "<p>Bold and italics should //not be...</p>\n\n" +
				"<p>...able// to **cross</p>\n\n" +
				"<p>paragraphs.**</p>\n",
		},
		{
			name:     "inline markup",
			input:    "**bold** //italic// ##mono## **//both//**",
			expected: "<p><strong>bold</strong> <i>italic</i> <tt>mono</tt> <strong><i>both</i></strong></p>\n",
		},
		{
			name:     "url scheme is not italic",
			input:    "see [[http://x.org|here]] or //file:// here//",
			expected: "<p>see <a href=\"http://x.org\">here</a> or <i>file:// here</i></p>\n",
		},
		{
			name:  "teletype",
			input: "inline {{{<escaped>}}} and {{{ **not strong** }}}...\n...and ##**strong** Teletyper## ;)",
			expected: "<p>inline <tt>&lt;escaped&gt;</tt> and <tt> **not strong** </tt>...<br />\n" +
				"...and <tt><strong>strong</strong> Teletyper</tt> ;)</p>\n",
		},
		{
			name:     "headline spaces",
			input:    "== Headline1 == \n== Headline2== ",
			expected: "<h2>Headline1</h2>\n<h2>Headline2</h2>\n",
		},
		{
			name:     "heading markup",
			input:    "= The **big** one",
			expected: "<h1>The <strong>big</strong> one</h1>\n",
		},
		{
			name:  "images",
			input: "{{foobar1.jpg}}\n{{/path1/path2/foobar2.jpg}}\n{{/path1/path2/foobar3.jpg|foobar3.jpg}}",
			expected: "<p><img src=\"foobar1.jpg\" alt=\"foobar1.jpg\" /><br />\n" +
				"<img src=\"/path1/path2/foobar2.jpg\" alt=\"/path1/path2/foobar2.jpg\" /><br />\n" +
				"<img src=\"/path1/path2/foobar3.jpg\" alt=\"foobar3.jpg\" /></p>\n",
		},
		{
			name:  "images in ordered list",
			input: "# {{/path/to/image.ext|image ext}} one\n# {{/no/extension|no extension}} two\n# {{/image.xyz}} tree",
			expected: "<ol>\n" +
				"\t<li><img src=\"/path/to/image.ext\" alt=\"image ext\" /> one</li>\n" +
				"\t<li><img src=\"/no/extension\" alt=\"no extension\" /> two</li>\n" +
				"\t<li><img src=\"/image.xyz\" alt=\"/image.xyz\" /> tree</li>\n" +
				"</ol>\n",
		},
		{
			name:  "links",
			input: "[[/foobar/Creole_(Markup)]]\n[[http://de.wikipedia.org/wiki/Creole_(Markup)|Creole@wikipedia]]",
			expected: "<p><a href=\"/foobar/Creole_(Markup)\">/foobar/Creole_(Markup)</a><br />\n" +
				"<a href=\"http://de.wikipedia.org/wiki/Creole_(Markup)\">Creole@wikipedia</a></p>\n",
		},
		{
			name:     "attribute escaping",
			input:    `[[a"b&c|x]] {{i.png|say "hi"}}`,
			expected: "<p><a href=\"a&quot;b&amp;c\">x</a> <img src=\"i.png\" alt=\"say &quot;hi&quot;\" /></p>\n",
		},
		{
			name:     "free url with trailing punctuation",
			input:    "Visit http://x.org.",
			expected: "<p>Visit <a href=\"http://x.org\">http://x.org</a>.</p>\n",
		},
		{
			name: "nested lists",
			input: "* Item 1\n** Item 1.1\n ** Item 1.2\n    ** Item 1.3\n        * Item2\n\n" +
				"    # one\n  ## two",
			expected: "<ul>\n" +
				"\t<li>Item 1\n" +
				"\t<ul>\n" +
				"\t\t<li>Item 1.1</li>\n" +
				"\t\t<li>Item 1.2</li>\n" +
				"\t\t<li>Item 1.3</li>\n" +
				"\t</ul></li>\n" +
				"\t<li>Item2</li>\n" +
				"</ul>\n\n" +
				"<ol>\n" +
				"\t<li>one\n" +
				"\t<ol>\n" +
				"\t\t<li>two</li>\n" +
				"\t</ol></li>\n" +
				"</ol>\n",
		},
		{
			name:  "depth jump is clamped",
			input: "* a\n*** deep\n* b",
			expected: "<ul>\n" +
				"\t<li>a\n" +
				"\t<ul>\n" +
				"\t\t<li>deep</li>\n" +
				"\t</ul></li>\n" +
				"\t<li>b</li>\n" +
				"</ul>\n",
		},
		{
			name:  "marker switch at same depth",
			input: "* a\n# b",
			expected: "<ul>\n\t<li>a</li>\n</ul>\n" +
				"<ol>\n\t<li>b</li>\n</ol>\n",
		},
		{
			name:  "mixed nested list",
			input: "# one\n#* bullet\n#* bullet 2\n# two",
			expected: "<ol>\n" +
				"\t<li>one\n" +
				"\t<ul>\n" +
				"\t\t<li>bullet</li>\n" +
				"\t\t<li>bullet 2</li>\n" +
				"\t</ul></li>\n" +
				"\t<li>two</li>\n" +
				"</ol>\n",
		},
		{
			name:     "list item continuation",
			input:    "* first\n  line two",
			expected: "<ul>\n\t<li>first<br />\n  line two</li>\n</ul>\n",
		},
		{
			name:  "table",
			input: "|=Name|=Value|\n|a|**1**|\n|[[x|y]]|",
			expected: "<table>\n" +
				"<tr>\n\t<th>Name</th>\n\t<th>Value</th>\n</tr>\n" +
				"<tr>\n\t<td>a</td>\n\t<td><strong>1</strong></td>\n</tr>\n" +
				"<tr>\n\t<td><a href=\"x\">y</a></td>\n</tr>\n" +
				"</table>\n",
		},
		{
			name:     "horizontal rule",
			input:    "above\n----\nbelow",
			expected: "<p>above</p>\n<hr />\n<p>below</p>\n",
		},
		{
			name:     "preformatted is verbatim",
			input:    "{{{\n<<html>>x<</html>> **b** //i//\n }}}\n}}}",
			expected: "<pre>&lt;&lt;html&gt;&gt;x&lt;&lt;/html&gt;&gt; **b** //i//\n}}}</pre>\n",
		},
		{
			name:     "leading blank lines are dropped",
			input:    "\n\n\ntext\n\n\n",
			expected: "<p>text</p>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ToHTML(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
			assertBalanced(t, result)
		})
	}
}

func TestToHTML_LineEndings(t *testing.T) {
	for _, input := range []string{"first\nsecond", "first\rsecond", "first\r\nsecond"} {
		result, err := ToHTML(input)
		require.NoError(t, err)
		assert.Equal(t, "<p>first<br />\nsecond</p>\n", result, "%q", input)
	}
}

func TestToHTML_LineEndingsIdentical(t *testing.T) {
	docs := []string{
		"= Title\n\npara one\nline two\n\n* a\n** b\n\n|=h|\n|c|\n\n{{{\ncode\n}}}",
		"<<html>>\n<b>x</b>\n<</html>>\ntext",
		"Bold //not\n\nclosed// here",
	}
	opts := ConvertOptions{Macros: testMacros, Verbose: VerboseErrors}

	for _, doc := range docs {
		want, err := ToHTMLWithOptions(doc, opts)
		require.NoError(t, err)
		for _, eol := range []string{"\r\n", "\r"} {
			got, err := ToHTMLWithOptions(strings.ReplaceAll(doc, "\n", eol), opts)
			require.NoError(t, err)
			assert.Equal(t, want, got, "line ending %q", eol)
		}
	}
}

func TestToHTML_WikiLineBreaks(t *testing.T) {
	input := "with blog line breaks, every line break would be convertet into <br />\n" +
		"with wiki style not.\n\n" +
		`This is the first line,\\and this is the second.` + "\n\n" +
		"new line\n block 1\n\n" +
		"new line\n block 2\n\n" +
		"* new line\n block 3\n\n" +
		"end"
	expected := "<p>with blog line breaks, every line break would be convertet into &lt;br /&gt;with wiki style not.</p>\n\n" +
		"<p>This is the first line,<br />\nand this is the second.</p>\n\n" +
		"<p>new line block 1</p>\n\n" +
		"<p>new line block 2</p>\n\n" +
		"<ul>\n\t<li>new line block 3</li>\n</ul>\n\n" +
		"<p>end</p>\n"

	result, err := ToHTMLWithOptions(input, ConvertOptions{LineBreaks: LineBreaksWiki})
	require.NoError(t, err)
	assert.Equal(t, expected, result)
}

func TestToHTML_MacroTypes(t *testing.T) {
	input := "There exist three different macro types:\n" +
		`A <<test_macro1 args="foo1">>bar1<</test_macro1>> in a line...` + "\n" +
		`...a single <<test_macro1 foo="bar">> tag,` + "\n" +
		"or: <<test_macro1 a=1 b=2 />> closed...\n\n" +
		"a macro block:\n" +
		`<<test_macro2 char="|">>` + "\n" +
		"the\ntext\n" +
		"<</test_macro2>>\n" +
		"the end"
	expected := "<p>There exist three different macro types:<br />\n" +
		`A [test macro1 - kwargs: args="foo1", text: bar1] in a line...<br />` + "\n" +
		`...a single [test macro1 - kwargs: foo="bar", text: None] tag,<br />` + "\n" +
		"or: [test macro1 - kwargs: a=1 b=2, text: None] closed...</p>\n\n" +
		"<p>a macro block:</p>\n" +
		"the|text\n" +
		"<p>the end</p>\n"

	result, err := ToHTMLWithOptions(input, ConvertOptions{Macros: testMacros})
	require.NoError(t, err)
	assert.Equal(t, expected, result)
}

func TestToHTML_HTMLMacro(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name: "block and inline",
			input: "html macro:\n<<html>>\n<p><<this is broken 'html', but it will be pass throu>></p>\n<</html>>\n\n" +
				"inline: <<html>>&#x7B;...&#x7D;<</html>> code",
			expected: "<p>html macro:</p>\n" +
				"<p><<this is broken 'html', but it will be pass throu>></p>\n\n" +
				"<p>inline: &#x7B;...&#x7D; code</p>\n",
		},
		{
			name:     "rest of line starts a block",
			input:    "<<html>><p>foo</p><</html>><bar?>",
			expected: "<p>foo</p>\n<p>&lt;bar?&gt;</p>\n",
		},
		{
			name:     "body is not parsed",
			input:    "<<html>>{{{&lt;nocode&gt;}}}<</html>>",
			expected: "{{{&lt;nocode&gt;}}}\n",
		},
		{
			name:     "consecutive block macros",
			input:    "<<html>>1<</html>><<html>>2<</html>>",
			expected: "1\n2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ToHTMLWithOptions(tt.input, ConvertOptions{Macros: testMacros, Verbose: VerboseErrors})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestToHTML_MacroArguments(t *testing.T) {
	registry := MacroMap{
		"test": func(call *MacroCall) (string, error) {
			foo, _ := call.Args["foo"].(string)
			bar, _ := call.Args["bar"].(string)
			return strings.Join([]string{foo, bar, call.Text}, "|"), nil
		},
	}
	result, err := ToHTMLWithOptions("<<test bar='b' foo='a'>>c<</test>>", ConvertOptions{Macros: registry})
	require.NoError(t, err)
	assert.Equal(t, "a|b|c\n", result)
}

func TestToHTML_MacroNotExist(t *testing.T) {
	input := "macro block:\n<<notexists>>\nfoo bar\n<</notexists>>\n\n" +
		"inline macro:\n" + `<<notexisttoo foo="bar">>`

	t.Run("verbose 0", func(t *testing.T) {
		result, err := ToHTMLWithOptions(input, ConvertOptions{Verbose: VerboseSilent})
		require.NoError(t, err)
		assert.Equal(t, "<p>macro block:</p>\n\n<p>inline macro:<br />\n</p>\n", result)
	})

	t.Run("verbose 1", func(t *testing.T) {
		result, err := ToHTMLWithOptions(input, ConvertOptions{Verbose: VerboseErrors})
		require.NoError(t, err)
		assert.Equal(t, "<p>macro block:</p>\n"+
			"[Error: Macro 'notexists' doesn't exist]\n\n"+
			"<p>inline macro:<br />\n"+
			"[Error: Macro 'notexisttoo' doesn't exist]\n"+
			"</p>\n", result)
	})

	t.Run("verbose 2", func(t *testing.T) {
		var stderr bytes.Buffer
		result, err := ToHTMLWithOptions(input, ConvertOptions{Verbose: VerboseTrace, Stderr: &stderr})
		require.NoError(t, err)
		assert.Contains(t, result, "[Error: Macro 'notexists' doesn't exist]")
		assert.Contains(t, stderr.String(), "notexists")
		assert.Contains(t, stderr.String(), "notexisttoo")
		assert.Contains(t, stderr.String(), "line=2")
		assert.Contains(t, stderr.String(), "line=7")
		assert.Equal(t, 2, strings.Count(stderr.String(), "goroutine "), "one stack trace per unknown macro")
		assert.Contains(t, stderr.String(), "creole.ToHTMLWithOptions")
	})
}

func TestToHTML_MacroErrors(t *testing.T) {
	failure := errors.New("broken pipe")
	registry := MacroMap{
		"fail": func(*MacroCall) (string, error) { return "", failure },
		"boom": func(*MacroCall) (string, error) { panic("kaboom") },
		"ok":   func(*MacroCall) (string, error) { return "<b>ok</b>", nil },
	}

	t.Run("failure becomes marker", func(t *testing.T) {
		result, err := ToHTMLWithOptions("a <<fail>> b <<ok>>", ConvertOptions{Macros: registry, Verbose: VerboseErrors})
		require.NoError(t, err)
		assert.Equal(t, "<p>a [Error: Macro 'fail' error: broken pipe]\n b <b>ok</b></p>\n", result)
	})

	t.Run("panic becomes marker", func(t *testing.T) {
		result, err := ToHTMLWithOptions("<<boom>>", ConvertOptions{Macros: registry, Verbose: VerboseErrors})
		require.NoError(t, err)
		assert.Equal(t, "<p>[Error: Macro 'boom' error: panic: kaboom]\n</p>\n", result)
	})

	t.Run("malformed arguments become marker", func(t *testing.T) {
		result, err := ToHTMLWithOptions("<<ok foo>>", ConvertOptions{Macros: registry, Verbose: VerboseErrors})
		require.NoError(t, err)
		assert.Equal(t, "<p>[Error: Wrong macro arguments: \"foo\" for macro 'ok' (maybe wrong macro tag syntax?)]\n</p>\n", result)
	})

	t.Run("silent failure", func(t *testing.T) {
		result, err := ToHTMLWithOptions("x<<fail>>y", ConvertOptions{Macros: registry})
		require.NoError(t, err)
		assert.Equal(t, "<p>xy</p>\n", result)
	})

	t.Run("debug returns error and no output", func(t *testing.T) {
		result, err := ToHTMLWithOptions("good\n\n<<fail>>", ConvertOptions{Macros: registry, Debug: true})
		assert.ErrorIs(t, err, failure)
		assert.Empty(t, result)
	})

	t.Run("debug returns malformed arguments", func(t *testing.T) {
		_, err := ToHTMLWithOptions(`<<ok a="x>>`, ConvertOptions{Macros: registry, Debug: true})
		var malformed *MalformedArgumentError
		assert.ErrorAs(t, err, &malformed)
	})

	t.Run("debug propagates panics", func(t *testing.T) {
		assert.Panics(t, func() {
			_, _ = ToHTMLWithOptions("<<boom>>", ConvertOptions{Macros: registry, Debug: true})
		})
	})
}

func TestToHTML_DispatchRegistry(t *testing.T) {
	dispatch := DispatchFunc(func(name string, call *MacroCall) (string, error) {
		if name != "upper" {
			return "", ErrMacroNotFound
		}
		return strings.ToUpper(call.Text), nil
	})

	result, err := ToHTMLWithOptions("<<upper>>shout<</upper>> <<other>>", ConvertOptions{Macros: dispatch, Verbose: VerboseErrors})
	require.NoError(t, err)
	assert.Equal(t, "SHOUT\n<p>[Error: Macro 'other' doesn't exist]\n</p>\n", result)
}

func TestToHTML_Highlight(t *testing.T) {
	input := "{{{\n#!python\nprint(1)\n}}}"

	t.Run("without highlighter", func(t *testing.T) {
		result, err := ToHTML(input)
		require.NoError(t, err)
		assert.Equal(t, "<pre>#!python\nprint(1)</pre>\n", result)
	})

	t.Run("with highlighter", func(t *testing.T) {
		var gotSource, gotLang string
		opts := ConvertOptions{Highlight: func(source, lang string) (string, error) {
			gotSource, gotLang = source, lang
			return "<div class=\"hl\">" + source + "</div>\n", nil
		}}
		result, err := ToHTMLWithOptions(input, opts)
		require.NoError(t, err)
		assert.Equal(t, "<div class=\"hl\">print(1)</div>\n", result)
		assert.Equal(t, "print(1)", gotSource)
		assert.Equal(t, "python", gotLang)
	})

	t.Run("failing highlighter falls back", func(t *testing.T) {
		opts := ConvertOptions{Highlight: func(string, string) (string, error) {
			return "", errors.New("no lexer")
		}}
		result, err := ToHTMLWithOptions(input, opts)
		require.NoError(t, err)
		assert.Equal(t, "<pre>#!python\nprint(1)</pre>\n", result)
	})
}

func TestToHTML_ConcurrentConversions(t *testing.T) {
	input := "= T\n\n* <<test_macro1 n=1 />>\n** b\n\n<<test_macro2 char=\"-\">>\na\nb\n<</test_macro2>>"
	want, err := ToHTMLWithOptions(input, ConvertOptions{Macros: testMacros})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = ToHTMLWithOptions(input, ConvertOptions{Macros: testMacros, Verbose: Verbosity(i % 2)})
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestLineBreakMode_String(t *testing.T) {
	assert.Equal(t, "blog", LineBreaksBlog.String())
	assert.Equal(t, "wiki", LineBreaksWiki.String())
}
