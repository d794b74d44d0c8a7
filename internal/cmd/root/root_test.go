package root

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCmdRoot_Subcommands(t *testing.T) {
	cmd := NewCmdRoot()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"convert", "check", "preview", "serve", "args", "init", "config", "completion"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"config", "output", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRoot_ConvertStdin(t *testing.T) {
	t.Setenv("CRL_VERBOSE", "")
	t.Setenv("CRL_LINE_BREAKS", "")

	cmd := NewCmdRoot()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("Hello **world**"))
	cmd.SetArgs([]string{"convert", "--config", filepath.Join(t.TempDir(), "none.yml")})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "<p>Hello <strong>world</strong></p>\n", out.String())
}

func TestRoot_ConvertThenCheck(t *testing.T) {
	t.Setenv("CRL_VERBOSE", "")
	t.Setenv("CRL_LINE_BREAKS", "")

	dir := t.TempDir()
	src := filepath.Join(dir, "page.creole")
	require.NoError(t, os.WriteFile(src, []byte("|=a|=b|\n|1|2|"), 0644))
	cfgPath := filepath.Join(dir, "none.yml")

	convert := NewCmdRoot()
	convert.SetOut(&bytes.Buffer{})
	convert.SetErr(&bytes.Buffer{})
	convert.SetArgs([]string{"convert", src, "--no-color", "--config", cfgPath})
	require.NoError(t, convert.Execute())

	check := NewCmdRoot()
	var out bytes.Buffer
	check.SetOut(&out)
	check.SetErr(&bytes.Buffer{})
	check.SetArgs([]string{"check", src, filepath.Join(dir, "page.html"), "--no-color", "--config", cfgPath})
	require.NoError(t, check.Execute())
	assert.Contains(t, out.String(), "matches")
}

func TestRoot_ArgsDecode(t *testing.T) {
	cmd := NewCmdRoot()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"args", "decode", `no=123`, "-o", "plain"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "no\t123\tint\n", out.String())
}

func TestRoot_Version(t *testing.T) {
	cmd := NewCmdRoot()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "crl version "))
}
