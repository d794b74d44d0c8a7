package configcmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/creole-cli/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
	}
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yml")
	cfg := &config.Config{
		Verbose:        2,
		LineBreaks:     config.LineBreaksWiki,
		HighlightURL:   "https://highlight.example.com",
		HighlightToken: "test-token-value",
	}
	require.NoError(t, cfg.Save(configPath))
	return configPath
}

func show(t *testing.T, configPath, output string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	err := runShow(&showOptions{configPath: configPath, output: output, noColor: true, stdout: &buf})
	return buf.String(), err
}

func TestRunShow_WithConfigFile(t *testing.T) {
	clearEnv(t)
	configPath := writeTestConfig(t)

	out, err := show(t, configPath, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Verbose:        2  (source: config)")
	assert.Contains(t, out, "Line breaks:    wiki  (source: config)")
	assert.Contains(t, out, "test********alue")
	assert.NotContains(t, out, "test-token-value")
	assert.Contains(t, out, "Config file: "+configPath)
	assert.NotContains(t, out, "file not found")
}

func TestRunShow_NoConfigFile(t *testing.T) {
	clearEnv(t)
	out, err := show(t, filepath.Join(t.TempDir(), "config.yml"), "")
	require.NoError(t, err)
	assert.Contains(t, out, "Verbose:        1  (source: default)")
	assert.Contains(t, out, "(file not found)")
}

func TestRunShow_EnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("CRL_VERBOSE", "0")
	out, err := show(t, writeTestConfig(t), "")
	require.NoError(t, err)
	assert.Contains(t, out, "Verbose:        0  (source: CRL_VERBOSE)")
}

func TestRunShow_Plain(t *testing.T) {
	clearEnv(t)
	out, err := show(t, writeTestConfig(t), "plain")
	require.NoError(t, err)
	assert.Contains(t, out, "verbose: 2\n")
	assert.Contains(t, out, "line_breaks: wiki\n")
	assert.Contains(t, out, "highlight_token: test********alue\n")
	assert.NotContains(t, out, "source")
}

func TestRunShow_JSON(t *testing.T) {
	clearEnv(t)
	t.Setenv("CRL_JOBS", "3")
	configPath := writeTestConfig(t)

	out, err := show(t, configPath, "json")
	require.NoError(t, err)

	var got struct {
		Path      string    `json:"path"`
		FileFound bool      `json:"file_found"`
		Settings  []setting `json:"settings"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, configPath, got.Path)
	assert.True(t, got.FileFound)

	bySetting := map[string]setting{}
	for _, s := range got.Settings {
		bySetting[s.Key] = s
	}
	assert.Equal(t, setting{Key: "verbose", Value: "2", Source: "config"}, bySetting["verbose"])
	assert.Equal(t, setting{Key: "jobs", Value: "3", Source: "CRL_JOBS"}, bySetting["jobs"])
	assert.Equal(t, "test********alue", bySetting["highlight_token"].Value)
}

func TestRunShow_InvalidFormat(t *testing.T) {
	clearEnv(t)
	_, err := show(t, filepath.Join(t.TempDir(), "config.yml"), "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestRunShow_InvalidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("CRL_LINE_BREAKS", "paper")
	_, err := show(t, filepath.Join(t.TempDir(), "config.yml"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line_breaks")
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"short", "*****"},
		{"12345678", "********"},
		{"test-token-value", "test********alue"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, maskToken(tt.in))
	}
}
