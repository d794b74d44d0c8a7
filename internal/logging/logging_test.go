package logging

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestForVerbosity(t *testing.T) {
	tests := []struct {
		verbose int
		want    log.Level
	}{
		{-1, log.ErrorLevel},
		{0, log.ErrorLevel},
		{1, log.InfoLevel},
		{2, log.DebugLevel},
		{5, log.DebugLevel},
	}

	for _, tt := range tests {
		l := ForVerbosity(&bytes.Buffer{}, tt.verbose)
		assert.Equal(t, tt.want, l.GetLevel(), "verbose=%d", tt.verbose)
	}
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithLevel(&buf, log.DebugLevel)

	l.ConversionStarted(3, 2)
	l.FileConverted("a.creole", "a.html", 42, time.Millisecond)
	l.ConversionFailed("b.creole", errors.New("boom"))
	l.ConversionCompleted(2, 1, time.Second)
	l.PreviewServing("127.0.0.1:8080", "doc.creole")
	l.PreviewClient("join", 1)
	l.PreviewReloaded("doc.creole", "abc123")
	l.ConfigLoaded("/tmp/config.yml", 1, "blog")

	out := buf.String()
	for _, want := range []string{
		"conversion started", "files=3",
		"file converted", "dest=a.html",
		"conversion failed", "error=boom",
		"conversion completed", "failed=1",
		"preview serving", "addr=127.0.0.1:8080",
		"preview client", "event=join",
		"preview reloaded", "digest=abc123",
		"config loaded", "line_breaks=blog",
	} {
		assert.Contains(t, out, want)
	}
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := ForVerbosity(&buf, 0)

	l.ConversionStarted(1, 1)
	l.FileConverted("a", "b", 1, 0)
	assert.Empty(t, buf.String())

	l.ConversionFailed("a", errors.New("bad"))
	assert.Contains(t, buf.String(), "conversion failed")
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.ConversionFailed("x", errors.New("ignored"))
}
