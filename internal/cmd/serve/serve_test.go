package serve

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunServe_StopsWithContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.creole")
	require.NoError(t, os.WriteFile(path, []byte("text"), 0644))

	var opened string
	opts := &serveOptions{
		addr:        "127.0.0.1:0",
		interval:    10 * time.Millisecond,
		open:        true,
		configPath:  filepath.Join(t.TempDir(), "config.yml"),
		openBrowser: func(url string) error { opened = url; return nil },
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, runServe(ctx, path, opts))
	assert.Equal(t, "http://127.0.0.1:0/", opened)
}

func TestRunServe_MissingFile(t *testing.T) {
	opts := &serveOptions{
		addr:       "127.0.0.1:0",
		configPath: filepath.Join(t.TempDir(), "config.yml"),
	}

	err := runServe(context.Background(), filepath.Join(t.TempDir(), "nope.creole"), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}
