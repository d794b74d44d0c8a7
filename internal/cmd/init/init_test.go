package init

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/creole-cli/internal/config"
)

func TestVerifyHighlighter_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/highlight", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "python", body["lang"])

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"html": "<pre>ok</pre>"}`))
	}))
	defer server.Close()

	cfg := &config.Config{
		HighlightURL:   server.URL,
		HighlightToken: "test-token",
	}

	err := verifyHighlighter(cfg)
	assert.NoError(t, err)
}

func TestVerifyHighlighter_NetworkError(t *testing.T) {
	cfg := &config.Config{
		HighlightURL: "http://localhost:99999", // Non-existent server
	}

	err := verifyHighlighter(cfg)
	require.Error(t, err)
}

func TestVerifyHighlighter_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
		errContain string
	}{
		{
			name:       "200 OK",
			statusCode: http.StatusOK,
			wantErr:    false,
		},
		{
			name:       "401 Unauthorized",
			statusCode: http.StatusUnauthorized,
			wantErr:    true,
			errContain: "authentication failed",
		},
		{
			name:       "403 Forbidden",
			statusCode: http.StatusForbidden,
			wantErr:    true,
			errContain: "access denied",
		},
		{
			name:       "404 Not Found",
			statusCode: http.StatusNotFound,
			wantErr:    true,
			errContain: "unexpected status code: 404",
		},
		{
			name:       "502 Bad Gateway",
			statusCode: http.StatusBadGateway,
			wantErr:    true,
			errContain: "unexpected status code: 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				if tt.statusCode == http.StatusOK {
					w.Write([]byte(`{"html": ""}`))
				}
			}))
			defer server.Close()

			err := verifyHighlighter(&config.Config{HighlightURL: server.URL})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContain)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateJobs(t *testing.T) {
	assert.NoError(t, validateJobs(""))
	assert.NoError(t, validateJobs("0"))
	assert.NoError(t, validateJobs("8"))
	assert.Error(t, validateJobs("-1"))
	assert.Error(t, validateJobs("many"))
}

func TestConfigFilePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yml")

	cfg := config.Config{
		HighlightURL:   "https://highlight.example.com",
		HighlightToken: "secret-token",
	}

	require.NoError(t, cfg.Save(configPath))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	// The token is a credential: user read/write only.
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "config file should have 0600 permissions")
}

func TestNewCmdInit_Flags(t *testing.T) {
	cmd := NewCmdInit()

	assert.Equal(t, "init", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	urlFlag := cmd.Flags().Lookup("highlight-url")
	require.NotNil(t, urlFlag)
	assert.Equal(t, "", urlFlag.DefValue)

	noVerifyFlag := cmd.Flags().Lookup("no-verify")
	require.NotNil(t, noVerifyFlag)
	assert.Equal(t, "false", noVerifyFlag.DefValue)
}
