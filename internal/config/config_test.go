package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(16777216), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 4, cfg.Workflow.MaxConcurrency)
	assert.Equal(t, 12, cfg.Workflow.WindowMonths)
	assert.False(t, cfg.Narrative.UseGemini)
	assert.True(t, cfg.Security.RateLimit.Enabled)
}

func TestLoadFromFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9000
logging:
  level: debug
  format: text
workflow:
  max_concurrency: 2
  window_months: 6
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("FINSIGHT_SERVER_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port, "env overrides file")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 2, cfg.Workflow.MaxConcurrency)
	assert.Equal(t, 6, cfg.Workflow.WindowMonths)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "bad port",
			env:  map[string]string{"FINSIGHT_SERVER_PORT": "70000"},
			want: "invalid server port",
		},
		{
			name: "bad log level",
			env:  map[string]string{"FINSIGHT_LOGGING_LEVEL": "verbose"},
			want: "invalid log level",
		},
		{
			name: "bad log format",
			env:  map[string]string{"FINSIGHT_LOGGING_FORMAT": "xml"},
			want: "invalid log format",
		},
		{
			name: "bad concurrency",
			env:  map[string]string{"FINSIGHT_WORKFLOW_MAX_CONCURRENCY": "0"},
			want: "max concurrency must be positive",
		},
		{
			name: "bad rate limit",
			env:  map[string]string{"FINSIGHT_SECURITY_RATE_LIMIT_RPS": "0"},
			want: "rps must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
