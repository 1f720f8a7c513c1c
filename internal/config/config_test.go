package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEnvVars = []string{
	"FTE_SERVER_PORT", "FTE_SERVER_READ_TIMEOUT",
	"FTE_SECURITY_ALLOWED_ORIGINS", "FTE_SECURITY_ENABLE_CORS",
	"FTE_LOGGING_LEVEL", "FTE_LOGGING_OUTPUT",
	"FTE_PATHS_DATA_DIR", "FTE_WORKBOOKS_ACTUAL_SHEET", "FTE_WORKBOOKS_OPTIMAL_FILE",
	"FTE_CACHE_TTL", "FTE_CACHE_INVALIDATE_ON_SAVE",
	"FTE_OBSERVABILITY_TRACE_EXPORTER",
	// unprefixed fallbacks envconfig also consults
	"PORT", "TTL", "DATA_DIR",
}

// clearEnv unsets the variables for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range testEnvVars {
		if val, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, val) })
			os.Unsetenv(key)
		}
	}
}

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults without file or env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "data", cfg.Paths.DataDir)
				assert.Equal(t, ActualWorkbookName, cfg.Workbooks.ActualFile)
				assert.Equal(t, ActualSheetName, cfg.Workbooks.ActualSheet)
				assert.Equal(t, OptimalWorkbookName, cfg.Workbooks.OptimalFile)
				assert.Equal(t, ForecastWorkbookName, cfg.Workbooks.ForecastFile)
				assert.True(t, cfg.Cache.Enabled)
				assert.False(t, cfg.Cache.InvalidateOnSave)
				assert.Zero(t, cfg.Cache.TTL)
			},
		},
		{
			name: "file overrides defaults",
			file: `
server:
  port: 9090
  read_timeout: 5s
workbooks:
  actual_sheet: "FYTD 26-27- Cumulative Summary"
cache:
  ttl: 10m
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, "FYTD 26-27- Cumulative Summary", cfg.Workbooks.ActualSheet)
				assert.Equal(t, OptimalWorkbookName, cfg.Workbooks.OptimalFile)
				assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
			},
		},
		{
			name: "env overrides file",
			file: "server:\n  port: 9090\n",
			env: map[string]string{
				"FTE_SERVER_PORT":              "7070",
				"FTE_CACHE_INVALIDATE_ON_SAVE": "true",
				"FTE_WORKBOOKS_OPTIMAL_FILE":   "targets.xlsx",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.True(t, cfg.Cache.InvalidateOnSave)
				assert.Equal(t, "targets.xlsx", cfg.Workbooks.OptimalFile)
			},
		},
		{
			name: "allowed origins from env",
			env:  map[string]string{"FTE_SECURITY_ALLOWED_ORIGINS": "http://a.test,http://b.test"},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Security.AllowedOrigins)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"FTE_SERVER_PORT": "70000"},
			wantErr: "invalid server port",
		},
		{
			name:    "unparseable env value",
			env:     map[string]string{"FTE_CACHE_TTL": "soon"},
			wantErr: "failed to load config from env",
		},
		{
			name:    "negative ttl",
			env:     map[string]string{"FTE_CACHE_TTL": "-1m"},
			wantErr: "cache ttl must not be negative",
		},
		{
			name:    "unknown trace exporter",
			env:     map[string]string{"FTE_OBSERVABILITY_TRACE_EXPORTER": "jaeger"},
			wantErr: "unsupported trace exporter",
		},
		{
			name:    "malformed yaml",
			file:    "server: [port",
			wantErr: "failed to load config from file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestValidateRejectsEmptyWorkbookName(t *testing.T) {
	cfg := Default()
	cfg.Workbooks.ForecastFile = " "
	assert.ErrorContains(t, cfg.validate(), "workbook file names")
}

func TestServerAddr(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Server.Addr())

	cfg.Server.Host = "127.0.0.1"
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
}
