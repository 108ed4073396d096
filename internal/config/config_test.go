package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dserrors "github.com/Aman-CERP/dirsearch/internal/errors"
)

// isolate points the user config lookup at an empty directory and clears
// DIRSEARCH_* overrides for the duration of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, name := range []string{
		"DIRSEARCH_LOG_LEVEL", "DIRSEARCH_LOG_FILE", "DIRSEARCH_WORKERS",
		"DIRSEARCH_DEBOUNCE", "DIRSEARCH_COMPACTION_INTERVAL", "DIRSEARCH_DEFAULT_OPERATOR",
	} {
		t.Setenv(name, "")
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	// Given/When: a default config
	cfg := NewConfig()

	// Then: defaults are populated and valid
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "50ms", cfg.Watch.Debounce)
	assert.Equal(t, 16, cfg.Watch.ErrorBuffer)
	assert.Equal(t, "30s", cfg.Index.CompactionInterval)
	assert.Equal(t, "10ms", cfg.Index.ReadRetryDelay)
	assert.Equal(t, "and", cfg.Index.DefaultOperator)
	assert.Equal(t, 256, cfg.Index.WildcardCacheSize)
	assert.Positive(t, cfg.Index.Workers)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, 50*time.Millisecond, cfg.DebounceWindow())
	assert.Equal(t, 30*time.Second, cfg.CompactionEvery())
	assert.Equal(t, 10*time.Millisecond, cfg.RetryDelay())
}

func TestLoad_NoConfigFile_ReturnsDefaults(t *testing.T) {
	isolate(t)

	// Given: a directory without a project config
	dir := t.TempDir()

	// When: loading
	cfg, err := Load(dir)

	// Then: defaults are returned
	require.NoError(t, err)
	assert.Equal(t, NewConfig().Index, cfg.Index)
}

func TestLoad_ProjectConfig_OverridesDefaults(t *testing.T) {
	isolate(t)

	// Given: a project config with watch entries and index tuning
	dir := t.TempDir()
	yaml := `
watch:
  directories:
    - path: docs
      filter: "*.txt"
  files:
    - /var/log/app.log
  debounce: 100ms
index:
  workers: 3
  default_operator: or
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigName), []byte(yaml), 0o644))

	// When: loading
	cfg, err := Load(dir)

	// Then: file values win and relative paths resolve against the file
	require.NoError(t, err)
	require.Len(t, cfg.Watch.Directories, 1)
	assert.Equal(t, filepath.Join(dir, "docs"), cfg.Watch.Directories[0].Path)
	assert.Equal(t, "*.txt", cfg.Watch.Directories[0].Filter)
	assert.Equal(t, []string{"/var/log/app.log"}, cfg.Watch.Files)
	assert.Equal(t, 100*time.Millisecond, cfg.DebounceWindow())
	assert.Equal(t, 3, cfg.Index.Workers)
	assert.Equal(t, "or", cfg.Index.DefaultOperator)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Then: unspecified values keep their defaults
	assert.Equal(t, "30s", cfg.Index.CompactionInterval)
}

func TestLoad_AltExtension(t *testing.T) {
	isolate(t)

	// Given: only a .yml project config
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigAltName), []byte("index:\n  workers: 7\n"), 0o644))

	// When: loading
	cfg, err := Load(dir)

	// Then: it is picked up
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Index.Workers)
}

func TestLoad_UserConfigThenProjectConfig(t *testing.T) {
	isolate(t)

	// Given: a user config and a project config touching the same key
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	userDir := filepath.Join(xdg, "dirsearch")
	require.NoError(t, os.MkdirAll(userDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "config.yaml"),
		[]byte("index:\n  workers: 2\n  max_file_size: 4096\n"), 0o644))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigName),
		[]byte("index:\n  workers: 5\n"), 0o644))

	// When: loading
	cfg, err := Load(dir)

	// Then: the project wins, user values survive where the project is silent
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Index.Workers)
	assert.Equal(t, int64(4096), cfg.Index.MaxFileSize)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)

	// Given: a project config and env overrides
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigName),
		[]byte("index:\n  workers: 5\n"), 0o644))
	t.Setenv("DIRSEARCH_WORKERS", "9")
	t.Setenv("DIRSEARCH_LOG_LEVEL", "warn")
	t.Setenv("DIRSEARCH_DEBOUNCE", "1s")
	t.Setenv("DIRSEARCH_COMPACTION_INTERVAL", "5m")
	t.Setenv("DIRSEARCH_DEFAULT_OPERATOR", "OR")

	// When: loading
	cfg, err := Load(dir)

	// Then: env beats the file
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Index.Workers)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, time.Second, cfg.DebounceWindow())
	assert.Equal(t, 5*time.Minute, cfg.CompactionEvery())
	assert.Equal(t, "OR", cfg.Index.DefaultOperator)
}

func TestLoad_EnvWorkers_IgnoresGarbage(t *testing.T) {
	isolate(t)

	// Given: a non-numeric worker override
	t.Setenv("DIRSEARCH_WORKERS", "many")

	// When: loading
	cfg, err := Load(t.TempDir())

	// Then: the default is kept
	require.NoError(t, err)
	assert.Equal(t, NewConfig().Index.Workers, cfg.Index.Workers)
}

func TestLoad_MalformedYAML(t *testing.T) {
	isolate(t)

	// Given: an unparseable project config
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigName), []byte("index: [unclosed"), 0o644))

	// When: loading
	_, err := Load(dir)

	// Then: a config error is returned
	require.Error(t, err)
	assert.Equal(t, dserrors.ErrCodeConfigInvalid, dserrors.GetCode(err))
}

func TestLoadFile_Missing(t *testing.T) {
	isolate(t)

	// When: loading a file that does not exist
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))

	// Then: ERR_101 is reported
	require.Error(t, err)
	assert.Equal(t, dserrors.ErrCodeConfigNotFound, dserrors.GetCode(err))
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad debounce", func(c *Config) { c.Watch.Debounce = "soon" }},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = "-1s" }},
		{"bad compaction", func(c *Config) { c.Index.CompactionInterval = "" }},
		{"bad retry delay", func(c *Config) { c.Index.ReadRetryDelay = "10" }},
		{"negative workers", func(c *Config) { c.Index.Workers = -1 }},
		{"negative max size", func(c *Config) { c.Index.MaxFileSize = -1 }},
		{"negative cache", func(c *Config) { c.Index.WildcardCacheSize = -1 }},
		{"negative error buffer", func(c *Config) { c.Watch.ErrorBuffer = -1 }},
		{"unknown operator", func(c *Config) { c.Index.DefaultOperator = "xor" }},
		{"unknown level", func(c *Config) { c.Logging.Level = "loud" }},
		{"unknown format", func(c *Config) { c.Logging.Format = "xml" }},
		{"directory without path", func(c *Config) {
			c.Watch.Directories = []DirectoryConfig{{Filter: "*.go"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a config with one invalid value
			cfg := NewConfig()
			tt.mutate(cfg)

			// When: validating
			err := cfg.Validate()

			// Then: a config error is returned
			require.Error(t, err)
			var se *dserrors.SearchError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, dserrors.CategoryConfig, se.Category)
		})
	}
}

func TestWriteYAML_RoundTripsThroughLoadFile(t *testing.T) {
	isolate(t)

	// Given: a customized config written to disk
	cfg := NewConfig()
	cfg.Watch.Directories = []DirectoryConfig{{Path: "/srv/notes", Filter: "*.md"}}
	cfg.Index.DefaultOperator = "or"
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	// When: reading it back
	loaded, err := LoadFile(path)

	// Then: the customized values survive
	require.NoError(t, err)
	assert.Equal(t, cfg.Watch.Directories, loaded.Watch.Directories)
	assert.Equal(t, "or", loaded.Index.DefaultOperator)
}
