// Package config loads dirsearch configuration from YAML files and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	dserrors "github.com/Aman-CERP/dirsearch/internal/errors"
)

// Project config file names, in order of precedence.
const (
	ProjectConfigName    = ".dirsearch.yaml"
	ProjectConfigAltName = ".dirsearch.yml"
)

// Config represents the complete dirsearch configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Watch   WatchConfig   `yaml:"watch" json:"watch"`
	Index   IndexConfig   `yaml:"index" json:"index"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// WatchConfig lists what to watch and how change events are handled.
type WatchConfig struct {
	// Directories are watched recursively.
	Directories []DirectoryConfig `yaml:"directories" json:"directories"`

	// Files are watched individually.
	Files []string `yaml:"files" json:"files"`

	// Debounce is the window within which repeated writes to one file
	// collapse into a single update (e.g. "50ms").
	Debounce string `yaml:"debounce" json:"debounce"`

	// ErrorBuffer is the capacity of each watchdog's error channel.
	ErrorBuffer int `yaml:"error_buffer" json:"error_buffer"`
}

// DirectoryConfig is one watched directory.
type DirectoryConfig struct {
	Path string `yaml:"path" json:"path"`
	// Filter is a file name mask such as "*.txt". Empty matches every file.
	Filter string `yaml:"filter" json:"filter"`
}

// IndexConfig tunes indexing and search.
type IndexConfig struct {
	// Workers bounds concurrent file indexing. Zero means one per CPU.
	Workers int `yaml:"workers" json:"workers"`

	// CompactionInterval is the period of tombstone compaction (e.g. "30s").
	CompactionInterval string `yaml:"compaction_interval" json:"compaction_interval"`

	// ReadRetryDelay is the pause between attempts to read a locked file.
	ReadRetryDelay string `yaml:"read_retry_delay" json:"read_retry_delay"`

	// MaxFileSize skips files larger than this many bytes. Zero disables the limit.
	MaxFileSize int64 `yaml:"max_file_size" json:"max_file_size"`

	// DefaultOperator joins query words: "and" or "or".
	DefaultOperator string `yaml:"default_operator" json:"default_operator"`

	// WildcardCacheSize is the number of cached wildcard expansions.
	WildcardCacheSize int `yaml:"wildcard_cache_size" json:"wildcard_cache_size"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	Format    string `yaml:"format" json:"format"`
	File      string `yaml:"file" json:"file"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Watch: WatchConfig{
			Directories: []DirectoryConfig{},
			Files:       []string{},
			Debounce:    "50ms",
			ErrorBuffer: 16,
		},
		Index: IndexConfig{
			Workers:            runtime.NumCPU(),
			CompactionInterval: "30s",
			ReadRetryDelay:     "10ms",
			MaxFileSize:        0,
			DefaultOperator:    "and",
			WildcardCacheSize:  256,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "text",
			File:      "",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// GetUserConfigPath returns the path to the user configuration file:
//   - $XDG_CONFIG_HOME/dirsearch/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/dirsearch/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dirsearch", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "dirsearch", "config.yaml")
	}
	return filepath.Join(home, ".config", "dirsearch", "config.yaml")
}

// Load loads configuration for the project in dir. It applies, in order of
// increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/dirsearch/config.yaml)
//  3. Project config (.dirsearch.yaml in dir)
//  4. Environment variables (DIRSEARCH_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userPath := GetUserConfigPath(); fileExists(userPath) {
		if err := cfg.loadYAML(userPath); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadFromDir(dir); err != nil {
		return nil, err
	}

	return cfg.finish()
}

// LoadFile loads an explicit config file over the defaults, then applies
// environment overrides. A missing file is an error.
func LoadFile(path string) (*Config, error) {
	if !fileExists(path) {
		return nil, dserrors.New(dserrors.ErrCodeConfigNotFound,
			"config file not found: "+path, nil)
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}
	return cfg.finish()
}

func (c *Config) finish() (*Config, error) {
	c.applyEnvOverrides()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// loadFromDir loads .dirsearch.yaml, or .dirsearch.yml, from dir if present.
func (c *Config) loadFromDir(dir string) error {
	for _, name := range []string{ProjectConfigName, ProjectConfigAltName} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return c.loadYAML(path)
		}
	}
	return nil
}

// loadYAML parses path and merges its non-zero values into c.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return dserrors.ConfigError("failed to read config file "+path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return dserrors.ConfigError("failed to parse config file "+path, err).
			WithDetail("path", path)
	}

	// Relative watch paths are relative to the file that names them.
	base := filepath.Dir(path)
	for i, d := range parsed.Watch.Directories {
		parsed.Watch.Directories[i].Path = resolvePath(base, d.Path)
	}
	for i, f := range parsed.Watch.Files {
		parsed.Watch.Files[i] = resolvePath(base, f)
	}

	c.mergeWith(&parsed)
	return nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// mergeWith merges non-zero values from other into c. Watch lists are
// appended, everything else replaced.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	c.Watch.Directories = append(c.Watch.Directories, other.Watch.Directories...)
	c.Watch.Files = append(c.Watch.Files, other.Watch.Files...)
	if other.Watch.Debounce != "" {
		c.Watch.Debounce = other.Watch.Debounce
	}
	if other.Watch.ErrorBuffer != 0 {
		c.Watch.ErrorBuffer = other.Watch.ErrorBuffer
	}

	if other.Index.Workers != 0 {
		c.Index.Workers = other.Index.Workers
	}
	if other.Index.CompactionInterval != "" {
		c.Index.CompactionInterval = other.Index.CompactionInterval
	}
	if other.Index.ReadRetryDelay != "" {
		c.Index.ReadRetryDelay = other.Index.ReadRetryDelay
	}
	if other.Index.MaxFileSize != 0 {
		c.Index.MaxFileSize = other.Index.MaxFileSize
	}
	if other.Index.DefaultOperator != "" {
		c.Index.DefaultOperator = other.Index.DefaultOperator
	}
	if other.Index.WildcardCacheSize != 0 {
		c.Index.WildcardCacheSize = other.Index.WildcardCacheSize
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.Format != "" {
		c.Logging.Format = other.Logging.Format
	}
	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}
	if other.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = other.Logging.MaxSizeMB
	}
	if other.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = other.Logging.MaxFiles
	}
}

// applyEnvOverrides applies DIRSEARCH_* variables. Malformed numbers are
// ignored; malformed durations and names are caught by Validate.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DIRSEARCH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DIRSEARCH_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("DIRSEARCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Index.Workers = n
		}
	}
	if v := os.Getenv("DIRSEARCH_DEBOUNCE"); v != "" {
		c.Watch.Debounce = v
	}
	if v := os.Getenv("DIRSEARCH_COMPACTION_INTERVAL"); v != "" {
		c.Index.CompactionInterval = v
	}
	if v := os.Getenv("DIRSEARCH_DEFAULT_OPERATOR"); v != "" {
		c.Index.DefaultOperator = v
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	durations := []struct {
		name  string
		value string
	}{
		{"watch.debounce", c.Watch.Debounce},
		{"index.compaction_interval", c.Index.CompactionInterval},
		{"index.read_retry_delay", c.Index.ReadRetryDelay},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.value)
		if err != nil || v < 0 {
			return dserrors.ConfigError(fmt.Sprintf("%s must be a non-negative duration, got %q", d.name, d.value), err)
		}
	}

	if c.Index.Workers < 0 {
		return dserrors.ConfigError(fmt.Sprintf("index.workers must be non-negative, got %d", c.Index.Workers), nil)
	}
	if c.Index.MaxFileSize < 0 {
		return dserrors.ConfigError(fmt.Sprintf("index.max_file_size must be non-negative, got %d", c.Index.MaxFileSize), nil)
	}
	if c.Index.WildcardCacheSize < 0 {
		return dserrors.ConfigError(fmt.Sprintf("index.wildcard_cache_size must be non-negative, got %d", c.Index.WildcardCacheSize), nil)
	}
	if c.Watch.ErrorBuffer < 0 {
		return dserrors.ConfigError(fmt.Sprintf("watch.error_buffer must be non-negative, got %d", c.Watch.ErrorBuffer), nil)
	}

	switch strings.ToLower(c.Index.DefaultOperator) {
	case "and", "or":
	default:
		return dserrors.ConfigError(fmt.Sprintf("index.default_operator must be 'and' or 'or', got %s", c.Index.DefaultOperator), nil)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return dserrors.ConfigError(fmt.Sprintf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level), nil)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return dserrors.ConfigError(fmt.Sprintf("logging.format must be 'text' or 'json', got %s", c.Logging.Format), nil)
	}

	for _, d := range c.Watch.Directories {
		if d.Path == "" {
			return dserrors.ConfigError("watch.directories entries need a path", nil)
		}
	}
	return nil
}

// DebounceWindow returns the parsed watch.debounce value.
func (c *Config) DebounceWindow() time.Duration {
	return mustDuration(c.Watch.Debounce)
}

// CompactionEvery returns the parsed index.compaction_interval value.
func (c *Config) CompactionEvery() time.Duration {
	return mustDuration(c.Index.CompactionInterval)
}

// RetryDelay returns the parsed index.read_retry_delay value.
func (c *Config) RetryDelay() time.Duration {
	return mustDuration(c.Index.ReadRetryDelay)
}

// mustDuration parses a duration already checked by Validate. Unparseable
// input yields zero, which callers treat as "use the default".
func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return dserrors.InternalError("failed to marshal config", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return dserrors.IOError("failed to write config file", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
