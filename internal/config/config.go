// Package config resolves drip's settings from layered sources.
//
// Later layers override earlier ones:
//
//  1. built-in defaults
//  2. drip.yaml (explicit path, or found in the working directory)
//  3. .env in the working directory (never overrides the real environment)
//  4. DRIP_* environment variables
//  5. command-line flags, applied by the caller
//
// Invalid environment values log a warning and keep the previous value.
// Invalid file values are errors.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/drip/driperrors"
	"github.com/erraggy/drip/eventlog"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "drip.yaml"

// EnvFileName is the dotenv file looked up in the working directory.
const EnvFileName = ".env"

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "DRIP_"

// Config holds every run setting.
type Config struct {
	FFDecCommand     string        `yaml:"ffdec_command"`
	JavaCommand      string        `yaml:"java_command"`
	ArchiveName      string        `yaml:"archive_name"`
	ExtractCommand   string        `yaml:"extract_command"`
	AssetDir         string        `yaml:"asset_dir"`
	OutputRoot       string        `yaml:"output_root"`
	EscapeMarkup     bool          `yaml:"escape_markup"`
	KeepGoing        bool          `yaml:"keep_going"`
	KeepIntermediate bool          `yaml:"keep_intermediate"`
	CleanupGrace     time.Duration `yaml:"-"`
	LogLevel         string        `yaml:"log_level"`
	LogFormat        string        `yaml:"log_format"`

	// MCP holds the MCP server settings; environment only.
	MCP MCPConfig `yaml:"-"`

	// Sources lists the layers that contributed, for diagnostics.
	Sources []string `yaml:"-"`
}

// MCPConfig holds the settings of the MCP server.
type MCPConfig struct {
	// CacheSize bounds the number of parsed specs and trees kept in memory.
	CacheSize int
	// CacheTTL is how long a cached entry stays valid.
	CacheTTL time.Duration
	// MaxInlineSize bounds inline spec or tree content, in bytes.
	MaxInlineSize int
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		FFDecCommand: "ffdec",
		JavaCommand:  "java",
		ArchiveName:  "RaceMenu.bsa",
		AssetDir:     "interface",
		CleanupGrace: time.Second,
		LogLevel:     "info",
		LogFormat:    "text",
		MCP: MCPConfig{
			CacheSize:     16,
			CacheTTL:      15 * time.Minute,
			MaxInlineSize: 10 << 20,
		},
		Sources: []string{"defaults"},
	}
}

// LoadOptions controls Load.
type LoadOptions struct {
	// Dir is where drip.yaml and .env are looked up; the working directory
	// when empty.
	Dir string
	// File is an explicit config file; it must exist.
	File string
	// SkipEnvFile disables .env loading.
	SkipEnvFile bool
	// Logger receives warnings about ignored environment values.
	Logger eventlog.Logger
}

// Load resolves defaults, file and environment. Flags are the caller's job.
func Load(opts LoadOptions) (*Config, error) {
	log := eventlog.OrNop(opts.Logger)
	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		dir = wd
	}

	cfg := Default()

	file := opts.File
	if file == "" {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			file = candidate
		}
	}
	if file != "" {
		if err := cfg.loadFile(file); err != nil {
			return nil, err
		}
	}

	if !opts.SkipEnvFile {
		envFile := filepath.Join(dir, EnvFileName)
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, &driperrors.ConfigError{Option: EnvFileName, Value: envFile, Cause: err}
			}
			cfg.Sources = append(cfg.Sources, envFile)
		}
	}

	cfg.applyEnv(log)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fileConfig mirrors Config with optional fields, so only keys present in
// the file override.
type fileConfig struct {
	FFDecCommand     *string `yaml:"ffdec_command"`
	JavaCommand      *string `yaml:"java_command"`
	ArchiveName      *string `yaml:"archive_name"`
	ExtractCommand   *string `yaml:"extract_command"`
	AssetDir         *string `yaml:"asset_dir"`
	OutputRoot       *string `yaml:"output_root"`
	EscapeMarkup     *bool   `yaml:"escape_markup"`
	KeepGoing        *bool   `yaml:"keep_going"`
	KeepIntermediate *bool   `yaml:"keep_intermediate"`
	CleanupGrace     *string `yaml:"cleanup_grace"`
	LogLevel         *string `yaml:"log_level"`
	LogFormat        *string `yaml:"log_format"`
}

var fileKeys = []string{
	"ffdec_command", "java_command", "archive_name", "extract_command", "asset_dir", "output_root",
	"escape_markup", "keep_going", "keep_intermediate", "cleanup_grace", "log_level", "log_format",
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &driperrors.ConfigError{Option: "config", Value: path, Cause: err}
	}

	var keys map[string]any
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return &driperrors.ConfigError{Option: "config", Value: path, Message: "invalid YAML", Cause: err}
	}
	for k := range keys {
		if !slices.Contains(fileKeys, k) {
			return &driperrors.ConfigError{Option: k, Value: path, Message: "unknown configuration key"}
		}
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return &driperrors.ConfigError{Option: "config", Value: path, Message: "invalid YAML", Cause: err}
	}
	setString(&c.FFDecCommand, fc.FFDecCommand)
	setString(&c.JavaCommand, fc.JavaCommand)
	setString(&c.ArchiveName, fc.ArchiveName)
	setString(&c.ExtractCommand, fc.ExtractCommand)
	setString(&c.AssetDir, fc.AssetDir)
	setString(&c.OutputRoot, fc.OutputRoot)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.LogFormat, fc.LogFormat)
	setBool(&c.EscapeMarkup, fc.EscapeMarkup)
	setBool(&c.KeepGoing, fc.KeepGoing)
	setBool(&c.KeepIntermediate, fc.KeepIntermediate)
	if fc.CleanupGrace != nil {
		d, err := time.ParseDuration(*fc.CleanupGrace)
		if err != nil || d < 0 {
			return &driperrors.ConfigError{Option: "cleanup_grace", Value: *fc.CleanupGrace, Message: "want a non-negative duration such as 1s", Cause: err}
		}
		c.CleanupGrace = d
	}
	c.Sources = append(c.Sources, path)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// applyEnv overlays DRIP_* variables.
func (c *Config) applyEnv(log eventlog.Logger) {
	c.FFDecCommand = envString("DRIP_FFDEC_COMMAND", c.FFDecCommand)
	c.JavaCommand = envString("DRIP_JAVA_COMMAND", c.JavaCommand)
	c.ArchiveName = envString("DRIP_ARCHIVE_NAME", c.ArchiveName)
	c.ExtractCommand = envString("DRIP_EXTRACT_COMMAND", c.ExtractCommand)
	c.AssetDir = envString("DRIP_ASSET_DIR", c.AssetDir)
	c.OutputRoot = envString("DRIP_OUTPUT_ROOT", c.OutputRoot)
	c.EscapeMarkup = envBool(log, "DRIP_ESCAPE_MARKUP", c.EscapeMarkup)
	c.KeepGoing = envBool(log, "DRIP_KEEP_GOING", c.KeepGoing)
	c.KeepIntermediate = envBool(log, "DRIP_KEEP_INTERMEDIATE", c.KeepIntermediate)
	c.CleanupGrace = envDuration(log, "DRIP_CLEANUP_GRACE", c.CleanupGrace)
	c.LogLevel = envString("DRIP_LOG_LEVEL", c.LogLevel)
	c.LogFormat = envString("DRIP_LOG_FORMAT", c.LogFormat)
	c.MCP.CacheSize = envInt(log, "DRIP_MCP_CACHE_SIZE", c.MCP.CacheSize)
	c.MCP.CacheTTL = envDuration(log, "DRIP_MCP_CACHE_TTL", c.MCP.CacheTTL)
	c.MCP.MaxInlineSize = envInt(log, "DRIP_MCP_MAX_INLINE_SIZE", c.MCP.MaxInlineSize)
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, EnvPrefix) {
			c.Sources = append(c.Sources, "environment")
			break
		}
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.FFDecCommand) == "" {
		errs = append(errs, &driperrors.ConfigError{Option: "ffdec_command", Message: "must not be empty"})
	}
	if strings.TrimSpace(c.AssetDir) == "" || !filepath.IsLocal(filepath.FromSlash(c.AssetDir)) {
		errs = append(errs, &driperrors.ConfigError{Option: "asset_dir", Value: c.AssetDir, Message: "must be a relative path inside the archive"})
	}
	if _, err := eventlog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, &driperrors.ConfigError{Option: "log_level", Value: c.LogLevel, Cause: err})
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, &driperrors.ConfigError{Option: "log_format", Value: c.LogFormat, Message: "want text or json"})
	}
	if c.CleanupGrace < 0 {
		errs = append(errs, &driperrors.ConfigError{Option: "cleanup_grace", Value: c.CleanupGrace.String(), Message: "must not be negative"})
	}
	return errors.Join(errs...)
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(log eventlog.Logger, key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn("invalid bool env var, keeping previous value", "key", key, "value", v, "previous", fallback)
		return fallback
	}
	return b
}

func envInt(log eventlog.Logger, key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn("invalid int env var, keeping previous value", "key", key, "value", v, "previous", fallback)
		return fallback
	}
	return n
}

func envDuration(log eventlog.Logger, key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Warn("invalid duration env var, keeping previous value", "key", key, "value", v, "previous", fallback)
		return fallback
	}
	return d
}
