// Package commands provides CLI command handlers for drip.
package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/drip/eventlog"
	"github.com/erraggy/drip/internal/cliutil"
	"github.com/erraggy/drip/internal/config"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Stdout and Stderr are where commands write; tests replace them.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// Writef writes formatted output to the writer.
func Writef(w io.Writer, format string, args ...any) {
	cliutil.Writef(w, format, args...)
}

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string) error {
	if format != FormatText && format != FormatJSON && format != FormatYAML {
		return cliutil.Usagef("invalid format '%s'. Valid formats: %s, %s, %s", format, FormatText, FormatJSON, FormatYAML)
	}
	return nil
}

// OutputStructured writes data in the specified format (json or yaml) to Stdout.
func OutputStructured(data any, format string) error {
	var bytes []byte
	var err error

	switch format {
	case FormatJSON:
		bytes, err = json.MarshalIndent(data, "", "  ")
	case FormatYAML:
		bytes, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}

	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	Writef(Stdout, "%s\n", bytes)
	return nil
}

// CommonFlags are accepted by every command that loads configuration.
type CommonFlags struct {
	ConfigFile string
	LogLevel   string
	LogFormat  string
	NoEnvFile  bool
	Quiet      bool
}

func (c *CommonFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", "", "configuration file (default: ./"+config.FileName+" when present)")
	fs.StringVar(&c.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&c.LogFormat, "log-format", "", "log format: text or json")
	fs.BoolVar(&c.NoEnvFile, "no-env-file", false, "do not read "+config.EnvFileName)
	fs.BoolVar(&c.Quiet, "q", false, "quiet mode: only log errors")
	fs.BoolVar(&c.Quiet, "quiet", false, "quiet mode: only log errors")
}

// load resolves the configuration layers, applies the log flags and builds
// the logger. Logs always go to Stderr.
func (c *CommonFlags) load() (*config.Config, eventlog.Logger, error) {
	boot, _ := eventlog.NewSlogLogger(Stderr, "warn", FormatText)
	cfg, err := config.Load(config.LoadOptions{
		File:        c.ConfigFile,
		SkipEnvFile: c.NoEnvFile,
		Logger:      boot,
	})
	if err != nil {
		return nil, nil, err
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
		cfg.Sources = append(cfg.Sources, "flags")
	}
	if c.LogFormat != "" {
		cfg.LogFormat = c.LogFormat
	}
	if c.Quiet {
		cfg.LogLevel = "error"
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger, err := eventlog.NewSlogLogger(Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("configuration loaded", "sources", cfg.Sources)
	return cfg, logger, nil
}

// parseFlags parses args and reports whether the command should stop
// because help was requested.
func parseFlags(fs *flag.FlagSet, args []string) (stop bool, err error) {
	fs.SetOutput(Stderr)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return true, nil
		}
		return true, cliutil.Usagef("%v", err)
	}
	return false, nil
}

// setFlags returns the names of the flags given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}
