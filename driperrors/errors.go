package driperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrInvalidPatch indicates the patch specification could not be loaded.
	ErrInvalidPatch = errors.New("invalid patch")

	// ErrSourceAssetMissing indicates the source archive or a target asset is absent.
	ErrSourceAssetMissing = errors.New("source asset missing")

	// ErrExternalTool indicates an external tool exited abnormally.
	ErrExternalTool = errors.New("external tool failure")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")

	// ErrUnresolvedSelector indicates a selector matched zero nodes. Non-fatal.
	ErrUnresolvedSelector = errors.New("unresolved selector")

	// ErrMissingReplacementAsset indicates a shape replacement file does not exist. Non-fatal.
	ErrMissingReplacementAsset = errors.New("missing replacement asset")
)

// InvalidPatchError represents a patch specification that is missing,
// unreadable or not well formed.
type InvalidPatchError struct {
	// Path is the patch file or directory
	Path string
	// Key is the spec key (target asset) involved, if any
	Key string
	// Line is the 1-based line in the patch file (0 if unknown)
	Line int
	// Message describes the problem
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *InvalidPatchError) Error() string {
	msg := "invalid patch"
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
	}
	if e.Key != "" {
		msg += fmt.Sprintf(" (entry %q)", e.Key)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *InvalidPatchError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *InvalidPatchError) Is(target error) bool {
	return target == ErrInvalidPatch
}

// SourceAssetMissingError represents a missing source archive, or a target
// asset that the extracted archive does not contain.
type SourceAssetMissingError struct {
	// Path is the path that was looked up
	Path string
	// Asset is the spec key of the asset, empty for the archive itself
	Asset string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *SourceAssetMissingError) Error() string {
	msg := "source asset missing"
	if e.Asset != "" {
		msg += fmt.Sprintf(" for entry %q", e.Asset)
	}
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *SourceAssetMissingError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *SourceAssetMissingError) Is(target error) bool {
	return target == ErrSourceAssetMissing
}

// ExternalToolError represents an external tool invocation that failed or
// produced unreadable output.
type ExternalToolError struct {
	// Tool names the executable (e.g. "ffdec")
	Tool string
	// Operation is the tool operation, e.g. "swf2xml", "xml2swf", "replace", "extract"
	Operation string
	// Asset is the spec key of the asset being processed, if any
	Asset string
	// ExitCode is the process exit status (-1 if the process never ran or was killed)
	ExitCode int
	// Message provides additional context
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ExternalToolError) Error() string {
	msg := "external tool failure"
	if e.Tool != "" {
		msg += ": " + e.Tool
		if e.Operation != "" {
			msg += " " + e.Operation
		}
	}
	if e.Asset != "" {
		msg += fmt.Sprintf(" (entry %q)", e.Asset)
	}
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(" exited with status %d", e.ExitCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ExternalToolError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ExternalToolError) Is(target error) bool {
	return target == ErrExternalTool
}

// ConfigError represents an invalid configuration or input.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// IsFatal reports whether err belongs to a category that aborts a run.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrInvalidPatch) ||
		errors.Is(err, ErrSourceAssetMissing) ||
		errors.Is(err, ErrExternalTool) ||
		errors.Is(err, ErrConfig)
}
