// Package cliutil provides utilities for CLI operations.
package cliutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/erraggy/drip/driperrors"
)

// Exit codes reported by the drip command.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitUsage        = 2
	ExitInvalidPatch = 3
	ExitAssetMissing = 4
	ExitExternalTool = 5
	ExitConfig       = 6
	ExitInterrupted  = 130
)

// ErrUsage marks errors caused by bad command-line arguments.
var ErrUsage = errors.New("usage")

// Usagef returns an error wrapping ErrUsage.
func Usagef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// ExitCode maps an error to the process exit code. The most specific
// category wins when err joins several.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, ErrUsage):
		return ExitUsage
	case errors.Is(err, driperrors.ErrConfig):
		return ExitConfig
	case errors.Is(err, driperrors.ErrInvalidPatch):
		return ExitInvalidPatch
	case errors.Is(err, driperrors.ErrSourceAssetMissing):
		return ExitAssetMissing
	case errors.Is(err, driperrors.ErrExternalTool):
		return ExitExternalTool
	default:
		return ExitFailure
	}
}

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr (useful for debugging).
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// Plural returns singular when n is 1 and singular+"s" otherwise.
func Plural(n int, singular string) string {
	if n == 1 {
		return singular
	}
	return singular + "s"
}
