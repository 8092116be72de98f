package commands

import (
	"flag"
	"fmt"
	"os"

	"github.com/erraggy/drip/driperrors"
	"github.com/erraggy/drip/internal/cliutil"
	"github.com/erraggy/drip/patchspec"
)

// ValidateFlags contains flags for the validate command
type ValidateFlags struct {
	NoProblems bool
	Quiet      bool
	Format     string
}

// SetupValidateFlags creates and configures a FlagSet for the validate command.
// Returns the FlagSet and a ValidateFlags struct with bound flag variables.
func SetupValidateFlags() (*flag.FlagSet, *ValidateFlags) {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	flags := &ValidateFlags{}

	fs.BoolVar(&flags.NoProblems, "no-problems", false, "only list validation errors, not load problems")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only set the exit code")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only set the exit code")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: drip validate [flags] <patch-dir|patch.json>\n\n")
		Writef(fs.Output(), "Load a patch spec and run the strict structural checks.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  drip validate ./patch\n")
		Writef(fs.Output(), "  drip validate --format json patch.json | jq '.valid'\n")
		Writef(fs.Output(), "\nExit Codes:\n")
		Writef(fs.Output(), "  0    Spec is valid\n")
		Writef(fs.Output(), "  3    Spec is malformed or invalid\n")
	}

	return fs, flags
}

// ValidateIssue is one finding in the validate report.
type ValidateIssue struct {
	Entry   string `json:"entry,omitempty" yaml:"entry,omitempty"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Message string `json:"message" yaml:"message"`
	Line    int    `json:"line,omitempty" yaml:"line,omitempty"`
}

func (i ValidateIssue) String() string {
	loc := i.Entry
	if i.Path != "" {
		loc += "." + i.Path
	}
	if i.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", i.Line, loc, i.Message)
	}
	if loc == "" {
		return i.Message
	}
	return loc + ": " + i.Message
}

// ValidateReport is the structured output of the validate command.
type ValidateReport struct {
	Spec     string          `json:"spec" yaml:"spec"`
	Valid    bool            `json:"valid" yaml:"valid"`
	Assets   []string        `json:"assets" yaml:"assets"`
	Errors   []ValidateIssue `json:"errors,omitempty" yaml:"errors,omitempty"`
	Problems []ValidateIssue `json:"problems,omitempty" yaml:"problems,omitempty"`
}

// HandleValidate executes the validate command
func HandleValidate(args []string) error {
	fs, flags := SetupValidateFlags()
	if stop, err := parseFlags(fs, args); stop {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return cliutil.Usagef("validate command requires exactly one patch directory or file")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	spec, err := loadSpec(fs.Arg(0))
	if err != nil {
		return err
	}

	rep := ValidateReport{Spec: spec.Path, Assets: spec.Names()}
	for _, e := range patchspec.Validate(spec) {
		rep.Errors = append(rep.Errors, ValidateIssue{Entry: e.Entry, Path: e.Path, Message: e.Message, Line: e.Pos.Line})
	}
	if !flags.NoProblems {
		for _, p := range spec.Problems() {
			rep.Problems = append(rep.Problems, ValidateIssue{Entry: p.Entry, Path: p.Field, Message: p.Message, Line: p.Pos.Line})
		}
	}
	rep.Valid = len(rep.Errors) == 0

	switch {
	case flags.Quiet:
	case flags.Format != FormatText:
		if err := OutputStructured(rep, flags.Format); err != nil {
			return err
		}
	default:
		printValidateReport(rep)
	}

	if rep.Valid {
		return nil
	}
	first := rep.Errors[0]
	return &driperrors.InvalidPatchError{
		Path:    spec.Path,
		Key:     first.Entry,
		Line:    first.Line,
		Message: fmt.Sprintf("%d validation %s", len(rep.Errors), cliutil.Plural(len(rep.Errors), "error")),
	}
}

func printValidateReport(rep ValidateReport) {
	Writef(Stderr, "Patch Spec Validator\n")
	Writef(Stderr, "====================\n\n")
	Writef(Stderr, "Spec: %s\n", rep.Spec)
	Writef(Stderr, "Assets: %d\n\n", len(rep.Assets))

	if len(rep.Errors) > 0 {
		Writef(Stderr, "Errors (%d):\n", len(rep.Errors))
		for _, e := range rep.Errors {
			Writef(Stderr, "  %s\n", e)
		}
		Writef(Stderr, "\n")
	}
	if len(rep.Problems) > 0 {
		Writef(Stderr, "Problems (%d):\n", len(rep.Problems))
		for _, p := range rep.Problems {
			Writef(Stderr, "  %s\n", p)
		}
		Writef(Stderr, "\n")
	}

	if rep.Valid {
		Writef(Stderr, "✓ Spec is valid\n")
	} else {
		Writef(Stderr, "✗ Spec is invalid\n")
	}
}

// loadSpec loads a patch directory or a single spec file.
func loadSpec(path string) (*patchspec.PatchSpec, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &driperrors.InvalidPatchError{Path: path, Message: "cannot read spec", Cause: err}
	}
	if info.IsDir() {
		return patchspec.Load(path)
	}
	return patchspec.LoadFile(path)
}
