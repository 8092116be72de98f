package commands

import (
	"flag"
	"path/filepath"

	"github.com/erraggy/drip/internal/cliutil"
	"github.com/erraggy/drip/internal/fileutil"
	"github.com/erraggy/drip/patchspec"
	"github.com/erraggy/drip/swfxml"
	"github.com/erraggy/drip/transform"
)

// TransformFlags contains flags for the transform command
type TransformFlags struct {
	CommonFlags
	Spec         string
	Asset        string
	Output       string
	DryRun       bool
	EscapeMarkup bool
	Format       string
}

// SetupTransformFlags creates and configures a FlagSet for the transform command.
func SetupTransformFlags() (*flag.FlagSet, *TransformFlags) {
	fs := flag.NewFlagSet("transform", flag.ContinueOnError)
	flags := &TransformFlags{}
	flags.bind(fs)

	fs.StringVar(&flags.Spec, "spec", "", "patch directory or spec file (required)")
	fs.StringVar(&flags.Asset, "asset", "", "spec entry to apply (default: the only entry)")
	fs.StringVar(&flags.Output, "o", "", "write the edited tree here instead of in place")
	fs.StringVar(&flags.Output, "output", "", "write the edited tree here instead of in place")
	fs.BoolVar(&flags.DryRun, "dry-run", false, "report changes without writing")
	fs.BoolVar(&flags.EscapeMarkup, "escape-markup", false, "re-escape rewritten text markup with HTML entities")
	fs.StringVar(&flags.Format, "format", FormatText, "report format: text, json, or yaml")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: drip transform [flags] --spec <patch> <tree.xml>\n\n")
		Writef(fs.Output(), "Apply one spec entry's tree edits to an FFDec XML export (ffdec -swf2xml).\n")
		Writef(fs.Output(), "Shape replacement needs the SWF itself and is left to 'drip patch'.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  drip transform --spec ./patch --dry-run racesex_menu.xml\n")
		Writef(fs.Output(), "  drip transform --spec ./patch --asset racesex_menu.swf -o edited.xml racesex_menu.xml\n")
	}

	return fs, flags
}

// TransformReport is the structured output of the transform command.
type TransformReport struct {
	Asset    string                   `json:"asset" yaml:"asset"`
	Tree     string                   `json:"tree" yaml:"tree"`
	Written  string                   `json:"written,omitempty" yaml:"written,omitempty"`
	Applied  int                      `json:"applied" yaml:"applied"`
	Skipped  int                      `json:"skipped" yaml:"skipped"`
	Changes  []transform.ChangeRecord `json:"changes,omitempty" yaml:"changes,omitempty"`
	Warnings []string                 `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// HandleTransform executes the transform command
func HandleTransform(args []string) error {
	fs, flags := SetupTransformFlags()
	if stop, err := parseFlags(fs, args); stop {
		return err
	}
	if fs.NArg() != 1 || flags.Spec == "" {
		fs.Usage()
		return cliutil.Usagef("transform command requires --spec and exactly one tree file")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}
	cfg, log, err := flags.load()
	if err != nil {
		return err
	}
	if setFlags(fs)["escape-markup"] {
		cfg.EscapeMarkup = flags.EscapeMarkup
	}

	spec, err := loadSpec(flags.Spec)
	if err != nil {
		return err
	}
	name, edit, err := selectEntry(spec, flags.Asset)
	if err != nil {
		return err
	}

	treePath := fs.Arg(0)
	doc, err := swfxml.ReadFile(treePath)
	if err != nil {
		return err
	}

	t := transform.New(
		transform.WithLogger(log.With("asset", name)),
		transform.WithEscapeMarkup(cfg.EscapeMarkup),
	)
	var res *transform.Result
	if flags.DryRun {
		res, err = t.DryRun(doc, edit)
	} else {
		res, err = t.Apply(doc, edit)
	}
	if err != nil {
		return err
	}

	rep := TransformReport{
		Asset:    name,
		Tree:     treePath,
		Applied:  res.EditsApplied,
		Skipped:  res.EditsSkipped,
		Changes:  res.Changes,
		Warnings: res.Warnings.Strings(),
	}
	if !flags.DryRun && res.HasChanges() {
		out := treePath
		if flags.Output != "" {
			out = flags.Output
		}
		out = filepath.Clean(out)
		if err := fileutil.RejectSymlink(out); err != nil {
			return err
		}
		if err := doc.WriteFile(out); err != nil {
			return err
		}
		rep.Written = out
	}

	if flags.Format != FormatText {
		return OutputStructured(rep, flags.Format)
	}
	if !flags.Quiet {
		for _, c := range rep.Changes {
			Writef(Stderr, "  %s\n", c)
		}
		for _, w := range rep.Warnings {
			Writef(Stderr, "  warning: %s\n", w)
		}
	}
	Writef(Stderr, "%s: %d applied, %d skipped, %d %s\n",
		name, rep.Applied, rep.Skipped, len(rep.Changes), cliutil.Plural(len(rep.Changes), "change"))
	if rep.Written != "" {
		Writef(Stderr, "Output: %s\n", rep.Written)
	}
	return nil
}

// selectEntry returns the named entry, or the only entry when name is empty.
func selectEntry(spec *patchspec.PatchSpec, name string) (string, *patchspec.FileEdit, error) {
	if name == "" {
		if spec.Len() != 1 {
			return "", nil, cliutil.Usagef("spec has %d entries; choose one with --asset (%v)", spec.Len(), spec.Names())
		}
		return spec.Entries[0].Name, spec.Entries[0].Edit, nil
	}
	edit, ok := spec.Get(name)
	if !ok {
		return "", nil, cliutil.Usagef("spec has no entry %q (entries: %v)", name, spec.Names())
	}
	return name, edit, nil
}
