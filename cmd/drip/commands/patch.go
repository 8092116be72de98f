package commands

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/erraggy/drip/driperrors"
	"github.com/erraggy/drip/eventlog"
	"github.com/erraggy/drip/extract"
	"github.com/erraggy/drip/ffdec"
	"github.com/erraggy/drip/internal/cliutil"
	"github.com/erraggy/drip/internal/config"
	"github.com/erraggy/drip/internal/discover"
	"github.com/erraggy/drip/patcher"
)

// PatchFlags contains flags for the patch and plan commands
type PatchFlags struct {
	CommonFlags
	Patch            string
	Archive          string
	Output           string
	AssetDir         string
	FFDec            string
	Java             string
	ExtractCommand   string
	TempDir          string
	KeepGoing        bool
	KeepIntermediate bool
	EscapeMarkup     bool
	Strict           bool
	DryRun           bool
	SkipJavaCheck    bool
	Format           string
}

// SetupPatchFlags creates and configures a FlagSet for the patch command.
func SetupPatchFlags(name string) (*flag.FlagSet, *PatchFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	flags := &PatchFlags{}
	flags.bind(fs)

	fs.StringVar(&flags.Archive, "archive", "", "archive holding the original SWF files (.bsa, .ba2, .zip or a directory)")
	fs.StringVar(&flags.Output, "o", "", "output root the patched files are placed under")
	fs.StringVar(&flags.Output, "output", "", "output root the patched files are placed under")
	fs.StringVar(&flags.AssetDir, "asset-dir", "", "folder inside the archive the spec's names are relative to")
	fs.StringVar(&flags.FFDec, "ffdec", "", "FFDec command line, e.g. \"java -jar ffdec.jar\"")
	fs.StringVar(&flags.Java, "java", "", "java executable checked before running FFDec")
	fs.StringVar(&flags.ExtractCommand, "extract-cmd", "", "command extracting non-zip archives; {archive} and {dest} are replaced")
	fs.StringVar(&flags.TempDir, "temp-dir", "", "parent of the scratch directory (default: system temp)")
	fs.BoolVar(&flags.KeepGoing, "keep-going", false, "skip assets whose tool run fails instead of aborting")
	fs.BoolVar(&flags.KeepIntermediate, "keep-intermediate", false, "also place the edited XML next to each output")
	fs.BoolVar(&flags.EscapeMarkup, "escape-markup", false, "re-escape rewritten text markup with HTML entities")
	fs.BoolVar(&flags.Strict, "strict", false, "reject specs that fail validation")
	fs.BoolVar(&flags.DryRun, "dry-run", name == "plan", "plan only: no archive, no tools, no output")
	fs.BoolVar(&flags.SkipJavaCheck, "skip-java-check", false, "do not check for a Java runtime")
	fs.StringVar(&flags.Format, "format", FormatText, "report format: text, json, or yaml")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: drip %s [flags] [patch-dir]\n\n", name)
		if name == "plan" {
			Writef(fs.Output(), "Show what a patch run would do without extracting or running any tool.\n\n")
		} else {
			Writef(fs.Output(), "Patch the SWF interface files of an archive and place the results under the output root.\n\n")
		}
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nDefaults:\n")
		Writef(fs.Output(), "  When patch-dir, --archive or --output are omitted, drip searches two levels\n")
		Writef(fs.Output(), "  above the working directory for patch.json and the configured archive, and\n")
		Writef(fs.Output(), "  places output in the parent of the working directory.\n")
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  drip %s\n", name)
		Writef(fs.Output(), "  drip %s --archive ../RaceMenu/RaceMenu.bsa -o ../MyPatch ./patch\n", name)
		Writef(fs.Output(), "  drip %s --format json ./patch | jq '.assets[].warnings'\n", name)
		Writef(fs.Output(), "\nExit Codes:\n")
		Writef(fs.Output(), "  0    Success (warnings are not failures)\n")
		Writef(fs.Output(), "  1    Some assets failed with --keep-going\n")
		Writef(fs.Output(), "  2    Invalid arguments\n")
		Writef(fs.Output(), "  3    Invalid patch spec\n")
		Writef(fs.Output(), "  4    Archive or source asset missing\n")
		Writef(fs.Output(), "  5    External tool failed\n")
		Writef(fs.Output(), "  6    Invalid configuration\n")
	}

	return fs, flags
}

// HandlePatch executes the patch command
func HandlePatch(ctx context.Context, args []string) error {
	return handlePatch(ctx, "patch", args)
}

// HandlePlan executes the plan command: patch with --dry-run forced on.
func HandlePlan(ctx context.Context, args []string) error {
	return handlePatch(ctx, "plan", args)
}

func handlePatch(ctx context.Context, name string, args []string) error {
	fs, flags := SetupPatchFlags(name)
	if stop, err := parseFlags(fs, args); stop {
		return err
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return cliutil.Usagef("%s accepts at most one patch directory", name)
	}
	flags.Patch = fs.Arg(0)
	if name == "plan" {
		flags.DryRun = true
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	cfg, log, err := flags.load()
	if err != nil {
		return err
	}
	applyPatchFlags(cfg, fs, flags)

	opts, err := resolvePatchOptions(ctx, cfg, flags, log)
	if err != nil {
		return err
	}
	if !opts.DryRun {
		if !flags.SkipJavaCheck {
			if err := ffdec.CheckJava(ctx, cfg.JavaCommand); err != nil {
				return err
			}
		}
		tool, err := ffdec.NewCLI(cfg.FFDecCommand, ffdec.WithLogger(log))
		if err != nil {
			return err
		}
		opts.Tool = tool
		opts.Extractor = &extract.Auto{Command: cfg.ExtractCommand, Logger: log}
	}

	job := patcher.New(opts).Start(ctx)
	select {
	case <-job.Done():
	case <-ctx.Done():
		if pid := job.PID(); pid != 0 {
			log.Warn("interrupted, stopping external tool", "pid", pid)
		}
	}
	rep, runErr := job.Wait()
	if rep != nil {
		if err := printReport(rep, flags.Format); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}
	if err := rep.Err(); err != nil {
		return err
	}
	return nil
}

// applyPatchFlags overrides configuration with the flags given on the command line.
func applyPatchFlags(cfg *config.Config, fs *flag.FlagSet, f *PatchFlags) {
	set := setFlags(fs)
	str := func(dst *string, v string, names ...string) {
		for _, n := range names {
			if set[n] {
				*dst = v
				return
			}
		}
	}
	str(&cfg.OutputRoot, f.Output, "o", "output")
	str(&cfg.AssetDir, f.AssetDir, "asset-dir")
	str(&cfg.FFDecCommand, f.FFDec, "ffdec")
	str(&cfg.JavaCommand, f.Java, "java")
	str(&cfg.ExtractCommand, f.ExtractCommand, "extract-cmd")
	if set["keep-going"] {
		cfg.KeepGoing = f.KeepGoing
	}
	if set["keep-intermediate"] {
		cfg.KeepIntermediate = f.KeepIntermediate
	}
	if set["escape-markup"] {
		cfg.EscapeMarkup = f.EscapeMarkup
	}
}

// resolvePatchOptions fills paths the user left out from discovery.
func resolvePatchOptions(ctx context.Context, cfg *config.Config, f *PatchFlags, log eventlog.Logger) (patcher.Options, error) {
	opts := patcher.Options{
		PatchPath:        f.Patch,
		ArchivePath:      f.Archive,
		OutputRoot:       cfg.OutputRoot,
		AssetDir:         cfg.AssetDir,
		TempDir:          f.TempDir,
		Logger:           log,
		Strict:           f.Strict,
		DryRun:           f.DryRun,
		KeepGoing:        cfg.KeepGoing,
		KeepIntermediate: cfg.KeepIntermediate,
		EscapeMarkup:     cfg.EscapeMarkup,
		CleanupGrace:     cfg.CleanupGrace,
	}
	if cfg.CleanupGrace == 0 {
		opts.CleanupGrace = -1
	}

	if opts.PatchPath != "" && opts.ArchivePath != "" && opts.OutputRoot != "" {
		return opts, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return opts, err
	}
	found, err := discover.Resolve(ctx, wd, cfg.ArchiveName)
	if err != nil {
		return opts, err
	}
	log.Debug("discovery", "search_root", discover.SearchRoot(wd),
		"archive_dir", found.ArchiveDir, "patch_dir", found.PatchDir)

	if opts.PatchPath == "" {
		if found.PatchDir == "" {
			return opts, cliutil.Usagef("no patch directory given and no %s found below %s", "patch.json", discover.SearchRoot(wd))
		}
		opts.PatchPath = found.PatchDir
		log.Info("using discovered patch", "dir", found.PatchDir)
	}
	if opts.ArchivePath == "" && found.ArchiveDir != "" {
		opts.ArchivePath = filepath.Join(found.ArchiveDir, cfg.ArchiveName)
		log.Info("using discovered archive", "path", opts.ArchivePath)
	}
	if opts.ArchivePath == "" && !opts.DryRun {
		return opts, &driperrors.ConfigError{
			Option:  "archive",
			Value:   cfg.ArchiveName,
			Message: "no archive given and none found below " + discover.SearchRoot(wd),
		}
	}
	if opts.OutputRoot == "" {
		opts.OutputRoot = found.OutputRoot
	}
	return opts, nil
}

func printReport(rep *patcher.Report, format string) error {
	if format != FormatText {
		return OutputStructured(rep, format)
	}

	title := "Patch Report"
	if rep.DryRun {
		title = "Patch Plan"
	}
	Writef(Stderr, "%s\n", title)
	Writef(Stderr, "Spec: %s\n", rep.Spec)
	if rep.Archive != "" {
		Writef(Stderr, "Archive: %s\n", rep.Archive)
	}
	if rep.Output != "" {
		Writef(Stderr, "Output: %s\n", rep.Output)
	}
	Writef(Stderr, "\n")

	for _, a := range rep.Assets {
		Writef(Stderr, "%s\n", a.Name)
		Writef(Stderr, "  shape jobs: %d\n", len(a.Jobs))
		for _, j := range a.Jobs {
			Writef(Stderr, "    shape %d <- %s\n", j.TargetIndex, j.ReplacementAsset)
		}
		Writef(Stderr, "  tree edit: %t\n", a.TreeEdit)
		if a.OutputPath != "" {
			suffix := ""
			if a.Overwritten {
				suffix = " (overwritten)"
			}
			Writef(Stderr, "  output: %s%s\n", a.OutputPath, suffix)
		}
		if len(a.Changes) > 0 {
			Writef(Stderr, "  changes: %d\n", len(a.Changes))
		}
		for _, w := range a.Warnings {
			Writef(Stderr, "  warning: %s\n", w.String())
		}
		if a.Error != "" {
			Writef(Stderr, "  FAILED: %s\n", a.Error)
		}
	}

	failed := len(rep.Failed())
	warnings := rep.WarningCount()
	Writef(Stderr, "\n%d %s, %d %s, %d failed in %v\n",
		len(rep.Assets), cliutil.Plural(len(rep.Assets), "asset"),
		warnings, cliutil.Plural(warnings, "warning"),
		failed, rep.Duration.Round(time.Millisecond))
	return nil
}
