package patcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/erraggy/drip/driperrors"
	"github.com/erraggy/drip/eventlog"
	"github.com/erraggy/drip/extract"
	"github.com/erraggy/drip/ffdec"
	"github.com/erraggy/drip/patchspec"
	"github.com/erraggy/drip/placer"
	"github.com/erraggy/drip/shapejob"
	"github.com/erraggy/drip/swfxml"
	"github.com/erraggy/drip/transform"
)

// Patcher runs the extract → replace → transform → recompile → place
// pipeline for every asset of a patch spec, one asset at a time.
type Patcher struct {
	opts   Options
	logger eventlog.Logger
}

// New creates a Patcher.
func New(opts Options) *Patcher {
	o := opts.withDefaults()
	return &Patcher{opts: o, logger: o.Logger}
}

// Run executes the pipeline. Fatal errors (invalid spec, missing archive,
// tool failure without KeepGoing, cancellation) abort the run; the partial
// report is returned alongside. Unresolved selectors and missing
// replacement files are warnings in the report.
func (p *Patcher) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	rep := &Report{DryRun: p.opts.DryRun, Archive: p.opts.ArchivePath, Output: p.opts.OutputRoot}
	defer func() { rep.Duration = time.Since(start) }()

	spec, err := p.loadSpec()
	if err != nil {
		return rep, err
	}
	rep.Spec = spec.Path

	if p.opts.DryRun {
		p.plan(spec, rep)
		return rep, nil
	}

	if err := p.checkRun(); err != nil {
		return rep, err
	}
	if _, err := os.Stat(p.opts.ArchivePath); err != nil {
		return rep, &driperrors.SourceAssetMissingError{Path: p.opts.ArchivePath, Cause: err}
	}

	tmp, err := os.MkdirTemp(p.opts.TempDir, TempPrefix)
	if err != nil {
		return rep, fmt.Errorf("patcher: creating scratch directory: %w", err)
	}
	defer p.cleanup(ctx, tmp)

	p.logger.Info("extracting archive", "archive", p.opts.ArchivePath, "scratch", tmp)
	root, err := p.opts.Extractor.Extract(ctx, p.opts.ArchivePath, tmp)
	if err != nil {
		return rep, err
	}

	out := placer.New(p.opts.OutputRoot, placer.WithLogger(p.logger))
	tr := transform.New(transform.WithLogger(p.logger), transform.WithEscapeMarkup(p.opts.EscapeMarkup))

	for i, entry := range spec.Entries {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		log := p.logger.With("asset", entry.Name)
		log.Info("patching asset", "n", i+1, "of", len(spec.Entries))

		res := p.newResult(entry)
		rep.Assets = append(rep.Assets, res)
		err := p.patchAsset(ctx, log, spec, entry, root, out, tr, res)
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return rep, ctx.Err()
		}
		err = withAsset(err, entry.Name)
		if p.opts.KeepGoing && perAsset(err) {
			log.Error("asset skipped", "error", err)
			res.err = err
			res.Error = err.Error()
			continue
		}
		return rep, err
	}
	p.logger.Info("patch complete", "assets", len(rep.Assets), "warnings", rep.WarningCount())
	return rep, nil
}

func (p *Patcher) checkRun() error {
	switch {
	case p.opts.Tool == nil:
		return &driperrors.ConfigError{Option: "ffdec_command", Message: "no decompiler configured"}
	case p.opts.OutputRoot == "":
		return &driperrors.ConfigError{Option: "output_root", Message: "output root is empty"}
	case p.opts.ArchivePath == "":
		return &driperrors.ConfigError{Option: "archive", Message: "archive path is empty"}
	}
	return nil
}

func (p *Patcher) loadSpec() (*patchspec.PatchSpec, error) {
	spec, err := patchspec.Load(p.opts.PatchPath)
	if err != nil {
		return nil, err
	}
	p.logger.Info("patch loaded", "spec", spec.Path, "assets", spec.Len())
	if !p.opts.Strict {
		return spec, nil
	}
	if verrs := patchspec.Validate(spec); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, v := range verrs {
			errs[i] = v
		}
		return nil, &driperrors.InvalidPatchError{
			Path:    spec.Path,
			Key:     verrs[0].Entry,
			Line:    verrs[0].Pos.Line,
			Message: fmt.Sprintf("%d validation error(s)", len(verrs)),
			Cause:   errors.Join(errs...),
		}
	}
	return spec, nil
}

func (p *Patcher) newResult(entry *patchspec.Entry) *AssetResult {
	res := &AssetResult{Name: entry.Name}
	for _, pr := range entry.Edit.Problems {
		res.Warnings = append(res.Warnings, Warning{
			Asset: entry.Name, Stage: StageSpec, Message: pr.String(), Line: pr.Pos.Line,
		})
		p.logger.Warn("spec problem", "asset", entry.Name, "field", pr.Field, "problem", pr.Message)
	}
	return res
}

// plan fills the report without extracting or running tools.
func (p *Patcher) plan(spec *patchspec.PatchSpec, rep *Report) {
	for _, entry := range spec.Entries {
		res := p.newResult(entry)
		sj := shapejob.Build(entry.Edit, spec.Root, shapejob.WithLogger(p.logger))
		res.Jobs = sj.Jobs
		res.addShapeWarnings(sj.Warnings)
		res.TreeEdit = transform.RequiresTree(entry.Edit)
		res.Source = filepath.ToSlash(filepath.Join(p.opts.AssetDir, filepath.FromSlash(entry.Name)))
		if p.opts.OutputRoot != "" {
			if target, err := placer.New(p.opts.OutputRoot).Target(res.Source); err == nil {
				res.OutputPath = target
			}
		}
		rep.Assets = append(rep.Assets, res)
	}
}

func (p *Patcher) patchAsset(
	ctx context.Context,
	log eventlog.Logger,
	spec *patchspec.PatchSpec,
	entry *patchspec.Entry,
	root string,
	out *placer.Placer,
	tr *transform.Transformer,
	res *AssetResult,
) error {
	asset := filepath.Join(root, p.opts.AssetDir, filepath.FromSlash(entry.Name))
	rel, err := filepath.Rel(root, asset)
	if err != nil || !filepath.IsLocal(rel) {
		return &driperrors.InvalidPatchError{Path: spec.Path, Key: entry.Name, Message: "asset name escapes the archive"}
	}
	res.Source = filepath.ToSlash(rel)
	found, err := extract.Locate(root, rel)
	if err != nil {
		return &driperrors.SourceAssetMissingError{Path: asset, Asset: entry.Name, Cause: errors.Unwrap(err)}
	}
	if info, err := os.Stat(found); err != nil || info.IsDir() {
		if err == nil {
			err = fmt.Errorf("%s is a directory", found)
		}
		return &driperrors.SourceAssetMissingError{Path: found, Asset: entry.Name, Cause: err}
	}
	if found != asset {
		log.Debug("asset matched case-insensitively", "path", found)
		asset = found
		if rel, err = filepath.Rel(root, asset); err != nil {
			return err
		}
		res.Source = filepath.ToSlash(rel)
	}

	sj := shapejob.Build(entry.Edit, spec.Root, shapejob.WithLogger(log))
	res.Jobs = sj.Jobs
	res.addShapeWarnings(sj.Warnings)
	if sj.HasJobs() {
		if err := p.opts.Tool.ReplaceShapes(ctx, asset, sj.Jobs); err != nil {
			return err
		}
	}

	final := asset
	res.TreeEdit = transform.RequiresTree(entry.Edit)
	if res.TreeEdit {
		final, err = p.editTree(ctx, log, entry, asset, rel, out, tr, res)
		if err != nil {
			return err
		}
	} else {
		log.Debug("no tree edits, skipping conversion")
	}

	placed, err := out.Place(final, rel)
	if err != nil {
		return err
	}
	res.OutputPath = placed.Path
	res.Overwritten = placed.Overwritten
	if placed.Overwritten {
		res.Warnings = append(res.Warnings, Warning{
			Asset: entry.Name, Stage: StagePlace, Message: "existing file overwritten: " + placed.Path,
		})
	}
	return nil
}

func (p *Patcher) editTree(
	ctx context.Context,
	log eventlog.Logger,
	entry *patchspec.Entry,
	asset, rel string,
	out *placer.Placer,
	tr *transform.Transformer,
	res *AssetResult,
) (string, error) {
	tree, err := p.opts.Tool.ToIntermediate(ctx, asset)
	if err != nil {
		return "", err
	}
	doc, err := swfxml.ReadFile(tree)
	if err != nil {
		return "", &driperrors.ExternalToolError{
			Tool: ffdec.ToolName, Operation: ffdec.OpSWF2XML, ExitCode: -1, Message: "unreadable tree", Cause: err,
		}
	}

	tres, err := tr.Apply(doc, entry.Edit)
	if err != nil {
		return "", fmt.Errorf("patcher: %w", err)
	}
	res.Changes = tres.Changes
	res.addTransformWarnings(tres.Warnings)
	log.Info("tree patched", "changes", len(tres.Changes), "warnings", len(tres.Warnings))

	if err := doc.WriteFile(tree); err != nil {
		return "", fmt.Errorf("patcher: writing tree: %w", err)
	}
	if p.opts.KeepIntermediate {
		placed, err := out.Place(tree, strings.TrimSuffix(rel, filepath.Ext(rel))+".xml")
		if err != nil {
			return "", err
		}
		res.TreePath = placed.Path
	}
	return p.opts.Tool.FromIntermediate(ctx, tree)
}

// cleanup removes the scratch directory, after the grace delay when the run
// was cancelled.
func (p *Patcher) cleanup(ctx context.Context, dir string) {
	if ctx.Err() != nil && p.opts.CleanupGrace > 0 {
		time.Sleep(p.opts.CleanupGrace)
	}
	if err := os.RemoveAll(dir); err != nil {
		p.logger.Warn("could not remove scratch directory", "dir", dir, "error", err)
		return
	}
	p.logger.Debug("scratch directory removed", "dir", dir)
}

// withAsset stamps the spec key onto typed errors that lack one.
func withAsset(err error, name string) error {
	var te *driperrors.ExternalToolError
	if errors.As(err, &te) && te.Asset == "" {
		te.Asset = name
	}
	var se *driperrors.SourceAssetMissingError
	if errors.As(err, &se) && se.Asset == "" {
		se.Asset = name
	}
	return err
}

// perAsset reports whether err only concerns the asset being processed.
func perAsset(err error) bool {
	return errors.Is(err, driperrors.ErrExternalTool) || errors.Is(err, driperrors.ErrSourceAssetMissing)
}
