package patcher

import (
	"time"

	"github.com/erraggy/drip/eventlog"
	"github.com/erraggy/drip/extract"
	"github.com/erraggy/drip/ffdec"
)

// DefaultAssetDir is where target assets live inside the extracted archive.
const DefaultAssetDir = "interface"

// DefaultCleanupGrace is how long a cancelled run waits before removing its
// scratch directory, so the killed tool's file handles are released.
const DefaultCleanupGrace = time.Second

// TempPrefix names the per-run scratch directory.
const TempPrefix = "DRIP_"

// Options configures a Patcher.
type Options struct {
	// PatchPath is the patch directory (holding patch.json) or the spec file.
	PatchPath string
	// ArchivePath is the source archive (.bsa, .zip) or a directory of loose files.
	ArchivePath string
	// AssetDir is the directory inside the extracted archive that spec keys
	// are relative to. Defaults to DefaultAssetDir.
	AssetDir string
	// OutputRoot receives the patched assets, mirroring the archive layout.
	OutputRoot string
	// TempDir is the parent of the scratch directory; os.TempDir when empty.
	TempDir string

	Tool      ffdec.Tool
	Extractor extract.Extractor
	Logger    eventlog.Logger

	// Strict runs patchspec.Validate before any work and fails on findings.
	Strict bool
	// DryRun plans the run (shape jobs, tree decisions) without running tools.
	DryRun bool
	// KeepGoing records an asset's tool failure and moves on to the next
	// asset instead of aborting the run.
	KeepGoing bool
	// KeepIntermediate places the patched XML tree next to each output asset.
	KeepIntermediate bool
	// EscapeMarkup re-escapes rewritten text markup.
	EscapeMarkup bool
	// CleanupGrace overrides DefaultCleanupGrace; negative disables the wait.
	CleanupGrace time.Duration
}

func (o Options) withDefaults() Options {
	if o.AssetDir == "" {
		o.AssetDir = DefaultAssetDir
	}
	if o.CleanupGrace == 0 {
		o.CleanupGrace = DefaultCleanupGrace
	}
	if o.Extractor == nil {
		o.Extractor = &extract.Auto{Logger: o.Logger}
	}
	o.Logger = eventlog.OrNop(o.Logger)
	return o
}
