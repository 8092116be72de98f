package placer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/erraggy/drip/eventlog"
	"github.com/erraggy/drip/internal/fileutil"
)

// ErrEscapesRoot is returned when a relative path would land outside the
// output root.
var ErrEscapesRoot = errors.New("path escapes output root")

// Result describes a placed asset.
type Result struct {
	// Path is the absolute final location.
	Path string
	// Overwritten reports that a previous file at Path was replaced.
	Overwritten bool
	// Bytes is the size of the written file.
	Bytes int64
}

// Placer copies recompiled assets under an output root.
type Placer struct {
	root   string
	logger eventlog.Logger
	perm   os.FileMode
}

// Option configures a Placer.
type Option func(*Placer)

// WithLogger sets the event sink for overwrite warnings.
func WithLogger(l eventlog.Logger) Option {
	return func(p *Placer) { p.logger = eventlog.OrNop(l) }
}

// WithPerm sets the file mode of placed files (default 0644).
func WithPerm(perm os.FileMode) Option {
	return func(p *Placer) { p.perm = perm }
}

// New creates a Placer rooted at outputRoot.
func New(outputRoot string, opts ...Option) *Placer {
	p := &Placer{root: outputRoot, logger: eventlog.NopLogger{}, perm: fileutil.ReadableByAll}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Root returns the output root.
func (p *Placer) Root() string { return p.root }

// Target returns where relPath would be placed, without touching the disk.
func (p *Placer) Target(relPath string) (string, error) {
	if p.root == "" {
		return "", errors.New("placer: output root is empty")
	}
	rel := filepath.FromSlash(relPath)
	if rel == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("placer: %w: %q", ErrEscapesRoot, relPath)
	}
	root, err := filepath.Abs(p.root)
	if err != nil {
		return "", fmt.Errorf("placer: %w", err)
	}
	return filepath.Join(root, rel), nil
}

// Place copies recompiled to <root>/relPath. Parent directories are
// created. An existing file is replaced atomically and reported with a
// warning; a symlink at the target is refused.
func (p *Placer) Place(recompiled, relPath string) (*Result, error) {
	final, err := p.Target(relPath)
	if err != nil {
		return nil, err
	}
	if err := fileutil.RejectSymlink(final); err != nil {
		return nil, fmt.Errorf("placer: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(final), fileutil.DirMode); err != nil {
		return nil, fmt.Errorf("placer: creating output directory: %w", err)
	}

	res := &Result{Path: final}
	if info, err := os.Stat(final); err == nil {
		if info.IsDir() {
			return nil, fmt.Errorf("placer: output path is a directory: %s", final)
		}
		res.Overwritten = true
		p.logger.Warn("overwriting existing output", "path", final)
	}

	n, err := fileutil.CopyAtomic(recompiled, final, p.perm)
	if err != nil {
		return nil, fmt.Errorf("placer: %w", err)
	}
	res.Bytes = n
	p.logger.Info("asset placed", "path", final, "bytes", n)
	return res, nil
}
