// Package shapejob turns the shape directives of one asset into the queue of
// replace commands sent to the decompiler.
//
// Directives naming the same replacement file (after resolving it against
// the patch root) are merged into one group, so each file is opened once.
// Groups keep the order in which their files first appear, and indices keep
// the order in which they first appear for that file:
//
//	shapes: [{a.svg, [1, 2]}, {b.svg, [3]}, {a.svg, [4, 1]}]
//	groups: a.svg → [1, 2, 4], b.svg → [3]
//	jobs:   (a.svg,1) (a.svg,2) (a.svg,4) (b.svg,3)
//
// A replacement file that does not exist produces a warning and its group is
// dropped; building never fails.
package shapejob

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/erraggy/drip/driperrors"
	"github.com/erraggy/drip/eventlog"
	"github.com/erraggy/drip/patchspec"
)

// Job is one shape replacement: the shape with character id TargetIndex is
// replaced by the vector file ReplacementAsset.
type Job struct {
	ReplacementAsset string
	TargetIndex      int
}

// Group is every index a single replacement file is applied to.
type Group struct {
	ReplacementAsset string
	Indices          []int
}

// Result is the outcome of Build.
type Result struct {
	Groups   []Group
	Jobs     []Job
	Warnings Warnings
}

// HasJobs reports whether there is anything to replace.
func (r *Result) HasJobs() bool { return len(r.Jobs) > 0 }

// WarningCategory identifies the type of shape job warning.
type WarningCategory string

const (
	// WarnMissingAsset indicates the replacement file does not exist.
	WarnMissingAsset WarningCategory = "missing_asset"
	// WarnInvalidEdit indicates a shape directive without a file or indices.
	WarnInvalidEdit WarningCategory = "invalid_edit"
)

// Warning is a non-fatal problem found while building the queue.
type Warning struct {
	Category WarningCategory
	// EditIndex is the zero-based position of the directive in the shapes list.
	EditIndex int
	FilePath  string
	Message   string
	Cause     error
	Pos       patchspec.Pos
}

// String returns a formatted warning message.
func (w *Warning) String() string {
	msg := w.Message
	if w.Cause != nil {
		msg = w.Cause.Error()
	}
	return fmt.Sprintf("shapes[%d] %q: %s", w.EditIndex, w.FilePath, msg)
}

// Error implements error so warnings can be matched with errors.Is.
func (w *Warning) Error() string { return w.String() }

// Unwrap returns the underlying cause.
func (w *Warning) Unwrap() error { return w.Cause }

// Warnings is a collection of Warning.
type Warnings []*Warning

// Strings returns the formatted messages.
func (ws Warnings) Strings() []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.String()
	}
	return out
}

// StatFunc reports file information, like os.Stat.
type StatFunc func(name string) (fs.FileInfo, error)

// Option configures Build.
type Option func(*buildConfig)

type buildConfig struct {
	stat   StatFunc
	logger eventlog.Logger
}

// WithStat replaces the existence check (os.Stat by default).
func WithStat(stat StatFunc) Option {
	return func(c *buildConfig) {
		if stat != nil {
			c.stat = stat
		}
	}
}

// WithLogger sets the event sink for warnings.
func WithLogger(l eventlog.Logger) Option {
	return func(c *buildConfig) { c.logger = eventlog.OrNop(l) }
}

// Resolve returns the absolute-or-rooted path of a replacement file.
// Backslashes are treated as separators so Windows-authored specs work
// everywhere.
func Resolve(patchRoot, filePath string) string {
	p := filepath.FromSlash(strings.ReplaceAll(filePath, `\`, "/"))
	if filepath.IsAbs(p) || patchRoot == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(patchRoot, p)
}

// Build computes the shape job queue for one asset. It is pure apart from
// the existence check, so building twice yields identical results.
func Build(edit *patchspec.FileEdit, patchRoot string, opts ...Option) *Result {
	cfg := &buildConfig{stat: os.Stat, logger: eventlog.NopLogger{}}
	for _, opt := range opts {
		opt(cfg)
	}

	res := &Result{}
	if edit == nil {
		return res
	}

	type group struct {
		Group
		firstEdit int
		filePath  string
		pos       patchspec.Pos
		seen      map[int]struct{}
	}
	var order []*group
	byPath := make(map[string]*group)

	for i, sh := range edit.Shapes {
		if sh.FilePath == "" || len(sh.Index) == 0 {
			res.warn(cfg.logger, &Warning{
				Category:  WarnInvalidEdit,
				EditIndex: i,
				FilePath:  sh.FilePath,
				Message:   "shape directive needs filePath and at least one index",
				Pos:       sh.Pos,
			})
			continue
		}
		resolved := Resolve(patchRoot, sh.FilePath)
		g, ok := byPath[resolved]
		if !ok {
			g = &group{
				Group:     Group{ReplacementAsset: resolved},
				firstEdit: i,
				filePath:  sh.FilePath,
				pos:       sh.Pos,
				seen:      make(map[int]struct{}),
			}
			byPath[resolved] = g
			order = append(order, g)
		}
		for _, idx := range sh.Index {
			if _, dup := g.seen[idx]; dup {
				continue
			}
			g.seen[idx] = struct{}{}
			g.Indices = append(g.Indices, idx)
		}
	}

	for _, g := range order {
		if err := checkFile(cfg.stat, g.ReplacementAsset); err != nil {
			res.warn(cfg.logger, &Warning{
				Category:  WarnMissingAsset,
				EditIndex: g.firstEdit,
				FilePath:  g.filePath,
				Cause:     err,
				Pos:       g.pos,
			})
			continue
		}
		res.Groups = append(res.Groups, g.Group)
		for _, idx := range g.Indices {
			res.Jobs = append(res.Jobs, Job{ReplacementAsset: g.ReplacementAsset, TargetIndex: idx})
		}
	}
	return res
}

func checkFile(stat StatFunc, path string) error {
	info, err := stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s does not exist", driperrors.ErrMissingReplacementAsset, path)
	case err != nil:
		return fmt.Errorf("%w: %v", driperrors.ErrMissingReplacementAsset, err)
	case info.IsDir():
		return fmt.Errorf("%w: %s is a directory", driperrors.ErrMissingReplacementAsset, path)
	}
	return nil
}

func (r *Result) warn(l eventlog.Logger, w *Warning) {
	r.Warnings = append(r.Warnings, w)
	l.Warn("shape job dropped", "category", string(w.Category), "shape", w.EditIndex, "filePath", w.FilePath, "reason", w.String())
}
