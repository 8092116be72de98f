package shapejob

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/drip/driperrors"
	"github.com/erraggy/drip/eventlog"
	"github.com/erraggy/drip/patchspec"
)

type fakeInfo struct{ dir bool }

func (f fakeInfo) Name() string       { return "f" }
func (f fakeInfo) Size() int64        { return 0 }
func (f fakeInfo) Mode() fs.FileMode  { return 0o600 }
func (f fakeInfo) ModTime() time.Time { return time.Time{} }
func (f fakeInfo) IsDir() bool        { return f.dir }
func (f fakeInfo) Sys() any           { return nil }

// statOnly reports the given paths as regular files and everything else as missing.
func statOnly(root string, names ...string) StatFunc {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[filepath.Join(root, n)] = true
	}
	return func(name string) (fs.FileInfo, error) {
		if present[name] {
			return fakeInfo{}, nil
		}
		return nil, fs.ErrNotExist
	}
}

func shapes(s ...patchspec.ShapeEdit) *patchspec.FileEdit {
	return &patchspec.FileEdit{Shapes: s}
}

func TestBuildMerges(t *testing.T) {
	root := filepath.FromSlash("/patch")
	edit := shapes(
		patchspec.ShapeEdit{FilePath: "a.svg", Index: []int{1, 2}},
		patchspec.ShapeEdit{FilePath: "b.svg", Index: []int{3}},
		patchspec.ShapeEdit{FilePath: "./a.svg", Index: []int{4, 1}},
	)

	res := Build(edit, root, WithStat(statOnly(root, "a.svg", "b.svg")))

	a, b := filepath.Join(root, "a.svg"), filepath.Join(root, "b.svg")
	assert.Equal(t, []Group{
		{ReplacementAsset: a, Indices: []int{1, 2, 4}},
		{ReplacementAsset: b, Indices: []int{3}},
	}, res.Groups)
	assert.Equal(t, []Job{{a, 1}, {a, 2}, {a, 4}, {b, 3}}, res.Jobs)
	assert.Empty(t, res.Warnings)
	assert.True(t, res.HasJobs())
}

func TestBuildNoMergeKeepsOrder(t *testing.T) {
	root := filepath.FromSlash("/patch")
	edit := shapes(
		patchspec.ShapeEdit{FilePath: "c.svg", Index: []int{9}},
		patchspec.ShapeEdit{FilePath: "a.svg", Index: []int{5}},
	)
	res := Build(edit, root, WithStat(statOnly(root, "a.svg", "c.svg")))
	require.Len(t, res.Jobs, 2)
	assert.Equal(t, 9, res.Jobs[0].TargetIndex)
	assert.Equal(t, 5, res.Jobs[1].TargetIndex)
}

func TestBuildIdempotent(t *testing.T) {
	root := filepath.FromSlash("/patch")
	edit := shapes(
		patchspec.ShapeEdit{FilePath: "a.svg", Index: []int{1}},
		patchspec.ShapeEdit{FilePath: "a.svg", Index: []int{2}},
	)
	stat := WithStat(statOnly(root, "a.svg"))
	first := Build(edit, root, stat)
	second := Build(edit, root, stat)
	assert.Equal(t, first, second)
	assert.Len(t, edit.Shapes[0].Index, 1, "input must not be mutated")
}

func TestBuildMissingAsset(t *testing.T) {
	root := filepath.FromSlash("/patch")
	rec := eventlog.NewRecorder(nil)
	edit := shapes(
		patchspec.ShapeEdit{FilePath: "missing.svg", Index: []int{1}, Pos: patchspec.Pos{Line: 3, Column: 9}},
		patchspec.ShapeEdit{FilePath: "a.svg", Index: []int{2}},
	)

	res := Build(edit, root, WithStat(statOnly(root, "a.svg")), WithLogger(rec))

	require.Len(t, res.Groups, 1)
	assert.Equal(t, []Job{{filepath.Join(root, "a.svg"), 2}}, res.Jobs)
	require.Len(t, res.Warnings, 1)
	w := res.Warnings[0]
	assert.Equal(t, WarnMissingAsset, w.Category)
	assert.Equal(t, 0, w.EditIndex)
	assert.Equal(t, 3, w.Pos.Line)
	assert.ErrorIs(t, w, driperrors.ErrMissingReplacementAsset)
	assert.Contains(t, res.Warnings.Strings()[0], `shapes[0] "missing.svg"`)
	assert.Equal(t, 1, rec.Count(eventlog.LevelWarn))
}

func TestBuildInvalidDirectives(t *testing.T) {
	edit := shapes(
		patchspec.ShapeEdit{Index: []int{1}},
		patchspec.ShapeEdit{FilePath: "a.svg"},
	)
	res := Build(edit, "", WithStat(func(string) (fs.FileInfo, error) { return fakeInfo{}, nil }))
	assert.Empty(t, res.Jobs)
	require.Len(t, res.Warnings, 2)
	for _, w := range res.Warnings {
		assert.Equal(t, WarnInvalidEdit, w.Category)
	}
}

func TestBuildDirectoryAndStatErrors(t *testing.T) {
	edit := shapes(
		patchspec.ShapeEdit{FilePath: "dir", Index: []int{1}},
		patchspec.ShapeEdit{FilePath: "locked.svg", Index: []int{2}},
	)
	stat := func(name string) (fs.FileInfo, error) {
		if filepath.Base(name) == "dir" {
			return fakeInfo{dir: true}, nil
		}
		return nil, errors.New("permission denied")
	}
	res := Build(edit, "root", WithStat(stat))
	assert.Empty(t, res.Jobs)
	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0].String(), "is a directory")
	assert.Contains(t, res.Warnings[1].String(), "permission denied")
}

func TestBuildOnDisk(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "shapes"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "shapes", "x.svg"), []byte("<svg/>"), 0o600))

	res := Build(shapes(patchspec.ShapeEdit{FilePath: `shapes\x.svg`, Index: []int{7}}), root)
	require.Len(t, res.Jobs, 1)
	assert.Equal(t, filepath.Join(root, "shapes", "x.svg"), res.Jobs[0].ReplacementAsset)
}

func TestBuildNil(t *testing.T) {
	res := Build(nil, "")
	assert.False(t, res.HasJobs())
	assert.Empty(t, res.Warnings)
}

func TestResolve(t *testing.T) {
	root := filepath.FromSlash("/p")
	assert.Equal(t, filepath.FromSlash("/p/a/b.svg"), Resolve(root, "a/b.svg"))
	assert.Equal(t, filepath.FromSlash("/p/a/b.svg"), Resolve(root, `a\b.svg`))
	assert.Equal(t, filepath.FromSlash("/abs/x.svg"), Resolve(root, "/abs/x.svg"))
	assert.Equal(t, "x.svg", Resolve("", "./x.svg"))
}
