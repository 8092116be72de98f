// Package discover finds default locations when the user does not name them.
//
// drip is usually unpacked into a folder of the mod it patches, e.g.
// <mods>/MyPatch/drip/. The archive and the patch are then searched for
// below the grandparent of the working directory (<mods>), and patched
// assets go to the parent (<mods>/MyPatch), which the mod manager picks up.
package discover

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/erraggy/drip/patchspec"
)

// DefaultMaxDepth bounds how deep Find descends.
const DefaultMaxDepth = 6

// ErrNotFound is returned when no matching file exists.
var ErrNotFound = errors.New("not found")

// errFound stops the walk early.
var errFound = errors.New("found")

// Find walks root in lexical order and returns the directory holding the
// first file named name (compared case-insensitively). Hidden directories
// are skipped and symlinks are not followed.
func Find(ctx context.Context, root, name string, maxDepth int) (string, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	root = filepath.Clean(root)
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable subtrees are skipped
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || depth(root, path) > maxDepth) {
				return fs.SkipDir
			}
			return nil
		}
		if strings.EqualFold(d.Name(), name) {
			found = filepath.Dir(path)
			return errFound
		}
		return nil
	})
	switch {
	case errors.Is(err, errFound):
		return found, nil
	case err != nil:
		return "", err
	}
	return "", ErrNotFound
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// Defaults are the locations derived from a working directory.
type Defaults struct {
	// ArchiveDir holds the archive, empty when none was found.
	ArchiveDir string
	// PatchDir holds patch.json, empty when none was found.
	PatchDir string
	// OutputRoot is the parent of the working directory.
	OutputRoot string
}

// SearchRoot returns the directory searched for the archive and patch.
func SearchRoot(wd string) string {
	return filepath.Dir(filepath.Dir(filepath.Clean(wd)))
}

// OutputRoot returns the default output root for wd.
func OutputRoot(wd string) string {
	return filepath.Dir(filepath.Clean(wd))
}

// Resolve computes Defaults for wd, searching for archiveName and the
// patch file. Missing files leave their field empty.
func Resolve(ctx context.Context, wd, archiveName string) (Defaults, error) {
	abs, err := filepath.Abs(wd)
	if err != nil {
		return Defaults{}, err
	}
	d := Defaults{OutputRoot: OutputRoot(abs)}
	root := SearchRoot(abs)

	d.ArchiveDir, err = Find(ctx, root, archiveName, DefaultMaxDepth)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return d, err
	}
	d.PatchDir, err = Find(ctx, root, patchspec.FileName, DefaultMaxDepth)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return d, err
	}
	return d, nil
}

// IsDir reports whether path is an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
