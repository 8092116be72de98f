// Package fileutil holds the file-writing primitives shared by the tree
// encoder and the output placer.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// OwnerReadWrite is the file permission mode for intermediate files
// (trees, scratch copies) that only the current user needs.
const OwnerReadWrite os.FileMode = 0o600

// ReadableByAll is the file permission mode for patched assets placed into
// a game data directory, where the game and mod managers must read them.
const ReadableByAll os.FileMode = 0o644

// DirMode is the permission mode for directories created on output.
const DirMode os.FileMode = 0o755

// ErrSymlink is returned when an output path is a symbolic link.
var ErrSymlink = errors.New("refusing to write to symlink")

// RejectSymlink returns ErrSymlink when path exists and is a symlink.
// A missing path is fine.
func RejectSymlink(path string) error {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("fileutil: checking output path: %w", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("fileutil: %w: %s", ErrSymlink, path)
	}
	return nil
}

// WriteAtomic writes path through a temporary file in the same directory
// and renames it into place, so readers never see a partial file. The temp
// file is removed on any failure.
func WriteAtomic(path string, perm os.FileMode, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("fileutil: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("fileutil: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("fileutil: %w", err)
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("fileutil: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("fileutil: %w", err)
	}
	return nil
}

// CopyAtomic copies src to dst with WriteAtomic and returns the number of
// bytes written.
func CopyAtomic(src, dst string, perm os.FileMode) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("fileutil: %w", err)
	}
	defer func() { _ = in.Close() }()

	var n int64
	err = WriteAtomic(dst, perm, func(w io.Writer) error {
		var cerr error
		n, cerr = io.Copy(w, in)
		if cerr != nil {
			return fmt.Errorf("fileutil: copying %s: %w", src, cerr)
		}
		return nil
	})
	return n, err
}

// CopyTree copies the regular files below src into dst, preserving the
// relative layout. Symlinks are skipped.
func CopyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		switch {
		case d.IsDir():
			return os.MkdirAll(target, DirMode)
		case d.Type()&os.ModeSymlink != 0, !d.Type().IsRegular():
			return nil
		}
		_, err = CopyAtomic(path, target, OwnerReadWrite)
		return err
	})
}
