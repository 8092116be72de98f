package extract

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/erraggy/drip/driperrors"
	"github.com/erraggy/drip/eventlog"
	"github.com/erraggy/drip/internal/fileutil"
	"github.com/erraggy/drip/internal/proc"
)

// Extractor unpacks an archive into dest/<archive base name> and returns
// that directory.
type Extractor interface {
	Extract(ctx context.Context, archive, dest string) (string, error)
}

// Placeholders accepted in a command template.
const (
	PlaceholderArchive = "archive"
	PlaceholderDest    = "dest"
)

// BaseName returns the archive name without its extension, which names the
// extraction subdirectory: "RaceMenu.bsa" → "RaceMenu".
func BaseName(archive string) string {
	base := filepath.Base(archive)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Auto picks a backend per archive: directories are copied, .zip files are
// read natively, anything else goes through the configured command.
type Auto struct {
	// Command is the template used for archives without a native reader,
	// e.g. `bsarch unpack {archive} {dest}`. Empty disables them.
	Command string
	Logger  eventlog.Logger
}

// Extract implements Extractor.
func (a *Auto) Extract(ctx context.Context, archive, dest string) (string, error) {
	info, err := os.Stat(archive)
	if err != nil {
		return "", &driperrors.SourceAssetMissingError{Path: archive, Cause: err}
	}
	var e Extractor
	switch {
	case info.IsDir():
		e = Dir{Logger: a.Logger}
	case strings.EqualFold(filepath.Ext(archive), ".zip"):
		e = Zip{Logger: a.Logger}
	default:
		e = &Command{Template: a.Command, Logger: a.Logger}
	}
	return e.Extract(ctx, archive, dest)
}

// Dir treats a directory of loose files as an already-extracted archive and
// copies it.
type Dir struct {
	Logger eventlog.Logger
}

// Extract implements Extractor.
func (d Dir) Extract(ctx context.Context, archive, dest string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out := filepath.Join(dest, filepath.Base(filepath.Clean(archive)))
	eventlog.OrNop(d.Logger).Info("copying loose files", "source", archive, "dest", out)
	if err := fileutil.CopyTree(archive, out); err != nil {
		return "", fmt.Errorf("extract: copying %s: %w", archive, err)
	}
	return out, nil
}

// Zip reads .zip archives with archive/zip.
type Zip struct {
	Logger eventlog.Logger
}

// Extract implements Extractor. Entries that would land outside the
// destination are rejected.
func (z Zip) Extract(ctx context.Context, archive, dest string) (string, error) {
	r, err := zip.OpenReader(archive)
	if errors.Is(err, zip.ErrInsecurePath) && r != nil {
		// entry names are checked one by one below
		err = nil
	}
	if err != nil {
		return "", &driperrors.ExternalToolError{Tool: "zip", Operation: "extract", ExitCode: -1, Message: archive, Cause: err}
	}
	defer func() { _ = r.Close() }()

	out := filepath.Join(dest, BaseName(archive))
	if err := os.MkdirAll(out, fileutil.DirMode); err != nil {
		return "", fmt.Errorf("extract: %w", err)
	}
	log := eventlog.OrNop(z.Logger)
	log.Info("extracting archive", "archive", archive, "entries", len(r.File), "dest", out)

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := writeEntry(f, out); err != nil {
			return "", fmt.Errorf("extract: %s: %w", archive, err)
		}
	}
	return out, nil
}

func writeEntry(f *zip.File, root string) error {
	name := filepath.FromSlash(strings.ReplaceAll(f.Name, `\`, "/"))
	if !filepath.IsLocal(name) {
		return fmt.Errorf("entry %q escapes destination", f.Name)
	}
	target := filepath.Join(root, name)
	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, fileutil.DirMode)
	}
	if !f.Mode().IsRegular() {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(target), fileutil.DirMode); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	return fileutil.WriteAtomic(target, fileutil.OwnerReadWrite, func(w io.Writer) error {
		_, err := io.Copy(w, rc)
		return err
	})
}

// ErrNoCommand is returned when an archive needs the command backend and
// none is configured.
var ErrNoCommand = errors.New("no extract command configured")

// Command runs an external unpacker built from a template with {archive}
// and {dest} placeholders; {dest} is the subdirectory named after the
// archive. The command runs inside {dest}, for unpackers that write to the
// working directory.
type Command struct {
	Template string
	Logger   eventlog.Logger
}

// Extract implements Extractor.
func (c *Command) Extract(ctx context.Context, archive, dest string) (string, error) {
	if strings.TrimSpace(c.Template) == "" {
		return "", &driperrors.ConfigError{
			Option:  "extract_command",
			Message: fmt.Sprintf("cannot unpack %s", filepath.Base(archive)),
			Cause:   ErrNoCommand,
		}
	}
	argv, err := proc.SplitCommand(c.Template)
	if err != nil {
		return "", &driperrors.ConfigError{Option: "extract_command", Value: c.Template, Cause: err}
	}
	if len(argv) == 0 {
		return "", &driperrors.ConfigError{Option: "extract_command", Value: c.Template, Cause: ErrNoCommand}
	}
	out := filepath.Join(dest, BaseName(archive))
	if err := os.MkdirAll(out, fileutil.DirMode); err != nil {
		return "", fmt.Errorf("extract: %w", err)
	}
	argv = proc.Expand(argv, map[string]string{PlaceholderArchive: archive, PlaceholderDest: out})

	log := eventlog.OrNop(c.Logger)
	log.Info("extracting archive", "archive", archive, "dest", out, "tool", argv[0])
	if _, err := proc.New(proc.WithLogger(log), proc.WithDir(out)).Run(ctx, argv[0], argv[1:]...); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		te := &driperrors.ExternalToolError{Tool: argv[0], Operation: "extract", ExitCode: -1, Message: archive, Cause: err}
		var exitErr *proc.ExitError
		if errors.As(err, &exitErr) {
			te.ExitCode = exitErr.Code
		}
		return "", te
	}
	return out, nil
}

// Locate finds the relative path name inside dir. Each path element is
// matched exactly first, then case-insensitively, since unpackers and mod
// managers do not preserve case.
func Locate(dir, name string) (string, error) {
	exact := filepath.Join(dir, filepath.FromSlash(name))
	if _, err := os.Stat(exact); err == nil {
		return exact, nil
	}
	cur := dir
	for _, elem := range strings.Split(filepath.ToSlash(filepath.Clean(filepath.FromSlash(name))), "/") {
		next, err := locateElem(cur, elem)
		if err != nil {
			return "", &driperrors.SourceAssetMissingError{Path: exact, Cause: err}
		}
		cur = next
	}
	return cur, nil
}

func locateElem(dir, elem string) (string, error) {
	p := filepath.Join(dir, elem)
	if _, err := os.Lstat(p); err == nil {
		return p, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if strings.EqualFold(e.Name(), elem) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", os.ErrNotExist
}
