package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/erraggy/drip/driperrors"
	"github.com/erraggy/drip/extract"
	"github.com/erraggy/drip/ffdec"
	"github.com/erraggy/drip/shapejob"
)

// FakeTool is an in-process ffdec.Tool. Conversions write files where the
// real tool would; recompiling copies the tree verbatim so tests can read
// the patched XML back from the output asset.
type FakeTool struct {
	// XML is what ToIntermediate writes; SampleXML when empty.
	XML string
	// FailOn makes the named operation (ffdec.OpSWF2XML, ...) fail.
	FailOn string
	// Block makes every call wait until it is closed or ctx is done.
	Block chan struct{}

	mu       sync.Mutex
	calls    []string
	replaced map[string][]shapejob.Job
}

var _ ffdec.Tool = (*FakeTool)(nil)

// Calls returns "op asset" strings in call order.
func (f *FakeTool) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Replaced returns the jobs applied to asset.
func (f *FakeTool) Replaced(asset string) []shapejob.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shapejob.Job(nil), f.replaced[asset]...)
}

func (f *FakeTool) enter(ctx context.Context, op, subject string) error {
	f.mu.Lock()
	f.calls = append(f.calls, op+" "+filepath.Base(subject))
	f.mu.Unlock()
	if f.Block != nil {
		select {
		case <-f.Block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.FailOn == op {
		return &driperrors.ExternalToolError{Tool: ffdec.ToolName, Operation: op, ExitCode: 1, Message: subject}
	}
	return nil
}

// ToIntermediate implements ffdec.Tool.
func (f *FakeTool) ToIntermediate(ctx context.Context, asset string) (string, error) {
	if err := f.enter(ctx, ffdec.OpSWF2XML, asset); err != nil {
		return "", err
	}
	xml := f.XML
	if xml == "" {
		xml = SampleXML
	}
	out := ffdec.TreePath(asset)
	if err := os.WriteFile(out, []byte(xml), 0o600); err != nil {
		return "", fmt.Errorf("fake ffdec: %w", err)
	}
	return out, nil
}

// FromIntermediate implements ffdec.Tool.
func (f *FakeTool) FromIntermediate(ctx context.Context, tree string) (string, error) {
	if err := f.enter(ctx, ffdec.OpXML2SWF, tree); err != nil {
		return "", err
	}
	data, err := os.ReadFile(tree)
	if err != nil {
		return "", fmt.Errorf("fake ffdec: %w", err)
	}
	out := ffdec.OutputPath(tree)
	if err := os.WriteFile(out, data, 0o600); err != nil {
		return "", fmt.Errorf("fake ffdec: %w", err)
	}
	return out, nil
}

// ReplaceShapes implements ffdec.Tool.
func (f *FakeTool) ReplaceShapes(ctx context.Context, asset string, jobs []shapejob.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	if err := f.enter(ctx, ffdec.OpReplace, asset); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaced == nil {
		f.replaced = make(map[string][]shapejob.Job)
	}
	f.replaced[asset] = append(f.replaced[asset], jobs...)
	return nil
}

// FakeExtractor writes Files (slash paths relative to the extraction root)
// into dest/<archive base name>.
type FakeExtractor struct {
	Files map[string]string
	Err   error

	mu    sync.Mutex
	roots []string
}

var _ extract.Extractor = (*FakeExtractor)(nil)

// Extract implements extract.Extractor.
func (f *FakeExtractor) Extract(ctx context.Context, archive, dest string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Err != nil {
		return "", f.Err
	}
	root := filepath.Join(dest, extract.BaseName(archive))
	for name, body := range f.Files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			return "", err
		}
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			return "", err
		}
	}
	f.mu.Lock()
	f.roots = append(f.roots, root)
	f.mu.Unlock()
	return root, nil
}

// Roots returns every directory Extract produced.
func (f *FakeExtractor) Roots() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.roots...)
}
