package discover

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, parts ...string) string {
	t.Helper()
	p := filepath.Join(parts...)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, nil, 0o600))
	return p
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "b", "RaceMenu.bsa")
	touch(t, root, "a", "deep", "racemenu.BSA")
	touch(t, root, ".hidden", "RaceMenu.bsa")

	got, err := Find(context.Background(), root, "RaceMenu.bsa", 0)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", "deep"), got, "lexical order wins")

	_, err = Find(context.Background(), root, "patch.json", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindSkipsHiddenAndDeep(t *testing.T) {
	root := t.TempDir()
	touch(t, root, ".git", "patch.json")
	touch(t, root, "1", "2", "3", "patch.json")

	_, err := Find(context.Background(), root, "patch.json", 2)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := Find(context.Background(), root, "patch.json", 3)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "1", "2", "3"), got)
}

func TestFindCancelled(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "x", "patch.json")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Find(ctx, root, "patch.json", 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolve(t *testing.T) {
	mods := t.TempDir()
	wd := filepath.Join(mods, "MyPatch", "drip")
	require.NoError(t, os.MkdirAll(wd, 0o755))
	touch(t, mods, "RaceMenu", "RaceMenu.bsa")
	touch(t, mods, "MyPatch", "patch", "patch.json")

	d, err := Resolve(context.Background(), wd, "RaceMenu.bsa")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(mods, "RaceMenu"), d.ArchiveDir)
	assert.Equal(t, filepath.Join(mods, "MyPatch", "patch"), d.PatchDir)
	assert.Equal(t, filepath.Join(mods, "MyPatch"), d.OutputRoot)
	assert.True(t, IsDir(d.OutputRoot))
}

func TestResolveNothingFound(t *testing.T) {
	mods := t.TempDir()
	wd := filepath.Join(mods, "a", "b")
	require.NoError(t, os.MkdirAll(wd, 0o755))

	d, err := Resolve(context.Background(), wd, "RaceMenu.bsa")
	require.NoError(t, err)
	assert.Empty(t, d.ArchiveDir)
	assert.Empty(t, d.PatchDir)
	assert.Equal(t, filepath.Join(mods, "a"), d.OutputRoot)
}
