package mcpserver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/drip/internal/config"
	"github.com/erraggy/drip/internal/testutil"
)

func TestExactlyOne(t *testing.T) {
	assert.Error(t, exactlyOne("", ""))
	assert.Error(t, exactlyOne("a", "b"))
	assert.NoError(t, exactlyOne("a", ""))
	assert.NoError(t, exactlyOne("", "b"))
}

func TestMakeCacheKey(t *testing.T) {
	a := makeCacheKey("spec", "", "x")
	b := makeCacheKey("spec", "", "y")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "spec:content:"))

	assert.Empty(t, makeCacheKey("tree", filepath.Join(t.TempDir(), "missing.xml"), ""))

	path := testutil.WriteFile(t, t.TempDir(), "tree.xml", testutil.SampleXML)
	key := makeCacheKey("tree", path, "")
	assert.Contains(t, key, "tree:file:")

	// A newer mtime yields a new key.
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))
	assert.NotEqual(t, key, makeCacheKey("tree", path, ""))
}

func TestResolveSpecSources(t *testing.T) {
	s := testServer(t)
	dir := testutil.NewPatchDir(t)

	fromDir, err := s.resolveSpec(specInput{File: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"interface_test.swf"}, fromDir.Names())

	fromFile, err := s.resolveSpec(specInput{File: filepath.Join(dir, "patch.json")})
	require.NoError(t, err)
	assert.NotEmpty(t, fromFile.Root)

	inline, err := s.resolveSpec(specInput{Content: testutil.SampleSpec, Root: dir})
	require.NoError(t, err)
	assert.Equal(t, dir, inline.Root)

	_, err = s.resolveSpec(specInput{})
	assert.Error(t, err)
	_, err = s.resolveSpec(specInput{Content: "{not json"})
	assert.Error(t, err)
}

func TestResolveSpecCaches(t *testing.T) {
	s := testServer(t)
	first, err := s.resolveSpec(specInput{Content: testutil.SampleSpec})
	require.NoError(t, err)
	second, err := s.resolveSpec(specInput{Content: testutil.SampleSpec})
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, s.cache.len())

	// A different root is a different entry.
	third, err := s.resolveSpec(specInput{Content: testutil.SampleSpec, Root: "elsewhere"})
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestResolveSpecDirectorySeesFileEdits(t *testing.T) {
	s := testServer(t)
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "patch.json", `{"a.swf": {}}`)

	before, err := s.resolveSpec(specInput{File: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.swf"}, before.Names())

	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(`{"b.swf": {}, "c.swf": {}}`), 0o600))
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))
	// Editing in place leaves the directory's mtime alone.
	require.NoError(t, os.Chtimes(dir, dirInfo.ModTime(), dirInfo.ModTime()))

	after, err := s.resolveSpec(specInput{File: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.swf", "c.swf"}, after.Names())

	_, err = s.resolveSpec(specInput{File: t.TempDir()})
	assert.Error(t, err, "directory without patch.json")
}

func TestResolveTreeReturnsPrivateCopies(t *testing.T) {
	s := testServer(t)
	in := treeInput{Content: testutil.SampleXML}

	a, err := s.resolveTree(in)
	require.NoError(t, err)
	a.Header().SetAttr("Xmax", "1")

	b, err := s.resolveTree(in)
	require.NoError(t, err)
	assert.Equal(t, "25600", b.Header().AttrOr("Xmax", ""))
	assert.Equal(t, 1, s.cache.len())
}

func TestResolveInlineLimit(t *testing.T) {
	s := New(config.MCPConfig{MaxInlineSize: 16})
	_, err := s.resolveTree(treeInput{Content: testutil.SampleXML})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum")

	_, err = s.resolveSpec(specInput{Content: testutil.SampleSpec})
	assert.Error(t, err)
}

func TestResolveTreeWithoutCache(t *testing.T) {
	s := New(config.MCPConfig{})
	doc, err := s.resolveTree(treeInput{Content: testutil.SampleXML})
	require.NoError(t, err)
	assert.NotNil(t, doc.Root)

	_, err = s.resolveTree(treeInput{Content: "<"})
	assert.Error(t, err)
}
