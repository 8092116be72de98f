//go:build unix

package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/drip/internal/testutil"
	"github.com/erraggy/drip/swfxml"
)

// fakeFFDecScript exports a fixed tree, copies trees back and accepts
// every replacement.
const fakeFFDecScript = `#!/bin/sh
case "$1" in
-swf2xml) cp %q "$3" ;;
-xml2swf) cp "$2" "$3" ;;
-replace) exit 0 ;;
esac
`

func TestHandlePatchEndToEnd(t *testing.T) {
	root, _ := isolate(t)
	_, stderr := captureOutput(t)

	tree := testutil.WriteFile(t, root, "fixture.xml", testutil.SampleXML)
	script := filepath.Join(root, "ffdec.sh")
	require.NoError(t, os.WriteFile(script, []byte(fmt.Sprintf(fakeFFDecScript, tree)), 0o700))

	archive := filepath.Join(root, "RaceMenu")
	testutil.WriteFile(t, archive, "interface/interface_test.swf", "FWS")
	patch := testutil.NewPatchDir(t)
	out := filepath.Join(root, "out")

	err := HandlePatch(context.Background(), []string{
		"--skip-java-check",
		"--ffdec", script,
		"--archive", archive,
		"-o", out,
		"--keep-intermediate",
		patch,
	})
	require.NoError(t, err, stderr.String())
	assert.Contains(t, stderr.String(), "Patch Report")

	// The "compiled" output is the edited tree, courtesy of the fake tool.
	doc, err := swfxml.ReadFile(filepath.Join(out, "interface", "interface_test.swf"))
	require.NoError(t, err)
	assert.Equal(t, "30720", doc.Header().AttrOr("Xmax", ""))
	assert.FileExists(t, filepath.Join(out, "interface", "interface_test.xml"))
}
