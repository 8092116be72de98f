//go:build unix

package ffdec

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/drip/driperrors"
	"github.com/erraggy/drip/eventlog"
	"github.com/erraggy/drip/shapejob"
)

// fakeFFDec emulates the three FFDec operations: conversions copy input to
// output, replacements append "<index> <file>" to <out>.log.
const fakeFFDec = `#!/bin/sh
echo "ffdec $*"
case "$1" in
-swf2xml|-xml2swf) cp "$2" "$3" ;;
-replace)
  [ "$4" = "13" ] && { echo "shape not found" >&2; exit 4; }
  echo "$4 $5" >> "$3.log" ;;
esac
`

// silentFFDec succeeds without writing anything.
const silentFFDec = "#!/bin/sh\nexit 0\n"

func script(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "ffdec.sh")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o700))
	return p
}

func asset(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "racesex_menu.swf")
	require.NoError(t, os.WriteFile(p, []byte("FWS"), 0o600))
	return p
}

func TestPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "menu.xml"), TreePath(filepath.Join("a", "menu.swf")))
	assert.Equal(t, filepath.Join("a", "menu.patched.swf"), OutputPath(filepath.Join("a", "menu.xml")))
}

func TestNewCLI(t *testing.T) {
	c, err := NewCLI(`java -jar "/opt/ffdec dir/ffdec.jar"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"java", "-jar", "/opt/ffdec dir/ffdec.jar"}, c.Command())

	_, err = NewCLI("   ")
	assert.ErrorIs(t, err, driperrors.ErrConfig)
	_, err = NewCLI(`java "-jar`)
	assert.ErrorIs(t, err, driperrors.ErrConfig)
}

func TestRoundTrip(t *testing.T) {
	c, err := NewCLI(script(t, fakeFFDec))
	require.NoError(t, err)
	ctx := context.Background()
	swf := asset(t)

	tree, err := c.ToIntermediate(ctx, swf)
	require.NoError(t, err)
	assert.Equal(t, TreePath(swf), tree)

	out, err := c.FromIntermediate(ctx, tree)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSuffix(swf, ".swf")+".patched.swf", out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "FWS", string(data))
}

func TestReplaceShapes(t *testing.T) {
	c, err := NewCLI(script(t, fakeFFDec))
	require.NoError(t, err)
	swf := asset(t)

	jobs := []shapejob.Job{
		{ReplacementAsset: "/p/a.svg", TargetIndex: 1},
		{ReplacementAsset: "/p/a.svg", TargetIndex: 2},
		{ReplacementAsset: "/p/b.svg", TargetIndex: 3},
	}
	require.NoError(t, c.ReplaceShapes(context.Background(), swf, jobs))

	log, err := os.ReadFile(swf + ".log")
	require.NoError(t, err)
	assert.Equal(t, "1 /p/a.svg\n2 /p/a.svg\n3 /p/b.svg\n", string(log))

	assert.NoError(t, c.ReplaceShapes(context.Background(), "/does/not/matter.swf", nil))
}

func TestReplaceShapesStopsOnFailure(t *testing.T) {
	c, err := NewCLI(script(t, fakeFFDec))
	require.NoError(t, err)
	swf := asset(t)

	err = c.ReplaceShapes(context.Background(), swf, []shapejob.Job{
		{ReplacementAsset: "a.svg", TargetIndex: 13},
		{ReplacementAsset: "a.svg", TargetIndex: 14},
	})
	require.ErrorIs(t, err, driperrors.ErrExternalTool)

	var te *driperrors.ExternalToolError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, OpReplace, te.Operation)
	assert.Equal(t, 4, te.ExitCode)
	assert.Contains(t, te.Error(), "shape not found")

	_, statErr := os.Stat(swf + ".log")
	assert.True(t, os.IsNotExist(statErr), "second job must not run")
}

func TestFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("missing input", func(t *testing.T) {
		c, err := NewCLI(script(t, fakeFFDec))
		require.NoError(t, err)
		_, err = c.ToIntermediate(ctx, filepath.Join(t.TempDir(), "nope.swf"))
		assert.ErrorIs(t, err, driperrors.ErrExternalTool)
	})

	t.Run("no output", func(t *testing.T) {
		c, err := NewCLI(script(t, silentFFDec))
		require.NoError(t, err)
		_, err = c.ToIntermediate(ctx, asset(t))
		require.ErrorIs(t, err, driperrors.ErrExternalTool)
		assert.Contains(t, err.Error(), "no output written")
	})

	t.Run("missing binary", func(t *testing.T) {
		c, err := NewCLI(filepath.Join(t.TempDir(), "ffdec-missing"))
		require.NoError(t, err)
		_, err = c.ToIntermediate(ctx, asset(t))
		assert.ErrorIs(t, err, driperrors.ErrExternalTool)
	})

	t.Run("cancelled", func(t *testing.T) {
		c, err := NewCLI(script(t, fakeFFDec))
		require.NoError(t, err)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err = c.ReplaceShapes(cctx, asset(t), []shapejob.Job{{ReplacementAsset: "a.svg", TargetIndex: 1}})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCheckJava(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, CheckJava(ctx, script(t, "#!/bin/sh\necho 'openjdk version \"21\"' >&2\n")))
	assert.ErrorIs(t, CheckJava(ctx, script(t, "#!/bin/sh\nexit 1\n")), driperrors.ErrExternalTool)
	assert.ErrorIs(t, CheckJava(ctx, ""), driperrors.ErrConfig)
}

func TestDiagnosticsAreWarnings(t *testing.T) {
	rec := eventlog.NewRecorder(nil)
	body := "#!/bin/sh\necho 'Loading...'\necho 'SEVERE: Cannot load SWF' >&2\ncp \"$2\" \"$3\"\n"
	c, err := NewCLI(script(t, body), WithLogger(rec))
	require.NoError(t, err)

	_, err = c.ToIntermediate(context.Background(), asset(t))
	require.NoError(t, err)

	var warned []string
	for _, e := range rec.Events() {
		if e.Level == eventlog.LevelWarn {
			warned = append(warned, e.String())
		}
	}
	require.Len(t, warned, 1)
	assert.Contains(t, warned[0], "SEVERE: Cannot load SWF")
}
