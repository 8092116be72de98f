package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/drip/driperrors"
	"github.com/erraggy/drip/internal/cliutil"
	"github.com/erraggy/drip/internal/testutil"
)

func TestSetupValidateFlags(t *testing.T) {
	fs, flags := SetupValidateFlags()

	t.Run("default values", func(t *testing.T) {
		assert.False(t, flags.NoProblems)
		assert.False(t, flags.Quiet)
		assert.Equal(t, FormatText, flags.Format)
	})

	t.Run("parse flags", func(t *testing.T) {
		args := []string{"--no-problems", "-q", "--format", "json", "patch"}
		require.NoError(t, fs.Parse(args))

		assert.True(t, flags.NoProblems)
		assert.True(t, flags.Quiet)
		assert.Equal(t, "json", flags.Format)
		assert.Equal(t, "patch", fs.Arg(0))
	})
}

func TestHandleValidate_NoArgs(t *testing.T) {
	captureOutput(t)
	err := HandleValidate([]string{})
	assert.ErrorIs(t, err, cliutil.ErrUsage)
}

func TestHandleValidate_Help(t *testing.T) {
	captureOutput(t)
	assert.NoError(t, HandleValidate([]string{"--help"}))
}

func TestHandleValidate_InvalidFormat(t *testing.T) {
	captureOutput(t)
	err := HandleValidate([]string{"--format", "invalid", "patch"})
	assert.ErrorIs(t, err, cliutil.ErrUsage)
}

func TestHandleValidate_Valid(t *testing.T) {
	_, stderr := captureOutput(t)
	dir := testutil.NewPatchDir(t)

	require.NoError(t, HandleValidate([]string{dir}))
	assert.Contains(t, stderr.String(), "Spec is valid")
	assert.Contains(t, stderr.String(), "Assets: 1")
}

func TestHandleValidate_JSON(t *testing.T) {
	stdout, _ := captureOutput(t)
	dir := testutil.NewPatchDir(t)

	require.NoError(t, HandleValidate([]string{"--format", "json", filepath.Join(dir, "patch.json")}))
	var rep ValidateReport
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &rep))
	assert.True(t, rep.Valid)
	assert.Equal(t, []string{"interface_test.swf"}, rep.Assets)
}

func TestHandleValidate_ErrorPaths(t *testing.T) {
	t.Run("non-existent path", func(t *testing.T) {
		captureOutput(t)
		err := HandleValidate([]string{"/nonexistent/path/to/patch"})
		assert.ErrorIs(t, err, driperrors.ErrInvalidPatch)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		captureOutput(t)
		p := testutil.WriteFile(t, t.TempDir(), "patch.json", `{"unclosed": `)
		err := HandleValidate([]string{p})
		assert.ErrorIs(t, err, driperrors.ErrInvalidPatch)
	})

	t.Run("directory without spec", func(t *testing.T) {
		captureOutput(t)
		err := HandleValidate([]string{t.TempDir()})
		assert.ErrorIs(t, err, driperrors.ErrInvalidPatch)
	})

	t.Run("structural errors", func(t *testing.T) {
		_, stderr := captureOutput(t)
		p := testutil.WriteFile(t, t.TempDir(), "patch.json",
			`{"a.swf": {"sprites": [{"SpriteID": "5", "CharacterID": ["2"], "MATRIX": {"scaleX": "2"}}]}}`)
		err := HandleValidate([]string{p})
		require.ErrorIs(t, err, driperrors.ErrInvalidPatch)

		var ipe *driperrors.InvalidPatchError
		require.ErrorAs(t, err, &ipe)
		assert.Equal(t, "a.swf", ipe.Key)
		assert.Contains(t, stderr.String(), "Spec is invalid")
	})

	t.Run("quiet prints nothing", func(t *testing.T) {
		stdout, stderr := captureOutput(t)
		p := testutil.WriteFile(t, t.TempDir(), "patch.json", `{}`)
		err := HandleValidate([]string{"-q", p})
		assert.Error(t, err)
		assert.Empty(t, stdout.String())
		assert.Empty(t, stderr.String())
	})
}

func TestLoadSpec(t *testing.T) {
	dir := testutil.NewPatchDir(t)
	fromDir, err := loadSpec(dir)
	require.NoError(t, err)
	fromFile, err := loadSpec(filepath.Join(dir, "patch.json"))
	require.NoError(t, err)
	assert.Equal(t, fromDir.Names(), fromFile.Names())

	_, err = loadSpec(filepath.Join(dir, "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
