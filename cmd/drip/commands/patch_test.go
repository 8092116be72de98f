package commands

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/drip/driperrors"
	"github.com/erraggy/drip/internal/cliutil"
	"github.com/erraggy/drip/internal/testutil"
	"github.com/erraggy/drip/patcher"
)

func TestSetupPatchFlags(t *testing.T) {
	_, patch := SetupPatchFlags("patch")
	assert.False(t, patch.DryRun)
	assert.Equal(t, FormatText, patch.Format)

	fs, plan := SetupPatchFlags("plan")
	assert.True(t, plan.DryRun)

	require.NoError(t, fs.Parse([]string{"-o", "out", "--keep-going", "--archive", "a.bsa", "dir"}))
	assert.Equal(t, "out", plan.Output)
	assert.True(t, plan.KeepGoing)
	assert.Equal(t, "a.bsa", plan.Archive)
	assert.Equal(t, "dir", fs.Arg(0))
}

func TestHandlePlan(t *testing.T) {
	isolate(t)
	stdout, _ := captureOutput(t)
	dir := testutil.NewPatchDir(t)
	out := t.TempDir()

	require.NoError(t, HandlePlan(context.Background(), []string{"--format", "json", "-o", out, dir}))

	var rep patcher.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &rep))
	assert.True(t, rep.DryRun)
	require.Len(t, rep.Assets, 1)
	a := rep.Assets[0]
	assert.Equal(t, "interface_test.swf", a.Name)
	assert.Len(t, a.Jobs, 1)
	assert.True(t, a.TreeEdit)
	assert.Equal(t, filepath.Join(out, "interface", "interface_test.swf"), a.OutputPath)
}

func TestHandlePlanText(t *testing.T) {
	isolate(t)
	_, stderr := captureOutput(t)
	dir := testutil.NewPatchDir(t)

	require.NoError(t, HandlePlan(context.Background(), []string{dir}))
	assert.Contains(t, stderr.String(), "Patch Plan")
	assert.Contains(t, stderr.String(), "shape 3 <- ")
	assert.Contains(t, stderr.String(), "1 asset, 0 warnings, 0 failed")
}

func TestHandlePlanDiscoversPatch(t *testing.T) {
	root, wd := isolate(t)
	testutil.WriteFile(t, root, "mod/patch/patch.json", testutil.SampleSpec)

	stdout, _ := captureOutput(t)
	require.NoError(t, HandlePlan(context.Background(), []string{"--format", "json"}))

	var rep patcher.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &rep))
	assert.Equal(t, filepath.Join(root, "mod", "patch", "patch.json"), rep.Spec)
	assert.Equal(t, filepath.Dir(wd), rep.Output)
}

func TestHandlePatchErrors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		target error
	}{
		{name: "too many args", args: []string{"a", "b"}, target: cliutil.ErrUsage},
		{name: "bad format", args: []string{"--format", "xml", "a"}, target: cliutil.ErrUsage},
		{name: "unknown flag", args: []string{"--frobnicate"}, target: cliutil.ErrUsage},
		{name: "no patch found", args: nil, target: cliutil.ErrUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			captureOutput(t)
			err := HandlePatch(context.Background(), tt.args)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestHandlePatchWithoutArchive(t *testing.T) {
	isolate(t)
	captureOutput(t)
	dir := testutil.NewPatchDir(t)

	err := HandlePatch(context.Background(), []string{"--skip-java-check", dir})
	require.ErrorIs(t, err, driperrors.ErrConfig)
	assert.Equal(t, cliutil.ExitConfig, cliutil.ExitCode(err))
}

func TestHandlePatchHelp(t *testing.T) {
	_, stderr := captureOutput(t)
	require.NoError(t, HandlePatch(context.Background(), []string{"--help"}))
	assert.Contains(t, stderr.String(), "Usage: drip patch")
}
