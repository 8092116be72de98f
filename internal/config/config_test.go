package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/drip/driperrors"
	"github.com/erraggy/drip/eventlog"
)

// unsetForTest clears key for the duration of the test, restoring it after.
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"DRIP_FFDEC_COMMAND", "DRIP_ASSET_DIR", "DRIP_LOG_LEVEL", "DRIP_LOG_FORMAT"} {
		unsetForTest(t, k)
	}
	cfg, err := Load(LoadOptions{Dir: t.TempDir()})
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.FFDecCommand, cfg.FFDecCommand)
	assert.Equal(t, "RaceMenu.bsa", cfg.ArchiveName)
	assert.Equal(t, "interface", cfg.AssetDir)
	assert.Equal(t, time.Second, cfg.CleanupGrace)
	assert.Equal(t, 16, cfg.MCP.CacheSize)
	assert.False(t, cfg.EscapeMarkup)
}

func TestLoadFile(t *testing.T) {
	unsetForTest(t, "DRIP_FFDEC_COMMAND")
	unsetForTest(t, "DRIP_KEEP_GOING")
	unsetForTest(t, "DRIP_CLEANUP_GRACE")
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
ffdec_command: java -jar "/opt/ffdec/ffdec.jar"
keep_going: true
cleanup_grace: 3s
log_format: json
`)

	cfg, err := Load(LoadOptions{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, `java -jar "/opt/ffdec/ffdec.jar"`, cfg.FFDecCommand)
	assert.True(t, cfg.KeepGoing)
	assert.Equal(t, 3*time.Second, cfg.CleanupGrace)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "java", cfg.JavaCommand, "keys absent from the file keep their defaults")
	assert.Contains(t, cfg.Sources, filepath.Join(dir, FileName))
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "ffdec_cmd: ffdec\n"},
		{"bad duration", "cleanup_grace: soon\n"},
		{"negative duration", "cleanup_grace: -1s\n"},
		{"not yaml", "ffdec_command: [\n"},
		{"bad level", "log_level: loud\n"},
		{"escaping asset dir", "asset_dir: ../outside\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetForTest(t, "DRIP_LOG_LEVEL")
			unsetForTest(t, "DRIP_ASSET_DIR")
			p := writeFile(t, t.TempDir(), "custom.yaml", tt.content)
			_, err := Load(LoadOptions{File: p, SkipEnvFile: true})
			assert.ErrorIs(t, err, driperrors.ErrConfig)
		})
	}

	_, err := Load(LoadOptions{File: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.ErrorIs(t, err, driperrors.ErrConfig)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, "ffdec_command: from-file\nkeep_going: true\n")
	t.Setenv("DRIP_FFDEC_COMMAND", "from-env")
	t.Setenv("DRIP_KEEP_GOING", "false")
	t.Setenv("DRIP_CLEANUP_GRACE", "250ms")

	cfg, err := Load(LoadOptions{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.FFDecCommand)
	assert.False(t, cfg.KeepGoing)
	assert.Equal(t, 250*time.Millisecond, cfg.CleanupGrace)
	assert.Contains(t, cfg.Sources, "environment")
}

func TestInvalidEnvKeepsPrevious(t *testing.T) {
	t.Setenv("DRIP_ESCAPE_MARKUP", "maybe")
	t.Setenv("DRIP_CLEANUP_GRACE", "later")
	t.Setenv("DRIP_MCP_CACHE_SIZE", "-3")

	rec := eventlog.NewRecorder(nil)
	cfg, err := Load(LoadOptions{Dir: t.TempDir(), Logger: rec})
	require.NoError(t, err)
	assert.False(t, cfg.EscapeMarkup)
	assert.Equal(t, time.Second, cfg.CleanupGrace)
	assert.Equal(t, 16, cfg.MCP.CacheSize)
	assert.Equal(t, 3, rec.Count(eventlog.LevelWarn))
}

func TestEnvFile(t *testing.T) {
	unsetForTest(t, "DRIP_ASSET_DIR")
	t.Setenv("DRIP_ARCHIVE_NAME", "Real.bsa")
	dir := t.TempDir()
	writeFile(t, dir, EnvFileName, "DRIP_ASSET_DIR=interface/menus\nDRIP_ARCHIVE_NAME=FromDotenv.bsa\n")

	cfg, err := Load(LoadOptions{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, "interface/menus", cfg.AssetDir)
	assert.Equal(t, "Real.bsa", cfg.ArchiveName, "the real environment wins over .env")

	unsetForTest(t, "DRIP_ASSET_DIR")
	cfg, err = Load(LoadOptions{Dir: dir, SkipEnvFile: true})
	require.NoError(t, err)
	assert.Equal(t, "interface", cfg.AssetDir)
}

func TestMCPEnv(t *testing.T) {
	t.Setenv("DRIP_MCP_CACHE_SIZE", "4")
	t.Setenv("DRIP_MCP_CACHE_TTL", "1m")
	t.Setenv("DRIP_MCP_MAX_INLINE_SIZE", "1024")

	cfg, err := Load(LoadOptions{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, MCPConfig{CacheSize: 4, CacheTTL: time.Minute, MaxInlineSize: 1024}, cfg.MCP)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.FFDecCommand = " "
	cfg.LogFormat = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, driperrors.ErrConfig)
	assert.Contains(t, err.Error(), "ffdec_command")
	assert.Contains(t, err.Error(), "log_format")
}
