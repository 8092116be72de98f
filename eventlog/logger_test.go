package eventlog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopLogger(t *testing.T) {
	l := NopLogger{}
	l.Debug("m", "k", "v")
	l.Info("m")
	l.Warn("m")
	l.Error("m")
	_, ok := l.With("k", "v").(NopLogger)
	assert.True(t, ok, "With should return NopLogger")
}

func TestOrNop(t *testing.T) {
	assert.IsType(t, NopLogger{}, OrNop(nil))
	r := NewRecorder(nil)
	assert.Same(t, r, OrNop(r))
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	adapter.Debug("tool output", "line", "Exporting...")
	adapter.With("asset", "hudmenu.swf").Warn("sprite not found", "spriteId", "42")

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "tool output")
	assert.Contains(t, out, "asset=hudmenu.swf")
	assert.Contains(t, out, "spriteId=42")

	assert.NotNil(t, NewSlogAdapter(nil).logger)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewSlogLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := NewSlogLogger(&buf, "info", "json")
		require.NoError(t, err)
		l.Debug("hidden")
		l.Info("patched", "asset", "a.swf")

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "patched", rec["msg"])
		assert.Equal(t, "a.swf", rec["asset"])
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := NewSlogLogger(&bytes.Buffer{}, "info", "xml")
		assert.Error(t, err)
	})

	t.Run("bad level", func(t *testing.T) {
		_, err := NewSlogLogger(&bytes.Buffer{}, "verbose", "text")
		assert.Error(t, err)
	})
}
