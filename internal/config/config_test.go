package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
log:
  level: debug
translate:
  seed: 42
  parallelism: 3
`)
	cfg, err := Load(path, false)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format, "unset keys keep their default")
	assert.Equal(t, uint64(42), cfg.Translate.Seed)
	assert.Equal(t, 3, cfg.Translate.Parallelism)
	assert.True(t, cfg.Translate.Signature)
}

func TestLoad_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(path, false)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, ""), false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown key", "log:\n  colour: red\n", "colour"},
		{"bad level", "log:\n  level: loud\n", "unknown log level"},
		{"bad format", "log:\n  format: xml\n", "unknown log format"},
		{"bad debug trace", "translate:\n  debug_trace: xml\n", "unknown debug trace format"},
		{"negative parallelism", "translate:\n  parallelism: -1\n", "must not be negative"},
		{"wrong type", "translate:\n  seed: many\n", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := Decode(strings.NewReader(tt.doc), &cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWrite_RoundTrips(t *testing.T) {
	want := Default()
	want.Translate.OutputDir = "out"
	want.Translate.FailFast = true

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, want))

	got := Default()
	require.NoError(t, Decode(&buf, &got))
	assert.Equal(t, want, got)
}
