package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relaygrid.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParse_Defaults(t *testing.T) {
	// --- Arrange ---
	out := &bytes.Buffer{}

	// --- Act ---
	cfg, shouldExit, err := Parse(nil, out)

	// --- Assert ---
	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, ":8188", cfg.Listen)
	assert.Equal(t, "/api", cfg.Prefix)
	assert.Equal(t, "relaygrid", cfg.ClassPrefix)
	assert.Equal(t, "saved_nodes", cfg.StoreDir)
	assert.False(t, cfg.WatchStore)
	assert.False(t, cfg.EventsEnabled)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Len(t, cfg.Seeds, 2, "built-in example nodes are seeded")
}

func TestParse_Help(t *testing.T) {
	// --- Arrange ---
	out := &bytes.Buffer{}

	// --- Act ---
	cfg, shouldExit, err := Parse([]string{"-h"}, out)

	// --- Assert ---
	require.NoError(t, err)
	require.True(t, shouldExit)
	require.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "-store-dir")
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		errText string
	}{
		{name: "unknown flag", args: []string{"-nope"}, errText: "flag provided but not defined"},
		{name: "bad log level", args: []string{"-log-level", "chatty"}, errText: "invalid log-level"},
		{name: "bad log format", args: []string{"-log-format", "yaml"}, errText: "invalid log-format"},
		{name: "resync without watcher", args: []string{"-store-resync", "@hourly"}, errText: "requires the store watcher"},
		{name: "bad resync schedule", args: []string{"-watch-store", "-store-resync", "soon"}, errText: "invalid resync schedule"},
		{name: "missing config file", args: []string{"-config", "/does/not/exist.hcl"}, errText: "error accessing config path"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			_, _, err := Parse(tc.args, &bytes.Buffer{})

			// --- Assert ---
			require.Error(t, err)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.errText)
		})
	}
}

func TestParse_ConfigFile(t *testing.T) {
	// --- Arrange ---
	path := writeConfig(t, `
server {
  listen = "127.0.0.1:9000"
  prefix = "/v1"
}

store {
  dir   = "nodes"
  watch = true
}

log {
  level = "debug"
}

descriptor "in" "prompt" {
  name = "Prompt"
  field "text" { type = "STRING" }
}
`)

	// --- Act ---
	cfg, _, err := Parse([]string{path}, &bytes.Buffer{})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
	assert.Equal(t, "/v1", cfg.Prefix)
	assert.Equal(t, "nodes", cfg.StoreDir)
	assert.True(t, cfg.WatchStore)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.Len(t, cfg.Seeds, 1, "configured descriptors replace the built-in seeds")
	assert.Equal(t, "in_prompt", cfg.Seeds[0].Key())
}

func TestParse_ExplicitFlagsOverrideConfigFile(t *testing.T) {
	// --- Arrange ---
	path := writeConfig(t, `
server {
  listen = "127.0.0.1:9000"
}

log {
  level = "debug"
}
`)

	// --- Act ---
	cfg, _, err := Parse([]string{"-listen", ":7000", "-config", path}, &bytes.Buffer{})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Listen, "explicit flag wins")
	assert.Equal(t, "debug", cfg.LogLevel, "file wins over flag default")
}

func TestParseWatch(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		// --- Act ---
		opts, shouldExit, err := ParseWatch(nil, &bytes.Buffer{})

		// --- Assert ---
		require.NoError(t, err)
		require.False(t, shouldExit)
		assert.Equal(t, "http://localhost:8188/socket.io/", opts.URL)
		assert.Equal(t, 15*time.Second, opts.ConnectTimeout)
	})

	t.Run("custom", func(t *testing.T) {
		// --- Act ---
		opts, _, err := ParseWatch([]string{"-url", "https://grid.example/socket.io/", "-insecure", "-connect-timeout", "2s"}, &bytes.Buffer{})

		// --- Assert ---
		require.NoError(t, err)
		assert.Equal(t, "https://grid.example/socket.io/", opts.URL)
		assert.True(t, opts.InsecureSkipVerify)
		assert.Equal(t, 2*time.Second, opts.ConnectTimeout)
	})

	t.Run("stray argument", func(t *testing.T) {
		// --- Act ---
		_, _, err := ParseWatch([]string{"extra"}, &bytes.Buffer{})

		// --- Assert ---
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Contains(t, exitErr.Message, "unexpected argument")
	})

	t.Run("help", func(t *testing.T) {
		// --- Arrange ---
		out := &bytes.Buffer{}

		// --- Act ---
		_, shouldExit, err := ParseWatch([]string{"-help"}, out)

		// --- Assert ---
		require.NoError(t, err)
		require.True(t, shouldExit)
		assert.Contains(t, out.String(), "relaygrid watch")
	})
}
