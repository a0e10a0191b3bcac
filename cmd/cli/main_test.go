package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/relaygrid/internal/cli"
)

func TestRun_StartupFailure(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A regular file where the store directory should be makes the store
	// unusable, so startup fails before anything listens.
	tempDir := t.TempDir()
	blocker := filepath.Join(tempDir, "nodes")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	args := []string{"-listen", "127.0.0.1:0", "-store-dir", blocker}
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, args)

	// --- Assert ---
	require.Error(t, runErr)
	require.Contains(t, runErr.Error(), "application startup failed")
}

func TestRun_InvalidConfigFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	invalidHCL := `
		server {
			listen = "127.0.0.1:0"
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0o600))

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, []string{filePath})

	// --- Assert ---
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, exitErr.Message, "failed to parse")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	testCases := map[string][]string{
		"server help": {"-h"},
		"serve help":  {"serve", "-h"},
		"watch help":  {"watch", "-h"},
	}

	for name, args := range testCases {
		t.Run(name, func(t *testing.T) {
			// --- Arrange ---
			out := &bytes.Buffer{}

			// --- Act ---
			err := run(context.Background(), out, args)

			// --- Assert ---
			require.NoError(t, err, "run() should return a nil error when shouldExit is true")
			require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
		})
	}
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_ServesUntilCancelled(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	args := []string{"-listen", "127.0.0.1:0", "-store-dir", t.TempDir()}

	// --- Act ---
	err := run(ctx, &bytes.Buffer{}, args)

	// --- Assert ---
	require.NoError(t, err)
}
