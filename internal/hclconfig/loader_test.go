package hclconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/relaygrid/internal/descriptor"
	"github.com/vk/relaygrid/internal/fieldtype"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FullFile(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	path := writeFile(t, dir, "relaygrid.hcl", `
server {
  listen       = "127.0.0.1:9000"
  prefix       = "/v1"
  class_prefix = "acme"
}

store {
  dir    = "/var/lib/relaygrid"
  watch  = true
  resync = "@every 10m"
}

log {
  level  = "debug"
  format = "json"
}

events {
  enabled = false
}

descriptor "in" "prompt" {
  name = "Prompt"
  field "text"  { type = "STRING" }
  field "seed"  { type = "int" }
  field "extra" { type = "IMAGE" }
}

descriptor "out" "result" {}
`)

	// --- Act ---
	cfg, err := Load(context.Background(), path)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", *cfg.Listen)
	assert.Equal(t, "/v1", *cfg.Prefix)
	assert.Equal(t, "acme", *cfg.ClassPrefix)
	assert.Equal(t, "/var/lib/relaygrid", *cfg.StoreDir)
	assert.True(t, *cfg.WatchStore)
	assert.Equal(t, "@every 10m", *cfg.StoreResync)
	assert.Equal(t, "debug", *cfg.LogLevel)
	assert.Equal(t, "json", *cfg.LogFormat)
	assert.False(t, *cfg.EventsEnabled)

	require.Len(t, cfg.Descriptors, 2)
	prompt := cfg.Descriptors[0]
	assert.Equal(t, "in_prompt", prompt.Key())
	assert.Equal(t, "Prompt", prompt.DisplayName)
	assert.Equal(t, []string{"text", "seed", "extra"}, prompt.FieldNames())
	assert.Equal(t, fieldtype.Int, prompt.Fields[1].Type)
	assert.Equal(t, fieldtype.String, prompt.Fields[2].Type, "unknown tags fall back to STRING")

	result := cfg.Descriptors[1]
	assert.Equal(t, descriptor.GroupOut, result.Group)
	assert.Equal(t, "Dynamic output result", result.DisplayName)
	assert.Empty(t, result.Fields)
}

func TestLoad_UnsetAttributesAreNil(t *testing.T) {
	path := writeFile(t, t.TempDir(), "partial.hcl", `log { level = "warn" }`)

	cfg, err := Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "warn", *cfg.LogLevel)
	assert.Nil(t, cfg.LogFormat)
	assert.Nil(t, cfg.Listen)
	assert.Nil(t, cfg.StoreDir)
	assert.Nil(t, cfg.EventsEnabled)
	assert.Empty(t, cfg.Descriptors)
}

func TestLoad_DirectoryMergesInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.hcl", `
server { listen = ":1111" }
descriptor "in" "one" {}
`)
	writeFile(t, dir, "nested/b.hcl", `
server { prefix = "/x" }
descriptor "out" "two" {}
`)
	writeFile(t, dir, "z.hcl", `server { listen = ":2222" }`)
	writeFile(t, dir, "ignored.txt", `not hcl at all {`)

	cfg, err := Load(context.Background(), dir)

	require.NoError(t, err)
	assert.Equal(t, ":2222", *cfg.Listen, "later files override earlier ones")
	assert.Equal(t, "/x", *cfg.Prefix)
	require.Len(t, cfg.Descriptors, 2)
	assert.Equal(t, "in_one", cfg.Descriptors[0].Key())
	assert.Equal(t, "out_two", cfg.Descriptors[1].Key())
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		errText string
	}{
		{name: "syntax", content: `server {`, errText: "failed to parse"},
		{name: "unknown block", content: `cache {}`, errText: "failed to decode"},
		{name: "bad group", content: `descriptor "sideways" "x" {}`, errText: "invalid group"},
		{name: "bad id", content: `descriptor "in" "a/b" {}`, errText: "invalid id"},
		{name: "duplicate descriptor", content: "descriptor \"in\" \"x\" {}\ndescriptor \"in\" \"x\" {}", errText: "already defined"},
		{name: "duplicate field", content: `descriptor "in" "x" {
  field "a" { type = "INT" }
  field "a" { type = "FLOAT" }
}`, errText: "twice"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "bad.hcl", tc.content)

			_, err := Load(context.Background(), path)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errText)
		})
	}
}

func TestLoad_MissingPath(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.hcl"))
	assert.Error(t, err)
}
