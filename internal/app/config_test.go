package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/relaygrid/internal/descriptor"
)

func TestNewConfig(t *testing.T) {
	base := Config{Listen: ":0", StoreDir: "nodes"}

	testCases := []struct {
		name        string
		mutate      func(c *Config)
		expectError string
	}{
		{name: "valid defaults", mutate: func(c *Config) {}},
		{name: "missing listen", mutate: func(c *Config) { c.Listen = "" }, expectError: "Listen is a required"},
		{name: "missing store dir", mutate: func(c *Config) { c.StoreDir = "" }, expectError: "StoreDir is a required"},
		{name: "relative prefix", mutate: func(c *Config) { c.Prefix = "api" }, expectError: "invalid prefix"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, expectError: "invalid log-level"},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, expectError: "invalid log-format"},
		{name: "bad resync schedule", mutate: func(c *Config) { c.StoreResync = "whenever" }, expectError: "schedule"},
		{name: "valid resync schedule", mutate: func(c *Config) { c.StoreResync = "*/5 * * * *" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			cfg := base
			tc.mutate(&cfg)

			// --- Act ---
			got, err := NewConfig(cfg)

			// --- Assert ---
			if tc.expectError != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.expectError)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
		})
	}
}

func TestNewConfig_FillsDefaults(t *testing.T) {
	// --- Act ---
	cfg, err := NewConfig(Config{Listen: ":0", StoreDir: "nodes"})

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "/api", cfg.Prefix)
	require.Equal(t, "relaygrid", cfg.ClassPrefix)
	require.Equal(t, DefaultLogLevel, cfg.LogLevel)
	require.Equal(t, DefaultLogFormat, cfg.LogFormat)
	require.Len(t, cfg.Seeds, 2)
}

func TestNewConfig_EmptySeedsDisableSeeding(t *testing.T) {
	// --- Act ---
	cfg, err := NewConfig(Config{Listen: ":0", StoreDir: "nodes", Seeds: []*descriptor.Descriptor{}})

	// --- Assert ---
	require.NoError(t, err)
	require.NotNil(t, cfg.Seeds)
	require.Empty(t, cfg.Seeds)
}

func TestDefaultSeeds(t *testing.T) {
	// --- Act ---
	seeds := DefaultSeeds()

	// --- Assert ---
	require.Len(t, seeds, 2)
	require.Equal(t, "in_default", seeds[0].Key())
	require.Equal(t, []string{"text", "number", "flag"}, seeds[0].FieldNames())
	require.Equal(t, "out_default", seeds[1].Key())
	require.Equal(t, []string{"output_text", "output_number", "output_flag"}, seeds[1].FieldNames())
}
