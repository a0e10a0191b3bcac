package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/relaygrid/internal/adapter"
	"github.com/vk/relaygrid/internal/api"
	"github.com/vk/relaygrid/internal/descriptor"
	"github.com/vk/relaygrid/internal/storewatch"
)

const (
	DefaultListen    = ":8188"
	DefaultStoreDir  = "saved_nodes"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Listen      string // host:port of the HTTP server
	Prefix      string // API route prefix
	ClassPrefix string // prefix of host class names

	StoreDir    string
	WatchStore  bool
	StoreResync string // cron schedule, empty disables

	EventsEnabled bool

	LogFormat string
	LogLevel  string

	// Seeds are created at startup when absent. Nil selects DefaultSeeds;
	// an empty, non-nil slice disables seeding.
	Seeds []*descriptor.Descriptor
}

// NewConfig validates cfg and fills in defaults for optional fields.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Listen == "" {
		return nil, errors.New("Listen is a required configuration field and cannot be empty")
	}
	if cfg.StoreDir == "" {
		return nil, errors.New("StoreDir is a required configuration field and cannot be empty")
	}

	if cfg.Prefix == "" {
		cfg.Prefix = api.DefaultPrefix
	}
	if !strings.HasPrefix(cfg.Prefix, "/") {
		return nil, fmt.Errorf("invalid prefix %q: must start with '/'", cfg.Prefix)
	}
	if cfg.ClassPrefix == "" {
		cfg.ClassPrefix = adapter.DefaultClassPrefix
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	if cfg.StoreResync != "" {
		if err := storewatch.ValidateSchedule(cfg.StoreResync); err != nil {
			return nil, err
		}
	}

	if cfg.Seeds == nil {
		cfg.Seeds = DefaultSeeds()
	}
	return &cfg, nil
}

// DefaultSeeds are the example descriptors created on first start.
func DefaultSeeds() []*descriptor.Descriptor {
	return []*descriptor.Descriptor{
		{
			ID:          "default",
			Group:       descriptor.GroupIn,
			Fields:      descriptor.Compile(descriptor.NewFields("text", "STRING", "number", "INT", "flag", "BOOLEAN")),
			DisplayName: "Example input",
		},
		{
			ID:          "default",
			Group:       descriptor.GroupOut,
			Fields:      descriptor.Compile(descriptor.NewFields("output_text", "STRING", "output_number", "INT", "output_flag", "BOOLEAN")),
			DisplayName: "Example output",
		},
	}
}
