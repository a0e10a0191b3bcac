package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/relaygrid/internal/app"
	"github.com/vk/relaygrid/internal/hclconfig"
	"github.com/vk/relaygrid/internal/watch"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes the arguments of the server command. Settings are layered:
// built-in defaults, then HCL configuration files, then flags given
// explicitly on the command line. It returns a populated app.Config, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("relaygrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
relaygrid - A registry of runtime-defined workflow input and output nodes.

Usage:
  relaygrid [options] [CONFIG_PATH]
  relaygrid watch [options]

Arguments:
  CONFIG_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the configuration file or directory.")
	cFlag := flagSet.String("c", "", "Path to the configuration file or directory (shorthand).")
	listenFlag := flagSet.String("listen", app.DefaultListen, "Address of the HTTP server.")
	prefixFlag := flagSet.String("prefix", "/api", "Route prefix of the node API.")
	classPrefixFlag := flagSet.String("class-prefix", "relaygrid", "Prefix of host class names.")
	storeDirFlag := flagSet.String("store-dir", app.DefaultStoreDir, "Directory holding saved node documents.")
	watchStoreFlag := flagSet.Bool("watch-store", false, "Reload node documents edited outside the server.")
	storeResyncFlag := flagSet.String("store-resync", "", "Cron schedule for a full store resync, e.g. '*/10 * * * *'. Requires -watch-store.")
	eventsFlag := flagSet.Bool("events", false, "Broadcast catalog changes over socket.io.")
	logFormatFlag := flagSet.String("log-format", app.DefaultLogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", app.DefaultLogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *configFlag != "" {
		path = *configFlag
	} else if *cFlag != "" {
		path = *cFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Config path determined.", "path", path)

	cfg := app.Config{
		Listen:        *listenFlag,
		Prefix:        *prefixFlag,
		ClassPrefix:   *classPrefixFlag,
		StoreDir:      *storeDirFlag,
		WatchStore:    *watchStoreFlag,
		StoreResync:   *storeResyncFlag,
		EventsEnabled: *eventsFlag,
		LogFormat:     strings.ToLower(*logFormatFlag),
		LogLevel:      strings.ToLower(*logLevelFlag),
	}

	if path != "" {
		fileCfg, err := hclconfig.Load(context.Background(), path)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		explicit := map[string]bool{}
		flagSet.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		applyFile(&cfg, fileCfg, explicit)
	}

	if cfg.StoreResync != "" && !cfg.WatchStore {
		return nil, false, &ExitError{Code: 2, Message: "store resync requires the store watcher to be enabled"}
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "listen", config.Listen, "store_dir", config.StoreDir)
	return config, false, nil
}

// applyFile copies settings from the configuration files into cfg, except
// those whose flag was set explicitly.
func applyFile(cfg *app.Config, file *hclconfig.Config, explicit map[string]bool) {
	setString := func(flagName string, dst *string, src *string) {
		if src != nil && !explicit[flagName] {
			*dst = *src
		}
	}
	setBool := func(flagName string, dst *bool, src *bool) {
		if src != nil && !explicit[flagName] {
			*dst = *src
		}
	}

	setString("listen", &cfg.Listen, file.Listen)
	setString("prefix", &cfg.Prefix, file.Prefix)
	setString("class-prefix", &cfg.ClassPrefix, file.ClassPrefix)
	setString("store-dir", &cfg.StoreDir, file.StoreDir)
	setBool("watch-store", &cfg.WatchStore, file.WatchStore)
	setString("store-resync", &cfg.StoreResync, file.StoreResync)
	setBool("events", &cfg.EventsEnabled, file.EventsEnabled)
	setString("log-level", &cfg.LogLevel, file.LogLevel)
	setString("log-format", &cfg.LogFormat, file.LogFormat)

	if len(file.Descriptors) > 0 {
		cfg.Seeds = file.Descriptors
	}
}

// ParseWatch processes the arguments of the watch command.
func ParseWatch(args []string, output io.Writer) (*watch.Options, bool, error) {
	flagSet := flag.NewFlagSet("relaygrid watch", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Prints node_created and node_deleted events of a running relaygrid server.

Usage:
  relaygrid watch [options]

Options:
`)
		flagSet.PrintDefaults()
	}

	urlFlag := flagSet.String("url", "http://localhost:8188/socket.io/", "URL of the server's socket.io endpoint.")
	insecureFlag := flagSet.Bool("insecure", false, "Skip TLS certificate verification.")
	timeoutFlag := flagSet.Duration("connect-timeout", watch.DefaultConnectTimeout, "How long to wait for the initial connection.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if flagSet.NArg() > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected argument %q", flagSet.Arg(0))}
	}
	if *urlFlag == "" {
		return nil, false, &ExitError{Code: 2, Message: "-url cannot be empty"}
	}

	return &watch.Options{
		URL:                *urlFlag,
		InsecureSkipVerify: *insecureFlag,
		ConnectTimeout:     *timeoutFlag,
	}, false, nil
}
