// Package watch implements `relaygrid watch`: a socket.io client that
// prints catalog change events of a running server.
package watch

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/relaygrid/internal/catalog"
	"github.com/vk/relaygrid/internal/ctxlog"
)

// DefaultConnectTimeout bounds the wait for the initial connection.
const DefaultConnectTimeout = 15 * time.Second

// Options configures a watch session.
type Options struct {
	// URL of the server's socket.io endpoint, e.g. http://localhost:8188/socket.io/.
	URL                string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// Run connects to the server and writes one line per catalog event to out
// until ctx is cancelled.
func Run(ctx context.Context, out io.Writer, opts Options) error {
	logger := ctxlog.FromContext(ctx).With("component", "watch", "url", opts.URL)

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("URL %q must include a scheme and host", opts.URL)
	}
	path := parsedURL.Path
	if path == "" || path == "/" {
		path = "/socket.io/"
	}
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	sockOpts := socket.DefaultOptions()
	sockOpts.SetPath(path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sockOpts)
	client := manager.Socket("/", sockOpts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		client.Disconnect()
	}()

	connected := make(chan error, 1)
	client.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected, waiting for catalog events.", "sid", client.Id())
		connected <- nil
	})
	client.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connected <- err
	})

	printer := &Printer{out: out}
	for _, kind := range []catalog.EventKind{catalog.EventCreated, catalog.EventDeleted} {
		client.On(types.EventName(kind), func(args ...any) {
			if err := printer.Print(kind, args...); err != nil {
				logger.Warn("Failed to print event.", "event", kind, "error", err)
			}
		})
	}

	client.Connect()

	select {
	case err := <-connected:
		if err != nil {
			return fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}

	<-ctx.Done()
	return nil
}

// Printer formats catalog events as single lines.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer) *Printer { return &Printer{out: out} }

// Print writes one event. The payload is whatever the server emitted,
// normally a catalog.Event decoded as a generic JSON object.
func (p *Printer) Print(kind catalog.EventKind, args ...any) error {
	var ev catalog.Event
	if len(args) > 0 {
		raw, err := json.Marshal(args[0])
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &ev); err != nil {
			return err
		}
	}

	verb := "+"
	if kind == catalog.EventDeleted {
		verb = "-"
	}
	line := strings.TrimSpace(fmt.Sprintf("%s %s/%s %s %q", verb, ev.Group, ev.ID, ev.ClassName, ev.DisplayName))

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintln(p.out, line)
	return err
}
