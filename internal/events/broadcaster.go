// Package events pushes committed catalog changes to socket.io subscribers.
//
// Each catalog.Event is emitted on the default namespace under its kind
// ("node_created" or "node_deleted") with the event itself as the payload.
// Delivery is best effort: nothing is queued for clients that are not
// connected when a change is committed.
package events

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/zishang520/socket.io/v2/socket"

	"github.com/vk/relaygrid/internal/catalog"
	"github.com/vk/relaygrid/internal/ctxlog"
)

// Path is where the socket.io endpoint is mounted.
const Path = "/socket.io/"

// Broadcaster is a catalog.Notifier backed by a socket.io server.
type Broadcaster struct {
	io          *socket.Server
	handler     http.Handler
	subscribers atomic.Int64
}

// New creates the socket.io server. ctx supplies the logger used for
// connection events.
func New(ctx context.Context) *Broadcaster {
	logger := ctxlog.FromContext(ctx).With("component", "events")

	opts := socket.DefaultServerOptions()
	opts.SetServeClient(false)
	io := socket.NewServer(nil, opts)

	b := &Broadcaster{io: io}
	_ = io.On("connection", func(clients ...any) {
		client, ok := clients[0].(*socket.Socket)
		if !ok {
			return
		}
		n := b.subscribers.Add(1)
		logger.Debug("Event subscriber connected.", "socket_id", client.Id(), "subscribers", n)

		_ = client.On("disconnect", func(reason ...any) {
			n := b.subscribers.Add(-1)
			logger.Debug("Event subscriber disconnected.", "socket_id", client.Id(), "reason", reason, "subscribers", n)
		})
	})
	b.handler = io.ServeHandler(nil)
	return b
}

// Handler serves the socket.io endpoint. Mount it at Path.
func (b *Broadcaster) Handler() http.Handler { return b.handler }

// Subscribers returns the number of connected clients.
func (b *Broadcaster) Subscribers() int64 { return b.subscribers.Load() }

// Notify implements catalog.Notifier.
func (b *Broadcaster) Notify(ctx context.Context, ev catalog.Event) {
	ctxlog.FromContext(ctx).Debug("Broadcasting catalog event.", "event", ev.Kind, "id", ev.ID, "group", ev.Group, "subscribers", b.Subscribers())
	b.io.Emit(string(ev.Kind), ev)
}

// Close disconnects every subscriber and stops the engine.
func (b *Broadcaster) Close() {
	b.io.Close(nil)
}
