package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/relaygrid/internal/catalog"
	"github.com/vk/relaygrid/internal/hostcatalog"
)

func TestBroadcaster_IsACatalogNotifier(t *testing.T) {
	// --- Arrange ---
	ctx := context.Background()
	b := New(ctx)
	t.Cleanup(b.Close)
	cat := catalog.New(hostcatalog.New(), catalog.WithNotifier(b))

	// --- Act ---
	_, err := cat.Create(ctx, catalog.CreateRequest{ID: "t1", Group: "in"})
	require.NoError(t, err)
	removed, err := cat.Delete(ctx, "in", "t1")
	require.NoError(t, err)

	// --- Assert ---
	assert.True(t, removed)
	assert.NotNil(t, b.Handler())
	assert.Zero(t, b.Subscribers())
}
