package storewatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/relaygrid/internal/catalog"
	"github.com/vk/relaygrid/internal/descriptor"
	"github.com/vk/relaygrid/internal/filestore"
	"github.com/vk/relaygrid/internal/hostcatalog"
)

type recordingReloader struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingReloader) ReloadOne(_ context.Context, group descriptor.Group, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, descriptor.QualifiedKey(group, id))
	return true
}

func (r *recordingReloader) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	select {
	case <-w.Ready():
	case err := <-done:
		t.Fatalf("watcher exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not become ready")
	}
}

func TestWatcher_ReloadsWrittenDocuments(t *testing.T) {
	// --- Arrange ---
	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	reloader := &recordingReloader{}
	w := New(store, reloader, WithDebounce(20*time.Millisecond))
	startWatcher(t, w)

	// --- Act ---
	ok := store.Save(context.Background(), &descriptor.Descriptor{
		ID:          "t1",
		Group:       descriptor.GroupOut,
		DisplayName: "Result",
	})
	require.True(t, ok)

	// --- Assert ---
	assert.Eventually(t, func() bool {
		calls := reloader.snapshot()
		return len(calls) == 1 && calls[0] == "out_t1"
	}, 5*time.Second, 20*time.Millisecond, "one debounced reload for the saved document")
}

func TestWatcher_EndToEndWithCatalog(t *testing.T) {
	// --- Arrange ---
	ctx := context.Background()
	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	cat := catalog.New(hostcatalog.New(), catalog.WithStore(store))
	startWatcher(t, New(store, cat, WithDebounce(20*time.Millisecond)))

	// --- Act ---
	// Another process drops a document straight into the store.
	external := &descriptor.Descriptor{
		ID:          "dropped",
		Group:       descriptor.GroupIn,
		Fields:      descriptor.Compile(descriptor.NewFields("n", "INT")),
		DisplayName: "Dropped in",
	}
	require.True(t, store.Save(ctx, external))

	// --- Assert ---
	assert.Eventually(t, func() bool {
		entry, err := cat.Get(ctx, "in", "dropped")
		return err == nil && entry.Descriptor.DisplayName == "Dropped in"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestResync_ChecksEveryStoredDocument(t *testing.T) {
	ctx := context.Background()
	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	for _, d := range []*descriptor.Descriptor{
		{ID: "a", Group: descriptor.GroupIn, DisplayName: "A"},
		{ID: "b", Group: descriptor.GroupOut, DisplayName: "B"},
	} {
		require.True(t, store.Save(ctx, d))
	}
	reloader := &recordingReloader{}

	n := New(store, reloader).Resync(ctx)

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"in_a", "out_b"}, reloader.snapshot())
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("@every 5m"))
	assert.NoError(t, ValidateSchedule("*/10 * * * *"))
	assert.Error(t, ValidateSchedule("whenever"))
}

func TestRun_InvalidScheduleFails(t *testing.T) {
	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	err = New(store, &recordingReloader{}, WithResync("not a schedule")).Run(context.Background())

	assert.Error(t, err)
}
