package watch

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/relaygrid/internal/catalog"
)

func TestPrinter_FormatsEvents(t *testing.T) {
	// --- Arrange ---
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	payload := map[string]any{
		"kind":         "node_created",
		"id":           "t1",
		"group":        "in",
		"class_name":   "relaygrid_in_t1",
		"display_name": "Prompt",
	}

	// --- Act ---
	require.NoError(t, p.Print(catalog.EventCreated, payload))
	require.NoError(t, p.Print(catalog.EventDeleted, catalog.Event{ID: "t1", Group: "in", ClassName: "relaygrid_in_t1", DisplayName: "Prompt"}))

	// --- Assert ---
	assert.Equal(t, "+ in/t1 relaygrid_in_t1 \"Prompt\"\n- in/t1 relaygrid_in_t1 \"Prompt\"\n", buf.String())
}

func TestRun_RejectsBadURL(t *testing.T) {
	err := Run(context.Background(), &bytes.Buffer{}, Options{URL: "localhost:8188"})
	assert.Error(t, err)
}
