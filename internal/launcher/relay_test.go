package launcher

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rizkirmdhn/vidloader/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHub struct {
	clients  int
	messages [][]byte
}

func (h *fakeHub) Broadcast(message []byte) {
	h.messages = append(h.messages, message)
}

func (h *fakeHub) ClientCount() int {
	return h.clients
}

func TestRelayLauncher_Launch(t *testing.T) {
	hub := &fakeHub{clients: 1}
	l := NewRelayLauncher(hub)

	err := l.Launch(context.Background(), "http://backend/api/download?url=x", "Clip.mp4")
	require.NoError(t, err)
	require.Len(t, hub.messages, 1)

	var req models.LaunchRequest
	require.NoError(t, json.Unmarshal(hub.messages[0], &req))
	assert.Equal(t, models.EventDownload, req.Type)
	assert.Equal(t, "http://backend/api/download?url=x", req.URL)
	assert.Equal(t, "Clip.mp4", req.Filename)
}

func TestRelayLauncher_NoClients(t *testing.T) {
	hub := &fakeHub{}
	err := NewRelayLauncher(hub).Launch(context.Background(), "u", "f")

	assert.ErrorIs(t, err, ErrNoClients)
	assert.Empty(t, hub.messages)
}

func TestRelayLauncher_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRelayLauncher(&fakeHub{clients: 2}).Launch(ctx, "u", "f")
	assert.ErrorIs(t, err, context.Canceled)
}
