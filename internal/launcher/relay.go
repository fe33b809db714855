// Package launcher provides the ways a download URL can be handed to a
// browser: relayed to the page over websocket, or driven in headless Chrome.
package launcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rizkirmdhn/vidloader/pkg/models"
)

// ErrNoClients is returned when no browser is connected to receive a download
var ErrNoClients = errors.New("no browser connected to start the download")

// Broadcaster pushes a message to every connected page
type Broadcaster interface {
	Broadcast(message []byte)
	ClientCount() int
}

// RelayLauncher asks the connected pages to click a download link
type RelayLauncher struct {
	hub Broadcaster
}

// NewRelayLauncher creates a launcher sending to hub
func NewRelayLauncher(hub Broadcaster) *RelayLauncher {
	return &RelayLauncher{hub: hub}
}

// Launch sends the download instruction. The page builds the anchor, so the
// transfer itself is not observed here.
func (l *RelayLauncher) Launch(ctx context.Context, target, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.hub.ClientCount() == 0 {
		return ErrNoClients
	}

	msg, err := json.Marshal(models.LaunchRequest{
		Type:     models.EventDownload,
		URL:      target,
		Filename: filename,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal download message: %w", err)
	}

	l.hub.Broadcast(msg)
	return nil
}
