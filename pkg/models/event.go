package models

// Message types pushed to websocket clients
const (
	EventState    = "state"
	EventDownload = "download"
	EventActivity = "activity"
)

// LaunchRequest asks a connected browser to start a download
type LaunchRequest struct {
	Type     string `json:"type"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// DownloadEvent is published on the event bus after a completed download
type DownloadEvent struct {
	Source string       `json:"source"`
	Entry  HistoryEntry `json:"entry"`
}

// ActivityMessage relays a bus event to websocket clients
type ActivityMessage struct {
	Type   string       `json:"type"`
	Source string       `json:"source"`
	Entry  HistoryEntry `json:"entry"`
}
