package models

import (
	"encoding/json"
	"time"
)

// Platform is the coarse source site classification derived from URL text
type Platform string

const (
	PlatformYouTube   Platform = "YouTube"
	PlatformInstagram Platform = "Instagram"
	PlatformTikTok    Platform = "TikTok"
	PlatformTwitter   Platform = "Twitter"
	PlatformFacebook  Platform = "Facebook"
	PlatformOther     Platform = "Other"
)

// Output formats offered by the backend
const (
	FormatVideo = "mp4"
	FormatAudio = "mp3"
)

// Default selections of a fresh form
const (
	DefaultFormat  = FormatVideo
	DefaultQuality = "720p"
)

// VideoInfo represents the metadata of a located video
type VideoInfo struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Thumbnail string            `json:"thumbnail"`
	Duration  string            `json:"duration"`
	Platform  Platform          `json:"platform"`
	URL       string            `json:"url"`
	Quality   []string          `json:"quality"`
	Formats   []json.RawMessage `json:"formats,omitempty"`

	// Synthetic marks placeholder metadata that did not come from the backend
	Synthetic bool `json:"synthetic"`
}

// DownloadOptions is the format and quality pair chosen for one download attempt
type DownloadOptions struct {
	Format  string `json:"format"`
	Quality string `json:"quality"`
}

// HistoryEntry represents a completed download in the recent list
type HistoryEntry struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Platform     Platform  `json:"platform"`
	DownloadedAt time.Time `json:"downloadedAt"`
	Format       string    `json:"format"`
}

// ValidFormat reports whether format is one of the offered output formats
func ValidFormat(format string) bool {
	return format == FormatVideo || format == FormatAudio
}
