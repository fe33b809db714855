package controller

import (
	"github.com/rizkirmdhn/vidloader/pkg/models"
)

// State is the form state rendered by the panel
type State struct {
	URL         string                `json:"url"`
	VideoInfo   *models.VideoInfo     `json:"videoInfo"`
	Loading     bool                  `json:"loading"`
	Downloading bool                  `json:"downloading"`
	Progress    float64               `json:"progress"`
	Error       string                `json:"error"`
	Format      string                `json:"format"`
	Quality     string                `json:"quality"`
	History     []models.HistoryEntry `json:"history"`
}

func newState() State {
	return State{
		Format:  models.DefaultFormat,
		Quality: models.DefaultQuality,
		History: []models.HistoryEntry{},
	}
}

// Busy reports whether a lookup or download is in flight
func (s State) Busy() bool {
	return s.busy()
}

func (s State) busy() bool {
	return s.Loading || s.Downloading
}

func (s State) options() models.DownloadOptions {
	return models.DownloadOptions{Format: s.Format, Quality: s.Quality}
}

// clone copies the history slice. VideoInfo is shared, it is never
// modified once stored.
func (s State) clone() State {
	out := s
	out.History = make([]models.HistoryEntry, len(s.History))
	copy(out.History, s.History)
	return out
}

func (s State) equal(o State) bool {
	if s.URL != o.URL || s.VideoInfo != o.VideoInfo ||
		s.Loading != o.Loading || s.Downloading != o.Downloading ||
		s.Progress != o.Progress || s.Error != o.Error ||
		s.Format != o.Format || s.Quality != o.Quality ||
		len(s.History) != len(o.History) {
		return false
	}
	for i := range s.History {
		if s.History[i] != o.History[i] {
			return false
		}
	}
	return true
}

// prependHistory puts entry first and keeps at most HistoryLimit entries
func prependHistory(history []models.HistoryEntry, entry models.HistoryEntry) []models.HistoryEntry {
	keep := len(history)
	if keep > HistoryLimit-1 {
		keep = HistoryLimit - 1
	}
	out := make([]models.HistoryEntry, 0, keep+1)
	out = append(out, entry)
	return append(out, history[:keep]...)
}
