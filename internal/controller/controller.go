// Package controller owns the state of the download form and sequences URL
// validation, metadata lookup and the download trigger in response to user
// actions.
package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rizkirmdhn/vidloader/internal/common/config"
	"github.com/rizkirmdhn/vidloader/internal/common/logger"
	"github.com/rizkirmdhn/vidloader/internal/video"
	"github.com/rizkirmdhn/vidloader/pkg/models"
	"github.com/sirupsen/logrus"
)

// HistoryLimit is the number of recent downloads kept
const HistoryLimit = 5

// ErrBusy is returned when an action arrives while a lookup or download runs
var ErrBusy = errors.New("a lookup or download is already in progress")

// Downloader starts the download of an active video
type Downloader interface {
	Download(ctx context.Context, info *models.VideoInfo, opts models.DownloadOptions, onProgress video.ProgressFunc) error
}

// Publisher sends completed downloads to the event bus
type Publisher interface {
	PublishJSON(exchange, routingKey string, data interface{}) error
}

// Observer receives a snapshot after every state change
type Observer func(State)

// Controller is the single owner of the form state
type Controller struct {
	// notifyMu orders observer calls the same way as state changes
	notifyMu sync.Mutex
	mu       sync.Mutex
	state    State

	remote    video.InfoFetcher
	synthetic video.InfoFetcher
	trigger   Downloader

	obsMu     sync.RWMutex
	observer  Observer
	publisher Publisher
	source    string

	now func() time.Time
	log *logger.ComponentLogger
}

// New creates a controller with default selections. remote serves YouTube,
// synthetic serves every other platform except Instagram.
func New(remote, synthetic video.InfoFetcher, trigger Downloader, log *logrus.Logger) *Controller {
	return &Controller{
		state:     newState(),
		remote:    remote,
		synthetic: synthetic,
		trigger:   trigger,
		now:       time.Now,
		log:       logger.NewComponentLogger(log, "controller"),
	}
}

// SetObserver registers the state change callback
func (c *Controller) SetObserver(fn Observer) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	c.observer = fn
}

// SetPublisher enables download events tagged with source
func (c *Controller) SetPublisher(p Publisher, source string) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	c.publisher = p
	c.source = source
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// SetURL replaces the URL text. Input is locked while busy.
func (c *Controller) SetURL(rawURL string) error {
	return c.mutate(func(s *State) error {
		if s.busy() {
			return ErrBusy
		}
		s.URL = rawURL
		return nil
	})
}

// SetFormat selects the output format used by the next download
func (c *Controller) SetFormat(format string) error {
	if !models.ValidFormat(format) {
		return &video.InvalidInputError{Msg: "Unsupported format: " + format}
	}
	return c.mutate(func(s *State) error {
		s.Format = format
		return nil
	})
}

// SetQuality selects the quality label used by the next download
func (c *Controller) SetQuality(quality string) error {
	quality = strings.TrimSpace(quality)
	if quality == "" {
		return &video.InvalidInputError{Msg: "Please choose a quality"}
	}
	return c.mutate(func(s *State) error {
		s.Quality = quality
		return nil
	})
}

// Submit validates the current URL and looks it up. Instagram URLs skip the
// lookup and go straight to the download trigger.
func (c *Controller) Submit(ctx context.Context) error {
	var (
		rawURL   string
		platform models.Platform
		opts     models.DownloadOptions
	)

	err := c.mutate(func(s *State) error {
		if s.busy() {
			return ErrBusy
		}
		s.Error = ""

		if err := video.CheckInput(s.URL); err != nil {
			s.Error = err.Error()
			return err
		}

		rawURL = strings.TrimSpace(s.URL)
		platform = video.DetectPlatform(rawURL)
		opts = s.options()
		s.VideoInfo = nil

		if platform == models.PlatformInstagram {
			s.Downloading = true
		} else {
			s.Loading = true
		}
		return nil
	})
	if err != nil {
		return err
	}

	log := c.log.WithFields(logrus.Fields{"url": rawURL, "platform": platform})

	if platform == models.PlatformInstagram {
		log.Info("Instagram URL, downloading without lookup")
		return c.downloadDirect(ctx, rawURL, opts)
	}

	fetcher := c.synthetic
	if platform == models.PlatformYouTube {
		fetcher = c.remote
	}

	log.Info("Looking up video info")
	info, err := fetcher.Fetch(ctx, rawURL)

	c.mutate(func(s *State) error {
		s.Loading = false
		if err != nil {
			s.Error = err.Error()
			return nil
		}
		s.VideoInfo = info
		return nil
	})

	if err != nil {
		log.WithError(err).Warn("Video info lookup failed")
		return err
	}

	log.WithField("title", info.Title).Info("Video info ready")
	return nil
}

// downloadDirect triggers the Instagram endpoint with minimal metadata.
// No history entry is recorded on this path.
func (c *Controller) downloadDirect(ctx context.Context, rawURL string, opts models.DownloadOptions) error {
	info := &models.VideoInfo{
		ID:        "",
		Title:     "Instagram Video",
		Thumbnail: "",
		Duration:  "",
		Platform:  models.PlatformInstagram,
		URL:       rawURL,
		Quality:   []string{"720p"},
	}

	err := c.trigger.Download(ctx, info, opts, nil)

	c.mutate(func(s *State) error {
		s.Downloading = false
		if err != nil {
			s.Error = err.Error()
		}
		return nil
	})

	if err != nil {
		c.log.WithError(err).Warn("Instagram download failed")
	}
	return err
}

// Download triggers the download of the active video with the current
// selections. It is a no-op when no video is active.
func (c *Controller) Download(ctx context.Context) error {
	var (
		info *models.VideoInfo
		opts models.DownloadOptions
	)

	err := c.mutate(func(s *State) error {
		if s.busy() {
			return ErrBusy
		}
		if s.VideoInfo == nil {
			return errNoVideo
		}
		s.Downloading = true
		s.Progress = 0
		s.Error = ""
		info = s.VideoInfo
		opts = s.options()
		return nil
	})
	if errors.Is(err, errNoVideo) {
		return nil
	}
	if err != nil {
		return err
	}

	err = c.trigger.Download(ctx, info, opts, c.reportProgress)

	var entry models.HistoryEntry
	c.mutate(func(s *State) error {
		s.Downloading = false
		if err != nil {
			s.Error = err.Error()
			return nil
		}
		entry = models.HistoryEntry{
			ID:           info.ID,
			Title:        info.Title,
			Platform:     info.Platform,
			DownloadedAt: c.now(),
			Format:       strings.ToUpper(opts.Format),
		}
		s.History = prependHistory(s.History, entry)
		return nil
	})

	if err != nil {
		c.log.WithError(err).Warn("Download failed")
		return err
	}

	c.publish(entry)
	return nil
}

// Clear discards the URL, video, error and progress. Selections and history
// are kept.
func (c *Controller) Clear() {
	c.mutate(func(s *State) error {
		s.URL = ""
		s.VideoInfo = nil
		s.Error = ""
		s.Progress = 0
		return nil
	})
}

func (c *Controller) reportProgress(progress float64) {
	c.mutate(func(s *State) error {
		s.Progress = progress
		return nil
	})
}

func (c *Controller) publish(entry models.HistoryEntry) {
	c.obsMu.RLock()
	p, source := c.publisher, c.source
	c.obsMu.RUnlock()

	if p == nil {
		return
	}

	event := models.DownloadEvent{Source: source, Entry: entry}
	if err := p.PublishJSON("", config.RoutingDownloadCompleted, event); err != nil {
		c.log.WithError(err).Error("Failed to publish download event")
	}
}

var errNoVideo = errors.New("no active video")

// mutate applies fn under the lock and notifies the observer if the state
// changed, whatever fn returned. Observers see snapshots in change order and
// must not call back into mutating methods.
func (c *Controller) mutate(fn func(s *State) error) error {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	before := c.state.clone()
	err := fn(&c.state)
	changed := !c.state.equal(before)
	snap := c.state.clone()
	c.mu.Unlock()

	if changed {
		c.notify(snap)
	}
	return err
}

func (c *Controller) notify(s State) {
	c.obsMu.RLock()
	fn := c.observer
	c.obsMu.RUnlock()

	if fn != nil {
		fn(s)
	}
}
