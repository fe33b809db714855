package video

import (
	"context"
	"fmt"

	"github.com/rizkirmdhn/vidloader/internal/common/logger"
	"github.com/rizkirmdhn/vidloader/pkg/models"
	"github.com/sirupsen/logrus"
)

// Launcher initiates a download of the resource at target, saving it under
// the suggested filename. Completion is not reported back.
type Launcher interface {
	Launch(ctx context.Context, target, filename string) error
}

// ProgressFunc receives download progress in percent
type ProgressFunc func(progress float64)

// Trigger builds backend download URLs and hands them to a Launcher
type Trigger struct {
	baseURL  string
	launcher Launcher
	log      *logger.ComponentLogger
}

// NewTrigger creates a download trigger for the backend at baseURL
func NewTrigger(baseURL string, launcher Launcher, log *logrus.Logger) *Trigger {
	return &Trigger{
		baseURL:  baseURL,
		launcher: launcher,
		log:      logger.NewComponentLogger(log, "download_trigger"),
	}
}

// DownloadURL returns the backend endpoint serving info with opts
func (t *Trigger) DownloadURL(info *models.VideoInfo, opts models.DownloadOptions) string {
	switch info.Platform {
	case models.PlatformYouTube:
		return endpoint(t.baseURL, PathDownloadYouTube,
			"url", info.URL, "format", opts.Format, "quality", opts.Quality)
	case models.PlatformInstagram:
		// format and quality are not part of this endpoint
		return endpoint(t.baseURL, PathDownloadInstagram, "url", info.URL)
	default:
		return endpoint(t.baseURL, PathDownload,
			"url", info.URL, "format", opts.Format, "quality", opts.Quality)
	}
}

// Filename returns the suggested save name for a download
func Filename(info *models.VideoInfo, opts models.DownloadOptions) string {
	return fmt.Sprintf("%s.%s", info.Title, opts.Format)
}

// Download launches the backend download for info. onProgress is accepted
// for callers that render a progress bar, but is never invoked because the
// launcher does not observe the transfer.
func (t *Trigger) Download(ctx context.Context, info *models.VideoInfo, opts models.DownloadOptions, onProgress ProgressFunc) error {
	_ = onProgress

	target := t.DownloadURL(info, opts)
	filename := Filename(info, opts)

	t.log.WithFields(logrus.Fields{
		"platform": info.Platform,
		"target":   target,
		"filename": filename,
	}).Info("Launching download")

	if err := t.launcher.Launch(ctx, target, filename); err != nil {
		t.log.WithError(err).Error("Failed to launch download")
		return &DownloadError{Platform: info.Platform, Err: err}
	}

	return nil
}
