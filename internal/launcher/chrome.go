package launcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rizkirmdhn/vidloader/internal/common/config"
	"github.com/rizkirmdhn/vidloader/internal/common/logger"
	"github.com/rizkirmdhn/vidloader/pkg/utils"
	"github.com/sirupsen/logrus"
)

// ChromeLauncher opens the download URL in a Chrome instance and waits for
// the browser's download manager to finish the file
type ChromeLauncher struct {
	config *config.BrowserConfig
	log    *logger.ComponentLogger
}

// NewChromeLauncher creates a launcher saving into cfg.DownloadDir
func NewChromeLauncher(cfg *config.BrowserConfig, log *logrus.Logger) *ChromeLauncher {
	return &ChromeLauncher{
		config: cfg,
		log:    logger.NewComponentLogger(log, "chrome_launcher"),
	}
}

// createChromeContext builds the allocator from the browser configuration
func (l *ChromeLauncher) createChromeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.config.Headless),
	)
	if l.config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(l.config.UserAgent))
	}
	return chromedp.NewExecAllocator(ctx, opts...)
}

// Launch navigates to target and moves the finished file to filename.
// An existing file with that name is kept, the new one gets a numbered name.
func (l *ChromeLauncher) Launch(ctx context.Context, target, filename string) error {
	dir, err := filepath.Abs(l.config.DownloadDir)
	if err != nil {
		return fmt.Errorf("error resolving download directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating download directory: %w", err)
	}

	if l.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.config.Timeout)
		defer cancel()
	}

	allocCtx, allocCancel := l.createChromeContext(ctx)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(l.log.Printf))
	defer browserCancel()

	done := make(chan string, 1)
	failed := make(chan error, 1)

	fail := func(err error) {
		select {
		case failed <- err:
		default:
		}
	}

	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		switch e := ev.(type) {
		case *network.EventResponseReceived:
			if e.Type != network.ResourceTypeDocument {
				return
			}
			if err := checkDocumentResponse(e.Response); err != nil {
				fail(err)
			}

		case *browser.EventDownloadWillBegin:
			l.log.WithFields(logrus.Fields{
				"guid":      e.GUID,
				"suggested": e.SuggestedFilename,
			}).Debug("Download started")

		case *browser.EventDownloadProgress:
			switch e.State {
			case browser.DownloadProgressStateInProgress:
				l.log.WithFields(logrus.Fields{
					"guid":     e.GUID,
					"received": int64(e.ReceivedBytes),
					"total":    int64(e.TotalBytes),
				}).Debug("Download progress")
			case browser.DownloadProgressStateCompleted:
				select {
				case done <- e.GUID:
				default:
				}
			case browser.DownloadProgressStateCanceled:
				fail(fmt.Errorf("download canceled by browser"))
			}
		}
	})

	l.log.WithFields(logrus.Fields{
		"target": target,
		"dir":    dir,
	}).Info("Opening download in Chrome")

	err = chromedp.Run(browserCtx,
		network.Enable(),
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllowAndName).
			WithDownloadPath(dir).
			WithEventsEnabled(true),
		chromedp.Navigate(target),
	)
	// Navigating to an attachment aborts the page load
	if err != nil && !strings.Contains(err.Error(), "net::ERR_ABORTED") {
		return fmt.Errorf("error navigating to download: %w", err)
	}

	select {
	case guid := <-done:
		dest, err := saveDownload(dir, guid, filename)
		if err != nil {
			return err
		}
		l.log.WithField("file", dest).Info("Download saved")
		return nil
	case err := <-failed:
		return err
	case <-browserCtx.Done():
		return browserCtx.Err()
	}
}

// checkDocumentResponse fails when the navigation rendered a page instead of
// starting a download. Attachments and non-renderable bodies pass.
func checkDocumentResponse(resp *network.Response) error {
	if resp == nil {
		return nil
	}
	if resp.Status < 200 || resp.Status > 299 {
		return fmt.Errorf("backend responded with status %d", resp.Status)
	}

	for key, value := range resp.Headers {
		if strings.EqualFold(key, "Content-Disposition") {
			if v, ok := value.(string); ok && strings.Contains(strings.ToLower(v), "attachment") {
				return nil
			}
		}
	}

	mime := strings.ToLower(resp.MimeType)
	switch {
	case strings.HasPrefix(mime, "text/"), mime == "application/json", mime == "application/xhtml+xml":
		return fmt.Errorf("backend returned a %s page instead of a file", resp.MimeType)
	}
	return nil
}

// saveDownload moves the file Chrome stored under guid to a unique
// sanitized name in dir
func saveDownload(dir, guid, filename string) (string, error) {
	dest, err := utils.UniquePath(dir, utils.SanitizeFilename(filename))
	if err != nil {
		return "", fmt.Errorf("error resolving download name: %w", err)
	}
	if err := os.Rename(filepath.Join(dir, guid), dest); err != nil {
		return "", fmt.Errorf("error renaming download: %w", err)
	}
	return dest, nil
}
