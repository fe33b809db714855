package video

import (
	"fmt"

	"github.com/rizkirmdhn/vidloader/pkg/models"
)

// Messages shown for rejected input
const (
	MsgEmptyURL   = "Please enter a video URL"
	MsgInvalidURL = "Please enter a valid URL"
)

// InvalidInputError is returned before any request is made
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string {
	return e.Msg
}

// FetchError wraps a failed metadata lookup
type FetchError struct {
	Platform models.Platform
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to get %s video info: %v", e.Platform, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// DownloadError wraps a launcher failure
type DownloadError struct {
	Platform models.Platform
	Err      error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download failed: %s download failed: %v", e.Platform, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}
