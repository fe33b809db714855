package video

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/rizkirmdhn/vidloader/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLauncher struct {
	target   string
	filename string
	calls    int
	err      error
}

func (f *fakeLauncher) Launch(_ context.Context, target, filename string) error {
	f.calls++
	f.target = target
	f.filename = filename
	return f.err
}

func TestTrigger_DownloadURL(t *testing.T) {
	trigger := NewTrigger("https://backend.example/", &fakeLauncher{}, newTestLogger())
	opts := models.DownloadOptions{Format: "mp4", Quality: "720p"}

	tests := []struct {
		platform      models.Platform
		expectedPath  string
		expectOptions bool
	}{
		{models.PlatformYouTube, "/api/download/youtube", true},
		{models.PlatformInstagram, "/api/download/instagram-alt", false},
		{models.PlatformTikTok, "/api/download", true},
		{models.PlatformOther, "/api/download", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.platform), func(t *testing.T) {
			info := &models.VideoInfo{Platform: tt.platform, URL: "https://site.example/v?id=1&t=2", Title: "Clip"}
			u, err := url.Parse(trigger.DownloadURL(info, opts))
			require.NoError(t, err)

			assert.Equal(t, "backend.example", u.Host)
			assert.Equal(t, tt.expectedPath, u.Path)

			q := u.Query()
			assert.Equal(t, "https://site.example/v?id=1&t=2", q.Get("url"))
			if tt.expectOptions {
				assert.Equal(t, "mp4", q.Get("format"))
				assert.Equal(t, "720p", q.Get("quality"))
			} else {
				assert.Len(t, q, 1)
			}
		})
	}
}

func TestTrigger_Download(t *testing.T) {
	launcher := &fakeLauncher{}
	trigger := NewTrigger("http://localhost:5000", launcher, newTestLogger())
	info := &models.VideoInfo{Platform: models.PlatformYouTube, URL: "https://youtu.be/abc", Title: "My Song"}

	progressCalled := false
	err := trigger.Download(context.Background(), info, models.DownloadOptions{Format: "mp3", Quality: "720p"}, func(float64) {
		progressCalled = true
	})
	require.NoError(t, err)

	assert.Equal(t, 1, launcher.calls)
	assert.Equal(t, "My Song.mp3", launcher.filename)
	assert.Contains(t, launcher.target, "http://localhost:5000/api/download/youtube?")
	assert.False(t, progressCalled)
}

func TestTrigger_DownloadError(t *testing.T) {
	cause := errors.New("no browser")
	trigger := NewTrigger("", &fakeLauncher{err: cause}, newTestLogger())
	info := &models.VideoInfo{Platform: models.PlatformInstagram, URL: "https://instagram.com/p/1", Title: "Instagram Video"}

	err := trigger.Download(context.Background(), info, models.DownloadOptions{Format: "mp4"}, nil)

	var dlErr *DownloadError
	require.True(t, errors.As(err, &dlErr))
	assert.Equal(t, models.PlatformInstagram, dlErr.Platform)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "download failed: Instagram download failed: no browser", err.Error())
}

func TestEndpointRelativeBase(t *testing.T) {
	assert.Equal(t, "/api/download?url=x", endpoint("", PathDownload, "url", "x"))
	assert.Equal(t, "http://h/api/info/youtube", endpoint("http://h///", PathInfoYouTube))
}

func TestTrigger_DownloadURL_ParameterOrder(t *testing.T) {
	trigger := NewTrigger("http://h/", &fakeLauncher{}, newTestLogger())
	info := &models.VideoInfo{Platform: models.PlatformYouTube, URL: "https://youtu.be/a b&c"}

	got := trigger.DownloadURL(info, models.DownloadOptions{Format: "mp3", Quality: "1080p"})

	assert.Equal(t, "http://h/api/download/youtube?url=https%3A%2F%2Fyoutu.be%2Fa+b%26c&format=mp3&quality=1080p", got)
}
