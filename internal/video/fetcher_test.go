package video

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rizkirmdhn/vidloader/pkg/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestRemoteFetcher_Fetch(t *testing.T) {
	var gotPath, gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotURL = r.URL.Query().Get("url")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"title":"T","thumbnail":"u","duration":"125","availableQualities":["720p"],"formats":[]}`)
	}))
	defer srv.Close()

	fetcher := NewRemoteFetcher(srv.URL+"/", srv.Client(), newTestLogger())
	info, err := fetcher.Fetch(context.Background(), "https://www.youtube.com/watch?v=abc12345678")
	require.NoError(t, err)

	assert.Equal(t, "/api/info/youtube", gotPath)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc12345678", gotURL)

	assert.Equal(t, "", info.ID)
	assert.Equal(t, "T", info.Title)
	assert.Equal(t, "u", info.Thumbnail)
	assert.Equal(t, "125", info.Duration)
	assert.Equal(t, models.PlatformYouTube, info.Platform)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc12345678", info.URL)
	assert.Equal(t, []string{"720p"}, info.Quality)
	assert.Empty(t, info.Formats)
	assert.False(t, info.Synthetic)
}

func TestRemoteFetcher_NumericDurationAndFormats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"title":"T","duration":212,"availableQualities":["1080p","360p"],"formats":[{"itag":18},"opaque"]}`)
	}))
	defer srv.Close()

	fetcher := NewRemoteFetcher(srv.URL, nil, newTestLogger())
	info, err := fetcher.Fetch(context.Background(), "https://youtu.be/abc12345678")
	require.NoError(t, err)

	assert.Equal(t, "212", info.Duration)
	require.Len(t, info.Formats, 2)
	assert.JSONEq(t, `{"itag":18}`, string(info.Formats[0]))
}

func TestRemoteFetcher_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non 2xx status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"title":`)
			},
		},
		{
			name: "bad duration type",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"duration":{"s":1}}`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			fetcher := NewRemoteFetcher(srv.URL, srv.Client(), newTestLogger())
			info, err := fetcher.Fetch(context.Background(), "https://youtube.com/watch?v=x")

			assert.Nil(t, info)
			var fetchErr *FetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, models.PlatformYouTube, fetchErr.Platform)
			assert.NotEmpty(t, err.Error())
		})
	}
}

func TestRemoteFetcher_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := NewRemoteFetcher(base, nil, newTestLogger()).Fetch(context.Background(), "https://youtube.com/watch?v=x")
	var fetchErr *FetchError
	assert.True(t, errors.As(err, &fetchErr))
}

func TestRemoteFetcher_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRemoteFetcher(srv.URL, nil, newTestLogger()).Fetch(ctx, "https://youtube.com/watch?v=x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSyntheticFetcher_Fetch(t *testing.T) {
	fetcher := NewSyntheticFetcher()
	info, err := fetcher.Fetch(context.Background(), "https://www.tiktok.com/@user/video/1")
	require.NoError(t, err)

	assert.Len(t, info.ID, 9)
	assert.Equal(t, "TikTok Video - Content Title", info.Title)
	assert.Equal(t, SyntheticThumbnail, info.Thumbnail)
	assert.Equal(t, "2:45", info.Duration)
	assert.Equal(t, models.PlatformTikTok, info.Platform)
	assert.Equal(t, []string{"1080p", "720p", "480p", "360p"}, info.Quality)
	assert.True(t, info.Synthetic)

	// quality list must not alias the package default
	info.Quality[0] = "changed"
	assert.Equal(t, "1080p", SyntheticQualities[0])

	other, err := fetcher.Fetch(context.Background(), "https://vimeo.com/1")
	require.NoError(t, err)
	assert.Equal(t, "Other Video - Content Title", other.Title)
	assert.NotEqual(t, info.ID, other.ID)
}
