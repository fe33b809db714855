package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rizkirmdhn/vidloader/internal/common/logger"
	"github.com/rizkirmdhn/vidloader/pkg/models"
	"github.com/sirupsen/logrus"
)

// Placeholder values used by the synthetic fetcher
const (
	SyntheticThumbnail = "https://images.pexels.com/photos/3945313/pexels-photo-3945313.jpeg?auto=compress&cs=tinysrgb&w=400"
	SyntheticDuration  = "2:45"
)

// SyntheticQualities is the quality list offered for placeholder metadata
var SyntheticQualities = []string{"1080p", "720p", "480p", "360p"}

// InfoFetcher looks up metadata for a video URL
type InfoFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*models.VideoInfo, error)
}

// RemoteFetcher asks the backend for YouTube metadata
type RemoteFetcher struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.ComponentLogger
}

// infoResponse is the body of api/info/youtube
type infoResponse struct {
	Title              string            `json:"title"`
	Thumbnail          string            `json:"thumbnail"`
	Duration           flexString        `json:"duration"`
	AvailableQualities []string          `json:"availableQualities"`
	Formats            []json.RawMessage `json:"formats"`
}

// flexString accepts either a JSON string or a JSON number
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("duration must be a string or number: %w", err)
	}
	*f = flexString(n.String())
	return nil
}

// NewRemoteFetcher creates a fetcher for the backend at baseURL.
// A nil httpClient uses a client without timeout.
func NewRemoteFetcher(baseURL string, httpClient *http.Client, log *logrus.Logger) *RemoteFetcher {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &RemoteFetcher{
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        logger.NewComponentLogger(log, "remote_fetcher"),
	}
}

// Fetch issues a single request to the info endpoint. There is no retry.
func (f *RemoteFetcher) Fetch(ctx context.Context, rawURL string) (*models.VideoInfo, error) {
	apiURL := endpoint(f.baseURL, PathInfoYouTube, "url", rawURL)
	f.log.WithField("endpoint", apiURL).Debug("Fetching video info")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, &FetchError{Platform: models.PlatformYouTube, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Platform: models.PlatformYouTube, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.log.WithFields(logrus.Fields{
			"endpoint": apiURL,
			"status":   resp.StatusCode,
		}).Warn("Info endpoint rejected request")
		return nil, &FetchError{
			Platform: models.PlatformYouTube,
			Err:      fmt.Errorf("failed to fetch video info: status %d", resp.StatusCode),
		}
	}

	var body infoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &FetchError{
			Platform: models.PlatformYouTube,
			Err:      fmt.Errorf("failed to decode video info: %w", err),
		}
	}

	return &models.VideoInfo{
		ID:        "",
		Title:     body.Title,
		Thumbnail: body.Thumbnail,
		Duration:  string(body.Duration),
		Platform:  models.PlatformYouTube,
		URL:       rawURL,
		Quality:   body.AvailableQualities,
		Formats:   body.Formats,
	}, nil
}

// SyntheticFetcher returns placeholder metadata without network access
type SyntheticFetcher struct {
	newID func() string
}

// NewSyntheticFetcher creates a fetcher producing random identifiers
func NewSyntheticFetcher() *SyntheticFetcher {
	return &SyntheticFetcher{newID: randomID}
}

// Fetch never fails, the result is marked Synthetic
func (f *SyntheticFetcher) Fetch(_ context.Context, rawURL string) (*models.VideoInfo, error) {
	platform := DetectPlatform(rawURL)
	quality := make([]string, len(SyntheticQualities))
	copy(quality, SyntheticQualities)

	return &models.VideoInfo{
		ID:        f.newID(),
		Title:     fmt.Sprintf("%s Video - Content Title", platform),
		Thumbnail: SyntheticThumbnail,
		Duration:  SyntheticDuration,
		Platform:  platform,
		URL:       rawURL,
		Quality:   quality,
		Synthetic: true,
	}, nil
}

// randomID returns 9 random hex characters
func randomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}
