package video

import (
	"testing"

	"github.com/rizkirmdhn/vidloader/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected models.Platform
	}{
		{"youtube watch", "https://www.youtube.com/watch?v=abc12345678", models.PlatformYouTube},
		{"youtube short link", "https://youtu.be/abc12345678", models.PlatformYouTube},
		{"instagram reel", "https://www.instagram.com/reel/xyz/", models.PlatformInstagram},
		{"tiktok", "https://www.tiktok.com/@user/video/1", models.PlatformTikTok},
		{"twitter", "https://twitter.com/user/status/1", models.PlatformTwitter},
		{"x", "https://x.com/user/status/1", models.PlatformTwitter},
		{"facebook", "https://www.facebook.com/watch/?v=1", models.PlatformFacebook},
		{"other", "https://vimeo.com/1", models.PlatformOther},
		{"empty", "", models.PlatformOther},
		{"youtube wins over instagram", "https://instagram.com/?next=youtube.com", models.PlatformYouTube},
		{"instagram wins over tiktok", "https://tiktok.com/share?u=instagram.com", models.PlatformInstagram},
		{"tiktok wins over twitter", "https://twitter.com/i?ref=tiktok.com", models.PlatformTikTok},
		{"twitter wins over facebook", "https://facebook.com/share?u=x.com", models.PlatformTwitter},
		{"substring match on host suffix", "https://www.netflix.com/title/1", models.PlatformTwitter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPlatform(tt.url))
		})
	}
}
