package video

import (
	"strings"

	"github.com/rizkirmdhn/vidloader/pkg/models"
)

// platformHosts is evaluated in order, first match wins
var platformHosts = []struct {
	platform models.Platform
	hosts    []string
}{
	{models.PlatformYouTube, []string{"youtube.com", "youtu.be"}},
	{models.PlatformInstagram, []string{"instagram.com"}},
	{models.PlatformTikTok, []string{"tiktok.com"}},
	{models.PlatformTwitter, []string{"twitter.com", "x.com"}},
	{models.PlatformFacebook, []string{"facebook.com"}},
}

// DetectPlatform maps a URL to a platform by substring matching on its text.
// It does not validate the URL.
func DetectPlatform(rawURL string) models.Platform {
	for _, p := range platformHosts {
		for _, host := range p.hosts {
			if strings.Contains(rawURL, host) {
				return p.platform
			}
		}
	}
	return models.PlatformOther
}
