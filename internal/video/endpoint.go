package video

import (
	"net/url"
	"strings"
)

// Backend endpoint paths relative to the configured base URL
const (
	PathInfoYouTube       = "api/info/youtube"
	PathDownloadYouTube   = "api/download/youtube"
	PathDownloadInstagram = "api/download/instagram-alt"
	PathDownload          = "api/download"
)

// endpoint joins base and path and appends params, given as key/value pairs.
// Parameters keep their order.
func endpoint(base, path string, params ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	b.WriteString("/")
	b.WriteString(path)

	for i := 0; i+1 < len(params); i += 2 {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(params[i]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[i+1]))
	}
	return b.String()
}
