package launcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chromedp/cdproto/network"
	"github.com/rizkirmdhn/vidloader/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChromeLauncher(t *testing.T) {
	cfg := &config.BrowserConfig{DownloadDir: "out", Headless: true}
	l := NewChromeLauncher(cfg, nil)

	assert.Same(t, cfg, l.config)
	assert.Equal(t, "chrome_launcher", l.log.Component())
}

func TestCheckDocumentResponse(t *testing.T) {
	tests := []struct {
		name    string
		resp    *network.Response
		wantErr bool
	}{
		{"no response", nil, false},
		{"attachment", &network.Response{Status: 200, MimeType: "text/html", Headers: network.Headers{"content-disposition": `attachment; filename="a.mp4"`}}, false},
		{"binary body", &network.Response{Status: 200, MimeType: "video/mp4"}, false},
		{"json error", &network.Response{Status: 500, MimeType: "application/json"}, true},
		{"not found attachment", &network.Response{Status: 404, Headers: network.Headers{"Content-Disposition": "attachment"}}, true},
		{"rendered page", &network.Response{Status: 200, MimeType: "text/html"}, true},
		{"json page", &network.Response{Status: 200, MimeType: "application/json"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkDocumentResponse(tt.resp)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveDownload(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guid-1"), []byte("one"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guid-2"), []byte("two"), 0644))

	first, err := saveDownload(dir, "guid-1", "AC/DC: Live.mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "AC_DC_ Live.mp4"), first)

	second, err := saveDownload(dir, "guid-2", "AC/DC: Live.mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "AC_DC_ Live (1).mp4"), second)

	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
	assert.NoFileExists(t, filepath.Join(dir, "guid-2"))

	_, err = saveDownload(dir, "missing", "x.mp4")
	assert.Error(t, err)
}
