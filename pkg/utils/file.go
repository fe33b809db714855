package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SanitizeFilename replaces characters that are not allowed in file names
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)

	name = strings.TrimSpace(name)
	if name == "" || strings.Trim(name, ".") == "" {
		return fmt.Sprintf("download-%d", time.Now().Unix())
	}
	return name
}

// UniquePath returns dir/name, or dir/"name (n).ext" when that file exists
func UniquePath(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	candidate := filepath.Join(dir, name)
	for n := 1; ; n++ {
		_, err := os.Stat(candidate)
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, n, ext))
	}
}
