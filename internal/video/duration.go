package video

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatDuration renders a seconds count as m:ss.
// Values that are not an integer are returned unchanged.
func FormatDuration(duration string) string {
	total, err := strconv.Atoi(strings.TrimSpace(duration))
	if err != nil || total < 0 {
		return duration
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
