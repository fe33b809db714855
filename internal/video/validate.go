package video

import (
	"net/url"
	"strings"
)

// Schemes that cannot be used without a host
var hostSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ws":    true,
	"wss":   true,
	"ftp":   true,
}

// ValidateURL reports whether s parses as an absolute URL.
// Surrounding whitespace is ignored.
func ValidateURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}

	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme == "" {
		return false
	}

	if hostSchemes[strings.ToLower(u.Scheme)] {
		return u.Host != ""
	}
	return true
}

// CheckInput returns an InvalidInputError for empty or malformed input
func CheckInput(s string) error {
	if strings.TrimSpace(s) == "" {
		return &InvalidInputError{Msg: MsgEmptyURL}
	}
	if !ValidateURL(s) {
		return &InvalidInputError{Msg: MsgInvalidURL}
	}
	return nil
}
