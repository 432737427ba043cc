package utils

import (
	"net/url"
	"strings"
)

// EncodeURLWithSpaces re-encodes a URL that may contain raw spaces. Upstream
// image and link URLs occasionally arrive unencoded and must be %20-escaped
// before clients can fetch them.
func EncodeURLWithSpaces(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	encoded := parsed.Scheme + "://" + parsed.Host + parsed.EscapedPath()
	if parsed.RawQuery != "" {
		encoded += "?" + strings.ReplaceAll(parsed.RawQuery, " ", "%20")
	}
	return encoded, nil
}
