package utils

import (
	"errors"
	"path"
	"strings"
	"unicode"
)

// ErrInvalidName is returned for display names that cannot become object keys.
var ErrInvalidName = errors.New("invalid display name")

// SanitizeDisplayName trims a display name and rejects values that are empty,
// too long, contain path separators or control characters.
func SanitizeDisplayName(name string) (string, error) {
	clean := strings.TrimSpace(name)
	if clean == "" || len(clean) > 255 {
		return "", ErrInvalidName
	}
	if strings.ContainsAny(clean, "/\\") || clean == "." || clean == ".." {
		return "", ErrInvalidName
	}
	for _, r := range clean {
		if unicode.IsControl(r) {
			return "", ErrInvalidName
		}
	}
	return clean, nil
}

// FormatFromName returns the lower-cased extension of name without the dot.
func FormatFromName(name string) string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
}
