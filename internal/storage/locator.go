package storage

import (
	"net/url"
	"path"
	"strings"
)

// Locator maps display names to remote keys and public URLs.
type Locator struct {
	Bucket  string
	Prefix  string
	BaseURL string
}

// ObjectKey returns the remote key for a display name.
func (l Locator) ObjectKey(name string) string {
	prefix := strings.Trim(l.Prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// PublicURL returns the CDN URL for a remote key.
func (l Locator) PublicURL(key string) string {
	escaped := make([]string, 0)
	for _, part := range strings.Split(key, "/") {
		escaped = append(escaped, url.PathEscape(part))
	}
	return strings.TrimRight(l.BaseURL, "/") + "/" + strings.Join(escaped, "/")
}
