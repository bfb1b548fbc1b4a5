// Package storage keeps uploaded request media in an object store and issues
// time-limited download URLs for it.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("object storage is not configured")

// ObjectStore is the subset of object storage the request handlers need.
type ObjectStore interface {
	Put(ctx context.Context, name, contentType string, body io.Reader) error
	Delete(ctx context.Context, name string) error
	SignedURL(ctx context.Context, name string, ttl time.Duration) (string, error)
}

// ObjectName builds the stored name of an upload: the upload time in unix
// milliseconds, an underscore, then the client's base file name.
func ObjectName(now time.Time, original string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(original), "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "upload"
	}
	return fmt.Sprintf("%d_%s", now.UnixMilli(), base)
}

// EncodeMediaList serializes stored names for the media column.
func EncodeMediaList(names []string) string {
	if names == nil {
		names = []string{}
	}
	data, _ := json.Marshal(names)
	return string(data)
}

// DecodeMediaList parses a media column. A value that is not a JSON list is
// treated as a single name.
func DecodeMediaList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return []string{raw}
	}
	return names
}
