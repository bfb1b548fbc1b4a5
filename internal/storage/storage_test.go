package storage

import (
	"context"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/codr1/Opsboard/internal/config"
)

func TestObjectName(t *testing.T) {
	now := time.UnixMilli(1709450000123)
	tests := map[string]string{
		"photo.jpg":           "1709450000123_photo.jpg",
		"C:\\Users\\a\\b.png": "1709450000123_b.png",
		"../../etc/passwd":    "1709450000123_passwd",
		"":                    "1709450000123_upload",
		"  spaced name.mp4  ": "1709450000123_spaced name.mp4",
	}
	for in, want := range tests {
		if got := ObjectName(now, in); got != want {
			t.Fatalf("ObjectName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMediaListRoundTrip(t *testing.T) {
	if got := EncodeMediaList(nil); got != "[]" {
		t.Fatalf("EncodeMediaList(nil) = %q, want []", got)
	}
	names := []string{"1_a.jpg", "2_b.mp4"}
	if got := DecodeMediaList(EncodeMediaList(names)); !reflect.DeepEqual(got, names) {
		t.Fatalf("DecodeMediaList() = %v, want %v", got, names)
	}
}

func TestDecodeMediaListTreatsGarbageAsSingleName(t *testing.T) {
	if got := DecodeMediaList("1700000000000_legacy.jpg"); !reflect.DeepEqual(got, []string{"1700000000000_legacy.jpg"}) {
		t.Fatalf("DecodeMediaList() = %v", got)
	}
	if got := DecodeMediaList("  "); got != nil {
		t.Fatalf("DecodeMediaList(blank) = %v, want nil", got)
	}
}

func TestS3StoreSignedURLIsOffline(t *testing.T) {
	store, err := NewS3Store(context.Background(), config.StorageConfig{
		Bucket:          "opsboard-media",
		Region:          "ap-southeast-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
	})
	if err != nil {
		t.Fatalf("NewS3Store() error = %v", err)
	}

	signed, err := store.SignedURL(context.Background(), "1_a.jpg", 7*24*time.Hour)
	if err != nil {
		t.Fatalf("SignedURL() error = %v", err)
	}
	u, err := url.Parse(signed)
	if err != nil {
		t.Fatalf("parse signed url: %v", err)
	}
	if u.Host != "localhost:9000" || !strings.HasSuffix(u.Path, "/opsboard-media/1_a.jpg") {
		t.Fatalf("signed url = %s", signed)
	}
	if got := u.Query().Get("X-Amz-Expires"); got != "604800" {
		t.Fatalf("X-Amz-Expires = %q, want 604800", got)
	}
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
	if _, err := NewS3Store(context.Background(), config.StorageConfig{Region: "us-east-1"}); err == nil {
		t.Fatal("NewS3Store() error = nil, want error")
	}
}
