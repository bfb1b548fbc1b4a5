package apiutil

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codr1/Opsboard/internal/testutil"
)

func TestStoreMedia(t *testing.T) {
	req := testutil.MultipartRequest(t, "/returns", MediaField, nil, []testutil.UploadFile{
		{Name: "a.jpg", Content: "first"},
		{Name: "b.jpg", Content: "second"},
	})
	files, err := ParseMediaForm(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("ParseMediaForm() error = %v", err)
	}

	store := testutil.NewObjectStore()
	now := func() time.Time { return time.UnixMilli(1741000000000) }

	names, err := StoreMedia(context.Background(), store, now, files)
	if err != nil {
		t.Fatalf("StoreMedia() error = %v", err)
	}
	want := []string{"1741000000000_a.jpg", "1741000000000_b.jpg"}
	if len(names) != 2 || names[0] != want[0] || names[1] != want[1] {
		t.Fatalf("names = %v, want %v", names, want)
	}
	if data, _, ok := store.Object(want[1]); !ok || string(data) != "second" {
		t.Fatalf("stored %q ok=%v", data, ok)
	}
}

func TestStoreMediaRemovesEarlierUploadsOnFailure(t *testing.T) {
	req := testutil.MultipartRequest(t, "/returns", MediaField, nil, []testutil.UploadFile{
		{Name: "a.jpg", Content: "first"},
		{Name: "b.jpg", Content: "second"},
		{Name: "c.jpg", Content: "third"},
	})
	files, err := ParseMediaForm(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("ParseMediaForm() error = %v", err)
	}

	store := testutil.NewObjectStore()
	store.PutErr = errors.New("boom")
	store.PutErrAt = 2
	now := func() time.Time { return time.UnixMilli(1741000000000) }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	names, err := StoreMedia(ctx, store, now, files)
	if err == nil {
		t.Fatal("StoreMedia() error = nil, want error")
	}
	if names != nil {
		t.Fatalf("names = %v, want nil", names)
	}
	if left := store.Names(); len(left) != 0 {
		t.Fatalf("objects left in storage: %v", left)
	}
	if deleted := store.Deleted(); len(deleted) != 1 || deleted[0] != "1741000000000_a.jpg" {
		t.Fatalf("deleted = %v", deleted)
	}
}

func TestStoreMediaWithoutStore(t *testing.T) {
	names, err := StoreMedia(context.Background(), nil, time.Now, nil)
	if err != nil || len(names) != 0 {
		t.Fatalf("empty upload: names = %v, err = %v", names, err)
	}

	req := testutil.MultipartRequest(t, "/returns", MediaField, nil, []testutil.UploadFile{{Name: "a.jpg", Content: "x"}})
	files, err := ParseMediaForm(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("ParseMediaForm() error = %v", err)
	}
	if _, err := StoreMedia(context.Background(), nil, time.Now, files); err == nil {
		t.Fatal("StoreMedia() error = nil, want not configured")
	}
}
