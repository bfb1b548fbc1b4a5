package media

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/codr1/Opsboard/internal/testutil"
)

func setupMediaTest(t *testing.T) {
	t.Helper()
	store = nil
	initOnce = sync.Once{}
	InitHandlers(testutil.NewObjectStore(), 7*24*time.Hour)
	t.Cleanup(func() {
		store = nil
		initOnce = sync.Once{}
	})
}

func TestHandleSignedURL(t *testing.T) {
	setupMediaTest(t)

	recorder := httptest.NewRecorder()
	HandleSignedURL(recorder, httptest.NewRequest(http.MethodGet, "/api/signedUrl?file=1_a.jpg", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d", recorder.Code)
	}
	var resp signedURLResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SignedURL != "https://objects.test/1_a.jpg?ttl=168h0m0s" {
		t.Fatalf("signedUrl = %q", resp.SignedURL)
	}
}

func TestHandleSignedURL_MissingFile(t *testing.T) {
	setupMediaTest(t)

	recorder := httptest.NewRecorder()
	HandleSignedURL(recorder, httptest.NewRequest(http.MethodGet, "/api/signedUrl", nil))

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", recorder.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "File parameter is required." {
		t.Fatalf("error = %q", resp.Error)
	}
}

func TestHandleSignedURL_NoStore(t *testing.T) {
	store = nil
	initOnce = sync.Once{}

	recorder := httptest.NewRecorder()
	HandleSignedURL(recorder, httptest.NewRequest(http.MethodGet, "/api/signedUrl?file=x", nil))

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status: %d", recorder.Code)
	}
}
