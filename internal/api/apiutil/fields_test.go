package apiutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNullDate(t *testing.T) {
	tests := map[string]bool{
		"2025-03-05":  true,
		" 2025-03-05": true,
		"":            false,
		"05/03/2025":  false,
		"2025-02-30":  false,
		"2025-3-5":    false,
	}
	for in, valid := range tests {
		got := NullDate(in)
		if got.Valid != valid {
			t.Fatalf("NullDate(%q).Valid = %v, want %v", in, got.Valid, valid)
		}
		if valid && FormatNullDate(got) != "2025-03-05" {
			t.Fatalf("FormatNullDate(NullDate(%q)) = %q", in, FormatNullDate(got))
		}
	}
}

func TestParseOptionalDate(t *testing.T) {
	got, err := ParseOptionalDate("", "start", time.UTC)
	if err != nil || !got.IsZero() {
		t.Fatalf("ParseOptionalDate(empty) = %v, %v", got, err)
	}
	if _, err := ParseOptionalDate("yesterday", "start", time.UTC); err == nil {
		t.Fatal("ParseOptionalDate(yesterday) error = nil, want error")
	}
}

func TestFlexibleID(t *testing.T) {
	var body struct {
		ID FlexibleID `json:"id"`
	}
	for _, raw := range []string{`{"id":42}`, `{"id":"42"}`} {
		if err := json.Unmarshal([]byte(raw), &body); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", raw, err)
		}
		if body.ID.String() != "42" {
			t.Fatalf("Unmarshal(%s) id = %q, want 42", raw, body.ID)
		}
	}
}

func TestDecodeJSONRejectsTrailingData(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}{"a":2}`))
	var dst struct {
		A int `json:"a"`
	}
	if err := DecodeJSON(r, &dst); err == nil {
		t.Fatal("DecodeJSON() error = nil, want error")
	}
}

func TestWriteErrorUsesHandlerStatus(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	WriteError(rec, r, HandlerError{Status: http.StatusNotFound, Message: "Return item not found", Err: errors.New("no rows")})

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "Return item not found" || resp.Success {
		t.Fatalf("response = %+v", resp)
	}

	rec = httptest.NewRecorder()
	WriteError(rec, r, errors.New("boom"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
