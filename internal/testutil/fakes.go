package testutil

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/codr1/Opsboard/internal/storage"
)

// ObjectStore is an in-memory storage.ObjectStore.
type ObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	deleted []string
	puts    int

	// PutErr fails Put. When PutErrAt is set only that call (1-based) fails.
	PutErr   error
	PutErrAt int
}

var _ storage.ObjectStore = (*ObjectStore)(nil)

func NewObjectStore() *ObjectStore {
	return &ObjectStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *ObjectStore) Put(ctx context.Context, name, contentType string, body io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.PutErr != nil && (s.PutErrAt == 0 || s.PutErrAt == s.puts) {
		return s.PutErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[name] = data
	s.types[name] = contentType
	return nil
}

func (s *ObjectStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, name)
	s.deleted = append(s.deleted, name)
	return nil
}

func (s *ObjectStore) SignedURL(ctx context.Context, name string, ttl time.Duration) (string, error) {
	return "https://objects.test/" + name + "?ttl=" + ttl.String(), nil
}

// Names lists the stored objects in sorted order.
func (s *ObjectStore) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.objects))
	for name := range s.objects {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *ObjectStore) Object(name string) ([]byte, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[name]
	return data, s.types[name], ok
}

func (s *ObjectStore) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// SentEmail is one message captured by Mailer.
type SentEmail struct {
	Recipient string
	Subject   string
	Body      string
}

// Mailer captures sends on a buffered channel; receipts are sent
// asynchronously so tests wait on Sent.
type Mailer struct {
	Sent chan SentEmail
}

func NewMailer() *Mailer {
	return &Mailer{Sent: make(chan SentEmail, 8)}
}

func (m *Mailer) Send(ctx context.Context, recipient, subject, body string) error {
	m.Sent <- SentEmail{Recipient: recipient, Subject: subject, Body: body}
	return nil
}

// Wait returns the next captured email or fails after a second.
func (m *Mailer) Wait(t *testing.T) SentEmail {
	t.Helper()
	select {
	case e := <-m.Sent:
		return e
	case <-time.After(time.Second):
		t.Fatal("no email sent")
		return SentEmail{}
	}
}

// UploadFile is one file part of a multipart request.
type UploadFile struct {
	Name    string
	Content string
}

// MultipartRequest builds a POST with form fields and files under field.
func MultipartRequest(t *testing.T, target, field string, fields map[string]string, files []UploadFile) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(field, f.Name)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := io.WriteString(part, f.Content); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
