package apiutil

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Opsboard/internal/storage"
)

const (
	MediaField        = "media"
	MaxMediaFiles     = 5
	MaxMediaFileBytes = 10 << 20

	multipartMemory = 32 << 20
	formOverhead    = 1 << 20
)

// ParseMediaForm reads a multipart submission and returns its media files.
// Field values are available through r.FormValue afterwards.
func ParseMediaForm(w http.ResponseWriter, r *http.Request) ([]*multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxMediaFiles*MaxMediaFileBytes+formOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, HandlerError{Status: http.StatusRequestEntityTooLarge, Message: "Upload is too large", Err: err}
		}
		return nil, HandlerError{Status: http.StatusBadRequest, Message: "Invalid multipart form", Err: err}
	}

	files := r.MultipartForm.File[MediaField]
	if len(files) > MaxMediaFiles {
		return nil, HandlerError{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("At most %d media files are allowed", MaxMediaFiles),
		}
	}
	for _, fh := range files {
		if fh.Size > MaxMediaFileBytes {
			return nil, HandlerError{
				Status:  http.StatusRequestEntityTooLarge,
				Message: fmt.Sprintf("%s exceeds the 10MB limit", fh.Filename),
			}
		}
	}
	return files, nil
}

// StoreMedia uploads each file under its timestamped name and returns the
// names in upload order. When an upload fails, files already stored by this
// call are deleted before the error is returned.
func StoreMedia(ctx context.Context, store storage.ObjectStore, now func() time.Time, files []*multipart.FileHeader) ([]string, error) {
	names := make([]string, 0, len(files))
	if len(files) == 0 {
		return names, nil
	}
	if store == nil {
		return nil, storage.ErrNotConfigured
	}
	for _, fh := range files {
		name := storage.ObjectName(now(), fh.Filename)
		if err := putFile(ctx, store, name, fh); err != nil {
			discardStored(context.WithoutCancel(ctx), store, names)
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func discardStored(ctx context.Context, store storage.ObjectStore, names []string) {
	logger := log.Ctx(ctx)
	for _, name := range names {
		if err := store.Delete(ctx, name); err != nil {
			logger.Warn().Err(err).Str("file", name).Msg("Could not delete partially uploaded media")
		}
	}
}

func putFile(ctx context.Context, store storage.ObjectStore, name string, fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := store.Put(ctx, name, contentType, f); err != nil {
		return fmt.Errorf("store upload %s: %w", name, err)
	}
	return nil
}

// DeleteMedia removes every stored file named by a media column. Failures
// are logged and skipped.
func DeleteMedia(ctx context.Context, store storage.ObjectStore, raw string, logger *zerolog.Logger) int {
	if store == nil {
		return 0
	}
	deleted := 0
	for _, name := range storage.DecodeMediaList(raw) {
		if err := store.Delete(ctx, name); err != nil {
			logger.Warn().Err(err).Str("file", name).Msg("Could not delete stored media")
			continue
		}
		deleted++
	}
	return deleted
}
