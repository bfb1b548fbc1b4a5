// internal/api/media/handlers.go
package media

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Opsboard/internal/api/apiutil"
	"github.com/codr1/Opsboard/internal/storage"
)

const signQueryTimeout = 10 * time.Second

var (
	store    storage.ObjectStore
	ttl      time.Duration
	initOnce sync.Once
)

type signedURLResponse struct {
	SignedURL string `json:"signedUrl"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s storage.ObjectStore, urlTTL time.Duration) {
	if s == nil {
		return
	}
	initOnce.Do(func() {
		store = s
		ttl = urlTTL
	})
}

// GET /api/signedUrl?file=
func HandleSignedURL(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	name := strings.TrimSpace(r.URL.Query().Get("file"))
	if name == "" {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "File parameter is required."})
		return
	}
	if store == nil {
		logger.Error().Msg("Object store not configured")
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "Failed to generate signed URL."})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), signQueryTimeout)
	defer cancel()

	url, err := store.SignedURL(ctx, name, ttl)
	if err != nil {
		logger.Error().Err(err).Str("file", name).Msg("Failed to generate signed URL")
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "Failed to generate signed URL."})
		return
	}
	writeJSON(w, r, http.StatusOK, signedURLResponse{SignedURL: url})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if err := apiutil.WriteJSON(w, status, payload); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write signed URL response")
	}
}
