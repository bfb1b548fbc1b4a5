package apiutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Opsboard/internal/api/authz"
)

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// ErrorResponse is the JSON body of a failed API call.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WriteError writes err as JSON. HandlerError keeps its status and message;
// anything else is logged and reported as a 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.Ctx(r.Context())
	var herr HandlerError
	if errors.As(err, &herr) {
		event := logger.Warn()
		if herr.Status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.Err(herr.Err).Int("status", herr.Status).Msg(herr.Message)
		if writeErr := WriteJSON(w, herr.Status, ErrorResponse{Message: herr.Message}); writeErr != nil {
			logger.Error().Err(writeErr).Msg("Failed to write error response")
		}
		return
	}
	logger.Error().Err(err).Msg("Unhandled request error")
	if writeErr := WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"}); writeErr != nil {
		logger.Error().Err(writeErr).Msg("Failed to write error response")
	}
}

// RequireUser rejects the request with 401 when no operator is signed in.
func RequireUser(w http.ResponseWriter, r *http.Request) bool {
	if err := authz.RequireUser(r.Context()); err != nil {
		log.Ctx(r.Context()).Warn().Str("path", r.URL.Path).Msg("Access denied: unauthenticated")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

// RenderHTMLComponent buffers component so a render failure can still become a
// clean 500. headers are set before the body is written.
func RenderHTMLComponent(ctx context.Context, w http.ResponseWriter, component templ.Component, headers map[string]string, logMessage, errorMessage string) bool {
	return RenderHTMLStatus(ctx, w, http.StatusOK, component, headers, logMessage, errorMessage)
}

// RenderHTMLStatus is RenderHTMLComponent with an explicit status code.
func RenderHTMLStatus(ctx context.Context, w http.ResponseWriter, status int, component templ.Component, headers map[string]string, logMessage, errorMessage string) bool {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg(logMessage)
		http.Error(w, errorMessage, http.StatusInternalServerError)
		return false
	}
	for k, v := range headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to write HTML response")
		return false
	}
	return true
}
