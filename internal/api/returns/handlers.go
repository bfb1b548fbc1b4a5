// internal/api/returns/handlers.go
package returns

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Opsboard/internal/api/apiutil"
	"github.com/codr1/Opsboard/internal/api/authz"
	dbgen "github.com/codr1/Opsboard/internal/db/queries"
	"github.com/codr1/Opsboard/internal/email"
	"github.com/codr1/Opsboard/internal/storage"
	requeststempl "github.com/codr1/Opsboard/internal/templates/components/requests"
)

const returnsQueryTimeout = 10 * time.Second

type returnQueries interface {
	CreateReturnRequest(ctx context.Context, arg dbgen.CreateReturnRequestParams) (int64, error)
	ListReturnRequests(ctx context.Context) ([]dbgen.ReturnRequest, error)
	GetReturnRequestMedia(ctx context.Context, id int64) (sql.NullString, error)
	UpdateReturnRequest(ctx context.Context, arg dbgen.UpdateReturnRequestParams) (int64, error)
	DeleteReturnRequest(ctx context.Context, id int64) (int64, error)
}

var (
	queries  returnQueries
	store    storage.ObjectStore
	mailer   email.EmailSender
	appName  string
	initOnce sync.Once

	now = time.Now
)

// Return is the JSON shape of a stored return request.
type Return struct {
	ID             int64     `json:"id"`
	Applicant      string    `json:"applicant"`
	TrackingNumber string    `json:"trackingNumber"`
	Reason         *string   `json:"reason"`
	MediaUrls      []string  `json:"mediaUrls"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

type updateRequest struct {
	ID             apiutil.FlexibleID `json:"id"`
	TrackingNumber string             `json:"trackingNumber"`
	Reason         *string            `json:"reason"`
	Applicant      string             `json:"applicant"`
}

type updateResponse struct {
	Success        bool    `json:"success"`
	ID             int64   `json:"id"`
	TrackingNumber string  `json:"trackingNumber"`
	Reason         *string `json:"reason"`
	Applicant      string  `json:"applicant"`
}

type deleteRequest struct {
	ID apiutil.FlexibleID `json:"id"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// InitHandlers must be called during server startup before handling requests.
// store and mailer may be nil: uploads then fail and receipts are skipped.
func InitHandlers(q returnQueries, s storage.ObjectStore, m email.EmailSender, name string) {
	if q == nil {
		return
	}
	initOnce.Do(func() {
		queries = q
		store = s
		mailer = m
		appName = name
	})
}

func loadQueries() returnQueries {
	return queries
}

// POST /returns
func HandleSubmit(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !apiutil.RequireUser(w, r) {
		return
	}

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	files, err := apiutil.ParseMediaForm(w, r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	trackingNumber := strings.TrimSpace(r.FormValue("trackingNumber"))
	if trackingNumber == "" {
		http.Error(w, "Tracking number is required", http.StatusBadRequest)
		return
	}
	reason := apiutil.NullString(r.FormValue("reason"))
	applicant := authz.Applicant(r.Context(), r.FormValue("applicant"))

	names, err := apiutil.StoreMedia(r.Context(), store, now, files)
	if err != nil {
		logger.Error().Err(err).Int("files", len(files)).Msg("Failed to store return media")
		http.Error(w, "An error occurred while submitting your request.", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), returnsQueryTimeout)
	defer cancel()

	submittedAt := now().UTC()
	id, err := q.CreateReturnRequest(ctx, dbgen.CreateReturnRequestParams{
		Applicant:      applicant,
		TrackingNumber: trackingNumber,
		Reason:         reason,
		MediaUrls:      sql.NullString{String: storage.EncodeMediaList(names), Valid: true},
		SubmittedAt:    submittedAt,
	})
	if err != nil {
		logger.Error().Err(err).Str("tracking_number", trackingNumber).Msg("Failed to create return request")
		apiutil.DeleteMedia(context.WithoutCancel(r.Context()), store, storage.EncodeMediaList(names), logger)
		http.Error(w, "An error occurred while submitting your request.", http.StatusInternalServerError)
		return
	}

	logger.Info().
		Int64("return_id", id).
		Str("applicant", applicant).
		Str("tracking_number", trackingNumber).
		Strs("files", names).
		Msg("Return request submitted")

	receipt := email.BuildReturnReceipt(email.ReturnReceiptDetails{
		ID:             id,
		TrackingNumber: trackingNumber,
		Reason:         reason.String,
		MediaCount:     len(names),
		SubmittedAt:    submittedAt,
	})
	email.SendReceipt(context.WithoutCancel(r.Context()), mailer, applicant, receipt, logger)

	apiutil.RenderHTMLComponent(r.Context(), w, requeststempl.ReturnSubmitted(appName), nil,
		"Failed to render return confirmation", "Failed to render page")
}

// GET /api/returns
func HandleList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), returnsQueryTimeout)
	defer cancel()

	rows, err := q.ListReturnRequests(ctx)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{
			Status:  http.StatusInternalServerError,
			Message: "An error occurred while fetching return requests.",
			Err:     err,
		})
		return
	}

	out := make([]Return, 0, len(rows))
	for _, row := range rows {
		out = append(out, toReturn(row))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, out); err != nil {
		logger.Error().Err(err).Msg("Failed to write returns response")
	}
}

// POST /api/updateReturn
func HandleUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req updateRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid request body", Err: err})
		return
	}
	req.TrackingNumber = strings.TrimSpace(req.TrackingNumber)
	if req.ID.String() == "" || req.TrackingNumber == "" {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "ID and tracking number are required"})
		return
	}
	id, err := strconv.ParseInt(req.ID.String(), 10, 64)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Return item not found", Err: err})
		return
	}

	applicant := strings.TrimSpace(req.Applicant)
	if applicant == "" {
		applicant = authz.AnonymousApplicant
	}
	var reason sql.NullString
	if req.Reason != nil {
		reason = sql.NullString{String: *req.Reason, Valid: true}
	}

	ctx, cancel := context.WithTimeout(r.Context(), returnsQueryTimeout)
	defer cancel()

	matched, err := q.UpdateReturnRequest(ctx, dbgen.UpdateReturnRequestParams{
		TrackingNumber: req.TrackingNumber,
		Reason:         reason,
		Applicant:      applicant,
		ID:             id,
	})
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{
			Status:  http.StatusInternalServerError,
			Message: "Server error while updating return item",
			Err:     err,
		})
		return
	}
	if matched == 0 {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Return item not found"})
		return
	}

	logger.Info().Int64("return_id", id).Msg("Return request updated")
	if err := apiutil.WriteJSON(w, http.StatusOK, updateResponse{
		Success:        true,
		ID:             id,
		TrackingNumber: req.TrackingNumber,
		Reason:         req.Reason,
		Applicant:      applicant,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write update response")
	}
}

// POST /api/deleteReturn
func HandleDelete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req deleteRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid request body", Err: err})
		return
	}
	if req.ID.String() == "" {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "ID is required"})
		return
	}
	id, err := strconv.ParseInt(req.ID.String(), 10, 64)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Return item not found", Err: err})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), returnsQueryTimeout)
	defer cancel()

	media, err := q.GetReturnRequestMedia(ctx, id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.Warn().Err(err).Int64("return_id", id).Msg("Could not read return media before delete")
	}

	deleted, err := q.DeleteReturnRequest(ctx, id)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{
			Status:  http.StatusInternalServerError,
			Message: "Server error while deleting return item",
			Err:     err,
		})
		return
	}
	if deleted == 0 {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Return item not found"})
		return
	}

	removed := apiutil.DeleteMedia(ctx, store, media.String, logger)
	logger.Info().Int64("return_id", id).Int("media_removed", removed).Msg("Return request deleted")

	if err := apiutil.WriteJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "Return item deleted successfully",
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write delete response")
	}
}

func toReturn(row dbgen.ReturnRequest) Return {
	out := Return{
		ID:             row.ID,
		Applicant:      row.Applicant,
		TrackingNumber: row.TrackingNumber,
		MediaUrls:      storage.DecodeMediaList(row.MediaUrls.String),
		SubmittedAt:    row.SubmittedAt,
	}
	if out.MediaUrls == nil {
		out.MediaUrls = []string{}
	}
	if row.Reason.Valid {
		reason := row.Reason.String
		out.Reason = &reason
	}
	return out
}
