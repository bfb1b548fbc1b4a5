// internal/api/repairs/handlers.go
package repairs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
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

const (
	repairsQueryTimeout = 10 * time.Second
	repairIDAttempts    = 5
	repairIDAlphabet    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	repairIDSuffixLen   = 3
)

type repairQueries interface {
	CreateRepairRequest(ctx context.Context, arg dbgen.CreateRepairRequestParams) error
	ListRepairRequests(ctx context.Context) ([]dbgen.RepairRequest, error)
	RepairRequestExists(ctx context.Context, repairID string) (bool, error)
	GetRepairRequestMedia(ctx context.Context, repairID string) (sql.NullString, error)
	UpdateRepairRequest(ctx context.Context, arg dbgen.UpdateRepairRequestParams) (int64, error)
	DeleteRepairRequest(ctx context.Context, repairID string) (int64, error)
}

var (
	queries  repairQueries
	store    storage.ObjectStore
	mailer   email.EmailSender
	appName  string
	location = time.Local
	initOnce sync.Once

	now        = time.Now
	randSuffix = func() string {
		b := make([]byte, repairIDSuffixLen)
		for i := range b {
			b[i] = repairIDAlphabet[rand.IntN(len(repairIDAlphabet))]
		}
		return string(b)
	}
)

// Repair is the JSON shape of a stored repair request. Empty optional fields
// are null.
type Repair struct {
	RepairID    string    `json:"repair_id"`
	ReceiveDate *string   `json:"receive_date"`
	RepairDate  *string   `json:"repair_date"`
	Purpose     *string   `json:"purpose"`
	OrderID     *string   `json:"order_id"`
	Variation   *string   `json:"variation"`
	Issue       *string   `json:"issue"`
	Actions     *string   `json:"actions"`
	Applicant   string    `json:"applicant"`
	Media       []string  `json:"media"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type updateRequest struct {
	RepairID    string `json:"repair_id"`
	ReceiveDate string `json:"receive_date"`
	RepairDate  string `json:"repair_date"`
	Purpose     string `json:"purpose"`
	OrderID     string `json:"order_id"`
	Variation   string `json:"variation"`
	Issue       string `json:"issue"`
	Actions     string `json:"actions"`
	Applicant   string `json:"applicant"`
}

type updateResponse struct {
	Success bool `json:"success"`
	Repair
}

type deleteRequest struct {
	RepairID string `json:"repair_id"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// InitHandlers must be called during server startup before handling requests.
// loc dates repair IDs; store and mailer may be nil.
func InitHandlers(q repairQueries, s storage.ObjectStore, m email.EmailSender, name string, loc *time.Location) {
	if q == nil {
		return
	}
	initOnce.Do(func() {
		queries = q
		store = s
		mailer = m
		appName = name
		if loc != nil {
			location = loc
		}
	})
}

func loadQueries() repairQueries {
	return queries
}

// NewRepairID formats REP-YYMMDD-XXX for the day of t.
func NewRepairID(t time.Time, suffix string) string {
	return fmt.Sprintf("REP-%s-%s", t.Format("060102"), suffix)
}

// uniqueRepairID draws IDs until one is unused.
func uniqueRepairID(ctx context.Context, q repairQueries, t time.Time) (string, error) {
	for range repairIDAttempts {
		id := NewRepairID(t, randSuffix())
		exists, err := q.RepairRequestExists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("check repair id %s: %w", id, err)
		}
		if !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("no free repair id after %d attempts", repairIDAttempts)
}

// POST /repairs
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

	names, err := apiutil.StoreMedia(r.Context(), store, now, files)
	if err != nil {
		logger.Error().Err(err).Int("files", len(files)).Msg("Failed to store repair media")
		http.Error(w, "An error occurred while submitting your repair request.", http.StatusInternalServerError)
		return
	}
	media := storage.EncodeMediaList(names)

	ctx, cancel := context.WithTimeout(r.Context(), repairsQueryTimeout)
	defer cancel()

	submittedAt := now()
	repairID, err := uniqueRepairID(ctx, q, submittedAt.In(location))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to allocate repair id")
		apiutil.DeleteMedia(context.WithoutCancel(r.Context()), store, media, logger)
		http.Error(w, "An error occurred while submitting your repair request.", http.StatusInternalServerError)
		return
	}

	params := dbgen.CreateRepairRequestParams{
		RepairID:    repairID,
		ReceiveDate: apiutil.NullDate(r.FormValue("receive_date")),
		RepairDate:  apiutil.NullDate(r.FormValue("repair_date")),
		Purpose:     apiutil.NullString(r.FormValue("purpose")),
		OrderID:     apiutil.NullString(r.FormValue("order_id")),
		Variation:   apiutil.NullString(r.FormValue("variation")),
		Issue:       apiutil.NullString(r.FormValue("issue")),
		Actions:     apiutil.NullString(r.FormValue("actions")),
		Applicant:   authz.Applicant(r.Context(), r.FormValue("applicant")),
		Media:       sql.NullString{String: media, Valid: true},
		SubmittedAt: submittedAt.UTC(),
	}
	if err := q.CreateRepairRequest(ctx, params); err != nil {
		logger.Error().Err(err).Str("repair_id", repairID).Msg("Failed to create repair request")
		apiutil.DeleteMedia(context.WithoutCancel(r.Context()), store, media, logger)
		http.Error(w, "An error occurred while submitting your repair request.", http.StatusInternalServerError)
		return
	}

	logger.Info().
		Str("repair_id", repairID).
		Str("applicant", params.Applicant).
		Str("order_id", params.OrderID.String).
		Strs("files", names).
		Msg("Repair request submitted")

	receipt := email.BuildRepairReceipt(email.RepairReceiptDetails{
		RepairID:    repairID,
		OrderID:     params.OrderID.String,
		Variation:   params.Variation.String,
		Issue:       params.Issue.String,
		ReceiveDate: apiutil.FormatNullDate(params.ReceiveDate),
		MediaCount:  len(names),
		SubmittedAt: params.SubmittedAt,
	})
	email.SendReceipt(context.WithoutCancel(r.Context()), mailer, params.Applicant, receipt, logger)

	apiutil.RenderHTMLComponent(r.Context(), w, requeststempl.RepairSubmitted(appName, repairID), nil,
		"Failed to render repair confirmation", "Failed to render page")
}

// GET /api/repairs
func HandleList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), repairsQueryTimeout)
	defer cancel()

	rows, err := q.ListRepairRequests(ctx)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{
			Status:  http.StatusInternalServerError,
			Message: "An error occurred while fetching repair requests.",
			Err:     err,
		})
		return
	}

	out := make([]Repair, 0, len(rows))
	for _, row := range rows {
		out = append(out, toRepair(row))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, out); err != nil {
		logger.Error().Err(err).Msg("Failed to write repairs response")
	}
}

// POST /api/updateRepair
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
	req.RepairID = strings.TrimSpace(req.RepairID)
	if req.RepairID == "" {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Repair ID is required"})
		return
	}

	params := dbgen.UpdateRepairRequestParams{
		ReceiveDate: apiutil.NullDate(req.ReceiveDate),
		RepairDate:  apiutil.NullDate(req.RepairDate),
		Purpose:     apiutil.NullString(req.Purpose),
		OrderID:     apiutil.NullString(req.OrderID),
		Variation:   apiutil.NullString(req.Variation),
		Issue:       apiutil.NullString(req.Issue),
		Actions:     apiutil.NullString(req.Actions),
		Applicant:   strings.TrimSpace(req.Applicant),
		RepairID:    req.RepairID,
	}
	if params.Applicant == "" {
		params.Applicant = authz.AnonymousApplicant
	}

	ctx, cancel := context.WithTimeout(r.Context(), repairsQueryTimeout)
	defer cancel()

	matched, err := q.UpdateRepairRequest(ctx, params)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{
			Status:  http.StatusInternalServerError,
			Message: "Server error while updating repair item",
			Err:     err,
		})
		return
	}
	if matched == 0 {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Repair item not found"})
		return
	}

	logger.Info().Str("repair_id", req.RepairID).Msg("Repair request updated")
	resp := updateResponse{
		Success: true,
		Repair: Repair{
			RepairID:    params.RepairID,
			ReceiveDate: nullableDate(params.ReceiveDate),
			RepairDate:  nullableDate(params.RepairDate),
			Purpose:     nullable(params.Purpose),
			OrderID:     nullable(params.OrderID),
			Variation:   nullable(params.Variation),
			Issue:       nullable(params.Issue),
			Actions:     nullable(params.Actions),
			Applicant:   params.Applicant,
		},
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Msg("Failed to write update response")
	}
}

// POST /api/deleteRepair
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
	repairID := strings.TrimSpace(req.RepairID)
	if repairID == "" {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Repair ID is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), repairsQueryTimeout)
	defer cancel()

	media, err := q.GetRepairRequestMedia(ctx, repairID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.Warn().Err(err).Str("repair_id", repairID).Msg("Could not read repair media before delete")
	}

	deleted, err := q.DeleteRepairRequest(ctx, repairID)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{
			Status:  http.StatusInternalServerError,
			Message: "Server error while deleting repair item",
			Err:     err,
		})
		return
	}
	if deleted == 0 {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Repair item not found"})
		return
	}

	removed := apiutil.DeleteMedia(ctx, store, media.String, logger)
	logger.Info().Str("repair_id", repairID).Int("media_removed", removed).Msg("Repair request deleted")

	if err := apiutil.WriteJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "Repair item deleted successfully",
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write delete response")
	}
}

func toRepair(row dbgen.RepairRequest) Repair {
	out := Repair{
		RepairID:    row.RepairID,
		ReceiveDate: nullableDate(row.ReceiveDate),
		RepairDate:  nullableDate(row.RepairDate),
		Purpose:     nullable(row.Purpose),
		OrderID:     nullable(row.OrderID),
		Variation:   nullable(row.Variation),
		Issue:       nullable(row.Issue),
		Actions:     nullable(row.Actions),
		Applicant:   row.Applicant,
		Media:       storage.DecodeMediaList(row.Media.String),
		SubmittedAt: row.SubmittedAt,
	}
	if out.Media == nil {
		out.Media = []string{}
	}
	return out
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullableDate(t sql.NullTime) *string {
	if !t.Valid {
		return nil
	}
	v := apiutil.FormatNullDate(t)
	return &v
}
