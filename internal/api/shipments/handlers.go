// internal/api/shipments/handlers.go
package shipments

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Opsboard/internal/api/apiutil"
	domain "github.com/codr1/Opsboard/internal/shipments"
	shipmentstempl "github.com/codr1/Opsboard/internal/templates/components/shipments"
)

const (
	platformParam   = "platform"
	upstreamTimeout = 30 * time.Second

	noticeSaved  = "Saved"
	noticeFailed = "Save failed"
)

type shipmentService interface {
	List(ctx context.Context, platform string, f domain.Filter) (domain.Result, error)
	UpdateRemark(ctx context.Context, platform, orderID, remark string) error
}

var (
	service  shipmentService
	location = time.Local
	initOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s shipmentService, loc *time.Location) {
	if s == nil {
		return
	}
	initOnce.Do(func() {
		service = s
		if loc != nil {
			location = loc
		}
	})
}

func loadService(w http.ResponseWriter, r *http.Request) (shipmentService, bool) {
	if service == nil {
		log.Ctx(r.Context()).Error().Msg("Shipment service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	return service, true
}

// GET /api/v1/shipments/{platform}?shop=&start=&end=
func HandleList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	svc, ok := loadService(w, r)
	if !ok {
		return
	}

	platform := strings.TrimSpace(r.PathValue(platformParam))
	q := r.URL.Query()
	data := shipmentstempl.TableData{
		Result: domain.Result{Platform: platform},
		Start:  strings.TrimSpace(q.Get("start")),
		End:    strings.TrimSpace(q.Get("end")),
	}

	start, err := apiutil.ParseOptionalDate(data.Start, "start", location)
	if err != nil {
		renderTable(w, r, http.StatusBadRequest, data, err.Error())
		return
	}
	end, err := apiutil.ParseOptionalDate(data.End, "end", location)
	if err != nil {
		renderTable(w, r, http.StatusBadRequest, data, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), upstreamTimeout)
	defer cancel()

	res, err := svc.List(ctx, platform, domain.Filter{Shop: q.Get("shop"), Start: start, End: end})
	if errors.Is(err, domain.ErrUnknownPlatform) {
		http.Error(w, "Unknown platform", http.StatusNotFound)
		return
	}
	if res.Platform != "" {
		data.Result = res
	}
	if err != nil {
		logger.Warn().Err(err).Str("platform", platform).Msg("Failed to list shipments")
		renderTable(w, r, http.StatusOK, data, "Failed to load shipments. Please try again.")
		return
	}
	renderTable(w, r, http.StatusOK, data, "")
}

func renderTable(w http.ResponseWriter, r *http.Request, status int, data shipmentstempl.TableData, message string) {
	data.Error = message
	apiutil.RenderHTMLStatus(r.Context(), w, status, shipmentstempl.Table(data), nil,
		"Failed to render shipments table", "Failed to render shipments")
}

// POST /api/v1/shipments/{platform}/remark
func HandleRemark(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	svc, ok := loadService(w, r)
	if !ok {
		return
	}

	platform := strings.TrimSpace(r.PathValue(platformParam))
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	orderID := strings.TrimSpace(r.PostFormValue("order_id"))
	remark := r.PostFormValue("remark")
	if orderID == "" {
		http.Error(w, "order_id is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), upstreamTimeout)
	defer cancel()

	notice := noticeSaved
	if err := svc.UpdateRemark(ctx, platform, orderID, remark); err != nil {
		if errors.Is(err, domain.ErrUnknownPlatform) {
			http.Error(w, "Unknown platform", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Str("platform", platform).Str("order_id", orderID).Msg("Failed to update remark")
		notice = noticeFailed
	}

	apiutil.RenderHTMLComponent(r.Context(), w, shipmentstempl.RemarkForm(platform, orderID, remark, notice), nil,
		"Failed to render remark form", "Failed to render remark")
}
