// internal/api/lowratings/handlers.go
package lowratings

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Opsboard/internal/api/apiutil"
	"github.com/codr1/Opsboard/internal/health"
	domain "github.com/codr1/Opsboard/internal/lowrating"
	lowratingtempl "github.com/codr1/Opsboard/internal/templates/components/lowrating"
)

const upstreamTimeout = 30 * time.Second

type reviewService interface {
	List(ctx context.Context, f domain.Filter) (domain.Result, error)
}

var (
	service  reviewService
	shops    []string
	initOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s reviewService, shopNames []string) {
	if s == nil {
		return
	}
	initOnce.Do(func() {
		service = s
		shops = health.ShopOptions(shopNames)
	})
}

// GET /api/v1/lowratings?shop=&stars=&start_date=&end_date=
func HandleList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if service == nil {
		logger.Error().Msg("Low rating service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	data := lowratingtempl.TableData{
		Shops: shops,
		Start: q.Get("start_date"),
		End:   q.Get("end_date"),
	}

	f, err := domain.ParseFilter(q.Get("shop"), q.Get("stars"), data.Start, data.End)
	if err != nil {
		data.Result = domain.Result{Shop: q.Get("shop")}
		data.Error = err.Error()
		renderTable(w, r, http.StatusBadRequest, data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), upstreamTimeout)
	defer cancel()

	res, err := service.List(ctx, f)
	data.Result = res
	if err != nil {
		logger.Warn().Err(err).Str("shop", f.Shop).Msg("Failed to list low ratings")
		data.Error = "Failed to load reviews. Please try again."
		if errors.Is(err, context.DeadlineExceeded) {
			data.Error = "Review service timed out. Please try again."
		}
	}
	renderTable(w, r, http.StatusOK, data)
}

func renderTable(w http.ResponseWriter, r *http.Request, status int, data lowratingtempl.TableData) {
	apiutil.RenderHTMLStatus(r.Context(), w, status, lowratingtempl.Table(data), nil,
		"Failed to render low rating table", "Failed to render low ratings")
}
