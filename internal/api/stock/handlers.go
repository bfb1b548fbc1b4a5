// internal/api/stock/handlers.go
package stock

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Opsboard/internal/api/apiutil"
	domain "github.com/codr1/Opsboard/internal/stock"
	stocktempl "github.com/codr1/Opsboard/internal/templates/components/stock"
)

const upstreamTimeout = 30 * time.Second

type stockService interface {
	Fetch(ctx context.Context, q domain.Query) (domain.View, error)
}

var (
	service  stockService
	initOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s stockService) {
	if s == nil {
		return
	}
	initOnce.Do(func() {
		service = s
	})
}

// parseQuery reads the table state from the URL. A missing or malformed page
// falls back to the first page.
func parseQuery(r *http.Request) (domain.Query, error) {
	values := r.URL.Query()
	q := domain.Query{
		Page:      1,
		Search:    strings.TrimSpace(values.Get("search")),
		Filter:    strings.TrimSpace(values.Get("filter")),
		SortBy:    strings.TrimSpace(values.Get("sort_by")),
		SortOrder: strings.ToLower(strings.TrimSpace(values.Get("sort_order"))),
	}
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			q.Page = page
		}
	}
	switch q.SortOrder {
	case "", "asc", "desc":
	default:
		return q, errors.New("sort_order must be asc or desc")
	}
	return q, nil
}

// GET /api/v1/stock?page=&search=&filter=&sort_by=&sort_order=
func HandleList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if service == nil {
		logger.Error().Msg("Stock service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	q, err := parseQuery(r)
	if err != nil {
		renderTable(w, r, http.StatusBadRequest, stocktempl.TableData{View: echo(q), Error: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), upstreamTimeout)
	defer cancel()

	view, err := service.Fetch(ctx, q)
	switch {
	case errors.Is(err, domain.ErrUnknownFilter):
		q.Filter = domain.FilterAll
		renderTable(w, r, http.StatusBadRequest, stocktempl.TableData{View: echo(q), Error: err.Error()})
	case err != nil:
		logger.Warn().Err(err).Int("page", q.Page).Msg("Failed to fetch stock")
		renderTable(w, r, http.StatusOK, stocktempl.TableData{View: echo(q), Error: "Failed to load stock. Please try again."})
	default:
		renderTable(w, r, http.StatusOK, stocktempl.TableData{View: view})
	}
}

// echo keeps the submitted controls on screen when no page was loaded.
func echo(q domain.Query) domain.View {
	return domain.View{
		Page:      domain.Page{CurrentPage: q.Page, TotalPages: 1},
		Search:    q.Search,
		Filter:    q.Filter,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
}

func renderTable(w http.ResponseWriter, r *http.Request, status int, data stocktempl.TableData) {
	apiutil.RenderHTMLStatus(r.Context(), w, status, stocktempl.Table(data), nil,
		"Failed to render stock table", "Failed to render stock")
}
