// internal/api/health/handlers.go
package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Opsboard/internal/api/apiutil"
	accounthealth "github.com/codr1/Opsboard/internal/health"
	healthtempl "github.com/codr1/Opsboard/internal/templates/components/health"
)

const (
	platformParam    = "platform"
	dashboardTimeout = 30 * time.Second
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportFilePrefix = "account-health"
	weekDirPrevious  = "prev"
	weekDirNext      = "next"
	weekDirToday     = "today"
)

type dashboards interface {
	Get(key string) (*accounthealth.Dashboard, bool)
}

var (
	registry dashboards
	location = time.Local
	initOnce sync.Once
)

// calendarResponse is the JSON form of the calendar widget.
type calendarResponse struct {
	Title        string                  `json:"title"`
	Phase        accounthealth.Phase     `json:"phase"`
	Days         []accounthealth.DayCell `json:"days"`
	SelectedDate string                  `json:"selected_date,omitempty"`
	ShowToday    bool                    `json:"show_today"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(r dashboards, loc *time.Location) {
	if r == nil {
		return
	}
	initOnce.Do(func() {
		registry = r
		if loc != nil {
			location = loc
		}
	})
}

// dashboardFromRequest resolves the {platform} path value, writing 404 when
// it names no configured dashboard.
func dashboardFromRequest(w http.ResponseWriter, r *http.Request) (*accounthealth.Dashboard, bool) {
	if registry == nil {
		log.Ctx(r.Context()).Error().Msg("Dashboard registry not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	key := strings.TrimSpace(r.PathValue(platformParam))
	d, ok := registry.Get(key)
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown platform %q", key), http.StatusNotFound)
		return nil, false
	}
	return d, true
}

func renderPanel(w http.ResponseWriter, r *http.Request, d *accounthealth.Dashboard) {
	apiutil.RenderHTMLComponent(r.Context(), w, healthtempl.Panel(d.View()), nil,
		"Failed to render account health panel", "Failed to render dashboard")
}

// logLoadError records a failed load. The dashboard has already degraded to
// its placeholder state, so the panel still renders.
func logLoadError(r *http.Request, d *accounthealth.Dashboard, err error) {
	if err == nil || errors.Is(err, accounthealth.ErrStaleResponse) {
		return
	}
	log.Ctx(r.Context()).Warn().Err(err).Str("platform", d.Key()).Msg("Dashboard load failed")
}

// GET /api/v1/health/{platform}
func HandlePanel(w http.ResponseWriter, r *http.Request) {
	d, ok := dashboardFromRequest(w, r)
	if !ok {
		return
	}
	if v := d.View(); v.Phase == accounthealth.PhaseWeekDisplayed && !v.Loading {
		ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
		defer cancel()
		logLoadError(r, d, d.Load(ctx))
	}
	renderPanel(w, r, d)
}

// GET /api/v1/health/{platform}/calendar
func HandleCalendar(w http.ResponseWriter, r *http.Request) {
	d, ok := dashboardFromRequest(w, r)
	if !ok {
		return
	}
	v := d.View()
	if err := apiutil.WriteJSON(w, http.StatusOK, calendarResponse{
		Title:        v.Title,
		Phase:        v.Phase,
		Days:         v.Days,
		SelectedDate: v.SelectedDate,
		ShowToday:    v.ShowToday,
	}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write calendar response")
	}
}

// POST /api/v1/health/{platform}/select?date=YYYY-MM-DD
func HandleSelect(w http.ResponseWriter, r *http.Request) {
	d, ok := dashboardFromRequest(w, r)
	if !ok {
		return
	}
	date, err := accounthealth.ParseDateKey(strings.TrimSpace(r.URL.Query().Get("date")), location)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
	defer cancel()

	if err := d.Select(ctx, date); err != nil {
		if errors.Is(err, accounthealth.ErrDayDisabled) {
			http.Error(w, "No data endpoint for that day", http.StatusBadRequest)
			return
		}
		logLoadError(r, d, err)
	}
	renderPanel(w, r, d)
}

// POST /api/v1/health/{platform}/week?dir=prev|next|today
func HandleWeek(w http.ResponseWriter, r *http.Request) {
	d, ok := dashboardFromRequest(w, r)
	if !ok {
		return
	}
	var weeks int
	switch strings.TrimSpace(r.URL.Query().Get("dir")) {
	case weekDirPrevious:
		weeks = -1
	case weekDirNext:
		weeks = 1
	case weekDirToday, "":
		weeks = 0
	default:
		http.Error(w, "dir must be prev, next or today", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
	defer cancel()

	logLoadError(r, d, d.Navigate(ctx, weeks))
	renderPanel(w, r, d)
}

// POST /api/v1/health/{platform}/refresh reloads the selected day.
func HandleRefresh(w http.ResponseWriter, r *http.Request) {
	d, ok := dashboardFromRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
	defer cancel()

	var err error
	if selected := d.View().SelectedDate; selected != "" {
		var date time.Time
		if date, err = accounthealth.ParseDateKey(selected, location); err == nil {
			err = d.Select(ctx, date)
		}
	} else {
		err = d.Load(ctx)
	}
	logLoadError(r, d, err)
	renderPanel(w, r, d)
}

// POST /api/v1/health/{platform}/shop?shop=
func HandleShop(w http.ResponseWriter, r *http.Request) {
	d, ok := dashboardFromRequest(w, r)
	if !ok {
		return
	}
	d.SetShop(r.FormValue("shop"))
	renderPanel(w, r, d)
}

// POST /api/v1/health/{platform}/sort?column=
func HandleSort(w http.ResponseWriter, r *http.Request) {
	d, ok := dashboardFromRequest(w, r)
	if !ok {
		return
	}
	if err := d.SortBy(strings.TrimSpace(r.URL.Query().Get("column"))); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	renderPanel(w, r, d)
}

// GET /api/v1/health/{platform}/data
func HandleData(w http.ResponseWriter, r *http.Request) {
	d, ok := dashboardFromRequest(w, r)
	if !ok {
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, d.View()); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write dashboard data")
	}
}

// GET /api/v1/health/{platform}/messages
func HandleMessages(w http.ResponseWriter, r *http.Request) {
	d, ok := dashboardFromRequest(w, r)
	if !ok {
		return
	}
	apiutil.RenderHTMLComponent(r.Context(), w, healthtempl.Messages(d.Status().Active()), nil,
		"Failed to render status messages", "Failed to render messages")
}

// GET /api/v1/health/{platform}/export.xlsx
func HandleExport(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	d, ok := dashboardFromRequest(w, r)
	if !ok {
		return
	}
	v := d.View()
	if v.Table.Empty() {
		http.Error(w, "No data to export", http.StatusNotFound)
		return
	}

	f, err := accounthealth.ExportWorkbook(v)
	if err != nil {
		logger.Error().Err(err).Str("platform", v.Key).Msg("Failed to build workbook")
		http.Error(w, "Failed to export dashboard", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	name := fmt.Sprintf("%s-%s-%s.xlsx", exportFilePrefix, v.Key, v.SelectedDate)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := f.Write(w); err != nil {
		logger.Error().Err(err).Str("platform", v.Key).Msg("Failed to write workbook")
	}
}
