package health

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	accounthealth "github.com/codr1/Opsboard/internal/health"
)

const (
	mondayURL  = "http://upstream/health/?day=Monday"
	tuesdayURL = "http://upstream/health/?day=Tuesday"
)

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

type stubFetcher map[string]string

func (f stubFetcher) GetJSON(ctx context.Context, url string) ([]byte, error) {
	body, ok := f[url]
	if !ok {
		return nil, errors.New("no route")
	}
	return []byte(body), nil
}

type fakeRegistry map[string]*accounthealth.Dashboard

func (r fakeRegistry) Get(key string) (*accounthealth.Dashboard, bool) {
	d, ok := r[key]
	return d, ok
}

func setupHealthTest(t *testing.T) *accounthealth.Dashboard {
	t.Helper()

	fetcher := stubFetcher{
		mondayURL:  `[{"shop_name":"Chairsy","shop_rating":4.8,"penalty_points":0},{"shop_name":"Deskly","shop_rating":4.2,"penalty_points":3}]`,
		tuesdayURL: `[]`,
	}
	d, err := accounthealth.NewDashboard(accounthealth.Options{
		Key:       "shopee-my",
		Label:     "Shopee MY",
		Kind:      accounthealth.KindShopee,
		Endpoints: map[string]string{"Monday": mondayURL, "Tuesday": tuesdayURL},
		Shops:     []string{"Chairsy", "Deskly"},
		Location:  time.UTC,
		Clock:     fixedClock(time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)),
	}, fetcher)
	if err != nil {
		t.Fatalf("new dashboard: %v", err)
	}

	registry = nil
	initOnce = sync.Once{}
	InitHandlers(fakeRegistry{"shopee-my": d}, time.UTC)
	t.Cleanup(func() {
		registry = nil
		initOnce = sync.Once{}
		location = time.Local
	})
	return d
}

func request(method, target, platform string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.SetPathValue(platformParam, platform)
	return req
}

func TestHandlePanel_InitialLoadSelectsClosestDay(t *testing.T) {
	setupHealthTest(t)

	recorder := httptest.NewRecorder()
	HandlePanel(recorder, request(http.MethodGet, "/api/v1/health/shopee-my", "shopee-my"))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d", recorder.Code)
	}
	body := recorder.Body.String()
	if !strings.Contains(body, `id="health-shopee-my"`) {
		t.Fatalf("missing panel id: %s", body)
	}
	// Wednesday has no endpoint; the closest enabled day is Tuesday, which is empty.
	if !strings.Contains(body, "No data found for Tuesday") {
		t.Fatalf("missing placeholder: %s", body)
	}
}

func TestHandleSelect_LoadsRows(t *testing.T) {
	setupHealthTest(t)

	recorder := httptest.NewRecorder()
	HandleSelect(recorder, request(http.MethodPost, "/api/v1/health/shopee-my/select?date=2025-03-03", "shopee-my"))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d", recorder.Code)
	}
	body := recorder.Body.String()
	if !strings.Contains(body, "Chairsy") || !strings.Contains(body, "Deskly") {
		t.Fatalf("missing rows: %s", body)
	}
	if !strings.Contains(body, "Selected date: Monday") {
		t.Fatalf("missing selected label: %s", body)
	}
}

func TestHandleSelect_Errors(t *testing.T) {
	setupHealthTest(t)

	tests := []struct {
		name     string
		target   string
		platform string
		status   int
	}{
		{"bad date", "/select?date=03/03/2025", "shopee-my", http.StatusBadRequest},
		{"disabled day", "/select?date=2025-03-06", "shopee-my", http.StatusBadRequest},
		{"unknown platform", "/select?date=2025-03-03", "lazada", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			HandleSelect(recorder, request(http.MethodPost, "/api/v1/health/"+tt.platform+tt.target, tt.platform))
			if recorder.Code != tt.status {
				t.Fatalf("status: %d, want %d", recorder.Code, tt.status)
			}
		})
	}
}

func TestHandleShopAndSort(t *testing.T) {
	d := setupHealthTest(t)
	if err := d.Select(context.Background(), time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("select: %v", err)
	}

	recorder := httptest.NewRecorder()
	HandleShop(recorder, request(http.MethodPost, "/api/v1/health/shopee-my/shop?shop=deskly", "shopee-my"))
	if recorder.Code != http.StatusOK {
		t.Fatalf("shop status: %d", recorder.Code)
	}
	if strings.Contains(recorder.Body.String(), "<td>Chairsy</td>") {
		t.Fatal("shop filter kept other shops")
	}

	recorder = httptest.NewRecorder()
	HandleSort(recorder, request(http.MethodPost, "/api/v1/health/shopee-my/sort?column=bogus", "shopee-my"))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("bad sort status: %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	HandleSort(recorder, request(http.MethodPost, "/api/v1/health/shopee-my/sort?column=shop_rating", "shopee-my"))
	if recorder.Code != http.StatusOK {
		t.Fatalf("sort status: %d", recorder.Code)
	}
	if got := d.View().Sort; got.Column != "shop_rating" || got.Direction != accounthealth.SortAsc {
		t.Fatalf("sort = %+v", got)
	}
}

func TestHandleDataAndCalendar(t *testing.T) {
	setupHealthTest(t)

	recorder := httptest.NewRecorder()
	HandleWeek(recorder, request(http.MethodPost, "/api/v1/health/shopee-my/week?dir=sideways", "shopee-my"))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("bad dir status: %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	HandleWeek(recorder, request(http.MethodPost, "/api/v1/health/shopee-my/week?dir=today", "shopee-my"))
	if recorder.Code != http.StatusOK {
		t.Fatalf("week status: %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	HandleCalendar(recorder, request(http.MethodGet, "/api/v1/health/shopee-my/calendar", "shopee-my"))
	var cal calendarResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &cal); err != nil {
		t.Fatalf("decode calendar: %v", err)
	}
	if len(cal.Days) == 0 || cal.SelectedDate != "2025-03-04" {
		t.Fatalf("calendar = %+v", cal)
	}

	recorder = httptest.NewRecorder()
	HandleData(recorder, request(http.MethodGet, "/api/v1/health/shopee-my/data", "shopee-my"))
	var view map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if view["key"] != "shopee-my" || view["phase"] != string(accounthealth.PhaseNoData) {
		t.Fatalf("data = %v", view)
	}
}

func TestHandleExport(t *testing.T) {
	d := setupHealthTest(t)

	recorder := httptest.NewRecorder()
	HandleExport(recorder, request(http.MethodGet, "/api/v1/health/shopee-my/export.xlsx", "shopee-my"))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("empty export status: %d", recorder.Code)
	}

	if err := d.Select(context.Background(), time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("select: %v", err)
	}
	recorder = httptest.NewRecorder()
	HandleExport(recorder, request(http.MethodGet, "/api/v1/health/shopee-my/export.xlsx", "shopee-my"))
	if recorder.Code != http.StatusOK {
		t.Fatalf("export status: %d", recorder.Code)
	}
	if recorder.Header().Get("Content-Type") != xlsxContentType {
		t.Fatalf("content type: %s", recorder.Header().Get("Content-Type"))
	}
	if !strings.Contains(recorder.Header().Get("Content-Disposition"), "account-health-shopee-my-2025-03-03.xlsx") {
		t.Fatalf("disposition: %s", recorder.Header().Get("Content-Disposition"))
	}
	// XLSX files are zip archives.
	if !strings.HasPrefix(recorder.Body.String(), "PK") {
		t.Fatal("body is not a workbook")
	}
}
