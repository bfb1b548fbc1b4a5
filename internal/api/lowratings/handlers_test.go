package lowratings

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	domain "github.com/codr1/Opsboard/internal/lowrating"
)

type stubFetcher struct {
	body string
	err  error
}

func (f stubFetcher) GetJSON(ctx context.Context, url string) ([]byte, error) {
	return []byte(f.body), f.err
}

const reviews = `[
	{"date":"2025-03-01","shop":"Chairsy","orderId":"A1","username":"kim","stars":1,"item":"Desk","comment":"broken leg","pictures":["https://img.test/1.jpg"]},
	{"date":"2025-03-02","shop":"Chairsy","orderId":"A2","username":"lee","stars":3,"item":"Lamp","comment":"late"},
	{"date":"2025-03-03","shop":"Deskly","orderId":"B1","username":"ng","stars":1,"item":"Chair","comment":"squeaks"}
]`

func setupLowRatingsTest(t *testing.T, f stubFetcher) {
	t.Helper()

	service = nil
	initOnce = sync.Once{}
	InitHandlers(domain.NewService("http://upstream/reviews", f), []string{"Chairsy", "Deskly"})
	t.Cleanup(func() {
		service = nil
		shops = nil
		initOnce = sync.Once{}
	})
}

func get(query string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	HandleList(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/lowratings?"+query, nil))
	return recorder
}

func TestHandleList_FiltersReviews(t *testing.T) {
	setupLowRatingsTest(t, stubFetcher{body: reviews})

	recorder := get("shop=Chairsy&stars=1&start_date=2025-03-01&end_date=2025-03-05")

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d", recorder.Code)
	}
	body := recorder.Body.String()
	if !strings.Contains(body, "broken leg") || !strings.Contains(body, "1 Stars") {
		t.Fatalf("missing review: %s", body)
	}
	if strings.Contains(body, "squeaks") || strings.Contains(body, ">late<") {
		t.Fatalf("filter kept other reviews: %s", body)
	}
	if !strings.Contains(body, `href="https://img.test/1.jpg"`) {
		t.Fatalf("missing picture link: %s", body)
	}
}

func TestHandleList_Messages(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status int
		want   string
	}{
		{"no shop", "", http.StatusOK, domain.MessageSelectShop},
		{"no matches", "shop=Deskly&stars=5", http.StatusOK, domain.MessageNoOrders},
		{"bad stars", "shop=Deskly&stars=9", http.StatusBadRequest, domain.ErrInvalidStars.Error()},
		{"bad date", "shop=Deskly&start_date=March", http.StatusBadRequest, domain.ErrInvalidDate.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupLowRatingsTest(t, stubFetcher{body: reviews})

			recorder := get(tt.query)

			if recorder.Code != tt.status {
				t.Fatalf("status: %d, want %d", recorder.Code, tt.status)
			}
			if !strings.Contains(recorder.Body.String(), tt.want) {
				t.Fatalf("body: %s", recorder.Body.String())
			}
		})
	}
}

func TestHandleList_UpstreamFailure(t *testing.T) {
	setupLowRatingsTest(t, stubFetcher{err: errors.New("connection refused")})

	recorder := get("shop=Chairsy")

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "Failed to load reviews") {
		t.Fatalf("body: %s", recorder.Body.String())
	}
}
