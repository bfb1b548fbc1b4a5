package dashboard

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/codr1/Opsboard/internal/api/authz"
	"github.com/codr1/Opsboard/internal/config"
	"github.com/codr1/Opsboard/internal/health"
)

type noFetch struct{}

func (noFetch) GetJSON(ctx context.Context, url string) ([]byte, error) {
	return []byte(`[]`), nil
}

type staticSources []config.ShipmentSource

func (s staticSources) Sources() []config.ShipmentSource { return s }

type staticDashboards []*health.Dashboard

func (s staticDashboards) All() []*health.Dashboard { return s }

func setupHomeTest(t *testing.T) {
	t.Helper()

	d, err := health.NewDashboard(health.Options{
		Key:       "tiktok-my",
		Label:     "TikTok MY",
		Kind:      health.KindTikTok,
		Endpoints: map[string]string{"Monday": "http://upstream/tiktok"},
		Location:  time.UTC,
	}, noFetch{})
	if err != nil {
		t.Fatalf("new dashboard: %v", err)
	}

	initOnce = sync.Once{}
	InitHandlers("Opsboard", staticDashboards{d}, staticSources{{Key: "shopee", Label: "Shopee Late Shipments"}})
	t.Cleanup(func() {
		appName = ""
		registry = nil
		shipments = nil
		initOnce = sync.Once{}
	})
}

func TestHandleHomePage_RendersTabs(t *testing.T) {
	setupHomeTest(t)

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	user := &authz.AuthUser{Subject: "user_1", Email: "ops@example.com", Provider: authz.ProviderClerk}
	req = req.WithContext(authz.ContextWithUser(req.Context(), user))
	recorder := httptest.NewRecorder()

	HandleHomePage(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d", recorder.Code)
	}
	body := recorder.Body.String()
	for _, want := range []string{
		"TikTok MY",
		"/api/v1/health/tiktok-my",
		"Shopee Late Shipments",
		"/api/v1/shipments/shopee",
		"Low Ratings",
		"Stock Count",
		"ops@example.com",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in %s", want, body)
		}
	}
}

func TestHandleHomePage_RedirectsAnonymous(t *testing.T) {
	setupHomeTest(t)

	recorder := httptest.NewRecorder()
	HandleHomePage(recorder, httptest.NewRequest(http.MethodGet, "/home", nil))

	if recorder.Code != http.StatusFound || recorder.Header().Get("Location") != "/" {
		t.Fatalf("status: %d location: %q", recorder.Code, recorder.Header().Get("Location"))
	}
}
