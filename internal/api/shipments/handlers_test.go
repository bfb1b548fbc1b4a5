package shipments

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	domain "github.com/codr1/Opsboard/internal/shipments"
)

type remarkCall struct {
	platform, orderID, remark string
}

type fakeService struct {
	lastFilter domain.Filter
	result     domain.Result
	listErr    error
	remarkErr  error
	remarks    []remarkCall
}

func (f *fakeService) List(ctx context.Context, platform string, flt domain.Filter) (domain.Result, error) {
	if platform != "shopee" {
		return domain.Result{}, domain.ErrUnknownPlatform
	}
	f.lastFilter = flt
	return f.result, f.listErr
}

func (f *fakeService) UpdateRemark(ctx context.Context, platform, orderID, remark string) error {
	if platform != "shopee" {
		return domain.ErrUnknownPlatform
	}
	f.remarks = append(f.remarks, remarkCall{platform, orderID, remark})
	return f.remarkErr
}

func setupShipmentsTest(t *testing.T) *fakeService {
	t.Helper()

	svc := &fakeService{result: domain.Result{
		Platform: "shopee",
		Label:    "Shopee",
		Shop:     "All Shops",
		Shops:    []string{"All Shops", "Chairsy"},
		Records: []domain.Record{
			{OrderID: "250301ABC", DisplayDate: "01/03/2025", Shop: "Chairsy", Product: "Desk", Courier: "J&T", Status: "late", Remark: "chased"},
		},
	}}

	service = nil
	initOnce = sync.Once{}
	InitHandlers(svc, time.UTC)
	t.Cleanup(func() {
		service = nil
		initOnce = sync.Once{}
		location = time.Local
	})
	return svc
}

func listRequest(platform, query string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/shipments/"+platform+"?"+query, nil)
	req.SetPathValue(platformParam, platform)
	return req
}

func TestHandleList_RendersRecords(t *testing.T) {
	svc := setupShipmentsTest(t)

	recorder := httptest.NewRecorder()
	HandleList(recorder, listRequest("shopee", "shop=Chairsy&start=2025-03-01&end=2025-03-05"))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d", recorder.Code)
	}
	body := recorder.Body.String()
	if !strings.Contains(body, "250301ABC") || !strings.Contains(body, "J&amp;T") {
		t.Fatalf("missing record: %s", body)
	}
	if !strings.Contains(body, `value="chased"`) {
		t.Fatalf("missing remark editor: %s", body)
	}
	if svc.lastFilter.Shop != "Chairsy" {
		t.Fatalf("shop = %q", svc.lastFilter.Shop)
	}
	if !svc.lastFilter.Start.Equal(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)) ||
		!svc.lastFilter.End.Equal(time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("range = %v..%v", svc.lastFilter.Start, svc.lastFilter.End)
	}
}

func TestHandleList_Errors(t *testing.T) {
	tests := []struct {
		name     string
		platform string
		query    string
		listErr  error
		status   int
		want     string
	}{
		{"bad start", "shopee", "start=01/03/2025", nil, http.StatusBadRequest, "start must be YYYY-MM-DD"},
		{"unknown platform", "lazada", "", nil, http.StatusNotFound, "Unknown platform"},
		{"upstream failure", "shopee", "", errors.New("boom"), http.StatusOK, "Failed to load shipments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := setupShipmentsTest(t)
			svc.listErr = tt.listErr

			recorder := httptest.NewRecorder()
			HandleList(recorder, listRequest(tt.platform, tt.query))

			if recorder.Code != tt.status {
				t.Fatalf("status: %d, want %d", recorder.Code, tt.status)
			}
			if !strings.Contains(recorder.Body.String(), tt.want) {
				t.Fatalf("body: %s", recorder.Body.String())
			}
		})
	}
}

func remarkRequest(platform string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shipments/"+platform+"/remark", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetPathValue(platformParam, platform)
	return req
}

func TestHandleRemark(t *testing.T) {
	svc := setupShipmentsTest(t)

	recorder := httptest.NewRecorder()
	HandleRemark(recorder, remarkRequest("shopee", url.Values{"order_id": {"250301ABC"}, "remark": {"refund sent"}}))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d", recorder.Code)
	}
	if len(svc.remarks) != 1 || svc.remarks[0] != (remarkCall{"shopee", "250301ABC", "refund sent"}) {
		t.Fatalf("remarks = %+v", svc.remarks)
	}
	body := recorder.Body.String()
	if !strings.Contains(body, noticeSaved) || !strings.Contains(body, `value="refund sent"`) {
		t.Fatalf("body: %s", body)
	}
}

func TestHandleRemark_Failures(t *testing.T) {
	svc := setupShipmentsTest(t)

	recorder := httptest.NewRecorder()
	HandleRemark(recorder, remarkRequest("shopee", url.Values{"remark": {"x"}}))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("missing order status: %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	HandleRemark(recorder, remarkRequest("lazada", url.Values{"order_id": {"1"}}))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("unknown platform status: %d", recorder.Code)
	}

	svc.remarkErr = errors.New("upstream down")
	recorder = httptest.NewRecorder()
	HandleRemark(recorder, remarkRequest("shopee", url.Values{"order_id": {"1"}, "remark": {"x"}}))
	if recorder.Code != http.StatusOK || !strings.Contains(recorder.Body.String(), noticeFailed) {
		t.Fatalf("status: %d body: %s", recorder.Code, recorder.Body.String())
	}
}
