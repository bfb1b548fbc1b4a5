package health

import (
	"bytes"
	"context"
	"strings"
	"testing"

	domain "github.com/codr1/Opsboard/internal/health"
)

func renderPanel(t *testing.T, v domain.View) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Panel(v).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestPanelRendersView(t *testing.T) {
	v := domain.View{
		Key:           "shopee-my",
		Phase:         domain.PhaseNoData,
		Title:         "March 2025",
		SelectedDate:  "2025-03-03",
		SelectedLabel: "Selected date: Monday",
		Shop:          "Chairsy",
		Shops:         []string{"All Shops", "Chairsy"},
		Days: []domain.DayCell{
			{Key: "2025-03-03", Name: "Mon", Number: 3, Enabled: true, Selected: true},
			{Key: "2025-03-08", Name: "Sat", Number: 8},
		},
		Table: domain.Table{
			Headers: []domain.Header{{Column: "shop_name", Label: "Shop"}, {Column: "shop_rating", Label: "Shop Rating", Direction: domain.SortDesc}},
			Rows:    []domain.Row{{Shop: "Chairsy & Co", Cells: []domain.Cell{{Metric: "shop_rating", Text: "4.8", Class: domain.ClassGood}}}},
		},
		Cards:    []domain.Card{{Metric: "penalty_points", Label: "Penalty Points", Text: "3", Class: domain.ClassBad}},
		Messages: []domain.Message{{ID: 7, Kind: domain.StatusError, Text: "Failed <load>"}},
	}

	body := renderPanel(t, v)

	for _, want := range []string{
		`<section id="health-shopee-my" class="health-panel"`,
		`<option value="Chairsy" selected>Chairsy</option>`,
		`hx-post="/api/v1/health/shopee-my/select?date=2025-03-03"`,
		`<button class="day btn btn-light" disabled>`,
		`Shop Rating ↓</th>`,
		`<td>Chairsy &amp; Co</td><td class="text-success">4.8</td>`,
		`<div class="fs-5 text-danger" data-metric="penalty_points">3</div>`,
		`data-message-id="7">Failed &lt;load&gt;</div>`,
		`href="/api/v1/health/shopee-my/export.xlsx"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %s in %s", want, body)
		}
	}
	if strings.Contains(body, "hx-trigger") {
		t.Error("settled panel must not poll")
	}
}

func TestPanelPlaceholderAndLoading(t *testing.T) {
	v := domain.View{
		Key:     "tiktok",
		Loading: true,
		Table: domain.Table{
			Rows: []domain.Row{{Placeholder: true, Message: "No data found for Tuesday", ColSpan: 8}},
		},
	}

	body := renderPanel(t, v)

	if !strings.Contains(body, `<td colspan="8" class="text-center text-muted">No data found for Tuesday</td>`) {
		t.Fatalf("missing placeholder: %s", body)
	}
	if !strings.Contains(body, `hx-get="/api/v1/health/tiktok" hx-trigger="load delay:1s"`) {
		t.Fatalf("loading panel must poll: %s", body)
	}
	if strings.Contains(body, "export.xlsx") || strings.Contains(body, `class="row g-2 mb-3"`) {
		t.Fatalf("empty view rendered export or cards: %s", body)
	}
}
