package lowrating

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	domain "github.com/codr1/Opsboard/internal/lowrating"
	"github.com/codr1/Opsboard/internal/templates/markup"
)

const BasePath = "/api/v1/lowratings"

type TableData struct {
	Result domain.Result
	Shops  []string
	Start  string
	End    string
	Error  string
}

func Table(d TableData) templ.Component {
	return markup.Func(func(ctx context.Context, m *markup.Writer) {
		res := d.Result
		m.Raw(`<section id="lowratings" class="lowratings-panel">`)
		m.Rawf(`<form class="row g-2 align-items-end mb-3" hx-get="%s" hx-target="#lowratings" hx-swap="outerHTML">`, BasePath)

		m.Raw(`<div class="col-auto"><label class="form-label">Shop</label><select class="form-select" name="shop">`)
		m.Raw(`<option value="">Select a shop</option>`)
		for _, s := range d.Shops {
			sel := ""
			if s == res.Shop {
				sel = " selected"
			}
			m.Rawf(`<option value="%s"%s>%s</option>`, markup.E(s), sel, markup.E(s))
		}
		m.Raw(`</select></div>`)

		m.Raw(`<div class="col-auto"><label class="form-label">Stars</label><select class="form-select" name="stars">`)
		m.Raw(`<option value="all">All</option>`)
		for n := 1; n <= 5; n++ {
			sel := ""
			if n == res.Stars {
				sel = " selected"
			}
			m.Rawf(`<option value="%d"%s>%d Stars</option>`, n, sel, n)
		}
		m.Raw(`</select></div>`)
		m.Rawf(`<div class="col-auto"><label class="form-label">From</label><input class="form-control" type="date" name="start_date" value="%s"></div>`, markup.E(d.Start))
		m.Rawf(`<div class="col-auto"><label class="form-label">To</label><input class="form-control" type="date" name="end_date" value="%s"></div>`, markup.E(d.End))
		m.Raw(`<div class="col-auto"><button class="btn btn-primary" type="submit">Search</button></div></form>`)

		if d.Error != "" {
			m.Rawf(`<div class="alert alert-danger">%s</div>`, markup.E(d.Error))
		}

		m.Raw(`<div class="table-responsive"><table class="table table-sm"><thead><tr>`)
		m.Raw(`<th>Date</th><th>Shop</th><th>Order ID</th><th>Username</th><th>Rating</th><th>Item</th><th>Comment</th><th>Pictures</th>`)
		m.Raw(`</tr></thead><tbody>`)
		if len(res.Reviews) == 0 && res.Message != "" {
			m.Rawf(`<tr><td colspan="8" class="text-center text-muted">%s</td></tr>`, markup.E(res.Message))
		}
		for _, r := range res.Reviews {
			m.Rawf(`<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>`,
				markup.E(r.Date), markup.E(r.Shop), markup.E(r.OrderID), markup.E(r.Username),
				markup.E(r.StarsLabel()), markup.E(r.Item), markup.E(r.Comment))
			for i, p := range r.Pictures {
				m.Rawf(`<a href="%s" target="_blank" rel="noopener">Picture %s</a> `, markup.E(p), strconv.Itoa(i+1))
			}
			m.Raw(`</td></tr>`)
		}
		m.Raw(`</tbody></table></div></section>`)
	})
}
