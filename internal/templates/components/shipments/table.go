package shipments

import (
	"context"
	"net/url"

	"github.com/a-h/templ"

	domain "github.com/codr1/Opsboard/internal/shipments"
	"github.com/codr1/Opsboard/internal/templates/markup"
)

type TableData struct {
	Result domain.Result
	Start  string
	End    string
	Error  string
}

func BasePath(platform string) string {
	return "/api/v1/shipments/" + url.PathEscape(platform)
}

func panelID(platform string) string {
	return "shipments-" + platform
}

// Table renders a platform's late shipments with the filter bar. Remarks
// save in place.
func Table(d TableData) templ.Component {
	return markup.Func(func(ctx context.Context, m *markup.Writer) {
		res := d.Result
		base := BasePath(res.Platform)
		target := "#" + panelID(res.Platform)

		m.Rawf(`<section id="%s" class="shipments-panel">`, markup.E(panelID(res.Platform)))
		m.Rawf(`<form class="row g-2 align-items-end mb-3" hx-get="%s" hx-target="%s" hx-swap="outerHTML">`,
			markup.E(base), markup.E(target))
		m.Raw(`<div class="col-auto"><label class="form-label">Shop</label><select class="form-select" name="shop">`)
		for _, s := range res.Shops {
			sel := ""
			if s == res.Shop {
				sel = " selected"
			}
			m.Rawf(`<option value="%s"%s>%s</option>`, markup.E(s), sel, markup.E(s))
		}
		m.Raw(`</select></div>`)
		m.Rawf(`<div class="col-auto"><label class="form-label">From</label><input class="form-control" type="date" name="start" value="%s"></div>`, markup.E(d.Start))
		m.Rawf(`<div class="col-auto"><label class="form-label">To</label><input class="form-control" type="date" name="end" value="%s"></div>`, markup.E(d.End))
		m.Raw(`<div class="col-auto"><button class="btn btn-primary" type="submit">Filter</button></div></form>`)

		if d.Error != "" {
			m.Rawf(`<div class="alert alert-danger">%s</div>`, markup.E(d.Error))
		}

		m.Raw(`<div class="table-responsive"><table class="table table-sm"><thead><tr>`)
		m.Raw(`<th>Order ID</th><th>Date</th><th>Shop</th><th>Product</th><th>Courier</th><th>Status</th><th>Remark</th>`)
		m.Raw(`</tr></thead><tbody>`)
		if len(res.Records) == 0 {
			msg := res.Message
			if msg == "" {
				msg = "No Orders Found"
			}
			m.Rawf(`<tr><td colspan="7" class="text-center text-muted">%s</td></tr>`, markup.E(msg))
		}
		for _, r := range res.Records {
			m.Rawf(`<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td>`,
				markup.E(r.OrderID), markup.E(r.DisplayDate), markup.E(r.Shop), markup.E(r.Product), markup.E(r.Courier), markup.E(r.Status))
			m.Raw(`<td>`)
			m.Component(ctx, RemarkForm(res.Platform, r.OrderID, r.Remark, ""))
			m.Raw(`</td></tr>`)
		}
		m.Raw(`</tbody></table></div></section>`)
	})
}

// RemarkForm is one row's remark editor; it replaces itself after a save.
func RemarkForm(platform, orderID, remark, notice string) templ.Component {
	return markup.Func(func(ctx context.Context, m *markup.Writer) {
		m.Rawf(`<form class="d-flex gap-1" hx-post="%s/remark" hx-swap="outerHTML">`, markup.E(BasePath(platform)))
		m.Rawf(`<input type="hidden" name="order_id" value="%s">`, markup.E(orderID))
		m.Rawf(`<input class="form-control form-control-sm" name="remark" value="%s">`, markup.E(remark))
		m.Raw(`<button class="btn btn-sm btn-outline-primary" type="submit">Save</button>`)
		if notice != "" {
			m.Rawf(`<small class="text-muted align-self-center">%s</small>`, markup.E(notice))
		}
		m.Raw(`</form>`)
	})
}
