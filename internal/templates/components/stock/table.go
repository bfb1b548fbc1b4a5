package stock

import (
	"context"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	domain "github.com/codr1/Opsboard/internal/stock"
	"github.com/codr1/Opsboard/internal/templates/markup"
)

const BasePath = "/api/v1/stock"

type column struct {
	key   string
	label string
}

var columns = []column{
	{"sku", "SKU"},
	{"product_variation", "Product Variation"},
	{"total_sales", "Total Sales"},
	{"current_stock", "Current Stock"},
	{"incoming_stock", "Incoming Stock"},
	{"reserve_stock", "Reserve Stock"},
	{"lead", "Lead"},
	{"total_stock", "Total Stock"},
}

var filters = []struct {
	value string
	label string
}{
	{domain.FilterAll, "All"},
	{domain.FilterLowStock, "Low stock"},
	{domain.FilterOutOfStock, "Out of stock"},
}

type TableData struct {
	View  domain.View
	Error string
}

// pageLink keeps the search, filter and sort while moving between pages.
func pageLink(v domain.View, page int, sortBy, order string) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if v.Search != "" {
		q.Set("search", v.Search)
	}
	if v.Filter != "" {
		q.Set("filter", v.Filter)
	}
	if sortBy != "" {
		q.Set("sort_by", sortBy)
		q.Set("sort_order", order)
	}
	return BasePath + "?" + q.Encode()
}

func Table(d TableData) templ.Component {
	return markup.Func(func(ctx context.Context, m *markup.Writer) {
		v := d.View
		m.Raw(`<section id="stock" class="stock-panel">`)
		m.Rawf(`<form class="row g-2 align-items-end mb-3" hx-get="%s" hx-target="#stock" hx-swap="outerHTML">`, BasePath)
		m.Rawf(`<div class="col-auto"><input class="form-control" type="search" name="search" placeholder="Search SKU or variation" value="%s"></div>`,
			markup.E(v.Search))
		m.Raw(`<div class="col-auto"><select class="form-select" name="filter">`)
		for _, f := range filters {
			sel := ""
			if f.value == v.Filter {
				sel = " selected"
			}
			m.Rawf(`<option value="%s"%s>%s</option>`, f.value, sel, f.label)
		}
		m.Raw(`</select></div><div class="col-auto"><button class="btn btn-primary" type="submit">Apply</button></div></form>`)

		if d.Error != "" {
			m.Rawf(`<div class="alert alert-danger">%s</div>`, markup.E(d.Error))
		}

		m.Raw(`<div class="table-responsive"><table class="table table-sm table-hover"><thead><tr>`)
		for _, c := range columns {
			order, arrow := "asc", ""
			if v.SortBy == c.key {
				if v.SortOrder == "desc" {
					arrow = " &darr;"
				} else {
					order, arrow = "desc", " &uarr;"
				}
			}
			m.Rawf(`<th role="button" hx-get="%s" hx-target="#stock" hx-swap="outerHTML">%s%s</th>`,
				markup.E(pageLink(v, v.CurrentPage, c.key, order)), c.label, arrow)
		}
		m.Raw(`</tr></thead><tbody>`)
		if len(v.Data) == 0 {
			m.Rawf(`<tr><td colspan="%d" class="text-center text-muted">No items found</td></tr>`, len(columns))
		}
		for _, it := range v.Data {
			m.Rawf(`<tr><td>%s</td><td>%s</td><td>%d</td><td>%d</td><td>%d</td><td class="%s">%d</td><td>%s</td><td>%d</td></tr>`,
				markup.E(it.SKU), markup.E(it.ProductVariation), it.TotalSales, it.CurrentStock, it.IncomingStock,
				it.StatusClass(), it.ReserveStock, markup.E(it.Lead), it.TotalStock)
		}
		m.Raw(`</tbody></table></div>`)

		if v.TotalPages > 1 {
			m.Raw(`<nav><ul class="pagination pagination-sm">`)
			pageItem(m, v, v.CurrentPage-1, "Previous", !v.HasPrev, false)
			for _, p := range v.Window {
				pageItem(m, v, p, strconv.Itoa(p), false, p == v.CurrentPage)
			}
			pageItem(m, v, v.CurrentPage+1, "Next", !v.HasNext, false)
			m.Raw(`</ul></nav>`)
		}
		m.Raw(`</section>`)
	})
}

func pageItem(m *markup.Writer, v domain.View, page int, label string, disabled, active bool) {
	class := "page-item"
	if disabled {
		m.Rawf(`<li class="%s disabled"><span class="page-link">%s</span></li>`, class, markup.E(label))
		return
	}
	if active {
		class += " active"
	}
	m.Rawf(`<li class="%s"><a class="page-link" href="#" hx-get="%s" hx-target="#stock" hx-swap="outerHTML">%s</a></li>`,
		class, markup.E(pageLink(v, page, v.SortBy, v.SortOrder)), markup.E(label))
}
