package home

import (
	"context"

	"github.com/a-h/templ"

	healthtempl "github.com/codr1/Opsboard/internal/templates/components/health"
	lowratingtempl "github.com/codr1/Opsboard/internal/templates/components/lowrating"
	requeststempl "github.com/codr1/Opsboard/internal/templates/components/requests"
	shipmentstempl "github.com/codr1/Opsboard/internal/templates/components/shipments"
	stocktempl "github.com/codr1/Opsboard/internal/templates/components/stock"
	"github.com/codr1/Opsboard/internal/templates/layouts"
	"github.com/codr1/Opsboard/internal/templates/markup"
)

type Tab struct {
	Key   string
	Label string
}

type HomeData struct {
	AppName    string
	Email      string
	Dashboards []Tab
	Shipments  []Tab
}

type pane struct {
	id     string
	label  string
	render func(ctx context.Context, m *markup.Writer)
}

// lazy renders a placeholder that loads its fragment when first revealed.
func lazy(src string) func(ctx context.Context, m *markup.Writer) {
	return func(ctx context.Context, m *markup.Writer) {
		m.Rawf(`<div hx-get="%s" hx-trigger="revealed" hx-swap="outerHTML"><p class="text-muted">Loading...</p></div>`, markup.E(src))
	}
}

// Home is the signed-in shell: one tab per dashboard, then the shared tools.
func Home(d HomeData) templ.Component {
	var panes []pane
	for _, t := range d.Dashboards {
		panes = append(panes, pane{id: "tab-health-" + t.Key, label: t.Label, render: lazy(healthtempl.BasePath(t.Key))})
	}
	for _, t := range d.Shipments {
		panes = append(panes, pane{id: "tab-shipments-" + t.Key, label: t.Label, render: lazy(shipmentstempl.BasePath(t.Key))})
	}
	panes = append(panes,
		pane{id: "tab-lowratings", label: "Low Ratings", render: lazy(lowratingtempl.BasePath)},
		pane{id: "tab-stock", label: "Stock Count", render: lazy(stocktempl.BasePath)},
		pane{id: "tab-returns", label: "Returns", render: func(ctx context.Context, m *markup.Writer) {
			m.Component(ctx, requeststempl.ReturnForm())
		}},
		pane{id: "tab-repairs", label: "Repairs", render: func(ctx context.Context, m *markup.Writer) {
			m.Component(ctx, requeststempl.RepairForm())
		}},
	)

	page := layouts.PageData{Title: "Home", AppName: d.AppName, Scripts: []string{"https://cdn.jsdelivr.net/npm/bootstrap@5.3.2/dist/js/bootstrap.bundle.min.js"}}
	return layouts.Base(page, markup.Func(func(ctx context.Context, m *markup.Writer) {
		m.Raw(`<nav class="navbar navbar-light bg-light px-3 mb-3">`)
		m.Rawf(`<span class="navbar-brand">%s</span>`, markup.E(d.AppName))
		m.Raw(`<form class="d-flex align-items-center gap-2" method="post" action="/logout" hx-boost="false">`)
		if d.Email != "" {
			m.Rawf(`<span class="text-muted small">%s</span>`, markup.E(d.Email))
		}
		m.Raw(`<button class="btn btn-outline-secondary btn-sm" type="submit">Sign out</button></form></nav>`)

		m.Raw(`<main class="container-fluid"><ul class="nav nav-tabs" role="tablist">`)
		for i, p := range panes {
			active := ""
			if i == 0 {
				active = " active"
			}
			m.Rawf(`<li class="nav-item" role="presentation"><button class="nav-link%s" data-bs-toggle="tab" data-bs-target="#%s" type="button" role="tab">%s</button></li>`,
				active, markup.E(p.id), markup.E(p.label))
		}
		m.Raw(`</ul><div class="tab-content pt-3">`)
		for i, p := range panes {
			class := "tab-pane fade"
			if i == 0 {
				class += " show active"
			}
			m.Rawf(`<div class="%s" id="%s" role="tabpanel">`, class, markup.E(p.id))
			p.render(ctx, m)
			m.Raw(`</div>`)
		}
		m.Raw(`</div></main>`)
	}))
}
