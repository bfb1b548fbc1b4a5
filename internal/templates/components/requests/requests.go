package requests

import (
	"context"

	"github.com/a-h/templ"

	"github.com/codr1/Opsboard/internal/templates/layouts"
	"github.com/codr1/Opsboard/internal/templates/markup"
)

const homePath = "/home"

// ReturnForm posts a multipart return request with up to five media files.
func ReturnForm() templ.Component {
	return markup.Func(func(ctx context.Context, m *markup.Writer) {
		m.Raw(`<form id="return-form" method="post" action="/returns" enctype="multipart/form-data" hx-boost="false">`)
		m.Raw(`<div class="mb-3"><label class="form-label" for="trackingNumber">Tracking number</label>`)
		m.Raw(`<input class="form-control" id="trackingNumber" name="trackingNumber" required></div>`)
		m.Raw(`<div class="mb-3"><label class="form-label" for="reason">Reason</label>`)
		m.Raw(`<textarea class="form-control" id="reason" name="reason" rows="3"></textarea></div>`)
		m.Raw(`<div class="mb-3"><label class="form-label" for="return-applicant">Applicant</label>`)
		m.Raw(`<input class="form-control" id="return-applicant" name="applicant" placeholder="Defaults to your email"></div>`)
		m.Raw(`<div class="mb-3"><label class="form-label" for="return-media">Media (up to 5 files, 10MB each)</label>`)
		m.Raw(`<input class="form-control" type="file" id="return-media" name="media" multiple accept="image/*,video/*"></div>`)
		m.Raw(`<button class="btn btn-primary" type="submit">Submit return</button></form>`)
	})
}

// RepairForm posts a multipart repair request.
func RepairForm() templ.Component {
	return markup.Func(func(ctx context.Context, m *markup.Writer) {
		m.Raw(`<form id="repair-form" method="post" action="/repairs" enctype="multipart/form-data" hx-boost="false"><div class="row g-3">`)
		m.Raw(`<div class="col-md-6"><label class="form-label" for="receive_date">Receive date</label>`)
		m.Raw(`<input class="form-control" type="date" id="receive_date" name="receive_date"></div>`)
		m.Raw(`<div class="col-md-6"><label class="form-label" for="repair_date">Repair date</label>`)
		m.Raw(`<input class="form-control" type="date" id="repair_date" name="repair_date"></div>`)
		for _, f := range []struct{ name, label string }{
			{"purpose", "Purpose"},
			{"order_id", "Order ID"},
			{"variation", "Variation"},
			{"issue", "Issue"},
			{"actions", "Actions"},
			{"applicant", "Applicant"},
		} {
			m.Rawf(`<div class="col-md-6"><label class="form-label" for="repair-%s">%s</label>`, f.name, f.label)
			m.Rawf(`<input class="form-control" id="repair-%s" name="%s"></div>`, f.name, f.name)
		}
		m.Raw(`<div class="col-12"><label class="form-label" for="repair-media">Media (up to 5 files, 10MB each)</label>`)
		m.Raw(`<input class="form-control" type="file" id="repair-media" name="media" multiple accept="image/*,video/*"></div>`)
		m.Raw(`</div><button class="btn btn-primary mt-3" type="submit">Submit repair</button></form>`)
	})
}

func submitted(appName, title string, body templ.Component) templ.Component {
	return layouts.Base(layouts.PageData{Title: title, AppName: appName}, markup.Func(func(ctx context.Context, m *markup.Writer) {
		m.Raw(`<main class="d-flex align-items-center justify-content-center min-vh-100">`)
		m.Raw(`<div class="card shadow-sm text-center" style="max-width:400px;width:100%">`)
		m.Rawf(`<div class="card-header bg-primary text-white"><h4 class="m-0">%s</h4></div>`, markup.E(title))
		m.Raw(`<div class="card-body">`)
		m.Component(ctx, body)
		m.Rawf(`<a class="btn btn-primary mt-3" href="%s">Go Back</a>`, homePath)
		m.Raw(`</div></div></main>`)
	}))
}

func ReturnSubmitted(appName string) templ.Component {
	return submitted(appName, "Submission Successful", markup.Func(func(ctx context.Context, m *markup.Writer) {
		m.Raw(`<p>Your return request has been submitted successfully!</p>`)
	}))
}

func RepairSubmitted(appName, repairID string) templ.Component {
	return submitted(appName, "Repair Request Submitted", markup.Func(func(ctx context.Context, m *markup.Writer) {
		m.Raw(`<p>Your repair request has been submitted successfully!</p>`)
		m.Rawf(`<p>Your Repair ID:</p><p class="fs-4 fw-bold font-monospace repair-id">%s</p>`, markup.E(repairID))
		m.Raw(`<p class="text-muted">Please save this ID for your records</p>`)
	}))
}
