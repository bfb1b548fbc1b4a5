package layouts

import (
	"context"

	"github.com/a-h/templ"

	"github.com/codr1/Opsboard/internal/templates/markup"
)

type PageData struct {
	Title   string
	AppName string
	Scripts []string
}

// Base wraps body in the shared document shell: Bootstrap styles, htmx and
// the app stylesheet.
func Base(data PageData, body templ.Component) templ.Component {
	return markup.Func(func(ctx context.Context, m *markup.Writer) {
		title := data.Title
		if data.AppName != "" {
			title = data.Title + " | " + data.AppName
		}
		m.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8">`)
		m.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1.0">`)
		m.Rawf(`<title>%s</title>`, markup.E(title))
		m.Raw(`<link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.2/dist/css/bootstrap.min.css" rel="stylesheet">`)
		m.Raw(`<link href="/static/css/app.css" rel="stylesheet">`)
		m.Raw(`<script src="https://unpkg.com/htmx.org@1.9.12"></script>`)
		for _, src := range data.Scripts {
			m.Rawf(`<script src="%s" defer></script>`, markup.E(src))
		}
		m.Raw(`</head><body hx-boost="true">`)
		m.Component(ctx, body)
		m.Raw(`</body></html>`)
	})
}
