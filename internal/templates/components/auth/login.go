package auth

import (
	"context"

	"github.com/a-h/templ"

	"github.com/codr1/Opsboard/internal/templates/layouts"
	"github.com/codr1/Opsboard/internal/templates/markup"
)

type LoginData struct {
	AppName             string
	ClerkEnabled        bool
	ClerkPublishableKey string
	LocalLogin          bool
}

func LoginPage(data LoginData) templ.Component {
	page := layouts.PageData{Title: "Sign in", AppName: data.AppName}
	if data.ClerkEnabled {
		page.Scripts = []string{"/static/js/clerk-login.js"}
	}
	return layouts.Base(page, markup.Func(func(ctx context.Context, m *markup.Writer) {
		m.Raw(`<main class="container py-5" style="max-width:420px">`)
		m.Rawf(`<h1 class="h3 mb-4 text-center">%s</h1>`, markup.E(orDefault(data.AppName, "Sign in")))
		m.Raw(`<div id="login-error"></div>`)

		if data.ClerkEnabled {
			m.Rawf(`<div id="clerk-sign-in" data-publishable-key="%s" data-session-login="/sessionLogin" data-redirect="/home"></div>`,
				markup.E(data.ClerkPublishableKey))
		}
		if data.LocalLogin {
			if data.ClerkEnabled {
				m.Raw(`<hr class="my-4">`)
			}
			m.Raw(`<form hx-post="/login" hx-target="#login-error" hx-swap="innerHTML" method="post" action="/login">`)
			m.Raw(`<div class="mb-3"><label class="form-label" for="email">Email</label>`)
			m.Raw(`<input class="form-control" type="email" id="email" name="email" autocomplete="username" required></div>`)
			m.Raw(`<div class="mb-3"><label class="form-label" for="password">Password</label>`)
			m.Raw(`<input class="form-control" type="password" id="password" name="password" autocomplete="current-password" required></div>`)
			m.Raw(`<button class="btn btn-primary w-100" type="submit">Sign in</button></form>`)
		}
		if !data.ClerkEnabled && !data.LocalLogin {
			m.Raw(`<p class="text-muted text-center">No sign-in method is configured.</p>`)
		}
		m.Raw(`</main>`)
	}))
}

// LoginError is swapped into #login-error after a rejected attempt.
func LoginError(message string) templ.Component {
	return markup.Func(func(ctx context.Context, m *markup.Writer) {
		m.Rawf(`<div class="alert alert-danger" role="alert">%s</div>`, markup.E(message))
	})
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
