package htmx

import (
	"net/http"
	"strings"
)

func IsRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("HX-Request"), "true")
}

// Redirect asks htmx to perform a full page navigation.
func Redirect(w http.ResponseWriter, target string) {
	w.Header().Set("HX-Redirect", target)
}

// Trigger fires a client-side event after the swap.
func Trigger(w http.ResponseWriter, event string) {
	w.Header().Set("HX-Trigger", event)
}
