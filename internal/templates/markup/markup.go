// Package markup is the small writer the hand-built templ components share.
package markup

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Writer accumulates the first write error so components can render
// straight-line and check once at the end.
type Writer struct {
	w   io.Writer
	err error
}

func New(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes trusted markup.
func (m *Writer) Raw(s string) {
	if m.err != nil {
		return
	}
	_, m.err = io.WriteString(m.w, s)
}

// Rawf formats trusted markup. Untrusted arguments must go through E.
func (m *Writer) Rawf(format string, args ...any) {
	if m.err != nil {
		return
	}
	_, m.err = fmt.Fprintf(m.w, format, args...)
}

// Text writes escaped text.
func (m *Writer) Text(s string) {
	m.Raw(templ.EscapeString(s))
}

// Component renders a child component in place.
func (m *Writer) Component(ctx context.Context, c templ.Component) {
	if m.err != nil || c == nil {
		return
	}
	m.err = c.Render(ctx, m.w)
}

func (m *Writer) Err() error {
	return m.err
}

// E escapes s for text or a quoted attribute value.
func E(s string) string {
	return templ.EscapeString(s)
}

// Func adapts a render function into a templ.Component.
func Func(render func(ctx context.Context, m *Writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := New(w)
		render(ctx, m)
		return m.Err()
	})
}
