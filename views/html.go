package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// htmlWriter accumulates the first write error so components read top to bottom.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(parts ...string) {
	for _, p := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, p)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(esc(s))
}

func (h *htmlWriter) component(c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}

func component(fn func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}
		fn(h)
		return h.err
	})
}

func esc(s string) string {
	return templ.EscapeString(s)
}
