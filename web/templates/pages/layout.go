package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/jon4hz/foxtip/internal/api/models"
)

// writer accumulates the first write error so pages can be written linearly.
type writer struct {
	w   io.Writer
	err error
}

// raw writes trusted markup.
func (w *writer) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

// rawf writes trusted markup with escaped arguments.
func (w *writer) rawf(format string, args ...any) {
	escaped := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case string:
			escaped[i] = templ.EscapeString(v)
		default:
			escaped[i] = v
		}
	}
	w.raw(fmt.Sprintf(format, escaped...))
}

// text writes escaped text.
func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) render(ctx context.Context, c templ.Component) {
	if w.err != nil || c == nil {
		return
	}
	w.err = c.Render(ctx, w.w)
}

func component(f func(ctx context.Context, w *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		f(ctx, w)
		return w.err
	})
}

// layout wraps body in the common page chrome. user is nil on public pages.
func layout(title string, user *models.User, body templ.Component) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		w.raw(`<!DOCTYPE html><html lang="hu"><head><meta charset="utf-8">`)
		w.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		w.rawf(`<title>%s · foxtip</title>`, title)
		w.raw(`<link rel="stylesheet" href="/static/style.css"></head><body>`)

		w.raw(`<header class="nav"><a class="brand" href="/">🦊 foxtip</a>`)
		if user != nil {
			w.raw(`<nav>`)
			w.raw(`<a href="/dashboard">Dashboard</a>`)
			if user.IsAdmin {
				w.raw(`<a href="/admin">Admin</a>`)
			}
			w.raw(`<span class="user">`)
			if user.GravatarURL != "" {
				w.rawf(`<img class="avatar" src="%s" alt="">`, user.GravatarURL)
			}
			w.text(user.DisplayName())
			w.raw(`</span><a href="/logout">Kilépés</a></nav>`)
		}
		w.raw(`</header><main>`)

		w.render(ctx, body)

		w.raw(`</main></body></html>`)
	})
}
