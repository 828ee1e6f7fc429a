package views

import (
	"strconv"
	"time"

	"github.com/a-h/templ"
)

// AdminLogin renders the password form.
func AdminLogin(site Site, showError bool, csrfToken string) templ.Component {
	return Layout(site, PageMeta{Title: "Admin"}, "", component(func(h *htmlWriter) {
		h.raw(`<main class="container admin"><h1>Admin</h1>`)
		if showError {
			h.raw(`<p class="error">Senha incorreta.</p>`)
		}
		h.raw(`<form method="post" action="/admin/login/">`,
			`<input type="hidden" name="_csrf" value="`, esc(csrfToken), `"/>`,
			`<label>Senha <input type="password" name="password" autofocus required/></label>`,
			`<button type="submit">Entrar</button></form></main>`)
	}))
}

// AdminDashboard shows cache state and the purge and warm actions.
func AdminDashboard(site Site, stats CacheStats, message string, csrfToken string) templ.Component {
	return Layout(site, PageMeta{Title: "Admin"}, "", component(func(h *htmlWriter) {
		h.raw(`<main class="container admin"><h1>Cache</h1>`)
		if message != "" {
			h.raw(`<p class="message">`, esc(message), `</p>`)
		}
		h.raw(`<dl>`)
		h.raw(`<dt>Página inicial</dt><dd>`)
		if stats.HomeCached {
			h.raw(`em cache desde `, esc(stats.HomeFetchedAt.Format(time.RFC3339)))
		} else {
			h.raw(`não carregada`)
		}
		h.raw(`</dd>`)
		h.raw(`<dt>Posts em memória</dt><dd>`, strconv.Itoa(stats.CachedPosts), `</dd>`)
		h.raw(`<dt>Documentos armazenados (`, esc(stats.StorageDriver), `)</dt><dd>`, strconv.Itoa(stats.StoredDocuments), `</dd>`)
		h.raw(`<dt>Revalidação</dt><dd>`, esc(stats.TTL.String()), `</dd>`)
		h.raw(`</dl>`)
		for _, action := range []struct{ path, label string }{
			{"/admin/warm/", "Pré-carregar posts"},
			{"/admin/purge/", "Limpar cache"},
			{"/admin/logout/", "Sair"},
		} {
			h.raw(`<form method="post" action="`, action.path, `">`,
				`<input type="hidden" name="_csrf" value="`, esc(csrfToken), `"/>`,
				`<button type="submit">`, esc(action.label), `</button></form>`)
		}
		h.raw(`</main>`)
	}))
}
