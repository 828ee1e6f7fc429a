package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/datefmt"
	"github.com/eringen/spacetraveling/post"
	"github.com/eringen/spacetraveling/richtext"
)

// Post renders a single post page.
func Post(site Site, p post.Detail) templ.Component {
	meta := PageMeta{
		Title:       p.Title,
		Description: p.Subtitle,
		URL:         buildURL(site.URL, "post", p.UID),
		OGType:      "article",
	}
	if richtext.SafeURL(p.BannerURL) != "" {
		meta.Image = p.BannerURL
	}
	return Layout(site, meta, BlogPostingJsonLD(site, p), component(func(h *htmlWriter) {
		if src := richtext.SafeURL(p.BannerURL); src != "" {
			alt := p.BannerAlt
			if alt == "" {
				alt = "banner"
			}
			h.raw(`<img class="banner" src="`, src, `" alt="`, esc(alt), `"/>`)
		}
		h.raw(`<main class="container post">`)
		h.raw(`<h1>`)
		h.text(p.Title)
		h.raw(`</h1>`)
		h.raw(`<div class="info">`)
		if p.DisplayDate != "" {
			h.raw(`<time datetime="`, esc(datefmt.ISODate(p.PublishedAt)), `">`, esc(p.DisplayDate), `</time>`)
		}
		if p.Author != "" {
			h.raw(`<span class="author">`, esc(p.Author), `</span>`)
		}
		h.raw(`<span class="reading-time">`, strconv.Itoa(p.ReadingMinutes), ` min</span>`)
		h.raw(`</div>`)
		for _, s := range p.Sections {
			h.raw(`<section class="content">`)
			if s.Heading != "" {
				h.raw(`<h2>`, esc(s.Heading), `</h2>`)
			}
			h.component(richtext.HTML(s.Body))
			h.raw(`</section>`)
		}
		h.raw(`</main>`)
	}))
}

// NotFound renders the 404 page.
func NotFound(site Site) templ.Component {
	return Layout(site, PageMeta{Title: "Página não encontrada"}, "", component(func(h *htmlWriter) {
		h.raw(`<main class="container status"><h1>404</h1><p>Post não encontrado.</p><a href="/">Voltar para o início</a></main>`)
	}))
}

// ServerError renders the 5xx page.
func ServerError(site Site) templ.Component {
	return Layout(site, PageMeta{Title: "Erro"}, "", component(func(h *htmlWriter) {
		h.raw(`<main class="container status"><h1>Ops!</h1><p>Não foi possível carregar o conteúdo agora. Tente novamente em instantes.</p><a href="/">Voltar para o início</a></main>`)
	}))
}
