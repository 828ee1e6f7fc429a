package views

import "github.com/a-h/templ"

// Layout wraps body in the document shell shared by every page.
func Layout(site Site, meta PageMeta, jsonLD string, body templ.Component) templ.Component {
	return component(func(h *htmlWriter) {
		title := site.Name
		if meta.Title != "" {
			title = meta.Title + " | " + site.Name
		}
		description := meta.Description
		if description == "" {
			description = site.Description
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}

		h.raw(`<!DOCTYPE html><html lang="pt-BR"><head>`,
			`<meta charset="utf-8"/>`,
			`<meta name="viewport" content="width=device-width, initial-scale=1"/>`,
			`<title>`, esc(title), `</title>`)
		if description != "" {
			h.raw(`<meta name="description" content="`, esc(description), `"/>`,
				`<meta property="og:description" content="`, esc(description), `"/>`)
		}
		h.raw(`<meta property="og:title" content="`, esc(title), `"/>`,
			`<meta property="og:type" content="`, esc(ogType), `"/>`,
			`<meta property="og:site_name" content="`, esc(site.Name), `"/>`)
		if meta.URL != "" {
			h.raw(`<link rel="canonical" href="`, esc(meta.URL), `"/>`,
				`<meta property="og:url" content="`, esc(meta.URL), `"/>`)
		}
		if meta.Image != "" {
			h.raw(`<meta property="og:image" content="`, esc(meta.Image), `"/>`)
		}
		h.raw(`<link rel="icon" href="/favicon.svg" type="image/svg+xml"/>`,
			`<link rel="alternate" type="application/rss+xml" title="`, esc(site.Name), `" href="/feed.xml"/>`,
			`<link rel="stylesheet" href="/public/style.css"/>`,
			`<script src="/public/loadmore.js" defer></script>`)
		if jsonLD != "" {
			h.raw(`<script type="application/ld+json">`, jsonLD, `</script>`)
		}
		h.raw(`</head><body>`)
		h.component(Header(site))
		h.component(body)
		h.raw(`</body></html>`)
	})
}

// Header renders the site logo linking home.
func Header(site Site) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<header class="header"><div class="header-content"><a href="/" class="logo" aria-label="`, esc(site.Name), `">`)
		h.raw(`<img src="/favicon.svg" alt="" width="40" height="26"/>`)
		h.raw(`<span>`, esc(site.Name), `</span><span class="dot">.</span></a></div></header>`)
	})
}
