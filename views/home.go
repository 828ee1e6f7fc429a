package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/datefmt"
	"github.com/eringen/spacetraveling/listing"
)

// Home renders the listing page for state.
func Home(site Site, state listing.State) templ.Component {
	meta := PageMeta{URL: buildURL(site.URL), OGType: "website"}
	return Layout(site, meta, WebsiteJsonLD(site), component(func(h *htmlWriter) {
		h.raw(`<main class="container">`)
		if len(state.Posts) == 0 {
			h.raw(`<p class="empty">Nenhum post publicado ainda.</p>`)
		}
		h.raw(`<ul class="posts" id="posts">`)
		h.component(PostItems(state.Posts))
		h.raw(`</ul>`)
		h.component(LoadMore(state.NextPage))
		h.raw(`</main>`)
	}))
}

// MoreFragment is the response to a load-more request: the new list items
// wrapped in a <ul> and the next trigger, if any.
func MoreFragment(state listing.State) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<ul>`)
		h.component(PostItems(state.Posts))
		h.raw(`</ul>`)
		h.component(LoadMore(state.NextPage))
	})
}

// PostItems renders one <li> per post.
func PostItems(posts []listing.Summary) templ.Component {
	return component(func(h *htmlWriter) {
		for _, p := range posts {
			h.raw(`<li><a href="`, esc(PostPath(p.UID)), `">`)
			h.raw(`<h2>`, esc(p.Title), `</h2>`)
			if p.Subtitle != "" {
				h.raw(`<p>`, esc(p.Subtitle), `</p>`)
			}
			h.raw(`<div class="info">`)
			if p.DisplayDate != "" {
				h.raw(`<time datetime="`, esc(datefmt.ISODate(p.PublishedAt)), `">`, esc(p.DisplayDate), `</time>`)
			}
			if p.Author != "" {
				h.raw(`<span class="author">`, esc(p.Author), `</span>`)
			}
			h.raw(`</div></a></li>`)
		}
	})
}

// LoadMore renders the trigger for the next page. Nothing is rendered when
// there is no next page, so the action is unavailable exactly then.
func LoadMore(next string) templ.Component {
	return component(func(h *htmlWriter) {
		if next == "" {
			return
		}
		h.raw(`<a class="load-more" data-load-more href="`, esc(MorePath(next)), `">Carregar mais posts</a>`)
	})
}
