package spacetraveling

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/cms"
	"github.com/eringen/spacetraveling/listing"
)

func (a *App) handleHome(c echo.Context) error {
	state, err := a.Cache.Home(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(state))
}

// handleMore answers the load-more trigger. The client sends back the opaque
// token it was given; the server performs the transition from an empty list
// and returns only the new posts plus the next trigger.
func (a *App) handleMore(c echo.Context) error {
	state := a.Listing.Initialize(listing.State{NextPage: c.QueryParam("next")})
	next, err := a.Listing.LoadMore(c.Request().Context(), state)
	if err != nil {
		switch {
		case errors.Is(err, listing.ErrNoMorePages):
			return echo.NewHTTPError(http.StatusBadRequest, "no more pages").SetInternal(err)
		case errors.Is(err, cms.ErrForeignURL):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid page token").SetInternal(err)
		}
		var fe *listing.FetchError
		if errors.As(err, &fe) {
			return echo.NewHTTPError(http.StatusBadGateway, "could not load posts").SetInternal(err)
		}
		return err
	}
	c.Response().Header().Set("Vary", echo.HeaderXRequestedWith)
	if isFragmentRequest(c) {
		return Render(c, a.Views.MoreItems(next))
	}
	return Render(c, a.Views.Home(next))
}

func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	p, err := a.Cache.Post(c.Request().Context(), slug)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	return Render(c, a.Views.Post(p))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.AllPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.AllPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

// handleFavicon prefers the user's static favicon and falls back to the
// built-in one.
func (a *App) handleFavicon(c echo.Context) error {
	path := filepath.Join(a.staticDir, "favicon.svg")
	if _, err := os.Stat(path); err == nil {
		return c.File(path)
	}
	b, err := EmbeddedAssets.ReadFile("embedded/favicon.svg")
	if err != nil {
		return echo.ErrNotFound
	}
	return c.Blob(http.StatusOK, "image/svg+xml", b)
}

func (a *App) handleRobots(c echo.Context) error {
	path := filepath.Join(a.staticDir, "robots.txt")
	if _, err := os.Stat(path); err == nil {
		return c.File(path)
	}
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Disallow: /admin/\n")
	b.WriteString("Disallow: /api/\n")
	b.WriteString("Disallow: /posts/more/\n")
	b.WriteString("\nSitemap: " + strings.TrimRight(BuildURL(a.Config.URL), "/") + "/sitemap.xml\n")
	return c.String(http.StatusOK, b.String())
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	noStore(c)
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		if isFragmentRequest(c) {
			_ = c.String(code, http.StatusText(code))
			return
		}
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
