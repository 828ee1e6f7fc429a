package spacetraveling

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
// Error statuses are never stored by shared caches.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	if code >= http.StatusBadRequest {
		noStore(c)
	}
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// isFragmentRequest reports whether the page script asked for an HTML
// fragment rather than a full page.
func isFragmentRequest(c echo.Context) bool {
	return c.Request().Header.Get(echo.HeaderXRequestedWith) == "XMLHttpRequest"
}

// noStore replaces the caching headers set by cacheControlMiddleware.
func noStore(c echo.Context) {
	c.Response().Header().Set("Cache-Control", "no-store")
}
