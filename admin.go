package spacetraveling

import (
	"crypto/subtle"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// adminEnabled guards every admin route; without a password the dashboard
// does not exist.
func (a *App) adminEnabled() bool {
	return a.Config.AdminPassword != ""
}

func (a *App) handleAdmin(c echo.Context) error {
	if !a.adminEnabled() {
		return echo.ErrNotFound
	}
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	if !a.adminEnabled() {
		return echo.ErrNotFound
	}
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminPurge(c echo.Context) error {
	if !a.adminEnabled() {
		return echo.ErrNotFound
	}
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Cache.Purge(c.Request().Context()); err != nil {
		return err
	}
	c.Logger().Infof("admin: cache purged")
	return a.renderAdminDashboard(c, "Cache limpo.")
}

func (a *App) handleAdminWarm(c echo.Context) error {
	if !a.adminEnabled() {
		return echo.ErrNotFound
	}
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	n, err := a.Cache.Warm(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("admin: warm: %v", err)
		return a.renderAdminDashboard(c, "Falha ao pré-carregar posts.")
	}
	c.Logger().Infof("admin: warmed %d posts", n)
	return a.renderAdminDashboard(c, strconv.Itoa(n)+" posts pré-carregados.")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	stats := a.Cache.Stats(c.Request().Context())
	stats.StorageDriver = a.Config.StorageDriver
	return Render(c, a.Views.AdminDashboard(stats, msg, CsrfToken(c)))
}
