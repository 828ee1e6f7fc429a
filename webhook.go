package spacetraveling

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// revalidatePayload is the part of the CMS webhook body we read.
type revalidatePayload struct {
	Type   string `json:"type"`
	Secret string `json:"secret"`
	Domain string `json:"domain"`
}

// handleRevalidate drops cached pages when the CMS reports a publication.
// Stored documents are kept; they are replaced as pages are fetched again.
func (a *App) handleRevalidate(c echo.Context) error {
	if a.Config.WebhookSecret == "" {
		return echo.ErrNotFound
	}
	if !a.webhookLimiter.Allow(c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limited"})
	}
	var p revalidatePayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if subtle.ConstantTimeCompare([]byte(p.Secret), []byte(a.Config.WebhookSecret)) != 1 {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid secret"})
	}
	a.Cache.Invalidate()
	c.Logger().Infof("webhook: %s revalidated (%s)", p.Type, p.Domain)
	return c.JSON(http.StatusOK, map[string]bool{"revalidated": true})
}
