package spacetraveling

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/eringen/spacetraveling/cms"
	"github.com/eringen/spacetraveling/storage"
)

// SiteConfig holds all configuration for a spacetraveling site.
type SiteConfig struct {
	Name        string // Site name (default "spacetraveling")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD

	Addr string // Listen address (default ":3000")

	CMSEndpoint    string        // Required: API v2 endpoint, e.g. https://repo.cdn.prismic.io/api/v2
	CMSAccessToken string        // Optional access token for private repositories
	CMSTimeout     time.Duration // Per-request timeout (default 10s)
	PageSize       int           // Posts per listing page (default 1)

	CacheTTL      time.Duration // Revalidation interval for cached pages (default 1h)
	StorageDriver string        // "sqlite" (default) or "redis"
	StorageDSN    string        // SQLite path or redis:// URL (default "data/documents.db")
	Timezone      string        // IANA zone for displayed dates (default "UTC")

	AdminPassword string // Admin dashboard password; the dashboard is disabled when empty
	SessionSecret string // Session encryption secret, required with AdminPassword
	CookieSecure  bool   // Set true for HTTPS

	WebhookSecret string // Shared secret for POST /api/revalidate; the webhook is disabled when empty
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "spacetraveling"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.CMSTimeout == 0 {
		c.CMSTimeout = 10 * time.Second
	}
	if c.PageSize <= 0 {
		c.PageSize = 1
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = time.Hour
	}
	if c.StorageDriver == "" {
		c.StorageDriver = "sqlite"
	}
	if c.StorageDSN == "" && c.StorageDriver == "sqlite" {
		c.StorageDSN = "data/documents.db"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
}

// Validate reports configuration that would prevent the site from starting.
func (c SiteConfig) Validate() error {
	if c.CMSEndpoint == "" {
		return errors.New("spacetraveling: cms.endpoint is required")
	}
	if c.AdminPassword != "" && c.SessionSecret == "" {
		return errors.New("spacetraveling: admin.session_secret is required when admin.password is set")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("spacetraveling: display.timezone: %w", err)
	}
	return nil
}

// Location returns the zone dates are displayed in, falling back to UTC.
func (c SiteConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfig reads configuration from an optional YAML file and the
// environment. A .env file in the working directory is loaded first when
// present. Environment variables use the key with dots replaced by
// underscores, e.g. CMS_ENDPOINT or SITE_NAME.
func LoadConfig(path string) (SiteConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("spacetraveling")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &nf) {
			return SiteConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := SiteConfig{
		Name:           v.GetString("site.name"),
		URL:            v.GetString("site.url"),
		Description:    v.GetString("site.description"),
		Author:         v.GetString("site.author"),
		Addr:           v.GetString("server.addr"),
		CMSEndpoint:    v.GetString("cms.endpoint"),
		CMSAccessToken: v.GetString("cms.access_token"),
		CMSTimeout:     v.GetDuration("cms.timeout"),
		PageSize:       v.GetInt("cms.page_size"),
		CacheTTL:       v.GetDuration("cache.ttl"),
		StorageDriver:  v.GetString("storage.driver"),
		StorageDSN:     v.GetString("storage.dsn"),
		Timezone:       v.GetString("display.timezone"),
		AdminPassword:  v.GetString("admin.password"),
		SessionSecret:  v.GetString("admin.session_secret"),
		CookieSecure:   v.GetBool("admin.cookie_secure"),
		WebhookSecret:  v.GetString("webhook.secret"),
	}
	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithSource replaces the CMS client built from the configuration.
func WithSource(src cms.Source) Option {
	return func(a *App) {
		a.Source = src
	}
}

// WithStore replaces the document store opened from the configuration.
func WithStore(s storage.Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithViews overrides the built-in templates.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
