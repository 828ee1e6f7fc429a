// Package spacetraveling is a blog front-end built with Go, Echo, and templ.
// Posts live in a headless CMS; the site lists them with incremental
// "load more" pagination and renders each post with a reading-time estimate.
//
// Templates are supplied through the ViewFuncs struct (DefaultViews provides
// the built-in ones), and spacetraveling handles the handler logic,
// middleware, caching, and document storage.
package spacetraveling

import (
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eringen/spacetraveling/cms"
	"github.com/eringen/spacetraveling/listing"
	"github.com/eringen/spacetraveling/post"
	"github.com/eringen/spacetraveling/storage"
	"github.com/eringen/spacetraveling/views"
)

// ViewFuncs holds the templ components the handlers render.
type ViewFuncs struct {
	Home           func(state listing.State) templ.Component
	MoreItems      func(state listing.State) templ.Component
	Post           func(p post.Detail) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(stats views.CacheStats, message string, csrfToken string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// DefaultViews returns the built-in templates for cfg.
func DefaultViews(cfg SiteConfig) ViewFuncs {
	site := cfg.Site()
	return ViewFuncs{
		Home:      func(s listing.State) templ.Component { return views.Home(site, s) },
		MoreItems: views.MoreFragment,
		Post:      func(p post.Detail) templ.Component { return views.Post(site, p) },
		AdminLogin: func(showError bool, csrfToken string) templ.Component {
			return views.AdminLogin(site, showError, csrfToken)
		},
		AdminDashboard: func(stats views.CacheStats, message, csrfToken string) templ.Component {
			return views.AdminDashboard(site, stats, message, csrfToken)
		},
		NotFound:    func() templ.Component { return views.NotFound(site) },
		ServerError: func() templ.Component { return views.ServerError(site) },
	}
}

// Site returns the values every page needs from the configuration.
func (c SiteConfig) Site() views.Site {
	return views.Site{
		Name:        c.Name,
		URL:         c.URL,
		Description: c.Description,
		Author:      c.Author,
	}
}

// App is the central spacetraveling application. It wires together the
// content source, document store, caches, handlers, middleware, and templates.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Source  cms.Source
	Store   storage.Store
	Cache   *PostCache
	Listing *listing.Controller
	Views   ViewFuncs

	metrics        *prometheus.Registry
	loginLimiter   *RateLimiter
	webhookLimiter *RateLimiter
	customRoutes   []func(*App)
	staticDir      string
	initialized    bool
}

// New creates a new App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     DefaultViews(cfg),
		metrics:   prometheus.NewRegistry(),
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init builds the content source, store, and cache, and registers middleware
// and routes. Start calls it; tests call it directly and drive a.Echo.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if a.Source == nil {
		if err := a.Config.Validate(); err != nil {
			return err
		}
		client, err := cms.New(a.Config.CMSEndpoint,
			cms.WithAccessToken(a.Config.CMSAccessToken),
			cms.WithTimeout(a.Config.CMSTimeout),
		)
		if err != nil {
			return fmt.Errorf("spacetraveling: init cms client: %w", err)
		}
		a.Source = client
	}

	if a.Store == nil {
		store, err := storage.Open(a.Config.StorageDriver, a.Config.StorageDSN)
		if err != nil {
			return fmt.Errorf("spacetraveling: init store: %w", err)
		}
		a.Store = store
	}

	loc := a.Config.Location()
	a.Listing = listing.NewController(a.Source, loc)
	a.Cache = NewPostCache(a.Source, a.Store, a.Listing, CacheOptions{
		TTL:      a.Config.CacheTTL,
		PageSize: a.Config.PageSize,
		Location: loc,
	})

	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.webhookLimiter = NewRateLimiter(30, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

// Start initializes the app and starts the server.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Echo.Logger.Infof("spacetraveling: listening on %s (cms %s)", a.Config.Addr, a.Config.CMSEndpoint)
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Built-in assets (style.css, loadmore.js) are served under /public/ ahead
	// of the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/style.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/loadmore.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/metrics", a.metricsHandler())
	e.GET("/", a.handleHome)
	e.GET("/posts/more/", a.handleMore)
	e.GET("/post/:slug/", a.handlePost)
	e.GET("/blog", handleBlogRedirect)

	e.POST("/api/revalidate", a.handleRevalidate)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.POST("/admin/purge/", a.handleAdminPurge)
	e.POST("/admin/warm/", a.handleAdminWarm)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
		a.webhookLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
