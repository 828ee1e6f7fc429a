package views

import "time"

// Site holds site-wide settings populated from configuration.
// Every page receives it so nothing is hardcoded.
type Site struct {
	Name        string // SITE_NAME  (default "spacetraveling")
	URL         string // SITE_URL   (default "http://localhost:3000")
	Description string // SITE_DESCRIPTION
	Author      string // SITE_AUTHOR
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head>.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image
}

// CacheStats is what the admin dashboard shows about cached content.
type CacheStats struct {
	HomeCached      bool
	HomeFetchedAt   time.Time
	CachedPosts     int
	StoredDocuments int
	StorageDriver   string
	TTL             time.Duration
}
