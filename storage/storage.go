// Package storage keeps copies of raw CMS documents so pages can still be
// served when the content API is unavailable, and so posts can be fetched
// ahead of the first request.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrMiss is returned when a document is not stored.
var ErrMiss = errors.New("storage: document not stored")

// Entry is a stored document body (the raw JSON returned by the API).
type Entry struct {
	Type      string
	UID       string
	Body      []byte
	FetchedAt time.Time
}

// Store persists documents keyed by (type, uid).
type Store interface {
	Get(ctx context.Context, docType, uid string) (Entry, error)
	Put(ctx context.Context, e Entry) error
	// List returns every stored document of docType, most recently fetched first.
	List(ctx context.Context, docType string) ([]Entry, error)
	Count(ctx context.Context) (int, error)
	Purge(ctx context.Context) error
	Close() error
}

// Open returns the store for driver ("sqlite" or "redis"). For sqlite dsn is a
// file path; for redis it is a redis:// URL.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case "", "sqlite":
		return NewSQLiteStore(dsn)
	case "redis":
		return NewRedisStoreFromURL(dsn)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", driver)
	}
}
