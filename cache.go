package spacetraveling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/eringen/spacetraveling/cms"
	"github.com/eringen/spacetraveling/listing"
	"github.com/eringen/spacetraveling/post"
	"github.com/eringen/spacetraveling/storage"
	"github.com/eringen/spacetraveling/views"
)

const (
	allPostsPageSize = 100
	allPostsMaxPages = 10
	warmLimit        = 100
)

// CacheOptions tunes a PostCache.
type CacheOptions struct {
	TTL      time.Duration // revalidation interval
	PageSize int           // posts on the first listing page
	Location *time.Location
}

type cachedPost struct {
	detail  post.Detail
	fetched time.Time
}

// PostCache keeps rendered-ready content in memory with a TTL, in front of
// the CMS. Full documents are copied to the Store so a page can still be
// served when the CMS fails.
type PostCache struct {
	mu          sync.RWMutex
	home        *listing.State
	homeFetched time.Time
	all         []listing.Summary
	allFetched  time.Time
	posts       map[string]cachedPost

	ttl      time.Duration
	pageSize int
	loc      *time.Location
	source   cms.Source
	store    storage.Store
	listing  *listing.Controller
}

// NewPostCache creates a PostCache reading from src and persisting to store.
func NewPostCache(src cms.Source, store storage.Store, ctrl *listing.Controller, opts CacheOptions) *PostCache {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 1
	}
	if ctrl == nil {
		ctrl = listing.NewController(src, opts.Location)
	}
	return &PostCache{
		posts:    make(map[string]cachedPost),
		ttl:      opts.TTL,
		pageSize: opts.PageSize,
		loc:      opts.Location,
		source:   src,
		store:    store,
		listing:  ctrl,
	}
}

func (c *PostCache) fresh(fetched time.Time) bool {
	return !fetched.IsZero() && time.Since(fetched) < c.ttl
}

// Invalidate clears the in-memory cache so the next read goes to the CMS.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.home = nil
	c.homeFetched = time.Time{}
	c.all = nil
	c.allFetched = time.Time{}
	c.posts = make(map[string]cachedPost)
	c.mu.Unlock()
}

// Purge clears the in-memory cache and every stored document.
func (c *PostCache) Purge(ctx context.Context) error {
	c.Invalidate()
	return c.store.Purge(ctx)
}

// Home returns the first listing page. When the CMS fails it serves the last
// good snapshot, then every stored post.
func (c *PostCache) Home(ctx context.Context) (listing.State, error) {
	c.mu.RLock()
	if c.home != nil && c.fresh(c.homeFetched) {
		s := c.listing.Initialize(*c.home)
		c.mu.RUnlock()
		return s, nil
	}
	c.mu.RUnlock()

	s, err := c.listing.Snapshot(ctx, c.source, c.pageSize)
	if err == nil {
		c.mu.Lock()
		c.home = &s
		c.homeFetched = time.Now()
		c.mu.Unlock()
		return c.listing.Initialize(s), nil
	}

	c.mu.RLock()
	stale := c.home
	c.mu.RUnlock()
	if stale != nil {
		slog.Warn("serving stale home listing", "err", err)
		return c.listing.Initialize(*stale), nil
	}

	stored, serr := c.storedSummaries(ctx)
	if serr != nil || len(stored) == 0 {
		return listing.State{}, err
	}
	// Without the CMS there is no token to continue from, so every stored
	// post is listed at once.
	slog.Warn("serving home listing from store", "err", err, "posts", len(stored))
	return listing.State{Posts: stored}, nil
}

// Post returns the post whose identifier is uid. cms.ErrNotFound is returned
// when the CMS says it does not exist.
func (c *PostCache) Post(ctx context.Context, uid string) (post.Detail, error) {
	c.mu.RLock()
	cp, ok := c.posts[uid]
	c.mu.RUnlock()
	if ok && c.fresh(cp.fetched) {
		return cp.detail, nil
	}

	doc, err := c.source.GetByUID(ctx, post.DocType, uid)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			c.mu.Lock()
			delete(c.posts, uid)
			c.mu.Unlock()
			return post.Detail{}, err
		}
		if ok {
			slog.Warn("serving stale post", "uid", uid, "err", err)
			return cp.detail, nil
		}
		d, serr := c.storedPost(ctx, uid)
		if serr != nil {
			return post.Detail{}, err
		}
		slog.Warn("serving post from store", "uid", uid, "err", err)
		return d, nil
	}

	d, err := c.remember(ctx, uid, *doc)
	if err != nil {
		return post.Detail{}, err
	}
	return d, nil
}

// remember persists doc under uid and caches its mapped detail.
func (c *PostCache) remember(ctx context.Context, uid string, doc cms.Document) (post.Detail, error) {
	d, err := post.MapDetail(doc, c.loc)
	if err != nil {
		return post.Detail{}, err
	}
	if body, err := json.Marshal(doc); err == nil {
		if err := c.store.Put(ctx, storage.Entry{Type: post.DocType, UID: uid, Body: body, FetchedAt: time.Now()}); err != nil {
			slog.Warn("store post", "uid", uid, "err", err)
		}
	}
	c.mu.Lock()
	c.posts[uid] = cachedPost{detail: d, fetched: time.Now()}
	c.mu.Unlock()
	return d, nil
}

// AllPosts returns the summaries of every published post, newest first, for
// the sitemap and feed.
func (c *PostCache) AllPosts(ctx context.Context) ([]listing.Summary, error) {
	c.mu.RLock()
	if c.all != nil && c.fresh(c.allFetched) {
		all := c.all
		c.mu.RUnlock()
		return all, nil
	}
	c.mu.RUnlock()

	all, err := c.fetchAll(ctx)
	if err != nil {
		c.mu.RLock()
		stale := c.all
		c.mu.RUnlock()
		if stale != nil {
			slog.Warn("serving stale post index", "err", err)
			return stale, nil
		}
		stored, serr := c.storedSummaries(ctx)
		if serr != nil || len(stored) == 0 {
			return nil, err
		}
		slog.Warn("serving post index from store", "err", err)
		return stored, nil
	}

	c.mu.Lock()
	c.all = all
	c.allFetched = time.Now()
	c.mu.Unlock()
	return all, nil
}

func (c *PostCache) fetchAll(ctx context.Context) ([]listing.Summary, error) {
	var all []listing.Summary
	for page := 1; page <= allPostsMaxPages; page++ {
		resp, err := c.source.QueryByType(ctx, post.DocType, cms.QueryOptions{
			Fields:    listing.SummaryFields,
			PageSize:  allPostsPageSize,
			Page:      page,
			Orderings: "[document.first_publication_date desc]",
		})
		if err != nil {
			return nil, fmt.Errorf("list posts page %d: %w", page, err)
		}
		summaries, err := listing.MapSummaries(resp.Results, c.loc)
		if err != nil {
			return nil, err
		}
		all = append(all, summaries...)
		if resp.Next() == "" {
			break
		}
	}
	if all == nil {
		all = []listing.Summary{}
	}
	return all, nil
}

// Warm fetches up to 100 full posts and stores them, so their pages are
// served without a CMS round trip and survive CMS outages.
func (c *PostCache) Warm(ctx context.Context) (int, error) {
	resp, err := c.source.QueryByType(ctx, post.DocType, cms.QueryOptions{
		PageSize:  warmLimit,
		Orderings: "[document.first_publication_date desc]",
	})
	if err != nil {
		return 0, fmt.Errorf("warm: %w", err)
	}
	n := 0
	for _, doc := range resp.Results {
		uid := doc.Slug()
		if uid == "" {
			continue
		}
		if _, err := c.remember(ctx, uid, doc); err != nil {
			slog.Warn("warm: skip document", "id", doc.ID, "err", err)
			continue
		}
		n++
	}
	return n, nil
}

// Stats reports what is cached for the admin dashboard.
func (c *PostCache) Stats(ctx context.Context) views.CacheStats {
	c.mu.RLock()
	stats := views.CacheStats{
		HomeCached:    c.home != nil,
		HomeFetchedAt: c.homeFetched,
		CachedPosts:   len(c.posts),
		TTL:           c.ttl,
	}
	c.mu.RUnlock()
	if n, err := c.store.Count(ctx); err == nil {
		stats.StoredDocuments = n
	}
	return stats
}

func (c *PostCache) storedPost(ctx context.Context, uid string) (post.Detail, error) {
	e, err := c.store.Get(ctx, post.DocType, uid)
	if err != nil {
		return post.Detail{}, err
	}
	var doc cms.Document
	if err := json.Unmarshal(e.Body, &doc); err != nil {
		return post.Detail{}, fmt.Errorf("decode stored post %s: %w", uid, err)
	}
	return post.MapDetail(doc, c.loc)
}

// storedSummaries lists stored posts newest publication first.
func (c *PostCache) storedSummaries(ctx context.Context) ([]listing.Summary, error) {
	entries, err := c.store.List(ctx, post.DocType)
	if err != nil {
		return nil, err
	}
	out := make([]listing.Summary, 0, len(entries))
	for _, e := range entries {
		var doc cms.Document
		if err := json.Unmarshal(e.Body, &doc); err != nil {
			continue
		}
		s, err := listing.MapSummary(doc, c.loc)
		if err != nil {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].PublishedAt, out[j].PublishedAt
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})
	return out, nil
}
