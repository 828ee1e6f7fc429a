// Package listing holds the post list shown on the home page and the
// "load more" transition that appends the next page from the content source.
//
// State is a plain value: LoadMore never mutates the state it is given and
// returns a new one, so a failed call leaves the caller's state untouched.
package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eringen/spacetraveling/cms"
	"github.com/eringen/spacetraveling/datefmt"
	"github.com/eringen/spacetraveling/richtext"
)

// DocType is the custom type listed on the home page.
const DocType = "post"

// SummaryFields are the only fields fetched for list entries.
var SummaryFields = []string{"post.title", "post.subtitle", "post.author"}

// ErrNoMorePages is returned by LoadMore when the state has no continuation
// token. Callers are expected to hide the action instead of triggering it.
var ErrNoMorePages = errors.New("listing: no more pages")

// FetchError wraps a failure to load or decode the next page.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return "listing: fetch next page: " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// Summary is one entry of the post list.
type Summary struct {
	UID         string
	PublishedAt *time.Time
	DisplayDate string
	Title       string
	Subtitle    string
	Author      string
}

// State is the visible list plus the opaque token of the next page.
// An empty NextPage means the source has nothing more.
type State struct {
	Posts    []Summary
	NextPage string
}

// HasMore reports whether another page can be loaded.
func (s State) HasMore() bool {
	return s.NextPage != ""
}

// Controller performs the list transitions against a content source.
type Controller struct {
	pages cms.PageFetcher
	loc   *time.Location
}

// NewController returns a Controller fetching pages from src and formatting
// dates in loc (UTC when nil).
func NewController(src cms.PageFetcher, loc *time.Location) *Controller {
	if loc == nil {
		loc = time.UTC
	}
	return &Controller{pages: src, loc: loc}
}

// Initialize seeds a state from a server-provided snapshot.
func (c *Controller) Initialize(snapshot State) State {
	posts := make([]Summary, len(snapshot.Posts))
	copy(posts, snapshot.Posts)
	return State{Posts: posts, NextPage: snapshot.NextPage}
}

// LoadMore fetches the page at s.NextPage and returns s with the new posts
// appended in source order. Duplicates across pages are kept.
func (c *Controller) LoadMore(ctx context.Context, s State) (State, error) {
	if !s.HasMore() {
		return s, ErrNoMorePages
	}
	resp, err := c.pages.FetchPage(ctx, s.NextPage)
	if err != nil {
		return s, &FetchError{Err: err}
	}
	fetched, err := MapSummaries(resp.Results, c.loc)
	if err != nil {
		return s, &FetchError{Err: err}
	}

	posts := make([]Summary, 0, len(s.Posts)+len(fetched))
	posts = append(posts, s.Posts...)
	posts = append(posts, fetched...)
	return State{Posts: posts, NextPage: resp.Next()}, nil
}

// Snapshot builds the initial state from the first page of posts.
func (c *Controller) Snapshot(ctx context.Context, q cms.Querier, pageSize int) (State, error) {
	resp, err := q.QueryByType(ctx, DocType, cms.QueryOptions{
		Fields:   SummaryFields,
		PageSize: pageSize,
	})
	if err != nil {
		return State{}, fmt.Errorf("listing: snapshot: %w", err)
	}
	posts, err := MapSummaries(resp.Results, c.loc)
	if err != nil {
		return State{}, fmt.Errorf("listing: snapshot: %w", err)
	}
	return c.Initialize(State{Posts: posts, NextPage: resp.Next()}), nil
}

type summaryData struct {
	Title    richtext.Text `json:"title"`
	Subtitle richtext.Text `json:"subtitle"`
	Author   richtext.Text `json:"author"`
}

// MapSummary converts a raw document into a list entry.
func MapSummary(doc cms.Document, loc *time.Location) (Summary, error) {
	var data summaryData
	if len(doc.Data) > 0 {
		if err := json.Unmarshal(doc.Data, &data); err != nil {
			return Summary{}, fmt.Errorf("document %s: decode data: %w", doc.ID, err)
		}
	}
	published, err := datefmt.ParsePtr(doc.FirstPublicationDate)
	if err != nil {
		return Summary{}, fmt.Errorf("document %s: %w", doc.ID, err)
	}
	return Summary{
		UID:         doc.Slug(),
		PublishedAt: published,
		DisplayDate: datefmt.Format(published, loc),
		Title:       data.Title.String(),
		Subtitle:    data.Subtitle.String(),
		Author:      data.Author.String(),
	}, nil
}

// MapSummaries maps docs in order, failing on the first bad document.
func MapSummaries(docs []cms.Document, loc *time.Location) ([]Summary, error) {
	out := make([]Summary, 0, len(docs))
	for _, d := range docs {
		s, err := MapSummary(d, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
