// Package cms is a client for a headless CMS exposing a Prismic-style REST API:
// a repository endpoint that advertises content refs, and a search endpoint that
// returns paginated documents.
package cms

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("cms: document not found")

// ErrForeignURL is returned by FetchPage for URLs outside the configured endpoint.
var ErrForeignURL = errors.New("cms: page url does not belong to the api endpoint")

// Document is a raw document as returned by the API. Data holds the custom
// type's fields and is decoded by the caller.
type Document struct {
	ID                   string          `json:"id"`
	UID                  string          `json:"uid,omitempty"`
	Type                 string          `json:"type"`
	Href                 string          `json:"href,omitempty"`
	Tags                 []string        `json:"tags,omitempty"`
	Slugs                []string        `json:"slugs"`
	FirstPublicationDate *string         `json:"first_publication_date"`
	LastPublicationDate  *string         `json:"last_publication_date"`
	Lang                 string          `json:"lang,omitempty"`
	Data                 json.RawMessage `json:"data"`
}

// Slug returns the document's first slug, falling back to its UID.
func (d Document) Slug() string {
	if len(d.Slugs) > 0 && d.Slugs[0] != "" {
		return d.Slugs[0]
	}
	return d.UID
}

// Response is one page of search results.
type Response struct {
	Page             int        `json:"page"`
	ResultsPerPage   int        `json:"results_per_page"`
	ResultsSize      int        `json:"results_size"`
	TotalResultsSize int        `json:"total_results_size"`
	TotalPages       int        `json:"total_pages"`
	NextPage         *string    `json:"next_page"`
	PrevPage         *string    `json:"prev_page"`
	Results          []Document `json:"results"`
}

// Next returns the continuation URL, or "" on the last page.
func (r *Response) Next() string {
	if r == nil || r.NextPage == nil {
		return ""
	}
	return *r.NextPage
}

// StatusError reports a non-200 answer from the API.
type StatusError struct {
	Op   string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cms: %s returned status %d", e.Op, e.Code)
}
