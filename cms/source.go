package cms

import "context"

// QueryOptions narrows a typed query.
type QueryOptions struct {
	Fields    []string // e.g. "post.title"; empty fetches every field
	PageSize  int
	Page      int
	Orderings string // e.g. "[document.first_publication_date desc]"
}

// Querier lists documents of a custom type.
type Querier interface {
	QueryByType(ctx context.Context, docType string, opts QueryOptions) (*Response, error)
}

// PageFetcher follows an opaque continuation URL.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (*Response, error)
}

// Getter loads a single document by its UID.
type Getter interface {
	GetByUID(ctx context.Context, docType, uid string) (*Document, error)
}

// Source is the full content source used by the site.
type Source interface {
	Querier
	PageFetcher
	Getter
}
