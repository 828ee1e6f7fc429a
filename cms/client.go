package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

const (
	defaultTimeout = 10 * time.Second
	defaultRefTTL  = time.Minute
)

// Client talks to one repository endpoint, e.g. https://repo.cdn.prismic.io/api/v2.
// It is safe for concurrent use.
type Client struct {
	endpoint *url.URL
	token    string
	http     *http.Client
	cb       *gobreaker.CircuitBreaker
	refTTL   time.Duration

	mu    sync.Mutex
	ref   string
	refAt time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithAccessToken sets the token sent as the access_token query parameter.
func WithAccessToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRefTTL sets how long the master ref is reused before it is looked up again.
func WithRefTTL(d time.Duration) Option {
	return func(c *Client) { c.refTTL = d }
}

// New creates a Client for the given API endpoint.
func New(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(endpoint), "/"))
	if err != nil {
		return nil, fmt.Errorf("cms: parse endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("cms: endpoint %q must be an absolute http(s) url", endpoint)
	}
	c := &Client{
		endpoint: u,
		http:     &http.Client{Timeout: defaultTimeout},
		refTTL:   defaultRefTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "cms:" + u.Host,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		// Client errors say nothing about the health of the API.
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return se.Code < 500
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("cms circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return c, nil
}

// Endpoint returns the configured API endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// QueryByType lists documents of docType.
func (c *Client) QueryByType(ctx context.Context, docType string, opts QueryOptions) (*Response, error) {
	params := url.Values{}
	params.Set("q", predicateAt("document.type", docType))
	if len(opts.Fields) > 0 {
		params.Set("fetch", strings.Join(opts.Fields, ","))
	}
	if opts.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.Page > 0 {
		params.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Orderings != "" {
		params.Set("orderings", opts.Orderings)
	}
	return c.search(ctx, "query", params)
}

// GetByUID loads the document of docType whose UID is uid.
func (c *Client) GetByUID(ctx context.Context, docType, uid string) (*Document, error) {
	if uid == "" {
		return nil, ErrNotFound
	}
	params := url.Values{}
	params.Set("q", predicateAt("my."+docType+".uid", uid))
	params.Set("pageSize", "1")
	resp, err := c.search(ctx, "get", params)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, ErrNotFound
	}
	doc := resp.Results[0]
	return &doc, nil
}

// FetchPage follows a continuation URL previously returned by the API. The URL
// is not interpreted beyond checking that it targets this client's endpoint.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (*Response, error) {
	u, err := c.ownURL(pageURL)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		q := u.Query()
		if q.Get("access_token") == "" {
			q.Set("access_token", c.token)
			u.RawQuery = q.Encode()
		}
	}
	var resp Response
	if err := c.get(ctx, "page", u.String(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ownURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrForeignURL, err)
	}
	if !strings.EqualFold(u.Scheme, c.endpoint.Scheme) || !strings.EqualFold(u.Host, c.endpoint.Host) {
		return nil, ErrForeignURL
	}
	base := strings.TrimRight(c.endpoint.Path, "/")
	if base != "" && u.Path != base && !strings.HasPrefix(u.Path, base+"/") {
		return nil, ErrForeignURL
	}
	return u, nil
}

func (c *Client) search(ctx context.Context, op string, params url.Values) (*Response, error) {
	ref, err := c.masterRef(ctx)
	if err != nil {
		return nil, err
	}
	params.Set("ref", ref)
	if c.token != "" {
		params.Set("access_token", c.token)
	}
	u := *c.endpoint
	u.Path = strings.TrimRight(u.Path, "/") + "/documents/search"
	u.RawQuery = params.Encode()

	var resp Response
	if err := c.get(ctx, op, u.String(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type apiRef struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	IsMasterRef bool   `json:"isMasterRef"`
}

// masterRef returns the ref of the published content, cached for refTTL.
func (c *Client) masterRef(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.ref != "" && time.Since(c.refAt) < c.refTTL {
		ref := c.ref
		c.mu.Unlock()
		return ref, nil
	}
	c.mu.Unlock()

	u := *c.endpoint
	if c.token != "" {
		u.RawQuery = url.Values{"access_token": {c.token}}.Encode()
	}
	var api struct {
		Refs []apiRef `json:"refs"`
	}
	if err := c.get(ctx, "ref", u.String(), &api); err != nil {
		return "", err
	}
	for _, r := range api.Refs {
		if r.IsMasterRef {
			c.mu.Lock()
			c.ref, c.refAt = r.Ref, time.Now()
			c.mu.Unlock()
			return r.Ref, nil
		}
	}
	return "", errors.New("cms: api advertises no master ref")
}

// get performs one GET through the circuit breaker and decodes a 200 JSON body into v.
func (c *Client) get(ctx context.Context, op, rawURL string, v any) error {
	start := time.Now()
	status := "error"
	defer func() {
		requestsTotal.WithLabelValues(op, status).Inc()
		requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	_, err := c.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("cms: build %s request: %w", op, err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("cms: %s request: %w", op, redactErr(err))
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				slog.Warn("cms: close response body", "op", op, "error", err)
			}
		}()

		status = strconv.Itoa(resp.StatusCode)
		if resp.StatusCode != http.StatusOK {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
			slog.Warn("cms: unexpected status", "op", op, "status", resp.StatusCode)
			return nil, &StatusError{Op: op, Code: resp.StatusCode}
		}
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return nil, fmt.Errorf("cms: decode %s response: %w", op, err)
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		status = "open"
		return fmt.Errorf("cms: %s: %w", op, err)
	}
	return err
}

// predicateAt builds an at() predicate: [[at(path, "value")]].
func predicateAt(path, value string) string {
	return "[[at(" + path + ", " + strconv.Quote(value) + ")]]"
}

// redactErr strips query strings (which may carry the access token) from
// transport errors before they are logged or returned.
func redactErr(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		if u, perr := url.Parse(ue.URL); perr == nil {
			u.RawQuery = ""
			return &url.Error{Op: ue.Op, URL: u.String(), Err: ue.Err}
		}
	}
	return err
}
