package cms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI emulates the repository and search endpoints under /api/v2.
type fakeAPI struct {
	srv        *httptest.Server
	refCalls   atomic.Int32
	lastSearch atomic.Value // encoded query of the last search
	docs       []Document
	pageSize   int
	failWith   int
}

func newFakeAPI(t *testing.T, docs []Document, pageSize int) *fakeAPI {
	t.Helper()
	f := &fakeAPI{docs: docs, pageSize: pageSize}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2", func(w http.ResponseWriter, r *http.Request) {
		f.refCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"refs":[{"id":"preview","ref":"P1","label":"Preview"},{"id":"master","ref":"M1","label":"Master","isMasterRef":true}]}`))
	})
	mux.HandleFunc("/api/v2/documents/search", func(w http.ResponseWriter, r *http.Request) {
		if f.failWith != 0 {
			w.WriteHeader(f.failWith)
			return
		}
		q := r.URL.Query()
		f.lastSearch.Store(q.Encode())
		if q.Get("ref") != "M1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		results := f.docs
		if pred := q.Get("q"); strings.Contains(pred, ".uid") {
			results = nil
			for _, d := range f.docs {
				if strings.Contains(pred, `"`+d.UID+`"`) {
					results = append(results, d)
				}
			}
		}
		page := 1
		if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
			page = p
		}
		size := f.pageSize
		start := (page - 1) * size
		end := start + size
		if end > len(results) {
			end = len(results)
		}
		resp := Response{Page: page, ResultsPerPage: size, TotalResultsSize: len(results)}
		if start < len(results) {
			resp.Results = results[start:end]
		}
		if end < len(results) {
			nq := url.Values{}
			nq.Set("ref", "M1")
			nq.Set("q", q.Get("q"))
			nq.Set("page", strconv.Itoa(page+1))
			nq.Set("pageSize", q.Get("pageSize"))
			next := f.srv.URL + "/api/v2/documents/search?" + nq.Encode()
			resp.NextPage = &next
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func testDocs() []Document {
	date := "2021-04-19T00:00:00+0000"
	return []Document{
		{ID: "a", UID: "como-utilizar-hooks", Type: "post", Slugs: []string{"como-utilizar-hooks"}, FirstPublicationDate: &date, Data: json.RawMessage(`{"title":"Como utilizar Hooks"}`)},
		{ID: "b", UID: "criando-um-app", Type: "post", Slugs: []string{"criando-um-app"}, Data: json.RawMessage(`{"title":"Criando um app"}`)},
	}
}

func TestNewRejectsBadEndpoint(t *testing.T) {
	for _, ep := range []string{"", "repo.prismic.io/api/v2", "ftp://x/api"} {
		_, err := New(ep)
		assert.Error(t, err, "endpoint %q", ep)
	}
}

func TestQueryByType(t *testing.T) {
	api := newFakeAPI(t, testDocs(), 1)
	c, err := New(api.srv.URL+"/api/v2/", WithAccessToken("secret"))
	require.NoError(t, err)

	resp, err := c.QueryByType(context.Background(), "post", QueryOptions{
		Fields:   []string{"post.title", "post.subtitle", "post.author"},
		PageSize: 1,
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "como-utilizar-hooks", resp.Results[0].Slug())
	assert.NotEmpty(t, resp.Next())

	sent := api.lastSearch.Load().(string)
	assert.Contains(t, sent, "fetch=post.title%2Cpost.subtitle%2Cpost.author")
	assert.Contains(t, sent, "access_token=secret")
	assert.Contains(t, sent, "pageSize=1")
}

func TestFetchPageFollowsNext(t *testing.T) {
	api := newFakeAPI(t, testDocs(), 1)
	c, err := New(api.srv.URL + "/api/v2")
	require.NoError(t, err)

	first, err := c.QueryByType(context.Background(), "post", QueryOptions{PageSize: 1})
	require.NoError(t, err)

	second, err := c.FetchPage(context.Background(), first.Next())
	require.NoError(t, err)
	require.Len(t, second.Results, 1)
	assert.Equal(t, "criando-um-app", second.Results[0].Slug())
	assert.Empty(t, second.Next())
}

func TestFetchPageRejectsForeignURL(t *testing.T) {
	api := newFakeAPI(t, testDocs(), 1)
	c, err := New(api.srv.URL + "/api/v2")
	require.NoError(t, err)

	for _, u := range []string{
		"http://169.254.169.254/latest/meta-data",
		api.srv.URL + "/admin",
		"https://" + strings.TrimPrefix(api.srv.URL, "http://") + "/api/v2/documents/search",
	} {
		_, err := c.FetchPage(context.Background(), u)
		assert.ErrorIs(t, err, ErrForeignURL, "url %s", u)
	}
}

func TestGetByUID(t *testing.T) {
	api := newFakeAPI(t, testDocs(), 10)
	c, err := New(api.srv.URL + "/api/v2")
	require.NoError(t, err)

	doc, err := c.GetByUID(context.Background(), "post", "criando-um-app")
	require.NoError(t, err)
	assert.Equal(t, "b", doc.ID)

	_, err = c.GetByUID(context.Background(), "post", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMasterRefIsCached(t *testing.T) {
	api := newFakeAPI(t, testDocs(), 10)
	c, err := New(api.srv.URL + "/api/v2")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := c.QueryByType(context.Background(), "post", QueryOptions{})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), api.refCalls.Load())
}

func TestStatusErrorAndBreaker(t *testing.T) {
	api := newFakeAPI(t, testDocs(), 10)
	api.failWith = http.StatusBadGateway
	c, err := New(api.srv.URL + "/api/v2")
	require.NoError(t, err)

	var se *StatusError
	for i := 0; i < 3; i++ {
		_, err = c.QueryByType(context.Background(), "post", QueryOptions{})
		require.True(t, errors.As(err, &se), "attempt %d: %v", i, err)
		assert.Equal(t, http.StatusBadGateway, se.Code)
	}

	// Three consecutive 5xx answers open the breaker.
	_, err = c.QueryByType(context.Background(), "post", QueryOptions{})
	require.Error(t, err)
	assert.False(t, errors.As(err, &se))
	assert.Contains(t, err.Error(), "circuit breaker is open")
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	api := newFakeAPI(t, testDocs(), 10)
	api.failWith = http.StatusUnauthorized
	c, err := New(api.srv.URL + "/api/v2")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err = c.QueryByType(context.Background(), "post", QueryOptions{})
		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusUnauthorized, se.Code)
	}
}

func TestPredicateAt(t *testing.T) {
	assert.Equal(t, `[[at(document.type, "post")]]`, predicateAt("document.type", "post"))
	assert.Equal(t, `[[at(my.post.uid, "a\"b")]]`, predicateAt("my.post.uid", `a"b`))
}
