package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/listing"
	"github.com/eringen/spacetraveling/post"
	"github.com/eringen/spacetraveling/richtext"
)

var testSite = Site{Name: "spacetraveling", URL: "https://blog.example.com", Author: "Equipe"}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestLoadMorePresentExactlyWithToken(t *testing.T) {
	if got := render(t, LoadMore("")); got != "" {
		t.Fatalf("LoadMore(\"\") = %q, want empty", got)
	}
	got := render(t, LoadMore("https://repo.cdn.prismic.io/api/v2/documents/search?page=2&pageSize=1"))
	want := `href="/posts/more/?next=https%3A%2F%2Frepo.cdn.prismic.io%2Fapi%2Fv2%2Fdocuments%2Fsearch%3Fpage%3D2%26pageSize%3D1"`
	if !strings.Contains(got, want) {
		t.Fatalf("LoadMore link = %q, want it to contain %q", got, want)
	}
	if !strings.Contains(got, "Carregar mais posts") {
		t.Fatalf("expected trigger label in %q", got)
	}
}

func TestPostItemsEscapesAndLinks(t *testing.T) {
	published := time.Date(2021, 4, 19, 12, 0, 0, 0, time.UTC)
	got := render(t, PostItems([]listing.Summary{{
		UID:         "a b",
		PublishedAt: &published,
		DisplayDate: "19 abr 2021",
		Title:       "<script>alert(1)</script>",
		Author:      "Joseph",
	}}))

	for _, want := range []string{
		`href="/post/a%20b/"`,
		`&lt;script&gt;`,
		`<time datetime="2021-04-19">19 abr 2021</time>`,
		`Joseph`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("PostItems output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("title was not escaped: %s", got)
	}
}

func TestHomeListsPostsInOrder(t *testing.T) {
	got := render(t, Home(testSite, listing.State{
		Posts:    []listing.Summary{{UID: "b", Title: "Segundo"}, {UID: "a", Title: "Primeiro"}},
		NextPage: "",
	}))
	if i, j := strings.Index(got, "Segundo"), strings.Index(got, "Primeiro"); i < 0 || j < 0 || i > j {
		t.Fatalf("posts out of order in %s", got)
	}
	if strings.Contains(got, "data-load-more") {
		t.Fatalf("unexpected load-more trigger without token")
	}
	if !strings.Contains(got, `<html lang="pt-BR">`) {
		t.Fatalf("expected full document")
	}
}

func TestPostShowsReadingTime(t *testing.T) {
	got := render(t, Post(testSite, post.Detail{
		UID:            "hooks",
		Title:          "Como utilizar Hooks",
		BannerURL:      "javascript:alert(1)",
		ReadingMinutes: 4,
		Sections: []post.Section{{
			Heading: "Proin",
			Body:    richtext.RichText{{Type: richtext.TypeParagraph, Text: "Texto"}},
		}},
	}))
	for _, want := range []string{"4 min", "<h2>Proin</h2>", "<p>Texto</p>", `"timeRequired":"PT4M"`} {
		if !strings.Contains(got, want) {
			t.Errorf("post page missing %q", want)
		}
	}
	if strings.Contains(got, "javascript:") {
		t.Errorf("unsafe banner url rendered")
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://blog.example.com", nil, "https://blog.example.com"},
		{"https://blog.example.com", []string{"post", "hooks"}, "https://blog.example.com/post/hooks/"},
		{"https://blog.example.com/sub/", []string{"post", "x"}, "https://blog.example.com/sub/post/x/"},
	}
	for _, tt := range tests {
		if got := buildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("buildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func TestAdminDashboardShowsStats(t *testing.T) {
	got := render(t, AdminDashboard(testSite, CacheStats{
		CachedPosts:     3,
		StoredDocuments: 7,
		StorageDriver:   "sqlite",
		TTL:             time.Hour,
	}, "Cache limpo.", "tok"))
	for _, want := range []string{"Cache limpo.", "<dd>3</dd>", "(sqlite)", "<dd>7</dd>", "1h0m0s", `value="tok"`} {
		if !strings.Contains(got, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}
