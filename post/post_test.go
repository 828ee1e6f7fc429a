package post

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/eringen/spacetraveling/cms"
)

func TestEstimateMinutes(t *testing.T) {
	tests := []struct {
		name     string
		sections []Section
		want     int
	}{
		{"no sections", nil, 0},
		{"empty section", []Section{{Heading: "", Paragraphs: nil}}, 0},
		{"heading chars plus words", []Section{{Heading: "12345", Paragraphs: []string{"one two three"}}}, 1},
		{"heading of 200 chars", []Section{{Heading: strings.Repeat("a", 200)}}, 1},
		{"heading of 201 chars", []Section{{Heading: strings.Repeat("a", 201)}}, 2},
		{"whitespace-only paragraph", []Section{{Paragraphs: []string{"   "}}}, 0},
		{"irregular spacing", []Section{{Paragraphs: []string{"  one\ttwo\n three  "}}}, 1},
		{
			name: "sums across sections",
			sections: []Section{
				{Heading: strings.Repeat("h", 100), Paragraphs: []string{strings.Repeat("word ", 50)}},
				{Heading: strings.Repeat("h", 50), Paragraphs: []string{strings.Repeat("word ", 1)}},
			},
			want: 2,
		},
		{"multibyte heading counts characters", []Section{{Heading: strings.Repeat("ç", 200)}}, 1},
		{"astral heading of 200 code units", []Section{{Heading: strings.Repeat("🚀", 100)}}, 1},
		{"astral heading counts two code units each", []Section{{Heading: strings.Repeat("🚀", 101)}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateMinutes(tt.sections); got != tt.want {
				t.Errorf("EstimateMinutes = %d, want %d", got, tt.want)
			}
		})
	}
}

const samplePost = `{
  "title": "Como utilizar Hooks",
  "subtitle": "Pensando em sincronização em vez de ciclos de vida",
  "author": "Joseph Oliveira",
  "banner": {"url": "https://images.prismic.io/space/banner.png", "alt": "banner"},
  "content": [
    {
      "heading": "Proin et varius",
      "body": [
        {"type": "paragraph", "text": "Lorem ipsum dolor sit amet", "spans": []},
        {"type": "paragraph", "text": "Nullam dolor sapien", "spans": [{"start": 0, "end": 6, "type": "strong"}]}
      ]
    },
    {
      "heading": "Cras laoreet mi",
      "body": []
    }
  ]
}`

func TestMapDetail(t *testing.T) {
	date := "2021-04-19T00:00:00+0000"
	doc := cms.Document{
		ID:                   "YH2",
		UID:                  "como-utilizar-hooks",
		Type:                 DocType,
		Slugs:                []string{"como-utilizar-hooks"},
		FirstPublicationDate: &date,
		Data:                 json.RawMessage(samplePost),
	}
	got, err := MapDetail(doc, time.UTC)
	if err != nil {
		t.Fatalf("MapDetail failed: %v", err)
	}
	if got.Title != "Como utilizar Hooks" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Author != "Joseph Oliveira" {
		t.Errorf("Author = %q", got.Author)
	}
	if got.BannerURL != "https://images.prismic.io/space/banner.png" {
		t.Errorf("BannerURL = %q", got.BannerURL)
	}
	if got.DisplayDate != "19 abr 2021" {
		t.Errorf("DisplayDate = %q, want %q", got.DisplayDate, "19 abr 2021")
	}
	if got.PublishedAt == nil || !got.PublishedAt.Equal(time.Date(2021, 4, 19, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("PublishedAt = %v", got.PublishedAt)
	}
	if len(got.Sections) != 2 {
		t.Fatalf("Sections = %d, want 2", len(got.Sections))
	}
	first := got.Sections[0]
	if first.Heading != "Proin et varius" {
		t.Errorf("Heading = %q", first.Heading)
	}
	wantParas := []string{"Lorem ipsum dolor sit amet", "Nullam dolor sapien"}
	if len(first.Paragraphs) != len(wantParas) {
		t.Fatalf("Paragraphs = %v, want %v", first.Paragraphs, wantParas)
	}
	for i := range wantParas {
		if first.Paragraphs[i] != wantParas[i] {
			t.Errorf("Paragraphs[%d] = %q, want %q", i, first.Paragraphs[i], wantParas[i])
		}
	}
	if len(first.Body) != 2 || len(first.Body[1].Spans) != 1 {
		t.Errorf("rich body not preserved: %+v", first.Body)
	}
	if len(got.Sections[1].Paragraphs) != 0 {
		t.Errorf("empty body should map to no paragraphs, got %v", got.Sections[1].Paragraphs)
	}
	// 15 + 5 + 3 + 15 = 38 units
	if got.ReadingMinutes != 1 {
		t.Errorf("ReadingMinutes = %d, want 1", got.ReadingMinutes)
	}
}

func TestMapDetailUnpublished(t *testing.T) {
	doc := cms.Document{ID: "x", Slugs: []string{"draft"}, Data: json.RawMessage(`{"title":"Draft"}`)}
	got, err := MapDetail(doc, time.UTC)
	if err != nil {
		t.Fatalf("MapDetail failed: %v", err)
	}
	if got.PublishedAt != nil || got.DisplayDate != "" {
		t.Errorf("unpublished post got date %v / %q", got.PublishedAt, got.DisplayDate)
	}
	if got.UID != "draft" {
		t.Errorf("UID = %q, want slug fallback %q", got.UID, "draft")
	}
}

func TestMapDetailBadData(t *testing.T) {
	doc := cms.Document{ID: "x", Data: json.RawMessage(`{"content": "nope"}`)}
	if _, err := MapDetail(doc, time.UTC); err == nil {
		t.Fatal("expected error for malformed content")
	}
}
