// Package post maps a CMS post document into the fields the post page shows and
// estimates how long it takes to read.
package post

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/eringen/spacetraveling/cms"
	"github.com/eringen/spacetraveling/datefmt"
	"github.com/eringen/spacetraveling/richtext"
)

// DocType is the custom type of blog posts in the repository.
const DocType = "post"

// WordsPerMinute is the assumed reading speed.
const WordsPerMinute = 200

// Section is one content block: a heading followed by body paragraphs.
// Paragraphs holds the plain text of each body entry; Body keeps the rich
// text for HTML rendering.
type Section struct {
	Heading    string
	Paragraphs []string
	Body       richtext.RichText
}

// Detail is a post ready for display.
type Detail struct {
	UID            string
	PublishedAt    *time.Time
	UpdatedAt      *time.Time
	DisplayDate    string
	Title          string
	Subtitle       string
	BannerURL      string
	BannerAlt      string
	Author         string
	Sections       []Section
	ReadingMinutes int
}

type postData struct {
	Title    richtext.Text `json:"title"`
	Subtitle richtext.Text `json:"subtitle"`
	Author   richtext.Text `json:"author"`
	Banner   struct {
		URL string `json:"url"`
		Alt string `json:"alt"`
	} `json:"banner"`
	Content []struct {
		Heading richtext.Text     `json:"heading"`
		Body    richtext.RichText `json:"body"`
	} `json:"content"`
}

// MapDetail converts a raw post document. Dates are formatted for display in loc.
func MapDetail(doc cms.Document, loc *time.Location) (Detail, error) {
	var data postData
	if len(doc.Data) > 0 {
		if err := json.Unmarshal(doc.Data, &data); err != nil {
			return Detail{}, fmt.Errorf("post %s: decode data: %w", doc.ID, err)
		}
	}
	published, err := datefmt.ParsePtr(doc.FirstPublicationDate)
	if err != nil {
		return Detail{}, fmt.Errorf("post %s: %w", doc.ID, err)
	}
	updated, err := datefmt.ParsePtr(doc.LastPublicationDate)
	if err != nil {
		return Detail{}, fmt.Errorf("post %s: %w", doc.ID, err)
	}

	sections := make([]Section, 0, len(data.Content))
	for _, block := range data.Content {
		paragraphs := make([]string, 0, len(block.Body))
		for _, entry := range block.Body {
			paragraphs = append(paragraphs, richtext.BlockText(entry))
		}
		sections = append(sections, Section{
			Heading:    block.Heading.String(),
			Paragraphs: paragraphs,
			Body:       block.Body,
		})
	}

	uid := doc.UID
	if uid == "" {
		uid = doc.Slug()
	}
	return Detail{
		UID:            uid,
		PublishedAt:    published,
		UpdatedAt:      updated,
		DisplayDate:    datefmt.Format(published, loc),
		Title:          data.Title.String(),
		Subtitle:       data.Subtitle.String(),
		BannerURL:      data.Banner.URL,
		BannerAlt:      data.Banner.Alt,
		Author:         data.Author.String(),
		Sections:       sections,
		ReadingMinutes: EstimateMinutes(sections),
	}, nil
}

// EstimateMinutes returns the reading time of sections, rounded up.
//
// Each heading counts one unit per UTF-16 code unit (so characters outside the
// BMP count twice) while paragraphs count one unit per
// whitespace-separated word. The mix is intentional and must stay as is.
func EstimateMinutes(sections []Section) int {
	total := 0
	for _, s := range sections {
		total += len(utf16.Encode([]rune(s.Heading)))
		for _, p := range s.Paragraphs {
			total += len(strings.Fields(p))
		}
	}
	return (total + WordsPerMinute - 1) / WordsPerMinute
}
