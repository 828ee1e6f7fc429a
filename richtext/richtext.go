// Package richtext renders CMS structured text (blocks of text with styled
// spans) as plain text or escaped HTML, the latter as a templ component.
package richtext

import (
	"bytes"
	"context"
	"encoding/json"
	"html"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/a-h/templ"
)

// Block types emitted by the content API.
const (
	TypeParagraph    = "paragraph"
	TypePreformatted = "preformatted"
	TypeListItem     = "list-item"
	TypeOListItem    = "o-list-item"
	TypeImage        = "image"
	TypeEmbed        = "embed"
)

// Span types.
const (
	SpanStrong    = "strong"
	SpanEm        = "em"
	SpanHyperlink = "hyperlink"
	SpanLabel     = "label"
)

// Span styles Text[Start:End] of its block. Offsets count UTF-16 code units.
type Span struct {
	Start int       `json:"start"`
	End   int       `json:"end"`
	Type  string    `json:"type"`
	Data  *SpanData `json:"data,omitempty"`
}

// SpanData carries link targets and label names.
type SpanData struct {
	LinkType string `json:"link_type,omitempty"`
	URL      string `json:"url,omitempty"`
	Target   string `json:"target,omitempty"`
	Label    string `json:"label,omitempty"`
}

// Dimensions of an image block.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Oembed describes an embed block.
type Oembed struct {
	EmbedURL string `json:"embed_url"`
	Title    string `json:"title,omitempty"`
}

// Block is one entry of a rich-text field.
type Block struct {
	Type       string      `json:"type"`
	Text       string      `json:"text"`
	Spans      []Span      `json:"spans,omitempty"`
	URL        string      `json:"url,omitempty"`
	Alt        string      `json:"alt,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	Oembed     *Oembed     `json:"oembed,omitempty"`
}

// RichText is an ordered rich-text field.
type RichText []Block

// Text is a key-text field. Editors sometimes model titles as rich text, so it
// also accepts a block array and keeps its plain text.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*t = ""
		return nil
	}
	if trimmed[0] == '[' {
		var rt RichText
		if err := json.Unmarshal(trimmed, &rt); err != nil {
			return err
		}
		*t = Text(AsText(rt, " "))
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return err
	}
	*t = Text(s)
	return nil
}

func (t Text) String() string { return string(t) }

// BlockText returns the plain text of a single block.
func BlockText(b Block) string {
	return b.Text
}

// AsText joins the text of every text-bearing block with sep.
func AsText(rt RichText, sep string) string {
	parts := make([]string, 0, len(rt))
	for _, b := range rt {
		if b.Type == TypeImage || b.Type == TypeEmbed {
			continue
		}
		parts = append(parts, BlockText(b))
	}
	return strings.Join(parts, sep)
}

// HTML returns a templ.Component that renders rt as HTML.
func HTML(rt RichText) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, rt)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Render writes the HTML representation of rt to buf.
func Render(buf *bytes.Buffer, rt RichText) {
	list := ""
	closeList := func() {
		if list != "" {
			buf.WriteString("</" + list + ">")
			list = ""
		}
	}

	for _, b := range rt {
		if b.Type == TypeListItem || b.Type == TypeOListItem {
			want := "ul"
			if b.Type == TypeOListItem {
				want = "ol"
			}
			if list != want {
				closeList()
				buf.WriteString("<" + want + ">")
				list = want
			}
			buf.WriteString("<li>")
			buf.WriteString(lineBreaks(FormatSpans(b.Text, b.Spans)))
			buf.WriteString("</li>")
			continue
		}
		closeList()

		switch {
		case isHeading(b.Type):
			tag := "h" + b.Type[len(b.Type)-1:]
			buf.WriteString("<" + tag + ">")
			buf.WriteString(lineBreaks(FormatSpans(b.Text, b.Spans)))
			buf.WriteString("</" + tag + ">")
		case b.Type == TypePreformatted:
			buf.WriteString("<pre>")
			buf.WriteString(FormatSpans(b.Text, b.Spans))
			buf.WriteString("</pre>")
		case b.Type == TypeImage:
			writeImage(buf, b)
		case b.Type == TypeEmbed:
			if b.Oembed == nil {
				continue
			}
			href := SafeURL(b.Oembed.EmbedURL)
			if href == "" {
				continue
			}
			label := b.Oembed.Title
			if label == "" {
				label = b.Oembed.EmbedURL
			}
			buf.WriteString(`<p class="embed"><a href="` + href + `" target="_blank" rel="noopener noreferrer">`)
			buf.WriteString(html.EscapeString(label))
			buf.WriteString("</a></p>")
		default:
			if b.Text == "" && b.Type != TypeParagraph {
				continue
			}
			buf.WriteString("<p>")
			buf.WriteString(lineBreaks(FormatSpans(b.Text, b.Spans)))
			buf.WriteString("</p>")
		}
	}
	closeList()
}

func isHeading(t string) bool {
	return len(t) == len("heading1") && strings.HasPrefix(t, "heading") && t[7] >= '1' && t[7] <= '6'
}

func writeImage(buf *bytes.Buffer, b Block) {
	src := SafeURL(b.URL)
	if src == "" {
		return
	}
	buf.WriteString(`<img src="` + src + `" alt="` + html.EscapeString(b.Alt) + `"`)
	if b.Dimensions != nil && b.Dimensions.Width > 0 && b.Dimensions.Height > 0 {
		buf.WriteString(` width="` + strconv.Itoa(b.Dimensions.Width) + `" height="` + strconv.Itoa(b.Dimensions.Height) + `"`)
	}
	buf.WriteString(` loading="lazy" decoding="async"/>`)
}

// lineBreaks turns soft line breaks inside a block into <br/>. Markup produced by
// FormatSpans never contains a raw newline, so this only touches text.
func lineBreaks(s string) string {
	return strings.ReplaceAll(s, "\n", "<br/>")
}

// FormatSpans escapes text and wraps the styled ranges in markup. Overlapping
// spans are split so the output is always well nested.
func FormatSpans(text string, spans []Span) string {
	units := utf16.Encode([]rune(text))
	n := len(units)

	valid := make([]Span, 0, len(spans))
	for _, s := range spans {
		s.Start, s.End = clamp(s.Start, 0, n), clamp(s.End, 0, n)
		if s.End <= s.Start || openTag(s) == "" {
			continue
		}
		valid = append(valid, s)
	}
	if len(valid) == 0 {
		return html.EscapeString(text)
	}
	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].Start != valid[j].Start {
			return valid[i].Start < valid[j].Start
		}
		return valid[i].End > valid[j].End
	})

	points := []int{0, n}
	for _, s := range valid {
		points = append(points, s.Start, s.End)
	}
	sort.Ints(points)

	var out strings.Builder
	var stack []int
	for k := 0; k+1 < len(points); k++ {
		from, to := points[k], points[k+1]
		if from == to {
			continue
		}
		active := func(i int) bool {
			return valid[i].Start <= from && valid[i].End >= to
		}
		keep := 0
		for keep < len(stack) && active(stack[keep]) {
			keep++
		}
		for len(stack) > keep {
			out.WriteString(closeTag(valid[stack[len(stack)-1]]))
			stack = stack[:len(stack)-1]
		}
		for i := range valid {
			if active(i) && !containsIndex(stack, i) {
				out.WriteString(openTag(valid[i]))
				stack = append(stack, i)
			}
		}
		out.WriteString(html.EscapeString(string(utf16.Decode(units[from:to]))))
	}
	for len(stack) > 0 {
		out.WriteString(closeTag(valid[stack[len(stack)-1]]))
		stack = stack[:len(stack)-1]
	}
	return out.String()
}

func openTag(s Span) string {
	switch s.Type {
	case SpanStrong:
		return "<strong>"
	case SpanEm:
		return "<em>"
	case SpanHyperlink:
		if s.Data == nil {
			return ""
		}
		href := SafeURL(s.Data.URL)
		if href == "" {
			return ""
		}
		if s.Data.Target == "_blank" {
			return `<a href="` + href + `" target="_blank" rel="noopener noreferrer">`
		}
		return `<a href="` + href + `">`
	case SpanLabel:
		if s.Data == nil || s.Data.Label == "" {
			return ""
		}
		return `<span class="` + html.EscapeString(s.Data.Label) + `">`
	}
	return ""
}

func closeTag(s Span) string {
	switch s.Type {
	case SpanStrong:
		return "</strong>"
	case SpanEm:
		return "</em>"
	case SpanHyperlink:
		return "</a>"
	case SpanLabel:
		return "</span>"
	}
	return ""
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func containsIndex(stack []int, i int) bool {
	for _, v := range stack {
		if v == i {
			return true
		}
	}
	return false
}

// SafeURL validates a URL for use in an HTML attribute and returns it escaped,
// or "" when the scheme is not allowed.
func SafeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
