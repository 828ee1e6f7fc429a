// Package datefmt parses CMS publication timestamps and formats them for display
// with Brazilian Portuguese month abbreviations.
package datefmt

import (
	"fmt"
	"strings"
	"time"
)

// cmsLayout is the timestamp shape the content API emits, e.g. 2021-04-19T00:00:00+0000.
const cmsLayout = "2006-01-02T15:04:05-0700"

var monthsPtBR = [...]string{
	"jan", "fev", "mar", "abr", "mai", "jun",
	"jul", "ago", "set", "out", "nov", "dez",
}

// Parse reads a CMS timestamp. An empty string yields nil (unpublished).
func Parse(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{cmsLayout, time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("datefmt: unrecognised timestamp %q", raw)
}

// ParsePtr is Parse for optional JSON fields.
func ParsePtr(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	return Parse(*raw)
}

// Format renders t as "dd MMM yyyy" (e.g. "19 abr 2021") in loc.
// A nil t renders as the empty string; a nil loc means UTC.
func Format(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return fmt.Sprintf("%02d %s %04d", lt.Day(), monthsPtBR[lt.Month()-1], lt.Year())
}

// ISODate renders t as YYYY-MM-DD, used by sitemaps and structured data.
func ISODate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
