package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/eringen/spacetraveling/datefmt"
	"github.com/eringen/spacetraveling/post"
	"github.com/eringen/spacetraveling/richtext"
)

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// PostPath is the site-relative link of a post.
func PostPath(uid string) string {
	return "/post/" + url.PathEscape(uid) + "/"
}

// MorePath is the link that loads the page after the current one.
func MorePath(next string) string {
	return "/posts/more/?next=" + url.QueryEscape(next)
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using site values.
func WebsiteJsonLD(site Site) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     site.Name,
		"url":      buildURL(site.URL),
	}
	if site.Description != "" {
		data["description"] = site.Description
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  site.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(site Site, p post.Detail) string {
	postURL := buildURL(site.URL, "post", p.UID)
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "BlogPosting",
		"headline": p.Title,
		"url":      postURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  site.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if p.ReadingMinutes > 0 {
		data["timeRequired"] = "PT" + strconv.Itoa(p.ReadingMinutes) + "M"
	}
	if p.Subtitle != "" {
		data["description"] = p.Subtitle
	}
	if d := datefmt.ISODate(p.PublishedAt); d != "" {
		data["datePublished"] = d
	}
	if d := datefmt.ISODate(p.UpdatedAt); d != "" {
		data["dateModified"] = d
	}
	if richtext.SafeURL(p.BannerURL) != "" {
		data["image"] = p.BannerURL
	}
	if p.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  p.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
