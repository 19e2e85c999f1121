// Package sanitize strips markup from user-provided text before it is stored.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`[ \t]+`)
	entityReplacer  = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", "\"",
		"&#39;", "'",
	)
)

// StripHTML removes HTML tags, decodes common entities and strips again so
// encoded tags cannot survive.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = entityReplacer.Replace(result)
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text sanitizes multi-line free text such as lead notes and messages.
func Text(s string) string {
	return StripHTML(s)
}

// Line sanitizes a single-line field (names, titles) and collapses runs of spaces.
func Line(s string) string {
	s = strings.ReplaceAll(StripHTML(s), "\n", " ")
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}
