// Package sanitize turns upstream HTML fragments into plain text.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// StripTags removes all markup, decodes entities and collapses whitespace
func StripTags(raw string) string {
	if raw == "" {
		return ""
	}
	text := html.UnescapeString(strict.Sanitize(raw))
	return strings.Join(strings.Fields(text), " ")
}
