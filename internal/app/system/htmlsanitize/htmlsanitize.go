// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every tag. Policies are safe for concurrent use once built.
var strict = bluemonday.StrictPolicy()

// PlainText strips all markup from user-supplied free text (descriptions,
// comments, locations) and trims surrounding whitespace. Entities escaped
// by the policy are decoded again because values are returned as JSON,
// not embedded in HTML.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
