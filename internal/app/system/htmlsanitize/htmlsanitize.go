// Package htmlsanitize scrubs user-supplied text before it is stored.
//
// Gift and occasion fields are plain text in this application, so the
// strict policy strips every tag outright rather than allowlisting a
// formatting subset. Link fields (image and shop URLs) are validated as
// absolute http(s) URLs instead.
package htmlsanitize

import (
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text strips all HTML from s and trims surrounding whitespace. Titles,
// names, and descriptions pass through here on every write.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// URL returns the cleaned URL when s is an absolute http or https URL,
// and an empty string otherwise. Used for gift image and shop links so a
// javascript: or data: URL never reaches another participant's browser.
func URL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	if u.Host == "" {
		return ""
	}
	return u.String()
}
