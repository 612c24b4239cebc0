// Package sanitize cleans user-supplied text before it reaches the
// aggregate layer.
//
// Short fields (titles, usernames, role names, technology names) must be
// plain text; descriptions are authored as markdown and may carry inline
// HTML, so they get the UGC policy instead of the strict one.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()
	ugc    = bluemonday.UGCPolicy()
)

// Text strips all HTML from a short plain-text field and trims whitespace.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// Description removes unsafe HTML from a long-form field while keeping
// user-generated formatting intact.
func Description(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}
