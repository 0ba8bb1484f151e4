// Package htmlsanitize strips markup from free text that arrives from
// outside the service: equipment names typed by users and experiment
// descriptions served by the document store. It uses bluemonday.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// strict removes every tag and attribute.
	strict     *bluemonday.Policy
	strictOnce sync.Once
)

func getPolicy() *bluemonday.Policy {
	strictOnce.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// Text removes all markup from s, unescapes the entities bluemonday
// produces and collapses runs of whitespace. Plain text passes through
// unchanged apart from whitespace.
func Text(s string) string {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return collapse(s)
	}
	return collapse(html.UnescapeString(getPolicy().Sanitize(s)))
}

// IsPlainText reports whether s contains no tag-like sequence.
func IsPlainText(s string) bool {
	return !strings.Contains(s, "<") || !strings.Contains(s, ">")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Fields applies Text to each pointer in place. Nil pointers are skipped.
func Fields(ptrs ...*string) {
	for _, p := range ptrs {
		if p != nil {
			*p = Text(*p)
		}
	}
}
