// Package htmlsanitize cleans user-supplied rich text before storage.
// Activity and questionnaire descriptions come from a rich-text editor
// on the frontend and may carry markup.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var policy = bluemonday.UGCPolicy()

// Sanitize strips dangerous markup, keeping common formatting tags.
func Sanitize(s string) string {
	return policy.Sanitize(s)
}
