// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package validation

import (
	"regexp"
	"strings"
)

// scriptRe matches whole script elements including their contents.
// Removing the element body matters: stripping only the tags would
// leave the script source behind as visible text.
var scriptRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)

// tagRe matches any remaining markup tag.
var tagRe = regexp.MustCompile(`<[^>]*>`)

// SanitizeString strips script elements and markup tags from caller
// input and trims surrounding whitespace. Plain text passes unchanged.
func SanitizeString(s string) string {
	s = scriptRe.ReplaceAllString(s, "")
	s = tagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// SanitizeFields returns a copy of fields with every value sanitized.
// Keys are left as-is; field-name translation happens later.
func SanitizeFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = SanitizeString(v)
	}
	return out
}
