// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package translate

import (
	"github.com/goccy/go-json"
)

// RawText is the WordPress write-side envelope for rich-text fields.
// A plain string title must be sent as {"raw": "..."}.
type RawText struct {
	Raw string `json:"raw"`
}

// renderedText is the read-side shape WordPress returns.
type renderedText struct {
	Raw      string `json:"raw"`
	Rendered string `json:"rendered"`
}

// WrapRaw wraps a plain string for a write payload.
func WrapRaw(s string) RawText {
	return RawText{Raw: s}
}

// UnwrapText extracts a plain string from a WordPress text field, which
// may arrive as a bare string or as a {raw, rendered} object. The raw
// form is preferred when present since rendered output is HTML.
func UnwrapText(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}

	var obj renderedText
	if err := json.Unmarshal(data, &obj); err != nil {
		return ""
	}
	if obj.Raw != "" {
		return obj.Raw
	}
	return obj.Rendered
}
