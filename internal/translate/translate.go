// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

// Package translate maps between the API's camelCase field names and
// the snake_case custom-field names WordPress stores.
package translate

import (
	"strings"
	"unicode"
)

// OwnerFieldKey is the reserved upstream custom field carrying the
// submitting identity. It is always set server-side; a client-supplied
// value is overwritten.
const OwnerFieldKey = "supabase_user_id"

// overrides lists fields whose upstream name does not follow the
// default camelCase to snake_case rule. This table is the single
// source of truth for such names; the reverse direction never needs to
// invert it because upstream already stores canonical keys.
var overrides = map[string]string{
	"fotoUtama":  "foto_utama_url",
	"petaLokasi": "peta_lokasi_embed",
}

// ToSnake converts a camelCase name to snake_case by inserting an
// underscore before each uppercase letter and lowercasing it.
func ToSnake(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	for _, r := range name {
		if unicode.IsUpper(r) {
			b.WriteByte('_')
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToCamel converts a snake_case name to camelCase.
func ToCamel(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	upper := false
	for _, r := range name {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToUpstream translates a caller-side field map into the upstream
// custom-field map and injects the owner identity under OwnerFieldKey.
func ToUpstream(fields map[string]string, ownerID string) map[string]string {
	out := make(map[string]string, len(fields)+1)
	for name, value := range fields {
		key, ok := overrides[name]
		if !ok {
			key = ToSnake(name)
		}
		out[key] = value
	}
	out[OwnerFieldKey] = ownerID
	return out
}

// FromUpstream translates upstream custom fields back to caller-side
// names for display. The owner field is dropped; it is exposed
// separately as the item's owner identity.
func FromUpstream(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for key, value := range fields {
		if key == OwnerFieldKey {
			continue
		}
		out[ToCamel(key)] = value
	}
	return out
}
