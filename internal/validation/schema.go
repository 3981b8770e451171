// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package validation

import (
	"fmt"

	"github.com/pusaka-id/pusaka/internal/apperrors"
)

// maxTitleLength applies to every content type.
const maxTitleLength = 200

// ContentSchema declares the field rules for one content type.
type ContentSchema struct {
	// Slug is the WordPress custom-post-type slug.
	Slug string

	// Required lists field names (camelCase, caller-side) that must be
	// present and non-empty.
	Required []string

	// MaxLengths maps field names to their maximum character count.
	// Fields not listed here are accepted with a default cap.
	MaxLengths map[string]int
}

// defaultFieldMax caps fields the schema does not mention explicitly.
const defaultFieldMax = 2000

// contentSchemas is keyed by CPT slug. Adding a content type means
// adding an entry here and registering the CPT upstream.
var contentSchemas = map[string]ContentSchema{
	"cagar_budaya": {
		Slug: "cagar_budaya",
		MaxLengths: map[string]int{
			"lokasi":          500,
			"nilaiSejarah":    2000,
			"usiaBangunan":    100,
			"kondisiBangunan": 1000,
			"nilaiBudaya":     2000,
			"sumberInformasi": 500,
		},
	},
	"kesenian": {
		Slug: "kesenian",
		MaxLengths: map[string]int{
			"daerahAsal":    100,
			"jenisKesenian": 100,
			"deskripsi":     2000,
		},
	},
	"tokoh": {
		Slug: "tokoh",
		MaxLengths: map[string]int{
			"tempatLahir":  100,
			"tanggalLahir": 50,
			"profesi":      100,
			"kontribusi":   2000,
		},
	},
	"komunitas": {
		Slug: "komunitas",
		MaxLengths: map[string]int{
			"namaKomunitas": 200,
			"bidang":        100,
			"deskripsi":     2000,
		},
	},
	"tradisi_lokal": {
		Slug: "tradisi_lokal",
		MaxLengths: map[string]int{
			"daerah":           100,
			"waktuPelaksanaan": 200,
			"deskripsi":        2000,
		},
	},
}

// SchemaFor returns the schema for a content-type slug.
func SchemaFor(slug string) (ContentSchema, bool) {
	s, ok := contentSchemas[slug]
	return s, ok
}

// ContentTypeSlugs returns the supported CPT slugs.
func ContentTypeSlugs() []string {
	slugs := make([]string, 0, len(contentSchemas))
	for slug := range contentSchemas {
		slugs = append(slugs, slug)
	}
	return slugs
}

// IsContentType reports whether slug names a supported content type.
func IsContentType(slug string) bool {
	_, ok := contentSchemas[slug]
	return ok
}

// ValidateContent sanitizes and validates a submission for the given
// content type. It returns the sanitized title and fields, or a
// validation error aggregating every violation.
//
// Sanitization runs before length checks, so markup stripped from a
// value cannot push it over its limit.
func ValidateContent(slug, title string, fields map[string]string) (string, map[string]string, *apperrors.Error) {
	schema, ok := contentSchemas[slug]
	if !ok {
		return "", nil, apperrors.ValidationCode(
			"UNSUPPORTED_CONTENT_TYPE",
			fmt.Sprintf("unsupported content type %q", slug),
			"cptSlug",
		)
	}

	title = SanitizeString(title)
	clean := SanitizeFields(fields)

	var violations []string
	if title == "" {
		violations = append(violations, "title is required")
	} else if len([]rune(title)) > maxTitleLength {
		violations = append(violations, fmt.Sprintf("title must be at most %d characters", maxTitleLength))
	}

	for _, name := range schema.Required {
		if clean[name] == "" {
			violations = append(violations, fmt.Sprintf("%s is required", name))
		}
	}

	for name, value := range clean {
		limit, ok := schema.MaxLengths[name]
		if !ok {
			limit = defaultFieldMax
		}
		if len([]rune(value)) > limit {
			violations = append(violations, fmt.Sprintf("%s must be at most %d characters", name, limit))
		}
	}

	if len(violations) > 0 {
		if title == "" {
			return "", nil, apperrors.ValidationCode("MISSING_REQUIRED_FIELDS", "submission is missing required fields", violations...)
		}
		return "", nil, apperrors.Validation("submission failed validation", violations...)
	}

	return title, clean, nil
}
