// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pusaka-id/pusaka/internal/apperrors"
	"github.com/pusaka-id/pusaka/internal/models"
)

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Benteng Oranje", "Benteng Oranje"},
		{"trims whitespace", "  Benteng Oranje \n", "Benteng Oranje"},
		{"strips script with contents", `before<script>alert("x")</script>after`, "beforeafter"},
		{"script case-insensitive", `a<SCRIPT src="x">b</SCRIPT>c`, "ac"},
		{"script across lines", "a<script>\nevil()\n</script>b", "ab"},
		{"strips remaining tags keeps text", "<b>bold</b> and <i>italic</i>", "bold and italic"},
		{"unclosed tag", "text<img src=x onerror=alert(1)>more", "textmore"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeString(tt.in))
		})
	}
}

func TestValidateContent_HappyPath(t *testing.T) {
	title, fields, err := ValidateContent("cagar_budaya", "Benteng Oranje", map[string]string{
		"lokasi":       "Ternate Utara",
		"nilaiSejarah": "Benteng peninggalan kolonial",
	})
	require.Nil(t, err)
	assert.Equal(t, "Benteng Oranje", title)
	assert.Equal(t, "Ternate Utara", fields["lokasi"])
}

func TestValidateContent_UnknownSlug(t *testing.T) {
	_, _, err := ValidateContent("not_a_type", "Title", nil)
	require.NotNil(t, err)
	assert.Equal(t, apperrors.KindValidation, err.Kind)
	assert.Equal(t, "UNSUPPORTED_CONTENT_TYPE", err.Code)
}

func TestValidateContent_MissingTitle(t *testing.T) {
	_, _, err := ValidateContent("kesenian", "", map[string]string{"deskripsi": "Tari tradisional"})
	require.NotNil(t, err)
	assert.Equal(t, "MISSING_REQUIRED_FIELDS", err.Code)
	assert.Contains(t, err.Fields, "title is required")
}

func TestValidateContent_TitleOnlyMarkupIsMissing(t *testing.T) {
	// a title that is nothing but markup sanitizes to empty
	_, _, err := ValidateContent("kesenian", "<script>x()</script>", nil)
	require.NotNil(t, err)
	assert.Equal(t, "MISSING_REQUIRED_FIELDS", err.Code)
}

func TestValidateContent_MaxLengths(t *testing.T) {
	_, _, err := ValidateContent("tokoh", "Sultan Baabullah", map[string]string{
		"tanggalLahir": strings.Repeat("x", 51),
	})
	require.NotNil(t, err)
	assert.Equal(t, apperrors.KindValidation, err.Kind)
	assert.Contains(t, err.Fields, "tanggalLahir must be at most 50 characters")
}

func TestValidateContent_SanitizeBeforeLengthCheck(t *testing.T) {
	// markup padding is stripped before the limit applies
	value := "<b>" + strings.Repeat("x", 95) + "</b>"
	_, fields, err := ValidateContent("tokoh", "Sultan Baabullah", map[string]string{
		"profesi": value,
	})
	require.Nil(t, err)
	assert.Len(t, fields["profesi"], 95)
}

func TestValidateContent_AggregatesViolations(t *testing.T) {
	_, _, err := ValidateContent("kesenian", strings.Repeat("t", 201), map[string]string{
		"daerahAsal": strings.Repeat("x", 101),
		"deskripsi":  strings.Repeat("y", 2001),
	})
	require.NotNil(t, err)
	assert.Len(t, err.Fields, 3)
}

func TestValidateContent_FieldsAreSanitized(t *testing.T) {
	_, fields, err := ValidateContent("kesenian", "Tari Soya-Soya", map[string]string{
		"deskripsi": `desc<script>steal()</script> ok`,
	})
	require.Nil(t, err)
	assert.Equal(t, "desc ok", fields["deskripsi"])
}

func TestIsContentType(t *testing.T) {
	assert.True(t, IsContentType("cagar_budaya"))
	assert.True(t, IsContentType("tradisi_lokal"))
	assert.False(t, IsContentType("posts"))
}

func TestValidateStruct(t *testing.T) {
	err := ValidateStruct(&models.RegisterRequest{Email: "not-an-email", Password: "short"})
	require.NotNil(t, err)
	assert.Equal(t, apperrors.KindValidation, err.Kind)
	assert.Len(t, err.Fields, 2)

	assert.Nil(t, ValidateStruct(&models.RegisterRequest{
		Email:    "user@example.org",
		Password: "longenough",
	}))
}
