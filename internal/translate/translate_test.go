// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package translate

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
)

func TestToSnake(t *testing.T) {
	tests := []struct{ in, want string }{
		{"nilaiSejarah", "nilai_sejarah"},
		{"daerahAsal", "daerah_asal"},
		{"lokasi", "lokasi"},
		{"kondisiBangunan", "kondisi_bangunan"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToSnake(tt.in), tt.in)
	}
}

func TestToCamel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"nilai_sejarah", "nilaiSejarah"},
		{"lokasi", "lokasi"},
		{"foto_utama_url", "fotoUtamaUrl"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToCamel(tt.in), tt.in)
	}
}

func TestToUpstreamDefaultRule(t *testing.T) {
	got := ToUpstream(map[string]string{
		"nilaiSejarah": "kolonial",
		"lokasi":       "Ternate",
	}, "user-uuid-1")

	assert.Equal(t, map[string]string{
		"nilai_sejarah":    "kolonial",
		"lokasi":           "Ternate",
		"supabase_user_id": "user-uuid-1",
	}, got)
}

func TestToUpstreamOverrideTableWins(t *testing.T) {
	got := ToUpstream(map[string]string{"fotoUtama": "https://img"}, "u1")
	assert.Equal(t, "https://img", got["foto_utama_url"])
	assert.NotContains(t, got, "foto_utama")
}

func TestToUpstreamOwnerCannotBeSpoofed(t *testing.T) {
	got := ToUpstream(map[string]string{
		"supabaseUserId": "attacker",
	}, "real-owner")
	assert.Equal(t, "real-owner", got[OwnerFieldKey])
}

func TestFromUpstreamDropsOwnerField(t *testing.T) {
	got := FromUpstream(map[string]string{
		"nilai_sejarah":    "kolonial",
		"supabase_user_id": "u1",
	})
	assert.Equal(t, map[string]string{"nilaiSejarah": "kolonial"}, got)
}

// Upstream keys survive a display round trip: translating to the app
// shape and back regenerates the stored key. The opposite direction is
// one-way for overridden names (fotoUtama becomes foto_utama_url, which
// reads back as fotoUtamaUrl), which is fine because reads never feed
// writes directly.
func TestUpstreamKeysRoundTrip(t *testing.T) {
	upstream := map[string]string{
		"nilai_sejarah":  "a",
		"foto_utama_url": "b",
		"lokasi":         "c",
	}
	back := ToUpstream(FromUpstream(upstream), "u1")
	delete(back, OwnerFieldKey)
	assert.Equal(t, upstream, back)
}

func TestWrapRaw(t *testing.T) {
	b, err := json.Marshal(WrapRaw("Benteng Oranje"))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"raw":"Benteng Oranje"}`, string(b))
}

func TestUnwrapText(t *testing.T) {
	assert.Equal(t, "plain", UnwrapText(json.RawMessage(`"plain"`)))
	assert.Equal(t, "raw title", UnwrapText(json.RawMessage(`{"raw":"raw title","rendered":"<p>raw title</p>"}`)))
	assert.Equal(t, "<p>only</p>", UnwrapText(json.RawMessage(`{"rendered":"<p>only</p>"}`)))
	assert.Equal(t, "", UnwrapText(nil))
	assert.Equal(t, "", UnwrapText(json.RawMessage(`42`)))
}
