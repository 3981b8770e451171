// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, "auth_token", cfg.Security.CookieName)
	assert.Equal(t, 5, cfg.Security.AuthIPLimit)
	assert.Equal(t, "55m0s", cfg.WordPress.TokenTTL.String())
	require.NoError(t, cfg.Validate())
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("WP_API_URL", "https://cms.example.org/wp-json/wp/v2")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://cms.example.org/wp-json/wp/v2", cfg.WordPress.APIURL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestUnknownEnvVarsAreIgnored(t *testing.T) {
	t.Setenv("SOME_UNRELATED_VAR", "value")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestConfigFileLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 3000
wordpress:
  api_url: https://file.example.org/wp-json/wp/v2
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("WP_API_URL", "https://env.example.org/wp-json/wp/v2")

	cfg, err := Load()
	require.NoError(t, err)

	// env beats file, file beats defaults
	assert.Equal(t, "https://env.example.org/wp-json/wp/v2", cfg.WordPress.APIURL)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestCORSOriginsFromEnv(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://a.example.org, https://b.example.org")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.org", "https://b.example.org"}, cfg.Security.CORSOrigins)
}

func TestValidateProductionRequiresCredentials(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Environment = "production"
	assert.Error(t, cfg.Validate())

	cfg.WordPress.APIURL = "https://cms.example.org/wp-json/wp/v2"
	cfg.WordPress.JWTAuthURL = "https://cms.example.org/wp-json/jwt-auth/v1"
	cfg.WordPress.Username = "svc"
	cfg.WordPress.Password = "secret"
	assert.Error(t, cfg.Validate())

	cfg.Supabase.URL = "https://proj.supabase.co"
	cfg.Supabase.AnonKey = "anon"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())
}
