// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

// Package config loads gateway configuration using Koanf v2 with
// layered sources: built-in defaults, an optional YAML file, then
// environment variables (highest priority).
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration object.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	WordPress WordPressConfig `koanf:"wordpress"`
	Supabase  SupabaseConfig  `koanf:"supabase"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// Environment is "development" or "production". Development mode
	// relaxes credential validation and includes error detail in
	// responses.
	Environment string `koanf:"environment"`
}

// WordPressConfig holds the upstream CMS connection and the service
// account used for elevated writes.
type WordPressConfig struct {
	// APIURL is the REST base, e.g. https://cms.example.org/wp-json/wp/v2
	APIURL string `koanf:"api_url"`

	// JWTAuthURL is the token endpoint base, e.g.
	// https://cms.example.org/wp-json/jwt-auth/v1
	JWTAuthURL string `koanf:"jwt_auth_url"`

	// Username and Password are the service-account credentials
	// exchanged for a short-lived bearer token.
	Username string `koanf:"username"`
	Password string `koanf:"password"`

	Timeout time.Duration `koanf:"timeout"`

	// TokenTTL is how long an exchanged token is cached. The issuer
	// grants 60 minutes; caching for less keeps a safety margin.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// RateLimitRPS caps outbound calls to the CMS. Zero disables.
	RateLimitRPS float64 `koanf:"rate_limit_rps"`
}

// SupabaseConfig holds the identity-provider connection.
type SupabaseConfig struct {
	URL     string        `koanf:"url"`
	AnonKey string        `koanf:"anon_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// SecurityConfig holds session-cookie and rate-limit settings.
type SecurityConfig struct {
	CookieName   string        `koanf:"cookie_name"`
	CookieMaxAge time.Duration `koanf:"cookie_max_age"`

	RateLimitDisabled bool `koanf:"rate_limit_disabled"`

	// AuthIPLimit / AuthIPWindow drive the coarse per-IP limiter on
	// the auth routes (brute-force protection, on top of the
	// per-identity limiter).
	AuthIPLimit  int           `koanf:"auth_ip_limit"`
	AuthIPWindow time.Duration `koanf:"auth_ip_window"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all defaults applied. Defaults
// are overridden by the config file, then by environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		WordPress: WordPressConfig{
			Timeout:      15 * time.Second,
			TokenTTL:     55 * time.Minute,
			RateLimitRPS: 20,
		},
		Supabase: SupabaseConfig{
			Timeout: 15 * time.Second,
		},
		Security: SecurityConfig{
			CookieName:   "auth_token",
			CookieMaxAge: 7 * 24 * time.Hour,
			AuthIPLimit:  5,
			AuthIPWindow: 5 * time.Minute,
			CORSOrigins:  []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the loaded configuration for consistency. Upstream
// credentials are mandatory outside development mode.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Security.CookieMaxAge <= 0 {
		return fmt.Errorf("security.cookie_max_age must be positive")
	}
	if c.WordPress.TokenTTL <= 0 {
		return fmt.Errorf("wordpress.token_ttl must be positive")
	}
	if c.Server.Environment == "development" {
		return nil
	}
	if c.WordPress.APIURL == "" || c.WordPress.JWTAuthURL == "" {
		return fmt.Errorf("wordpress.api_url and wordpress.jwt_auth_url are required")
	}
	if c.WordPress.Username == "" || c.WordPress.Password == "" {
		return fmt.Errorf("wordpress service-account credentials are required")
	}
	if c.Supabase.URL == "" || c.Supabase.AnonKey == "" {
		return fmt.Errorf("supabase.url and supabase.anon_key are required")
	}
	return nil
}

// IsDevelopment reports whether development mode is active.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}
