// internal/config/config.go
//
// Application configuration.
// Responsibilities:
//   - Read environment variables (PORT, LOG_LEVEL, DB_PATH, SESSION_*, TTS_*, ...)
//     over built-in defaults with viper.
//   - Validate the result with struct tags before anything starts.
//
// .env files are loaded by main before Load runs.

// Package config provides application configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Config holds all application configuration.
type Config struct {
	Port          string        `mapstructure:"port" validate:"required,numeric"`
	LogLevel      string        `mapstructure:"log_level" validate:"required,oneof=trace debug info warn error fatal panic disabled"`
	DBPath        string        `mapstructure:"db_path" validate:"required"`
	CatalogFile   string        `mapstructure:"catalog_file"`
	SessionSecret string        `mapstructure:"session_secret" validate:"required,min=16"`
	SessionTTL    time.Duration `mapstructure:"session_ttl" validate:"gt=0"`
	CookieName    string        `mapstructure:"cookie_name" validate:"required"`
	ClientOrigin  string        `mapstructure:"client_origin" validate:"required,url"`
	SecureCookies bool          `mapstructure:"secure_cookies"`
	TTSURL        string        `mapstructure:"tts_url" validate:"required,url"`
	TTSLang       string        `mapstructure:"tts_lang" validate:"required,bcp47_language_tag"`
	TTSTimeout    time.Duration `mapstructure:"tts_timeout" validate:"gt=0"`
	AudioCacheTTL time.Duration `mapstructure:"audio_cache_ttl" validate:"gte=0"`
}

var defaults = map[string]any{
	"port":            "5175",
	"log_level":       "info",
	"db_path":         "./data/app.db",
	"catalog_file":    "",
	"session_secret":  "dev_secret_change_me",
	"session_ttl":     "12h",
	"cookie_name":     "alfabetiza_session",
	"client_origin":   "http://localhost:5173",
	"secure_cookies":  false,
	"tts_url":         "https://translate.google.com/translate_tts",
	"tts_lang":        "pt-BR",
	"tts_timeout":     "10s",
	"audio_cache_ttl": "720h",
}

// Load reads configuration from environment variables (PORT, LOG_LEVEL,
// DB_PATH, ...) over built-in defaults, then validates it.
func Load() (*Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// Language returns the parsed speech language.
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.TTSLang)
	if err != nil {
		return language.BrazilianPortuguese
	}
	return tag
}

// IsDevelopment reports whether the client runs on a local origin.
func (c *Config) IsDevelopment() bool {
	return strings.Contains(c.ClientOrigin, "localhost") ||
		strings.Contains(c.ClientOrigin, "127.0.0.1")
}
