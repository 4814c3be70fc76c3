// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// =============================================================================
// .ENV FILES
// =============================================================================

// LoadDotEnv loads ".env" from the working directory and from dir. Variables
// already set in the environment win, and missing files are ignored.
func LoadDotEnv(dir string) {
	candidates := []string{".env"}
	if dir != "" {
		candidates = append(candidates, filepath.Join(dir, ".env"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("could not load .env")
		}
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variables over file values.
//
//   - ZEN_BACKEND: backend.kind
//   - ZEN_BASE_URL: backend.base_url
//   - ZEN_API_KEY: backend.api_key
//   - ZEN_MODEL: backend.model
//   - ZEN_TIMEOUT: backend.timeout_secs
//   - ZEN_DOCK_POLICY: dock.policy
//   - ZEN_PREVIEW_ADDR: dock.preview_addr ("off" disables)
//   - ZEN_LOG_LEVEL: log_level
//   - ZEN_THEME: ui.theme
//
// Provider keys fill backend credentials only when none is configured:
// OPENROUTER_API_KEY then OPENAI_API_KEY for the openai backend, and
// GEMINI_API_KEY (or GOOGLE_API_KEY) for Gemini.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ZEN_BACKEND"); v != "" {
		c.Backend.Kind = strings.ToLower(v)
	}
	if v := os.Getenv("ZEN_BASE_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("ZEN_API_KEY"); v != "" {
		c.Backend.APIKey = v
	}
	if v := os.Getenv("ZEN_MODEL"); v != "" {
		c.Backend.Model = v
	}
	if v := os.Getenv("ZEN_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Backend.TimeoutSecs = secs
		} else {
			log.Warn().Str("value", v).Msg("ignoring invalid ZEN_TIMEOUT")
		}
	}
	if v := os.Getenv("ZEN_DOCK_POLICY"); v != "" {
		c.Dock.Policy = v
	}
	if v := os.Getenv("ZEN_PREVIEW_ADDR"); v != "" {
		if strings.EqualFold(v, "off") {
			v = ""
		}
		c.Dock.PreviewAddr = v
	}
	if v := os.Getenv("ZEN_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("ZEN_THEME"); v != "" {
		c.UI.Theme = strings.ToLower(v)
	}

	if c.Backend.APIKey == "" {
		switch c.Backend.Kind {
		case BackendOpenAI:
			c.Backend.APIKey = firstEnv("OPENROUTER_API_KEY", "OPENAI_API_KEY")
		case BackendGemini:
			c.Backend.APIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
		}
	}
	if c.Backend.GeminiAPIKey == "" {
		c.Backend.GeminiAPIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
