// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/zen-tui/internal/artifact"
	"github.com/jeranaias/zen-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Backend kinds.
const (
	BackendChatAPI = "chatapi"
	BackendOpenAI  = "openai"
	BackendGemini  = "gemini"
)

// Config represents the complete zen configuration.
type Config struct {
	// LogLevel is a zerolog level name: "debug", "info", "warn", "error".
	LogLevel string `toml:"log_level" json:"log_level"`

	Backend BackendConfig `toml:"backend" json:"backend"`
	Dock    DockConfig    `toml:"dock" json:"dock"`
	Store   StoreConfig   `toml:"store" json:"store"`
	UI      UIConfig      `toml:"ui" json:"ui"`
}

// BackendConfig selects and configures the answer transport.
type BackendConfig struct {
	// Kind is "chatapi", "openai" or "gemini".
	Kind string `toml:"kind" json:"kind"`
	// BaseURL is the endpoint root. Empty means the transport default.
	BaseURL string `toml:"base_url" json:"base_url"`
	// APIKey authenticates against BaseURL.
	APIKey string `toml:"api_key" json:"api_key"`
	// Model is used when no model has been selected.
	Model string `toml:"model" json:"model"`
	// TimeoutSecs bounds one streamed answer.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`

	// GeminiAPIKey enables routing google/* models to Gemini directly.
	GeminiAPIKey string `toml:"gemini_api_key" json:"gemini_api_key"`
}

// DockConfig controls the artifact dock and its live preview.
type DockConfig struct {
	// Policy is "renderable" (open on any renderable reply) or "intent"
	// (open only when the prompt asked for something visual).
	Policy string `toml:"policy" json:"policy"`
	// PreviewAddr is the listen address of the live preview server.
	// Empty disables it.
	PreviewAddr string `toml:"preview_addr" json:"preview_addr"`
	// OpenBrowser opens the preview in the browser when the dock opens.
	OpenBrowser bool `toml:"open_browser" json:"open_browser"`
	// MemoSize is the number of cached classifications.
	MemoSize int `toml:"memo_size" json:"memo_size"`
}

// StoreConfig holds persistence paths.
type StoreConfig struct {
	// Dir holds one JSON file per conversation.
	Dir string `toml:"dir" json:"dir"`
	// KVPath is the SQLite file of the expiring key-value slots.
	KVPath string `toml:"kv_path" json:"kv_path"`
	// MaxConversations limits saved history (0 = unlimited).
	MaxConversations int `toml:"max_conversations" json:"max_conversations"`
}

// UIConfig contains terminal UI preferences.
type UIConfig struct {
	// Theme is "dark", "light" or "auto".
	Theme string `toml:"theme" json:"theme"`
	// ShowMetrics shows words, tokens and cost under the input.
	ShowMetrics bool `toml:"show_metrics" json:"show_metrics"`
	// Mouse enables mouse wheel scrolling.
	Mouse bool `toml:"mouse" json:"mouse"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Backend: BackendConfig{
			Kind:        BackendOpenAI,
			Model:       "openai/gpt-4o-mini",
			TimeoutSecs: 300,
		},
		Dock: DockConfig{
			Policy:      artifact.OpenOnRenderable.String(),
			PreviewAddr: "127.0.0.1:7878",
			MemoSize:    artifact.DefaultMemoSize,
		},
		Store: StoreConfig{
			MaxConversations: 100,
		},
		UI: UIConfig{
			Theme:       "auto",
			ShowMetrics: true,
			Mouse:       true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the zen configuration directory: $ZEN_HOME, or ~/.zen.
func ConfigDir() (string, error) {
	if dir := os.Getenv("ZEN_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "could not determine home directory")
	}
	return filepath.Join(home, ".zen"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	return inConfigDir("config.toml")
}

// CatalogPath returns the path to the model catalog file.
func CatalogPath() (string, error) {
	return inConfigDir("models.yaml")
}

func inConfigDir(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions narrows a config file holding API keys to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		if err := os.Chmod(path, 0600); err != nil {
			return errors.Wrapf(err, "fix insecure permissions (was %o)", mode)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the config file (if any), applies .env and environment
// overrides, fills defaults and validates.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath is Load for an explicit file. A missing file yields defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat %s", path)
	}

	LoadDotEnv(filepath.Dir(path))
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not secure config permissions")
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	for _, key := range md.Undecoded() {
		log.Warn().Str("key", key.String()).Str("path", path).Msg("unknown config key")
	}
	return nil
}

// SetDefaults fills empty fields with defaults.
func (c *Config) SetDefaults() {
	d := Default()
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Backend.Kind == "" {
		c.Backend.Kind = d.Backend.Kind
	}
	if c.Backend.Model == "" {
		c.Backend.Model = d.Backend.Model
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = d.Backend.TimeoutSecs
	}
	if c.Dock.Policy == "" {
		c.Dock.Policy = d.Dock.Policy
	}
	if c.Dock.MemoSize == 0 {
		c.Dock.MemoSize = d.Dock.MemoSize
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
}

// DockPolicy returns the parsed dock policy.
func (c *Config) DockPolicy() artifact.Policy {
	return artifact.ParsePolicy(c.Dock.Policy)
}

// Timeout returns the per-answer stream timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to the default config path.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg atomically with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# zen configuration file\n")
	buf.WriteString("# Generated by zen - edit with care\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return errors.Wrap(err, "encode config")
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return errors.Wrap(err, "write config file")
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError is one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks field values and returns every problem at once.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, ValidationError{"log_level", fmt.Sprintf("unknown level %q", c.LogLevel)})
	}

	switch c.Backend.Kind {
	case BackendChatAPI, BackendOpenAI, BackendGemini:
	default:
		errs = append(errs, ValidationError{"backend.kind", fmt.Sprintf("must be chatapi, openai or gemini, got %q", c.Backend.Kind)})
	}
	if c.Backend.BaseURL != "" {
		if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{"backend.base_url", "must be an absolute URL"})
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, ValidationError{"backend.base_url", "scheme must be http or https"})
		}
	}
	if c.Backend.Kind == BackendChatAPI && c.Backend.BaseURL == "" {
		errs = append(errs, ValidationError{"backend.base_url", "required for the chatapi backend"})
	}
	if c.Backend.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{"backend.timeout_secs", "must not be negative"})
	}

	switch strings.ToLower(c.Dock.Policy) {
	case artifact.OpenOnRenderable.String(), artifact.OpenOnIntent.String():
	default:
		errs = append(errs, ValidationError{"dock.policy", fmt.Sprintf("must be renderable or intent, got %q", c.Dock.Policy)})
	}
	if c.Dock.PreviewAddr != "" {
		if _, _, err := net.SplitHostPort(c.Dock.PreviewAddr); err != nil {
			errs = append(errs, ValidationError{"dock.preview_addr", "must be host:port"})
		}
	}
	if c.Dock.MemoSize < 0 {
		errs = append(errs, ValidationError{"dock.memo_size", "must not be negative"})
	}

	if c.Store.MaxConversations < 0 {
		errs = append(errs, ValidationError{"store.max_conversations", "must not be negative"})
	}

	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		errs = append(errs, ValidationError{"ui.theme", fmt.Sprintf("must be dark, light or auto, got %q", c.UI.Theme)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// StoreDir returns the conversation directory, defaulting under ConfigDir.
func (c *Config) StoreDir() (string, error) {
	if c.Store.Dir != "" {
		return c.Store.Dir, nil
	}
	return inConfigDir("conversations")
}

// KVPath returns the key-value database path, defaulting under ConfigDir.
func (c *Config) KVPath() (string, error) {
	if c.Store.KVPath != "" {
		return c.Store.KVPath, nil
	}
	return inConfigDir("state.db")
}

// LogPath returns the file the TUI logs to.
func (c *Config) LogPath() (string, error) {
	return inConfigDir("zen.log")
}

// Clone returns a copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders the config as JSON with secrets redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Backend.APIKey != "" {
		safe.Backend.APIKey = "[REDACTED]"
	}
	if safe.Backend.GeminiAPIKey != "" {
		safe.Backend.GeminiAPIKey = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration, loading it on first access.
// Load errors fall back to defaults.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			log.Warn().Err(err).Msg("using default config")
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobal replaces the global configuration.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
