// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/zen-tui/internal/backend"
	"github.com/jeranaias/zen-tui/internal/config"
	"github.com/jeranaias/zen-tui/internal/kvstore"
	"github.com/jeranaias/zen-tui/internal/logging"
	"github.com/jeranaias/zen-tui/internal/model"
	"github.com/jeranaias/zen-tui/internal/session"
	"github.com/jeranaias/zen-tui/internal/storage"
)

// =============================================================================
// SHARED WIRING
// =============================================================================

// loadConfig reads the configuration named by the global flags.
func loadConfig(gf *globalFlags) (*config.Config, string, error) {
	path := gf.configPath
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}
	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return nil, path, err
	}
	if gf.logLevel != "" {
		cfg.LogLevel = gf.logLevel
	}
	return cfg, path, nil
}

// setupConsoleLogging sends logs to w. Plain commands only show warnings
// unless a lower level was asked for explicitly.
func setupConsoleLogging(cfg *config.Config, gf *globalFlags, w io.Writer) {
	level := "warn"
	if gf.logLevel != "" {
		level = cfg.LogLevel
	}
	logging.Setup(level, w)
}

// setupFileLogging sends logs to the configured log file, which keeps the
// terminal clean while a full-screen UI runs.
func setupFileLogging(cfg *config.Config) io.Closer {
	path, err := cfg.LogPath()
	if err == nil {
		var closer io.Closer
		if closer, err = logging.SetupFile(cfg.LogLevel, path); err == nil {
			return closer
		}
	}
	logging.Discard()
	return nopCloser{}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newChannel builds the answer transport for cfg. With a Gemini key and a
// non-Gemini backend, google/* models are routed to Gemini directly.
func newChannel(cfg *config.Config) session.Channel {
	b := cfg.Backend
	var primary session.Channel
	switch b.Kind {
	case config.BackendChatAPI:
		primary = backend.NewChatAPI(b.BaseURL, b.APIKey)
	case config.BackendGemini:
		primary = backend.NewGemini(b.APIKey, b.BaseURL, b.Model)
	default:
		primary = backend.NewOpenAI(b.APIKey, b.BaseURL, b.Model)
	}

	router := backend.NewRouter(primary)
	if b.Kind != config.BackendGemini && b.GeminiAPIKey != "" {
		router.Handle("google", backend.NewGemini(b.GeminiAPIKey, "", ""))
	}
	log.Debug().Str("backend", b.Kind).Str("model", b.Model).Msg("answer transport ready")
	return router
}

// openStore opens the conversation store configured by cfg.
func openStore(cfg *config.Config) (*storage.ConversationStore, error) {
	dir, err := cfg.StoreDir()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewConversationStoreWithDir(dir)
	if err != nil {
		return nil, err
	}
	store.MaxConversations = cfg.Store.MaxConversations
	store.Model = cfg.Backend.Model
	return store, nil
}

// openKV opens the SQLite key-value slots and drops expired entries.
func openKV(cfg *config.Config) (*kvstore.SQLiteStore, error) {
	path, err := cfg.KVPath()
	if err != nil {
		return nil, err
	}
	kv, err := kvstore.OpenSQLite(path)
	if err != nil {
		return nil, errors.Wrap(err, "open key-value store")
	}
	if n, err := kv.Sweep(); err != nil {
		log.Warn().Err(err).Msg("sweep expired slots")
	} else if n > 0 {
		log.Debug().Int("removed", n).Msg("swept expired slots")
	}
	return kv, nil
}

// loadCatalog returns the model switcher list, falling back to the built-in
// catalog when the file is unreadable.
func loadCatalog() []model.ModelInfo {
	path, err := config.CatalogPath()
	if err != nil {
		return model.DefaultCatalog
	}
	models, err := config.LoadCatalog(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("using built-in model catalog")
		return model.DefaultCatalog
	}
	return models
}
