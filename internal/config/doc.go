// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for zen.
//
// # Key Types
//
//   - Config: main configuration structure
//   - BackendConfig: answer transport and credentials
//   - DockConfig: artifact dock policy and live preview
//   - StoreConfig: conversation history and key-value paths
//   - UIConfig: terminal UI preferences
//
// # Configuration Precedence
//
// Configuration is loaded from (highest first):
//   - Environment variables (ZEN_*, provider API keys)
//   - A .env file in the working directory or the config directory
//   - ~/.zen/config.toml
//   - Built-in defaults
//
// ZEN_HOME moves the whole config directory.
//
// The model switcher list lives in ~/.zen/models.yaml; see LoadCatalog.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal().Err(err).Msg("config")
//	}
//	fmt.Println(cfg.Backend.Kind)
package config
