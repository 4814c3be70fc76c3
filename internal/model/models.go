// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
)

// =============================================================================
// MODEL INFO TYPE
// =============================================================================

// ModelInfo is one selectable model in the catalog.
type ModelInfo struct {
	// ID is the model identifier, "provider/name" or "provider:name".
	ID string `json:"id" yaml:"id"`

	// Label is the human-readable display name.
	Label string `json:"label" yaml:"label"`

	// CostPer1K is the rough per-1K-token estimate shown under the input.
	// It is a UX hint, not billing.
	CostPer1K float64 `json:"cost_per_1k,omitempty" yaml:"cost_per_1k,omitempty"`
}

// Provider returns the provider prefix of the ID ("openai" for
// "openai/gpt-4o-mini" and for "openai:gpt-5"), or "".
func (m ModelInfo) Provider() string {
	return ProviderOf(m.ID)
}

// ProviderOf extracts the provider prefix from a model ID.
func ProviderOf(id string) string {
	if i := strings.IndexAny(id, "/:"); i > 0 {
		return strings.ToLower(id[:i])
	}
	return ""
}

// ModelName strips the provider prefix from a model ID.
func ModelName(id string) string {
	if i := strings.IndexAny(id, "/:"); i > 0 {
		return id[i+1:]
	}
	return id
}

// =============================================================================
// CATALOGS
// =============================================================================

// RerunModels is the fixed list offered by "re-run with another model".
var RerunModels = []ModelInfo{
	{ID: "openai/gpt-4o-mini", Label: "GPT-4o mini", CostPer1K: 0.15},
	{ID: "anthropic/claude-3-5-sonnet", Label: "Claude 3.5 Sonnet", CostPer1K: 3.0},
	{ID: "google/gemini-1.5-flash", Label: "Gemini 1.5 Flash", CostPer1K: 0.05},
	{ID: "groq/llama-3.1-70b-versatile", Label: "Llama 3.1 70B", CostPer1K: 0.0},
}

// DefaultCatalog is the model switcher list used when no catalog file exists.
var DefaultCatalog = []ModelInfo{
	{ID: "openai:gpt-5", Label: "GPT-5"},
	{ID: "anthropic:sonnet-4", Label: "Claude Sonnet-4"},
	{ID: "google:gemini-2.5-pro", Label: "Gemini 2.5 Pro"},
	{ID: "groq:llama-3.1-405b", Label: "Llama 3.1 405B"},
}

// MetricsModel is the model ID used for input cost estimates.
const MetricsModel = "openai/gpt-4.1"

// FindModel looks up id in the given catalogs, in order.
func FindModel(id string, catalogs ...[]ModelInfo) (ModelInfo, bool) {
	for _, catalog := range catalogs {
		for _, m := range catalog {
			if m.ID == id {
				return m, true
			}
		}
	}
	return ModelInfo{}, false
}

// CostPer1K returns the estimate for id across the rerun list and the default
// catalog; unknown models cost 0.
func CostPer1K(id string) float64 {
	if m, ok := FindModel(id, RerunModels, DefaultCatalog); ok {
		return m.CostPer1K
	}
	return 0
}

// =============================================================================
// SELECTED MODEL
// =============================================================================

// SelectedModel is the model identity handed to the submission channel for the
// next request. It never appears in the message log.
type SelectedModel struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Provider     string `json:"provider"`
	ProviderID   string `json:"providerId"`
	Enabled      bool   `json:"enabled"`
	ToolCallType string `json:"toolCallType"`
}

// SelectModel builds the selection payload for a rerun. Name mirrors the ID
// and the provider fields stay empty; the backend resolves them.
func SelectModel(id string) SelectedModel {
	return SelectedModel{
		ID:           id,
		Name:         id,
		Provider:     "",
		ProviderID:   "",
		Enabled:      true,
		ToolCallType: "native",
	}
}

// Encode serializes the selection for the key-value slot.
func (s SelectedModel) Encode() string {
	data, _ := json.Marshal(s)
	return string(data)
}

// DecodeSelectedModel parses a stored selection.
func DecodeSelectedModel(raw string) (SelectedModel, bool) {
	var s SelectedModel
	if err := json.Unmarshal([]byte(raw), &s); err != nil || s.ID == "" {
		return SelectedModel{}, false
	}
	return s, true
}
