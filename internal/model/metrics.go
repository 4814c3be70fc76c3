// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"math"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tiktoken-go/tokenizer"
)

// tokensPerWord is the rough words-to-tokens ratio used for live estimates.
const tokensPerWord = 1.3

// InputMetrics summarizes the text being typed.
type InputMetrics struct {
	Words  int
	Tokens int     // estimate from the word count
	Exact  int     // cl100k token count, -1 when the codec is unavailable
	Cost   float64 // dollars, estimate
}

// MeasureInput computes the live metrics shown under the input box.
func MeasureInput(text, modelID string) InputMetrics {
	words := len(strings.Fields(text))
	tokens := int(math.Round(float64(words) * tokensPerWord))
	return InputMetrics{
		Words:  words,
		Tokens: tokens,
		Exact:  CountTokens(text),
		Cost:   float64(tokens) / 1000 * CostPer1K(modelID),
	}
}

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
)

// CountTokens returns the cl100k_base token count of text, or -1 when the
// codec could not be loaded.
func CountTokens(text string) int {
	codecOnce.Do(func() {
		c, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err != nil {
			log.Warn().Err(err).Msg("token codec unavailable")
			return
		}
		codec = c
	})
	if codec == nil {
		return -1
	}
	if text == "" {
		return 0
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return -1
	}
	return len(ids)
}
