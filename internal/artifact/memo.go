// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package artifact

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoSize bounds the number of memoized replies.
const DefaultMemoSize = 256

// Classifier memoizes Classify by reply text. Streaming re-classifies the same
// growing reply many times, and the dock re-reads it on every redraw.
type Classifier struct {
	cache *lru.Cache[string, Result]
}

// NewClassifier returns a memoizing classifier holding up to size results.
// A non-positive size disables the memo.
func NewClassifier(size int) *Classifier {
	if size <= 0 {
		return &Classifier{}
	}
	cache, err := lru.New[string, Result](size)
	if err != nil {
		return &Classifier{}
	}
	return &Classifier{cache: cache}
}

// Classify returns the memoized result for text.
func (c *Classifier) Classify(text string) Result {
	if c == nil || c.cache == nil {
		return Classify(text)
	}
	if r, ok := c.cache.Get(text); ok {
		return r
	}
	r := Classify(text)
	c.cache.Add(text, r)
	return r
}

// Len returns the number of memoized results.
func (c *Classifier) Len() int {
	if c == nil || c.cache == nil {
		return 0
	}
	return c.cache.Len()
}
