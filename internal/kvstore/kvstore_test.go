// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package kvstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/zen-tui/internal/session"
)

var (
	_ session.KeyValueStore = (*SQLiteStore)(nil)
	_ session.KeyValueStore = (*MemoryStore)(nil)
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func stores(t *testing.T, c *clock) map[string]session.KeyValueStore {
	t.Helper()
	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	sq.now = c.now

	mem := NewMemory()
	mem.now = c.now

	return map[string]session.KeyValueStore{"sqlite": sq, "memory": mem}
}

func TestStore_SetGetDelete(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	for name, kv := range stores(t, c) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := kv.Get("selectedModel")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Set("selectedModel", `{"id":"a"}`, 0))
			require.NoError(t, kv.Set("selectedModel", `{"id":"b"}`, 0))

			v, ok, err := kv.Get("selectedModel")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"id":"b"}`, v)

			require.NoError(t, kv.Delete("selectedModel"))
			require.NoError(t, kv.Delete("selectedModel"))
			_, ok, _ = kv.Get("selectedModel")
			assert.False(t, ok)
		})
	}
}

func TestStore_Expiry(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	for name, kv := range stores(t, c) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, kv.Set("short", "x", 24*time.Hour))
			require.NoError(t, kv.Set("forever", "y", 0))

			c.t = c.t.Add(23 * time.Hour)
			_, ok, _ := kv.Get("short")
			assert.True(t, ok)

			c.t = c.t.Add(2 * time.Hour)
			_, ok, _ = kv.Get("short")
			assert.False(t, ok)

			v, ok, _ := kv.Get("forever")
			assert.True(t, ok)
			assert.Equal(t, "y", v)

			c.t = time.Unix(1_700_000_000, 0)
		})
	}
}

func TestSQLiteStore_Sweep(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer sq.Close()
	sq.now = c.now

	require.NoError(t, sq.Set("a", "1", time.Minute))
	require.NoError(t, sq.Set("b", "2", time.Hour))
	require.NoError(t, sq.Set("c", "3", 0))

	c.t = c.t.Add(10 * time.Minute)
	n, err := sq.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	sq, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, sq.Set("zen:webEnabled", "1", 0))
	require.NoError(t, sq.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()
	v, ok, err := reopened.Get("zen:webEnabled")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}
