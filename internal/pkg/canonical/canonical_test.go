//go:build unit

package canonical_test

import (
	"encoding/json"
	"testing"

	"github.com/Fresh-Industries/pantrypal/internal/pkg/canonical"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	t.Run("key order does not affect the hash", func(t *testing.T) {
		var a, b map[string]any
		require.NoError(t, json.Unmarshal([]byte(`{"x":1,"y":{"b":2,"a":[1,2]}}`), &a))
		require.NoError(t, json.Unmarshal([]byte(`{"y":{"a":[1,2],"b":2},"x":1}`), &b))

		ha, err := canonical.Hash(a)
		require.NoError(t, err)
		hb, err := canonical.Hash(b)
		require.NoError(t, err)
		assert.Equal(t, ha, hb)
	})

	t.Run("structs and equivalent maps hash identically", func(t *testing.T) {
		type payload struct {
			SlotID string `json:"slotId"`
			Seed   string `json:"seed,omitempty"`
		}

		hs, err := canonical.Hash(payload{SlotID: "store-1:2026-03-01:morning"})
		require.NoError(t, err)
		hm, err := canonical.Hash(map[string]any{"slotId": "store-1:2026-03-01:morning"})
		require.NoError(t, err)
		assert.Equal(t, hs, hm)
	})

	t.Run("different payloads hash differently", func(t *testing.T) {
		ha, err := canonical.Hash(map[string]any{"slotId": "a"})
		require.NoError(t, err)
		hb, err := canonical.Hash(map[string]any{"slotId": "b"})
		require.NoError(t, err)
		assert.NotEqual(t, ha, hb)
	})

	t.Run("array order is significant", func(t *testing.T) {
		ha, err := canonical.Hash(map[string]any{"items": []int{1, 2}})
		require.NoError(t, err)
		hb, err := canonical.Hash(map[string]any{"items": []int{2, 1}})
		require.NoError(t, err)
		assert.NotEqual(t, ha, hb)
	})
}

func TestMarshal(t *testing.T) {
	t.Run("emits key-sorted objects", func(t *testing.T) {
		var v map[string]any
		require.NoError(t, json.Unmarshal([]byte(`{"zebra":1,"apple":{"y":1,"x":2}}`), &v))

		out, err := canonical.Marshal(v)
		require.NoError(t, err)
		assert.Equal(t, `{"apple":{"x":2,"y":1},"zebra":1}`, string(out))
	})
}
