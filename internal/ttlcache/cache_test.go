// ABOUTME: Tests for the TTL memo cache.
// ABOUTME: Covers expiry, size-bounded eviction, updates, and Close safety.

package ttlcache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := New(time.Minute, 10)
	defer c.Close()

	c.Set("key", "value")

	got, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", got)
}

func TestCacheMiss(t *testing.T) {
	c := New(time.Minute, 10)
	defer c.Close()

	_, ok := c.Get("absent")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	c := New(10*time.Millisecond, 10)
	defer c.Close()

	c.Set("key", "value")
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestCacheEvictsOldestAtCapacity(t *testing.T) {
	c := New(time.Minute, 3)
	defer c.Close()

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("key%d", i), "v")
	}
	c.Set("key3", "v")

	_, ok := c.Get("key0")
	assert.False(t, ok, "oldest entry should be evicted")

	for i := 1; i <= 3; i++ {
		_, ok := c.Get(fmt.Sprintf("key%d", i))
		assert.True(t, ok, "key%d should survive", i)
	}
	assert.Equal(t, 3, c.Len())
}

func TestCacheUpdateRefreshesOrder(t *testing.T) {
	c := New(time.Minute, 2)
	defer c.Close()

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("a", "updated") // refreshes a's position
	c.Set("c", "3")       // evicts b, the oldest

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "updated", got)

	_, ok = c.Get("b")
	assert.False(t, ok)

	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestCacheCloseIsIdempotent(t *testing.T) {
	c := New(time.Minute, 10)
	c.Close()
	c.Close() // must not panic
}
