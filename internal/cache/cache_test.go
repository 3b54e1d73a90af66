package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetGetRoundTrip(t *testing.T) {
	c := New()
	c.Set("https://example.com/a", "extracted text", time.Hour)

	value, ok := c.Get("https://example.com/a")
	assert.True(t, ok)
	assert.Equal(t, "extracted text", value)

	_, ok = c.Get("https://example.com/missing")
	assert.False(t, ok)
}

func TestExpiredItemsAreInvisible(t *testing.T) {
	c := New()
	c.Set("key", "value", -time.Second)

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestCleanupDropsExpiredItems(t *testing.T) {
	c := New()
	c.Set("stale", "old", -time.Second)
	c.Set("fresh", "new", time.Hour)

	c.cleanup()

	c.mu.RLock()
	defer c.mu.RUnlock()
	assert.Len(t, c.items, 1)
	assert.Contains(t, c.items, "fresh")
}
