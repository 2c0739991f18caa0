package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGet(t *testing.T) {
	c := New(time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", []int{1, 2}, time.Minute)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, v)
	assert.True(t, c.Contains("k"))
}

func TestMemoryExpiry(t *testing.T) {
	c := New(0)

	c.Set("short", "v", 20*time.Millisecond)
	assert.True(t, c.Contains("short"))

	time.Sleep(50 * time.Millisecond)
	assert.False(t, c.Contains("short"))
	_, ok := c.Get("short")
	assert.False(t, ok)
}

func TestMemoryNonPositiveTTLNeverExpires(t *testing.T) {
	c := New(0)
	c.Set("forever", 1, 0)

	time.Sleep(10 * time.Millisecond)
	assert.True(t, c.Contains("forever"))
}

func TestMemoryDeleteAndFlush(t *testing.T) {
	c := New(time.Minute)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	assert.Equal(t, 2, c.Len())

	c.Delete("a")
	assert.False(t, c.Contains("a"))

	c.Flush()
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Contains("b"))
}
