package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLookupCacheSetGet(t *testing.T) {
	c := NewLookupCache(time.Minute, time.Minute)
	defer c.Stop()

	c.Set("categories", []string{"Yağ", "Filtre"})

	values, ok := c.Get("categories")
	assert.True(t, ok)
	assert.Equal(t, []string{"Yağ", "Filtre"}, values)

	_, ok = c.Get("brands")
	assert.False(t, ok)
}

func TestLookupCacheExpiry(t *testing.T) {
	c := NewLookupCache(20*time.Millisecond, time.Minute)
	defer c.Stop()

	c.Set("units", []string{"adet"})
	_, ok := c.Get("units")
	assert.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok = c.Get("units")
	assert.False(t, ok)
}

func TestLookupCacheInvalidate(t *testing.T) {
	c := NewLookupCache(time.Minute, time.Minute)
	defer c.Stop()

	c.Set("categories", []string{"Fren"})
	c.Invalidate("categories")

	_, ok := c.Get("categories")
	assert.False(t, ok)
}

func TestLookupCacheCopiesValues(t *testing.T) {
	c := NewLookupCache(time.Minute, time.Minute)
	defer c.Stop()

	src := []string{"adet", "litre"}
	c.Set("units", src)
	src[0] = "mutated"

	values, ok := c.Get("units")
	assert.True(t, ok)
	assert.Equal(t, "adet", values[0])

	values[1] = "mutated"
	again, _ := c.Get("units")
	assert.Equal(t, "litre", again[1])
}
