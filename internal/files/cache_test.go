package files

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fteapp/pkg/contracts/domain"
)

func TestMemoryCacheGetSet(t *testing.T) {
	cache := NewMemoryCache(0)
	defer cache.Stop()

	key := CacheKey{Path: "/data/optimal_fte.xlsx"}
	_, ok := cache.Get(key)
	assert.False(t, ok)

	cache.Set(key, CacheEntry{Table: domain.EmptyTable(domain.OptimalSchema), Missing: true})

	entry, ok := cache.Get(key)
	require.True(t, ok)
	assert.True(t, entry.Missing)
	assert.Equal(t, 1, entry.HitCount)
	assert.True(t, entry.ExpiresAt.IsZero())
	assert.False(t, entry.CachedAt.IsZero())

	stats := cache.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.HitCount)
	assert.Equal(t, int64(1), stats.MissCount)
	assert.InDelta(t, 0.5, stats.HitRatio, 1e-9)
}

func TestMemoryCacheKeysIncludeSheet(t *testing.T) {
	cache := NewMemoryCache(0)
	defer cache.Stop()

	cache.Set(CacheKey{Path: "a.xlsx", Sheet: "One"}, CacheEntry{})
	_, ok := cache.Get(CacheKey{Path: "a.xlsx", Sheet: "Two"})
	assert.False(t, ok)
	_, ok = cache.Get(CacheKey{Path: "a.xlsx", Sheet: "One"})
	assert.True(t, ok)

	assert.Equal(t, "a.xlsx#One", CacheKey{Path: "a.xlsx", Sheet: "One"}.String())
	assert.Equal(t, "a.xlsx", CacheKey{Path: "a.xlsx"}.String())
}

func TestMemoryCacheClear(t *testing.T) {
	cache := NewMemoryCache(0)
	defer cache.Stop()

	cache.Set(CacheKey{Path: "a.xlsx"}, CacheEntry{})
	cache.Set(CacheKey{Path: "b.xlsx"}, CacheEntry{})
	cache.Clear()

	_, ok := cache.Get(CacheKey{Path: "a.xlsx"})
	assert.False(t, ok)
	stats := cache.Stats()
	assert.Equal(t, 0, stats.Entries)
	assert.Equal(t, int64(1), stats.Clears)
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache := NewMemoryCache(time.Hour)
	defer cache.Stop()

	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	key := CacheKey{Path: "a.xlsx"}
	cache.Set(key, CacheEntry{})

	now = now.Add(30 * time.Minute)
	_, ok := cache.Get(key)
	assert.True(t, ok)

	now = now.Add(31 * time.Minute)
	_, ok = cache.Get(key)
	assert.False(t, ok)
	assert.Equal(t, float64(3600), cache.Stats().TTLSeconds)

	cache.Stop()
	cache.Stop()
}

func TestNopCache(t *testing.T) {
	cache := &NopCache{}
	cache.Set(CacheKey{Path: "a.xlsx"}, CacheEntry{})

	_, ok := cache.Get(CacheKey{Path: "a.xlsx"})
	assert.False(t, ok)
	cache.Clear()

	stats := cache.Stats()
	assert.Equal(t, 0, stats.Entries)
	assert.Equal(t, int64(1), stats.MissCount)
	assert.Equal(t, int64(1), stats.Clears)
}
