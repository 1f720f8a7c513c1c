package files

import (
	"sync"
	"time"

	"fteapp/pkg/contracts/domain"
)

// CacheKey identifies a cached load. Sheet is empty for single-sheet files.
type CacheKey struct {
	Path  string `json:"path"`
	Sheet string `json:"sheet,omitempty"`
}

func (k CacheKey) String() string {
	if k.Sheet == "" {
		return k.Path
	}
	return k.Path + "#" + k.Sheet
}

// CacheEntry is a successful load result. Missing is set when the file did
// not exist at load time.
type CacheEntry struct {
	Table     domain.Table `json:"-"`
	Missing   bool         `json:"missing"`
	CachedAt  time.Time    `json:"cached_at"`
	ExpiresAt time.Time    `json:"expires_at,omitempty"`
	HitCount  int          `json:"hit_count"`
}

// CacheStats summarizes cache usage
type CacheStats struct {
	Entries    int     `json:"entries"`
	HitCount   int64   `json:"hit_count"`
	MissCount  int64   `json:"miss_count"`
	HitRatio   float64 `json:"hit_ratio"`
	Clears     int64   `json:"clears"`
	TTLSeconds float64 `json:"ttl_seconds"`
}

// Cache is the read-through store used by Loader. Implementations must be
// safe for concurrent use. Invalidation is clear-all only.
type Cache interface {
	Get(key CacheKey) (CacheEntry, bool)
	Set(key CacheKey, entry CacheEntry)
	Clear()
	Stats() CacheStats
}

// MemoryCache keeps entries in process memory until cleared or, when a TTL
// is configured, until they expire.
type MemoryCache struct {
	entries   map[CacheKey]CacheEntry
	mutex     sync.RWMutex
	ttl       time.Duration
	hitCount  int64
	missCount int64
	clears    int64
	now       func() time.Time
	stopChan  chan struct{}
	stopOnce  sync.Once
}

// NewMemoryCache creates a cache. A zero ttl keeps entries until Clear.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	cache := &MemoryCache{
		entries:  make(map[CacheKey]CacheEntry),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	if ttl > 0 {
		go cache.cleanup(cleanupInterval(ttl))
	}

	return cache
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl < 5*time.Minute {
		return ttl
	}
	return 5 * time.Minute
}

// Get retrieves an entry. Expired entries count as misses.
func (c *MemoryCache) Get(key CacheKey) (CacheEntry, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	if !exists || c.expired(entry) {
		c.missCount++
		return CacheEntry{}, false
	}

	entry.HitCount++
	c.entries[key] = entry
	c.hitCount++

	return entry, true
}

// Set stores an entry, stamping CachedAt and ExpiresAt
func (c *MemoryCache) Set(key CacheKey, entry CacheEntry) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	entry.CachedAt = now
	entry.ExpiresAt = time.Time{}
	if c.ttl > 0 {
		entry.ExpiresAt = now.Add(c.ttl)
	}
	entry.HitCount = 0
	c.entries[key] = entry
}

// Clear drops every entry
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[CacheKey]CacheEntry)
	c.clears++
}

// Stats returns cache statistics
func (c *MemoryCache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	total := c.hitCount + c.missCount
	ratio := float64(0)
	if total > 0 {
		ratio = float64(c.hitCount) / float64(total)
	}

	return CacheStats{
		Entries:    len(c.entries),
		HitCount:   c.hitCount,
		MissCount:  c.missCount,
		HitRatio:   ratio,
		Clears:     c.clears,
		TTLSeconds: c.ttl.Seconds(),
	}
}

// Stop ends the expiry goroutine. Safe to call more than once.
func (c *MemoryCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

func (c *MemoryCache) expired(entry CacheEntry) bool {
	return !entry.ExpiresAt.IsZero() && c.now().After(entry.ExpiresAt)
}

func (c *MemoryCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mutex.Lock()
			for key, entry := range c.entries {
				if c.expired(entry) {
					delete(c.entries, key)
				}
			}
			c.mutex.Unlock()
		case <-c.stopChan:
			return
		}
	}
}

// NopCache never stores anything. Every load reads the file.
type NopCache struct {
	mutex     sync.Mutex
	missCount int64
	clears    int64
}

func (c *NopCache) Get(CacheKey) (CacheEntry, bool) {
	c.mutex.Lock()
	c.missCount++
	c.mutex.Unlock()
	return CacheEntry{}, false
}

func (c *NopCache) Set(CacheKey, CacheEntry) {}

func (c *NopCache) Clear() {
	c.mutex.Lock()
	c.clears++
	c.mutex.Unlock()
}

func (c *NopCache) Stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return CacheStats{MissCount: c.missCount, Clears: c.clears}
}
