package dashboard

import (
	"sync"
	"time"
)

// RegionCache memoizes rendered region markup per widget write.
type RegionCache interface {
	GetOrRender(widget string, seq uint64, render func() (string, error)) (string, error)
}

// FragmentCache keeps the markup of the latest write of each region. An entry
// is reused only while the region's Seq is unchanged and the TTL has not
// passed.
type FragmentCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cachedRegion
}

type cachedRegion struct {
	seq     uint64
	html    string
	expires time.Time
}

// NewFragmentCache builds a cache with the provided TTL. A non-positive TTL
// disables caching.
func NewFragmentCache(ttl time.Duration) *FragmentCache {
	return &FragmentCache{
		ttl:     ttl,
		entries: make(map[string]cachedRegion),
	}
}

// GetOrRender returns the cached markup for widget at seq or renders and
// stores a new one.
func (c *FragmentCache) GetOrRender(widget string, seq uint64, render func() (string, error)) (string, error) {
	if html, ok := c.get(widget, seq); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.set(widget, seq, html)
	return html, nil
}

func (c *FragmentCache) get(widget string, seq uint64) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.RLock()
	entry, ok := c.entries[widget]
	c.mu.RUnlock()
	if !ok || entry.seq != seq || time.Now().After(entry.expires) {
		return "", false
	}
	return entry.html, true
}

func (c *FragmentCache) set(widget string, seq uint64, html string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// Older writes can finish rendering after newer ones.
	if current, ok := c.entries[widget]; ok && current.seq > seq {
		return
	}
	c.entries[widget] = cachedRegion{
		seq:     seq,
		html:    html,
		expires: time.Now().Add(c.ttl),
	}
}

type noopRegionCache struct{}

func (noopRegionCache) GetOrRender(_ string, _ uint64, render func() (string, error)) (string, error) {
	return render()
}
