package forecast

import (
	"sync"

	"github.com/couchcryptid/crime-forecast-dashboard/internal/domain"
)

// Key identifies a memoized forecast. Category is empty for region totals.
type Key struct {
	Region   string
	Category string
	Horizon  int
}

// resultCache is a thread-safe LRU store for fitted forecasts. Fits are
// deterministic for a given key, so entries never go stale within a process.
type resultCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[Key]*cacheEntry
	head       *cacheEntry // most recently used
	tail       *cacheEntry // least recently used
}

type cacheEntry struct {
	key    Key
	result domain.ForecastResult
	prev   *cacheEntry
	next   *cacheEntry
}

func newResultCache(maxEntries int) *resultCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &resultCache{
		maxEntries: maxEntries,
		entries:    make(map[Key]*cacheEntry, maxEntries),
	}
}

func (c *resultCache) get(key Key) (domain.ForecastResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.ForecastResult{}, false
	}
	c.touch(e)
	return e.result, true
}

// put stores result under key and reports whether an older entry was evicted.
func (c *resultCache) put(key Key, result domain.ForecastResult) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.result = result
		c.touch(e)
		return false
	}

	e := &cacheEntry{key: key, result: result}
	c.entries[key] = e
	c.pushFront(e)

	if len(c.entries) <= c.maxEntries {
		return false
	}
	oldest := c.tail
	c.unlink(oldest)
	delete(c.entries, oldest.key)
	return true
}

func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *resultCache) touch(e *cacheEntry) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.pushFront(e)
}

func (c *resultCache) pushFront(e *cacheEntry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *resultCache) unlink(e *cacheEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev, e.next = nil, nil
}
