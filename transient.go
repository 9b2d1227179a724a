package intake

import (
	"container/list"
	"sync"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

// DefaultTransientCapacity bounds how many sessions keep their submission
// status between calls.
const DefaultTransientCapacity = 4096

// transient is the part of a session that is never written to the store.
type transient struct {
	submission      domain.SubmissionState
	recommendations []domain.Candidate
}

type transientEntry struct {
	key   string
	value transient
}

// transientCache is a least-recently-used map of session key to transient state.
type transientCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

func newTransientCache(capacity int) *transientCache {
	if capacity <= 0 {
		capacity = DefaultTransientCapacity
	}
	return &transientCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

func (c *transientCache) get(key string) (transient, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return transient{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*transientEntry).value, true
}

// put stores v, or forgets key when v carries nothing worth keeping.
func (c *transientCache) put(key string, v transient) {
	if v.submission.Status == "" || v.submission.Status == domain.SubmissionIdle {
		if v.recommendations == nil {
			c.remove(key)
			return
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		el.Value.(*transientEntry).value = v
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&transientEntry{key: key, value: v})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*transientEntry).key)
	}
}

func (c *transientCache) remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}
}

func (c *transientCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
