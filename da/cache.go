package da

import (
	"strings"
	"sync"
	"time"

	"github.com/slpgo/slpd/filter"
	"github.com/slpgo/slpd/slp"
)

// Result is the before/after state of a single cache mutation, as handed
// to callers and the source of the (removed, added) events a listener
// observes (§4.1).
type Result struct {
	Previous *slp.ServiceInfo // nil if there was none
	Current  *slp.ServiceInfo // nil on remove
}

// ServiceInfoCache is the DA's authoritative in-memory registry: a
// thread-safe keyed store with matching, purge, update and change
// notification (§4.1). Mutations are totally ordered under a single
// writer lock; match() observes a consistent snapshot (§5).
type ServiceInfoCache struct {
	mu      sync.RWMutex
	entries map[slp.ServiceKey]slp.ServiceInfo
	order   []slp.ServiceKey // insertion order of currently-live keys

	listeners *listenerSet
}

func NewServiceInfoCache() *ServiceInfoCache {
	return &ServiceInfoCache{
		entries:   make(map[slp.ServiceKey]slp.ServiceInfo),
		listeners: newListenerSet(),
	}
}

// AddServiceListener registers listener and returns a token for later
// removal with RemoveServiceListener.
func (c *ServiceInfoCache) AddServiceListener(listener ServiceListener) *ListenerSub {
	return c.listeners.add(listener)
}

func (c *ServiceInfoCache) RemoveServiceListener(sub *ListenerSub) {
	c.listeners.remove(sub)
}

// Put inserts or fully replaces the entry with the same ServiceKey. A
// replacement fires serviceRemoved(previous) then serviceAdded(current),
// both before Put returns (§4.1, §5).
func (c *ServiceInfoCache) Put(service slp.ServiceInfo) (Result, error) {
	if service.Scopes.IsEmpty() {
		return Result{}, slp.NewError(slp.InvalidRegistration, "service has no scopes: "+service.URL.String())
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	previous, existed := c.entries[service.Key]
	c.entries[service.Key] = service
	if !existed {
		c.order = append(c.order, service.Key)
	}

	if existed {
		c.listeners.fireRemoved(previous)
	}
	c.listeners.fireAdded(service)

	result := Result{Current: &service}
	if existed {
		result.Previous = &previous
	}
	return result, nil
}

// Remove deletes the entry for key. A miss is not an error: Result.Previous
// is nil and no event fires.
func (c *ServiceInfoCache) Remove(key slp.ServiceKey) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous, existed := c.entries[key]
	if !existed {
		return Result{}
	}
	delete(c.entries, key)
	c.order = removeKey(c.order, key)
	c.listeners.fireRemoved(previous)
	return Result{Previous: &previous}
}

// AddAttributes merges attrs into the existing entry's Attributes.
func (c *ServiceInfoCache) AddAttributes(key slp.ServiceKey, attrs slp.Attributes) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous, existed := c.entries[key]
	if !existed {
		return Result{}, slp.NewError(slp.InvalidUpdate, "no such registration: "+key.String())
	}
	current := previous.WithAttributes(previous.Attributes.Merge(attrs))
	c.entries[key] = current
	c.listeners.fireUpdated(previous, current)
	return Result{Previous: &previous, Current: &current}, nil
}

// RemoveAttributes unmerges attrs (tags or specific values) from the
// existing entry's Attributes.
func (c *ServiceInfoCache) RemoveAttributes(key slp.ServiceKey, attrs slp.Attributes) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous, existed := c.entries[key]
	if !existed {
		return Result{}, slp.NewError(slp.InvalidUpdate, "no such registration: "+key.String())
	}
	current := previous.WithAttributes(previous.Attributes.Unmerge(attrs))
	c.entries[key] = current
	c.listeners.fireUpdated(previous, current)
	return Result{Previous: &previous, Current: &current}, nil
}

// Match returns every live entry satisfying the conjunction of the
// supplied predicates, in insertion order. A zero-value serviceType, empty
// language, empty scopes or nil f matches anything in that dimension
// (§4.1).
func (c *ServiceInfoCache) Match(serviceType slp.ServiceType, language string, scopes slp.Scopes, f filter.Filter) []slp.ServiceInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []slp.ServiceInfo
	for _, key := range c.order {
		info, ok := c.entries[key]
		if !ok {
			continue
		}
		if !serviceType.IsZero() && !serviceType.Equals(info.Type) {
			continue
		}
		if language != "" && !strings.EqualFold(language, info.Language) {
			continue
		}
		if !scopes.IsEmpty() && !info.Scopes.Match(scopes) {
			continue
		}
		if f != nil && !f.Match(info.Attributes) {
			continue
		}
		out = append(out, info)
	}
	return out
}

// Purge removes every entry whose lifetime has elapsed as of now, firing
// serviceRemoved for each, and returns them.
func (c *ServiceInfoCache) Purge(now time.Time) []slp.ServiceInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed []slp.ServiceInfo
	survivors := c.order[:0:0]
	for _, key := range c.order {
		info := c.entries[key]
		if info.Expired(now) {
			delete(c.entries, key)
			removed = append(removed, info)
			continue
		}
		survivors = append(survivors, key)
	}
	c.order = survivors

	for _, info := range removed {
		c.listeners.fireRemoved(info)
	}
	return removed
}

// Len reports the number of live entries.
func (c *ServiceInfoCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

func removeKey(order []slp.ServiceKey, key slp.ServiceKey) []slp.ServiceKey {
	for i, k := range order {
		if k == key {
			return append(order[:i:i], order[i+1:]...)
		}
	}
	return order
}

