// Package cache provides the observable collection of edit transactions that
// backs every list view.
package cache

import (
	"context"
	"fmt"
	"slices"

	"exposure-platform/pkg/logging"
	"exposure-platform/pkg/metrics"
)

// EventType identifies a cache notification.
type EventType int

const (
	EntryAdded EventType = iota
	EntryUpdated
	EntryDeleted
)

func (t EventType) String() string {
	switch t {
	case EntryAdded:
		return "added"
	case EntryUpdated:
		return "updated"
	case EntryDeleted:
		return "deleted"
	}
	return fmt.Sprintf("event(%d)", int(t))
}

// Event is delivered to subscribers after a mutation.
type Event[E any] struct {
	Type  EventType
	Entry E
}

// Entry is implemented by cached values. Identity is by ==, which for pointer
// entries means by reference.
type Entry interface {
	comparable
	IsValid() bool
}

// Cache is an ordered collection of entries with synchronous notifications.
// Handlers run inside the mutating call. A handler that mutates the cache has
// its mutation queued and applied after the current dispatch completes.
//
// Cache is not safe for concurrent use; callers serialise access.
type Cache[E Entry] struct {
	name    string
	entries []E

	subscribers map[int]func(Event[E])
	order       []int
	nextID      int

	dispatching bool
	pending     []func()

	logger  *logging.ContextLogger
	metrics *metrics.Collector
}

// New creates an empty cache. name labels its logs and metrics. A nil logger
// discards output; a nil collector records nothing.
func New[E Entry](name string, logger *logging.StructuredLogger, collector *metrics.Collector) *Cache[E] {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Cache[E]{
		name:        name,
		subscribers: make(map[int]func(Event[E])),
		logger:      logger.WithComponent("cache").WithFields(logging.Fields{"cache": name}),
		metrics:     collector,
	}
}

// Name returns the cache label.
func (c *Cache[E]) Name() string { return c.name }

// Subscribe registers fn for every subsequent event. The returned function
// unregisters it; it is safe to call from inside a handler.
func (c *Cache[E]) Subscribe(fn func(Event[E])) (unsubscribe func()) {
	id := c.nextID
	c.nextID++
	c.subscribers[id] = fn
	c.order = append(c.order, id)
	return func() {
		if _, ok := c.subscribers[id]; !ok {
			return
		}
		delete(c.subscribers, id)
		if i := slices.Index(c.order, id); i >= 0 {
			c.order = slices.Delete(c.order, i, i+1)
		}
	}
}

// Subscribers returns the number of registered handlers.
func (c *Cache[E]) Subscribers() int { return len(c.subscribers) }

// run executes op now, or queues it while handlers are being dispatched.
func (c *Cache[E]) run(op func()) {
	if c.dispatching {
		c.pending = append(c.pending, op)
		return
	}
	op()
	for len(c.pending) > 0 {
		next := c.pending[0]
		c.pending = c.pending[1:]
		next()
	}
}

func (c *Cache[E]) emit(t EventType, entry E) {
	c.metrics.RecordCacheEvent(c.name, t.String(), len(c.entries))
	if len(c.order) == 0 {
		return
	}
	c.dispatching = true
	completed := false
	defer func() {
		c.dispatching = false
		if !completed {
			// a handler panicked; mutations it queued are discarded with the
			// dispatch instead of running on the next unrelated call
			c.pending = nil
		}
	}()

	ev := Event[E]{Type: t, Entry: entry}
	for _, id := range slices.Clone(c.order) {
		if fn, ok := c.subscribers[id]; ok {
			fn(ev)
		}
	}
	completed = true
}

// Add inserts entries without notifying subscribers. It is meant for the
// initial load of a view.
func (c *Cache[E]) Add(entries ...E) {
	c.run(func() {
		c.entries = append(c.entries, entries...)
		c.metrics.SetCacheSize(c.name, len(c.entries))
		c.logger.Debug(context.Background(), "[CACHE_LOADED] Entries added without notification", logging.Fields{
			"count": len(entries),
			"size":  len(c.entries),
		})
	})
}

// AddEntry appends entry and emits EntryAdded. An entry that is already
// present is inserted again; the duplicate is logged, not rejected.
func (c *Cache[E]) AddEntry(entry E) {
	c.run(func() { c.addEntry(entry) })
}

func (c *Cache[E]) addEntry(entry E) {
	if slices.Contains(c.entries, entry) {
		c.logger.Warn(context.Background(), "[CACHE_DUPLICATE_ENTRY] Entry already present, inserting again", logging.Fields{
			"size": len(c.entries),
		})
		c.metrics.RecordCacheWarning(c.name, "duplicate_entry")
	}
	c.entries = append(c.entries, entry)
	c.emit(EntryAdded, entry)
}

// UpdateEntry emits EntryUpdated for a present entry. An entry that is not
// present is added as by AddEntry.
func (c *Cache[E]) UpdateEntry(entry E) {
	c.run(func() {
		if !slices.Contains(c.entries, entry) {
			c.addEntry(entry)
			return
		}
		c.emit(EntryUpdated, entry)
	})
}

// DeleteEntry removes entry and emits EntryDeleted. Deleting an entry that is
// not present is logged and still emits the event.
func (c *Cache[E]) DeleteEntry(entry E) {
	c.run(func() { c.deleteEntry(entry) })
}

func (c *Cache[E]) deleteEntry(entry E) {
	if i := slices.Index(c.entries, entry); i >= 0 {
		c.entries = slices.Delete(c.entries, i, i+1)
	} else {
		c.logger.Warn(context.Background(), "[CACHE_DELETE_MISSING] Entry not present, emitting delete anyway", logging.Fields{
			"size": len(c.entries),
		})
		c.metrics.RecordCacheWarning(c.name, "delete_missing")
	}
	c.emit(EntryDeleted, entry)
}

// Clear removes every entry. Without subscribers the collection is truncated
// silently. With subscribers entries are deleted front to back and each one
// emits EntryDeleted.
func (c *Cache[E]) Clear() {
	c.run(func() {
		if len(c.order) == 0 {
			c.entries = nil
			c.metrics.SetCacheSize(c.name, 0)
			return
		}
		for len(c.entries) > 0 {
			c.deleteEntry(c.entries[0])
		}
	})
}

// IsValid reports whether every entry is valid.
func (c *Cache[E]) IsValid() bool {
	for _, e := range c.entries {
		if !e.IsValid() {
			return false
		}
	}
	return true
}

// Entries returns a copy of the entries in insertion order.
func (c *Cache[E]) Entries() []E { return slices.Clone(c.entries) }

// Len returns the number of entries.
func (c *Cache[E]) Len() int { return len(c.entries) }

// Contains reports whether entry is present.
func (c *Cache[E]) Contains(entry E) bool { return slices.Contains(c.entries, entry) }

// Find returns the first entry matching pred.
func (c *Cache[E]) Find(pred func(E) bool) (E, bool) {
	for _, e := range c.entries {
		if pred(e) {
			return e, true
		}
	}
	var zero E
	return zero, false
}
