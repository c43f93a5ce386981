// Package cache is the per-entity remote-fetch-then-cache layer shared by
// every view. Entries are keyed by entity type and id and are never evicted.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/bnema/teams-cli/internal/domain"
	"github.com/bnema/teams-cli/internal/notify"
	"github.com/bnema/teams-cli/internal/ports"
	"golang.org/x/sync/singleflight"
)

type EventKind string

const (
	EventFetched     EventKind = "fetched"
	EventFailed      EventKind = "failed"
	EventInvalidated EventKind = "invalidated"
	EventUpdated     EventKind = "updated"
	EventRolledBack  EventKind = "rolled_back"
	EventConfirmed   EventKind = "confirmed"
)

type Event struct {
	Key    domain.Key
	Kind   EventKind
	Entity domain.Entity
	Field  string
	Err    error
}

// Entry is a point-in-time copy of a cache entry.
type Entry struct {
	Key    domain.Key
	Data   domain.Entity
	Status domain.CacheStatus
	Err    error
}

type entry struct {
	data       domain.Entity
	status     domain.CacheStatus
	err        error
	generation uint64
	// pins hold field values with an unconfirmed optimistic edit. A fetch that
	// completes while a pin exists keeps the pinned value.
	pins map[string]string
}

type Cache struct {
	loader ports.EntityLoader
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[domain.EntityType]map[domain.EntityID]*entry
	flights singleflight.Group
	events  *notify.Hub[Event]
}

type Option func(*Cache)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(loader ports.EntityLoader, opts ...Option) *Cache {
	c := &Cache{
		loader:  loader,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		entries: map[domain.EntityType]map[domain.EntityID]*entry{},
		events:  notify.NewHub[Event](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the cached entity when it is fresh and otherwise loads it.
// Concurrent callers for the same key share one in-flight load. The load is
// not cancelled when ctx is: ctx bounds only this caller's wait.
func (c *Cache) Fetch(ctx context.Context, key domain.Key) (domain.Entity, error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	if e.status == domain.StatusFresh {
		data := e.data
		c.mu.Unlock()
		logHit(c.logger, key)
		return data, nil
	}
	if e.status.NeedsFetch() {
		e.status = domain.StatusPending
		e.err = nil
	}
	c.mu.Unlock()

	loadCtx := context.WithoutCancel(ctx)
	results := c.flights.DoChan(key.String(), func() (any, error) {
		return c.load(loadCtx, key)
	})

	select {
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(domain.Entity), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) load(ctx context.Context, key domain.Key) (domain.Entity, error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	if e.status == domain.StatusFresh {
		// A previous flight finished between the caller's check and this one.
		data := e.data
		c.mu.Unlock()
		return data, nil
	}
	e.status = domain.StatusPending
	generation := e.generation
	c.mu.Unlock()

	logFetchStarted(c.logger, key)
	data, err := c.loader.Load(ctx, key)
	if err == nil && data == nil {
		err = errors.New("loader returned no data")
	}
	if err == nil && data.Key() != key {
		err = fmt.Errorf("loader returned %s", data.Key())
	}

	c.mu.Lock()
	e = c.entryLocked(key)
	current := e.generation == generation
	if err != nil {
		fetchErr := asFetchError(key, err)
		if current {
			e.status = domain.StatusFailed
			e.err = fetchErr
		} else if e.status == domain.StatusPending {
			e.status = domain.StatusStale
		}
		previous := e.data
		c.mu.Unlock()

		logFetchFailed(c.logger, key, fetchErr)
		c.events.Publish(Event{Key: key, Kind: EventFailed, Entity: previous, Err: fetchErr})
		return nil, fetchErr
	}
	data = applyPins(data, e.pins)
	if !current {
		// Invalidated while in flight: hand the result to the waiting callers
		// but leave the entry stale so the next fetch asks again.
		if e.status == domain.StatusPending {
			e.status = domain.StatusStale
		}
		c.mu.Unlock()
		return data, nil
	}
	e.data = data
	e.status = domain.StatusFresh
	e.err = nil
	c.mu.Unlock()

	c.events.Publish(Event{Key: key, Kind: EventFetched, Entity: data})
	return data, nil
}

// Invalidate marks the entry stale without dropping its data, so readers of
// the old value are not disturbed and the next Fetch goes to the network.
func (c *Cache) Invalidate(key domain.Key) {
	c.mu.Lock()
	e, ok := c.lookupLocked(key)
	if !ok {
		c.mu.Unlock()
		return
	}
	e.generation++
	e.status = domain.StatusStale
	data := e.data
	c.mu.Unlock()

	logInvalidated(c.logger, key)
	c.events.Publish(Event{Key: key, Kind: EventInvalidated, Entity: data})
}

func (c *Cache) InvalidateType(entityType domain.EntityType) {
	c.mu.RLock()
	keys := make([]domain.Key, 0, len(c.entries[entityType]))
	for id := range c.entries[entityType] {
		keys = append(keys, domain.Key{Type: entityType, ID: id})
	}
	c.mu.RUnlock()

	for _, key := range keys {
		c.Invalidate(key)
	}
}

// Peek reads the cached entity without fetching. Stale and errored entries
// still return their last known data.
func (c *Cache) Peek(key domain.Key) (domain.Entity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.lookupLocked(key)
	if !ok || e.data == nil {
		return nil, false
	}
	return e.data, true
}

func (c *Cache) Entry(key domain.Key) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.lookupLocked(key)
	if !ok {
		return Entry{}, false
	}
	return Entry{Key: key, Data: e.data, Status: e.status, Err: e.err}, true
}

// Put stores data as fresh, for callers that already hold an authoritative
// copy (the user returned by login).
func (c *Cache) Put(data domain.Entity) {
	key := data.Key()

	c.mu.Lock()
	e := c.entryLocked(key)
	data = applyPins(data, e.pins)
	e.data = data
	e.status = domain.StatusFresh
	e.err = nil
	e.generation++
	c.mu.Unlock()

	c.events.Publish(Event{Key: key, Kind: EventFetched, Entity: data})
}

// SetField overwrites one field of a cached entity and pins it until
// ReleaseField. The entry status is left as it is.
func (c *Cache) SetField(key domain.Key, field, value string, kind EventKind) (domain.Entity, error) {
	c.mu.Lock()
	e, ok := c.lookupLocked(key)
	if !ok || e.data == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", domain.ErrNotCached, key)
	}
	updated, err := e.data.WithField(field, value)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	e.data = updated
	if e.pins == nil {
		e.pins = map[string]string{}
	}
	e.pins[field] = value
	c.mu.Unlock()

	c.events.Publish(Event{Key: key, Kind: kind, Entity: updated, Field: field})
	return updated, nil
}

func (c *Cache) ReleaseField(key domain.Key, field string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.lookupLocked(key); ok {
		delete(e.pins, field)
	}
}

func (c *Cache) Subscribe(listener func(Event)) func() {
	return c.events.Subscribe(listener)
}

func (c *Cache) entryLocked(key domain.Key) *entry {
	byID, ok := c.entries[key.Type]
	if !ok {
		byID = map[domain.EntityID]*entry{}
		c.entries[key.Type] = byID
	}
	e, ok := byID[key.ID]
	if !ok {
		e = &entry{status: domain.StatusStale}
		byID[key.ID] = e
	}
	return e
}

func (c *Cache) lookupLocked(key domain.Key) (*entry, bool) {
	e, ok := c.entries[key.Type][key.ID]
	return e, ok
}

func applyPins(data domain.Entity, pins map[string]string) domain.Entity {
	for field, value := range pins {
		updated, err := data.WithField(field, value)
		if err != nil {
			continue
		}
		data = updated
	}
	return data
}

func asFetchError(key domain.Key, err error) error {
	var fetchErr *domain.RemoteFetchError
	if errors.As(err, &fetchErr) {
		return err
	}
	return &domain.RemoteFetchError{Type: key.Type, ID: key.ID, Cause: err}
}
