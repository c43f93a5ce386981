// Package mutation applies field edits to cached entities before the server
// confirms them and reconciles the cache once the write resolves.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bnema/teams-cli/internal/cache"
	"github.com/bnema/teams-cli/internal/domain"
	"github.com/bnema/teams-cli/internal/ports"
	"github.com/google/uuid"
)

// Cache is the part of the resource cache the controller writes through.
type Cache interface {
	Peek(key domain.Key) (domain.Entity, bool)
	SetField(key domain.Key, field, value string, kind cache.EventKind) (domain.Entity, error)
	ReleaseField(key domain.Key, field string)
}

type PendingMutation struct {
	ID            string
	Key           domain.Key
	Field         string
	PreviousValue string
	NewValue      string
	SubmittedAt   time.Time
	State         State

	seq uint64
}

type fieldKey struct {
	key   domain.Key
	field string
}

// chain tracks one field's confirmed value and its outstanding edits in
// submission order. The displayed value is whichever of them is newest.
type chain struct {
	base        string
	baseSeq     uint64
	outstanding []*PendingMutation
}

func (c *chain) display() string {
	value, seq := c.base, c.baseSeq
	for _, m := range c.outstanding {
		if m.seq > seq {
			value, seq = m.NewValue, m.seq
		}
	}
	return value
}

func (c *chain) remove(m *PendingMutation) {
	for i, candidate := range c.outstanding {
		if candidate == m {
			c.outstanding = append(c.outstanding[:i:i], c.outstanding[i+1:]...)
			return
		}
	}
}

type Controller struct {
	cache  Cache
	writer ports.FieldWriter
	clock  ports.Clock
	logger *slog.Logger

	// applyMu orders chain updates with the matching cache writes; mu guards
	// the chains themselves so readers are never blocked behind listeners.
	applyMu sync.Mutex
	mu      sync.Mutex
	seq     uint64
	chains  map[fieldKey]*chain
	writes  sync.WaitGroup
}

type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithClock(clock ports.Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func NewController(cache Cache, writer ports.FieldWriter, opts ...Option) *Controller {
	c := &Controller{
		cache:  cache,
		writer: writer,
		clock:  ports.SystemClock{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		chains: map[fieldKey]*chain{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit applies value to the cached entity immediately and starts the remote
// write in the background. It fails with domain.ErrNotCached, touching
// nothing, when the entity has not been loaded.
func (c *Controller) Submit(ctx context.Context, key domain.Key, field, value string) (*Ticket, error) {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	entity, ok := c.cache.Peek(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotCached, key)
	}
	previous, err := entity.Field(field)
	if err != nil {
		return nil, err
	}
	if _, err := entity.WithField(field, value); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.seq++
	m := &PendingMutation{
		ID:            uuid.NewString(),
		Key:           key,
		Field:         field,
		PreviousValue: previous,
		NewValue:      value,
		SubmittedAt:   c.clock.Now(),
		State:         StateApplied,
		seq:           c.seq,
	}
	fk := fieldKey{key: key, field: field}
	ch, ok := c.chains[fk]
	if !ok {
		ch = &chain{base: previous}
		c.chains[fk] = ch
	}
	ch.outstanding = append(ch.outstanding, m)
	c.mu.Unlock()

	if _, err := c.cache.SetField(key, field, value, cache.EventUpdated); err != nil {
		c.mu.Lock()
		ch.remove(m)
		if len(ch.outstanding) == 0 {
			delete(c.chains, fk)
		}
		c.mu.Unlock()
		return nil, err
	}
	logSubmitted(c.logger, *m)

	// Cancelling ctx ends the caller's wait, not the write. The gateway
	// bounds the write with its request timeout.
	writeCtx := context.WithoutCancel(ctx)
	ticket := newTicket(*m)
	c.writes.Add(1)
	go func() {
		defer c.writes.Done()
		confirmed, err := c.writer.WriteField(writeCtx, key, field, value)
		c.resolve(m, ticket, confirmed, err)
	}()

	return ticket, nil
}

// Mutate submits the edit and waits for the server's answer. A failed write
// has already been rolled back when the error is returned. When ctx ends
// first, the edit stays applied until the write resolves.
func (c *Controller) Mutate(ctx context.Context, key domain.Key, field, value string) error {
	ticket, err := c.Submit(ctx, key, field, value)
	if err != nil {
		return err
	}
	return ticket.Wait(ctx)
}

func (c *Controller) resolve(m *PendingMutation, ticket *Ticket, confirmed string, writeErr error) {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	fk := fieldKey{key: m.Key, field: m.Field}

	c.mu.Lock()
	ch := c.chains[fk]
	before := ch.display()
	ch.remove(m)
	if writeErr == nil {
		value := m.NewValue
		if confirmed != "" {
			value = confirmed
		}
		if m.seq > ch.baseSeq {
			ch.base, ch.baseSeq = value, m.seq
		}
		m.State = StateConfirmed
	} else {
		m.State = StateRolledBack
	}
	after := ch.display()
	settled := len(ch.outstanding) == 0
	if settled {
		delete(c.chains, fk)
	}
	c.mu.Unlock()

	var cacheErr error
	if after != before {
		kind := cache.EventConfirmed
		if writeErr != nil {
			kind = cache.EventRolledBack
		}
		_, cacheErr = c.cache.SetField(m.Key, m.Field, after, kind)
	}
	if settled {
		c.cache.ReleaseField(m.Key, m.Field)
	}

	if writeErr == nil {
		logConfirmed(c.logger, *m)
		ticket.finish(StateConfirmed, confirmed, cacheErr)
		return
	}

	err := asWriteError(m, writeErr)
	logRolledBack(c.logger, *m, err)
	if cacheErr != nil {
		err = errors.Join(err, fmt.Errorf("restore cached %s: %w", m.Field, cacheErr))
	}
	ticket.finish(StateRolledBack, "", err)
}

// Pending returns copies of the outstanding edits of a field, oldest first.
func (c *Controller) Pending(key domain.Key, field string) []PendingMutation {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, ok := c.chains[fieldKey{key: key, field: field}]
	if !ok {
		return nil
	}
	out := make([]PendingMutation, 0, len(ch.outstanding))
	for _, m := range ch.outstanding {
		out = append(out, *m)
	}
	return out
}

func (c *Controller) Outstanding() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, ch := range c.chains {
		total += len(ch.outstanding)
	}
	return total
}

// Wait blocks until every write started by Submit has resolved.
func (c *Controller) Wait() {
	c.writes.Wait()
}

func asWriteError(m *PendingMutation, err error) error {
	var writeErr *domain.RemoteWriteError
	if errors.As(err, &writeErr) {
		copied := *writeErr
		if copied.Field == "" {
			copied.Field = m.Field
		}
		return &copied
	}
	return &domain.RemoteWriteError{Type: m.Key.Type, ID: m.Key.ID, Field: m.Field, Cause: err}
}
