package mutation

import (
	"context"
	"sync"
)

// Ticket follows one submitted edit until the server answers.
type Ticket struct {
	mutation PendingMutation
	done     chan struct{}

	mu        sync.Mutex
	state     State
	confirmed string
	err       error
}

func newTicket(m PendingMutation) *Ticket {
	return &Ticket{mutation: m, done: make(chan struct{}), state: StateApplied}
}

func (t *Ticket) Mutation() PendingMutation {
	return t.mutation
}

func (t *Ticket) Done() <-chan struct{} {
	return t.done
}

func (t *Ticket) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Confirmed is the canonical value returned by the server, if any.
func (t *Ticket) Confirmed() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.confirmed
}

func (t *Ticket) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Ticket) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Ticket) finish(state State, confirmed string, err error) {
	t.mu.Lock()
	t.state = state
	t.confirmed = confirmed
	t.err = err
	t.mu.Unlock()
	close(t.done)
}
