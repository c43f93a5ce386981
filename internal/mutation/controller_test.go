package mutation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bnema/teams-cli/internal/cache"
	"github.com/bnema/teams-cli/internal/domain"
	"github.com/bnema/teams-cli/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type writeReply struct {
	confirmed string
	err       error
}

type writeCall struct {
	key   domain.Key
	field string
	value string
	reply chan writeReply
}

// scriptedWriter parks every write until the test answers it.
type scriptedWriter struct {
	arrived chan *writeCall
}

func newScriptedWriter() *scriptedWriter {
	return &scriptedWriter{arrived: make(chan *writeCall, 32)}
}

func (w *scriptedWriter) WriteField(ctx context.Context, key domain.Key, field, value string) (string, error) {
	call := &writeCall{key: key, field: field, value: value, reply: make(chan writeReply, 1)}
	w.arrived <- call
	select {
	case r := <-call.reply:
		return r.confirmed, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// collect waits for n writes and indexes them by the value they carry.
func (w *scriptedWriter) collect(t testing.TB, n int) map[string]*writeCall {
	calls := make(map[string]*writeCall, n)
	for i := 0; i < n; i++ {
		select {
		case call := <-w.arrived:
			calls[call.value] = call
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for write %d of %d", i+1, n)
		}
	}
	return calls
}

type recorder struct {
	mu     sync.Mutex
	events []cache.Event
}

func (r *recorder) record(e cache.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []cache.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]cache.EventKind, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func (r *recorder) usernames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.events))
	for _, e := range r.events {
		names = append(names, e.Entity.(domain.User).Username)
	}
	return names
}

func (r *recorder) count(kind cache.EventKind) int {
	n := 0
	for _, k := range r.kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

type fixture struct {
	cache      *cache.Cache
	writer     *scriptedWriter
	controller *Controller
	events     *recorder
}

func newFixture(t testing.TB) fixture {
	c := cache.New(ports.EntityLoaderFunc(func(_ context.Context, key domain.Key) (domain.Entity, error) {
		return domain.User{ID: key.ID, Username: "oldname", Image: "uploads/old.png"}, nil
	}))
	_, err := c.Fetch(context.Background(), domain.UserKey(7))
	require.NoError(t, err)

	events := &recorder{}
	c.Subscribe(events.record)
	writer := newScriptedWriter()

	return fixture{cache: c, writer: writer, controller: NewController(c, writer), events: events}
}

func (f fixture) username(t testing.TB) string {
	entity, ok := f.cache.Peek(domain.UserKey(7))
	require.True(t, ok)
	return entity.(domain.User).Username
}

func waitDone(t testing.TB, ticket *Ticket) error {
	select {
	case <-ticket.Done():
		return ticket.Err()
	case <-time.After(2 * time.Second):
		t.Fatalf("ticket %s never resolved", ticket.Mutation().ID)
		return nil
	}
}

func TestMutateSuccessKeepsOptimisticValue(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ticket, err := f.controller.Submit(context.Background(), domain.UserKey(7), domain.FieldUsername, "newname")
	require.NoError(t, err)

	assert.Equal(t, "newname", f.username(t))
	assert.Equal(t, StateApplied, ticket.State())
	pending := f.controller.Pending(domain.UserKey(7), domain.FieldUsername)
	require.Len(t, pending, 1)
	assert.Equal(t, "oldname", pending[0].PreviousValue)
	assert.Equal(t, "newname", pending[0].NewValue)
	assert.NotEmpty(t, pending[0].ID)

	calls := f.writer.collect(t, 1)
	calls["newname"].reply <- writeReply{}

	require.NoError(t, waitDone(t, ticket))
	assert.Equal(t, StateConfirmed, ticket.State())
	assert.Equal(t, "newname", f.username(t))
	assert.Equal(t, []cache.EventKind{cache.EventUpdated}, f.events.kinds())
	assert.Equal(t, []string{"newname"}, f.events.usernames())
	assert.Empty(t, f.controller.Pending(domain.UserKey(7), domain.FieldUsername))
	assert.Zero(t, f.controller.Outstanding())
}

func TestMutateFailureRevertsAndReportsWriteError(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ticket, err := f.controller.Submit(context.Background(), domain.UserKey(7), domain.FieldUsername, "newname")
	require.NoError(t, err)

	boom := errors.New("503 service unavailable")
	f.writer.collect(t, 1)["newname"].reply <- writeReply{err: boom}

	err = waitDone(t, ticket)
	var writeErr *domain.RemoteWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, domain.FieldUsername, writeErr.Field)
	assert.Equal(t, domain.EntityID(7), writeErr.ID)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "reverted")

	assert.Equal(t, StateRolledBack, ticket.State())
	assert.Equal(t, "oldname", f.username(t))
	assert.Equal(t, 1, f.events.count(cache.EventRolledBack))
	assert.Zero(t, f.controller.Outstanding())
}

func TestMutateOnUncachedEntityIsNoop(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.controller.Submit(context.Background(), domain.UserKey(99), domain.FieldUsername, "x")
	require.ErrorIs(t, err, domain.ErrNotCached)

	assert.Empty(t, f.events.kinds())
	assert.Zero(t, f.controller.Outstanding())
	select {
	case call := <-f.writer.arrived:
		t.Fatalf("unexpected write %+v", call)
	default:
	}
}

func TestMutateUnknownFieldIsRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.controller.Submit(context.Background(), domain.UserKey(7), "bio", "hello")
	require.ErrorIs(t, err, domain.ErrUnknownField)
	assert.Equal(t, "oldname", f.username(t))
}

func TestOverlappingFirstFailsSecondSucceeds(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	first, err := f.controller.Submit(ctx, domain.UserKey(7), domain.FieldUsername, "first")
	require.NoError(t, err)
	second, err := f.controller.Submit(ctx, domain.UserKey(7), domain.FieldUsername, "second")
	require.NoError(t, err)
	assert.Equal(t, "first", second.Mutation().PreviousValue)

	calls := f.writer.collect(t, 2)
	calls["first"].reply <- writeReply{err: errors.New("conflict")}
	require.Error(t, waitDone(t, first))
	assert.Equal(t, "second", f.username(t))

	calls["second"].reply <- writeReply{}
	require.NoError(t, waitDone(t, second))

	assert.Equal(t, "second", f.username(t))
	assert.Zero(t, f.events.count(cache.EventRolledBack))
	assert.NotContains(t, f.events.usernames(), "oldname")
}

func TestOverlappingSecondConfirmsBeforeFirstFails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	first, err := f.controller.Submit(ctx, domain.UserKey(7), domain.FieldUsername, "first")
	require.NoError(t, err)
	second, err := f.controller.Submit(ctx, domain.UserKey(7), domain.FieldUsername, "second")
	require.NoError(t, err)

	calls := f.writer.collect(t, 2)
	calls["second"].reply <- writeReply{}
	require.NoError(t, waitDone(t, second))
	calls["first"].reply <- writeReply{err: errors.New("late failure")}
	require.Error(t, waitDone(t, first))

	assert.Equal(t, "second", f.username(t))
	assert.Zero(t, f.events.count(cache.EventRolledBack))
}

func TestOverlappingFirstConfirmsSecondFailsRevertsToFirst(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	first, err := f.controller.Submit(ctx, domain.UserKey(7), domain.FieldUsername, "first")
	require.NoError(t, err)
	second, err := f.controller.Submit(ctx, domain.UserKey(7), domain.FieldUsername, "second")
	require.NoError(t, err)

	calls := f.writer.collect(t, 2)
	calls["first"].reply <- writeReply{}
	require.NoError(t, waitDone(t, first))
	assert.Equal(t, "second", f.username(t))

	calls["second"].reply <- writeReply{err: errors.New("rejected")}
	require.Error(t, waitDone(t, second))

	assert.Equal(t, "first", f.username(t))
	assert.Equal(t, 1, f.events.count(cache.EventRolledBack))
}

func TestNewerFailureWhileOlderPendingShowsOlderValue(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	first, err := f.controller.Submit(ctx, domain.UserKey(7), domain.FieldUsername, "first")
	require.NoError(t, err)
	second, err := f.controller.Submit(ctx, domain.UserKey(7), domain.FieldUsername, "second")
	require.NoError(t, err)

	calls := f.writer.collect(t, 2)
	calls["second"].reply <- writeReply{err: errors.New("rejected")}
	require.Error(t, waitDone(t, second))
	assert.Equal(t, "first", f.username(t))

	calls["first"].reply <- writeReply{err: errors.New("rejected")}
	require.Error(t, waitDone(t, first))
	assert.Equal(t, "oldname", f.username(t))
	assert.Equal(t, 2, f.events.count(cache.EventRolledBack))
}

func TestConfirmedCanonicalValueReplacesLocalHandle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ticket, err := f.controller.Submit(context.Background(), domain.UserKey(7), domain.FieldImage, "file:///tmp/me.jpg")
	require.NoError(t, err)

	entity, _ := f.cache.Peek(domain.UserKey(7))
	assert.Equal(t, "file:///tmp/me.jpg", entity.(domain.User).Image)

	f.writer.collect(t, 1)["file:///tmp/me.jpg"].reply <- writeReply{confirmed: "uploads/7.jpg"}
	require.NoError(t, waitDone(t, ticket))

	entity, _ = f.cache.Peek(domain.UserKey(7))
	assert.Equal(t, "uploads/7.jpg", entity.(domain.User).Image)
	assert.Equal(t, "uploads/7.jpg", ticket.Confirmed())
	assert.Equal(t, 1, f.events.count(cache.EventConfirmed))
}

func TestRefetchDuringPendingEditKeepsOptimisticValue(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ticket, err := f.controller.Submit(context.Background(), domain.UserKey(7), domain.FieldUsername, "newname")
	require.NoError(t, err)

	f.cache.Invalidate(domain.UserKey(7))
	refetched, err := f.cache.Fetch(context.Background(), domain.UserKey(7))
	require.NoError(t, err)
	assert.Equal(t, "newname", refetched.(domain.User).Username)

	f.writer.collect(t, 1)["newname"].reply <- writeReply{err: errors.New("down")}
	require.Error(t, waitDone(t, ticket))
	assert.Equal(t, "oldname", f.username(t))
}

func TestMutateWaitsForOutcome(t *testing.T) {
	t.Parallel()

	c := cache.New(ports.EntityLoaderFunc(func(_ context.Context, key domain.Key) (domain.Entity, error) {
		return domain.User{ID: key.ID, Username: "before"}, nil
	}))
	_, err := c.Fetch(context.Background(), domain.UserKey(1))
	require.NoError(t, err)

	writer := ports.FieldWriterFunc(func(_ context.Context, key domain.Key, field, value string) (string, error) {
		return "", fmt.Errorf("write %s.%s=%s: offline", key, field, value)
	})
	controller := NewController(c, writer)

	err = controller.Mutate(context.Background(), domain.UserKey(1), domain.FieldUsername, "after")
	require.Error(t, err)
	controller.Wait()

	entity, _ := c.Peek(domain.UserKey(1))
	assert.Equal(t, "before", entity.(domain.User).Username)
}

func TestCancelledSubmitterDoesNotRollBackWrite(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- f.controller.Mutate(ctx, domain.UserKey(7), domain.FieldUsername, "newname")
	}()
	call := f.writer.collect(t, 1)["newname"]
	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Mutate did not return after cancellation")
	}
	assert.Equal(t, "newname", f.username(t))
	assert.Equal(t, 1, f.controller.Outstanding())

	call.reply <- writeReply{}
	f.controller.Wait()

	assert.Equal(t, "newname", f.username(t))
	assert.Zero(t, f.events.count(cache.EventRolledBack))
	assert.Zero(t, f.controller.Outstanding())
}

func TestStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state State
		want  string
	}{
		{state: StateApplied, want: "applied"},
		{state: StateConfirmed, want: "confirmed"},
		{state: StateRolledBack, want: "rolled_back"},
		{state: State(9), want: "state(9)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
	assert.False(t, StateApplied.Resolved())
	assert.True(t, StateRolledBack.Resolved())
}

// Property: whatever the outcomes and the order in which overlapping writes
// resolve, the settled value is the newest confirmed edit, or the original
// value when every edit failed.
func TestSettledValueIsNewestConfirmedEdit(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(t)
		ctx := context.Background()

		n := rapid.IntRange(1, 6).Draw(rt, "mutations")
		outcomes := make([]bool, n)
		tickets := make([]*Ticket, n)
		values := make([]string, n)
		for i := 0; i < n; i++ {
			values[i] = fmt.Sprintf("name-%d", i)
			outcomes[i] = rapid.Bool().Draw(rt, fmt.Sprintf("succeeds-%d", i))
			ticket, err := f.controller.Submit(ctx, domain.UserKey(7), domain.FieldUsername, values[i])
			if err != nil {
				rt.Fatalf("submit %d: %v", i, err)
			}
			tickets[i] = ticket
		}
		if got := f.username(t); got != values[n-1] {
			rt.Fatalf("optimistic value %q, want %q", got, values[n-1])
		}

		calls := f.writer.collect(t, n)
		order := rapid.Permutation(indexes(n)).Draw(rt, "order")
		for _, i := range order {
			reply := writeReply{}
			if !outcomes[i] {
				reply.err = errors.New("rejected")
			}
			calls[values[i]].reply <- reply
			_ = waitDone(t, tickets[i])
		}

		want := "oldname"
		for i := n - 1; i >= 0; i-- {
			if outcomes[i] {
				want = values[i]
				break
			}
		}
		if got := f.username(t); got != want {
			rt.Fatalf("settled value %q, want %q (outcomes %v, order %v)", got, want, outcomes, order)
		}
		if f.controller.Outstanding() != 0 {
			rt.Fatalf("outstanding mutations remain")
		}
	})
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
