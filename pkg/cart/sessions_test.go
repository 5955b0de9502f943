package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestSessions(t *testing.T, opts SessionsOptions) *Sessions {
	t.Helper()
	s := NewSessions(opts, zaptest.NewLogger(t))
	t.Cleanup(s.Close)
	return s
}

func TestSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := newTestSessions(t, SessionsOptions{})

	_, err := s.Add(ctx, "alice", product("A", "12.99"))
	require.NoError(t, err)
	_, err = s.Add(ctx, "bob", product("B", "3.00"))
	require.NoError(t, err)
	state, err := s.Add(ctx, "alice", product("A", "12.99"))
	require.NoError(t, err)
	assert.Equal(t, 2, state.ItemCount)

	bob, err := s.Snapshot(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, lineIDs(bob))
}

func TestSessionsOperations(t *testing.T) {
	ctx := context.Background()
	s := newTestSessions(t, SessionsOptions{})

	_, err := s.Add(ctx, "sid", product("A", "2.50"))
	require.NoError(t, err)
	_, err = s.Add(ctx, "sid", product("B", "4.00"))
	require.NoError(t, err)

	state, err := s.UpdateQuantity(ctx, "sid", "A", 3)
	require.NoError(t, err)
	assert.Equal(t, 4, state.ItemCount)
	assert.Equal(t, "11.50", state.Total.StringFixed(2))

	state, err = s.Remove(ctx, "sid", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, lineIDs(state))

	state, err = s.Clear(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, state.Empty())
}

func TestSnapshotUnknownSessionIsEmpty(t *testing.T) {
	s := newTestSessions(t, SessionsOptions{})
	state, err := s.Snapshot(context.Background(), "nobody")
	require.NoError(t, err)
	assert.True(t, state.Empty())
	assert.True(t, state.Total.IsZero())
}

func TestEndDiscardsCart(t *testing.T) {
	ctx := context.Background()
	s := newTestSessions(t, SessionsOptions{})

	_, err := s.Add(ctx, "sid", product("A", "1.00"))
	require.NoError(t, err)
	require.NoError(t, s.End(ctx, "sid"))

	state, err := s.Snapshot(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, state.Empty())
}

func TestIdleSessionsExpire(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestSessions(t, SessionsOptions{
		TTL:           time.Hour,
		SweepInterval: 5 * time.Millisecond,
		Now:           clock.Now,
	})

	_, err := s.Add(ctx, "stale", product("A", "1.00"))
	require.NoError(t, err)
	clock.Advance(50 * time.Minute)
	_, err = s.Add(ctx, "fresh", product("B", "1.00"))
	require.NoError(t, err)
	clock.Advance(20 * time.Minute)

	require.Eventually(t, func() bool {
		n, err := s.Active(ctx)
		return err == nil && n == 1
	}, time.Second, 5*time.Millisecond)

	stale, err := s.Snapshot(ctx, "stale")
	require.NoError(t, err)
	assert.True(t, stale.Empty())

	fresh, err := s.Snapshot(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, lineIDs(fresh))
}

func TestSessionsCanceledContext(t *testing.T) {
	s := newTestSessions(t, SessionsOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Snapshot(ctx, "sid")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSessionsAfterClose(t *testing.T) {
	s := NewSessions(SessionsOptions{}, zaptest.NewLogger(t))
	s.Close()

	_, err := s.Snapshot(context.Background(), "sid")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDeductKeepsItemsAddedAfterCheckout(t *testing.T) {
	ctx := context.Background()
	s := newTestSessions(t, SessionsOptions{})

	_, err := s.Add(ctx, "sid", product("A", "2.00"))
	require.NoError(t, err)
	placed, err := s.Snapshot(ctx, "sid")
	require.NoError(t, err)

	_, err = s.Add(ctx, "sid", product("B", "4.00"))
	require.NoError(t, err)

	state, err := s.Deduct(ctx, "sid", placed.Lines)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, lineIDs(state))
	assert.Equal(t, 1, state.ItemCount)
}

func TestNoopsDoNotOpenSessions(t *testing.T) {
	ctx := context.Background()
	s := newTestSessions(t, SessionsOptions{})

	state, err := s.Remove(ctx, "a", "X")
	require.NoError(t, err)
	assert.True(t, state.Empty())
	_, err = s.UpdateQuantity(ctx, "b", "X", 3)
	require.NoError(t, err)
	_, err = s.Clear(ctx, "c")
	require.NoError(t, err)
	_, err = s.Deduct(ctx, "d", []Line{{Item: product("X", "1.00"), Quantity: 1}})
	require.NoError(t, err)

	n, err := s.Active(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.Add(ctx, "a", product("X", "1.00"))
	require.NoError(t, err)
	n, err = s.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEndIsNotLoggedAsUpdate(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewSessions(SessionsOptions{}, zap.New(core))
	t.Cleanup(s.Close)

	_, err := s.Add(ctx, "sid", product("A", "1.00"))
	require.NoError(t, err)
	require.NoError(t, s.End(ctx, "sid"))

	updates := logs.FilterMessage("cart updated").AllUntimed()
	require.Len(t, updates, 1)
	assert.Equal(t, "add", updates[0].ContextMap()["action"])
	assert.Equal(t, 1, logs.FilterMessage("session ended").Len())
}
