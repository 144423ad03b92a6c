package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/internal/repository/memory"
	"fashion-recommender-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func newTestManager() (*Manager, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	m := NewManager(memory.NewSessionRepository(), logger.NewNopLogger(), WithClock(clock.Now))
	return m, clock
}

func TestGetCreatesDefaultSession(t *testing.T) {
	m, clock := newTestManager()

	s := m.Get("chat-1")

	assert.Equal(t, "chat-1", s.ID)
	assert.Nil(t, s.CustomerID)
	assert.Nil(t, s.BaseProduct)
	assert.Empty(t, s.ShownProducts)
	assert.Empty(t, s.ActiveFilters)
	assert.Equal(t, clock.Now(), s.LastActive)
	assert.Equal(t, store.StateIdle, s.State())
	assert.Equal(t, 1, m.Count())
}

func TestGetIsIdempotent(t *testing.T) {
	m, clock := newTestManager()

	first := m.Get("chat-1")
	first.CustomerName = "not committed"
	clock.Advance(time.Minute)
	second := m.Get("chat-1")

	assert.Equal(t, "", second.CustomerName, "changes without Save must not leak into the registry")
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, clock.Now(), second.LastActive, "Get touches last activity")
	assert.Equal(t, 1, m.Count())
}

func TestSaveAndReset(t *testing.T) {
	m, _ := newTestManager()

	s := m.Get("chat-1")
	id := int64(42)
	s.CustomerID = &id
	s.CustomerName = "Ana Perez"
	s.ReplaceShown([]store.Product{{ID: 1}, {ID: 2}})
	s.ActiveFilters = store.FilterSet{"basecolour": {"Blue"}}
	m.Save(s)

	saved := m.Get("chat-1")
	require.NotNil(t, saved.CustomerID)
	assert.Equal(t, int64(42), *saved.CustomerID)
	assert.Len(t, saved.ShownProducts, 2)
	assert.Equal(t, store.StateIdentified, saved.State())

	reset := m.Reset("chat-1")
	canonical := store.NewSession("chat-1", reset.LastActive)
	assert.Equal(t, canonical, reset)
	assert.Equal(t, canonical, m.Get("chat-1"))
}

func TestSweepRemovesIdleSessions(t *testing.T) {
	m, clock := newTestManager()
	ttl := time.Hour

	m.Get("old")
	clock.Advance(45 * time.Minute)
	m.Get("recent")
	clock.Advance(30 * time.Minute)

	removed := m.Sweep(ttl)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, 0, m.Sweep(ttl))
}

func TestSweepSkipsLockedSession(t *testing.T) {
	m, clock := newTestManager()

	m.Get("busy")
	clock.Advance(2 * time.Hour)

	unlock, err := m.Lock(context.Background(), "busy")
	require.NoError(t, err)
	assert.Equal(t, 0, m.Sweep(time.Hour))
	unlock()

	assert.Equal(t, 1, m.Sweep(time.Hour))
	assert.Equal(t, 0, m.Count())
}

func TestLockSerializesPerSession(t *testing.T) {
	m, _ := newTestManager()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := m.Lock(context.Background(), "chat-1")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, m.locks, "lock entries are released once nobody holds them")
}

func TestLockGivesUpWhenContextEnds(t *testing.T) {
	m, _ := newTestManager()

	unlock, err := m.Lock(context.Background(), "chat-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	waiter, err := m.Lock(ctx, "chat-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, waiter)

	unlock()
	assert.Empty(t, m.locks, "an abandoned wait leaves no lock entry behind")

	again, err := m.Lock(context.Background(), "chat-1")
	require.NoError(t, err)
	again()
}

func TestLockHandsOverToWaiter(t *testing.T) {
	m, _ := newTestManager()

	unlock, err := m.Lock(context.Background(), "chat-1")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		next, err := m.Lock(context.Background(), "chat-1")
		if assert.NoError(t, err) {
			close(acquired)
			next()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second turn entered while the first held the session")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired the session")
	}
}

func TestStartSweeperPurgesUntilCancelled(t *testing.T) {
	m, clock := newTestManager()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.Get("idle")
	clock.Advance(2 * time.Hour)
	m.StartSweeper(ctx, 5*time.Millisecond, time.Hour)

	require.Eventually(t, func() bool { return m.Count() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	// Give a pending tick time to drain before checking the sweeper is gone.
	time.Sleep(20 * time.Millisecond)
	m.Get("late")
	clock.Advance(2 * time.Hour)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, m.Count(), "a stopped sweeper leaves sessions alone")
}
