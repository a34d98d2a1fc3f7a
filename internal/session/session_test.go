package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"maitred/internal/catalog"
	"maitred/internal/models"
	"maitred/internal/monitoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]models.MenuItem{
		{Name: "pizza", Category: "principales", ServingSize: "1 unidad", Price: 1000},
	}, nil, nil)
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

func TestNew_StartsWithGreeting(t *testing.T) {
	s := New("abc", testCatalog(), nil)

	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, models.RoleAssistant, history[0].Role)
	assert.Equal(t, Greeting, history[0].Content)
	assert.Equal(t, 0, s.Ledger().Len())
}

func TestSession_AppendIsAppendOnly(t *testing.T) {
	s := New("abc", testCatalog(), nil)
	s.Lock()
	s.Append(models.RoleUser, "hola")
	snapshot := s.History()
	s.Append(models.RoleAssistant, "¿qué deseas?")
	s.Unlock()

	assert.Len(t, snapshot, 2)
	assert.Len(t, s.History(), 3)
	assert.Equal(t, "hola", s.History()[1].Content)
}

func TestSession_LedgerIsPerSession(t *testing.T) {
	cat := testCatalog()
	a := New("a", cat, nil)
	b := New("b", cat, nil)

	a.Ledger().Add("pizza", 2)
	assert.Equal(t, 2, a.Ledger().Quantity("pizza"))
	assert.Equal(t, 0, b.Ledger().Len())
}

func TestManager_Lifecycle(t *testing.T) {
	metrics := monitoring.NewMetrics()
	m := NewManager(testCatalog(), metrics, nil)

	s := m.Create()
	require.NotEmpty(t, s.ID)
	assert.Equal(t, 1, m.Len())
	active, _ := metrics.Monitor().Value("active_sessions")
	assert.Equal(t, 1, active)

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	assert.True(t, m.Delete(s.ID))
	assert.False(t, m.Delete(s.ID))
	_, ok = m.Get(s.ID)
	assert.False(t, ok)
	active, _ = metrics.Monitor().Value("active_sessions")
	assert.Equal(t, 0, active)
}

func TestManager_Sweep(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(testCatalog(), nil, nil)
	m.now = clock.Now

	stale := m.Create()
	clock.Advance(20 * time.Minute)
	fresh := m.Create()

	clock.Advance(15 * time.Minute)
	assert.Equal(t, 1, m.Sweep(30*time.Minute))

	_, ok := m.Get(stale.ID)
	assert.False(t, ok)
	_, ok = m.Get(fresh.ID)
	assert.True(t, ok)
}

func TestManager_SweepSkipsBusySession(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(testCatalog(), nil, nil)
	m.now = clock.Now

	s := m.Create()
	clock.Advance(time.Hour)

	s.Lock()
	assert.Equal(t, 0, m.Sweep(time.Minute))
	s.Unlock()
	assert.Equal(t, 1, m.Sweep(time.Minute))
}

func TestManager_RunSweeperStops(t *testing.T) {
	m := NewManager(testCatalog(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.RunSweeper(ctx, time.Millisecond, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestManager_ConcurrentCreate(t *testing.T) {
	m := NewManager(testCatalog(), nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := m.Create()
			s.Lock()
			s.Ledger().Add("pizza", 1)
			s.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, m.Len())
}
