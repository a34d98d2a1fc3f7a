package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"maitred/internal/catalog"
	"maitred/internal/models"
	"maitred/internal/normalize"
	"maitred/internal/ordering"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder(id string) models.ConfirmedOrder {
	return models.ConfirmedOrder{
		ID:        id,
		SessionID: "session-1",
		Lines: []models.OrderLine{
			{Item: "pizza", Quantity: 2, UnitPrice: 1000, Subtotal: 2000},
			{Item: "soda", Quantity: 1, UnitPrice: 200, Subtotal: 200},
		},
		Total:       2200,
		ConfirmedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFileStore_Append(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "orders", "orders.csv")
	jsonPath := filepath.Join(dir, "orders", "orders.jsonl")
	s := NewFileStore(csvPath, jsonPath, nil)

	require.NoError(t, s.Append(context.Background(), testOrder("a")))
	require.NoError(t, s.Append(context.Background(), testOrder("b")))

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "pizza,2,20.00\nsoda,1,2.00\npizza,2,20.00\nsoda,1,2.00\n", string(data))

	records, err := ReadRecords(jsonPath)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "b", records[1].ID)
	assert.Equal(t, "session-1", records[0].SessionID)
	assert.Equal(t, map[string]int{"pizza": 2, "soda": 1}, records[0].Items)
	assert.InDelta(t, 22.0, records[0].Total, 0.001)
	assert.True(t, records[0].ConfirmedAt.Equal(testOrder("a").ConfirmedAt))
}

func TestFileStore_DisabledPaths(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "orders.jsonl")
	s := NewFileStore("", jsonPath, nil)

	require.NoError(t, s.Append(context.Background(), testOrder("a")))
	_, err := os.Stat(filepath.Join(dir, "orders.csv"))
	assert.True(t, os.IsNotExist(err))

	records, err := ReadRecords(jsonPath)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestFileStore_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s := NewFileStore(filepath.Join(blocker, "orders.csv"), "", nil)
	err := s.Append(context.Background(), testOrder("a"))

	var perr *models.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Sink, "orders.csv")
}

func TestFileStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewFileStore(filepath.Join(t.TempDir(), "orders.csv"), "", nil)
	err := s.Append(ctx, testOrder("a"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileStore_RetryWritesMissingFileOnly(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "orders.csv")
	blocker := filepath.Join(dir, "logs")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	jsonPath := filepath.Join(blocker, "orders.jsonl")
	s := NewFileStore(csvPath, jsonPath, nil)

	require.Error(t, s.Append(context.Background(), testOrder("a")))
	require.NoError(t, os.Remove(blocker))
	require.NoError(t, s.Append(context.Background(), testOrder("a")))
	require.NoError(t, s.Append(context.Background(), testOrder("a")))

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "pizza,2,20.00\nsoda,1,2.00\n", string(data))

	records, err := ReadRecords(jsonPath)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestFileStore_ForgetsOldestIDs(t *testing.T) {
	s := NewFileStore("", filepath.Join(t.TempDir(), "orders.jsonl"), nil)
	for i := 0; i <= maxTracked; i++ {
		s.mark(fmt.Sprintf("order-%d", i), wroteJSON)
	}
	s.mark("", wroteJSON)

	assert.Len(t, s.marks, maxTracked)
	assert.Len(t, s.markOrder, maxTracked)
	_, ok := s.marks["order-0"]
	assert.False(t, ok)
}

func newSQLStore(t *testing.T) *SQLStore {
	s, err := OpenSQL("sqlite3", ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLStore_AppendAndFind(t *testing.T) {
	s := newSQLStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, testOrder("a")))

	got, err := s.Find(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, "session-1", got.SessionID)
	assert.Equal(t, models.Cents(2200), got.Total)
	assert.ElementsMatch(t, testOrder("a").Lines, got.Lines)
	assert.WithinDuration(t, testOrder("a").ConfirmedAt, got.ConfirmedAt, time.Second)
}

func TestSQLStore_Recent(t *testing.T) {
	s := newSQLStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Append(ctx, testOrder(id)))
	}

	orders, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "c", orders[0].ID)
	assert.Equal(t, "b", orders[1].ID)
	assert.Len(t, orders[0].Lines, 2)
}

func TestSQLStore_AppendIsIdempotent(t *testing.T) {
	s := newSQLStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, testOrder("a")))
	require.NoError(t, s.Append(ctx, testOrder("a")))

	orders, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Len(t, orders[0].Lines, 2)
}

func TestSQLStore_FindMissing(t *testing.T) {
	s := newSQLStore(t)

	_, err := s.Find(context.Background(), "missing")
	var nf *models.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestOpenSQL_UnsupportedDriver(t *testing.T) {
	_, err := OpenSQL("mysql", "", nil)
	assert.Error(t, err)
}

// failingStore fails its first failures appends, or every append when failures is negative
type failingStore struct {
	calls    int
	failures int
}

func (f *failingStore) Append(ctx context.Context, order models.ConfirmedOrder) error {
	f.calls++
	if f.failures < 0 || f.calls <= f.failures {
		return &models.PersistenceError{Sink: "broken", Err: errors.New("disk full")}
	}
	return nil
}

func TestMulti_ContinuesAfterFailure(t *testing.T) {
	broken := &failingStore{failures: -1}
	jsonPath := filepath.Join(t.TempDir(), "orders.jsonl")
	m := Multi{broken, NewFileStore("", jsonPath, nil)}

	err := m.Append(context.Background(), testOrder("a"))

	var perr *models.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "broken", perr.Sink)
	assert.Equal(t, 1, broken.calls)

	records, err := ReadRecords(jsonPath)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestMulti_AllSucceed(t *testing.T) {
	dir := t.TempDir()
	m := Multi{
		NewFileStore(filepath.Join(dir, "orders.csv"), "", nil),
		newSQLStore(t),
	}
	assert.NoError(t, m.Append(context.Background(), testOrder("a")))
}

func TestMulti_RetriedConfirmationWritesOneRecord(t *testing.T) {
	cat := catalog.New([]models.MenuItem{
		{Name: "pizza", Category: "pizzas", ServingSize: "mediana", Price: 1000},
	}, normalize.New(normalize.DefaultRules), nil)
	jsonPath := filepath.Join(t.TempDir(), "orders.jsonl")
	flaky := &failingStore{failures: 1}
	f := ordering.NewFinalizer(Multi{NewFileStore("", jsonPath, nil), flaky}, nil, nil)

	l := ordering.NewLedger(cat, nil)
	l.Add("pizza", 2)

	_, err := f.ConfirmOrder(context.Background(), "s1", l)
	require.Error(t, err)
	order, err := f.ConfirmOrder(context.Background(), "s1", l)
	require.NoError(t, err)
	assert.Equal(t, 2, flaky.calls)

	records, err := ReadRecords(jsonPath)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, order.ID, records[0].ID)
	assert.Equal(t, map[string]int{"pizza": 2}, records[0].Items)
}
