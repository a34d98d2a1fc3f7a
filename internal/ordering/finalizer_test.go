package ordering

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"maitred/internal/models"
	"maitred/internal/monitoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore is a mock implementation of the Store interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Append(ctx context.Context, order models.ConfirmedOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func newTestFinalizer(store Store) *Finalizer {
	f := NewFinalizer(store, monitoring.NewMetrics(), nil)
	f.now = func() time.Time { return time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC) }
	f.newID = func() string { return "order-1" }
	return f
}

func TestConfirm_EmptyLedger(t *testing.T) {
	store := new(MockStore)
	f := newTestFinalizer(store)

	msg := f.Confirm(context.Background(), "s1", NewLedger(testCatalog(), nil))

	assert.Equal(t, MsgNothingToConfirm, msg)
	store.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestConfirm_PersistsAndClears(t *testing.T) {
	store := new(MockStore)
	store.On("Append", mock.Anything, mock.Anything).Return(nil).Once()
	f := newTestFinalizer(store)

	l := NewLedger(testCatalog(), nil)
	l.Add("pizza", 2)
	l.Add("soda", 1)

	msg := f.Confirm(context.Background(), "s1", l)

	assert.Equal(t, "¡Gracias por tu pedido! Ha sido confirmado y guardado. El total es $22.00", msg)
	assert.Equal(t, MsgEmptyOrder, l.Summary())
	store.AssertNumberOfCalls(t, "Append", 1)

	order := store.Calls[0].Arguments.Get(1).(models.ConfirmedOrder)
	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, "s1", order.SessionID)
	assert.Equal(t, models.Cents(2200), order.Total)
	assert.Equal(t, map[string]int{"pizza": 2, "soda": 1}, order.Items())
	assert.Equal(t, time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC), order.ConfirmedAt)

	confirmed, _ := f.metrics.Monitor().Value("orders_confirmed")
	assert.Equal(t, 1, confirmed)
}

func TestConfirm_StoreFailureKeepsLedger(t *testing.T) {
	store := new(MockStore)
	store.On("Append", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	store.On("Append", mock.Anything, mock.Anything).Return(nil).Once()
	f := newTestFinalizer(store)

	l := NewLedger(testCatalog(), nil)
	l.Add("pizza", 1)

	_, err := f.ConfirmOrder(context.Background(), "s1", l)
	var perr *models.PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, []Line{{Item: "pizza", Quantity: 1}}, l.Lines())

	// Retrying succeeds once the store recovers
	msg := f.Confirm(context.Background(), "s1", l)
	assert.Equal(t, "¡Gracias por tu pedido! Ha sido confirmado y guardado. El total es $10.00", msg)
	assert.Equal(t, 0, l.Len())

	failures, _ := f.metrics.Monitor().Value("order_persist_failures")
	assert.Equal(t, 1, failures)
}

func TestConfirm_FailureMessage(t *testing.T) {
	store := new(MockStore)
	store.On("Append", mock.Anything, mock.Anything).Return(errors.New("boom"))
	f := newTestFinalizer(store)

	l := NewLedger(testCatalog(), nil)
	l.Add("soda", 2)

	assert.Equal(t, MsgConfirmFailed, f.Confirm(context.Background(), "s1", l))
	assert.Equal(t, 1, l.Len())
}

func TestConfirm_NoStore(t *testing.T) {
	f := newTestFinalizer(nil)
	l := NewLedger(testCatalog(), nil)
	l.Add("soda", 1)

	_, err := f.ConfirmOrder(context.Background(), "s1", l)
	var perr *models.PersistenceError
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, 1, l.Len())
}

func TestConfirmOrder_RetryKeepsOrderID(t *testing.T) {
	store := new(MockStore)
	store.On("Append", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	store.On("Append", mock.Anything, mock.Anything).Return(nil).Once()
	f := newTestFinalizer(store)
	ids := 0
	f.newID = func() string {
		ids++
		return fmt.Sprintf("order-%d", ids)
	}
	clock := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	f.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	l := NewLedger(testCatalog(), nil)
	l.Add("pizza", 1)

	_, err := f.ConfirmOrder(context.Background(), "s1", l)
	require.Error(t, err)
	order, err := f.ConfirmOrder(context.Background(), "s1", l)
	require.NoError(t, err)

	first := store.Calls[0].Arguments.Get(1).(models.ConfirmedOrder)
	assert.Equal(t, "order-1", first.ID)
	assert.Equal(t, first.ID, order.ID)
	assert.Equal(t, first.ConfirmedAt, order.ConfirmedAt)

	l.Add("soda", 1)
	store.On("Append", mock.Anything, mock.Anything).Return(nil).Once()
	next, err := f.ConfirmOrder(context.Background(), "s1", l)
	require.NoError(t, err)
	assert.Equal(t, "order-2", next.ID)
}

func TestConfirmOrder_ChangedLedgerGetsNewID(t *testing.T) {
	store := new(MockStore)
	store.On("Append", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	store.On("Append", mock.Anything, mock.Anything).Return(nil).Once()
	f := newTestFinalizer(store)
	ids := 0
	f.newID = func() string {
		ids++
		return fmt.Sprintf("order-%d", ids)
	}

	l := NewLedger(testCatalog(), nil)
	l.Add("pizza", 1)
	_, err := f.ConfirmOrder(context.Background(), "s1", l)
	require.Error(t, err)

	l.SetQuantity("pizza", 2)
	order, err := f.ConfirmOrder(context.Background(), "s1", l)
	require.NoError(t, err)
	assert.Equal(t, "order-2", order.ID)
	assert.Equal(t, 2, order.Items()["pizza"])
}
