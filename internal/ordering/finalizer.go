package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maitred/internal/models"
	"maitred/internal/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrEmptyOrder is returned when confirming a ledger with no lines
var ErrEmptyOrder = errors.New("order is empty")

// Store persists confirmed orders. Append must never overwrite earlier records,
// and appending an order whose ID was already accepted must not add another record:
// a failed confirmation is retried with the same ID.
type Store interface {
	Append(ctx context.Context, order models.ConfirmedOrder) error
}

// Finalizer turns a session's ledger into a persisted order
type Finalizer struct {
	store   Store
	metrics *monitoring.Metrics
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// NewFinalizer creates a finalizer writing to store
func NewFinalizer(store Store, metrics *monitoring.Metrics, logger *zap.Logger) *Finalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Finalizer{
		store:   store,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// ConfirmOrder persists the ledger and clears it. The ledger is cleared only
// after the store accepts the order, so a failed write can be retried; the
// retry keeps the order ID and timestamp as long as the ledger is unchanged.
func (f *Finalizer) ConfirmOrder(ctx context.Context, sessionID string, l *Ledger) (models.ConfirmedOrder, error) {
	if l.Len() == 0 {
		return models.ConfirmedOrder{}, ErrEmptyOrder
	}

	if l.pendingID == "" {
		l.pendingID = f.newID()
		l.pendingAt = f.now().UTC()
	}
	order := models.ConfirmedOrder{
		ID:          l.pendingID,
		SessionID:   sessionID,
		Lines:       l.Priced(),
		Total:       l.Total(),
		ConfirmedAt: l.pendingAt,
	}

	if err := f.persist(ctx, order); err != nil {
		f.metrics.RecordPersistFailure()
		f.logger.Error("Failed to persist confirmed order",
			zap.String("session", sessionID),
			zap.String("order", order.ID),
			zap.Error(err))
		return models.ConfirmedOrder{}, err
	}

	l.Clear()
	f.metrics.RecordOrderConfirmed(order.Total)
	f.logger.Info("Order confirmed",
		zap.String("session", sessionID),
		zap.String("order", order.ID),
		zap.Int("lines", len(order.Lines)),
		zap.String("total", order.Total.String()))
	return order, nil
}

// Confirm confirms the order and returns the message for the customer
func (f *Finalizer) Confirm(ctx context.Context, sessionID string, l *Ledger) string {
	order, err := f.ConfirmOrder(ctx, sessionID, l)
	switch {
	case errors.Is(err, ErrEmptyOrder):
		return MsgNothingToConfirm
	case err != nil:
		return MsgConfirmFailed
	}
	return ConfirmedMessage(order)
}

// ConfirmedMessage renders the customer confirmation for a persisted order
func ConfirmedMessage(order models.ConfirmedOrder) string {
	return fmt.Sprintf(MsgOrderConfirmed, order.Total.Dollars())
}

func (f *Finalizer) persist(ctx context.Context, order models.ConfirmedOrder) error {
	if f.store == nil {
		return &models.PersistenceError{Sink: "none", Err: errors.New("no order store configured")}
	}
	if err := f.store.Append(ctx, order); err != nil {
		var perr *models.PersistenceError
		if errors.As(err, &perr) {
			return err
		}
		return &models.PersistenceError{Sink: "store", Err: err}
	}
	return nil
}
