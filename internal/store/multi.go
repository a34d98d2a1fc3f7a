package store

import (
	"context"
	"errors"

	"maitred/internal/models"
	"maitred/internal/ordering"
)

// Multi appends every order to each of its stores in turn
type Multi []ordering.Store

// Append writes to all stores and joins their errors. A failing store does
// not stop the remaining ones.
func (m Multi) Append(ctx context.Context, order models.ConfirmedOrder) error {
	var errs []error
	for _, s := range m {
		if err := s.Append(ctx, order); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
