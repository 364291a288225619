package repository

import "context"

// Transactor runs fn atomically with transaction-scoped repositories.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(loads LoadRepository, drivers DriverRepository) error) error
}
