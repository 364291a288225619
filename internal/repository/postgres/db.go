package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"fleetflow/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier               = (*sql.DB)(nil)
	_ Querier               = (*sql.Tx)(nil)
	_ repository.Transactor = (*TxManager)(nil)
)

//go:embed schema.sql
var schema string

// ApplySchema creates tables, indexes and sequences if they do not exist.
func ApplySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// TxManager runs work inside a database transaction with
// transaction-scoped load and driver repositories.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx begins a transaction, calls fn and commits if fn returns nil.
func (m *TxManager) WithinTx(ctx context.Context, fn func(loads repository.LoadRepository, drivers repository.DriverRepository) error) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(NewLoadRepositoryWithTx(tx), NewDriverRepositoryWithTx(tx)); err != nil {
		return err
	}

	return tx.Commit()
}
