package repository

import (
	"context"
	"time"

	"fleetflow/internal/domain"
)

// ShipperAccountRepository defines the persistence operations for shipper accounts.
// Accounts are never deleted.
type ShipperAccountRepository interface {
	// NextGoWithFlowSequence returns the next value of the account sequence.
	NextGoWithFlowSequence(ctx context.Context) (int64, error)

	// Create persists a new account without its shipment history.
	Create(ctx context.Context, account *domain.ShipperAccount) error

	// GetByID retrieves an account and its shipment history.
	GetByID(ctx context.Context, id string) (*domain.ShipperAccount, error)

	// GetByEmail retrieves an account by normalized email.
	GetByEmail(ctx context.Context, email string) (*domain.ShipperAccount, error)

	// GetByGoWithFlowID retrieves an account by its public GWF identifier.
	GetByGoWithFlowID(ctx context.Context, gwfID string) (*domain.ShipperAccount, error)

	// UpdateContact overwrites the contact fields and last activity time.
	UpdateContact(ctx context.Context, account *domain.ShipperAccount) error

	// AddShipment appends a shipment and adds its quoted rate to total spent.
	AddShipment(ctx context.Context, shipment *domain.ShipmentRequest, at time.Time) error
}
