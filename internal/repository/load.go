package repository

import (
	"context"
	"time"

	"fleetflow/internal/domain"
)

// LoadRepository defines the persistence operations for loads.
type LoadRepository interface {
	// Create persists a new load.
	Create(ctx context.Context, load *domain.Load) error

	// GetByID retrieves a load by ID.
	GetByID(ctx context.Context, id string) (*domain.Load, error)

	// GetAll retrieves the most recent loads, at most RecentLoadsLimit.
	GetAll(ctx context.Context) ([]*domain.Load, error)

	// GetByStatus retrieves loads in the given status, oldest first.
	GetByStatus(ctx context.Context, status domain.LoadStatus) ([]*domain.Load, error)

	// GetOfferedToDriver retrieves loads currently offered to a driver.
	GetOfferedToDriver(ctx context.Context, driverID string) ([]*domain.Load, error)

	// GetExpiredOffers retrieves OFFERED loads whose offer lapsed before now.
	GetExpiredOffers(ctx context.Context, now time.Time) ([]*domain.Load, error)

	// UpdateStatus moves a load from one status to another. It returns
	// ErrStaleState when the load is no longer in the expected status.
	UpdateStatus(ctx context.Context, id string, from, to domain.LoadStatus, driverID string, offerExpiresAt time.Time) error

	// CountByStatus returns load counts keyed by status.
	CountByStatus(ctx context.Context) (map[domain.LoadStatus]int, error)

	// CountActiveByEquipment returns counts of loads in an active status
	// keyed by equipment type.
	CountActiveByEquipment(ctx context.Context) (map[domain.EquipmentType]int, error)
}

// RecentLoadsLimit caps GetAll.
const RecentLoadsLimit = 100
