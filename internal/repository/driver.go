package repository

import (
	"context"

	"fleetflow/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create adds a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetByPhone retrieves a driver by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.Driver, error)

	// GetAll retrieves all drivers.
	GetAll(ctx context.Context) ([]*domain.Driver, error)

	// GetByStatus retrieves drivers with the given status.
	GetByStatus(ctx context.Context, status domain.DriverStatus) ([]*domain.Driver, error)

	// UpdateStatus updates the status and current load of a driver.
	UpdateStatus(ctx context.Context, id string, status domain.DriverStatus, currentLoadID string) error

	// CountByStatus returns driver counts keyed by status.
	CountByStatus(ctx context.Context) (map[domain.DriverStatus]int, error)

	// MaxPreferredDistance returns the largest max-distance preference among
	// drivers with the given status and equipment, or 0 when there are none.
	MaxPreferredDistance(ctx context.Context, status domain.DriverStatus, equipment domain.EquipmentType) (float64, error)
}
