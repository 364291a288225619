package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

const driverColumns = `id, COALESCE(name, ''), COALESCE(phone, ''), status, equipment_type,
	max_distance_miles, min_rate_per_mile, auto_accept, current_load_id, hours_remaining`

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

// Create adds a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (id, name, phone, status, equipment_type, max_distance_miles, min_rate_per_mile, auto_accept, hours_remaining)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.q.ExecContext(ctx, query,
		driver.ID,
		driver.Name,
		driver.Phone,
		driver.Status,
		driver.EquipmentType,
		driver.Preferences.MaxDistanceMiles,
		driver.Preferences.MinRatePerMile,
		driver.Preferences.AutoAccept,
		driver.HoursRemaining,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	return scanDriver(r.q.QueryRowContext(ctx, query, id))
}

// GetByPhone retrieves a driver by phone number.
func (r *DriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE phone = $1`
	return scanDriver(r.q.QueryRowContext(ctx, query, phone))
}

// GetAll retrieves all drivers.
func (r *DriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers ORDER BY id`
	return r.queryDrivers(ctx, query)
}

// GetByStatus retrieves drivers with the given status.
func (r *DriverRepository) GetByStatus(ctx context.Context, status domain.DriverStatus) ([]*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE status = $1 ORDER BY id`
	return r.queryDrivers(ctx, query, status)
}

// UpdateStatus updates the status and current load of a driver.
func (r *DriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus, currentLoadID string) error {
	query := `UPDATE drivers SET status = $1, current_load_id = $2 WHERE id = $3`

	var loadID sql.NullString
	if currentLoadID != "" {
		loadID = sql.NullString{String: currentLoadID, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query, status, loadID, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// CountByStatus returns driver counts keyed by status.
func (r *DriverRepository) CountByStatus(ctx context.Context) (map[domain.DriverStatus]int, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT status, COUNT(*) FROM drivers GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.DriverStatus]int)
	for rows.Next() {
		var status domain.DriverStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// MaxPreferredDistance returns the widest max-distance preference among
// matching drivers.
func (r *DriverRepository) MaxPreferredDistance(ctx context.Context, status domain.DriverStatus, equipment domain.EquipmentType) (float64, error) {
	query := `SELECT COALESCE(MAX(max_distance_miles), 0) FROM drivers WHERE status = $1 AND equipment_type = $2`
	var widest float64
	if err := r.q.QueryRowContext(ctx, query, status, equipment).Scan(&widest); err != nil {
		return 0, err
	}
	return widest, nil
}

func (r *DriverRepository) queryDrivers(ctx context.Context, query string, args ...any) ([]*domain.Driver, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		driver, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}
	return drivers, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDriver(row rowScanner) (*domain.Driver, error) {
	var driver domain.Driver
	var currentLoadID sql.NullString

	err := row.Scan(
		&driver.ID,
		&driver.Name,
		&driver.Phone,
		&driver.Status,
		&driver.EquipmentType,
		&driver.Preferences.MaxDistanceMiles,
		&driver.Preferences.MinRatePerMile,
		&driver.Preferences.AutoAccept,
		&currentLoadID,
		&driver.HoursRemaining,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if currentLoadID.Valid {
		driver.CurrentLoadID = currentLoadID.String
	}

	return &driver, nil
}
