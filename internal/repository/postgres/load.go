package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

const loadColumns = `id, shipper_id, origin_lat, origin_lng, origin_address,
	destination_lat, destination_lng, destination_address, pickup_time, delivery_time,
	weight, equipment_type, rate, distance_miles, status, assigned_driver_id,
	offer_expires_at, urgency, created_at`

// LoadRepository is a PostgreSQL implementation of repository.LoadRepository.
type LoadRepository struct {
	q Querier
}

// NewLoadRepository creates a new PostgreSQL load repository.
func NewLoadRepository(db *sql.DB) *LoadRepository {
	return &LoadRepository{q: db}
}

// NewLoadRepositoryWithTx creates a load repository using a transaction.
func NewLoadRepositoryWithTx(tx *sql.Tx) *LoadRepository {
	return &LoadRepository{q: tx}
}

// Create persists a new load.
func (r *LoadRepository) Create(ctx context.Context, load *domain.Load) error {
	query := `
		INSERT INTO loads (id, shipper_id, origin_lat, origin_lng, origin_address, destination_lat, destination_lng, destination_address,
			pickup_time, delivery_time, weight, equipment_type, rate, distance_miles, status, assigned_driver_id, offer_expires_at, urgency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	// Default urgency to medium if not set
	urgency := load.Urgency
	if urgency == "" {
		urgency = domain.UrgencyMedium
	}

	_, err := r.q.ExecContext(ctx, query,
		load.ID,
		load.ShipperID,
		load.Origin.Lat,
		load.Origin.Lng,
		load.Origin.Address,
		load.Destination.Lat,
		load.Destination.Lng,
		load.Destination.Address,
		load.PickupTime,
		nullTime(load.DeliveryTime),
		load.Weight,
		load.EquipmentType,
		load.Rate,
		load.DistanceMiles,
		load.Status,
		nullString(load.AssignedDriverID),
		nullTime(load.OfferExpiresAt),
		urgency,
		load.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a load by ID.
func (r *LoadRepository) GetByID(ctx context.Context, id string) (*domain.Load, error) {
	query := `SELECT ` + loadColumns + ` FROM loads WHERE id = $1`
	return scanLoad(r.q.QueryRowContext(ctx, query, id))
}

// GetAll retrieves the most recent loads.
func (r *LoadRepository) GetAll(ctx context.Context) ([]*domain.Load, error) {
	query := `SELECT ` + loadColumns + ` FROM loads ORDER BY created_at DESC LIMIT $1`
	return r.queryLoads(ctx, query, repository.RecentLoadsLimit)
}

// GetByStatus retrieves loads in the given status, oldest first.
func (r *LoadRepository) GetByStatus(ctx context.Context, status domain.LoadStatus) ([]*domain.Load, error) {
	query := `SELECT ` + loadColumns + ` FROM loads WHERE status = $1 ORDER BY created_at ASC`
	return r.queryLoads(ctx, query, status)
}

// GetOfferedToDriver retrieves loads currently offered to a driver.
func (r *LoadRepository) GetOfferedToDriver(ctx context.Context, driverID string) ([]*domain.Load, error) {
	query := `SELECT ` + loadColumns + ` FROM loads WHERE status = $1 AND assigned_driver_id = $2 ORDER BY created_at ASC`
	return r.queryLoads(ctx, query, domain.LoadStatusOffered, driverID)
}

// GetExpiredOffers retrieves OFFERED loads whose offer lapsed before now.
func (r *LoadRepository) GetExpiredOffers(ctx context.Context, now time.Time) ([]*domain.Load, error) {
	query := `SELECT ` + loadColumns + ` FROM loads WHERE status = $1 AND offer_expires_at < $2 ORDER BY offer_expires_at ASC`
	return r.queryLoads(ctx, query, domain.LoadStatusOffered, now)
}

// UpdateStatus moves a load from one status to another.
// driverID and offerExpiresAt are stored as given; empty values clear them.
func (r *LoadRepository) UpdateStatus(ctx context.Context, id string, from, to domain.LoadStatus, driverID string, offerExpiresAt time.Time) error {
	query := `
		UPDATE loads
		SET status = $1, assigned_driver_id = $2, offer_expires_at = $3
		WHERE id = $4 AND status = $5
	`

	result, err := r.q.ExecContext(ctx, query, to, nullString(driverID), nullTime(offerExpiresAt), id, from)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		// Distinguish a missing load from a concurrent state change.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return repository.ErrStaleState
	}

	return nil
}

// CountByStatus returns load counts keyed by status.
func (r *LoadRepository) CountByStatus(ctx context.Context) (map[domain.LoadStatus]int, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT status, COUNT(*) FROM loads GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.LoadStatus]int)
	for rows.Next() {
		var status domain.LoadStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// CountActiveByEquipment returns counts of active loads keyed by equipment type.
func (r *LoadRepository) CountActiveByEquipment(ctx context.Context) (map[domain.EquipmentType]int, error) {
	statuses := make([]string, len(domain.ActiveLoadStatuses))
	for i, s := range domain.ActiveLoadStatuses {
		statuses[i] = string(s)
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT equipment_type, COUNT(*)
		FROM loads
		WHERE status = ANY($1)
		GROUP BY equipment_type
	`, pq.Array(statuses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.EquipmentType]int)
	for rows.Next() {
		var equipment domain.EquipmentType
		var n int
		if err := rows.Scan(&equipment, &n); err != nil {
			return nil, err
		}
		counts[equipment] = n
	}
	return counts, rows.Err()
}

func (r *LoadRepository) queryLoads(ctx context.Context, query string, args ...any) ([]*domain.Load, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loads []*domain.Load
	for rows.Next() {
		load, err := scanLoad(rows)
		if err != nil {
			return nil, err
		}
		loads = append(loads, load)
	}
	return loads, rows.Err()
}

func scanLoad(row rowScanner) (*domain.Load, error) {
	var load domain.Load
	var assignedDriverID sql.NullString
	var deliveryTime, offerExpiresAt sql.NullTime

	err := row.Scan(
		&load.ID,
		&load.ShipperID,
		&load.Origin.Lat,
		&load.Origin.Lng,
		&load.Origin.Address,
		&load.Destination.Lat,
		&load.Destination.Lng,
		&load.Destination.Address,
		&load.PickupTime,
		&deliveryTime,
		&load.Weight,
		&load.EquipmentType,
		&load.Rate,
		&load.DistanceMiles,
		&load.Status,
		&assignedDriverID,
		&offerExpiresAt,
		&load.Urgency,
		&load.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if assignedDriverID.Valid {
		load.AssignedDriverID = assignedDriverID.String
	}
	if deliveryTime.Valid {
		load.DeliveryTime = deliveryTime.Time
	}
	if offerExpiresAt.Valid {
		load.OfferExpiresAt = offerExpiresAt.Time
	}

	return &load, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
