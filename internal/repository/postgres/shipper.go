package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

const accountColumns = `id, gwf_id, company_name, contact_name, email, phone, total_spent, created_at, last_activity_at`

// ShipperAccountRepository is a PostgreSQL implementation of repository.ShipperAccountRepository.
type ShipperAccountRepository struct {
	db *sql.DB
}

// NewShipperAccountRepository creates a new PostgreSQL shipper account repository.
func NewShipperAccountRepository(db *sql.DB) *ShipperAccountRepository {
	return &ShipperAccountRepository{db: db}
}

// NextGoWithFlowSequence returns the next value of the account sequence.
func (r *ShipperAccountRepository) NextGoWithFlowSequence(ctx context.Context) (int64, error) {
	var seq int64
	err := r.db.QueryRowContext(ctx, `SELECT nextval('gwf_account_seq')`).Scan(&seq)
	return seq, err
}

// Create persists a new account without its shipment history.
func (r *ShipperAccountRepository) Create(ctx context.Context, account *domain.ShipperAccount) error {
	query := `
		INSERT INTO shipper_accounts (id, gwf_id, company_name, contact_name, email, phone, total_spent, created_at, last_activity_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.GoWithFlowID,
		account.CompanyName,
		account.ContactName,
		account.Email,
		account.Phone,
		account.TotalSpent,
		account.CreatedAt,
		account.LastActivityAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves an account and its shipment history.
func (r *ShipperAccountRepository) GetByID(ctx context.Context, id string) (*domain.ShipperAccount, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM shipper_accounts WHERE id = $1`, id)
}

// GetByEmail retrieves an account by normalized email.
func (r *ShipperAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.ShipperAccount, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM shipper_accounts WHERE LOWER(email) = LOWER($1)`, email)
}

// GetByGoWithFlowID retrieves an account by its public GWF identifier.
func (r *ShipperAccountRepository) GetByGoWithFlowID(ctx context.Context, gwfID string) (*domain.ShipperAccount, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM shipper_accounts WHERE gwf_id = $1`, gwfID)
}

// UpdateContact overwrites the contact fields and last activity time.
func (r *ShipperAccountRepository) UpdateContact(ctx context.Context, account *domain.ShipperAccount) error {
	query := `
		UPDATE shipper_accounts
		SET company_name = $1, contact_name = $2, phone = $3, last_activity_at = $4
		WHERE id = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		account.CompanyName,
		account.ContactName,
		account.Phone,
		account.LastActivityAt,
		account.ID,
	)
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

// AddShipment appends a shipment and adds its quoted rate to total spent
// in a single transaction.
func (r *ShipperAccountRepository) AddShipment(ctx context.Context, shipment *domain.ShipmentRequest, at time.Time) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	insert := `
		INSERT INTO shipment_requests (id, account_id, load_id, origin, destination, equipment_type, weight, urgency, pickup_date, service_tier, quoted_rate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if _, err = tx.ExecContext(ctx, insert,
		shipment.ID,
		shipment.AccountID,
		nullString(shipment.LoadID),
		shipment.Origin,
		shipment.Destination,
		shipment.EquipmentType,
		shipment.Weight,
		shipment.Urgency,
		nullTime(shipment.PickupDate),
		shipment.ServiceTier,
		shipment.QuotedRate,
		shipment.CreatedAt,
	); err != nil {
		return err
	}

	var result sql.Result
	result, err = tx.ExecContext(ctx,
		`UPDATE shipper_accounts SET total_spent = total_spent + $1, last_activity_at = $2 WHERE id = $3`,
		shipment.QuotedRate, at, shipment.AccountID,
	)
	if err != nil {
		return err
	}

	var rowsAffected int64
	if rowsAffected, err = result.RowsAffected(); err != nil {
		return err
	}
	if rowsAffected == 0 {
		err = repository.ErrNotFound
		return err
	}

	return tx.Commit()
}

func (r *ShipperAccountRepository) getOne(ctx context.Context, query string, arg any) (*domain.ShipperAccount, error) {
	var account domain.ShipperAccount
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&account.ID,
		&account.GoWithFlowID,
		&account.CompanyName,
		&account.ContactName,
		&account.Email,
		&account.Phone,
		&account.TotalSpent,
		&account.CreatedAt,
		&account.LastActivityAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	history, err := r.shipments(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	account.ShipmentHistory = history

	return &account, nil
}

func (r *ShipperAccountRepository) shipments(ctx context.Context, accountID string) ([]domain.ShipmentRequest, error) {
	query := `
		SELECT id, account_id, load_id, origin, destination, equipment_type, weight, urgency, pickup_date, service_tier, quoted_rate, created_at
		FROM shipment_requests WHERE account_id = $1 ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []domain.ShipmentRequest
	for rows.Next() {
		var s domain.ShipmentRequest
		var loadID sql.NullString
		var pickup sql.NullTime
		if err := rows.Scan(
			&s.ID,
			&s.AccountID,
			&loadID,
			&s.Origin,
			&s.Destination,
			&s.EquipmentType,
			&s.Weight,
			&s.Urgency,
			&pickup,
			&s.ServiceTier,
			&s.QuotedRate,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		s.LoadID = loadID.String
		s.PickupDate = pickup.Time
		history = append(history, s)
	}
	return history, rows.Err()
}
