package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleetflow/internal/domain"
	"fleetflow/internal/redis"
	"fleetflow/internal/repository"
)

const (
	accountLockTTL        = 10 * time.Second
	accountLockRetryDelay = 50 * time.Millisecond
	accountLockRetries    = 20
)

// ShipperAccountService manages Go with the Flow shipper accounts.
type ShipperAccountService struct {
	accountRepo repository.ShipperAccountRepository
	lockStore   redis.LockStoreInterface
	events      *EventBus
	logger      *zap.Logger
	now         func() time.Time
}

// NewShipperAccountService creates a new ShipperAccountService.
func NewShipperAccountService(
	accountRepo repository.ShipperAccountRepository,
	lockStore redis.LockStoreInterface,
	events *EventBus,
	logger *zap.Logger,
) *ShipperAccountService {
	return &ShipperAccountService{
		accountRepo: accountRepo,
		lockStore:   lockStore,
		events:      events,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateOrUpdate finds the account for contact.Email or creates it, and
// records shipment against it when shipment is non-nil. Emails compare
// case-insensitively, so the same shipper always lands on one account.
func (s *ShipperAccountService) CreateOrUpdate(ctx context.Context, contact domain.ShipperContact, shipment *domain.ShipmentRequest) (*domain.ShipperAccount, error) {
	contact = normalizeContact(contact)
	if !isValidEmail(contact.Email) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEmail, contact.Email)
	}

	if err := s.lockAccount(ctx, contact.Email); err != nil {
		return nil, err
	}
	defer func() { _ = s.lockStore.ReleaseAccountLock(ctx, contact.Email) }()

	now := s.now().UTC()

	account, err := s.accountRepo.GetByEmail(ctx, contact.Email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		account, err = s.create(ctx, contact, now)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if mergeContact(account, contact) || shipment == nil {
			account.LastActivityAt = now
			if err := s.accountRepo.UpdateContact(ctx, account); err != nil {
				return nil, err
			}
		}
	}

	if shipment != nil {
		if err := s.addShipment(ctx, account, shipment, now); err != nil {
			return nil, err
		}
	}

	s.logger.Info("shipper account upserted",
		zap.String("account_id", account.ID),
		zap.String("gwf_id", account.GoWithFlowID),
		zap.Int("shipments", len(account.ShipmentHistory)),
	)
	s.events.Emit(ctx, EventShipperAccountUpserted, account.ID, account)

	return account, nil
}

// RecordShipment appends a shipment to an existing account. The
// running total is updated in the same statement, so no lock is taken.
func (s *ShipperAccountService) RecordShipment(ctx context.Context, account *domain.ShipperAccount, shipment *domain.ShipmentRequest) error {
	if account == nil || account.ID == "" {
		return ErrInvalidAccountID
	}
	if err := s.addShipment(ctx, account, shipment, s.now().UTC()); err != nil {
		return err
	}
	s.events.Emit(ctx, EventShipperAccountUpserted, account.ID, account)
	return nil
}

func (s *ShipperAccountService) addShipment(ctx context.Context, account *domain.ShipperAccount, shipment *domain.ShipmentRequest, now time.Time) error {
	shipment.ID = uuid.New().String()
	shipment.AccountID = account.ID
	shipment.CreatedAt = now
	if err := s.accountRepo.AddShipment(ctx, shipment, now); err != nil {
		return err
	}
	account.ShipmentHistory = append(account.ShipmentHistory, *shipment)
	account.TotalSpent += shipment.QuotedRate
	account.LastActivityAt = now
	return nil
}

func (s *ShipperAccountService) create(ctx context.Context, contact domain.ShipperContact, now time.Time) (*domain.ShipperAccount, error) {
	if contact.CompanyName == "" {
		return nil, ErrInvalidCompanyName
	}

	seq, err := s.accountRepo.NextGoWithFlowSequence(ctx)
	if err != nil {
		return nil, err
	}

	account := &domain.ShipperAccount{
		ID:              uuid.New().String(),
		GoWithFlowID:    fmt.Sprintf("GWF-%06d-%d", seq, now.UnixMilli()),
		CompanyName:     contact.CompanyName,
		ContactName:     contact.ContactName,
		Email:           contact.Email,
		Phone:           contact.Phone,
		ShipmentHistory: []domain.ShipmentRequest{},
		CreatedAt:       now,
		LastActivityAt:  now,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Created by a writer that did not hold the lock.
			return s.accountRepo.GetByEmail(ctx, contact.Email)
		}
		return nil, err
	}
	return account, nil
}

// lockAccount waits briefly for the per-email lock.
func (s *ShipperAccountService) lockAccount(ctx context.Context, email string) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(accountLockRetryDelay), accountLockRetries),
		ctx,
	)

	err := backoff.Retry(func() error {
		locked, err := s.lockStore.AcquireAccountLock(ctx, email, accountLockTTL)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !locked {
			return ErrAccountBusy
		}
		return nil
	}, policy)
	if err != nil {
		if errors.Is(err, ErrAccountBusy) {
			return ErrAccountBusy
		}
		return fmt.Errorf("failed to lock account: %w", err)
	}
	return nil
}

// Get returns an account by ID.
func (s *ShipperAccountService) Get(ctx context.Context, accountID string) (*domain.ShipperAccount, error) {
	if accountID == "" {
		return nil, ErrInvalidAccountID
	}
	return s.accountRepo.GetByID(ctx, accountID)
}

// GetByEmail returns the account registered to email, in any case.
func (s *ShipperAccountService) GetByEmail(ctx context.Context, email string) (*domain.ShipperAccount, error) {
	email = normalizeEmail(email)
	if !isValidEmail(email) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return s.accountRepo.GetByEmail(ctx, email)
}

// GetByGoWithFlowID returns an account by its public GWF identifier.
func (s *ShipperAccountService) GetByGoWithFlowID(ctx context.Context, gwfID string) (*domain.ShipperAccount, error) {
	gwfID = strings.TrimSpace(gwfID)
	if gwfID == "" {
		return nil, ErrInvalidAccountID
	}
	return s.accountRepo.GetByGoWithFlowID(ctx, gwfID)
}

// Summary returns the portal view of an account.
func (s *ShipperAccountService) Summary(ctx context.Context, accountID string) (*domain.ShipperSummary, error) {
	account, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return Summarize(account), nil
}

// Summarize builds the portal summary of an account.
func Summarize(account *domain.ShipperAccount) *domain.ShipperSummary {
	summary := &domain.ShipperSummary{
		AccountID:       account.ID,
		GoWithFlowID:    account.GoWithFlowID,
		ShipmentCount:   len(account.ShipmentHistory),
		TotalSpent:      account.TotalSpent,
		ByEquipmentType: make(map[domain.EquipmentType]int),
		LastActivityAt:  account.LastActivityAt,
	}
	for _, sh := range account.ShipmentHistory {
		summary.ByEquipmentType[sh.EquipmentType]++
	}
	if summary.ShipmentCount > 0 {
		summary.AverageRate = roundCents(account.TotalSpent / float64(summary.ShipmentCount))
	}
	return summary
}

// mergeContact fills blank account fields from contact and reports
// whether anything changed.
func mergeContact(account *domain.ShipperAccount, contact domain.ShipperContact) bool {
	changed := false
	fill := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
			changed = true
		}
	}
	fill(&account.CompanyName, contact.CompanyName)
	fill(&account.ContactName, contact.ContactName)
	fill(&account.Phone, contact.Phone)
	return changed
}

func normalizeContact(c domain.ShipperContact) domain.ShipperContact {
	return domain.ShipperContact{
		CompanyName: strings.TrimSpace(c.CompanyName),
		ContactName: strings.TrimSpace(c.ContactName),
		Email:       normalizeEmail(c.Email),
		Phone:       strings.TrimSpace(c.Phone),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") {
		return false
	}
	domainPart := email[at+1:]
	return strings.Contains(domainPart, ".") && !strings.HasPrefix(domainPart, ".") && !strings.HasSuffix(domainPart, ".")
}
