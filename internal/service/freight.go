package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleetflow/internal/domain"
	"fleetflow/internal/redis"
	"fleetflow/internal/repository"
)

const defaultMatchInterval = 10 * time.Second

// FreightService runs the Go with the Flow load lifecycle.
type FreightService struct {
	transactor    repository.Transactor
	loadRepo      repository.LoadRepository
	driverRepo    repository.DriverRepository
	lockStore     redis.LockStoreInterface
	surge         *SurgeService
	matching      *MatchingService
	notifications *NotificationService
	events        *EventBus
	logger        *zap.Logger
	now           func() time.Time
}

// NewFreightService creates a new FreightService.
func NewFreightService(
	transactor repository.Transactor,
	loadRepo repository.LoadRepository,
	driverRepo repository.DriverRepository,
	lockStore redis.LockStoreInterface,
	surge *SurgeService,
	matching *MatchingService,
	notifications *NotificationService,
	events *EventBus,
	logger *zap.Logger,
) *FreightService {
	return &FreightService{
		transactor:    transactor,
		loadRepo:      loadRepo,
		driverRepo:    driverRepo,
		lockStore:     lockStore,
		surge:         surge,
		matching:      matching,
		notifications: notifications,
		events:        events,
		logger:        logger,
		now:           time.Now,
	}
}

// RequestTruckRequest contains the parameters for requesting a truck.
type RequestTruckRequest struct {
	ShipperID     string
	Origin        domain.Location
	Destination   domain.Location
	PickupTime    time.Time
	DeliveryTime  time.Time
	Weight        float64
	EquipmentType domain.EquipmentType
	Urgency       domain.Urgency
}

// RequestTruck creates a PENDING load priced from current supply and
// demand. The background matcher picks it up on its next tick.
func (s *FreightService) RequestTruck(ctx context.Context, req RequestTruckRequest) (*domain.Load, error) {
	if req.ShipperID == "" {
		return nil, ErrInvalidAccountID
	}
	if !isValidLocation(req.Origin) || !isValidLocation(req.Destination) {
		return nil, ErrInvalidLocation
	}
	if !req.EquipmentType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEquipmentType, req.EquipmentType)
	}
	if req.Weight <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWeight, req.Weight)
	}
	if req.Urgency == "" {
		req.Urgency = domain.UrgencyMedium
	}
	if !req.Urgency.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUrgency, req.Urgency)
	}

	now := s.now().UTC()
	if req.PickupTime.IsZero() {
		req.PickupTime = now
	}
	if !req.DeliveryTime.IsZero() && req.DeliveryTime.Before(req.PickupTime) {
		return nil, ErrInvalidSchedule
	}

	distance := haversineMiles(req.Origin, req.Destination)
	price := s.surge.Price(ctx, distance, req.Urgency)

	load := &domain.Load{
		ID:            newLoadID(now),
		ShipperID:     req.ShipperID,
		Origin:        req.Origin,
		Destination:   req.Destination,
		PickupTime:    req.PickupTime,
		DeliveryTime:  req.DeliveryTime,
		Weight:        req.Weight,
		EquipmentType: req.EquipmentType,
		Rate:          price.Rate,
		DistanceMiles: distance,
		Status:        domain.LoadStatusPending,
		Urgency:       req.Urgency,
		CreatedAt:     now,
	}

	if err := s.loadRepo.Create(ctx, load); err != nil {
		return nil, err
	}

	s.logger.Info("load requested",
		zap.String("load_id", load.ID),
		zap.String("shipper_id", load.ShipperID),
		zap.Float64("rate", load.Rate),
		zap.Float64("surge_multiplier", price.SurgeMultiplier),
	)
	s.events.Emit(ctx, EventLoadRequested, load.ID, load)

	return load, nil
}

// GetLoad returns a load by ID.
func (s *FreightService) GetLoad(ctx context.Context, loadID string) (*domain.Load, error) {
	if loadID == "" {
		return nil, ErrInvalidLoadID
	}
	return s.loadRepo.GetByID(ctx, loadID)
}

// ListLoads returns recent loads, or only those in status when it is set.
func (s *FreightService) ListLoads(ctx context.Context, status domain.LoadStatus) ([]*domain.Load, error) {
	if status == "" {
		return s.loadRepo.GetAll(ctx)
	}
	return s.loadRepo.GetByStatus(ctx, status)
}

// AcceptLoad confirms an offer. Only the driver the load was offered
// to can accept, and only before the offer lapses.
func (s *FreightService) AcceptLoad(ctx context.Context, driverID, loadID string) (*domain.Load, error) {
	load, driver, err := s.offeredTo(ctx, driverID, loadID)
	if err != nil {
		return nil, err
	}

	err = s.loadRepo.UpdateStatus(ctx, load.ID, domain.LoadStatusOffered, domain.LoadStatusAccepted, driverID, time.Time{})
	if err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrLoadNotOffered
		}
		return nil, err
	}
	_ = s.lockStore.ReleaseDriverLock(ctx, driverID)

	load.Status = domain.LoadStatusAccepted
	load.OfferExpiresAt = time.Time{}

	s.logger.Info("load accepted", zap.String("load_id", load.ID), zap.String("driver_id", driverID))
	s.events.Emit(ctx, EventLoadAccepted, load.ID, map[string]any{"load_id": load.ID, "driver_id": driverID})
	s.notifications.NotifyLoadAccepted(ctx, load, driver)

	return load, nil
}

// DeclineLoad returns an offered load to PENDING and its driver to ONLINE.
func (s *FreightService) DeclineLoad(ctx context.Context, driverID, loadID string) (*domain.Load, error) {
	load, _, err := s.offeredTo(ctx, driverID, loadID)
	if err != nil {
		return nil, err
	}

	if err := s.release(ctx, load); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrLoadNotOffered
		}
		return nil, err
	}

	s.logger.Info("load declined", zap.String("load_id", load.ID), zap.String("driver_id", driverID))
	s.events.Emit(ctx, EventLoadDeclined, load.ID, map[string]any{"load_id": load.ID, "driver_id": driverID})
	s.notifications.NotifyLoadDeclined(ctx, load, driverID)

	return load, nil
}

// offeredTo loads an OFFERED load and checks driverID holds the offer.
func (s *FreightService) offeredTo(ctx context.Context, driverID, loadID string) (*domain.Load, *domain.Driver, error) {
	if driverID == "" {
		return nil, nil, ErrInvalidDriverID
	}
	if loadID == "" {
		return nil, nil, ErrInvalidLoadID
	}

	load, err := s.loadRepo.GetByID(ctx, loadID)
	if err != nil {
		return nil, nil, err
	}
	if load.Status != domain.LoadStatusOffered || load.OfferExpired(s.now()) {
		return nil, nil, ErrLoadNotOffered
	}
	if load.AssignedDriverID != driverID {
		return nil, nil, ErrDriverNotAssignedToLoad
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, nil, err
	}
	return load, driver, nil
}

// release moves an OFFERED load back to PENDING and frees its driver.
// On success load reflects the new state.
func (s *FreightService) release(ctx context.Context, load *domain.Load) error {
	driverID := load.AssignedDriverID

	err := s.transactor.WithinTx(ctx, func(loads repository.LoadRepository, drivers repository.DriverRepository) error {
		if err := loads.UpdateStatus(ctx, load.ID, domain.LoadStatusOffered, domain.LoadStatusPending, "", time.Time{}); err != nil {
			return err
		}
		if driverID == "" {
			return nil
		}
		err := drivers.UpdateStatus(ctx, driverID, domain.DriverStatusOnline, "")
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}

	if driverID != "" {
		_ = s.lockStore.ReleaseDriverLock(ctx, driverID)
	}

	load.Status = domain.LoadStatusPending
	load.AssignedDriverID = ""
	load.OfferExpiresAt = time.Time{}
	return nil
}

// ExpireOffers releases every offer whose response window has lapsed
// and returns how many were released.
func (s *FreightService) ExpireOffers(ctx context.Context) (int, error) {
	expired, err := s.loadRepo.GetExpiredOffers(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}

	released := 0
	for _, load := range expired {
		driverID := load.AssignedDriverID
		if err := s.release(ctx, load); err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				// Accepted or declined since the query.
				continue
			}
			return released, err
		}
		released++

		s.logger.Info("load offer expired", zap.String("load_id", load.ID), zap.String("driver_id", driverID))
		s.events.Emit(ctx, EventOfferExpired, load.ID, map[string]any{"load_id": load.ID, "driver_id": driverID})
		s.notifications.NotifyOfferExpired(ctx, load, driverID)
	}

	return released, nil
}

// MatchPending tries to match every PENDING load and returns how many
// were offered.
func (s *FreightService) MatchPending(ctx context.Context) (int, error) {
	pending, err := s.loadRepo.GetByStatus(ctx, domain.LoadStatusPending)
	if err != nil {
		return 0, err
	}

	matched := 0
	for _, load := range pending {
		if ctx.Err() != nil {
			return matched, ctx.Err()
		}
		if _, err := s.matching.Match(ctx, load.ID); err != nil {
			if !errors.Is(err, ErrNoDriverAvailable) && !errors.Is(err, ErrLoadNotPending) {
				s.logger.Warn("matching failed", zap.String("load_id", load.ID), zap.Error(err))
			}
			continue
		}
		matched++
	}

	return matched, nil
}

// Run expires stale offers and then matches pending loads on every
// tick until ctx is cancelled.
func (s *FreightService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultMatchInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("matcher started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("matcher stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *FreightService) tick(ctx context.Context) {
	if n, err := s.ExpireOffers(ctx); err != nil {
		s.logger.Error("failed to expire offers", zap.Error(err))
	} else if n > 0 {
		s.logger.Info("expired offers released", zap.Int("count", n))
	}

	if n, err := s.MatchPending(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("failed to match pending loads", zap.Error(err))
	} else if n > 0 {
		s.logger.Info("pending loads offered", zap.Int("count", n))
	}
}

// NetworkMetrics is the Go with the Flow dashboard snapshot.
type NetworkMetrics struct {
	TotalDrivers  int
	OnlineDrivers int
	OnLoadDrivers int
	ActiveLoads   int
	PendingLoads  int
	OfferedLoads  int
}

// Metrics counts drivers and loads by state.
func (s *FreightService) Metrics(ctx context.Context) (*NetworkMetrics, error) {
	drivers, err := s.driverRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	loads, err := s.loadRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	m := &NetworkMetrics{
		OnlineDrivers: drivers[domain.DriverStatusOnline],
		OnLoadDrivers: drivers[domain.DriverStatusOnLoad],
		PendingLoads:  loads[domain.LoadStatusPending],
		OfferedLoads:  loads[domain.LoadStatusOffered],
	}
	for _, n := range drivers {
		m.TotalDrivers += n
	}
	for status, n := range loads {
		if (&domain.Load{Status: status}).IsActive() {
			m.ActiveLoads += n
		}
	}
	return m, nil
}

// EquipmentBreakdown counts drivers and active loads by equipment category.
type EquipmentBreakdown struct {
	Drivers map[domain.EquipmentCategory]int
	Loads   map[domain.EquipmentCategory]int
}

// EquipmentBreakdown groups the network by equipment category. Every
// category is present, zero when empty.
func (s *FreightService) EquipmentBreakdown(ctx context.Context) (*EquipmentBreakdown, error) {
	drivers, err := s.driverRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	loads, err := s.loadRepo.CountActiveByEquipment(ctx)
	if err != nil {
		return nil, err
	}

	b := &EquipmentBreakdown{
		Drivers: emptyCategoryCounts(),
		Loads:   emptyCategoryCounts(),
	}
	for _, d := range drivers {
		b.Drivers[d.EquipmentType.Category()]++
	}
	for equipment, n := range loads {
		b.Loads[equipment.Category()] += n
	}
	return b, nil
}

func emptyCategoryCounts() map[domain.EquipmentCategory]int {
	return map[domain.EquipmentCategory]int{
		domain.EquipmentCategorySmall:       0,
		domain.EquipmentCategoryMedium:      0,
		domain.EquipmentCategoryLarge:       0,
		domain.EquipmentCategorySpecialized: 0,
	}
}

// newLoadID returns a portal-facing load reference: GWF-<unix ms>-<8 hex>.
func newLoadID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("GWF-%d-%s", now.UnixMilli(), strings.ToUpper(suffix))
}
