package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"fleetflow/internal/domain"
	"fleetflow/internal/redis"
	"fleetflow/internal/repository"
)

const (
	defaultSearchRadiusMiles = 500.0
	defaultOfferTTL          = 5 * time.Minute
	driverLockTTL            = 10 * time.Second
	loadLockTTL              = 30 * time.Second // Lock load during matching
)

// MatchingService offers pending loads to nearby drivers.
type MatchingService struct {
	transactor    repository.Transactor
	locationStore redis.LocationStoreInterface
	lockStore     redis.LockStoreInterface
	cacheStore    redis.DriverCacheInterface
	driverRepo    repository.DriverRepository
	loadRepo      repository.LoadRepository
	notifications *NotificationService
	events        *EventBus
	logger        *zap.Logger

	searchRadiusMiles float64
	offerTTL          time.Duration
	now               func() time.Time
}

// MatchingOptions tunes the matcher. Zero values use the defaults.
type MatchingOptions struct {
	SearchRadiusMiles float64
	OfferTTL          time.Duration
}

// NewMatchingService creates a new MatchingService. cacheStore may be nil.
func NewMatchingService(
	transactor repository.Transactor,
	locationStore redis.LocationStoreInterface,
	lockStore redis.LockStoreInterface,
	cacheStore redis.DriverCacheInterface,
	driverRepo repository.DriverRepository,
	loadRepo repository.LoadRepository,
	notifications *NotificationService,
	events *EventBus,
	logger *zap.Logger,
	opts MatchingOptions,
) *MatchingService {
	if opts.SearchRadiusMiles <= 0 {
		opts.SearchRadiusMiles = defaultSearchRadiusMiles
	}
	if opts.OfferTTL <= 0 {
		opts.OfferTTL = defaultOfferTTL
	}
	return &MatchingService{
		transactor:        transactor,
		locationStore:     locationStore,
		lockStore:         lockStore,
		cacheStore:        cacheStore,
		driverRepo:        driverRepo,
		loadRepo:          loadRepo,
		notifications:     notifications,
		events:            events,
		logger:            logger,
		searchRadiusMiles: opts.SearchRadiusMiles,
		offerTTL:          opts.OfferTTL,
		now:               time.Now,
	}
}

// MatchResult contains the result of a successful match.
type MatchResult struct {
	Load          *domain.Load
	Driver        *domain.Driver
	DistanceMiles float64
	Confidence    float64
}

type matchCandidate struct {
	driver     *domain.Driver
	distance   float64
	confidence float64
}

// Match offers a PENDING load to the eligible driver with the highest
// confidence. Eligible drivers are ONLINE, haul the load's equipment,
// sit within their own max distance of the pickup and accept the
// load's rate per mile.
func (s *MatchingService) Match(ctx context.Context, loadID string) (*MatchResult, error) {
	if loadID == "" {
		return nil, ErrInvalidLoadID
	}

	if s.cacheStore != nil {
		locked, err := s.cacheStore.AcquireLoadLock(ctx, loadID, loadLockTTL)
		if err != nil {
			return nil, err
		}
		if !locked {
			// Another matcher is handling this load
			return nil, ErrLoadNotPending
		}
		defer s.cacheStore.ReleaseLoadLock(ctx, loadID)
	}

	load, err := s.loadRepo.GetByID(ctx, loadID)
	if err != nil {
		return nil, err
	}
	if load.Status != domain.LoadStatusPending {
		return nil, ErrLoadNotPending
	}

	candidates, err := s.candidates(ctx, load)
	if err != nil {
		return nil, err
	}

	for _, c := range candidates {
		driverID := c.driver.ID

		locked, err := s.lockStore.AcquireDriverLock(ctx, driverID, driverLockTTL)
		if err != nil {
			return nil, err
		}
		if !locked {
			// Driver is being offered another load.
			continue
		}

		// Cached status may be stale.
		fresh, err := s.driverRepo.GetByID(ctx, driverID)
		if err != nil {
			_ = s.lockStore.ReleaseDriverLock(ctx, driverID)
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if fresh.Status != domain.DriverStatusOnline {
			_ = s.lockStore.ReleaseDriverLock(ctx, driverID)
			s.invalidateDriverCache(ctx, driverID)
			continue
		}

		offered, err := s.offer(ctx, load, fresh)
		if err != nil {
			_ = s.lockStore.ReleaseDriverLock(ctx, driverID)
			return nil, err
		}

		s.invalidateDriverCache(ctx, driverID)

		s.logger.Info("load offered",
			zap.String("load_id", offered.ID),
			zap.String("driver_id", driverID),
			zap.Float64("distance_miles", c.distance),
			zap.Float64("confidence", c.confidence),
		)
		s.events.Emit(ctx, EventLoadOffered, offered.ID, map[string]any{
			"load_id":    offered.ID,
			"driver_id":  driverID,
			"confidence": c.confidence,
			"expires_at": offered.OfferExpiresAt,
		})
		s.notifications.NotifyLoadOffered(ctx, offered, fresh)

		// Success - driver lock will expire via TTL.
		return &MatchResult{
			Load:          offered,
			Driver:        fresh,
			DistanceMiles: c.distance,
			Confidence:    c.confidence,
		}, nil
	}

	return nil, ErrNoDriverAvailable
}

// searchRadius widens the configured radius to the largest distance an
// online driver with this equipment is willing to deadhead, so per-driver
// preferences above the default are still reachable.
func (s *MatchingService) searchRadius(ctx context.Context, equipment domain.EquipmentType) (float64, error) {
	widest, err := s.driverRepo.MaxPreferredDistance(ctx, domain.DriverStatusOnline, equipment)
	if err != nil {
		return 0, err
	}
	return math.Max(s.searchRadiusMiles, widest), nil
}

// candidates returns eligible drivers ordered by confidence, nearest first on ties.
func (s *MatchingService) candidates(ctx context.Context, load *domain.Load) ([]matchCandidate, error) {
	radius, err := s.searchRadius(ctx, load.EquipmentType)
	if err != nil {
		return nil, err
	}
	nearby, err := s.locationStore.FindNearbyDrivers(ctx, load.Origin.Lat, load.Origin.Lng, radius)
	if err != nil {
		return nil, err
	}
	if len(nearby) == 0 {
		return nil, ErrNoDriverAvailable
	}

	ids := make([]string, len(nearby))
	for i, loc := range nearby {
		ids[i] = loc.DriverID
	}
	drivers, err := s.lookupDrivers(ctx, ids)
	if err != nil {
		return nil, err
	}

	ratePerMile := 0.0
	if load.DistanceMiles > 0 {
		ratePerMile = load.Rate / load.DistanceMiles
	}

	var out []matchCandidate
	for _, loc := range nearby {
		d, ok := drivers[loc.DriverID]
		if !ok {
			continue
		}
		if d.Status != domain.DriverStatusOnline || d.EquipmentType != load.EquipmentType {
			continue
		}

		maxDistance := d.Preferences.MaxDistanceMiles
		if maxDistance <= 0 {
			maxDistance = s.searchRadiusMiles
		}
		if loc.DistanceMiles > maxDistance {
			continue
		}
		if load.DistanceMiles > 0 && ratePerMile < d.Preferences.MinRatePerMile {
			continue
		}

		out = append(out, matchCandidate{
			driver:     d,
			distance:   loc.DistanceMiles,
			confidence: matchConfidence(loc.DistanceMiles, maxDistance),
		})
	}

	// nearby is sorted by distance, so a stable sort keeps the nearest first.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].confidence > out[j].confidence
	})
	return out, nil
}

// matchConfidence is min(100, 100 - distance/maxDistance*50).
func matchConfidence(distance, maxDistance float64) float64 {
	c := 100 - distance/maxDistance*50
	if c > 100 {
		c = 100
	}
	return c
}

// lookupDrivers reads drivers from cache first and the database for misses.
func (s *MatchingService) lookupDrivers(ctx context.Context, ids []string) (map[string]*domain.Driver, error) {
	out := make(map[string]*domain.Driver, len(ids))

	missing := ids
	if s.cacheStore != nil {
		cached, miss, _ := s.cacheStore.GetDriversBatch(ctx, ids)
		for id, c := range cached {
			out[id] = fromCachedDriver(c)
		}
		missing = miss
	}

	for _, id := range missing {
		driver, err := s.driverRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out[id] = driver
		if s.cacheStore != nil {
			_ = s.cacheStore.SetDriver(ctx, toCachedDriver(driver))
		}
	}

	return out, nil
}

// offer atomically moves the load to OFFERED and the driver to ON_LOAD.
func (s *MatchingService) offer(ctx context.Context, load *domain.Load, driver *domain.Driver) (*domain.Load, error) {
	expiresAt := s.now().UTC().Add(s.offerTTL)

	err := s.transactor.WithinTx(ctx, func(loads repository.LoadRepository, drivers repository.DriverRepository) error {
		if err := loads.UpdateStatus(ctx, load.ID, domain.LoadStatusPending, domain.LoadStatusOffered, driver.ID, expiresAt); err != nil {
			return err
		}
		return drivers.UpdateStatus(ctx, driver.ID, domain.DriverStatusOnLoad, load.ID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrLoadNotPending
		}
		return nil, err
	}

	offered := *load
	offered.Status = domain.LoadStatusOffered
	offered.AssignedDriverID = driver.ID
	offered.OfferExpiresAt = expiresAt

	driver.Status = domain.DriverStatusOnLoad
	driver.CurrentLoadID = load.ID

	return &offered, nil
}

func (s *MatchingService) invalidateDriverCache(ctx context.Context, driverID string) {
	if s.cacheStore == nil {
		return
	}
	_ = s.cacheStore.InvalidateDriver(ctx, driverID)
}
