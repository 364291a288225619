package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fleetflow/internal/domain"
	"fleetflow/internal/redis"
	"fleetflow/internal/repository"
)

// Registration defaults.
const (
	defaultMaxDistanceMiles = 250.0
	defaultHoursRemaining   = 11.0
)

// DriverService handles driver operations.
type DriverService struct {
	locationStore redis.LocationStoreInterface
	cacheStore    redis.DriverCacheInterface
	driverRepo    repository.DriverRepository
	loadRepo      repository.LoadRepository
}

// NewDriverService creates a new DriverService. cacheStore may be nil.
func NewDriverService(
	locationStore redis.LocationStoreInterface,
	cacheStore redis.DriverCacheInterface,
	driverRepo repository.DriverRepository,
	loadRepo repository.LoadRepository,
) *DriverService {
	return &DriverService{
		locationStore: locationStore,
		cacheStore:    cacheStore,
		driverRepo:    driverRepo,
		loadRepo:      loadRepo,
	}
}

// RegisterDriverRequest contains the parameters for registering a driver.
type RegisterDriverRequest struct {
	Name          string
	Phone         string
	EquipmentType domain.EquipmentType
	Preferences   domain.DriverPreferences
}

// Register creates a new OFFLINE driver. A phone number already on
// file returns the existing driver with ErrDriverAlreadyRegistered.
func (s *DriverService) Register(ctx context.Context, req RegisterDriverRequest) (*domain.Driver, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Phone == "" {
		return nil, fmt.Errorf("%w: name and phone are required", ErrInvalidDriver)
	}
	if !req.EquipmentType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEquipmentType, req.EquipmentType)
	}
	if req.Preferences.MaxDistanceMiles < 0 || req.Preferences.MinRatePerMile < 0 {
		return nil, fmt.Errorf("%w: preferences must not be negative", ErrInvalidDriver)
	}

	existing, err := s.driverRepo.GetByPhone(ctx, req.Phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return existing, ErrDriverAlreadyRegistered
	}

	prefs := req.Preferences
	if prefs.MaxDistanceMiles == 0 {
		prefs.MaxDistanceMiles = defaultMaxDistanceMiles
	}

	driver := &domain.Driver{
		ID:             uuid.New().String(),
		Name:           req.Name,
		Phone:          req.Phone,
		Status:         domain.DriverStatusOffline,
		EquipmentType:  req.EquipmentType,
		Preferences:    prefs,
		HoursRemaining: defaultHoursRemaining,
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDriverAlreadyRegistered
		}
		return nil, err
	}

	return driver, nil
}

// Get returns a driver by ID.
func (s *DriverService) Get(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.driverRepo.GetByID(ctx, driverID)
}

// List returns all drivers, or only those in status when it is set.
func (s *DriverService) List(ctx context.Context, status domain.DriverStatus) ([]*domain.Driver, error) {
	if status == "" {
		return s.driverRepo.GetAll(ctx)
	}
	return s.driverRepo.GetByStatus(ctx, status)
}

// UpdateLocationRequest contains the parameters for updating driver location.
type UpdateLocationRequest struct {
	DriverID string
	Lat      float64
	Lng      float64
}

// UpdateLocation records a driver's position in the GEO index. An
// OFFLINE driver reporting a position comes ONLINE.
func (s *DriverService) UpdateLocation(ctx context.Context, req UpdateLocationRequest) error {
	if req.DriverID == "" {
		return ErrInvalidDriverID
	}

	if !isValidLatitude(req.Lat) || !isValidLongitude(req.Lng) {
		return ErrInvalidLocation
	}

	driver, err := s.driverRepo.GetByID(ctx, req.DriverID)
	if err != nil {
		return err
	}

	if err := s.locationStore.UpdateLocation(ctx, req.DriverID, req.Lat, req.Lng); err != nil {
		return err
	}

	if driver.Status == domain.DriverStatusOffline {
		if err := s.driverRepo.UpdateStatus(ctx, driver.ID, domain.DriverStatusOnline, ""); err != nil {
			return err
		}
		driver.Status = domain.DriverStatusOnline
	}

	s.cacheDriver(ctx, driver)
	return nil
}

// GoOnline marks a driver available at the given position.
func (s *DriverService) GoOnline(ctx context.Context, req UpdateLocationRequest) (*domain.Driver, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if !isValidLatitude(req.Lat) || !isValidLongitude(req.Lng) {
		return nil, ErrInvalidLocation
	}

	driver, err := s.driverRepo.GetByID(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}
	if driver.Status == domain.DriverStatusOnLoad {
		return nil, ErrDriverHasActiveLoad
	}

	if err := s.locationStore.UpdateLocation(ctx, driver.ID, req.Lat, req.Lng); err != nil {
		return nil, err
	}
	if err := s.driverRepo.UpdateStatus(ctx, driver.ID, domain.DriverStatusOnline, ""); err != nil {
		return nil, err
	}
	driver.Status = domain.DriverStatusOnline
	driver.CurrentLoadID = ""

	s.cacheDriver(ctx, driver)
	return driver, nil
}

// GoOffline removes a driver from matching.
func (s *DriverService) GoOffline(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver.Status == domain.DriverStatusOnLoad {
		return nil, ErrDriverHasActiveLoad
	}

	if err := s.driverRepo.UpdateStatus(ctx, driverID, domain.DriverStatusOffline, ""); err != nil {
		return nil, err
	}

	// Remove from Redis GEO index
	if err := s.locationStore.RemoveLocation(ctx, driverID); err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateDriver(ctx, driverID)
	}

	driver.Status = domain.DriverStatusOffline
	return driver, nil
}

// OfferedLoads returns the loads currently awaiting the driver's response.
func (s *DriverService) OfferedLoads(ctx context.Context, driverID string) ([]*domain.Load, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return nil, err
	}
	return s.loadRepo.GetOfferedToDriver(ctx, driverID)
}

func (s *DriverService) cacheDriver(ctx context.Context, driver *domain.Driver) {
	if s.cacheStore == nil {
		return
	}
	_ = s.cacheStore.SetDriver(ctx, toCachedDriver(driver))
}

func toCachedDriver(d *domain.Driver) *redis.CachedDriver {
	return &redis.CachedDriver{
		ID:               d.ID,
		Name:             d.Name,
		Phone:            d.Phone,
		Status:           string(d.Status),
		EquipmentType:    string(d.EquipmentType),
		MaxDistanceMiles: d.Preferences.MaxDistanceMiles,
		MinRatePerMile:   d.Preferences.MinRatePerMile,
	}
}

func fromCachedDriver(c *redis.CachedDriver) *domain.Driver {
	return &domain.Driver{
		ID:            c.ID,
		Name:          c.Name,
		Phone:         c.Phone,
		Status:        domain.DriverStatus(c.Status),
		EquipmentType: domain.EquipmentType(c.EquipmentType),
		Preferences: domain.DriverPreferences{
			MaxDistanceMiles: c.MaxDistanceMiles,
			MinRatePerMile:   c.MinRatePerMile,
		},
	}
}
