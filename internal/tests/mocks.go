package tests

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fleetflow/internal/domain"
	"fleetflow/internal/fmcsa"
	"fleetflow/internal/redis"
	"fleetflow/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	CreateCallCount       int32
	GetByIDCallCount      int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	UpdateStatusError error
	CountError        error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.drivers {
		if d.Phone == driver.Phone {
			return repository.ErrDuplicate
		}
	}
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	atomic.AddInt32(&m.GetByIDCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.Phone == phone {
			copy := *d
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		copy := *d
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockDriverRepository) GetByStatus(ctx context.Context, status domain.DriverStatus) ([]*domain.Driver, error) {
	all, _ := m.GetAll(ctx)
	result := make([]*domain.Driver, 0, len(all))
	for _, d := range all {
		if d.Status == status {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *MockDriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus, currentLoadID string) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Status = status
	driver.CurrentLoadID = currentLoadID
	return nil
}

func (m *MockDriverRepository) CountByStatus(ctx context.Context) (map[domain.DriverStatus]int, error) {
	if m.CountError != nil {
		return nil, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[domain.DriverStatus]int)
	for _, d := range m.drivers {
		counts[d.Status]++
	}
	return counts, nil
}

func (m *MockDriverRepository) MaxPreferredDistance(ctx context.Context, status domain.DriverStatus, equipment domain.EquipmentType) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var widest float64
	for _, d := range m.drivers {
		if d.Status == status && d.EquipmentType == equipment && d.Preferences.MaxDistanceMiles > widest {
			widest = d.Preferences.MaxDistanceMiles
		}
	}
	return widest, nil
}

// GetDriver returns driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

// ──────────────────────────────────────────────
// MOCK LOAD REPOSITORY
// ──────────────────────────────────────────────

// MockLoadRepository is a mock implementation of LoadRepository.
type MockLoadRepository struct {
	mu    sync.RWMutex
	loads map[string]*domain.Load

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	UpdateStatusError error
	CountError        error
}

// NewMockLoadRepository creates a new mock load repository.
func NewMockLoadRepository() *MockLoadRepository {
	return &MockLoadRepository{
		loads: make(map[string]*domain.Load),
	}
}

// AddLoad adds a load to the mock repository.
func (m *MockLoadRepository) AddLoad(load *domain.Load) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads[load.ID] = load
}

func (m *MockLoadRepository) Create(ctx context.Context, load *domain.Load) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *load
	m.loads[load.ID] = &copy
	return nil
}

func (m *MockLoadRepository) GetByID(ctx context.Context, id string) (*domain.Load, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	load, ok := m.loads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *load
	return &copy, nil
}

// GetAll returns the newest loads first, capped like the SQL query.
func (m *MockLoadRepository) GetAll(ctx context.Context) ([]*domain.Load, error) {
	all := m.filter(func(*domain.Load) bool { return true })
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if len(all) > repository.RecentLoadsLimit {
		all = all[:repository.RecentLoadsLimit]
	}
	return all, nil
}

func (m *MockLoadRepository) GetByStatus(ctx context.Context, status domain.LoadStatus) ([]*domain.Load, error) {
	return m.filter(func(l *domain.Load) bool { return l.Status == status }), nil
}

func (m *MockLoadRepository) GetOfferedToDriver(ctx context.Context, driverID string) ([]*domain.Load, error) {
	return m.filter(func(l *domain.Load) bool {
		return l.Status == domain.LoadStatusOffered && l.AssignedDriverID == driverID
	}), nil
}

func (m *MockLoadRepository) GetExpiredOffers(ctx context.Context, now time.Time) ([]*domain.Load, error) {
	return m.filter(func(l *domain.Load) bool { return l.OfferExpired(now) }), nil
}

// filter returns copies of matching loads, oldest first.
func (m *MockLoadRepository) filter(keep func(*domain.Load) bool) []*domain.Load {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Load, 0, len(m.loads))
	for _, l := range m.loads {
		if keep(l) {
			copy := *l
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (m *MockLoadRepository) UpdateStatus(ctx context.Context, id string, from, to domain.LoadStatus, driverID string, offerExpiresAt time.Time) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	load, ok := m.loads[id]
	if !ok {
		return repository.ErrNotFound
	}
	if load.Status != from {
		return repository.ErrStaleState
	}
	load.Status = to
	load.AssignedDriverID = driverID
	load.OfferExpiresAt = offerExpiresAt
	return nil
}

func (m *MockLoadRepository) CountByStatus(ctx context.Context) (map[domain.LoadStatus]int, error) {
	if m.CountError != nil {
		return nil, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[domain.LoadStatus]int)
	for _, l := range m.loads {
		counts[l.Status]++
	}
	return counts, nil
}

func (m *MockLoadRepository) CountActiveByEquipment(ctx context.Context) (map[domain.EquipmentType]int, error) {
	if m.CountError != nil {
		return nil, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[domain.EquipmentType]int)
	for _, l := range m.loads {
		if l.IsActive() {
			counts[l.EquipmentType]++
		}
	}
	return counts, nil
}

// GetLoad returns the load by ID (for test assertions).
func (m *MockLoadRepository) GetLoad(id string) *domain.Load {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loads[id]
}

// CountLoads returns the number of loads.
func (m *MockLoadRepository) CountLoads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.loads)
}

// ──────────────────────────────────────────────
// MOCK TRANSACTOR
// ──────────────────────────────────────────────

// MockTransactor runs the callback against the mock repositories. It
// does not roll back; tests that need atomicity inject errors before
// the first write.
type MockTransactor struct {
	Loads   *MockLoadRepository
	Drivers *MockDriverRepository

	CallCount int32
	TxError   error
}

// NewMockTransactor creates a transactor over the given repositories.
func NewMockTransactor(loads *MockLoadRepository, drivers *MockDriverRepository) *MockTransactor {
	return &MockTransactor{Loads: loads, Drivers: drivers}
}

func (m *MockTransactor) WithinTx(ctx context.Context, fn func(loads repository.LoadRepository, drivers repository.DriverRepository) error) error {
	atomic.AddInt32(&m.CallCount, 1)
	if m.TxError != nil {
		return m.TxError
	}
	return fn(m.Loads, m.Drivers)
}

// ──────────────────────────────────────────────
// MOCK SHIPPER ACCOUNT REPOSITORY
// ──────────────────────────────────────────────

// MockShipperAccountRepository is a mock implementation of ShipperAccountRepository.
type MockShipperAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.ShipperAccount
	seq      int64

	// Counters
	CreateCallCount      int32
	AddShipmentCallCount int32

	// Error injection
	CreateError      error
	AddShipmentError error
}

// NewMockShipperAccountRepository creates a new mock shipper account repository.
func NewMockShipperAccountRepository() *MockShipperAccountRepository {
	return &MockShipperAccountRepository{
		accounts: make(map[string]*domain.ShipperAccount),
	}
}

func (m *MockShipperAccountRepository) NextGoWithFlowSequence(ctx context.Context) (int64, error) {
	return atomic.AddInt64(&m.seq, 1), nil
}

func (m *MockShipperAccountRepository) Create(ctx context.Context, account *domain.ShipperAccount) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == account.Email {
			return repository.ErrDuplicate
		}
	}
	copy := *account
	copy.ShipmentHistory = nil
	m.accounts[account.ID] = &copy
	return nil
}

func (m *MockShipperAccountRepository) GetByID(ctx context.Context, id string) (*domain.ShipperAccount, error) {
	return m.find(func(a *domain.ShipperAccount) bool { return a.ID == id })
}

func (m *MockShipperAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.ShipperAccount, error) {
	return m.find(func(a *domain.ShipperAccount) bool { return strings.EqualFold(a.Email, email) })
}

func (m *MockShipperAccountRepository) GetByGoWithFlowID(ctx context.Context, gwfID string) (*domain.ShipperAccount, error) {
	return m.find(func(a *domain.ShipperAccount) bool { return a.GoWithFlowID == gwfID })
}

func (m *MockShipperAccountRepository) find(match func(*domain.ShipperAccount) bool) (*domain.ShipperAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts {
		if match(a) {
			copy := *a
			copy.ShipmentHistory = append([]domain.ShipmentRequest{}, a.ShipmentHistory...)
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockShipperAccountRepository) UpdateContact(ctx context.Context, account *domain.ShipperAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.accounts[account.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.CompanyName = account.CompanyName
	stored.ContactName = account.ContactName
	stored.Phone = account.Phone
	stored.LastActivityAt = account.LastActivityAt
	return nil
}

func (m *MockShipperAccountRepository) AddShipment(ctx context.Context, shipment *domain.ShipmentRequest, at time.Time) error {
	atomic.AddInt32(&m.AddShipmentCallCount, 1)
	if m.AddShipmentError != nil {
		return m.AddShipmentError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.accounts[shipment.AccountID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.ShipmentHistory = append(stored.ShipmentHistory, *shipment)
	stored.TotalSpent += shipment.QuotedRate
	stored.LastActivityAt = at
	return nil
}

// CountAccounts returns the number of accounts.
func (m *MockShipperAccountRepository) CountAccounts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.accounts)
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is a mock implementation of LocationStore.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations []redis.DriverLocation

	// Counters
	UpdateLocationCallCount int32

	// Error injection
	UpdateLocationError    error
	FindNearbyDriversError error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{
		locations: make([]redis.DriverLocation, 0),
	}
}

// SetLocations sets all locations (for test setup). DistanceMiles is
// taken as the distance from whatever point is searched.
func (m *MockLocationStore) SetLocations(locations []redis.DriverLocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations = locations
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	atomic.AddInt32(&m.UpdateLocationCallCount, 1)
	if m.UpdateLocationError != nil {
		return m.UpdateLocationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Update existing or add new.
	for i, loc := range m.locations {
		if loc.DriverID == driverID {
			m.locations[i].Lat = lat
			m.locations[i].Lng = lng
			return nil
		}
	}
	m.locations = append(m.locations, redis.DriverLocation{
		DriverID: driverID,
		Lat:      lat,
		Lng:      lng,
	})
	return nil
}

// FindNearbyDrivers returns stored locations within radius, nearest first.
func (m *MockLocationStore) FindNearbyDrivers(ctx context.Context, lat, lng, radiusMiles float64) ([]redis.DriverLocation, error) {
	if m.FindNearbyDriversError != nil {
		return nil, m.FindNearbyDriversError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]redis.DriverLocation, 0, len(m.locations))
	for _, loc := range m.locations {
		if loc.DistanceMiles <= radiusMiles {
			result = append(result, loc)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].DistanceMiles < result[j].DistanceMiles })
	return result, nil
}

func (m *MockLocationStore) RemoveLocation(ctx context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, loc := range m.locations {
		if loc.DriverID == driverID {
			m.locations = append(m.locations[:i], m.locations[i+1:]...)
			return nil
		}
	}
	return nil
}

// HasLocation checks if a driver location exists.
func (m *MockLocationStore) HasLocation(driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, loc := range m.locations {
		if loc.DriverID == driverID {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStore.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount        int32
	ReleaseCallCount        int32
	AccountAcquireCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure        bool
	ForceAccountAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) acquire(key string, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if expiry, exists := m.locks[key]; exists && time.Now().Before(expiry) {
		return false // Lock still held.
	}
	m.locks[key] = time.Now().Add(ttl)
	return true
}

func (m *MockLockStore) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, key)
}

func (m *MockLockStore) AcquireDriverLock(ctx context.Context, driverID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	return m.acquire("lock:driver:"+driverID, ttl), nil
}

func (m *MockLockStore) ReleaseDriverLock(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.release("lock:driver:" + driverID)
	return nil
}

func (m *MockLockStore) AcquireAccountLock(ctx context.Context, email string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AccountAcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAccountAcquireFailure {
		return false, nil
	}
	return m.acquire("lock:account:"+email, ttl), nil
}

func (m *MockLockStore) ReleaseAccountLock(ctx context.Context, email string) error {
	m.release("lock:account:" + email)
	return nil
}

// IsLocked checks if a driver is locked (for test assertions).
func (m *MockLockStore) IsLocked(driverID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks["lock:driver:"+driverID]
	return exists && time.Now().Before(expiry)
}

// LockDriver holds a driver lock (for test setup).
func (m *MockLockStore) LockDriver(driverID string) {
	m.acquire("lock:driver:"+driverID, time.Minute)
}

// ──────────────────────────────────────────────
// MOCK DRIVER CACHE
// ──────────────────────────────────────────────

// MockDriverCache is a mock implementation of DriverCacheInterface.
type MockDriverCache struct {
	mu        sync.Mutex
	drivers   map[string]*redis.CachedDriver
	loadLocks map[string]bool

	// Counters
	SetCallCount        int32
	InvalidateCallCount int32

	// Force lock failure
	ForceLoadLockFailure bool
}

// NewMockDriverCache creates a new mock driver cache.
func NewMockDriverCache() *MockDriverCache {
	return &MockDriverCache{
		drivers:   make(map[string]*redis.CachedDriver),
		loadLocks: make(map[string]bool),
	}
}

func (m *MockDriverCache) SetDriver(ctx context.Context, driver *redis.CachedDriver) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *driver
	m.drivers[driver.ID] = &copy
	return nil
}

func (m *MockDriverCache) InvalidateDriver(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drivers, driverID)
	return nil
}

func (m *MockDriverCache) GetDriversBatch(ctx context.Context, driverIDs []string) (map[string]*redis.CachedDriver, []string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := make(map[string]*redis.CachedDriver)
	var missing []string
	for _, id := range driverIDs {
		if d, ok := m.drivers[id]; ok {
			copy := *d
			found[id] = &copy
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing, nil
}

func (m *MockDriverCache) AcquireLoadLock(ctx context.Context, loadID string, ttl time.Duration) (bool, error) {
	if m.ForceLoadLockFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadLocks[loadID] {
		return false, nil
	}
	m.loadLocks[loadID] = true
	return true, nil
}

func (m *MockDriverCache) ReleaseLoadLock(ctx context.Context, loadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.loadLocks, loadID)
	return nil
}

// IsCached reports whether a driver is in the cache.
func (m *MockDriverCache) IsCached(driverID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.drivers[driverID]
	return ok
}

// ──────────────────────────────────────────────
// RECORDING PUBLISHER
// ──────────────────────────────────────────────

// PublishedMessage is one message captured by RecordingPublisher.
type PublishedMessage struct {
	Key   string
	Value any
}

// RecordingPublisher captures every published message.
type RecordingPublisher struct {
	mu       sync.Mutex
	messages []PublishedMessage

	PublishError error
}

// NewRecordingPublisher creates a new recording publisher.
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) Publish(ctx context.Context, key string, value any) error {
	if p.PublishError != nil {
		return p.PublishError
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, PublishedMessage{Key: key, Value: value})
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

// Messages returns a copy of the captured messages.
func (p *RecordingPublisher) Messages() []PublishedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PublishedMessage(nil), p.messages...)
}

// ──────────────────────────────────────────────
// MOCK CARRIER LOOKUPS
// ──────────────────────────────────────────────

// MockCarrierLookup is a mock FMCSA client.
type MockCarrierLookup struct {
	mu       sync.Mutex
	carriers map[string]*domain.CarrierData

	SearchCallCount int32
	SearchDelay     time.Duration
	SearchError     error
}

// NewMockCarrierLookup creates a new mock FMCSA client.
func NewMockCarrierLookup() *MockCarrierLookup {
	return &MockCarrierLookup{carriers: make(map[string]*domain.CarrierData)}
}

// AddCarrier registers a carrier under its MC and DOT numbers.
func (m *MockCarrierLookup) AddCarrier(c *domain.CarrierData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carriers["mc:"+c.MCNumber] = c
	m.carriers["dot:"+c.DOTNumber] = c
}

func (m *MockCarrierLookup) search(ctx context.Context, key string) (*domain.CarrierData, error) {
	atomic.AddInt32(&m.SearchCallCount, 1)
	if m.SearchDelay > 0 {
		select {
		case <-time.After(m.SearchDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.SearchError != nil {
		return nil, m.SearchError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carriers[key]
	if !ok {
		return nil, fmcsa.ErrCarrierNotFound
	}
	copy := *c
	return &copy, nil
}

func (m *MockCarrierLookup) SearchByDOT(ctx context.Context, dotNumber string) (*domain.CarrierData, error) {
	return m.search(ctx, "dot:"+dotNumber)
}

func (m *MockCarrierLookup) SearchByMC(ctx context.Context, mcNumber string) (*domain.CarrierData, error) {
	return m.search(ctx, "mc:"+mcNumber)
}

func (m *MockCarrierLookup) Status(ctx context.Context) fmcsa.Status {
	return fmcsa.Status{}
}

// MockFinancialLookup is a mock BrokerSnapshot client.
type MockFinancialLookup struct {
	Profiles     map[string]*domain.FinancialProfile
	ProfileError error
	CallCount    int32
}

func (m *MockFinancialLookup) Profile(ctx context.Context, mcNumber string) (*domain.FinancialProfile, error) {
	atomic.AddInt32(&m.CallCount, 1)
	if m.ProfileError != nil {
		return nil, m.ProfileError
	}
	p, ok := m.Profiles[mcNumber]
	if !ok {
		return nil, ErrMockUnavailable
	}
	return p, nil
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
	ErrMockUnavailable  = errors.New("mock: upstream unavailable")
)
