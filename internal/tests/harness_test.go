package tests

import (
	"time"

	"go.uber.org/zap"

	"fleetflow/internal/domain"
	"fleetflow/internal/service"
)

// freightHarness wires the Go with the Flow services over mocks.
type freightHarness struct {
	drivers       *MockDriverRepository
	loads         *MockLoadRepository
	accounts      *MockShipperAccountRepository
	tx            *MockTransactor
	locations     *MockLocationStore
	locks         *MockLockStore
	cache         *MockDriverCache
	events        *RecordingPublisher
	notifications *RecordingPublisher

	matching *service.MatchingService
	freight  *service.FreightService
	shippers *service.ShipperAccountService
	portal   *service.PortalService
}

func newFreightHarness() *freightHarness {
	h := &freightHarness{
		drivers:       NewMockDriverRepository(),
		loads:         NewMockLoadRepository(),
		accounts:      NewMockShipperAccountRepository(),
		locations:     NewMockLocationStore(),
		locks:         NewMockLockStore(),
		cache:         NewMockDriverCache(),
		events:        NewRecordingPublisher(),
		notifications: NewRecordingPublisher(),
	}
	h.tx = NewMockTransactor(h.loads, h.drivers)

	logger := zap.NewNop()
	bus := service.NewEventBus(h.events, logger)
	notifier := service.NewNotificationService(h.notifications, logger)

	h.matching = service.NewMatchingService(
		h.tx, h.locations, h.locks, h.cache, h.drivers, h.loads,
		notifier, bus, logger,
		service.MatchingOptions{SearchRadiusMiles: 500, OfferTTL: 5 * time.Minute},
	)
	h.freight = service.NewFreightService(
		h.tx, h.loads, h.drivers, h.locks,
		service.NewSurgeService(h.drivers, h.loads),
		h.matching, notifier, bus, logger,
	)
	h.shippers = service.NewShipperAccountService(h.accounts, h.locks, bus, logger)
	h.portal = service.NewPortalService(
		service.NewQuoteService(service.NewPricingEngine(service.DefaultPricingTable(), nil)),
		h.shippers, h.freight, notifier, logger,
	)
	return h
}

// eventTypes returns the types of the published domain events in order.
func (h *freightHarness) eventTypes() []string {
	var out []string
	for _, m := range h.events.Messages() {
		if evt, ok := m.Value.(service.Event); ok {
			out = append(out, evt.Type)
		}
	}
	return out
}

// notificationTypes returns the types of the dispatched notifications in order.
func (h *freightHarness) notificationTypes() []service.NotificationType {
	var out []service.NotificationType
	for _, m := range h.notifications.Messages() {
		if n, ok := m.Value.(service.Notification); ok {
			out = append(out, n.Type)
		}
	}
	return out
}

// pendingLoad is a Chicago pickup paying 2.00/mile.
func pendingLoad(id string) *domain.Load {
	return &domain.Load{
		ID:            id,
		ShipperID:     "shipper-1",
		Origin:        domain.Location{Lat: 41.8781, Lng: -87.6298, Address: "Chicago, IL"},
		Destination:   domain.Location{Lat: 32.7767, Lng: -96.7970, Address: "Dallas, TX"},
		Weight:        30000,
		EquipmentType: domain.EquipmentDryVan,
		Rate:          2000,
		DistanceMiles: 1000,
		Status:        domain.LoadStatusPending,
		Urgency:       domain.UrgencyMedium,
		CreatedAt:     time.Now().Add(-time.Minute),
	}
}

func onlineDriver(id string, equipment domain.EquipmentType, maxDistance, minRate float64) *domain.Driver {
	return &domain.Driver{
		ID:            id,
		Name:          "Driver " + id,
		Phone:         "555-" + id,
		Status:        domain.DriverStatusOnline,
		EquipmentType: equipment,
		Preferences: domain.DriverPreferences{
			MaxDistanceMiles: maxDistance,
			MinRatePerMile:   minRate,
		},
		HoursRemaining: 11,
	}
}
