package tests

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"fleetflow/internal/domain"
	"fleetflow/internal/service"
)

func newTestPricingEngine() *service.PricingEngine {
	return service.NewPricingEngine(service.DefaultPricingTable(), rand.New(rand.NewPCG(1, 2)))
}

// ──────────────────────────────────────────────
// 1. FREIGHT QUOTES
// ──────────────────────────────────────────────

func TestFreightQuotes_RankedWithRecommendation(t *testing.T) {
	t.Parallel()

	quotes, err := service.NewQuoteService(newTestPricingEngine()).Generate(context.Background(), domain.FreightRequest{
		Origin:        "Chicago, IL",
		Destination:   "Dallas, TX",
		EquipmentType: domain.EquipmentDryVan,
		Weight:        40000,
		Urgency:       domain.UrgencyMedium,
		PickupDate:    time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		DistanceMiles: 1000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	type row struct {
		Carrier     string
		Rate        float64
		TransitDays int
		Recommended bool
	}
	var got []row
	for _, q := range quotes {
		got = append(got, row{q.Carrier, q.Rate, q.TransitDays, q.Recommended})
	}

	// Scores: standard 0.8836, premium 0.87, economy 0.85.
	want := []row{
		{"Reliable Transport Solutions", 2970, 2, true},
		{"Premium Express Logistics", 3520, 2, false},
		{"Economy Freight Services", 2640, 3, false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("quotes mismatch (-want +got):\n%s", diff)
	}

	if eta := quotes[0].ETA; !eta.Equal(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected standard ETA 2026-03-04, got %v", eta)
	}
	for _, q := range quotes {
		if q.RouteClass != domain.RouteClassLong {
			t.Errorf("expected long route class for 1000 miles, got %s", q.RouteClass)
		}
		if q.ID == "" || len(q.Features) == 0 || q.Reasoning == "" {
			t.Errorf("expected populated quote, got %+v", q)
		}
	}
}

func TestFreightQuotes_StandardRateFormula(t *testing.T) {
	t.Parallel()
	engine := newTestPricingEngine()

	testCases := []struct {
		name      string
		equipment domain.EquipmentType
		urgency   domain.Urgency
		distance  float64
		want      float64
	}{
		{"dry van low", domain.EquipmentDryVan, domain.UrgencyLow, 1000, 2700},
		{"dry van high", domain.EquipmentDryVan, domain.UrgencyHigh, 500, 1755},
		{"reefer medium", domain.EquipmentReefer, domain.UrgencyMedium, 200, 682},
		{"unknown equipment prices as dry van", "Hovercraft", domain.UrgencyLow, 100, 270},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := engine.Rate(tc.equipment, domain.ServiceTierStandard, tc.distance, tc.urgency)
			if got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestFreightQuotes_DistanceFromCityTable(t *testing.T) {
	t.Parallel()
	engine := newTestPricingEngine()

	d, class := engine.Distance("Chicago, IL", "dallas", 0)
	if d != 600 || class != domain.RouteClassMedium {
		t.Errorf("expected 600 mi medium, got %v %s", d, class)
	}

	// Same marker falls through to a random draw.
	d, class = engine.Distance("Houston, TX", "Dallas, TX", 0)
	if d < 50 || d > 2500 {
		t.Errorf("expected random distance within route class bounds, got %v", d)
	}
	if class == "" {
		t.Error("expected a route class for the random draw")
	}

	d, _ = engine.Distance("Nowhere", "Elsewhere", 0)
	if d < 50 || d > 2500 {
		t.Errorf("expected random distance for unknown cities, got %v", d)
	}
}

func TestFreightQuotes_TransitDaysAtLeastOne(t *testing.T) {
	t.Parallel()
	engine := newTestPricingEngine()

	if days := engine.TransitDays(domain.ServiceTierPremium, 10); days != 1 {
		t.Errorf("expected 1 day minimum, got %d", days)
	}
	// Budget: 40 mph * 11 h = 440 miles per day.
	if days := engine.TransitDays(domain.ServiceTierBudget, 881); days != 3 {
		t.Errorf("expected 3 days, got %d", days)
	}
}

func TestFreightQuotes_InvalidRequest(t *testing.T) {
	t.Parallel()
	quotes := service.NewQuoteService(newTestPricingEngine())

	testCases := []struct {
		name    string
		req     domain.FreightRequest
		wantErr error
	}{
		{"missing origin", domain.FreightRequest{Destination: "Dallas", Weight: 1}, service.ErrInvalidRoute},
		{"missing destination", domain.FreightRequest{Origin: "Chicago", Weight: 1}, service.ErrInvalidRoute},
		{"zero weight", domain.FreightRequest{Origin: "Chicago", Destination: "Dallas"}, service.ErrInvalidWeight},
		{"negative distance", domain.FreightRequest{Origin: "Chicago", Destination: "Dallas", Weight: 1, DistanceMiles: -5}, service.ErrInvalidDistance},
		{"bad urgency", domain.FreightRequest{Origin: "Chicago", Destination: "Dallas", Weight: 1, Urgency: "now"}, service.ErrInvalidUrgency},
		{"delivery before pickup", domain.FreightRequest{
			Origin: "Chicago", Destination: "Dallas", Weight: 1,
			PickupDate:   time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
			DeliveryDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		}, service.ErrInvalidSchedule},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := quotes.Generate(context.Background(), tc.req); !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestRankQuotes_TieGoesToLowerRate(t *testing.T) {
	t.Parallel()

	ranked := service.RankQuotes([]domain.Quote{
		{ID: "a", Rate: 1000, Confidence: 80},
		{ID: "b", Rate: 1000, Confidence: 80},
		{ID: "c", Rate: 900, Confidence: 76},
	})

	// a and b: 0.48 + 0.36 = 0.84; c: 0.456 + 0.4 = 0.856.
	var ids []string
	for _, q := range ranked {
		ids = append(ids, q.ID)
	}
	if diff := cmp.Diff([]string{"c", "a", "b"}, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if !ranked[0].Recommended || ranked[1].Recommended || ranked[2].Recommended {
		t.Error("expected only the first quote recommended")
	}
}

func TestLoadPricingTable_OverlaysDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pricing.yaml")
	yaml := "fuel_surcharge: 0.5\ncity_mile_markers:\n  \"Denver, CO\": 1900\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	table, err := service.LoadPricingTable(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.FuelSurcharge != 0.5 {
		t.Errorf("expected fuel surcharge override, got %v", table.FuelSurcharge)
	}
	if table.CityMileMarkers["denver"] != 1900 {
		t.Errorf("expected normalized denver marker, got %v", table.CityMileMarkers)
	}
	if _, ok := table.CityMileMarkers["chicago"]; !ok {
		t.Error("expected default city markers kept")
	}
	if table.SpeedsMPH[domain.ServiceTierPremium] != 55 {
		t.Error("expected default speeds kept")
	}

	if _, err := service.LoadPricingTable(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

// ──────────────────────────────────────────────
// 2. SURGE PRICING
// ──────────────────────────────────────────────

func surgeFixture(online, pending int) (*MockDriverRepository, *MockLoadRepository) {
	drivers := NewMockDriverRepository()
	for i := 0; i < online; i++ {
		drivers.AddDriver(&domain.Driver{ID: string(rune('a' + i)), Status: domain.DriverStatusOnline})
	}
	loads := NewMockLoadRepository()
	for i := 0; i < pending; i++ {
		loads.AddLoad(&domain.Load{ID: string(rune('a' + i)), Status: domain.LoadStatusPending})
	}
	return drivers, loads
}

func TestSurgePricing_Tiers(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		online    int
		pending   int
		wantSurge float64
	}{
		{"balanced", 5, 0, 1.0},
		{"elevated", 1, 9, 1.5},  // 2/10 = 0.2
		{"high", 0, 5, 2.0},      // 1/6
		{"critical", 0, 10, 3.0}, // 1/11
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			drivers, loads := surgeFixture(tc.online, tc.pending)

			price := service.NewSurgeService(drivers, loads).Price(context.Background(), 100, domain.UrgencyLow)
			if price.SurgeMultiplier != tc.wantSurge {
				t.Errorf("expected surge %v, got %v", tc.wantSurge, price.SurgeMultiplier)
			}
			if want := 500 * tc.wantSurge; price.Rate != want {
				t.Errorf("expected rate %v, got %v", want, price.Rate)
			}
			if price.OnlineDrivers != tc.online || price.PendingLoads != tc.pending {
				t.Errorf("expected counts %d/%d, got %d/%d", tc.online, tc.pending, price.OnlineDrivers, price.PendingLoads)
			}
		})
	}
}

func TestSurgePricing_UrgencyAndFloor(t *testing.T) {
	t.Parallel()
	drivers, loads := surgeFixture(3, 0)
	surge := service.NewSurgeService(drivers, loads)

	if p := surge.Price(context.Background(), 100, domain.UrgencyHigh); p.Rate != 625 || p.UrgencyMultiplier != 1.25 {
		t.Errorf("expected 625 at 1.25x, got %v at %vx", p.Rate, p.UrgencyMultiplier)
	}
	// 550 over 1000 miles is below 1.50/mile.
	if p := surge.Price(context.Background(), 1000, domain.UrgencyMedium); p.Rate != 1500 {
		t.Errorf("expected floor rate 1500, got %v", p.Rate)
	}
}

func TestSurgePricing_CountFailureFailsOpen(t *testing.T) {
	t.Parallel()
	drivers, loads := surgeFixture(0, 50)
	drivers.CountError = ErrMockTimeout

	p := service.NewSurgeService(drivers, loads).Price(context.Background(), 100, domain.UrgencyLow)
	if p.SurgeMultiplier != 1.0 {
		t.Errorf("expected no surge when counts fail, got %v", p.SurgeMultiplier)
	}
	if p.OnlineDrivers != -1 {
		t.Errorf("expected -1 online drivers marker, got %d", p.OnlineDrivers)
	}
}

// ──────────────────────────────────────────────
// 3. WAREHOUSE QUOTES
// ──────────────────────────────────────────────

func TestWarehouseQuotes_FirstThreeInCatalogOrder(t *testing.T) {
	t.Parallel()

	quotes, err := service.NewWarehouseService(nil).GenerateWarehouseQuote(context.Background(), domain.WarehouseQuoteRequest{
		ServiceType:         "Warehouse Storage",
		Duration:            domain.DurationLongTerm,
		Volume:              domain.WarehouseVolume{Pallets: 100},
		SpecialRequirements: []string{"Climate Control", "climate control", "Unicorn handling"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	type row struct {
		WarehouseID string
		Monthly     float64
		Total       float64
	}
	var got []row
	for _, q := range quotes {
		got = append(got, row{q.WarehouseID, q.Pricing.MonthlyRate, q.Pricing.TotalEstimate})
	}
	// 100 pallets at $18, one climate control add-on at $850.
	want := []row{
		{"wh-dal-01", 1800, 1800 + 2500 + 850},
		{"wh-atl-01", 1710, 1710 + 2000 + 850},
		{"wh-chi-01", 1890, 1890 + 3000 + 850},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("warehouse quotes mismatch (-want +got):\n%s", diff)
	}

	wantAddOns := []domain.AdditionalService{{Name: "Climate Control", Rate: 850}}
	if diff := cmp.Diff(wantAddOns, quotes[0].Pricing.AdditionalServices); diff != "" {
		t.Errorf("add-ons mismatch (-want +got):\n%s", diff)
	}
}

func TestWarehouseQuotes_RequirementSpellings(t *testing.T) {
	t.Parallel()
	svc := service.NewWarehouseService(nil)

	testCases := []struct {
		name         string
		requirements []string
		want         []domain.AdditionalService
	}{
		{"service type wording", []string{"Cross Docking"}, []domain.AdditionalService{{Name: "Cross Docking", Rate: 400}}},
		{"hyphenated", []string{"cross-dock"}, []domain.AdditionalService{{Name: "cross-dock", Rate: 400}}},
		{"underscored", []string{"CROSS_DOCKING"}, []domain.AdditionalService{{Name: "CROSS_DOCKING", Rate: 400}}},
		{"hyphen and space dedupe", []string{"Cross-Docking", "cross  docking"}, []domain.AdditionalService{{Name: "Cross-Docking", Rate: 400}}},
		{"food-grade", []string{"Food-Grade storage"}, []domain.AdditionalService{{Name: "Food-Grade storage", Rate: 650}}},
		{"round the clock", []string{"24/7 access"}, []domain.AdditionalService{{Name: "24/7 access", Rate: 700}}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			quotes, err := svc.GenerateWarehouseQuote(context.Background(), domain.WarehouseQuoteRequest{
				ServiceType:         "Cross Docking",
				Duration:            domain.DurationLongTerm,
				Volume:              domain.WarehouseVolume{Pallets: 10},
				SpecialRequirements: tc.requirements,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, quotes[0].Pricing.AdditionalServices); diff != "" {
				t.Errorf("add-ons mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWarehouseQuotes_SqFtAndMultipliers(t *testing.T) {
	t.Parallel()

	quotes, err := service.NewWarehouseService(nil).GenerateWarehouseQuote(context.Background(), domain.WarehouseQuoteRequest{
		ServiceType: "Pick & Pack",
		Duration:    domain.DurationSeasonal,
		Volume:      domain.WarehouseVolume{SqFt: 600},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 600 sq ft is 40 pallets: 40 * 18 * 1.35 * 1.25.
	if got := quotes[0].Pricing.MonthlyRate; got != 1215 {
		t.Errorf("expected monthly 1215, got %v", got)
	}
}

func TestWarehouseQuotes_CatalogTooSmall(t *testing.T) {
	t.Parallel()

	svc := service.NewWarehouseService(service.DefaultWarehouseCatalog()[:2])
	_, err := svc.GenerateWarehouseQuote(context.Background(), domain.WarehouseQuoteRequest{
		ServiceType: "Warehouse Storage",
		Duration:    domain.DurationLongTerm,
		Volume:      domain.WarehouseVolume{Pallets: 10},
	})
	if !errors.Is(err, service.ErrWarehouseCatalogTooSmall) {
		t.Errorf("expected ErrWarehouseCatalogTooSmall, got %v", err)
	}
}

func TestWarehouseQuotes_InvalidRequest(t *testing.T) {
	t.Parallel()
	svc := service.NewWarehouseService(nil)

	testCases := []struct {
		name string
		req  domain.WarehouseQuoteRequest
	}{
		{"missing service type", domain.WarehouseQuoteRequest{Duration: domain.DurationLongTerm, Volume: domain.WarehouseVolume{Pallets: 1}}},
		{"unknown duration", domain.WarehouseQuoteRequest{ServiceType: "Cross Docking", Duration: "forever", Volume: domain.WarehouseVolume{Pallets: 1}}},
		{"no volume", domain.WarehouseQuoteRequest{ServiceType: "Cross Docking", Duration: domain.DurationShortTerm}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := svc.GenerateWarehouseQuote(context.Background(), tc.req); !errors.Is(err, service.ErrInvalidWarehouseRequest) {
				t.Errorf("expected ErrInvalidWarehouseRequest, got %v", err)
			}
		})
	}
}
