package service

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"fleetflow/internal/domain"
)

// PricingTable holds every constant the freight pricing engine uses.
// A YAML file can override any part of it; an equipment type listed
// under base_rates replaces that equipment's whole tier table.
type PricingTable struct {
	FuelSurcharge      float64                                                 `yaml:"fuel_surcharge"`
	Urgency            map[domain.Urgency]float64                              `yaml:"urgency"`
	BaseRates          map[domain.EquipmentType]map[domain.ServiceTier]float64 `yaml:"base_rates"`
	SpeedsMPH          map[domain.ServiceTier]float64                          `yaml:"speeds_mph"`
	DrivingHoursPerDay float64                                                 `yaml:"driving_hours_per_day"`
	// CityMileMarkers places known cities on a single east-west line;
	// the lane distance is the difference of the two markers.
	CityMileMarkers map[string]float64 `yaml:"city_mile_markers"`
}

// DefaultPricingTable returns the built-in pricing table.
func DefaultPricingTable() PricingTable {
	tiers := func(premium, standard, economy, budget float64) map[domain.ServiceTier]float64 {
		return map[domain.ServiceTier]float64{
			domain.ServiceTierPremium:  premium,
			domain.ServiceTierStandard: standard,
			domain.ServiceTierEconomy:  economy,
			domain.ServiceTierBudget:   budget,
		}
	}

	return PricingTable{
		FuelSurcharge: 0.25,
		Urgency: map[domain.Urgency]float64{
			domain.UrgencyLow:    1.0,
			domain.UrgencyMedium: 1.1,
			domain.UrgencyHigh:   1.3,
		},
		BaseRates: map[domain.EquipmentType]map[domain.ServiceTier]float64{
			domain.EquipmentDryVan:        tiers(2.95, 2.45, 2.15, 1.95),
			domain.EquipmentReefer:        tiers(3.35, 2.85, 2.55, 2.30),
			domain.EquipmentFlatbed:       tiers(3.15, 2.65, 2.35, 2.10),
			domain.EquipmentCargoVan:      tiers(1.95, 1.65, 1.45, 1.30),
			domain.EquipmentSprinterVan:   tiers(2.10, 1.80, 1.55, 1.40),
			domain.EquipmentBoxTruck16:    tiers(2.25, 1.95, 1.70, 1.55),
			domain.EquipmentBoxTruck20:    tiers(2.35, 2.05, 1.80, 1.60),
			domain.EquipmentBoxTruck24:    tiers(2.45, 2.15, 1.90, 1.70),
			domain.EquipmentBoxTruck26:    tiers(2.55, 2.25, 1.95, 1.75),
			domain.EquipmentStraightTruck: tiers(2.50, 2.20, 1.95, 1.75),
			domain.EquipmentHotShot:       tiers(2.85, 2.45, 2.15, 1.95),
			domain.EquipmentStepVan:       tiers(2.20, 1.90, 1.65, 1.50),
		},
		SpeedsMPH: map[domain.ServiceTier]float64{
			domain.ServiceTierPremium:  55,
			domain.ServiceTierStandard: 50,
			domain.ServiceTierEconomy:  45,
			domain.ServiceTierBudget:   40,
		},
		DrivingHoursPerDay: 11,
		CityMileMarkers: map[string]float64{
			"new york":     0,
			"philadelphia": 100,
			"chicago":      800,
			"houston":      1400,
			"dallas":       1400,
			"san antonio":  1800,
			"phoenix":      2400,
			"los angeles":  2800,
			"san diego":    2800,
			"san jose":     2900,
		},
	}
}

// LoadPricingTable reads a YAML override file on top of the defaults.
func LoadPricingTable(path string) (PricingTable, error) {
	table := DefaultPricingTable()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return table, fmt.Errorf("failed to read pricing table: %w", err)
	}
	if err := yaml.Unmarshal(data, &table); err != nil {
		return table, fmt.Errorf("failed to parse pricing table %s: %w", path, err)
	}

	normalized := make(map[string]float64, len(table.CityMileMarkers))
	for city, marker := range table.CityMileMarkers {
		normalized[normalizeCity(city)] = marker
	}
	table.CityMileMarkers = normalized

	return table, nil
}

// Route class bounds in miles, used when the lane distance is unknown.
var routeClassRanges = []struct {
	class    domain.RouteClass
	min, max float64
}{
	{domain.RouteClassShort, 50, 250},
	{domain.RouteClassMedium, 250, 800},
	{domain.RouteClassLong, 800, 2500},
}

// PricingEngine computes freight rates, distances and ETAs.
type PricingEngine struct {
	table PricingTable

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPricingEngine creates a new PricingEngine. rng supplies the
// route-class draw for unknown lanes; nil seeds a new source.
func NewPricingEngine(table PricingTable, rng *rand.Rand) *PricingEngine {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	return &PricingEngine{table: table, rng: rng}
}

// Rate returns round((base + fuel surcharge) * distance * urgency multiplier).
// Unknown equipment types price at Dry Van rates.
func (e *PricingEngine) Rate(equipment domain.EquipmentType, tier domain.ServiceTier, distanceMiles float64, urgency domain.Urgency) float64 {
	return math.Round((e.BaseRate(equipment, tier) + e.table.FuelSurcharge) * distanceMiles * e.UrgencyMultiplier(urgency))
}

// BaseRate returns the per-mile base rate for equipment and tier.
func (e *PricingEngine) BaseRate(equipment domain.EquipmentType, tier domain.ServiceTier) float64 {
	rates, ok := e.table.BaseRates[equipment]
	if !ok {
		rates = e.table.BaseRates[domain.EquipmentDryVan]
	}
	return rates[tier]
}

// UrgencyMultiplier returns the multiplier for an urgency, 1.0 if unknown.
func (e *PricingEngine) UrgencyMultiplier(urgency domain.Urgency) float64 {
	if m, ok := e.table.Urgency[urgency]; ok {
		return m
	}
	return 1.0
}

// TransitDays returns ceil(distance / (speed * driving hours)), at least 1.
func (e *PricingEngine) TransitDays(tier domain.ServiceTier, distanceMiles float64) int {
	speed := e.table.SpeedsMPH[tier]
	if speed <= 0 {
		speed = e.table.SpeedsMPH[domain.ServiceTierStandard]
	}
	hours := e.table.DrivingHoursPerDay
	if speed <= 0 || hours <= 0 {
		return 1
	}
	days := int(math.Ceil(distanceMiles / (speed * hours)))
	if days < 1 {
		days = 1
	}
	return days
}

// ETA returns the delivery date and transit days for a pickup date.
func (e *PricingEngine) ETA(tier domain.ServiceTier, distanceMiles float64, pickup time.Time) (time.Time, int) {
	days := e.TransitDays(tier, distanceMiles)
	return pickup.AddDate(0, 0, days), days
}

// Distance resolves the lane distance: the explicit value when given,
// the city table when both ends are known, otherwise a random draw
// from a random route class.
func (e *PricingEngine) Distance(origin, destination string, explicit float64) (float64, domain.RouteClass) {
	if explicit > 0 {
		return explicit, classifyDistance(explicit)
	}

	from, okFrom := e.table.CityMileMarkers[normalizeCity(origin)]
	to, okTo := e.table.CityMileMarkers[normalizeCity(destination)]
	if okFrom && okTo {
		if d := math.Abs(from - to); d > 0 {
			return d, classifyDistance(d)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	r := routeClassRanges[e.rng.IntN(len(routeClassRanges))]
	d := math.Round(r.min + e.rng.Float64()*(r.max-r.min))
	return d, r.class
}

func classifyDistance(miles float64) domain.RouteClass {
	switch {
	case miles < 250:
		return domain.RouteClassShort
	case miles < 800:
		return domain.RouteClassMedium
	default:
		return domain.RouteClassLong
	}
}

// normalizeCity reduces "Chicago, IL" to "chicago".
func normalizeCity(s string) string {
	if i := strings.Index(s, ","); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(strings.TrimSpace(s))
}
