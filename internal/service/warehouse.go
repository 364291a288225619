package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"fleetflow/internal/domain"
)

// warehouseQuoteCount is how many facilities each request is quoted against.
const warehouseQuoteCount = 3

// palletFootprintSqFt converts a square-footage request to pallet positions.
const palletFootprintSqFt = 15.0

// palletTiers is the monthly price per pallet by total pallet count.
var palletTiers = []struct {
	upTo  int
	price float64
}{
	{100, 18},
	{500, 15},
	{2000, 12},
	{math.MaxInt, 10},
}

var serviceTypeMultipliers = map[string]float64{
	"Warehouse Storage":    1.0,
	"Cross Docking":        1.15,
	"Pick & Pack":          1.35,
	"Inventory Management": 1.2,
	"Distribution Center":  1.25,
	"Fulfillment Services": 1.4,
	"3PL Full Service":     1.5,
}

var durationMultipliers = map[domain.WarehouseDuration]float64{
	domain.DurationShortTerm: 1.15,
	domain.DurationLongTerm:  1.0,
	domain.DurationSeasonal:  1.25,
	domain.DurationPermanent: 0.9,
}

// Add-on pricing keyed by a keyword found in the normalized requirement text.
var additionalServiceRates = []struct {
	keyword string
	rate    float64
}{
	{"climate control", 850},
	{"hazmat", 1200},
	{"fda", 600},
	{"security", 500},
	{"cross dock", 400},
	{"rail access", 350},
	{"port access", 450},
	{"24/7", 700},
	{"automated", 550},
	{"returns", 300},
	{"kitting", 450},
	{"quality control", 350},
	{"pharmaceutical", 1500},
	{"food grade", 650},
}

// DefaultWarehouseCatalog returns the partner facilities in quoting order.
func DefaultWarehouseCatalog() []domain.Warehouse {
	return []domain.Warehouse{
		{
			ID:          "wh-dal-01",
			Name:        "FleetFlow Dallas Distribution Hub",
			Location:    "Dallas, TX",
			PriceFactor: 1.0,
			SetupFee:    2500,
			SetupTime:   "1-2 weeks",
			Features:    []string{"Climate controlled zones", "WMS integration", "Dock-high loading"},
			Compliance:  []string{"ISO 9001", "C-TPAT"},
			Confidence:  92,
		},
		{
			ID:          "wh-atl-01",
			Name:        "Southeast Logistics Center",
			Location:    "Atlanta, GA",
			PriceFactor: 0.95,
			SetupFee:    2000,
			SetupTime:   "2-3 weeks",
			Features:    []string{"Food grade storage", "Cross-docking", "Rail spur"},
			Compliance:  []string{"FDA Registered", "SQF"},
			Confidence:  88,
		},
		{
			ID:          "wh-chi-01",
			Name:        "Midwest Fulfillment Partners",
			Location:    "Chicago, IL",
			PriceFactor: 1.05,
			SetupFee:    3000,
			SetupTime:   "1 week",
			Features:    []string{"Pick & pack automation", "Same-day shipping", "Returns processing"},
			Compliance:  []string{"ISO 9001", "TAPA FSR"},
			Confidence:  85,
		},
		{
			ID:          "wh-lax-01",
			Name:        "Pacific Gateway Warehousing",
			Location:    "Los Angeles, CA",
			PriceFactor: 1.2,
			SetupFee:    3500,
			SetupTime:   "2 weeks",
			Features:    []string{"Port drayage", "Bonded storage", "24/7 operations"},
			Compliance:  []string{"C-TPAT", "Customs Bonded"},
			Confidence:  82,
		},
	}
}

// WarehouseService quotes warehousing against the partner catalog.
type WarehouseService struct {
	catalog []domain.Warehouse
}

// NewWarehouseService creates a new WarehouseService. A nil catalog
// uses DefaultWarehouseCatalog.
func NewWarehouseService(catalog []domain.Warehouse) *WarehouseService {
	if catalog == nil {
		catalog = DefaultWarehouseCatalog()
	}
	return &WarehouseService{catalog: catalog}
}

// GenerateWarehouseQuote returns one quote for each of the first three
// catalog warehouses, in catalog order.
func (s *WarehouseService) GenerateWarehouseQuote(ctx context.Context, req domain.WarehouseQuoteRequest) ([]domain.WarehouseQuote, error) {
	if len(s.catalog) < warehouseQuoteCount {
		return nil, fmt.Errorf("%w: have %d", ErrWarehouseCatalogTooSmall, len(s.catalog))
	}

	req.ServiceType = strings.TrimSpace(req.ServiceType)
	if req.ServiceType == "" {
		return nil, fmt.Errorf("%w: service type is required", ErrInvalidWarehouseRequest)
	}
	durationMult, ok := durationMultipliers[req.Duration]
	if !ok {
		return nil, fmt.Errorf("%w: unknown duration %q", ErrInvalidWarehouseRequest, req.Duration)
	}
	pallets := palletCount(req.Volume)
	if pallets <= 0 {
		return nil, fmt.Errorf("%w: pallets or square footage is required", ErrInvalidWarehouseRequest)
	}

	serviceMult, ok := serviceTypeMultipliers[req.ServiceType]
	if !ok {
		serviceMult = 1.0
	}
	base := float64(pallets) * palletPrice(pallets) * serviceMult * durationMult
	addOns := additionalServices(req.SpecialRequirements)

	quotes := make([]domain.WarehouseQuote, 0, warehouseQuoteCount)
	for _, wh := range s.catalog[:warehouseQuoteCount] {
		monthly := roundCents(base * wh.PriceFactor)
		total := monthly + wh.SetupFee
		for _, a := range addOns {
			total += a.Rate
		}

		quotes = append(quotes, domain.WarehouseQuote{
			ID:            uuid.New().String(),
			WarehouseID:   wh.ID,
			WarehouseName: wh.Name,
			Location:      wh.Location,
			ServiceType:   req.ServiceType,
			Duration:      req.Duration,
			Pricing: domain.WarehousePricing{
				MonthlyRate:        monthly,
				SetupFee:           wh.SetupFee,
				AdditionalServices: append([]domain.AdditionalService(nil), addOns...),
				TotalEstimate:      roundCents(total),
			},
			SetupTime:  wh.SetupTime,
			Features:   append([]string(nil), wh.Features...),
			Compliance: append([]string(nil), wh.Compliance...),
			Confidence: wh.Confidence,
		})
	}

	return quotes, nil
}

func palletCount(v domain.WarehouseVolume) int {
	if v.Pallets > 0 {
		return v.Pallets
	}
	if v.SqFt > 0 {
		return int(math.Ceil(float64(v.SqFt) / palletFootprintSqFt))
	}
	return 0
}

func palletPrice(pallets int) float64 {
	for _, t := range palletTiers {
		if pallets <= t.upTo {
			return t.price
		}
	}
	return palletTiers[len(palletTiers)-1].price
}

// additionalServices prices each special requirement once; unknown
// requirements carry no charge.
func additionalServices(requirements []string) []domain.AdditionalService {
	out := []domain.AdditionalService{}
	seen := make(map[string]bool)
	for _, req := range requirements {
		name := strings.TrimSpace(req)
		normalized := normalizeRequirement(name)
		if normalized == "" || seen[normalized] {
			continue
		}
		for _, a := range additionalServiceRates {
			if strings.Contains(normalized, a.keyword) {
				out = append(out, domain.AdditionalService{Name: name, Rate: a.rate})
				seen[normalized] = true
				break
			}
		}
	}
	return out
}

var requirementSeparators = strings.NewReplacer("-", " ", "_", " ")

// normalizeRequirement lowercases a requirement and folds hyphens,
// underscores and repeated spaces so "Cross-Docking" matches "cross dock".
func normalizeRequirement(req string) string {
	return strings.Join(strings.Fields(requirementSeparators.Replace(strings.ToLower(req))), " ")
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
