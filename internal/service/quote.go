package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"fleetflow/internal/domain"
)

// Ranking weights for the combined confidence/price score.
const (
	confidenceWeight = 0.6
	priceWeight      = 0.4
)

// quoteCarrier is one of the carriers Go with the Flow quotes against.
type quoteCarrier struct {
	name       string
	tier       domain.ServiceTier
	confidence int
	features   []string
	reasoning  string
}

var quoteCarriers = []quoteCarrier{
	{
		name:       "Premium Express Logistics",
		tier:       domain.ServiceTierPremium,
		confidence: 95,
		features:   []string{"Real-time tracking", "Insurance included", "24/7 support"},
		reasoning:  "Premium carrier with excellent safety record and on-time performance",
	},
	{
		name:       "Reliable Transport Solutions",
		tier:       domain.ServiceTierStandard,
		confidence: 88,
		features:   []string{"Standard tracking", "Basic insurance", "Business hours support"},
		reasoning:  "Cost-effective option with good reliability and competitive pricing",
	},
	{
		name:       "Economy Freight Services",
		tier:       domain.ServiceTierEconomy,
		confidence: 75,
		features:   []string{"Basic tracking", "Standard insurance", "Email support"},
		reasoning:  "Budget-friendly option for non-urgent shipments",
	},
}

// QuoteService produces ranked freight quotes.
type QuoteService struct {
	pricing *PricingEngine
	now     func() time.Time
}

// NewQuoteService creates a new QuoteService.
func NewQuoteService(pricing *PricingEngine) *QuoteService {
	return &QuoteService{pricing: pricing, now: time.Now}
}

// Generate prices the request with each carrier and returns the quotes
// ranked best first.
func (s *QuoteService) Generate(ctx context.Context, req domain.FreightRequest) ([]domain.Quote, error) {
	req, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	distance, class := s.pricing.Distance(req.Origin, req.Destination, req.DistanceMiles)

	quotes := make([]domain.Quote, 0, len(quoteCarriers))
	for _, qc := range quoteCarriers {
		eta, days := s.pricing.ETA(qc.tier, distance, req.PickupDate)
		quotes = append(quotes, domain.Quote{
			ID:            uuid.New().String(),
			Carrier:       qc.name,
			ServiceTier:   qc.tier,
			Rate:          s.pricing.Rate(req.EquipmentType, qc.tier, distance, req.Urgency),
			DistanceMiles: distance,
			RouteClass:    class,
			ETA:           eta,
			TransitDays:   days,
			Confidence:    qc.confidence,
			Features:      append([]string(nil), qc.features...),
			Reasoning:     qc.reasoning,
		})
	}

	return RankQuotes(quotes), nil
}

func (s *QuoteService) normalize(req domain.FreightRequest) (domain.FreightRequest, error) {
	req.Origin = strings.TrimSpace(req.Origin)
	req.Destination = strings.TrimSpace(req.Destination)
	if req.Origin == "" || req.Destination == "" {
		return req, ErrInvalidRoute
	}
	if req.Weight <= 0 {
		return req, fmt.Errorf("%w: %v", ErrInvalidWeight, req.Weight)
	}
	if req.DistanceMiles < 0 {
		return req, fmt.Errorf("%w: %v", ErrInvalidDistance, req.DistanceMiles)
	}
	if req.Urgency == "" {
		req.Urgency = domain.UrgencyMedium
	}
	if !req.Urgency.Valid() {
		return req, fmt.Errorf("%w: %q", ErrInvalidUrgency, req.Urgency)
	}
	if req.EquipmentType == "" {
		req.EquipmentType = domain.EquipmentDryVan
	}
	if req.PickupDate.IsZero() {
		req.PickupDate = s.now().UTC()
	}
	if !req.DeliveryDate.IsZero() && req.DeliveryDate.Before(req.PickupDate) {
		return req, ErrInvalidSchedule
	}
	return req, nil
}

// RankQuotes scores each quote as 0.6*confidence + 0.4*(cheapest/rate),
// sorts best first with ties going to the lower rate, and marks the
// winner recommended.
func RankQuotes(quotes []domain.Quote) []domain.Quote {
	if len(quotes) == 0 {
		return quotes
	}

	minRate := quotes[0].Rate
	for _, q := range quotes[1:] {
		if q.Rate < minRate {
			minRate = q.Rate
		}
	}

	for i := range quotes {
		priceScore := 1.0
		if quotes[i].Rate > 0 {
			priceScore = minRate / quotes[i].Rate
		}
		quotes[i].Score = confidenceWeight*float64(quotes[i].Confidence)/100 + priceWeight*priceScore
		quotes[i].Recommended = false
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		if quotes[i].Score != quotes[j].Score {
			return quotes[i].Score > quotes[j].Score
		}
		return quotes[i].Rate < quotes[j].Rate
	})
	quotes[0].Recommended = true

	return quotes
}
