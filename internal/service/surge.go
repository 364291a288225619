package service

import (
	"context"
	"math"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

// SurgeService prices new loads from network supply and demand.
type SurgeService struct {
	driverRepo repository.DriverRepository
	loadRepo   repository.LoadRepository
	config     SurgeConfig
}

// NewSurgeService creates a new SurgeService.
func NewSurgeService(
	driverRepo repository.DriverRepository,
	loadRepo repository.LoadRepository,
) *SurgeService {
	return &SurgeService{
		driverRepo: driverRepo,
		loadRepo:   loadRepo,
		config:     DefaultSurgeConfig(),
	}
}

// SurgeConfig contains dynamic pricing configuration.
type SurgeConfig struct {
	BasePrice      float64 // USD before multipliers
	CriticalRatio  float64 // Supply/demand factor below which CriticalSurge applies
	HighRatio      float64
	ElevatedRatio  float64
	CriticalSurge  float64
	HighSurge      float64
	ElevatedSurge  float64
	MinRatePerMile float64
}

// DefaultSurgeConfig returns the default dynamic pricing configuration.
func DefaultSurgeConfig() SurgeConfig {
	return SurgeConfig{
		BasePrice:      500,
		CriticalRatio:  0.1,
		HighRatio:      0.2,
		ElevatedRatio:  0.5,
		CriticalSurge:  3.0,
		HighSurge:      2.0,
		ElevatedSurge:  1.5,
		MinRatePerMile: 1.50,
	}
}

// DynamicPrice is the outcome of pricing one load.
type DynamicPrice struct {
	Rate              float64
	SurgeMultiplier   float64
	UrgencyMultiplier float64
	OnlineDrivers     int
	PendingLoads      int
}

// Price computes the rate for a load of the given distance and urgency.
// Count failures fail open to no surge.
func (s *SurgeService) Price(ctx context.Context, distanceMiles float64, urgency domain.Urgency) DynamicPrice {
	online := s.countOnlineDrivers(ctx)
	pending := s.countPendingLoads(ctx)
	return s.calculatePrice(online, pending, distanceMiles, urgency)
}

func (s *SurgeService) countOnlineDrivers(ctx context.Context) int {
	counts, err := s.driverRepo.CountByStatus(ctx)
	if err != nil {
		return -1
	}
	return counts[domain.DriverStatusOnline]
}

func (s *SurgeService) countPendingLoads(ctx context.Context) int {
	counts, err := s.loadRepo.CountByStatus(ctx)
	if err != nil {
		return -1
	}
	return counts[domain.LoadStatusPending]
}

func (s *SurgeService) calculatePrice(online, pending int, distanceMiles float64, urgency domain.Urgency) DynamicPrice {
	surge := 1.0
	if online >= 0 && pending >= 0 {
		surge = s.surgeMultiplier(online, pending)
	}

	urgencyMult := 1.0
	switch urgency {
	case domain.UrgencyMedium:
		urgencyMult = 1.1
	case domain.UrgencyHigh:
		urgencyMult = 1.25
	}

	multiplier := surge * urgencyMult
	rate := s.config.BasePrice * multiplier
	if distanceMiles > 0 && rate/distanceMiles < s.config.MinRatePerMile {
		rate = s.config.MinRatePerMile * distanceMiles
	}

	return DynamicPrice{
		Rate:              math.Round(rate*100) / 100,
		SurgeMultiplier:   surge,
		UrgencyMultiplier: urgencyMult,
		OnlineDrivers:     online,
		PendingLoads:      pending,
	}
}

// surgeMultiplier maps the (online+1)/(pending+1) supply factor to a surge tier.
func (s *SurgeService) surgeMultiplier(online, pending int) float64 {
	factor := float64(online+1) / float64(pending+1)

	switch {
	case factor < s.config.CriticalRatio:
		return s.config.CriticalSurge
	case factor < s.config.HighRatio:
		return s.config.HighSurge
	case factor < s.config.ElevatedRatio:
		return s.config.ElevatedSurge
	default:
		return 1.0
	}
}
