package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"fleetflow/internal/domain"
	"fleetflow/internal/fmcsa"
)

// CarrierLookup is the FMCSA client contract.
type CarrierLookup interface {
	SearchByDOT(ctx context.Context, dotNumber string) (*domain.CarrierData, error)
	SearchByMC(ctx context.Context, mcNumber string) (*domain.CarrierData, error)
	Status(ctx context.Context) fmcsa.Status
}

// FinancialLookup is the BrokerSnapshot client contract.
type FinancialLookup interface {
	Profile(ctx context.Context, mcNumber string) (*domain.FinancialProfile, error)
}

// CarrierVerifier returns a merged carrier record for an MC number.
type CarrierVerifier interface {
	Verify(ctx context.Context, mcNumber string) (*domain.CarrierData, error)
}

// Ensure CarrierService implements CarrierVerifier.
var _ CarrierVerifier = (*CarrierService)(nil)

// CarrierService verifies carriers against FMCSA and BrokerSnapshot.
type CarrierService struct {
	fmcsa    CarrierLookup
	snapshot FinancialLookup
	logger   *zap.Logger
	group    singleflight.Group
}

// NewCarrierService creates a new CarrierService. snapshot may be nil.
func NewCarrierService(fmcsa CarrierLookup, snapshot FinancialLookup, logger *zap.Logger) *CarrierService {
	return &CarrierService{fmcsa: fmcsa, snapshot: snapshot, logger: logger}
}

// LookupByDOT returns the FMCSA record for a DOT number.
func (s *CarrierService) LookupByDOT(ctx context.Context, dotNumber string) (*domain.CarrierData, error) {
	return s.shared(ctx, "dot:"+dotNumber, func(ctx context.Context) (*domain.CarrierData, error) {
		return s.fmcsa.SearchByDOT(ctx, dotNumber)
	})
}

// LookupByMC returns the FMCSA record for an MC number.
func (s *CarrierService) LookupByMC(ctx context.Context, mcNumber string) (*domain.CarrierData, error) {
	return s.shared(ctx, "mc:"+mcNumber, func(ctx context.Context) (*domain.CarrierData, error) {
		return s.fmcsa.SearchByMC(ctx, mcNumber)
	})
}

// Verify fetches FMCSA and BrokerSnapshot data concurrently and merges them.
// FMCSA is required; BrokerSnapshot failures only drop the financial profile.
func (s *CarrierService) Verify(ctx context.Context, mcNumber string) (*domain.CarrierData, error) {
	if strings.TrimSpace(mcNumber) == "" {
		return nil, ErrInvalidMCNumber
	}
	return s.shared(ctx, "verify:"+mcNumber, func(ctx context.Context) (*domain.CarrierData, error) {
		return s.verify(ctx, mcNumber)
	})
}

// Status reports the FMCSA client status.
func (s *CarrierService) Status(ctx context.Context) fmcsa.Status {
	return s.fmcsa.Status(ctx)
}

func (s *CarrierService) verify(ctx context.Context, mcNumber string) (*domain.CarrierData, error) {
	var (
		carrier   *domain.CarrierData
		financial *domain.FinancialProfile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		carrier, err = s.fmcsa.SearchByMC(gctx, mcNumber)
		return err
	})
	if s.snapshot != nil {
		g.Go(func() error {
			profile, err := s.snapshot.Profile(gctx, mcNumber)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					s.logger.Info("brokersnapshot data unavailable, using FMCSA only",
						zap.String("mc_number", mcNumber),
						zap.Error(err),
					)
				}
				return nil
			}
			financial = profile
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := *carrier
	if financial != nil {
		merged.Financial = financial
		if carrier.DataSource == domain.DataSourceMock {
			merged.DataSource = domain.DataSourceBrokerSnapshot
		} else {
			merged.DataSource = domain.DataSourceComprehensive
		}
	}
	return &merged, nil
}

// shared collapses concurrent identical lookups into one upstream call.
// The call runs detached from any single caller's cancellation; each caller
// waits on its own context and gets its own copy of the result.
func (s *CarrierService) shared(ctx context.Context, key string, fn func(ctx context.Context) (*domain.CarrierData, error)) (*domain.CarrierData, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		result := *res.Val.(*domain.CarrierData)
		return &result, nil
	}
}
