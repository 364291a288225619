package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fleetflow/internal/domain"
)

// PortalService handles Go with the Flow shipper submissions: quote the
// lane, upsert the shipper's account, post the load and record the
// shipment.
type PortalService struct {
	quotes        *QuoteService
	shippers      *ShipperAccountService
	freight       *FreightService
	notifications *NotificationService
	logger        *zap.Logger
}

// NewPortalService creates a new PortalService.
func NewPortalService(
	quotes *QuoteService,
	shippers *ShipperAccountService,
	freight *FreightService,
	notifications *NotificationService,
	logger *zap.Logger,
) *PortalService {
	return &PortalService{
		quotes:        quotes,
		shippers:      shippers,
		freight:       freight,
		notifications: notifications,
		logger:        logger,
	}
}

// PortalRequest is a shipper's truck request from the portal.
type PortalRequest struct {
	Contact       domain.ShipperContact
	Origin        domain.Location
	Destination   domain.Location
	EquipmentType domain.EquipmentType
	Weight        float64
	Urgency       domain.Urgency
	PickupDate    time.Time
	DeliveryDate  time.Time
	ServiceTier   domain.ServiceTier // Optional: empty takes the recommended quote
}

// PortalResult is everything the shipper sees after submitting.
type PortalResult struct {
	Account       *domain.ShipperAccount
	Load          *domain.Load
	Quotes        []domain.Quote
	SelectedQuote domain.Quote
}

// Submit processes a portal request end to end.
func (s *PortalService) Submit(ctx context.Context, req PortalRequest) (*PortalResult, error) {
	if !isValidLocation(req.Origin) || !isValidLocation(req.Destination) {
		return nil, ErrInvalidLocation
	}
	if !req.EquipmentType.Valid() {
		return nil, ErrInvalidEquipmentType
	}

	quotes, err := s.quotes.Generate(ctx, domain.FreightRequest{
		Origin:        req.Origin.Address,
		Destination:   req.Destination.Address,
		EquipmentType: req.EquipmentType,
		Weight:        req.Weight,
		Urgency:       req.Urgency,
		PickupDate:    req.PickupDate,
		DeliveryDate:  req.DeliveryDate,
		DistanceMiles: haversineMiles(req.Origin, req.Destination),
	})
	if err != nil {
		return nil, err
	}
	selected := selectQuote(quotes, req.ServiceTier)

	account, err := s.shippers.CreateOrUpdate(ctx, req.Contact, nil)
	if err != nil {
		return nil, err
	}

	load, err := s.freight.RequestTruck(ctx, RequestTruckRequest{
		ShipperID:     account.ID,
		Origin:        req.Origin,
		Destination:   req.Destination,
		PickupTime:    req.PickupDate,
		DeliveryTime:  req.DeliveryDate,
		Weight:        req.Weight,
		EquipmentType: req.EquipmentType,
		Urgency:       req.Urgency,
	})
	if err != nil {
		return nil, err
	}

	shipment := &domain.ShipmentRequest{
		LoadID:        load.ID,
		Origin:        req.Origin.Address,
		Destination:   req.Destination.Address,
		EquipmentType: load.EquipmentType,
		Weight:        load.Weight,
		Urgency:       load.Urgency,
		PickupDate:    load.PickupTime,
		ServiceTier:   selected.ServiceTier,
		QuotedRate:    selected.Rate,
	}
	if err := s.shippers.RecordShipment(ctx, account, shipment); err != nil {
		return nil, err
	}

	s.logger.Info("portal request submitted",
		zap.String("account_id", account.ID),
		zap.String("gwf_id", account.GoWithFlowID),
		zap.String("load_id", load.ID),
		zap.String("service_tier", string(selected.ServiceTier)),
		zap.Float64("quoted_rate", selected.Rate),
	)
	s.notifications.NotifyShipperRequest(ctx, account, load)

	return &PortalResult{
		Account:       account,
		Load:          load,
		Quotes:        quotes,
		SelectedQuote: selected,
	}, nil
}

// selectQuote returns the quote for tier, or the recommended one.
func selectQuote(quotes []domain.Quote, tier domain.ServiceTier) domain.Quote {
	if tier != "" {
		for _, q := range quotes {
			if q.ServiceTier == tier {
				return q
			}
		}
	}
	for _, q := range quotes {
		if q.Recommended {
			return q
		}
	}
	return quotes[0]
}
