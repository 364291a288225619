package domain

import "time"

// ServiceTier is the price/speed tier of a freight quote.
type ServiceTier string

const (
	ServiceTierPremium  ServiceTier = "premium"
	ServiceTierStandard ServiceTier = "standard"
	ServiceTierEconomy  ServiceTier = "economy"
	ServiceTierBudget   ServiceTier = "budget"
)

// RouteClass buckets a lane by length when no real distance is known.
type RouteClass string

const (
	RouteClassShort  RouteClass = "short"
	RouteClassMedium RouteClass = "medium"
	RouteClassLong   RouteClass = "long"
)

// FreightRequest is a shipper's request for freight quotes.
type FreightRequest struct {
	Origin        string
	Destination   string
	EquipmentType EquipmentType
	Weight        float64
	Urgency       Urgency
	PickupDate    time.Time
	DeliveryDate  time.Time
	DistanceMiles float64 // Optional: 0 means estimate
}

// Quote is one carrier offer for a freight request.
type Quote struct {
	ID            string
	Carrier       string
	ServiceTier   ServiceTier
	Rate          float64
	DistanceMiles float64
	RouteClass    RouteClass
	ETA           time.Time
	TransitDays   int
	Confidence    int // 0-100
	Features      []string
	Reasoning     string
	Score         float64
	Recommended   bool
}
