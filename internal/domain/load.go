package domain

import "time"

// LoadStatus represents the lifecycle state of a load.
type LoadStatus string

const (
	LoadStatusPending   LoadStatus = "PENDING"
	LoadStatusOffered   LoadStatus = "OFFERED"
	LoadStatusAccepted  LoadStatus = "ACCEPTED"
	LoadStatusInTransit LoadStatus = "IN_TRANSIT"
	LoadStatusDelivered LoadStatus = "DELIVERED"
	LoadStatusCancelled LoadStatus = "CANCELLED"
)

// Urgency is how quickly a shipper needs a load moved.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Valid reports whether u is a known urgency.
func (u Urgency) Valid() bool {
	return u == UrgencyLow || u == UrgencyMedium || u == UrgencyHigh
}

// Location is a geocoded stop.
type Location struct {
	Lat     float64
	Lng     float64
	Address string
}

// Load is a freight shipment on the Go with the Flow network.
type Load struct {
	ID               string
	ShipperID        string
	Origin           Location
	Destination      Location
	PickupTime       time.Time
	DeliveryTime     time.Time
	Weight           float64 // lbs
	EquipmentType    EquipmentType
	Rate             float64 // total USD
	DistanceMiles    float64
	Status           LoadStatus
	AssignedDriverID string
	OfferExpiresAt   time.Time
	Urgency          Urgency
	CreatedAt        time.Time
}

// ActiveLoadStatuses are the statuses that count toward live demand.
var ActiveLoadStatuses = []LoadStatus{
	LoadStatusPending, LoadStatusOffered, LoadStatusAccepted, LoadStatusInTransit,
}

// IsActive reports whether the load still counts toward live demand.
func (l *Load) IsActive() bool {
	for _, s := range ActiveLoadStatuses {
		if l.Status == s {
			return true
		}
	}
	return false
}

// OfferExpired reports whether an outstanding offer has lapsed at now.
func (l *Load) OfferExpired(now time.Time) bool {
	return l.Status == LoadStatusOffered && !l.OfferExpiresAt.IsZero() && now.After(l.OfferExpiresAt)
}
