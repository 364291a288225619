package domain

import "time"

// ShipperContact is the contact block submitted with a freight request.
type ShipperContact struct {
	CompanyName string
	ContactName string
	Email       string
	Phone       string
}

// ShipmentRequest is one entry in a shipper's history.
type ShipmentRequest struct {
	ID            string
	AccountID     string
	LoadID        string
	Origin        string
	Destination   string
	EquipmentType EquipmentType
	Weight        float64
	Urgency       Urgency
	PickupDate    time.Time
	ServiceTier   ServiceTier
	QuotedRate    float64
	CreatedAt     time.Time
}

// ShipperAccount is a Go with the Flow customer.
type ShipperAccount struct {
	ID              string
	GoWithFlowID    string
	CompanyName     string
	ContactName     string
	Email           string
	Phone           string
	ShipmentHistory []ShipmentRequest
	TotalSpent      float64
	CreatedAt       time.Time
	LastActivityAt  time.Time
}

// ShipperSummary is the read-only portal view of an account.
type ShipperSummary struct {
	AccountID       string
	GoWithFlowID    string
	ShipmentCount   int
	TotalSpent      float64
	AverageRate     float64
	ByEquipmentType map[EquipmentType]int
	LastActivityAt  time.Time
}
