package domain

// WarehouseDuration is the contract length of a warehousing engagement.
type WarehouseDuration string

const (
	DurationShortTerm WarehouseDuration = "short_term"
	DurationLongTerm  WarehouseDuration = "long_term"
	DurationSeasonal  WarehouseDuration = "seasonal"
	DurationPermanent WarehouseDuration = "permanent"
)

// WarehouseVolume is the expected storage footprint.
type WarehouseVolume struct {
	Pallets int
	SqFt    int
	Items   int
	Weight  float64
}

// WarehouseQuoteRequest is a shipper's request for warehousing quotes.
type WarehouseQuoteRequest struct {
	ServiceType         string
	Duration            WarehouseDuration
	Volume              WarehouseVolume
	SpecialRequirements []string
	PreferredLocation   string
	ContactEmail        string
}

// Warehouse is a partner facility in the quoting catalog.
type Warehouse struct {
	ID          string
	Name        string
	Location    string
	PriceFactor float64
	SetupFee    float64
	SetupTime   string
	Features    []string
	Compliance  []string
	Confidence  int
}

// AdditionalService is a priced add-on line in a warehouse quote.
type AdditionalService struct {
	Name string
	Rate float64
}

// WarehousePricing breaks down a warehouse quote.
type WarehousePricing struct {
	MonthlyRate        float64
	SetupFee           float64
	AdditionalServices []AdditionalService
	TotalEstimate      float64
}

// WarehouseQuote is one facility's offer.
type WarehouseQuote struct {
	ID            string
	WarehouseID   string
	WarehouseName string
	Location      string
	ServiceType   string
	Duration      WarehouseDuration
	Pricing       WarehousePricing
	SetupTime     string
	Features      []string
	Compliance    []string
	Confidence    int
}
