package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleetflow/internal/domain"
	"fleetflow/internal/service"
)

// QuoteHandler handles HTTP requests for freight and warehouse quotes.
type QuoteHandler struct {
	quoteService     *service.QuoteService
	warehouseService *service.WarehouseService
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quoteService *service.QuoteService, warehouseService *service.WarehouseService) *QuoteHandler {
	return &QuoteHandler{
		quoteService:     quoteService,
		warehouseService: warehouseService,
	}
}

// FreightQuoteRequest is the HTTP request body for freight quotes.
type FreightQuoteRequest struct {
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	EquipmentType string     `json:"equipment_type"`
	Weight        float64    `json:"weight"`
	Urgency       string     `json:"urgency"`
	PickupDate    *time.Time `json:"pickup_date"`
	DeliveryDate  *time.Time `json:"delivery_date"`
	DistanceMiles float64    `json:"distance_miles"`
}

// QuoteResponse is the HTTP response for one freight quote.
type QuoteResponse struct {
	ID            string   `json:"id"`
	Carrier       string   `json:"carrier"`
	ServiceTier   string   `json:"service_tier"`
	Rate          float64  `json:"rate"`
	DistanceMiles float64  `json:"distance_miles"`
	RouteClass    string   `json:"route_class"`
	ETA           string   `json:"eta"`
	TransitDays   int      `json:"transit_days"`
	Confidence    int      `json:"confidence"`
	Features      []string `json:"features"`
	Reasoning     string   `json:"reasoning"`
	Score         float64  `json:"score"`
	Recommended   bool     `json:"recommended"`
}

// FreightQuotesResponse is the HTTP response for a freight quote request.
type FreightQuotesResponse struct {
	Quotes      []QuoteResponse `json:"quotes"`
	Recommended string          `json:"recommended"`
}

// Freight handles POST /v1/quotes/freight
func (h *QuoteHandler) Freight(c *gin.Context) {
	var req FreightQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	quotes, err := h.quoteService.Generate(c.Request.Context(), domain.FreightRequest{
		Origin:        req.Origin,
		Destination:   req.Destination,
		EquipmentType: domain.EquipmentType(req.EquipmentType),
		Weight:        req.Weight,
		Urgency:       domain.Urgency(req.Urgency),
		PickupDate:    derefTime(req.PickupDate),
		DeliveryDate:  derefTime(req.DeliveryDate),
		DistanceMiles: req.DistanceMiles,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := FreightQuotesResponse{Quotes: toQuoteResponses(quotes)}
	for _, q := range quotes {
		if q.Recommended {
			resp.Recommended = q.ID
		}
	}
	respondJSON(c, http.StatusOK, resp)
}

// WarehouseVolumeRequest is the expected storage footprint.
type WarehouseVolumeRequest struct {
	Pallets int     `json:"pallets"`
	SqFt    int     `json:"sq_ft"`
	Items   int     `json:"items"`
	Weight  float64 `json:"weight"`
}

// WarehouseQuoteRequest is the HTTP request body for warehouse quotes.
type WarehouseQuoteRequest struct {
	ServiceType         string                 `json:"service_type"`
	Duration            string                 `json:"duration"`
	Volume              WarehouseVolumeRequest `json:"volume"`
	SpecialRequirements []string               `json:"special_requirements"`
	PreferredLocation   string                 `json:"preferred_location"`
	ContactEmail        string                 `json:"contact_email"`
}

// AdditionalServiceResponse is a priced add-on line.
type AdditionalServiceResponse struct {
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

// WarehousePricingResponse breaks down a warehouse quote.
type WarehousePricingResponse struct {
	MonthlyRate        float64                     `json:"monthly_rate"`
	SetupFee           float64                     `json:"setup_fee"`
	AdditionalServices []AdditionalServiceResponse `json:"additional_services"`
	TotalEstimate      float64                     `json:"total_estimate"`
}

// WarehouseQuoteResponse is the HTTP response for one warehouse quote.
type WarehouseQuoteResponse struct {
	ID            string                   `json:"id"`
	WarehouseID   string                   `json:"warehouse_id"`
	WarehouseName string                   `json:"warehouse_name"`
	Location      string                   `json:"location"`
	ServiceType   string                   `json:"service_type"`
	Duration      string                   `json:"duration"`
	Pricing       WarehousePricingResponse `json:"pricing"`
	SetupTime     string                   `json:"setup_time"`
	Features      []string                 `json:"features"`
	Compliance    []string                 `json:"compliance"`
	Confidence    int                      `json:"confidence"`
}

// Warehouse handles POST /v1/quotes/warehouse
func (h *QuoteHandler) Warehouse(c *gin.Context) {
	var req WarehouseQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	quotes, err := h.warehouseService.GenerateWarehouseQuote(c.Request.Context(), domain.WarehouseQuoteRequest{
		ServiceType: req.ServiceType,
		Duration:    domain.WarehouseDuration(req.Duration),
		Volume: domain.WarehouseVolume{
			Pallets: req.Volume.Pallets,
			SqFt:    req.Volume.SqFt,
			Items:   req.Volume.Items,
			Weight:  req.Volume.Weight,
		},
		SpecialRequirements: req.SpecialRequirements,
		PreferredLocation:   req.PreferredLocation,
		ContactEmail:        req.ContactEmail,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]WarehouseQuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		addOns := make([]AdditionalServiceResponse, 0, len(q.Pricing.AdditionalServices))
		for _, a := range q.Pricing.AdditionalServices {
			addOns = append(addOns, AdditionalServiceResponse{Name: a.Name, Rate: a.Rate})
		}
		response = append(response, WarehouseQuoteResponse{
			ID:            q.ID,
			WarehouseID:   q.WarehouseID,
			WarehouseName: q.WarehouseName,
			Location:      q.Location,
			ServiceType:   q.ServiceType,
			Duration:      string(q.Duration),
			Pricing: WarehousePricingResponse{
				MonthlyRate:        q.Pricing.MonthlyRate,
				SetupFee:           q.Pricing.SetupFee,
				AdditionalServices: addOns,
				TotalEstimate:      q.Pricing.TotalEstimate,
			},
			SetupTime:  q.SetupTime,
			Features:   q.Features,
			Compliance: q.Compliance,
			Confidence: q.Confidence,
		})
	}

	respondJSON(c, http.StatusOK, response)
}

func toQuoteResponses(quotes []domain.Quote) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, QuoteResponse{
			ID:            q.ID,
			Carrier:       q.Carrier,
			ServiceTier:   string(q.ServiceTier),
			Rate:          q.Rate,
			DistanceMiles: q.DistanceMiles,
			RouteClass:    string(q.RouteClass),
			ETA:           q.ETA.Format(time.RFC3339),
			TransitDays:   q.TransitDays,
			Confidence:    q.Confidence,
			Features:      q.Features,
			Reasoning:     q.Reasoning,
			Score:         q.Score,
			Recommended:   q.Recommended,
		})
	}
	return out
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
