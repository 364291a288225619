package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleetflow/internal/domain"
	"fleetflow/internal/service"
)

// PortalHandler handles the Go with the Flow shipper portal and dashboards.
type PortalHandler struct {
	portalService  *service.PortalService
	freightService *service.FreightService
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(portalService *service.PortalService, freightService *service.FreightService) *PortalHandler {
	return &PortalHandler{
		portalService:  portalService,
		freightService: freightService,
	}
}

// PortalSubmitRequest is the HTTP request body for a portal truck request.
type PortalSubmitRequest struct {
	Contact       ContactRequest  `json:"contact"`
	Origin        LocationRequest `json:"origin"`
	Destination   LocationRequest `json:"destination"`
	EquipmentType string          `json:"equipment_type"`
	Weight        float64         `json:"weight"`
	Urgency       string          `json:"urgency"`
	PickupDate    *time.Time      `json:"pickup_date"`
	DeliveryDate  *time.Time      `json:"delivery_date"`
	ServiceTier   string          `json:"service_tier"`
}

// PortalSubmitResponse is the HTTP response for a portal truck request.
type PortalSubmitResponse struct {
	Account       ShipperAccountResponse `json:"account"`
	Load          LoadResponse           `json:"load"`
	Quotes        []QuoteResponse        `json:"quotes"`
	SelectedQuote QuoteResponse          `json:"selected_quote"`
}

// MetricsResponse is the Go with the Flow dashboard snapshot.
type MetricsResponse struct {
	TotalDrivers  int `json:"total_drivers"`
	OnlineDrivers int `json:"online_drivers"`
	OnLoadDrivers int `json:"on_load_drivers"`
	ActiveLoads   int `json:"active_loads"`
	PendingLoads  int `json:"pending_loads"`
	OfferedLoads  int `json:"offered_loads"`
}

// EquipmentBreakdownResponse counts the network by equipment category.
type EquipmentBreakdownResponse struct {
	Drivers map[string]int `json:"drivers"`
	Loads   map[string]int `json:"loads"`
}

// Submit handles POST /v1/go-with-the-flow/requests
func (h *PortalHandler) Submit(c *gin.Context) {
	var req PortalSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.portalService.Submit(c.Request.Context(), service.PortalRequest{
		Contact:       req.Contact.toContact(),
		Origin:        req.Origin.toLocation(),
		Destination:   req.Destination.toLocation(),
		EquipmentType: domain.EquipmentType(req.EquipmentType),
		Weight:        req.Weight,
		Urgency:       domain.Urgency(req.Urgency),
		PickupDate:    derefTime(req.PickupDate),
		DeliveryDate:  derefTime(req.DeliveryDate),
		ServiceTier:   domain.ServiceTier(req.ServiceTier),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	selected := toQuoteResponses([]domain.Quote{result.SelectedQuote})[0]
	respondJSON(c, http.StatusCreated, PortalSubmitResponse{
		Account:       toShipperAccountResponse(result.Account),
		Load:          toLoadResponse(result.Load),
		Quotes:        toQuoteResponses(result.Quotes),
		SelectedQuote: selected,
	})
}

// Metrics handles GET /v1/go-with-the-flow/metrics
func (h *PortalHandler) Metrics(c *gin.Context) {
	m, err := h.freightService.Metrics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, MetricsResponse{
		TotalDrivers:  m.TotalDrivers,
		OnlineDrivers: m.OnlineDrivers,
		OnLoadDrivers: m.OnLoadDrivers,
		ActiveLoads:   m.ActiveLoads,
		PendingLoads:  m.PendingLoads,
		OfferedLoads:  m.OfferedLoads,
	})
}

// Equipment handles GET /v1/go-with-the-flow/equipment
func (h *PortalHandler) Equipment(c *gin.Context) {
	b, err := h.freightService.EquipmentBreakdown(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := EquipmentBreakdownResponse{
		Drivers: make(map[string]int, len(b.Drivers)),
		Loads:   make(map[string]int, len(b.Loads)),
	}
	for k, v := range b.Drivers {
		resp.Drivers[string(k)] = v
	}
	for k, v := range b.Loads {
		resp.Loads[string(k)] = v
	}
	respondJSON(c, http.StatusOK, resp)
}
