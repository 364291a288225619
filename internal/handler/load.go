package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleetflow/internal/domain"
	"fleetflow/internal/service"
)

// LoadHandler handles HTTP requests for loads.
type LoadHandler struct {
	freightService *service.FreightService
}

// NewLoadHandler creates a new LoadHandler.
func NewLoadHandler(freightService *service.FreightService) *LoadHandler {
	return &LoadHandler{freightService: freightService}
}

// LocationRequest is a geocoded stop.
type LocationRequest struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

// CreateLoadRequest is the HTTP request body for requesting a truck.
type CreateLoadRequest struct {
	ShipperID     string          `json:"shipper_id"`
	Origin        LocationRequest `json:"origin"`
	Destination   LocationRequest `json:"destination"`
	PickupTime    *time.Time      `json:"pickup_time"`
	DeliveryTime  *time.Time      `json:"delivery_time"`
	Weight        float64         `json:"weight"`
	EquipmentType string          `json:"equipment_type"`
	Urgency       string          `json:"urgency"`
}

// LoadResponse is the HTTP response for load data.
type LoadResponse struct {
	ID               string          `json:"id"`
	ShipperID        string          `json:"shipper_id"`
	Origin           LocationRequest `json:"origin"`
	Destination      LocationRequest `json:"destination"`
	PickupTime       string          `json:"pickup_time,omitempty"`
	DeliveryTime     string          `json:"delivery_time,omitempty"`
	Weight           float64         `json:"weight"`
	EquipmentType    string          `json:"equipment_type"`
	Rate             float64         `json:"rate"`
	DistanceMiles    float64         `json:"distance_miles"`
	Status           string          `json:"status"`
	AssignedDriverID string          `json:"assigned_driver_id,omitempty"`
	OfferExpiresAt   string          `json:"offer_expires_at,omitempty"`
	Urgency          string          `json:"urgency"`
	CreatedAt        string          `json:"created_at"`
}

// CreateLoad handles POST /v1/loads
func (h *LoadHandler) CreateLoad(c *gin.Context) {
	var req CreateLoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	load, err := h.freightService.RequestTruck(c.Request.Context(), service.RequestTruckRequest{
		ShipperID:     req.ShipperID,
		Origin:        req.Origin.toLocation(),
		Destination:   req.Destination.toLocation(),
		PickupTime:    derefTime(req.PickupTime),
		DeliveryTime:  derefTime(req.DeliveryTime),
		Weight:        req.Weight,
		EquipmentType: domain.EquipmentType(req.EquipmentType),
		Urgency:       domain.Urgency(req.Urgency),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toLoadResponse(load))
}

// GetAll handles GET /v1/loads
func (h *LoadHandler) GetAll(c *gin.Context) {
	loads, err := h.freightService.ListLoads(c.Request.Context(), domain.LoadStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toLoadResponses(loads))
}

// GetLoad handles GET /v1/loads/:id
func (h *LoadHandler) GetLoad(c *gin.Context) {
	load, err := h.freightService.GetLoad(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toLoadResponse(load))
}

func (r LocationRequest) toLocation() domain.Location {
	return domain.Location{Lat: r.Lat, Lng: r.Lng, Address: r.Address}
}

func fromLocation(l domain.Location) LocationRequest {
	return LocationRequest{Lat: l.Lat, Lng: l.Lng, Address: l.Address}
}

func toLoadResponse(l *domain.Load) LoadResponse {
	return LoadResponse{
		ID:               l.ID,
		ShipperID:        l.ShipperID,
		Origin:           fromLocation(l.Origin),
		Destination:      fromLocation(l.Destination),
		PickupTime:       formatTime(l.PickupTime),
		DeliveryTime:     formatTime(l.DeliveryTime),
		Weight:           l.Weight,
		EquipmentType:    string(l.EquipmentType),
		Rate:             l.Rate,
		DistanceMiles:    l.DistanceMiles,
		Status:           string(l.Status),
		AssignedDriverID: l.AssignedDriverID,
		OfferExpiresAt:   formatTime(l.OfferExpiresAt),
		Urgency:          string(l.Urgency),
		CreatedAt:        formatTime(l.CreatedAt),
	}
}

func toLoadResponses(loads []*domain.Load) []LoadResponse {
	response := make([]LoadResponse, 0, len(loads))
	for _, l := range loads {
		response = append(response, toLoadResponse(l))
	}
	return response
}
