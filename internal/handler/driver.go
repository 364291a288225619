package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetflow/internal/domain"
	"fleetflow/internal/service"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	driverService  *service.DriverService
	freightService *service.FreightService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService, freightService *service.FreightService) *DriverHandler {
	return &DriverHandler{
		driverService:  driverService,
		freightService: freightService,
	}
}

// UpdateLocationRequest is the HTTP request body for updating driver location.
type UpdateLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// OfferResponseRequest is the HTTP request body for accepting or declining a load.
type OfferResponseRequest struct {
	LoadID string `json:"load_id"`
}

// DriverPreferencesRequest holds a driver's load filters.
type DriverPreferencesRequest struct {
	MaxDistanceMiles float64 `json:"max_distance_miles"`
	MinRatePerMile   float64 `json:"min_rate_per_mile"`
	AutoAccept       bool    `json:"auto_accept"`
}

// RegisterDriverRequest is the HTTP request body for driver registration.
type RegisterDriverRequest struct {
	Name          string                   `json:"name"`
	Phone         string                   `json:"phone"`
	EquipmentType string                   `json:"equipment_type"`
	Preferences   DriverPreferencesRequest `json:"preferences"`
}

// DriverResponse is the HTTP response for driver data.
type DriverResponse struct {
	ID             string                   `json:"id"`
	Name           string                   `json:"name"`
	Phone          string                   `json:"phone"`
	Status         string                   `json:"status"`
	EquipmentType  string                   `json:"equipment_type"`
	Preferences    DriverPreferencesRequest `json:"preferences"`
	CurrentLoadID  string                   `json:"current_load_id,omitempty"`
	HoursRemaining float64                  `json:"hours_remaining"`
}

// Register handles POST /v1/drivers/register
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.driverService.Register(c.Request.Context(), service.RegisterDriverRequest{
		Name:          req.Name,
		Phone:         req.Phone,
		EquipmentType: domain.EquipmentType(req.EquipmentType),
		Preferences: domain.DriverPreferences{
			MaxDistanceMiles: req.Preferences.MaxDistanceMiles,
			MinRatePerMile:   req.Preferences.MinRatePerMile,
			AutoAccept:       req.Preferences.AutoAccept,
		},
	})
	if errors.Is(err, service.ErrDriverAlreadyRegistered) && driver != nil {
		c.JSON(http.StatusConflict, gin.H{
			"message": "Driver already registered",
			"driver":  toDriverResponse(driver),
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toDriverResponse(driver))
}

// GetAll handles GET /v1/drivers
func (h *DriverHandler) GetAll(c *gin.Context) {
	drivers, err := h.driverService.List(c.Request.Context(), domain.DriverStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		response = append(response, toDriverResponse(d))
	}

	c.JSON(http.StatusOK, response)
}

// GoOnline handles POST /v1/drivers/:id/online
func (h *DriverHandler) GoOnline(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.driverService.GoOnline(c.Request.Context(), service.UpdateLocationRequest{
		DriverID: c.Param("id"),
		Lat:      req.Lat,
		Lng:      req.Lng,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// GoOffline handles POST /v1/drivers/:id/offline
func (h *DriverHandler) GoOffline(c *gin.Context) {
	driver, err := h.driverService.GoOffline(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// UpdateLocation handles POST /v1/drivers/:id/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	driverID := c.Param("id")

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.driverService.UpdateLocation(c.Request.Context(), service.UpdateLocationRequest{
		DriverID: driverID,
		Lat:      req.Lat,
		Lng:      req.Lng,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// OfferedLoads handles GET /v1/drivers/:id/loads
func (h *DriverHandler) OfferedLoads(c *gin.Context) {
	loads, err := h.driverService.OfferedLoads(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toLoadResponses(loads))
}

// AcceptLoad handles POST /v1/drivers/:id/accept
func (h *DriverHandler) AcceptLoad(c *gin.Context) {
	var req OfferResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	load, err := h.freightService.AcceptLoad(c.Request.Context(), c.Param("id"), req.LoadID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toLoadResponse(load))
}

// DeclineLoad handles POST /v1/drivers/:id/decline
func (h *DriverHandler) DeclineLoad(c *gin.Context) {
	var req OfferResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	load, err := h.freightService.DeclineLoad(c.Request.Context(), c.Param("id"), req.LoadID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toLoadResponse(load))
}

func toDriverResponse(d *domain.Driver) DriverResponse {
	return DriverResponse{
		ID:            d.ID,
		Name:          d.Name,
		Phone:         d.Phone,
		Status:        string(d.Status),
		EquipmentType: string(d.EquipmentType),
		Preferences: DriverPreferencesRequest{
			MaxDistanceMiles: d.Preferences.MaxDistanceMiles,
			MinRatePerMile:   d.Preferences.MinRatePerMile,
			AutoAccept:       d.Preferences.AutoAccept,
		},
		CurrentLoadID:  d.CurrentLoadID,
		HoursRemaining: d.HoursRemaining,
	}
}
