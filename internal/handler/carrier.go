package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetflow/internal/service"
)

// CarrierHandler handles HTTP requests for carrier verification.
type CarrierHandler struct {
	carrierService    *service.CarrierService
	fraudGuardService *service.FraudGuardService
}

// NewCarrierHandler creates a new CarrierHandler.
func NewCarrierHandler(carrierService *service.CarrierService, fraudGuardService *service.FraudGuardService) *CarrierHandler {
	return &CarrierHandler{
		carrierService:    carrierService,
		fraudGuardService: fraudGuardService,
	}
}

// GetByDOT handles GET /v1/carriers/dot/:dot
func (h *CarrierHandler) GetByDOT(c *gin.Context) {
	carrier, err := h.carrierService.LookupByDOT(c.Request.Context(), c.Param("dot"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, carrier)
}

// GetByMC handles GET /v1/carriers/mc/:mc
func (h *CarrierHandler) GetByMC(c *gin.Context) {
	carrier, err := h.carrierService.LookupByMC(c.Request.Context(), c.Param("mc"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, carrier)
}

// Verify handles GET /v1/carriers/mc/:mc/verify
func (h *CarrierHandler) Verify(c *gin.Context) {
	carrier, err := h.carrierService.Verify(c.Request.Context(), c.Param("mc"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, carrier)
}

// Risk handles GET /v1/carriers/mc/:mc/risk
func (h *CarrierHandler) Risk(c *gin.Context) {
	assessment, err := h.fraudGuardService.Assess(c.Request.Context(), c.Param("mc"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, assessment)
}

// Status handles GET /v1/carriers/status
func (h *CarrierHandler) Status(c *gin.Context) {
	respondJSON(c, http.StatusOK, h.carrierService.Status(c.Request.Context()))
}
