package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleetflow/internal/domain"
	"fleetflow/internal/service"
)

// ShipperHandler handles HTTP requests for shipper accounts.
type ShipperHandler struct {
	shipperService *service.ShipperAccountService
}

// NewShipperHandler creates a new ShipperHandler.
func NewShipperHandler(shipperService *service.ShipperAccountService) *ShipperHandler {
	return &ShipperHandler{shipperService: shipperService}
}

// ContactRequest is the shipper contact block.
type ContactRequest struct {
	CompanyName string `json:"company_name"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

// ShipmentRequestBody is an optional shipment recorded with an upsert.
type ShipmentRequestBody struct {
	LoadID        string     `json:"load_id"`
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	EquipmentType string     `json:"equipment_type"`
	Weight        float64    `json:"weight"`
	Urgency       string     `json:"urgency"`
	PickupDate    *time.Time `json:"pickup_date"`
	ServiceTier   string     `json:"service_tier"`
	QuotedRate    float64    `json:"quoted_rate"`
}

// UpsertShipperRequest is the HTTP request body for POST /v1/shippers.
type UpsertShipperRequest struct {
	ContactRequest
	Shipment *ShipmentRequestBody `json:"shipment"`
}

// ShipmentResponse is one entry of a shipper's history.
type ShipmentResponse struct {
	ID            string  `json:"id"`
	LoadID        string  `json:"load_id,omitempty"`
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	EquipmentType string  `json:"equipment_type"`
	Weight        float64 `json:"weight"`
	Urgency       string  `json:"urgency"`
	PickupDate    string  `json:"pickup_date,omitempty"`
	ServiceTier   string  `json:"service_tier"`
	QuotedRate    float64 `json:"quoted_rate"`
	CreatedAt     string  `json:"created_at"`
}

// ShipperAccountResponse is the HTTP response for shipper account data.
type ShipperAccountResponse struct {
	ID              string             `json:"id"`
	GoWithFlowID    string             `json:"gwf_id"`
	CompanyName     string             `json:"company_name"`
	ContactName     string             `json:"contact_name"`
	Email           string             `json:"email"`
	Phone           string             `json:"phone"`
	ShipmentHistory []ShipmentResponse `json:"shipment_history"`
	TotalSpent      float64            `json:"total_spent"`
	CreatedAt       string             `json:"created_at"`
	LastActivityAt  string             `json:"last_activity_at"`
}

// ShipperSummaryResponse is the HTTP response for the portal summary.
type ShipperSummaryResponse struct {
	AccountID       string         `json:"account_id"`
	GoWithFlowID    string         `json:"gwf_id"`
	ShipmentCount   int            `json:"shipment_count"`
	TotalSpent      float64        `json:"total_spent"`
	AverageRate     float64        `json:"average_rate"`
	ByEquipmentType map[string]int `json:"by_equipment_type"`
	LastActivityAt  string         `json:"last_activity_at"`
}

// Upsert handles POST /v1/shippers
func (h *ShipperHandler) Upsert(c *gin.Context) {
	var req UpsertShipperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	var shipment *domain.ShipmentRequest
	if s := req.Shipment; s != nil {
		shipment = &domain.ShipmentRequest{
			LoadID:        s.LoadID,
			Origin:        s.Origin,
			Destination:   s.Destination,
			EquipmentType: domain.EquipmentType(s.EquipmentType),
			Weight:        s.Weight,
			Urgency:       domain.Urgency(s.Urgency),
			PickupDate:    derefTime(s.PickupDate),
			ServiceTier:   domain.ServiceTier(s.ServiceTier),
			QuotedRate:    s.QuotedRate,
		}
	}

	account, err := h.shipperService.CreateOrUpdate(c.Request.Context(), req.toContact(), shipment)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toShipperAccountResponse(account))
}

// Lookup handles GET /v1/shippers?email= or ?gwf=
func (h *ShipperHandler) Lookup(c *gin.Context) {
	var (
		account *domain.ShipperAccount
		err     error
	)
	switch {
	case c.Query("email") != "":
		account, err = h.shipperService.GetByEmail(c.Request.Context(), c.Query("email"))
	case c.Query("gwf") != "":
		account, err = h.shipperService.GetByGoWithFlowID(c.Request.Context(), c.Query("gwf"))
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "email or gwf query parameter is required"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toShipperAccountResponse(account))
}

// Get handles GET /v1/shippers/:id
func (h *ShipperHandler) Get(c *gin.Context) {
	account, err := h.shipperService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toShipperAccountResponse(account))
}

// Summary handles GET /v1/shippers/:id/summary
func (h *ShipperHandler) Summary(c *gin.Context) {
	summary, err := h.shipperService.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	byEquipment := make(map[string]int, len(summary.ByEquipmentType))
	for k, v := range summary.ByEquipmentType {
		byEquipment[string(k)] = v
	}
	respondJSON(c, http.StatusOK, ShipperSummaryResponse{
		AccountID:       summary.AccountID,
		GoWithFlowID:    summary.GoWithFlowID,
		ShipmentCount:   summary.ShipmentCount,
		TotalSpent:      summary.TotalSpent,
		AverageRate:     summary.AverageRate,
		ByEquipmentType: byEquipment,
		LastActivityAt:  formatTime(summary.LastActivityAt),
	})
}

func (r ContactRequest) toContact() domain.ShipperContact {
	return domain.ShipperContact{
		CompanyName: r.CompanyName,
		ContactName: r.ContactName,
		Email:       r.Email,
		Phone:       r.Phone,
	}
}

func toShipperAccountResponse(a *domain.ShipperAccount) ShipperAccountResponse {
	history := make([]ShipmentResponse, 0, len(a.ShipmentHistory))
	for _, s := range a.ShipmentHistory {
		history = append(history, ShipmentResponse{
			ID:            s.ID,
			LoadID:        s.LoadID,
			Origin:        s.Origin,
			Destination:   s.Destination,
			EquipmentType: string(s.EquipmentType),
			Weight:        s.Weight,
			Urgency:       string(s.Urgency),
			PickupDate:    formatTime(s.PickupDate),
			ServiceTier:   string(s.ServiceTier),
			QuotedRate:    s.QuotedRate,
			CreatedAt:     formatTime(s.CreatedAt),
		})
	}
	return ShipperAccountResponse{
		ID:              a.ID,
		GoWithFlowID:    a.GoWithFlowID,
		CompanyName:     a.CompanyName,
		ContactName:     a.ContactName,
		Email:           a.Email,
		Phone:           a.Phone,
		ShipmentHistory: history,
		TotalSpent:      a.TotalSpent,
		CreatedAt:       formatTime(a.CreatedAt),
		LastActivityAt:  formatTime(a.LastActivityAt),
	}
}

// formatTime renders t as RFC 3339, or "" when unset.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
