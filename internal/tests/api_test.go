package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fleetflow/internal/app"
	"fleetflow/internal/handler"
	"fleetflow/internal/service"
)

// apiHarness serves the full router over the freight harness mocks.
type apiHarness struct {
	*freightHarness
	carriers *MockCarrierLookup
	router   *gin.Engine
}

func newAPIHarness(h *freightHarness) *apiHarness {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	lookup := NewMockCarrierLookup()
	carriers := service.NewCarrierService(lookup, nil, logger)
	guard := service.NewFraudGuardService(carriers, nil, nil, logger)
	drivers := service.NewDriverService(h.locations, h.cache, h.drivers, h.loads)

	router := app.NewRouter(app.RouterDeps{
		CarrierHandler: handler.NewCarrierHandler(carriers, guard),
		QuoteHandler: handler.NewQuoteHandler(
			service.NewQuoteService(service.NewPricingEngine(service.DefaultPricingTable(), nil)),
			service.NewWarehouseService(nil),
		),
		ShipperHandler: handler.NewShipperHandler(h.shippers),
		DriverHandler:  handler.NewDriverHandler(drivers, h.freight),
		LoadHandler:    handler.NewLoadHandler(h.freight),
		PortalHandler:  handler.NewPortalHandler(h.portal, h.freight),
		Logger:         logger,
	})

	return &apiHarness{freightHarness: h, carriers: lookup, router: router}
}

func (a *apiHarness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

// ──────────────────────────────────────────────
// 1. QUOTES
// ──────────────────────────────────────────────

func TestAPI_FreightQuote(t *testing.T) {
	t.Parallel()
	a := newAPIHarness(newFreightHarness())

	w := a.do(t, http.MethodPost, "/v1/quotes/freight", map[string]any{
		"origin":         "Chicago, IL",
		"destination":    "Dallas, TX",
		"equipment_type": "Dry Van",
		"weight":         30000,
		"urgency":        "medium",
		"distance_miles": 1000,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decode[handler.FreightQuotesResponse](t, w)
	if len(resp.Quotes) != 3 {
		t.Fatalf("expected 3 quotes, got %d", len(resp.Quotes))
	}
	if resp.Recommended == "" || resp.Recommended != resp.Quotes[0].ID {
		t.Errorf("expected first quote %q to be recommended, got %q", resp.Quotes[0].ID, resp.Recommended)
	}
	if !resp.Quotes[0].Recommended {
		t.Error("expected first quote flagged recommended")
	}
}

func TestAPI_FreightQuote_Invalid(t *testing.T) {
	t.Parallel()
	a := newAPIHarness(newFreightHarness())

	tests := []struct {
		name string
		body any
	}{
		{"malformed json", "{not json"},
		{"missing weight", map[string]any{"origin": "Chicago, IL", "destination": "Dallas, TX", "equipment_type": "Dry Van"}},
		{"unknown urgency", map[string]any{"origin": "Chicago, IL", "destination": "Dallas, TX", "equipment_type": "Dry Van", "weight": 1000, "urgency": "yesterday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(t, http.MethodPost, "/v1/quotes/freight", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if resp := decode[handler.ErrorResponse](t, w); resp.Error == "" {
				t.Error("expected error message")
			}
		})
	}
}

func TestAPI_WarehouseQuote(t *testing.T) {
	t.Parallel()
	a := newAPIHarness(newFreightHarness())

	w := a.do(t, http.MethodPost, "/v1/quotes/warehouse", map[string]any{
		"service_type": "Warehouse Storage",
		"duration":     "long_term",
		"volume":       map[string]any{"pallets": 100},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = a.do(t, http.MethodPost, "/v1/quotes/warehouse", map[string]any{
		"service_type": "Warehouse Storage",
		"duration":     "long_term",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without volume, got %d", w.Code)
	}
}

// ──────────────────────────────────────────────
// 2. DRIVERS AND LOADS
// ──────────────────────────────────────────────

func TestAPI_RegisterDriver_Duplicate(t *testing.T) {
	t.Parallel()
	a := newAPIHarness(newFreightHarness())

	body := map[string]any{
		"name":           "Dana",
		"phone":          "555-0100",
		"equipment_type": "Reefer",
	}
	first := a.do(t, http.MethodPost, "/v1/drivers/register", body)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", first.Code, first.Body.String())
	}
	created := decode[handler.DriverResponse](t, first)
	if created.Status != "OFFLINE" {
		t.Errorf("expected OFFLINE, got %s", created.Status)
	}

	second := a.do(t, http.MethodPost, "/v1/drivers/register", body)
	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", second.Code)
	}
	dup := decode[struct {
		Driver handler.DriverResponse `json:"driver"`
	}](t, second)
	if dup.Driver.ID != created.ID {
		t.Errorf("expected existing driver %s, got %s", created.ID, dup.Driver.ID)
	}
}

func TestAPI_AcceptLoad(t *testing.T) {
	t.Parallel()
	a := newAPIHarness(offeredHarness(t))

	w := a.do(t, http.MethodPost, "/v1/drivers/driver-2/accept", map[string]any{"load_id": "load-1"})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for wrong driver, got %d: %s", w.Code, w.Body.String())
	}

	w = a.do(t, http.MethodPost, "/v1/drivers/driver-1/accept", map[string]any{"load_id": "load-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	load := decode[handler.LoadResponse](t, w)
	if load.Status != "ACCEPTED" || load.AssignedDriverID != "driver-1" {
		t.Errorf("expected ACCEPTED by driver-1, got %s/%q", load.Status, load.AssignedDriverID)
	}

	w = a.do(t, http.MethodPost, "/v1/drivers/driver-1/accept", map[string]any{"load_id": "load-1"})
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 on second accept, got %d", w.Code)
	}
}

func TestAPI_UpdateLocation(t *testing.T) {
	t.Parallel()
	h := newFreightHarness()
	h.drivers.AddDriver(onlineDriver("driver-1", "Dry Van", 250, 0))
	a := newAPIHarness(h)

	w := a.do(t, http.MethodPost, "/v1/drivers/driver-1/location", map[string]any{"lat": 41.88, "lng": -87.63})
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}
	if !h.locations.HasLocation("driver-1") {
		t.Error("expected location stored")
	}

	w = a.do(t, http.MethodPost, "/v1/drivers/driver-1/location", map[string]any{"lat": 123, "lng": 0})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid coordinates, got %d", w.Code)
	}
}

func TestAPI_GetLoad_NotFound(t *testing.T) {
	t.Parallel()
	a := newAPIHarness(newFreightHarness())

	w := a.do(t, http.MethodGet, "/v1/loads/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ──────────────────────────────────────────────
// 3. PORTAL AND SHIPPERS
// ──────────────────────────────────────────────

func TestAPI_PortalSubmit(t *testing.T) {
	t.Parallel()
	a := newAPIHarness(newFreightHarness())

	w := a.do(t, http.MethodPost, "/v1/go-with-the-flow/requests", map[string]any{
		"contact": map[string]any{
			"company_name": "Acme Foods",
			"contact_name": "Pat",
			"email":        "Pat@Acme.com",
		},
		"origin":         map[string]any{"lat": 41.8781, "lng": -87.6298, "address": "Chicago, IL"},
		"destination":    map[string]any{"lat": 32.7767, "lng": -96.7970, "address": "Dallas, TX"},
		"equipment_type": "Dry Van",
		"weight":         20000,
		"urgency":        "low",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := decode[handler.PortalSubmitResponse](t, w)
	if !gwfIDPattern.MatchString(resp.Account.GoWithFlowID) {
		t.Errorf("unexpected gwf id %q", resp.Account.GoWithFlowID)
	}
	if resp.Load.Status != "PENDING" {
		t.Errorf("expected PENDING load, got %s", resp.Load.Status)
	}
	if len(resp.Quotes) != 3 || !resp.SelectedQuote.Recommended {
		t.Errorf("expected 3 quotes and the recommended one selected, got %d/%v", len(resp.Quotes), resp.SelectedQuote.Recommended)
	}

	lookup := a.do(t, http.MethodGet, "/v1/shippers?email=pat@acme.com", nil)
	if lookup.Code != http.StatusOK {
		t.Fatalf("expected 200 on lookup, got %d", lookup.Code)
	}
	account := decode[handler.ShipperAccountResponse](t, lookup)
	if account.ID != resp.Account.ID || len(account.ShipmentHistory) != 1 {
		t.Errorf("expected account %s with 1 shipment, got %s with %d", resp.Account.ID, account.ID, len(account.ShipmentHistory))
	}

	metrics := decode[handler.MetricsResponse](t, a.do(t, http.MethodGet, "/v1/go-with-the-flow/metrics", nil))
	if metrics.PendingLoads != 1 || metrics.ActiveLoads != 1 {
		t.Errorf("expected 1 pending/active load, got %+v", metrics)
	}
}

func TestAPI_ShipperLookup_RequiresQuery(t *testing.T) {
	t.Parallel()
	a := newAPIHarness(newFreightHarness())

	if w := a.do(t, http.MethodGet, "/v1/shippers", nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if w := a.do(t, http.MethodGet, "/v1/shippers?email=nobody@example.com", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ──────────────────────────────────────────────
// 4. CARRIERS
// ──────────────────────────────────────────────

func TestAPI_CarrierRisk(t *testing.T) {
	t.Parallel()
	a := newAPIHarness(newFreightHarness())
	a.carriers.AddCarrier(activeCarrier("100"))

	w := a.do(t, http.MethodGet, "/v1/carriers/mc/100/risk", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var assessment map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &assessment); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(assessment) == 0 {
		t.Error("expected assessment body")
	}

	if w := a.do(t, http.MethodGet, "/v1/carriers/mc/404/verify", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown carrier, got %d", w.Code)
	}
}

// ──────────────────────────────────────────────
// 5. MIDDLEWARE
// ──────────────────────────────────────────────

func TestAPI_CORSPreflight(t *testing.T) {
	t.Parallel()
	a := newAPIHarness(newFreightHarness())

	w := a.do(t, http.MethodOptions, "/v1/quotes/freight", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}

	w = a.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 health, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Headers") == "" {
		t.Error("expected CORS headers on normal responses")
	}
}
