package domain

import "time"

// SafetyRating is the FMCSA safety rating of a carrier.
type SafetyRating string

const (
	SafetyRatingSatisfactory   SafetyRating = "SATISFACTORY"
	SafetyRatingConditional    SafetyRating = "CONDITIONAL"
	SafetyRatingUnsatisfactory SafetyRating = "UNSATISFACTORY"
	SafetyRatingNotRated       SafetyRating = "NOT_RATED"
)

// OperatingStatus is the FMCSA operating authority status of a carrier.
type OperatingStatus string

const (
	OperatingStatusActive        OperatingStatus = "ACTIVE"
	OperatingStatusOutOfService  OperatingStatus = "OUT_OF_SERVICE"
	OperatingStatusNotAuthorized OperatingStatus = "NOT_AUTHORIZED"
)

// InsuranceStatus describes whether the carrier's required insurance is on file.
type InsuranceStatus string

const (
	InsuranceStatusActive  InsuranceStatus = "ACTIVE"
	InsuranceStatusPending InsuranceStatus = "PENDING"
	InsuranceStatusLapsed  InsuranceStatus = "LAPSED"
	InsuranceStatusUnknown InsuranceStatus = "UNKNOWN"
)

// DataSource identifies where a carrier record came from.
type DataSource string

const (
	DataSourceFMCSA          DataSource = "FMCSA_API"
	DataSourceCache          DataSource = "CACHE"
	DataSourceMock           DataSource = "MOCK"
	DataSourceComprehensive  DataSource = "COMPREHENSIVE"
	DataSourceBrokerSnapshot DataSource = "BROKERSNAPSHOT"
)

// SafetyRiskLevel is the FMCSA-derived safety risk bucket.
type SafetyRiskLevel string

const (
	SafetyRiskLow      SafetyRiskLevel = "LOW"
	SafetyRiskMedium   SafetyRiskLevel = "MEDIUM"
	SafetyRiskHigh     SafetyRiskLevel = "HIGH"
	SafetyRiskCritical SafetyRiskLevel = "CRITICAL"
)

// FinancialProfile holds BrokerSnapshot credit and payment data.
type FinancialProfile struct {
	CreditScore        int    `json:"credit_score"`
	PaymentHistory     string `json:"payment_history"` // Excellent, Good, Fair, Poor
	AveragePaymentDays int    `json:"average_payment_days"`
	TrackingEnabled    bool   `json:"tracking_enabled"`
}

// CarrierData is a carrier record merged from FMCSA and BrokerSnapshot.
type CarrierData struct {
	MCNumber        string          `json:"mc_number"`
	DOTNumber       string          `json:"dot_number"`
	CompanyName     string          `json:"company_name"`
	DBAName         string          `json:"dba_name,omitempty"`
	PhysicalAddress string          `json:"physical_address"`
	MailingAddress  string          `json:"mailing_address,omitempty"`
	Phone           string          `json:"phone"`
	SafetyRating    SafetyRating    `json:"safety_rating"`
	InsuranceStatus InsuranceStatus `json:"insurance_status"`
	OperatingStatus OperatingStatus `json:"operating_status"`
	EntityType      string          `json:"entity_type"`
	PowerUnits      int             `json:"power_units"`
	Drivers         int             `json:"drivers"`
	EquipmentTypes  []string        `json:"equipment_types,omitempty"`
	CargoCarried    []string        `json:"cargo_carried,omitempty"`

	CrashTotal      int `json:"crash_total"`
	CrashFatal      int `json:"crash_fatal"`
	CrashInjury     int `json:"crash_injury"`
	InspectionTotal int `json:"inspection_total"`
	InspectionOOS   int `json:"inspection_oos"`

	SafetyRiskScore       int             `json:"safety_risk_score"`
	SafetyRiskLevel       SafetyRiskLevel `json:"safety_risk_level"`
	SafetyRecommendations []string        `json:"safety_recommendations,omitempty"`

	// Financial is nil when no BrokerSnapshot data was available.
	Financial *FinancialProfile `json:"financial,omitempty"`

	DataSource  DataSource `json:"data_source"`
	RetrievedAt time.Time  `json:"retrieved_at"`
}

// HasFinancialData reports whether BrokerSnapshot enrichment is present.
func (c *CarrierData) HasFinancialData() bool {
	return c.Financial != nil
}
