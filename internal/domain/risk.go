package domain

import "time"

// RiskLevel is the FraudGuard carrier risk bucket.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// Escalate raises the level by the given number of steps, capped at high.
func (l RiskLevel) Escalate(steps int) RiskLevel {
	order := []RiskLevel{RiskLevelLow, RiskLevelMedium, RiskLevelHigh}
	idx := 0
	for i, lvl := range order {
		if lvl == l {
			idx = i
		}
	}
	idx += steps
	if idx >= len(order) {
		idx = len(order) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return order[idx]
}

// RiskAssessment is the FraudGuard verdict for a carrier.
type RiskAssessment struct {
	MCNumber        string     `json:"mc_number"`
	DOTNumber       string     `json:"dot_number"`
	CompanyName     string     `json:"company_name"`
	RiskLevel       RiskLevel  `json:"risk_level"`
	Confidence      float64    `json:"confidence"`
	Flags           []string   `json:"flags"`
	Recommendations []string   `json:"recommendations"`
	DataSource      DataSource `json:"data_source"`
	Approved        bool       `json:"approved"`
	Degraded        bool       `json:"degraded"` // Fallback response after a lookup failure
	AssessedAt      time.Time  `json:"assessed_at"`
}
