package fmcsa

import "fleetflow/internal/domain"

// ApplySafetyScore scores a carrier's FMCSA safety record and sets
// SafetyRiskScore, SafetyRiskLevel and SafetyRecommendations.
//
//	unsatisfactory rating       +40
//	conditional rating          +20
//	out of service              +50
//	any fatal crash             +30
//	crashes per power unit >0.1 +15
//	OOS inspection rate >0.2    +25
func ApplySafetyScore(c *domain.CarrierData) {
	score := 0
	var recs []string

	switch c.SafetyRating {
	case domain.SafetyRatingUnsatisfactory:
		score += 40
		recs = append(recs, "Unsatisfactory safety rating - requires immediate attention")
	case domain.SafetyRatingConditional:
		score += 20
		recs = append(recs, "Conditional safety rating - monitor closely")
	}

	if c.OperatingStatus == domain.OperatingStatusOutOfService {
		score += 50
		recs = append(recs, "Carrier is out of service - do not use")
	}

	if c.CrashFatal > 0 {
		score += 30
		recs = append(recs, "Fatal crashes in history - high risk")
	}

	powerUnits := c.PowerUnits
	if powerUnits < 1 {
		powerUnits = 1
	}
	if float64(c.CrashTotal)/float64(powerUnits) > 0.1 {
		score += 15
		recs = append(recs, "High crash rate relative to fleet size")
	}

	if c.InspectionTotal > 0 && float64(c.InspectionOOS)/float64(c.InspectionTotal) > 0.2 {
		score += 25
		recs = append(recs, "High out-of-service rate during inspections")
	}

	if len(recs) == 0 {
		recs = append(recs, "No significant safety concerns identified")
	}

	c.SafetyRiskScore = score
	c.SafetyRiskLevel = safetyLevel(score)
	c.SafetyRecommendations = recs
}

func safetyLevel(score int) domain.SafetyRiskLevel {
	switch {
	case score >= 70:
		return domain.SafetyRiskCritical
	case score >= 40:
		return domain.SafetyRiskHigh
	case score >= 20:
		return domain.SafetyRiskMedium
	default:
		return domain.SafetyRiskLow
	}
}
