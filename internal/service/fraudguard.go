package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"fleetflow/internal/domain"
)

const (
	lowCreditScoreThreshold = 650
	slowPaymentDays         = 45
	baseConfidence          = 0.75
	enrichedConfidenceBonus = 0.15
	maxConfidence           = 0.95

	flagLowCredit           = "Low credit score detected"
	flagSlowPayment         = "Slow average payment cycle"
	flagPaymentHistory      = "Unfavorable payment history"
	flagNoTracking          = "Real-time tracking not enabled"
	flagUnsatisfactory      = "Unsatisfactory safety rating"
	flagOutOfService        = "Carrier out of service"
	flagConditional         = "Conditional safety rating"
	flagAnalysisUnavailable = "Analysis temporarily unavailable"
	recStandardOnboarding   = "Standard onboarding procedures apply"
	recManualReview         = "Manual review recommended"
	recDoNotTender          = "Do not tender loads to this carrier"
	recMonitorSafety        = "Monitor safety performance on early loads"
)

// FraudGuardService assesses carrier fraud and financial risk.
type FraudGuardService struct {
	carriers      CarrierVerifier
	notifications *NotificationService
	events        *EventBus
	logger        *zap.Logger
	now           func() time.Time
}

// NewFraudGuardService creates a new FraudGuardService.
func NewFraudGuardService(carriers CarrierVerifier, notifications *NotificationService, events *EventBus, logger *zap.Logger) *FraudGuardService {
	return &FraudGuardService{
		carriers:      carriers,
		notifications: notifications,
		events:        events,
		logger:        logger,
		now:           time.Now,
	}
}

// Assess verifies the carrier and scores it. Lookup failures never
// surface as errors: the result degrades to a medium-risk manual review.
func (s *FraudGuardService) Assess(ctx context.Context, mcNumber string) (*domain.RiskAssessment, error) {
	if strings.TrimSpace(mcNumber) == "" {
		return nil, ErrInvalidMCNumber
	}

	carrier, err := s.carriers.Verify(ctx, mcNumber)
	if err != nil {
		s.logger.Warn("fraudguard analysis failed, returning fallback assessment",
			zap.String("mc_number", mcNumber),
			zap.Error(err),
		)
		return s.fallback(mcNumber), nil
	}

	assessment := s.AssessCarrier(carrier)

	s.events.Emit(ctx, EventCarrierAssessed, assessment.MCNumber, assessment)
	if !assessment.Approved {
		s.notifications.NotifyCarrierFlagged(ctx, assessment)
	}
	return assessment, nil
}

// AssessCarrier applies the risk rules to an already merged carrier record.
func (s *FraudGuardService) AssessCarrier(c *domain.CarrierData) *domain.RiskAssessment {
	var flags, recs []string
	add := func(flag, rec string) {
		flags = append(flags, flag)
		recs = append(recs, rec)
	}

	level := domain.RiskLevelLow
	switch {
	case c.OperatingStatus == domain.OperatingStatusOutOfService || c.SafetyRating == domain.SafetyRatingUnsatisfactory:
		level = domain.RiskLevelHigh
	case c.SafetyRating == domain.SafetyRatingConditional,
		c.SafetyRating == domain.SafetyRatingNotRated,
		c.OperatingStatus == domain.OperatingStatusNotAuthorized:
		level = domain.RiskLevelMedium
	}

	if c.SafetyRating == domain.SafetyRatingUnsatisfactory {
		add(flagUnsatisfactory, recDoNotTender)
	}
	if c.OperatingStatus == domain.OperatingStatusOutOfService {
		add(flagOutOfService, recDoNotTender)
	}
	if c.SafetyRating == domain.SafetyRatingConditional {
		add(flagConditional, recMonitorSafety)
	}

	thresholdFlags := 0
	if f := c.Financial; f != nil {
		if f.CreditScore > 0 && f.CreditScore < lowCreditScoreThreshold {
			add(flagLowCredit, "Require quick-pay or factoring agreement")
			thresholdFlags++
		}
		if f.AveragePaymentDays > slowPaymentDays {
			add(flagSlowPayment, "Negotiate shorter payment terms")
			thresholdFlags++
		}
		if f.PaymentHistory == "Fair" || f.PaymentHistory == "Poor" {
			add(flagPaymentHistory, "Review payment references before tendering")
			thresholdFlags++
		}
		if !f.TrackingEnabled {
			add(flagNoTracking, "Require ELD or app-based tracking for loads")
			thresholdFlags++
		}
	}
	level = level.Escalate(thresholdFlags / 2)

	confidence := baseConfidence
	if c.HasFinancialData() {
		confidence += enrichedConfidenceBonus
	}
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	if len(flags) == 0 {
		flags = []string{}
		recs = []string{recStandardOnboarding}
	}

	return &domain.RiskAssessment{
		MCNumber:        c.MCNumber,
		DOTNumber:       c.DOTNumber,
		CompanyName:     c.CompanyName,
		RiskLevel:       level,
		Confidence:      confidence,
		Flags:           flags,
		Recommendations: dedupe(recs),
		DataSource:      c.DataSource,
		Approved:        level != domain.RiskLevelHigh,
		AssessedAt:      s.now().UTC(),
	}
}

func (s *FraudGuardService) fallback(mcNumber string) *domain.RiskAssessment {
	return &domain.RiskAssessment{
		MCNumber:        mcNumber,
		RiskLevel:       domain.RiskLevelMedium,
		Confidence:      0,
		Flags:           []string{flagAnalysisUnavailable},
		Recommendations: []string{recManualReview},
		DataSource:      domain.DataSourceFMCSA,
		Approved:        true,
		Degraded:        true,
		AssessedAt:      s.now().UTC(),
	}
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
