package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleetflow/internal/domain"
	"fleetflow/internal/messaging"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationLoadOffered    NotificationType = "LOAD_OFFERED"
	NotificationLoadAccepted   NotificationType = "LOAD_ACCEPTED"
	NotificationLoadDeclined   NotificationType = "LOAD_DECLINED"
	NotificationOfferExpired   NotificationType = "OFFER_EXPIRED"
	NotificationShipperRequest NotificationType = "SHIPPER_REQUEST"
	NotificationCarrierFlagged NotificationType = "CARRIER_FLAGGED"
)

// Notification represents a notification to be sent.
type Notification struct {
	ID          string           `json:"id"`
	Type        NotificationType `json:"type"`
	RecipientID string           `json:"recipient_id"` // Driver, shipper account or "dispatch"
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Data        map[string]any   `json:"data,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// dispatchRecipient receives notifications meant for the brokerage desk.
const dispatchRecipient = "dispatch"

// NotificationService builds notifications and hands them to a dispatcher.
type NotificationService struct {
	dispatcher messaging.Publisher
	logger     *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(dispatcher messaging.Publisher, logger *zap.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, logger: logger}
}

// NotifyLoadOffered tells a driver a load is waiting for their response.
func (s *NotificationService) NotifyLoadOffered(ctx context.Context, load *domain.Load, driver *domain.Driver) {
	s.send(ctx, Notification{
		Type:        NotificationLoadOffered,
		RecipientID: driver.ID,
		Title:       "New Load Offer",
		Message: fmt.Sprintf("%s to %s, $%.2f. Respond by %s",
			load.Origin.Address, load.Destination.Address, load.Rate, load.OfferExpiresAt.Format(time.Kitchen)),
		Data: map[string]any{
			"load_id":          load.ID,
			"rate":             load.Rate,
			"equipment_type":   load.EquipmentType,
			"offer_expires_at": load.OfferExpiresAt,
		},
	})
}

// NotifyLoadAccepted tells the shipper a driver took their load.
func (s *NotificationService) NotifyLoadAccepted(ctx context.Context, load *domain.Load, driver *domain.Driver) {
	s.send(ctx, Notification{
		Type:        NotificationLoadAccepted,
		RecipientID: load.ShipperID,
		Title:       "Load Accepted",
		Message:     fmt.Sprintf("Driver %s accepted load %s", driver.Name, load.ID),
		Data: map[string]any{
			"load_id":   load.ID,
			"driver_id": driver.ID,
		},
	})
}

// NotifyLoadDeclined tells dispatch a driver passed on an offer.
func (s *NotificationService) NotifyLoadDeclined(ctx context.Context, load *domain.Load, driverID string) {
	s.send(ctx, Notification{
		Type:        NotificationLoadDeclined,
		RecipientID: dispatchRecipient,
		Title:       "Load Declined",
		Message:     fmt.Sprintf("Load %s was declined and returned to the queue", load.ID),
		Data: map[string]any{
			"load_id":   load.ID,
			"driver_id": driverID,
		},
	})
}

// NotifyOfferExpired tells the driver their offer lapsed.
func (s *NotificationService) NotifyOfferExpired(ctx context.Context, load *domain.Load, driverID string) {
	s.send(ctx, Notification{
		Type:        NotificationOfferExpired,
		RecipientID: driverID,
		Title:       "Offer Expired",
		Message:     fmt.Sprintf("The offer for load %s has expired", load.ID),
		Data:        map[string]any{"load_id": load.ID},
	})
}

// NotifyShipperRequest tells dispatch a shipper submitted a truck request.
func (s *NotificationService) NotifyShipperRequest(ctx context.Context, account *domain.ShipperAccount, load *domain.Load) {
	s.send(ctx, Notification{
		Type:        NotificationShipperRequest,
		RecipientID: dispatchRecipient,
		Title:       "New Shipper Request",
		Message: fmt.Sprintf("%s (%s) requested %s from %s to %s",
			account.CompanyName, account.GoWithFlowID, load.EquipmentType, load.Origin.Address, load.Destination.Address),
		Data: map[string]any{
			"account_id": account.ID,
			"gwf_id":     account.GoWithFlowID,
			"load_id":    load.ID,
		},
	})
}

// NotifyCarrierFlagged tells dispatch a carrier failed risk screening.
func (s *NotificationService) NotifyCarrierFlagged(ctx context.Context, assessment *domain.RiskAssessment) {
	s.send(ctx, Notification{
		Type:        NotificationCarrierFlagged,
		RecipientID: dispatchRecipient,
		Title:       "Carrier Flagged",
		Message:     fmt.Sprintf("%s (MC %s) assessed %s risk", assessment.CompanyName, assessment.MCNumber, assessment.RiskLevel),
		Data: map[string]any{
			"mc_number":  assessment.MCNumber,
			"risk_level": assessment.RiskLevel,
			"flags":      assessment.Flags,
		},
	})
}

// send delivers a notification. Delivery failures are logged, not returned.
func (s *NotificationService) send(ctx context.Context, n Notification) {
	if s == nil || s.dispatcher == nil {
		return
	}
	n.ID = uuid.New().String()
	n.CreatedAt = time.Now().UTC()

	if err := s.dispatcher.Publish(ctx, n.ID, n); err != nil {
		s.logger.Warn("failed to dispatch notification",
			zap.String("type", string(n.Type)),
			zap.String("recipient", n.RecipientID),
			zap.Error(err),
		)
	}
}
