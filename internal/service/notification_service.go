package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/passport-portal/internal/events"
)

// NotificationService logs lifecycle events. Actual delivery (email, SMS)
// is out of scope; the wiring exists so a real channel can subscribe later.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventApplicationSubmitted, n.handleApplicationSubmitted)
	n.dispatcher.Subscribe(events.EventAppointmentScheduled, n.handleAppointmentScheduled)
	n.dispatcher.Subscribe(events.EventPaymentRecorded, n.handlePaymentRecorded)
	n.dispatcher.Subscribe(events.EventStatusChanged, n.handleStatusChanged)
}

func (n *NotificationService) handleApplicationSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("ApplicationSubmitted", zap.Int64("application_id", event.ApplicationID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleAppointmentScheduled(ctx context.Context, event events.Event) error {
	n.logger.Info("AppointmentScheduled", zap.Int64("application_id", event.ApplicationID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handlePaymentRecorded(ctx context.Context, event events.Event) error {
	n.logger.Info("PaymentRecorded", zap.Int64("application_id", event.ApplicationID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("StatusChanged", zap.Int64("application_id", event.ApplicationID), zap.Any("payload", event.Payload))
	return nil
}
