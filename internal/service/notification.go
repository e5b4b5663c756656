package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// Payment event types published to the notification pipeline.
const (
	EventPaymentHeld     = "payment.held"
	EventPaymentReleased = "payment.released"
	EventPaymentRefunded = "payment.refunded"
	EventPaymentFailed   = "payment.failed"
)

// Notifier publishes payment lifecycle events.
type Notifier interface {
	NotifyPaymentEvent(ctx context.Context, event, paymentID string) error
}

// Publisher hands a serialized event to a message broker.
type Publisher interface {
	Publish(topic string, body []byte) error
}

// PaymentEvent is the wire shape for broker messages.
type PaymentEvent struct {
	Event      string    `json:"event"`
	PaymentID  string    `json:"payment_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NotificationService fans payment events out to the broker. Publishing is
// best-effort: downstream consumers drive emails and push notifications,
// and a broker outage must never block a payment transition.
type NotificationService struct {
	publisher Publisher
	topic     string
	now       func() time.Time
	logger    *logrus.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(publisher Publisher, topic string, now func() time.Time, logger *logrus.Logger) *NotificationService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &NotificationService{
		publisher: publisher,
		topic:     topic,
		now:       now,
		logger:    logger,
	}
}

// NotifyPaymentEvent serializes and publishes a payment event.
func (s *NotificationService) NotifyPaymentEvent(ctx context.Context, event, paymentID string) error {
	body, err := json.Marshal(PaymentEvent{
		Event:      event,
		PaymentID:  paymentID,
		OccurredAt: s.now(),
	})
	if err != nil {
		return err
	}

	if err := s.publisher.Publish(s.topic, body); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"event":      event,
		"payment_id": paymentID,
		"topic":      s.topic,
	}).Debug("payment event published")
	return nil
}

// LogPublisher is the Publisher used when no broker is configured. Events
// go to the log instead of a topic.
type LogPublisher struct {
	logger *logrus.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger *logrus.Logger) *LogPublisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs the event body.
func (p *LogPublisher) Publish(topic string, body []byte) error {
	p.logger.WithFields(logrus.Fields{
		"topic": topic,
		"body":  string(body),
	}).Info("payment event")
	return nil
}
