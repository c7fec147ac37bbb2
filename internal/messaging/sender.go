package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"messaging-service/internal/carrier"
	"messaging-service/internal/model"
	"messaging-service/internal/notify"
	"messaging-service/internal/store"
	"messaging-service/internal/tasks"
	"messaging-service/prometheus"

	"go.uber.org/zap"
)

// Sender is the single path by which any component causes an SMS to leave
// the system. Sends are enqueued for background execution; callers never
// wait on carrier I/O.
type Sender struct {
	customers     *store.CustomerStore
	tenants       *store.TenantStore
	senderNumbers *store.SenderNumberStore
	messages      *store.MessageStore
	provider      carrier.Provider
	notifier      notify.Notifier
	enqueuer      tasks.Enqueuer
	fromNumber    string
	log           *zap.Logger
}

// NewSender creates a new outbound send pipeline. fromNumber is the
// process-wide fallback sender identity, injected rather than global so
// tests can vary it per scenario.
func NewSender(
	customers *store.CustomerStore,
	tenants *store.TenantStore,
	senderNumbers *store.SenderNumberStore,
	messages *store.MessageStore,
	provider carrier.Provider,
	notifier notify.Notifier,
	enqueuer tasks.Enqueuer,
	fromNumber string,
	log *zap.Logger,
) *Sender {
	return &Sender{
		customers:     customers,
		tenants:       tenants,
		senderNumbers: senderNumbers,
		messages:      messages,
		provider:      provider,
		notifier:      notifier,
		enqueuer:      enqueuer,
		fromNumber:    fromNumber,
		log:           log,
	}
}

// Enqueue submits a send for background execution
func (s *Sender) Enqueue(customerID, tenantID uint, body string) error {
	return s.enqueuer.Enqueue("send_message", func(ctx context.Context) error {
		return s.Send(ctx, customerID, tenantID, body)
	})
}

// Send executes one outbound send attempt. A missing customer or tenant is
// a fatal error eligible for the host job system's retry policy. A consent
// refusal is a logged skip, not an error. A carrier failure is captured as
// a failed message row and the attempt is considered complete.
func (s *Sender) Send(ctx context.Context, customerID, tenantID uint, body string) error {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to resolve tenant %d: %w", tenantID, err)
	}

	customer, err := s.customers.FindByID(ctx, tenantID, customerID)
	if err != nil {
		return fmt.Errorf("failed to resolve customer %d: %w", customerID, err)
	}

	// Consent gate: an expected, frequent outcome (e.g. an opted-out
	// customer with reminders still queued), so a skip, not an error.
	if !customer.CanReceiveSMS() {
		s.log.Info("Skipping SMS send - customer has no active consent",
			zap.Uint("customer_id", customer.ID),
			zap.Uint("tenant_id", tenant.ID),
			zap.String("consent_status", string(customer.ConsentStatus)))
		prometheus.RecordMessageSkipped()
		return nil
	}

	from := s.resolveFromNumber(ctx, tenant.ID)

	result, err := s.provider.SendSMS(ctx, customer.Phone, from, body)
	if err != nil {
		var carrierErr *carrier.Error
		if !errors.As(err, &carrierErr) {
			return fmt.Errorf("failed to send SMS: %w", err)
		}

		s.log.Error("Carrier rejected SMS send",
			zap.Uint("customer_id", customer.ID),
			zap.Uint("tenant_id", tenant.ID),
			zap.String("kind", string(carrierErr.Kind)),
			zap.Error(carrierErr))

		failed := model.Message{
			TenantID:     tenant.ID,
			CustomerID:   customer.ID,
			Direction:    model.DirectionOutbound,
			Status:       model.MessageFailed,
			Body:         body,
			ErrorMessage: carrierErr.Error(),
		}
		if createErr := s.messages.Create(ctx, &failed); createErr != nil {
			return fmt.Errorf("failed to record failed message: %w", createErr)
		}
		prometheus.RecordMessageFailed()
		return nil
	}

	msg := model.Message{
		TenantID:   tenant.ID,
		CustomerID: customer.ID,
		Direction:  model.DirectionOutbound,
		Status:     model.MessageSent,
		Body:       body,
		CarrierSID: &result.SID,
	}
	if err := s.messages.Create(ctx, &msg); err != nil {
		return fmt.Errorf("failed to record sent message: %w", err)
	}
	prometheus.RecordMessageSent()

	s.publish(ctx, &msg)

	return nil
}

// resolveFromNumber prefers the tenant's active dedicated number over the
// process-wide fallback.
func (s *Sender) resolveFromNumber(ctx context.Context, tenantID uint) string {
	number, err := s.senderNumbers.ActiveForTenant(ctx, tenantID)
	if err != nil {
		return s.fromNumber
	}
	return number.PhoneNumber
}

func (s *Sender) publish(ctx context.Context, msg *model.Message) {
	if s.notifier == nil {
		return
	}
	event := notify.MessageEvent{
		MessageID:  msg.ID,
		TenantID:   msg.TenantID,
		CustomerID: msg.CustomerID,
		Direction:  msg.Direction,
		OccurredAt: time.Now(),
	}
	if err := s.notifier.PublishMessage(ctx, event); err != nil {
		s.log.Warn("Failed to publish message event",
			zap.Uint("message_id", msg.ID),
			zap.Error(err))
	}
}
