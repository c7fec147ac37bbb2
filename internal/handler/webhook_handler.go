package handler

import (
	"fmt"
	"net/http"
	"time"

	"messaging-service/internal/consent"
	"messaging-service/internal/messaging"
	"messaging-service/internal/model"
	"messaging-service/internal/notify"
	"messaging-service/internal/store"
	"messaging-service/pkg/logger"
	"messaging-service/pkg/phone"
	"messaging-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// WebhookHandler accepts carrier-pushed inbound messages and delivery
// status callbacks. Signature verification happens in middleware before
// these handlers run. Both endpoints always acknowledge with a plain "OK"
// once the signature passes; internal errors are never surfaced to the
// carrier, which would otherwise retry uncontrollably.
type WebhookHandler struct {
	customers *store.CustomerStore
	tenants   *store.TenantStore
	messages  *store.MessageStore
	ledger    *consent.Ledger
	sender    *messaging.Sender
	notifier  notify.Notifier
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(
	customers *store.CustomerStore,
	tenants *store.TenantStore,
	messages *store.MessageStore,
	ledger *consent.Ledger,
	sender *messaging.Sender,
	notifier notify.Notifier,
) *WebhookHandler {
	return &WebhookHandler{
		customers: customers,
		tenants:   tenants,
		messages:  messages,
		ledger:    ledger,
		sender:    sender,
		notifier:  notifier,
	}
}

// Inbound handles POST /webhooks/sms/inbound
func (h *WebhookHandler) Inbound(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()

	from := c.FormValue("From")
	body := c.FormValue("Body")
	carrierSID := c.FormValue("MessageSid")

	lookupPhone := from
	if normalized, err := phone.NormalizeE164(from, "US"); err == nil {
		lookupPhone = normalized
	}

	// The tenant is derived from the matched customer, so this lookup is
	// deliberately unscoped. Unknown senders are acknowledged without a
	// record to keep the carrier from retrying.
	customer, err := h.customers.FindByPhoneUnscoped(ctx, lookupPhone)
	if err != nil {
		log.Info("Inbound SMS from unknown number", zap.String("from", from))
		return c.String(http.StatusOK, "OK")
	}

	msg := model.Message{
		TenantID:   customer.TenantID,
		CustomerID: customer.ID,
		Direction:  model.DirectionInbound,
		Status:     model.MessageReceived,
		Body:       body,
	}
	if carrierSID != "" {
		msg.CarrierSID = &carrierSID
	}

	if err := h.messages.Create(ctx, &msg); err != nil {
		log.Error("Failed to persist inbound message",
			zap.Uint("customer_id", customer.ID),
			zap.Error(err))
		return c.String(http.StatusOK, "OK")
	}
	prometheus.RecordInboundMessage()

	switch consent.ClassifyKeyword(body) {
	case consent.KeywordStop:
		metadata := map[string]string{"source": "sms_reply"}
		if carrierSID != "" {
			metadata["carrier_sid"] = carrierSID
		}
		applied, err := h.ledger.OptOut(ctx, customer, "SMS STOP reply", metadata)
		if err != nil {
			log.Error("Failed to record STOP opt-out",
				zap.Uint("customer_id", customer.ID),
				zap.Error(err))
		} else if applied {
			log.Info("Customer opted out via STOP reply",
				zap.Uint("customer_id", customer.ID),
				zap.Uint("tenant_id", customer.TenantID))
		}
		return c.String(http.StatusOK, "OK")

	case consent.KeywordHelp:
		if tenant, err := h.tenants.FindByID(ctx, customer.TenantID); err == nil {
			helpBody := fmt.Sprintf("Reply STOP to unsubscribe. For support, contact %s.", tenant.Name)
			if err := h.sender.Enqueue(customer.ID, customer.TenantID, helpBody); err != nil {
				log.Error("Failed to enqueue HELP auto-reply",
					zap.Uint("customer_id", customer.ID),
					zap.Error(err))
			}
		}
	}

	h.publish(c, &msg)

	return c.String(http.StatusOK, "OK")
}

// StatusCallback handles POST /webhooks/sms/status
func (h *WebhookHandler) StatusCallback(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()

	carrierSID := c.FormValue("MessageSid")
	reported := c.FormValue("MessageStatus")
	errorCode := c.FormValue("ErrorCode")
	errorMessage := c.FormValue("ErrorMessage")

	// Unknown SIDs are expected traffic: out-of-order callbacks, or
	// callbacks for messages this system never sent.
	msg, err := h.messages.FindByCarrierSID(ctx, carrierSID)
	if err != nil {
		return c.String(http.StatusOK, "OK")
	}

	if !messaging.ApplyCarrierStatus(msg, reported, errorCode, errorMessage) {
		log.Warn("Ignoring unrecognized carrier status",
			zap.String("carrier_sid", carrierSID),
			zap.String("status", reported))
		return c.String(http.StatusOK, "OK")
	}

	if err := h.messages.Update(ctx, msg); err != nil {
		log.Error("Failed to apply status transition",
			zap.Uint("message_id", msg.ID),
			zap.String("status", reported),
			zap.Error(err))
		return c.String(http.StatusOK, "OK")
	}
	prometheus.RecordStatusCallback(reported)

	return c.String(http.StatusOK, "OK")
}

func (h *WebhookHandler) publish(c echo.Context, msg *model.Message) {
	if h.notifier == nil {
		return
	}

	log := logger.FromContext(c)
	event := notify.MessageEvent{
		MessageID:  msg.ID,
		TenantID:   msg.TenantID,
		CustomerID: msg.CustomerID,
		Direction:  msg.Direction,
		OccurredAt: time.Now(),
	}
	if err := h.notifier.PublishMessage(c.Request().Context(), event); err != nil {
		log.Warn("Failed to publish message event",
			zap.Uint("message_id", msg.ID),
			zap.Error(err))
	}
}
