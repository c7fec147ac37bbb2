package handler

import (
	"net/http"
	"strconv"

	"messaging-service/internal/consent"
	"messaging-service/internal/messaging"
	"messaging-service/internal/store"
	"messaging-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// MessageHandler serves the operator messaging API. Every route requires a
// tenant context from the JWT claims; all lookups are scoped to it.
type MessageHandler struct {
	customers *store.CustomerStore
	messages  *store.MessageStore
	ledger    *consent.Ledger
	sender    *messaging.Sender
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(customers *store.CustomerStore, messages *store.MessageStore, ledger *consent.Ledger, sender *messaging.Sender) *MessageHandler {
	return &MessageHandler{
		customers: customers,
		messages:  messages,
		ledger:    ledger,
		sender:    sender,
	}
}

// ListMessages handles GET /api/customers/:id/messages
func (h *MessageHandler) ListMessages(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()

	tenantID, ok := c.Get("tenant_id").(uint)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	customerID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}

	customer, err := h.customers.FindByID(ctx, tenantID, customerID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}

	messages, err := h.messages.ListByCustomer(ctx, tenantID, customer.ID)
	if err != nil {
		log.Error("Failed to list messages",
			zap.Uint("tenant_id", tenantID),
			zap.Uint("customer_id", customer.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list messages"})
	}

	return c.JSON(http.StatusOK, echo.Map{"messages": messages})
}

// Compose handles POST /api/messages
func (h *MessageHandler) Compose(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()

	tenantID, ok := c.Get("tenant_id").(uint)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	var req struct {
		CustomerID uint   `json:"customer_id"`
		Body       string `json:"body"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Body == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body is required"})
	}

	customer, err := h.customers.FindByID(ctx, tenantID, req.CustomerID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}

	if err := h.sender.Enqueue(customer.ID, tenantID, req.Body); err != nil {
		log.Error("Failed to enqueue message send",
			zap.Uint("tenant_id", tenantID),
			zap.Uint("customer_id", customer.ID),
			zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "failed to queue message"})
	}

	return c.JSON(http.StatusAccepted, echo.Map{"status": "queued"})
}

// ListConsentLogs handles GET /api/customers/:id/consent-logs
func (h *MessageHandler) ListConsentLogs(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := c.Get("tenant_id").(uint)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	customerID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}

	logs, err := h.ledger.ListLogs(ctx, tenantID, customerID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"consent_logs": logs})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
