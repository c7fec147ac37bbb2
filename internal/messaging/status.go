package messaging

import (
	"fmt"
	"time"

	"messaging-service/internal/model"
)

// ApplyCarrierStatus applies a carrier-reported status transition to a
// message, returning whether anything was applied. Unrecognized status
// strings are a no-op so carrier schema drift never faults the callback
// path. Transitions are not ordered: a late callback for an older status
// will overwrite a newer one, matching the carrier's at-least-once,
// unordered delivery.
func ApplyCarrierStatus(msg *model.Message, reported, errorCode, errorMessage string) bool {
	switch reported {
	case "queued":
		msg.Status = model.MessageQueued
	case "sent":
		msg.Status = model.MessageSent
	case "delivered":
		now := time.Now()
		msg.Status = model.MessageDelivered
		msg.DeliveredAt = &now
	case "failed", "undelivered":
		msg.Status = model.MessageStatus(reported)
		msg.ErrorMessage = deriveErrorMessage(errorCode, errorMessage)
	default:
		return false
	}
	return true
}

func deriveErrorMessage(errorCode, errorMessage string) string {
	if errorMessage != "" {
		return errorMessage
	}
	return fmt.Sprintf("Error code: %s", errorCode)
}
