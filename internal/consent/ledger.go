package consent

import (
	"context"
	"encoding/json"
	"time"

	"messaging-service/internal/model"
	"messaging-service/prometheus"

	"gorm.io/gorm"
)

// Default audit texts used when the caller supplies none.
const (
	DefaultOptInText    = "Customer provided phone number and consented to SMS notifications"
	DefaultOptOutReason = "Customer opted out"
)

// Ledger serializes all consent state changes for customers. It is the only
// writer of Customer.ConsentStatus and Customer.OptedOutAt; the status
// update and its audit log entry commit in one transaction or not at all.
type Ledger struct {
	db *gorm.DB
}

// NewLedger creates a new consent ledger
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// OptIn records opt-in consent for a customer. Returns false without error
// when the customer is currently opted out; an opted-out customer must not
// be silently re-subscribed.
func (l *Ledger) OptIn(ctx context.Context, customer *model.Customer, consentText string, metadata map[string]string) (bool, error) {
	if customer.OptedOut() {
		return false, nil
	}

	if consentText == "" {
		consentText = DefaultOptInText
	}

	now := time.Now()
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(customer).Updates(map[string]interface{}{
			"consent_status": model.ConsentActive,
			"opted_out_at":   nil,
		}).Error; err != nil {
			return err
		}

		entry := model.ConsentLog{
			CustomerID:  customer.ID,
			EventType:   model.ConsentEventOptedIn,
			ConsentText: consentText,
			ConsentedAt: now,
			Metadata:    encodeMetadata(metadata),
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return false, err
	}

	customer.ConsentStatus = model.ConsentActive
	customer.OptedOutAt = nil
	prometheus.RecordConsentOperation("opt_in")
	return true, nil
}

// OptOut records an opt-out for a customer, e.g. when they reply STOP.
// Returns false without error when the customer cannot currently receive
// SMS (already opted out, or consent still pending).
func (l *Ledger) OptOut(ctx context.Context, customer *model.Customer, reason string, metadata map[string]string) (bool, error) {
	if !customer.CanReceiveSMS() {
		return false, nil
	}

	if reason == "" {
		reason = DefaultOptOutReason
	}

	now := time.Now()
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(customer).Updates(map[string]interface{}{
			"consent_status": model.ConsentOptedOut,
			"opted_out_at":   now,
		}).Error; err != nil {
			return err
		}

		entry := model.ConsentLog{
			CustomerID:  customer.ID,
			EventType:   model.ConsentEventOptedOut,
			ConsentText: reason,
			ConsentedAt: now,
			Metadata:    encodeMetadata(metadata),
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return false, err
	}

	customer.ConsentStatus = model.ConsentOptedOut
	customer.OptedOutAt = &now
	prometheus.RecordConsentOperation("opt_out")
	return true, nil
}

// InitialOptInLog appends the opt-in entry written when a customer is first
// created with a phone number. It runs inside the caller's transaction so
// customer creation and the initial audit entry commit together.
func (l *Ledger) InitialOptInLog(tx *gorm.DB, customer *model.Customer) error {
	if customer.Phone == "" {
		return nil
	}

	entry := model.ConsentLog{
		CustomerID:  customer.ID,
		EventType:   model.ConsentEventOptedIn,
		ConsentText: DefaultOptInText,
		ConsentedAt: time.Now(),
		Metadata:    encodeMetadata(nil),
	}
	return tx.Create(&entry).Error
}

// ListLogs returns a customer's consent history, newest first. The customer
// must belong to the given tenant.
func (l *Ledger) ListLogs(ctx context.Context, tenantID, customerID uint) ([]model.ConsentLog, error) {
	var customer model.Customer
	if err := l.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", customerID, tenantID).
		First(&customer).Error; err != nil {
		return nil, err
	}

	var logs []model.ConsentLog
	err := l.db.WithContext(ctx).
		Where("customer_id = ?", customer.ID).
		Order("consented_at DESC").
		Find(&logs).Error
	return logs, err
}

func encodeMetadata(metadata map[string]string) string {
	if len(metadata) == 0 {
		return "{}"
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}
