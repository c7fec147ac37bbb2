package model

import (
	"time"

	"gorm.io/gorm"
)

// Direction distinguishes carrier-originated from tenant-originated
// messages.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// MessageStatus is the delivery lifecycle state of a message. Inbound
// messages are created in their terminal "received" state; outbound
// messages move queued → sent → delivered/failed/undelivered as the
// carrier reports progress.
type MessageStatus string

const (
	MessageReceived    MessageStatus = "received"
	MessageQueued      MessageStatus = "queued"
	MessageSent        MessageStatus = "sent"
	MessageDelivered   MessageStatus = "delivered"
	MessageFailed      MessageStatus = "failed"
	MessageUndelivered MessageStatus = "undelivered"
)

// Message is a single SMS exchanged with a customer. TenantID must always
// match the customer's tenant; the store rejects cross-tenant writes.
type Message struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	TenantID     uint           `json:"tenant_id" gorm:"index;not null"`
	CustomerID   uint           `json:"customer_id" gorm:"index;not null"`
	Direction    Direction      `json:"direction" gorm:"type:varchar(10);not null"`
	Status       MessageStatus  `json:"status" gorm:"type:varchar(16);not null;default:'received'"`
	Body         string         `json:"body" gorm:"type:text;not null"`
	CarrierSID   *string        `json:"carrier_sid" gorm:"column:carrier_sid;type:varchar(64);uniqueIndex"`
	ErrorMessage string         `json:"error_message" gorm:"type:text"`
	DeliveredAt  *time.Time     `json:"delivered_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	Customer Customer `json:"-" gorm:"foreignKey:CustomerID"`
	Tenant   Tenant   `json:"-" gorm:"foreignKey:TenantID"`
}
