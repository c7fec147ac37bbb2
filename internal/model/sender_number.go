package model

import (
	"time"

	"gorm.io/gorm"
)

// SenderNumberStatus is the provisioning state of a tenant's dedicated
// carrier number. Only active numbers are used for outbound sends.
type SenderNumberStatus string

const (
	SenderNumberPending  SenderNumberStatus = "pending"
	SenderNumberApproved SenderNumberStatus = "approved"
	SenderNumberActive   SenderNumberStatus = "active"
)

// SenderNumber is a carrier phone number dedicated to a single tenant.
type SenderNumber struct {
	ID          uint               `json:"id" gorm:"primaryKey"`
	TenantID    uint               `json:"tenant_id" gorm:"index;not null"`
	PhoneNumber string             `json:"phone_number" gorm:"type:varchar(20);uniqueIndex;not null"`
	Location    string             `json:"location" gorm:"type:varchar(100);not null"`
	Status      SenderNumberStatus `json:"status" gorm:"type:varchar(16);not null;default:'pending'"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	DeletedAt   gorm.DeletedAt     `json:"-" gorm:"index"`

	Tenant Tenant `json:"-" gorm:"foreignKey:TenantID"`
}
