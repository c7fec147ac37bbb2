package model

import (
	"time"

	"gorm.io/gorm"
)

// ConsentStatus is the regulatory SMS opt-in state of a customer.
type ConsentStatus string

const (
	ConsentPending  ConsentStatus = "pending"
	ConsentActive   ConsentStatus = "active"
	ConsentOptedOut ConsentStatus = "opted_out"
)

// Customer belongs to exactly one tenant. Phone numbers are unique per
// tenant, not globally: two tenants may each have a customer with the same
// number.
type Customer struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	TenantID      uint           `json:"tenant_id" gorm:"not null;uniqueIndex:idx_customers_tenant_phone"`
	FirstName     string         `json:"first_name" gorm:"type:varchar(100);not null"`
	LastName      string         `json:"last_name" gorm:"type:varchar(100);not null"`
	Phone         string         `json:"phone" gorm:"type:varchar(20);not null;uniqueIndex:idx_customers_tenant_phone"`
	ConsentStatus ConsentStatus  `json:"consent_status" gorm:"type:varchar(16);not null;default:'active'"`
	OptedOutAt    *time.Time     `json:"opted_out_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	Tenant Tenant `json:"-" gorm:"foreignKey:TenantID"`
}

// Consented reports whether the customer has active SMS consent
func (c *Customer) Consented() bool {
	return c.ConsentStatus == ConsentActive
}

// OptedOut reports whether the customer has opted out
func (c *Customer) OptedOut() bool {
	return c.ConsentStatus == ConsentOptedOut
}

// CanReceiveSMS reports whether outbound messages may be sent to the
// customer. Only active consent qualifies; pending counts as no.
func (c *Customer) CanReceiveSMS() bool {
	return c.Consented()
}
