// internal/models/payment.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// RentPayment records money received against a lease. The amount is whatever
// was collected; balance and proration math happen outside this system.
type RentPayment struct {
	BaseModel
	LeaseID       uuid.UUID     `json:"lease_id" gorm:"type:uuid;not null;index"`
	CompanyID     uuid.UUID     `json:"company_id" gorm:"type:uuid;not null;index"`
	TenantID      uuid.UUID     `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Amount        float64       `json:"amount" gorm:"type:decimal(12,2);not null"`
	Currency      string        `json:"currency" gorm:"size:3;default:'usd'"`
	Method        PaymentMethod `json:"method" gorm:"type:varchar(20);not null"`
	Status        PaymentStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PeriodStart   time.Time     `json:"period_start"`
	PeriodEnd     time.Time     `json:"period_end"`
	PaidAt        *time.Time    `json:"paid_at"`
	StripeIntent  string        `json:"stripe_intent,omitempty" gorm:"size:255"`
	ReferenceNote string        `json:"reference_note,omitempty" gorm:"type:text"`
	RecordedBy    *uuid.UUID    `json:"recorded_by" gorm:"type:uuid"`

	// Relationships
	Lease  Lease         `json:"lease,omitempty" gorm:"foreignKey:LeaseID"`
	Tenant TenantProfile `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}
