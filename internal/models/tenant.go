// internal/models/tenant.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// TenantProfile links a user to a company as a renter. Status is derived from
// the tenant's active-lease count and stored as a column so listings can
// filter on it; it is recomputed by the lease lifecycle service after every
// transition that can change the count, never set by callers.
type TenantProfile struct {
	BaseModel
	UserID           uuid.UUID    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_user_company"`
	CompanyID        uuid.UUID    `json:"company_id" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_user_company"`
	Status           TenantStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	EmergencyContact JSONB        `json:"emergency_contact" gorm:"type:jsonb"`
	Notes            string       `json:"notes" gorm:"type:text"`
	MoveInAt         *time.Time   `json:"move_in_at"`

	// Relationships
	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Company Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Leases  []Lease `json:"leases,omitempty" gorm:"foreignKey:TenantID"`
}
