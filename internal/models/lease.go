// internal/models/lease.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Lease is a time-bounded occupancy agreement between one tenant profile and
// one unit. Status moves only through the lease lifecycle service; the
// tenant/unit/company references are immutable after creation. Financial
// terms are snapshots taken at creation or renewal, never recomputed.
type Lease struct {
	BaseModel
	LeaseNumber    string      `json:"lease_number" gorm:"size:50;index"`
	CompanyID      uuid.UUID   `json:"company_id" gorm:"type:uuid;not null;index"`
	UnitID         uuid.UUID   `json:"unit_id" gorm:"type:uuid;not null;index"`
	TenantID       uuid.UUID   `json:"tenant_id" gorm:"type:uuid;not null;index"`
	LandlordUserID *uuid.UUID  `json:"landlord_user_id" gorm:"type:uuid"`
	Status         LeaseStatus `json:"status" gorm:"type:varchar(20);default:'draft';index"`

	StartDate             time.Time  `json:"start_date" gorm:"not null"`
	EndDate               time.Time  `json:"end_date" gorm:"not null"`
	MoveInDate            *time.Time `json:"move_in_date"`
	MoveOutDate           *time.Time `json:"move_out_date"`
	ActualTerminationDate *time.Time `json:"actual_termination_date"`

	MonthlyRent     float64 `json:"monthly_rent" gorm:"type:decimal(12,2);not null"`
	SecurityDeposit float64 `json:"security_deposit" gorm:"type:decimal(12,2)"`
	PetDeposit      float64 `json:"pet_deposit" gorm:"type:decimal(12,2)"`

	TerminationReason string     `json:"termination_reason,omitempty" gorm:"size:100"`
	TerminationNotes  string     `json:"termination_notes,omitempty" gorm:"type:text"`
	TerminatedBy      *uuid.UUID `json:"terminated_by" gorm:"type:uuid"`

	// Renewal chain: at most one predecessor and at most one successor. A
	// lease is in renewed status exactly when RenewedToLeaseID is set.
	RenewedFromLeaseID *uuid.UUID `json:"renewed_from_lease_id" gorm:"type:uuid"`
	RenewedToLeaseID   *uuid.UUID `json:"renewed_to_lease_id" gorm:"type:uuid"`

	DocumentURL string `json:"document_url,omitempty" gorm:"size:500"`
	Notes       string `json:"notes,omitempty" gorm:"type:text"`

	// Relationships
	Company Company       `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Unit    Unit          `json:"unit,omitempty" gorm:"foreignKey:UnitID"`
	Tenant  TenantProfile `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}
