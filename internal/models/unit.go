// internal/models/unit.go
package models

import (
	"github.com/google/uuid"
)

// Unit is a rentable space within a property. Its status mirrors lease
// activity: a unit is occupied if and only if exactly one active lease
// references it. That mirror is owned by the lease lifecycle service; nothing
// else may flip a unit between available and occupied.
type Unit struct {
	BaseModel
	PropertyID uuid.UUID  `json:"property_id" gorm:"type:uuid;not null;index"`
	CompanyID  uuid.UUID  `json:"company_id" gorm:"type:uuid;not null;index"`
	UnitNumber string     `json:"unit_number" gorm:"size:50;not null"`
	Floor      int        `json:"floor"`
	Bedrooms   int        `json:"bedrooms"`
	Bathrooms  float64    `json:"bathrooms"`
	SquareFeet float64    `json:"square_feet"`
	MarketRent float64    `json:"market_rent" gorm:"type:decimal(12,2)"`
	Status     UnitStatus `json:"status" gorm:"type:varchar(20);default:'available';index"`

	// Relationships
	Property Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Leases   []Lease  `json:"leases,omitempty" gorm:"foreignKey:UnitID"`
}
