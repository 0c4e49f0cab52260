// internal/models/property.go
package models

import (
	"github.com/google/uuid"
)

type Property struct {
	BaseModel
	CompanyID   uuid.UUID `json:"company_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Address     string    `json:"address" gorm:"type:text;not null"`
	City        string    `json:"city" gorm:"size:100"`
	State       string    `json:"state" gorm:"size:100"`
	PostalCode  string    `json:"postal_code" gorm:"size:20"`
	Country     string    `json:"country" gorm:"size:100"`
	Description string    `json:"description" gorm:"type:text"`
	PhotoURLs   JSONB     `json:"photo_urls" gorm:"type:jsonb"`

	// Relationships
	Company Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Units   []Unit  `json:"units,omitempty" gorm:"foreignKey:PropertyID"`
}
