// internal/models/company.go
package models

type Company struct {
	BaseModel
	Name    string `json:"name" gorm:"size:255;not null"`
	Email   string `json:"email" gorm:"size:255"`
	Phone   string `json:"phone" gorm:"size:30"`
	Address string `json:"address" gorm:"type:text"`

	// Relationships
	Users      []User     `json:"users,omitempty" gorm:"foreignKey:CompanyID"`
	Properties []Property `json:"properties,omitempty" gorm:"foreignKey:CompanyID"`
}
