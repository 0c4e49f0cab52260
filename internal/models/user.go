// internal/models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	FirstName    string     `json:"first_name" gorm:"size:100"`
	LastName     string     `json:"last_name" gorm:"size:100"`
	Phone        string     `json:"phone" gorm:"size:30"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);not null;index"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	CompanyID    *uuid.UUID `json:"company_id" gorm:"type:uuid;index"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Relationships
	Company *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}
