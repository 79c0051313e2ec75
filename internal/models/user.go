// internal/models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Name            string     `json:"name" gorm:"size:255;not null"`
	Email           string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash    string     `json:"-" gorm:"size:255;not null"`
	Phone           string     `json:"phone" gorm:"size:20"`
	BusinessID      *uuid.UUID `json:"business_id" gorm:"type:uuid;index"`
	IsAdmin         bool       `json:"is_admin" gorm:"default:false"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	LastLoginAt     *time.Time `json:"last_login_at"`

	// Relationships
	Business *Business           `json:"business,omitempty" gorm:"foreignKey:BusinessID"`
	Wallet   *Wallet             `json:"wallet,omitempty" gorm:"foreignKey:UserID"`
	Orders   []Order             `json:"orders,omitempty" gorm:"foreignKey:UserID"`
	Listings []PreHarvestListing `json:"listings,omitempty" gorm:"foreignKey:UserID"`
	Bookings []PreHarvestBooking `json:"bookings,omitempty" gorm:"foreignKey:BuyerID"`
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
