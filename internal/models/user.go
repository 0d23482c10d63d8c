package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an operator of the back office. Products reference users for
// the "created by" column; the catalog never manages user accounts.
type User struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name      string         `json:"name" gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Email     string         `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Validate checks the field constraints of the record.
func (u *User) Validate() error {
	return validateStruct(u)
}
