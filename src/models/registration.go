package models

import (
	"time"

	"eventreg/src/types"
)

type Registration struct {
	ID        uint                     `gorm:"primarykey" json:"id"`
	Name      string                   `gorm:"size:100;not null" json:"name"`
	Email     string                   `gorm:"not null;index" json:"email"`
	Phone     *string                  `json:"phone"`
	Qty       int                      `gorm:"not null" json:"qty"`
	Dietary   *string                  `json:"dietary"`
	Notes     *string                  `json:"notes"`
	Status    types.RegistrationStatus `gorm:"size:16;not null;index" json:"status"`
	CheckedIn bool                     `gorm:"not null" json:"checkedIn"`
	CreatedAt time.Time                `gorm:"not null;index" json:"createdAt"`
}

func (r *Registration) IsPaid() bool {
	return r.Status == types.REGISTRATION_PAID
}
