package domain

import "time"

const (
	ContactTypeEmail   = "email"
	ContactTypePhone   = "phone"
	ContactTypeAddress = "address"
	ContactTypeSocial  = "social"
)

func IsValidContactType(v string) bool {
	switch v {
	case ContactTypeEmail, ContactTypePhone, ContactTypeAddress, ContactTypeSocial:
		return true
	default:
		return false
	}
}

type Contact struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CustomerID   uint      `gorm:"not null;index" json:"customer_id"`
	Customer     *Customer `gorm:"constraint:OnDelete:CASCADE" json:"customer,omitempty"`
	ContactType  string    `gorm:"size:32;not null;index" json:"contact_type"`
	ContactValue string    `gorm:"size:500;not null" json:"contact_value"`
	IsPrimary    bool      `gorm:"not null;default:false" json:"is_primary"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
