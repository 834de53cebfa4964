package domain

import "time"

const (
	CustomerStatusActive   = "active"
	CustomerStatusInactive = "inactive"
)

type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;index" json:"name"`
	Email     string    `gorm:"size:255;index" json:"email"`
	Phone     string    `gorm:"size:64" json:"phone"`
	Company   string    `gorm:"size:255" json:"company"`
	Address   string    `gorm:"size:500" json:"address"`
	Status    string    `gorm:"size:32;not null;default:active" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
