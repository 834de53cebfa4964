package domain

import "time"

const LeadStatusNew = "new"

type Lead struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CustomerID  uint      `gorm:"not null;index" json:"customer_id"`
	Customer    *Customer `gorm:"constraint:OnDelete:CASCADE" json:"customer,omitempty"`
	StageID     *uint     `gorm:"index" json:"stage_id"`
	Stage       *Stage    `gorm:"constraint:OnDelete:SET NULL" json:"stage,omitempty"`
	LeadSource  string    `gorm:"size:120" json:"lead_source"`
	Status      string    `gorm:"size:32;not null;default:new" json:"status"`
	Value       float64   `gorm:"not null;default:0" json:"value"`
	Description string    `gorm:"size:2000" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
