package domain

import "time"

// Stage is one column of the sales pipeline board.
type Stage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:120;not null" json:"name"`
	Position  int       `gorm:"not null;default:0;index" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var DefaultStages = []string{"New", "Contacted", "Qualified", "Proposal", "Won", "Lost"}
