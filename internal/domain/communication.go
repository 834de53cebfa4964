package domain

import "time"

const (
	CommunicationEmail = "email"
	CommunicationSMS   = "sms"
	CommunicationCall  = "call"

	CommunicationStatusSent      = "sent"
	CommunicationStatusCompleted = "completed"
	CommunicationStatusFailed    = "failed"
)

// CommunicationRecord is the audit trail row written for every outbound
// dispatch, successful or not.
type CommunicationRecord struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	CustomerID        uint      `gorm:"not null;index" json:"customer_id"`
	CommunicationType string    `gorm:"size:16;not null;index" json:"communication_type"`
	Recipient         string    `gorm:"size:255;not null" json:"recipient"`
	Subject           string    `gorm:"size:255" json:"subject,omitempty"`
	Message           string    `gorm:"type:text" json:"message"`
	Status            string    `gorm:"size:16;not null" json:"status"`
	ExternalID        string    `gorm:"size:255" json:"external_id,omitempty"`
	Response          string    `gorm:"type:text" json:"response,omitempty"`
	CreatedAt         time.Time `gorm:"index" json:"created_at"`
}

func (CommunicationRecord) TableName() string {
	return "communication_history"
}

// CustomerContactBook groups a customer's contact points by channel.
type CustomerContactBook struct {
	Customer  Customer `json:"customer"`
	Emails    []string `json:"emails"`
	Phones    []string `json:"phones"`
	Addresses []string `json:"addresses"`
	Social    []string `json:"social"`
}
