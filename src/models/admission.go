package models

import "time"

// ConsumedTicket is written exactly once, on first admission.
type ConsumedTicket struct {
	TicketID   string    `gorm:"primarykey;size:20" json:"ticketId"`
	ConsumedAt time.Time `gorm:"not null" json:"consumedAt"`
}
