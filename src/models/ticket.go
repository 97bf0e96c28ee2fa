package models

import (
	"admitgate/src/types"
	"time"
)

// Ticket is created once by the issuer and never updated. Consumption state
// lives in ConsumedTicket.
type Ticket struct {
	ID         string    `gorm:"primarykey;size:20" json:"ticketId"`
	BookingID  string    `gorm:"uniqueIndex;not null" json:"bookingId"`
	EventID    string    `gorm:"index;not null" json:"eventId"`
	UserEmail  string    `gorm:"not null" json:"userEmail"`
	EventDate  string    `gorm:"size:10;not null" json:"eventDate"`
	Signature  string    `gorm:"size:64;not null" json:"-"`
	IssuedAt   time.Time `json:"issuedAt"`
	ValidUntil time.Time `json:"validUntil"`

	EventTitle     string  `json:"eventTitle,omitempty"`
	EventTime      string  `json:"eventTime,omitempty"`
	EventLocation  string  `json:"eventLocation,omitempty"`
	UserName       string  `json:"userName,omitempty"`
	UserPhone      string  `json:"userPhone,omitempty"`
	TicketQuantity int     `json:"ticketQuantity,omitempty"`
	TotalAmount    float64 `json:"totalAmount,omitempty"`

	types.Timestamps
}

func (t *Ticket) Info(isUsed bool) *types.TicketInfo {
	return &types.TicketInfo{
		TicketID:   t.ID,
		EventTitle: t.EventTitle,
		UserName:   t.UserName,
		UserEmail:  t.UserEmail,
		EventDate:  t.EventDate,
		IsUsed:     isUsed,
	}
}

type TicketStatus struct {
	Exists bool    `json:"exists"`
	IsUsed bool    `json:"isUsed"`
	Ticket *Ticket `json:"ticket,omitempty"`
}
