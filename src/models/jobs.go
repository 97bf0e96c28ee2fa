package models

import (
	"admitgate/src/types"
	"time"

	"github.com/google/uuid"
)

// DeliverySchedule tracks one deferred QR delivery. Status moves from pending
// to sent or failed exactly once.
type DeliverySchedule struct {
	ID           uuid.UUID            `json:"id"`
	TicketID     string               `json:"ticketId"`
	Recipient    string               `json:"recipient"`
	Payload      string               `json:"payload"`
	ScheduledFor time.Time            `json:"scheduledFor"`
	Status       types.DeliveryStatus `json:"status"`
	CreatedAt    time.Time            `json:"createdAt"`
	CompletedAt  *time.Time           `json:"completedAt,omitempty"`
	LastError    string               `json:"lastError,omitempty"`
}

func (d *DeliverySchedule) IsPending() bool {
	return d.Status == types.DELIVERY_PENDING
}
