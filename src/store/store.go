package store

import (
	"admitgate/src/models"
	"admitgate/src/types"
	"context"
	"time"
)

// TicketStore owns tickets and the consumed set. TryConsume is the only
// check-and-set in the system and must be atomic in every implementation.
type TicketStore interface {
	Put(ctx context.Context, ticket *models.Ticket) error
	Get(ctx context.Context, ticketID string) (*models.Ticket, error)
	FindByBookingID(ctx context.Context, bookingID string) (*models.Ticket, error)
	TryConsume(ctx context.Context, ticketID string, at time.Time) (types.ConsumeResult, error)
	IsConsumed(ctx context.Context, ticketID string) (bool, error)
	ListConsumed(ctx context.Context) ([]models.ConsumedTicket, error)
}
