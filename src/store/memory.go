package store

import (
	"admitgate/src/models"
	"admitgate/src/types"
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryStore struct {
	mu        sync.RWMutex
	tickets   map[string]models.Ticket
	byBooking map[string]string

	consumedMu sync.Mutex
	consumed   map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tickets:   make(map[string]models.Ticket),
		byBooking: make(map[string]string),
		consumed:  make(map[string]time.Time),
	}
}

func (m *MemoryStore) Put(ctx context.Context, ticket *models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byBooking[ticket.BookingID]; ok {
		return types.ErrDuplicateBooking
	}
	m.tickets[ticket.ID] = *ticket
	m.byBooking[ticket.BookingID] = ticket.ID
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, ticketID string) (*models.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tickets[ticketID]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &t, nil
}

func (m *MemoryStore) FindByBookingID(ctx context.Context, bookingID string) (*models.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byBooking[bookingID]
	if !ok {
		return nil, types.ErrNotFound
	}
	t := m.tickets[id]
	return &t, nil
}

func (m *MemoryStore) TryConsume(ctx context.Context, ticketID string, at time.Time) (types.ConsumeResult, error) {
	m.consumedMu.Lock()
	defer m.consumedMu.Unlock()
	if _, ok := m.consumed[ticketID]; ok {
		return types.ALREADY_CONSUMED, nil
	}
	m.consumed[ticketID] = at
	return types.FIRST_CONSUMPTION, nil
}

func (m *MemoryStore) IsConsumed(ctx context.Context, ticketID string) (bool, error) {
	m.consumedMu.Lock()
	defer m.consumedMu.Unlock()
	_, ok := m.consumed[ticketID]
	return ok, nil
}

func (m *MemoryStore) ListConsumed(ctx context.Context) ([]models.ConsumedTicket, error) {
	m.consumedMu.Lock()
	out := make([]models.ConsumedTicket, 0, len(m.consumed))
	for id, at := range m.consumed {
		out = append(out, models.ConsumedTicket{TicketID: id, ConsumedAt: at})
	}
	m.consumedMu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].ConsumedAt.Before(out[j].ConsumedAt)
	})
	return out, nil
}
