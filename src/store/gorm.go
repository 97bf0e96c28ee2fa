package store

import (
	"admitgate/src/models"
	"admitgate/src/models/scopes"
	"admitgate/src/types"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pgUniqueViolation = "23505"

// GormStore keeps tickets in postgres. Consumption relies on the primary key
// of consumed_tickets: the conditional insert either adds the row or does
// nothing, in one statement.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (g *GormStore) Migrate() error {
	return g.db.AutoMigrate(&models.Ticket{}, &models.ConsumedTicket{})
}

func (g *GormStore) Put(ctx context.Context, ticket *models.Ticket) error {
	err := g.db.WithContext(ctx).Create(ticket).Error
	if err != nil {
		if isUniqueViolation(err) {
			return types.ErrDuplicateBooking
		}
		return fmt.Errorf("error saving Ticket [%s]: %w", ticket.ID, err)
	}
	return nil
}

func (g *GormStore) Get(ctx context.Context, ticketID string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := g.db.WithContext(ctx).
		Scopes(scopes.WithID(ticketID)).
		First(&ticket).
		Error
	if err != nil {
		return nil, notFound(err)
	}
	return &ticket, nil
}

func (g *GormStore) FindByBookingID(ctx context.Context, bookingID string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := g.db.WithContext(ctx).
		Scopes(scopes.WithBookingID(bookingID)).
		First(&ticket).
		Error
	if err != nil {
		return nil, notFound(err)
	}
	return &ticket, nil
}

func (g *GormStore) TryConsume(ctx context.Context, ticketID string, at time.Time) (types.ConsumeResult, error) {
	res := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ConsumedTicket{TicketID: ticketID, ConsumedAt: at})
	if res.Error != nil {
		return types.ALREADY_CONSUMED, fmt.Errorf("error consuming Ticket [%s]: %w", ticketID, res.Error)
	}
	if res.RowsAffected == 0 {
		return types.ALREADY_CONSUMED, nil
	}
	return types.FIRST_CONSUMPTION, nil
}

func (g *GormStore) IsConsumed(ctx context.Context, ticketID string) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).
		Model(&models.ConsumedTicket{}).
		Scopes(scopes.WithTicketID(ticketID)).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (g *GormStore) ListConsumed(ctx context.Context) ([]models.ConsumedTicket, error) {
	var consumed []models.ConsumedTicket
	err := g.db.WithContext(ctx).
		Scopes(scopes.OldestConsumedFirst).
		Find(&consumed).
		Error
	return consumed, err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
