package common

import (
	"admitgate/src/clock"
	"admitgate/src/config"
	"admitgate/src/metrics"
	"admitgate/src/models"
	"admitgate/src/store"
	"admitgate/src/types"
	"admitgate/src/utils"
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

type TicketIssuer struct {
	store  store.TicketStore
	secret []byte
	clock  clock.Clock
	loc    *time.Location
	logger log.FieldLogger
}

type IssuerOption func(*TicketIssuer)

func WithIssuerClock(c clock.Clock) IssuerOption {
	return func(i *TicketIssuer) {
		i.clock = c
	}
}

func WithIssuerLocation(loc *time.Location) IssuerOption {
	return func(i *TicketIssuer) {
		i.loc = loc
	}
}

func NewTicketIssuer(st store.TicketStore, secret []byte, opts ...IssuerOption) (*TicketIssuer, error) {
	if len(secret) == 0 {
		return nil, config.ErrMissingSecret
	}
	i := &TicketIssuer{
		store:  st,
		secret: secret,
		clock:  clock.NewSystem(),
		loc:    time.Local,
		logger: log.WithField("component", "issuer"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue creates the one ticket a booking may have. A second call for the same
// booking fails with ErrDuplicateBooking and leaves the first ticket intact.
func (i *TicketIssuer) Issue(ctx context.Context, booking *models.Booking) (*models.Ticket, error) {
	if err := validateBooking(booking); err != nil {
		return nil, err
	}
	validUntil, err := utils.EndOfEventDay(booking.EventDate, i.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: eventDate %q", types.ErrInvalidBooking, booking.EventDate)
	}
	ticketID, err := utils.NewTicketID()
	if err != nil {
		return nil, err
	}
	eventDate := strings.TrimSpace(booking.EventDate)
	ticket := &models.Ticket{
		ID:             ticketID,
		BookingID:      booking.BookingID,
		EventID:        booking.EventID,
		UserEmail:      booking.UserEmail,
		EventDate:      eventDate,
		Signature:      utils.Sign(i.secret, ticketID, booking.BookingID, booking.EventID, booking.UserEmail, eventDate),
		IssuedAt:       i.clock.Now().UTC(),
		ValidUntil:     validUntil,
		EventTitle:     booking.EventTitle,
		EventTime:      booking.EventTime,
		EventLocation:  booking.EventLocation,
		UserName:       booking.UserName,
		UserPhone:      booking.UserPhone,
		TicketQuantity: booking.TicketQuantity,
		TotalAmount:    booking.TotalAmount,
	}
	if err := i.store.Put(ctx, ticket); err != nil {
		i.logger.Printf("[Issuer] Could not store Ticket for Booking [%s]: %s\n", booking.BookingID, err.Error())
		return nil, fmt.Errorf("error issuing Ticket for Booking [%s]: %w", booking.BookingID, err)
	}
	metrics.TicketsIssued.Inc()
	i.logger.WithFields(log.Fields{
		"ticket_id":  ticket.ID,
		"booking_id": ticket.BookingID,
		"event_date": ticket.EventDate,
	}).Info("[Issuer] Ticket issued")
	return ticket, nil
}

func validateBooking(b *models.Booking) error {
	if b == nil {
		return fmt.Errorf("%w: empty booking", types.ErrInvalidBooking)
	}
	missing := []string{}
	if strings.TrimSpace(b.BookingID) == "" {
		missing = append(missing, "bookingId")
	}
	if strings.TrimSpace(b.EventID) == "" {
		missing = append(missing, "eventId")
	}
	if strings.TrimSpace(b.UserEmail) == "" {
		missing = append(missing, "userEmail")
	}
	if strings.TrimSpace(b.EventDate) == "" {
		missing = append(missing, "eventDate")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", types.ErrInvalidBooking, strings.Join(missing, ", "))
	}
	return nil
}
