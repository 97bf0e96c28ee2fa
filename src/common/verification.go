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
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	reasonInvalidFormat     = "Invalid QR code format"
	reasonUnknown           = "Ticket not found in system"
	reasonInvalidSignature  = "Invalid or tampered QR code"
	reasonExpired           = "Ticket has expired"
	reasonAlreadyUsed       = "Ticket already used"
	reasonOwnershipMismatch = "Ticket is registered to a different email"
	reasonUnavailable       = "Ticket store unavailable, try again"
)

// VerificationEngine is the gate entry point. Every outcome is reported as a
// VerificationResult; it never returns an error.
type VerificationEngine struct {
	store  store.TicketStore
	secret []byte
	clock  clock.Clock
	loc    *time.Location
	logger log.FieldLogger
}

type VerifierOption func(*VerificationEngine)

func WithVerifierClock(c clock.Clock) VerifierOption {
	return func(v *VerificationEngine) {
		v.clock = c
	}
}

func WithVerifierLocation(loc *time.Location) VerifierOption {
	return func(v *VerificationEngine) {
		v.loc = loc
	}
}

func NewVerificationEngine(st store.TicketStore, secret []byte, opts ...VerifierOption) (*VerificationEngine, error) {
	if len(secret) == 0 {
		return nil, config.ErrMissingSecret
	}
	v := &VerificationEngine{
		store:  st,
		secret: secret,
		clock:  clock.NewSystem(),
		loc:    time.Local,
		logger: log.WithField("component", "verifier"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

func (v *VerificationEngine) Verify(ctx context.Context, wire string) types.VerificationResult {
	token, err := utils.DecodeCompact(wire)
	if err != nil {
		return v.finish(reject(types.VERIFICATION_INVALID_FORMAT, reasonInvalidFormat))
	}
	return v.finish(v.verifyToken(ctx, token))
}

// VerifyAs rejects a scan whose payload is bound to another email before the
// ticket is looked up, so a mismatch never consumes the ticket. An empty
// claimedEmail skips the check.
func (v *VerificationEngine) VerifyAs(ctx context.Context, wire, claimedEmail string) types.VerificationResult {
	token, err := utils.DecodeCompact(wire)
	if err != nil {
		return v.finish(reject(types.VERIFICATION_INVALID_FORMAT, reasonInvalidFormat))
	}
	if claimedEmail != "" && token.UserEmail != claimedEmail {
		return v.finish(reject(types.VERIFICATION_OWNERSHIP_MISMATCH, reasonOwnershipMismatch))
	}
	return v.finish(v.verifyToken(ctx, token))
}

// OwnershipMatches only reads the payload. Malformed payloads never match.
func (v *VerificationEngine) OwnershipMatches(wire, claimedEmail string) bool {
	token, err := utils.DecodeCompact(wire)
	if err != nil {
		return false
	}
	return token.UserEmail == claimedEmail
}

func (v *VerificationEngine) Status(ctx context.Context, ticketID string) (*models.TicketStatus, error) {
	ticket, err := v.store.Get(ctx, ticketID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return &models.TicketStatus{}, nil
		}
		return nil, err
	}
	used, err := v.store.IsConsumed(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return &models.TicketStatus{Exists: true, IsUsed: used, Ticket: ticket}, nil
}

func (v *VerificationEngine) UsedTickets(ctx context.Context) ([]models.ConsumedTicket, error) {
	return v.store.ListConsumed(ctx)
}

func (v *VerificationEngine) verifyToken(ctx context.Context, token *utils.CompactToken) types.VerificationResult {
	ticket, err := v.store.FindByBookingID(ctx, token.BookingID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return reject(types.VERIFICATION_UNKNOWN, reasonUnknown)
		}
		v.logger.WithError(err).Errorf("[Verifier] Lookup failed for Booking [%s]", token.BookingID)
		return reject(types.VERIFICATION_UNAVAILABLE, reasonUnavailable)
	}

	if token.TicketID != ticket.ID ||
		token.EventID != ticket.EventID ||
		token.UserEmail != ticket.UserEmail ||
		!utils.VerifyPrefix(v.secret, token.Hash, ticket.ID, ticket.BookingID, ticket.EventID, ticket.UserEmail, ticket.EventDate) {
		v.logger.Warnf("[Verifier] Signature mismatch for Booking [%s]", token.BookingID)
		return reject(types.VERIFICATION_INVALID_SIGNATURE, reasonInvalidSignature)
	}

	now := v.clock.Now()
	if now.After(ticket.ValidUntil) {
		return reject(types.VERIFICATION_EXPIRED, reasonExpired)
	}
	if today := utils.CalendarDate(now, v.loc); today != ticket.EventDate {
		return reject(types.VERIFICATION_WRONG_DAY, fmt.Sprintf("Ticket is only valid on %s", ticket.EventDate))
	}

	res, err := v.store.TryConsume(ctx, ticket.ID, now)
	if err != nil {
		v.logger.WithError(err).Errorf("[Verifier] Consume failed for Ticket [%s]", ticket.ID)
		return reject(types.VERIFICATION_UNAVAILABLE, reasonUnavailable)
	}
	if res == types.ALREADY_CONSUMED {
		return types.VerificationResult{
			Status:     types.VERIFICATION_ALREADY_USED,
			Reason:     reasonAlreadyUsed,
			TicketInfo: ticket.Info(true),
		}
	}
	v.logger.WithField("ticket_id", ticket.ID).Info("[Verifier] Ticket admitted")
	return types.VerificationResult{
		IsValid:    true,
		Status:     types.VERIFICATION_ADMITTED,
		TicketInfo: ticket.Info(false),
	}
}

func (v *VerificationEngine) finish(r types.VerificationResult) types.VerificationResult {
	metrics.VerificationResults.WithLabelValues(string(r.Status)).Inc()
	return r
}

func reject(status types.VerificationStatus, reason string) types.VerificationResult {
	return types.VerificationResult{Status: status, Reason: reason}
}
