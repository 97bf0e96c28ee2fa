package common

import (
	"admitgate/src/clock"
	"admitgate/src/config"
	"admitgate/src/models"
	"admitgate/src/store"
	"admitgate/src/types"
	"admitgate/src/utils"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/sjson"
)

type VerificationSuite struct {
	suite.Suite
	store  *store.MemoryStore
	ticket *models.Ticket
	wire   string
}

func TestVerificationSuite(t *testing.T) {
	suite.Run(t, new(VerificationSuite))
}

func (s *VerificationSuite) SetupTest() {
	s.store = store.NewMemoryStore()
	issuer, err := NewTicketIssuer(s.store, testSecret,
		WithIssuerClock(clock.NewFixed(issuedAt)),
		WithIssuerLocation(time.UTC),
	)
	s.Require().NoError(err)
	s.ticket, err = issuer.Issue(context.Background(), newBooking("BK-1"))
	s.Require().NoError(err)
	s.wire = utils.EncodeCompact(s.ticket)
}

func (s *VerificationSuite) engineAt(now time.Time) *VerificationEngine {
	return s.engineWith(s.store, testSecret, now)
}

func (s *VerificationSuite) engineWith(st store.TicketStore, secret []byte, now time.Time) *VerificationEngine {
	v, err := NewVerificationEngine(st, secret,
		WithVerifierClock(clock.NewFixed(now)),
		WithVerifierLocation(time.UTC),
	)
	s.Require().NoError(err)
	return v
}

func (s *VerificationSuite) consumed() bool {
	used, err := s.store.IsConsumed(context.Background(), s.ticket.ID)
	s.Require().NoError(err)
	return used
}

func (s *VerificationSuite) TestAdmitsOnEventDay() {
	res := s.engineAt(eventEvening).Verify(context.Background(), s.wire)

	s.True(res.IsValid)
	s.Equal(types.VERIFICATION_ADMITTED, res.Status)
	s.Require().NotNil(res.TicketInfo)
	s.Equal(s.ticket.ID, res.TicketInfo.TicketID)
	s.Equal("Campus Night", res.TicketInfo.EventTitle)
	s.Equal("Some One", res.TicketInfo.UserName)
	s.False(res.TicketInfo.IsUsed)
	s.NoError(res.Err())
}

func (s *VerificationSuite) TestRejectsReplay() {
	engine := s.engineAt(eventEvening)
	s.Require().True(engine.Verify(context.Background(), s.wire).IsValid)

	res := engine.Verify(context.Background(), s.wire)
	s.False(res.IsValid)
	s.Equal(types.VERIFICATION_ALREADY_USED, res.Status)
	s.Require().NotNil(res.TicketInfo)
	s.True(res.TicketInfo.IsUsed)
	s.ErrorIs(res.Err(), types.ErrAlreadyUsed)
}

func (s *VerificationSuite) TestRejectsTamperedFields() {
	engine := s.engineAt(eventEvening)
	cases := map[string]string{
		"id":    "TKT-FFFFFFFFFFFFFFFF",
		"eid":   "EV-43",
		"email": "mallory@example.com",
		"hash":  strings.Repeat("0", utils.HashPrefixLength),
	}
	for field, value := range cases {
		tampered, err := sjson.Set(s.wire, field, value)
		s.Require().NoError(err)

		res := engine.Verify(context.Background(), tampered)
		s.False(res.IsValid, field)
		s.Equal(types.VERIFICATION_INVALID_SIGNATURE, res.Status, field)
	}
	s.False(s.consumed())
}

func (s *VerificationSuite) TestRejectsEverySingleHashFlip() {
	engine := s.engineAt(eventEvening)
	hash := s.ticket.Signature[:utils.HashPrefixLength]
	for i := range utils.HashPrefixLength {
		flipped := []byte(hash)
		if flipped[i] == '0' {
			flipped[i] = '1'
		} else {
			flipped[i] = '0'
		}
		tampered, err := sjson.Set(s.wire, "hash", string(flipped))
		s.Require().NoError(err)

		for attempt := range 2 {
			res := engine.Verify(context.Background(), tampered)
			s.Equal(types.VERIFICATION_INVALID_SIGNATURE, res.Status, "position %d attempt %d", i, attempt)
			s.Nil(res.TicketInfo)
		}
	}
	s.False(s.consumed())
}

func (s *VerificationSuite) TestUnknownBooking() {
	tampered, err := sjson.Set(s.wire, "bid", "BK-404")
	s.Require().NoError(err)

	res := s.engineAt(eventEvening).Verify(context.Background(), tampered)
	s.Equal(types.VERIFICATION_UNKNOWN, res.Status)
	s.ErrorIs(res.Err(), types.ErrUnknownTicket)
}

func (s *VerificationSuite) TestRejectsForeignSecret() {
	res := s.engineWith(s.store, []byte("another-secret"), eventEvening).Verify(context.Background(), s.wire)
	s.Equal(types.VERIFICATION_INVALID_SIGNATURE, res.Status)
	s.False(s.consumed())
}

func (s *VerificationSuite) TestMalformedPayloads() {
	engine := s.engineAt(eventEvening)
	withoutHash, err := sjson.Delete(s.wire, "hash")
	s.Require().NoError(err)
	badIssued, err := sjson.Set(s.wire, "issued", "yesterday")
	s.Require().NoError(err)
	numericID, err := sjson.Set(s.wire, "id", 42)
	s.Require().NoError(err)

	for _, wire := range []string{"", "not json", "[]", "{}", withoutHash, badIssued, numericID} {
		res := engine.Verify(context.Background(), wire)
		s.Equal(types.VERIFICATION_INVALID_FORMAT, res.Status, wire)
		s.Nil(res.TicketInfo)
	}
}

func (s *VerificationSuite) TestAdmitsUntilMidnight() {
	res := s.engineAt(time.Date(2026, 10, 20, 23, 59, 59, 500000000, time.UTC)).Verify(context.Background(), s.wire)
	s.Equal(types.VERIFICATION_ADMITTED, res.Status)
}

func (s *VerificationSuite) TestExpiresAtMidnight() {
	res := s.engineAt(time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)).Verify(context.Background(), s.wire)
	s.Equal(types.VERIFICATION_EXPIRED, res.Status)
	s.False(s.consumed())
}

func (s *VerificationSuite) TestExpired() {
	res := s.engineAt(time.Date(2026, 10, 21, 0, 0, 1, 0, time.UTC)).Verify(context.Background(), s.wire)
	s.Equal(types.VERIFICATION_EXPIRED, res.Status)
	s.False(s.consumed())
}

func (s *VerificationSuite) TestWrongDayLeavesTicketUnconsumed() {
	res := s.engineAt(time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)).Verify(context.Background(), s.wire)
	s.Equal(types.VERIFICATION_WRONG_DAY, res.Status)
	s.Contains(res.Reason, testEventDate)
	s.False(s.consumed())

	res = s.engineAt(eventEvening).Verify(context.Background(), s.wire)
	s.Equal(types.VERIFICATION_ADMITTED, res.Status)
}

func (s *VerificationSuite) TestConcurrentScansAdmitOnce() {
	for trial := range 20 {
		s.SetupTest()
		engine := s.engineAt(eventEvening)
		n := 2 + trial*3

		var wg sync.WaitGroup
		var mu sync.Mutex
		counts := map[types.VerificationStatus]int{}
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res := engine.Verify(context.Background(), s.wire)
				mu.Lock()
				counts[res.Status]++
				mu.Unlock()
			}()
		}
		wg.Wait()

		s.Equal(1, counts[types.VERIFICATION_ADMITTED], "trial %d", trial)
		s.Equal(n-1, counts[types.VERIFICATION_ALREADY_USED], "trial %d", trial)
	}
}

func (s *VerificationSuite) TestVerifyAs() {
	engine := s.engineAt(eventEvening)

	res := engine.VerifyAs(context.Background(), s.wire, "mallory@example.com")
	s.Equal(types.VERIFICATION_OWNERSHIP_MISMATCH, res.Status)
	s.False(s.consumed())

	res = engine.VerifyAs(context.Background(), "garbage", "someone@example.com")
	s.Equal(types.VERIFICATION_INVALID_FORMAT, res.Status)

	res = engine.VerifyAs(context.Background(), s.wire, "someone@example.com")
	s.Equal(types.VERIFICATION_ADMITTED, res.Status)

	res = engine.VerifyAs(context.Background(), s.wire, "")
	s.Equal(types.VERIFICATION_ALREADY_USED, res.Status)
}

func (s *VerificationSuite) TestOwnershipMatchesIsReadOnly() {
	engine := s.engineAt(eventEvening)

	s.True(engine.OwnershipMatches(s.wire, "someone@example.com"))
	s.False(engine.OwnershipMatches(s.wire, "Someone@example.com"))
	s.False(engine.OwnershipMatches("{", "someone@example.com"))
	s.False(s.consumed())
}

func (s *VerificationSuite) TestStatusAndUsedTickets() {
	engine := s.engineAt(eventEvening)

	status, err := engine.Status(context.Background(), "TKT-0000000000000000")
	s.Require().NoError(err)
	s.False(status.Exists)

	status, err = engine.Status(context.Background(), s.ticket.ID)
	s.Require().NoError(err)
	s.True(status.Exists)
	s.False(status.IsUsed)

	s.Require().True(engine.Verify(context.Background(), s.wire).IsValid)

	status, err = engine.Status(context.Background(), s.ticket.ID)
	s.Require().NoError(err)
	s.True(status.IsUsed)

	used, err := engine.UsedTickets(context.Background())
	s.Require().NoError(err)
	s.Require().Len(used, 1)
	s.Equal(s.ticket.ID, used[0].TicketID)
	s.Equal(eventEvening, used[0].ConsumedAt)
}

func (s *VerificationSuite) TestStoreFailureIsReported() {
	broken := &brokenStore{MemoryStore: s.store}

	res := s.engineWith(broken, testSecret, eventEvening).Verify(context.Background(), s.wire)
	s.Equal(types.VERIFICATION_UNAVAILABLE, res.Status)
	s.False(res.IsValid)
	s.ErrorIs(res.Err(), types.ErrStoreUnavailable)
}

type brokenStore struct {
	*store.MemoryStore
}

func (b *brokenStore) FindByBookingID(ctx context.Context, bookingID string) (*models.Ticket, error) {
	return nil, errors.New("connection refused")
}

func TestNewVerificationEngineRequiresSecret(t *testing.T) {
	_, err := NewVerificationEngine(store.NewMemoryStore(), []byte{})
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingSecret)
}
