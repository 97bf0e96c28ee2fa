package common

import (
	"admitgate/src/clock"
	"admitgate/src/models"
	"admitgate/src/store"
	"admitgate/src/types"
	"admitgate/src/utils"
	"context"
	"errors"
	"fmt"
	"html"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func issuedTicket(t *testing.T, bookingID, eventDate string) *models.Ticket {
	booking := newBooking(bookingID)
	booking.EventDate = eventDate
	ticket, err := newTestIssuer(t, store.NewMemoryStore()).Issue(context.Background(), booking)
	require.NoError(t, err)
	return ticket
}

func newTestDelivery(now time.Time, notifier *recordingNotifier, opts ...DeliveryOption) (*DeliveryScheduler, *fakeTimer) {
	timer := newFakeTimer()
	opts = append([]DeliveryOption{
		WithDeliveryClock(clock.NewFixed(now)),
		WithDeliveryLocation(time.UTC),
	}, opts...)
	return NewDeliveryScheduler(timer, notifier, opts...), timer
}

func TestScheduleFutureDeliveryWaitsForTimer(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	notifier := &recordingNotifier{}
	d, timer := newTestDelivery(issuedAt, notifier)
	ticket := issuedTicket(t, "BK-1", testEventDate)

	schedule, err := d.Schedule(context.Background(), ticket)
	require.NoError(t, err)
	assert.Equal(t, types.DELIVERY_PENDING, schedule.Status)
	assert.Equal(t, time.Date(2026, 10, 20, 6, 0, 0, 0, time.UTC), schedule.ScheduledFor)
	assert.Equal(t, utils.EncodeCompact(ticket), schedule.Payload)
	assert.Equal(t, "someone@example.com", schedule.Recipient)
	assert.Equal(t, schedule.ScheduledFor, timer.runAt[schedule.ID])
	assert.Equal(t, 0, notifier.count())

	require.True(t, timer.fire(schedule.ID))

	got, ok := d.Get(schedule.ID)
	require.True(t, ok)
	assert.Equal(t, types.DELIVERY_SENT, got.Status)
	assert.NotNil(t, got.CompletedAt)
	require.Equal(t, 1, notifier.count())
	mail := notifier.sent[0]
	assert.Equal(t, "someone@example.com", mail.to)
	assert.Contains(t, mail.subject, "Campus Night")
	assert.Contains(t, mail.body, html.EscapeString(schedule.Payload))
	assert.Contains(t, mail.body, "data:image/jpeg;base64,")

	require.NoError(t, d.Shutdown(context.Background()))
}

func TestScheduleElapsedDeliverySendsImmediately(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	notifier := &recordingNotifier{}
	d, timer := newTestDelivery(eventEvening, notifier)
	ticket := issuedTicket(t, "BK-1", testEventDate)

	schedule, err := d.Schedule(context.Background(), ticket)
	require.NoError(t, err)
	assert.Equal(t, 0, timer.pending())

	require.Eventually(t, func() bool {
		got, ok := d.Get(schedule.ID)
		return ok && got.Status == types.DELIVERY_SENT
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, notifier.count())

	require.NoError(t, d.Shutdown(context.Background()))
}

func TestDeliveryFailureIsRecordedAndReported(t *testing.T) {
	notifier := &recordingNotifier{err: &mailboxError{code: 550}}
	reporter := &recordingReporter{}
	d, timer := newTestDelivery(issuedAt, notifier, WithFailureReporter(reporter))

	schedule, err := d.Schedule(context.Background(), issuedTicket(t, "BK-1", testEventDate))
	require.NoError(t, err)
	require.True(t, timer.fire(schedule.ID))

	got, ok := d.Get(schedule.ID)
	require.True(t, ok)
	assert.Equal(t, types.DELIVERY_FAILED, got.Status)
	assert.Contains(t, got.LastError, "mailbox unavailable")

	causes := reporter.reported()
	require.Len(t, causes, 1)
	assert.ErrorIs(t, causes[0], types.ErrDeliveryFailed)
	var mbErr *mailboxError
	require.ErrorAs(t, causes[0], &mbErr)
	assert.Equal(t, 550, mbErr.code)

	notifier.err = nil
	timer.fire(schedule.ID)
	got, _ = d.Get(schedule.ID)
	assert.Equal(t, types.DELIVERY_FAILED, got.Status)
	assert.Equal(t, 0, notifier.count())
}

type mailboxError struct {
	code int
}

func (e *mailboxError) Error() string {
	return fmt.Sprintf("mailbox unavailable (%d)", e.code)
}

func TestCancelPendingDelivery(t *testing.T) {
	notifier := &recordingNotifier{}
	d, timer := newTestDelivery(issuedAt, notifier)

	schedule, err := d.Schedule(context.Background(), issuedTicket(t, "BK-1", testEventDate))
	require.NoError(t, err)
	job := timer.job(schedule.ID)
	require.NotNil(t, job)

	assert.True(t, d.Cancel(schedule.ID))
	assert.Equal(t, 0, timer.pending())
	_, ok := d.Get(schedule.ID)
	assert.False(t, ok)
	assert.False(t, d.Cancel(schedule.ID))

	job()
	assert.Equal(t, 0, notifier.count())
	assert.False(t, d.Cancel(uuid.New()))
}

func TestCancelAfterFireFails(t *testing.T) {
	notifier := &recordingNotifier{}
	d, timer := newTestDelivery(issuedAt, notifier)

	schedule, err := d.Schedule(context.Background(), issuedTicket(t, "BK-1", testEventDate))
	require.NoError(t, err)
	require.True(t, timer.fire(schedule.ID))

	assert.False(t, d.Cancel(schedule.ID))
	got, ok := d.Get(schedule.ID)
	require.True(t, ok)
	assert.Equal(t, types.DELIVERY_SENT, got.Status)
}

func TestListAllSortedBySchedule(t *testing.T) {
	d, _ := newTestDelivery(issuedAt, &recordingNotifier{})

	_, err := d.Schedule(context.Background(), issuedTicket(t, "BK-3", "2026-12-01"))
	require.NoError(t, err)
	_, err = d.Schedule(context.Background(), issuedTicket(t, "BK-1", "2026-10-20"))
	require.NoError(t, err)
	_, err = d.Schedule(context.Background(), issuedTicket(t, "BK-2", "2026-11-02"))
	require.NoError(t, err)

	all := d.ListAll()
	require.Len(t, all, 3)
	assert.Equal(t, "2026-10-20", all[0].ScheduledFor.Format("2006-01-02"))
	assert.Equal(t, "2026-11-02", all[1].ScheduledFor.Format("2006-01-02"))
	assert.Equal(t, "2026-12-01", all[2].ScheduledFor.Format("2006-01-02"))
}

func TestDeliveryHourAndLocation(t *testing.T) {
	manila, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)
	d, timer := newTestDelivery(issuedAt, &recordingNotifier{}, WithDeliveryLocation(manila), WithDeliveryHour(8))

	schedule, err := d.Schedule(context.Background(), issuedTicket(t, "BK-1", testEventDate))
	require.NoError(t, err)
	assert.True(t, schedule.ScheduledFor.Equal(time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, timer.pending())
}

func TestScheduleRejectsBadInput(t *testing.T) {
	d, timer := newTestDelivery(issuedAt, &recordingNotifier{})

	_, err := d.Schedule(context.Background(), nil)
	assert.ErrorIs(t, err, types.ErrInvalidBooking)

	ticket := issuedTicket(t, "BK-1", testEventDate)
	ticket.EventDate = "soon"
	_, err = d.Schedule(context.Background(), ticket)
	assert.ErrorIs(t, err, types.ErrInvalidBooking)

	timer.err = errors.New("scheduler stopped")
	_, err = d.Schedule(context.Background(), issuedTicket(t, "BK-2", testEventDate))
	assert.Error(t, err)
	assert.Empty(t, d.ListAll())
}

func TestScheduleAfterShutdown(t *testing.T) {
	d, timer := newTestDelivery(issuedAt, &recordingNotifier{})
	require.NoError(t, d.Shutdown(context.Background()))
	assert.True(t, timer.closed)

	_, err := d.Schedule(context.Background(), issuedTicket(t, "BK-1", testEventDate))
	assert.ErrorIs(t, err, ErrSchedulerClosed)
}
