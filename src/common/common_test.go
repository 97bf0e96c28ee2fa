package common

import (
	"admitgate/src/models"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	testSecret    = []byte("test-signing-secret")
	issuedAt      = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	eventEvening  = time.Date(2026, 10, 20, 18, 0, 0, 0, time.UTC)
	testEventDate = "2026-10-20"
)

func newBooking(id string) *models.Booking {
	return &models.Booking{
		BookingID:      id,
		EventID:        "EV-42",
		EventTitle:     "Campus Night",
		EventDate:      testEventDate,
		EventTime:      "19:00",
		EventLocation:  "Main Hall",
		UserName:       "Some One",
		UserEmail:      "someone@example.com",
		UserPhone:      "+15550100",
		TicketQuantity: 2,
		TotalAmount:    40,
	}
}

type fakeTimer struct {
	mu     sync.Mutex
	jobs   map[uuid.UUID]func()
	runAt  map[uuid.UUID]time.Time
	err    error
	closed bool
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{jobs: map[uuid.UUID]func(){}, runAt: map[uuid.UUID]time.Time{}}
}

func (f *fakeTimer) Name() string { return "fake" }

func (f *fakeTimer) At(id uuid.UUID, runAt time.Time, fn func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs[id] = fn
	f.runAt[id] = runAt
	return nil
}

func (f *fakeTimer) Cancel(id uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.jobs[id]
	delete(f.jobs, id)
	return ok
}

func (f *fakeTimer) Shutdown() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTimer) job(id uuid.UUID) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs[id]
}

func (f *fakeTimer) pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

// fire runs the job the way the backend would, removing it first.
func (f *fakeTimer) fire(id uuid.UUID) bool {
	f.mu.Lock()
	fn, ok := f.jobs[id]
	delete(f.jobs, id)
	f.mu.Unlock()
	if ok {
		fn()
	}
	return ok
}

type sentMail struct {
	to, subject, body string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (n *recordingNotifier) Name() string { return "recording" }

func (n *recordingNotifier) Send(ctx context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type recordingReporter struct {
	mu     sync.Mutex
	causes []error
}

func (r *recordingReporter) ReportFailure(ctx context.Context, schedule *models.DeliverySchedule, cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.causes = append(r.causes, cause)
}

func (r *recordingReporter) reported() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.causes...)
}
