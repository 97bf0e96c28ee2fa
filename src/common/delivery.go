package common

import (
	"admitgate/src/clock"
	"admitgate/src/lib"
	"admitgate/src/metrics"
	"admitgate/src/models"
	"admitgate/src/types"
	"admitgate/src/utils"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

const (
	defaultDeliveryHour = 6
	sendTimeout         = 30 * time.Second
)

var ErrSchedulerClosed = errors.New("delivery scheduler is shut down")

// FailureReporter is told about every delivery that ends in failed.
type FailureReporter interface {
	ReportFailure(ctx context.Context, schedule *models.DeliverySchedule, cause error)
}

type LogFailureReporter struct {
	logger log.FieldLogger
}

func NewLogFailureReporter() *LogFailureReporter {
	return &LogFailureReporter{logger: log.WithField("component", "delivery")}
}

func (r *LogFailureReporter) ReportFailure(ctx context.Context, schedule *models.DeliverySchedule, cause error) {
	r.logger.WithFields(log.Fields{
		"schedule_id": schedule.ID.String(),
		"ticket_id":   schedule.TicketID,
	}).WithError(cause).Error("[Delivery] Ticket delivery failed")
}

type deliveryEntry struct {
	schedule models.DeliverySchedule
	ticket   models.Ticket
	fired    bool
}

// DeliveryScheduler holds ticket mails back until the morning of the event.
// The registry lock only guards status transitions; notifiers are called
// without it.
type DeliveryScheduler struct {
	timer    lib.Timer
	notifier lib.Notifier
	reporter FailureReporter
	clock    clock.Clock
	loc      *time.Location
	hour     int
	logger   log.FieldLogger

	mu        sync.Mutex
	schedules map[uuid.UUID]*deliveryEntry
	closed    bool
	inflight  sync.WaitGroup
}

type DeliveryOption func(*DeliveryScheduler)

func WithDeliveryClock(c clock.Clock) DeliveryOption {
	return func(d *DeliveryScheduler) {
		d.clock = c
	}
}

func WithDeliveryLocation(loc *time.Location) DeliveryOption {
	return func(d *DeliveryScheduler) {
		d.loc = loc
	}
}

func WithDeliveryHour(hour int) DeliveryOption {
	return func(d *DeliveryScheduler) {
		d.hour = hour
	}
}

func WithFailureReporter(r FailureReporter) DeliveryOption {
	return func(d *DeliveryScheduler) {
		d.reporter = r
	}
}

func NewDeliveryScheduler(timer lib.Timer, notifier lib.Notifier, opts ...DeliveryOption) *DeliveryScheduler {
	d := &DeliveryScheduler{
		timer:     timer,
		notifier:  notifier,
		reporter:  NewLogFailureReporter(),
		clock:     clock.NewSystem(),
		loc:       time.Local,
		hour:      defaultDeliveryHour,
		logger:    log.WithField("component", "delivery"),
		schedules: make(map[uuid.UUID]*deliveryEntry),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Schedule arms delivery of the ticket's QR payload for the event day at the
// configured hour. When that moment has already passed the mail goes out
// right away, without waiting on the timer.
func (d *DeliveryScheduler) Schedule(ctx context.Context, ticket *models.Ticket) (*models.DeliverySchedule, error) {
	if ticket == nil || ticket.UserEmail == "" {
		return nil, fmt.Errorf("%w: ticket has no recipient", types.ErrInvalidBooking)
	}
	scheduledFor, err := utils.AtHourOnEventDay(ticket.EventDate, d.hour, d.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: eventDate %q", types.ErrInvalidBooking, ticket.EventDate)
	}
	now := d.clock.Now()
	entry := &deliveryEntry{
		schedule: models.DeliverySchedule{
			ID:           uuid.New(),
			TicketID:     ticket.ID,
			Recipient:    ticket.UserEmail,
			Payload:      utils.EncodeCompact(ticket),
			ScheduledFor: scheduledFor,
			Status:       types.DELIVERY_PENDING,
			CreatedAt:    now,
		},
		ticket: *ticket,
	}
	id := entry.schedule.ID
	immediate := !scheduledFor.After(now)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrSchedulerClosed
	}
	d.schedules[id] = entry
	snapshot := entry.schedule
	if immediate {
		d.inflight.Add(1)
	}
	d.mu.Unlock()

	metrics.DeliveriesScheduled.Inc()
	if immediate {
		d.logger.Printf("[Delivery] Event day already started, sending Ticket [%s] now\n", ticket.ID)
		go func() {
			defer d.inflight.Done()
			d.dispatch(id)
		}()
		return &snapshot, nil
	}
	if err := d.timer.At(id, scheduledFor, func() { d.onTimer(id) }); err != nil {
		d.mu.Lock()
		delete(d.schedules, id)
		d.mu.Unlock()
		return nil, fmt.Errorf("error scheduling delivery of Ticket [%s]: %w", ticket.ID, err)
	}
	d.logger.WithFields(log.Fields{
		"schedule_id":   id.String(),
		"ticket_id":     ticket.ID,
		"scheduled_for": scheduledFor.Format(time.RFC3339),
	}).Info("[Delivery] Ticket delivery scheduled")
	return &snapshot, nil
}

// Cancel drops a pending schedule. It reports false when the schedule is
// unknown or its timer already fired.
func (d *DeliveryScheduler) Cancel(id uuid.UUID) bool {
	d.mu.Lock()
	entry, ok := d.schedules[id]
	if !ok || entry.fired {
		d.mu.Unlock()
		return false
	}
	delete(d.schedules, id)
	d.mu.Unlock()

	d.timer.Cancel(id)
	d.logger.Printf("[Delivery] Schedule [%s] canceled\n", id.String())
	return true
}

func (d *DeliveryScheduler) Get(id uuid.UUID) (*models.DeliverySchedule, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.schedules[id]
	if !ok {
		return nil, false
	}
	s := entry.schedule
	return &s, true
}

func (d *DeliveryScheduler) ListAll() []models.DeliverySchedule {
	d.mu.Lock()
	out := lo.MapToSlice(d.schedules, func(_ uuid.UUID, e *deliveryEntry) models.DeliverySchedule {
		return e.schedule
	})
	d.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledFor.Equal(out[j].ScheduledFor) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ScheduledFor.Before(out[j].ScheduledFor)
	})
	return out
}

// Shutdown stops the timer backend and waits for sends already in flight.
func (d *DeliveryScheduler) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	err := d.timer.Shutdown()
	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *DeliveryScheduler) onTimer(id uuid.UUID) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.inflight.Add(1)
	d.mu.Unlock()
	defer d.inflight.Done()
	d.dispatch(id)
}

// dispatch sends at most once per schedule. Whoever sets fired first wins
// against Cancel.
func (d *DeliveryScheduler) dispatch(id uuid.UUID) {
	d.mu.Lock()
	entry, ok := d.schedules[id]
	if !ok || entry.fired {
		d.mu.Unlock()
		return
	}
	entry.fired = true
	ticket := entry.ticket
	schedule := entry.schedule
	d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	sendErr := d.send(ctx, &ticket, &schedule)
	completedAt := d.clock.Now()

	d.mu.Lock()
	entry.schedule.CompletedAt = &completedAt
	if sendErr != nil {
		entry.schedule.Status = types.DELIVERY_FAILED
		entry.schedule.LastError = sendErr.Error()
	} else {
		entry.schedule.Status = types.DELIVERY_SENT
	}
	schedule = entry.schedule
	d.mu.Unlock()

	metrics.DeliveriesCompleted.WithLabelValues(string(schedule.Status), d.notifier.Name()).Inc()
	if sendErr != nil {
		d.reporter.ReportFailure(ctx, &schedule, fmt.Errorf("%w: %w", types.ErrDeliveryFailed, sendErr))
		return
	}
	d.logger.WithFields(log.Fields{
		"schedule_id": id.String(),
		"ticket_id":   schedule.TicketID,
		"notifier":    d.notifier.Name(),
	}).Info("[Delivery] Ticket delivered")
}

func (d *DeliveryScheduler) send(ctx context.Context, ticket *models.Ticket, schedule *models.DeliverySchedule) error {
	subject, body, err := RenderTicketMail(ticket, schedule.Payload, d.loc)
	if err != nil {
		return err
	}
	start := time.Now()
	defer func() {
		metrics.DeliveryDuration.WithLabelValues(d.notifier.Name()).Observe(time.Since(start).Seconds())
	}()
	return d.notifier.Send(ctx, schedule.Recipient, subject, body)
}
