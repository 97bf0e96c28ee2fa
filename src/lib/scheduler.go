package lib

import (
	"admitgate/src/config"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Timer arms one-shot callbacks keyed by an id chosen by the caller.
type Timer interface {
	Name() string
	At(id uuid.UUID, runAt time.Time, fn func()) error
	Cancel(id uuid.UUID) bool
	Shutdown() error
}

type LocalScheduler struct {
	inner gocron.Scheduler
}

func NewLocalScheduler(loc *time.Location) (*LocalScheduler, error) {
	opts := []gocron.SchedulerOption{}
	if loc != nil {
		opts = append(opts, gocron.WithLocation(loc))
	}
	sched, err := gocron.NewScheduler(opts...)
	if err != nil {
		log.Printf("Error initializing Scheduler: %s\n", err.Error())
		return nil, err
	}
	sched.Start()
	return &LocalScheduler{inner: sched}, nil
}

func (l *LocalScheduler) Name() string {
	return "Local"
}

func (l *LocalScheduler) At(id uuid.UUID, runAt time.Time, fn func()) error {
	j, err := l.inner.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(runAt)),
		gocron.NewTask(fn),
		gocron.WithIdentifier(id),
		gocron.WithName(fmt.Sprintf("delivery_%s", id.String())),
	)
	if err != nil {
		log.Printf("[%s] Error creating job: %s\n", l.Name(), err.Error())
		return err
	}
	log.Printf("[%s] New Job scheduled on: %s %s\n", l.Name(), j.ID().String(), runAt.Format(config.TIME_PARSE_FORMAT))
	return nil
}

// Cancel reports whether a job with the id was still registered.
func (l *LocalScheduler) Cancel(id uuid.UUID) bool {
	return l.inner.RemoveJob(id) == nil
}

func (l *LocalScheduler) Pending() int {
	return len(l.inner.Jobs())
}

func (l *LocalScheduler) Shutdown() error {
	if err := l.inner.Shutdown(); err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return err
	}
	return nil
}
