// Package poll runs the daemon's recurring housekeeping: the tick intent
// (power-up expiry, energy regeneration, countdown refresh) and the daily
// reset check. Everything the jobs do derives from wall-clock time against
// stored timestamps, so restarts and missed runs self-correct on the next
// fire.
package poll

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"github.com/gritforge/grit/internal/app/progression"
	"github.com/gritforge/grit/internal/app/store"
	"github.com/gritforge/grit/internal/domain"
)

// Poller schedules the tick and reset jobs over a Store.
type Poller struct {
	store     *store.Store
	tasks     domain.TaskSource
	scheduler gocron.Scheduler
	log       *logrus.Entry

	tickEvery  time.Duration
	resetEvery time.Duration
}

// Option tunes a Poller.
type Option func(*Poller)

// WithIntervals overrides the tick and reset-check cadences.
func WithIntervals(tick, reset time.Duration) Option {
	return func(p *Poller) {
		p.tickEvery = tick
		p.resetEvery = reset
	}
}

// New builds a Poller. tasks may be nil when no task source is configured;
// resets then run without overdue judgement.
func New(st *store.Store, tasks domain.TaskSource, logger *logrus.Logger, opts ...Option) (*Poller, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.Local))
	if err != nil {
		return nil, err
	}

	p := &Poller{
		store:      st,
		tasks:      tasks,
		scheduler:  scheduler,
		log:        logger.WithField("component", "poll"),
		tickEvery:  30 * time.Second,
		resetEvery: time.Minute,
	}
	for _, o := range opts {
		o(p)
	}

	if _, err := scheduler.NewJob(
		gocron.DurationJob(p.tickEvery),
		gocron.NewTask(p.RunTick),
		gocron.WithName("tick"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	); err != nil {
		return nil, err
	}
	if _, err := scheduler.NewJob(
		gocron.DurationJob(p.resetEvery),
		gocron.NewTask(p.RunResetCheck),
		gocron.WithName("daily-reset"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	); err != nil {
		return nil, err
	}
	return p, nil
}

// Start begins firing jobs. The immediate first runs catch up anything
// missed while the daemon was down.
func (p *Poller) Start() {
	p.scheduler.Start()
	p.log.WithFields(logrus.Fields{
		"tick_every":  p.tickEvery.String(),
		"reset_every": p.resetEvery.String(),
	}).Info("poller started")
}

// Stop shuts the scheduler down, waiting for running jobs.
func (p *Poller) Stop() error {
	return p.scheduler.Shutdown()
}

// RunTick dispatches one tick intent. Exported so the API layer can force a
// tick before serving reads.
func (p *Poller) RunTick() {
	if _, err := p.store.Dispatch(progression.Tick{}, time.Now()); err != nil {
		p.log.WithError(err).Error("tick failed")
	}
}

// RunResetCheck dispatches a daily reset when the calendar date has moved
// past the last reset. The engine's own date guard makes racing checks
// harmless, and time-freeze extensions of NextResetTime are honored here.
func (p *Poller) RunResetCheck() {
	now := time.Now()
	snap := p.store.Snapshot()
	if snap.Reset.LastResetDate == domain.DateOnly(now) {
		return
	}
	if now.Before(snap.Reset.NextResetTime) {
		return // frozen or not yet at the boundary
	}

	var tasks []domain.TaskDue
	if p.tasks != nil {
		due, err := p.tasks.DueTasks(now)
		if err != nil {
			p.log.WithError(err).Warn("task source unavailable, resetting without overdue judgement")
		} else {
			tasks = due
		}
	}

	res, err := p.store.Dispatch(progression.PerformDailyReset{Tasks: tasks}, now)
	if err != nil {
		p.log.WithError(err).Error("daily reset failed")
		return
	}
	if res.Applied {
		p.log.WithField("date", domain.DateOnly(now)).Info("daily reset performed")
	}
}
