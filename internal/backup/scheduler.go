package backup

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler runs a backup-taking function once daily at a configured
// time-of-day. No cron-expression library appears anywhere in the example
// pack (spf13/cobra is a CLI framework, not a scheduler), so the loop
// checks a time.Ticker against the wall clock rather than parsing a cron
// expression — a justified stdlib component, documented in DESIGN.md.
type Scheduler struct {
	schedule string // "HH:MM", 24-hour
	runOnce  func(ctx context.Context) error
	log      zerolog.Logger
	tick     time.Duration

	stop chan struct{}
	done chan struct{}
}

// NewScheduler builds a Scheduler that invokes runOnce once per day at
// schedule ("HH:MM", 24-hour, server-local time).
func NewScheduler(schedule string, runOnce func(ctx context.Context) error, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		schedule: schedule,
		runOnce:  runOnce,
		log:      log.With().Str("component", "backup.scheduler").Logger(),
		tick:     time.Minute,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// ParseSchedule validates schedule as an "HH:MM" 24-hour time-of-day.
func ParseSchedule(schedule string) (hour, minute int, err error) {
	parts := strings.SplitN(schedule, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("backup: invalid BACKUP_SCHEDULE %q, want HH:MM", schedule)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("backup: invalid hour in BACKUP_SCHEDULE %q", schedule)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("backup: invalid minute in BACKUP_SCHEDULE %q", schedule)
	}
	return hour, minute, nil
}

// Start runs the scheduler loop in the current goroutine until Stop is
// called; callers typically invoke it with `go scheduler.Start(ctx)`. A
// malformed schedule is logged once and the loop exits without running.
func (s *Scheduler) Start(ctx context.Context) {
	defer close(s.done)

	hour, minute, err := ParseSchedule(s.schedule)
	if err != nil {
		s.log.Error().Err(err).Msg("backup scheduler disabled: bad schedule")
		return
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	lastRun := time.Time{}
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case now := <-ticker.C:
			if now.Hour() != hour || now.Minute() != minute {
				continue
			}
			if lastRun.Year() == now.Year() && lastRun.YearDay() == now.YearDay() {
				continue
			}
			lastRun = now
			if err := s.runOnce(ctx); err != nil {
				s.log.Error().Err(err).Msg("scheduled backup failed")
			}
		}
	}
}

// Stop signals the loop to exit and waits for it to do so.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}
