// Package scheduler drives the periodic sweep jobs ambient to the engine
// (cache TTL expiry, permission grant expiry, idle session cleanup),
// grounded on the teacher's robfig/cron/v3 usage in pkg/cron/schedule.go.
package scheduler

import (
	cronlib "github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler owns a *cron.Cron instance and registers the engine's sweep
// jobs against it. Callers register plain closures (RegisterFunc) rather
// than implementing component-specific interfaces, since each sweep
// (cache TTL, permission expiry, idle sessions) already has its own
// signature in its own package.
type Scheduler struct {
	cron *cronlib.Cron
	log  zerolog.Logger
}

func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cronlib.New(),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterFunc schedules job to run on the standard 5-field cron spec.
// Errors from job are logged by job itself; the scheduler only logs a
// debug line before each run. No cron.Recover wrapper is installed, so a
// panic inside job is not recovered by the scheduler.
func (s *Scheduler) RegisterFunc(name, spec string, job func()) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.log.Debug().Str("job", name).Msg("running scheduled sweep")
		job()
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
