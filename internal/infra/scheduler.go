// Package infra holds process-lifetime plumbing that is not domain logic.
package infra

import (
	"context"

	"cursed-focus/internal/clock"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler re-syncs the trusted clock on a cron spec so a long-running
// process does not drift from the reference source.
type Scheduler struct {
	cron  *cron.Cron
	clock *clock.Service
	spec  string
}

func NewScheduler(clk *clock.Service, spec string) *Scheduler {
	if spec == "" {
		spec = "@every 15m"
	}
	return &Scheduler{cron: cron.New(), clock: clk, spec: spec}
}

func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if !s.clock.Sync(ctx) {
			log.Warn().Msg("scheduled clock sync failed")
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Info().Str("spec", s.spec).Msg("clock sync scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
