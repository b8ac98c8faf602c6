// Package schedule runs the periodic background work: materializing
// recurring transactions, budget overrun alerts and monthly reports.
package schedule

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	recurringSpec = "0 0 * * *"   // daily at midnight
	budgetSpec    = "0 */6 * * *" // every six hours
	reportSpec    = "0 0 1 * *"   // first of the month
)

// Scheduler wires the periodic jobs onto a cron runner.
type Scheduler struct {
	cron      *cron.Cron
	recurring *RecurringProcessor
	budgets   *BudgetChecker
	reports   *Reporter
	log       zerolog.Logger
}

// NewScheduler builds a scheduler over the three periodic tasks. Any of them
// may be nil to disable that schedule.
func NewScheduler(recurring *RecurringProcessor, budgets *BudgetChecker, reports *Reporter, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		recurring: recurring,
		budgets:   budgets,
		reports:   reports,
		log:       log,
	}
}

// Start registers the cron entries and begins running them. ctx bounds each
// individual run, not the scheduler lifetime; call Stop to shut down.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.recurring != nil {
		if _, err := s.cron.AddFunc(recurringSpec, func() {
			if err := s.recurring.Sweep(ctx); err != nil {
				s.log.Error().Err(err).Msg("recurring sweep failed")
			}
		}); err != nil {
			return fmt.Errorf("registering recurring schedule: %w", err)
		}
	}
	if s.budgets != nil {
		if _, err := s.cron.AddFunc(budgetSpec, func() {
			if err := s.budgets.CheckAll(ctx); err != nil {
				s.log.Error().Err(err).Msg("budget check failed")
			}
		}); err != nil {
			return fmt.Errorf("registering budget schedule: %w", err)
		}
	}
	if s.reports != nil {
		if _, err := s.cron.AddFunc(reportSpec, func() {
			if err := s.reports.SendAll(ctx); err != nil {
				s.log.Error().Err(err).Msg("monthly reports failed")
			}
		}); err != nil {
			return fmt.Errorf("registering report schedule: %w", err)
		}
	}

	s.cron.Start()
	s.log.Info().Msg("scheduler started")
	return nil
}

// Stop halts the cron runner and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}
