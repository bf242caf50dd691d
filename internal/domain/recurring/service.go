package recurring

import (
	"context"
	"errors"
	"time"

	"Wanderfund/internal/domain/savings"
	appErrors "Wanderfund/internal/errors"
	"Wanderfund/internal/logger"
	"Wanderfund/internal/metrics"
	"Wanderfund/internal/pkg"

	"github.com/oklog/ulid/v2"
)

const defaultPageSize = 100

type Service struct {
	Goals    GoalSource
	Engine   ContributionEngine
	PageSize int
}

type GoalFailure struct {
	GoalId ulid.ULID `json:"goalId"`
	Code   string    `json:"code"`
	Error  string    `json:"error"`
}

type RunReport struct {
	RunAt    time.Time                     `json:"runAt"`
	Applied  []*savings.ContributionResult `json:"applied"`
	Skipped  []ulid.ULID                   `json:"skipped"`
	Failures []GoalFailure                 `json:"failures"`
}

// RunDuePeriod auto-debits every open recurring goal whose cadence window has
// no contribution yet. Per-goal failures are collected, never returned.
func (s *Service) RunDuePeriod(ctx context.Context, now time.Time) (*RunReport, error) {
	now = now.UTC()
	metrics.SchedulerRuns.Inc()

	candidates, err := s.dueGoals(ctx, now)
	if err != nil {
		return nil, err
	}

	report := &RunReport{
		RunAt:    now,
		Applied:  make([]*savings.ContributionResult, 0, len(candidates)),
		Skipped:  make([]ulid.ULID, 0),
		Failures: make([]GoalFailure, 0),
	}

	for _, goal := range candidates {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result, err := s.Engine.Contribute(ctx, savings.ContributionRequest{
			GoalID:   goal.Id,
			Amount:   goal.AmountPerFrequency,
			Trigger:  savings.AutoDebitTrigger(),
			EventKey: savings.AutoDebitEventKey(goal.Frequency, PeriodKey(goal.Frequency, now)),
			At:       now,
			Guard:    dueGuard(now),
		})

		switch {
		case err == nil && result.Replayed:
			report.Skipped = append(report.Skipped, goal.Id)
			metrics.SchedulerGoals.WithLabelValues("skipped").Inc()
		case err == nil:
			report.Applied = append(report.Applied, result)
			metrics.SchedulerGoals.WithLabelValues("applied").Inc()
		case errors.Is(err, appErrors.ErrContributionNotDue), errors.Is(err, appErrors.ErrGoalAlreadyCompleted):
			report.Skipped = append(report.Skipped, goal.Id)
			metrics.SchedulerGoals.WithLabelValues("skipped").Inc()
		default:
			appErr := appErrors.FromError(err)
			report.Failures = append(report.Failures, GoalFailure{
				GoalId: goal.Id,
				Code:   appErr.Code,
				Error:  err.Error(),
			})
			metrics.SchedulerGoals.WithLabelValues("failed").Inc()
			logger.Error().
				Err(err).
				Str("component", "scheduler").
				Str("goal_id", goal.Id.String()).
				Str("frequency", string(goal.Frequency)).
				Msg("auto-debit failed")
		}
	}

	logger.Info().
		Str("component", "scheduler").
		Time("run_at", now).
		Int("candidates", len(candidates)).
		Int("applied", len(report.Applied)).
		Int("skipped", len(report.Skipped)).
		Int("failed", len(report.Failures)).
		Msg("recurring contributions processed")

	return report, nil
}

// dueGoals snapshots every due goal before any debit runs, so goals that
// complete mid-run do not shift later pages.
func (s *Service) dueGoals(ctx context.Context, now time.Time) ([]*savings.Goal, error) {
	size := s.PageSize
	if size < 1 {
		size = defaultPageSize
	}

	due := make([]*savings.Goal, 0)
	for page := 1; ; page++ {
		goals, total, err := s.Goals.ListOpenByFrequency(ctx, savings.RecurringFrequencies(), &pkg.PaginationParams{Page: page, Limit: size})
		if err != nil {
			return nil, err
		}
		for _, g := range goals {
			if g.AmountPerFrequency.IsPositive() && IsDue(g.Frequency, g.LastContribution, now) {
				due = append(due, g)
			}
		}
		if len(goals) == 0 || int64(page*size) >= total {
			break
		}
	}
	return due, nil
}

// dueGuard re-checks the due policy against the locked row so two overlapping
// runs cannot debit the same window twice.
func dueGuard(now time.Time) func(*savings.Goal) error {
	return func(goal *savings.Goal) error {
		if !IsDue(goal.Frequency, goal.LastContribution, now) {
			return appErrors.ErrContributionNotDue
		}
		return nil
	}
}
