package recurring_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"Wanderfund/internal/domain/recurring"
	"Wanderfund/internal/domain/savings"
	"Wanderfund/internal/domain/savings/savingstest"
	appErrors "Wanderfund/internal/errors"
	"Wanderfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type fixture struct {
	repo *savingstest.MemoryRepository
	svc  *recurring.Service
}

func newFixture(now time.Time) *fixture {
	repo := savingstest.NewMemoryRepository()
	engine := &savings.Service{
		Repository: repo,
		Tx:         &savingstest.Transactor{Repo: repo},
		Clock:      func() time.Time { return now },
	}
	return &fixture{
		repo: repo,
		svc:  &recurring.Service{Goals: repo, Engine: engine, PageSize: 2},
	}
}

func (f *fixture) goal(frequency savings.Frequency, amount string, last *time.Time, completed bool) *savings.Goal {
	g := &savings.Goal{
		Id:                 pkg.GenerateULIDObject(),
		UserId:             pkg.GenerateULIDObject(),
		Title:              "Kilimanjaro",
		TargetAmount:       decimal.NewFromInt(1000),
		CurrentAmount:      decimal.Zero,
		Progress:           decimal.Zero,
		IsCompleted:        completed,
		Frequency:          frequency,
		AmountPerFrequency: decimal.RequireFromString(amount),
		LastContribution:   last,
	}
	f.repo.Seed(g)
	return g
}

func appliedIDs(report *recurring.RunReport) map[ulid.ULID]bool {
	out := make(map[ulid.ULID]bool)
	for _, r := range report.Applied {
		out[r.Goal.Id] = true
	}
	return out
}

func TestRunDuePeriodSelectsDueGoals(t *testing.T) {
	now := at("2026-03-10T08:00:00Z")
	f := newFixture(now)

	monthlyNew := f.goal(savings.FrequencyMonthly, "100", nil, false)
	monthlyDone := f.goal(savings.FrequencyMonthly, "100", ptr(at("2026-03-01T08:00:00Z")), false)
	dailyDue := f.goal(savings.FrequencyDaily, "10", ptr(at("2026-03-09T08:00:00Z")), false)
	weeklyEarly := f.goal(savings.FrequencyWeekly, "50", ptr(at("2026-03-07T08:00:00Z")), false)
	completed := f.goal(savings.FrequencyDaily, "10", nil, true)
	custom := f.goal(savings.FrequencyCustom, "10", nil, false)

	report, err := f.svc.RunDuePeriod(context.Background(), now)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	applied := appliedIDs(report)
	if len(applied) != 2 || !applied[monthlyNew.Id] || !applied[dailyDue.Id] {
		t.Fatalf("expected monthlyNew and dailyDue to be debited, got %v", applied)
	}
	for _, g := range []*savings.Goal{monthlyDone, weeklyEarly, completed, custom} {
		if len(f.repo.Contributions(g.Id)) != 0 {
			t.Fatalf("goal %s must not be debited", g.Id)
		}
	}

	contributions := f.repo.Contributions(monthlyNew.Id)
	if len(contributions) != 1 || contributions[0].Method != savings.MethodAutoDebit || !contributions[0].Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected auto-debit %+v", contributions)
	}
	if len(report.Failures) != 0 {
		t.Fatalf("expected no failures, got %+v", report.Failures)
	}
}

func TestRunDuePeriodIsIdempotentWithinPeriod(t *testing.T) {
	now := at("2026-03-10T08:00:00Z")
	f := newFixture(now)
	g := f.goal(savings.FrequencyMonthly, "100", nil, false)

	for i := 0; i < 3; i++ {
		if _, err := f.svc.RunDuePeriod(context.Background(), now.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	if got := len(f.repo.Contributions(g.Id)); got != 1 {
		t.Fatalf("expected a single auto-debit in the period, got %d", got)
	}

	next, err := f.svc.RunDuePeriod(context.Background(), at("2026-04-01T00:00:00Z"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(next.Applied) != 1 {
		t.Fatalf("expected the next month to be debited, got %d", len(next.Applied))
	}
}

func TestRunDuePeriodConcurrentRunsDebitOnce(t *testing.T) {
	now := at("2026-03-10T08:00:00Z")
	f := newFixture(now)
	goals := []*savings.Goal{
		f.goal(savings.FrequencyDaily, "10", nil, false),
		f.goal(savings.FrequencyWeekly, "20", nil, false),
		f.goal(savings.FrequencyMonthly, "30", nil, false),
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.RunDuePeriod(context.Background(), now); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	for _, g := range goals {
		if got := len(f.repo.Contributions(g.Id)); got != 1 {
			t.Fatalf("goal %s debited %d times", g.Frequency, got)
		}
	}
}

func TestRunDuePeriodCollectsFailures(t *testing.T) {
	now := at("2026-03-10T08:00:00Z")
	f := newFixture(now)
	broken := f.goal(savings.FrequencyDaily, "10", nil, false)
	healthy := f.goal(savings.FrequencyDaily, "10", nil, false)
	f.repo.CreateContributionFn = func(ctx context.Context, c *savings.Contribution) error {
		if c.SavingId == broken.Id {
			return appErrors.NewDatabaseError(errors.New("deadlock detected"))
		}
		return nil
	}

	report, err := f.svc.RunDuePeriod(context.Background(), now)
	if err != nil {
		t.Fatalf("per-goal failures must not abort the run, got %v", err)
	}
	if len(report.Failures) != 1 || report.Failures[0].GoalId != broken.Id {
		t.Fatalf("expected one failure for the broken goal, got %+v", report.Failures)
	}
	if report.Failures[0].Code != appErrors.ErrStorageUnavailable.Code {
		t.Fatalf("expected storage failure code, got %s", report.Failures[0].Code)
	}
	if !appliedIDs(report)[healthy.Id] {
		t.Fatalf("expected healthy goal to be debited")
	}
}

func TestRunDuePeriodPagesThroughCompletingGoals(t *testing.T) {
	now := at("2026-03-10T08:00:00Z")
	f := newFixture(now)
	for i := 0; i < 5; i++ {
		f.goal(savings.FrequencyMonthly, "1000", nil, false)
	}

	report, err := f.svc.RunDuePeriod(context.Background(), now)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(report.Applied) != 5 {
		t.Fatalf("expected all five goals to be debited, got %d", len(report.Applied))
	}
	for _, r := range report.Applied {
		if !r.Goal.IsCompleted {
			t.Fatalf("expected goal %s to be completed", r.Goal.Id)
		}
	}
}

type failingSource struct{}

func (failingSource) ListOpenByFrequency(ctx context.Context, frequencies []savings.Frequency, pagination *pkg.PaginationParams) ([]*savings.Goal, int64, error) {
	return nil, 0, appErrors.NewDatabaseError(errors.New("connection refused"))
}

func TestRunDuePeriodSurfacesSelectionFailure(t *testing.T) {
	svc := &recurring.Service{Goals: failingSource{}}

	if _, err := svc.RunDuePeriod(context.Background(), time.Now()); !appErrors.IsRetryable(err) {
		t.Fatalf("expected retryable storage error, got %v", err)
	}
}

func TestRunnerTick(t *testing.T) {
	now := at("2026-03-10T08:00:00Z")
	f := newFixture(now)
	g := f.goal(savings.FrequencyDaily, "10", nil, false)

	runner := recurring.NewRunner(f.svc, time.Hour, func() time.Time { return now })
	report := runner.Tick(context.Background())
	if report == nil || len(report.Applied) != 1 || report.Applied[0].Goal.Id != g.Id {
		t.Fatalf("unexpected report %+v", report)
	}

	runner.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := runner.Stop(ctx); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
}

func TestRunDuePeriodDatesDebitAtRunInstant(t *testing.T) {
	wall := at("2026-04-02T06:00:00Z")
	f := newFixture(wall)
	g := f.goal(savings.FrequencyMonthly, "100", nil, false)

	runAt := at("2026-03-31T23:59:00Z")
	if _, err := f.svc.RunDuePeriod(context.Background(), runAt); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	contributions := f.repo.Contributions(g.Id)
	if len(contributions) != 1 || !contributions[0].Date.Equal(runAt) {
		t.Fatalf("expected one debit dated %s, got %+v", runAt, contributions)
	}
	stored, _ := f.repo.Goal(g.Id)
	if stored.LastContribution == nil || !stored.LastContribution.Equal(runAt) {
		t.Fatalf("expected last contribution %s, got %v", runAt, stored.LastContribution)
	}

	next, err := f.svc.RunDuePeriod(context.Background(), at("2026-04-01T00:05:00Z"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(next.Applied) != 1 {
		t.Fatalf("expected April to be debited after a late March run, got %d", len(next.Applied))
	}
}

func TestRunDuePeriodBackdatedRunDoesNotDebitAgain(t *testing.T) {
	today := at("2026-03-11T09:00:00Z")
	f := newFixture(today)
	g := f.goal(savings.FrequencyDaily, "10", nil, false)

	if _, err := f.svc.RunDuePeriod(context.Background(), today); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	report, err := f.svc.RunDuePeriod(context.Background(), today.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(report.Applied) != 0 {
		t.Fatalf("expected a backdated run to skip, got %d debits", len(report.Applied))
	}
	if got := len(f.repo.Contributions(g.Id)); got != 1 {
		t.Fatalf("expected a single debit, got %d", got)
	}
	stored, _ := f.repo.Goal(g.Id)
	if stored.LastContribution == nil || !stored.LastContribution.Equal(today) {
		t.Fatalf("expected last contribution to stay %s, got %v", today, stored.LastContribution)
	}
}
