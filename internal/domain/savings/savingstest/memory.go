// Package savingstest provides in-memory doubles for the savings ledger.
package savingstest

import (
	"context"
	"sort"
	"sync"
	"time"

	"Wanderfund/internal/domain/achievement"
	"Wanderfund/internal/domain/savings"
	appErrors "Wanderfund/internal/errors"
	"Wanderfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// MemoryRepository is a savings.Repository backed by maps. Pair it with a
// Transactor to get all-or-nothing semantics.
type MemoryRepository struct {
	mu            sync.Mutex
	goals         map[ulid.ULID]savings.Goal
	contributions []savings.Contribution

	CreateContributionFn func(ctx context.Context, c *savings.Contribution) error
	UpdateLedgerFieldsFn func(ctx context.Context, g *savings.Goal) error
	GetByIDForUpdateFn   func(ctx context.Context, id ulid.ULID) (*savings.Goal, error)
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{goals: make(map[ulid.ULID]savings.Goal)}
}

type snapshot struct {
	goals         map[ulid.ULID]savings.Goal
	contributions []savings.Contribution
}

func (r *MemoryRepository) snapshot() snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	goals := make(map[ulid.ULID]savings.Goal, len(r.goals))
	for k, v := range r.goals {
		goals[k] = v
	}
	return snapshot{goals: goals, contributions: append([]savings.Contribution(nil), r.contributions...)}
}

func (r *MemoryRepository) restore(s snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.goals = s.goals
	r.contributions = s.contributions
}

// Seed stores a goal as-is.
func (r *MemoryRepository) Seed(g *savings.Goal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.goals[g.Id] = *g
}

// Contributions returns every stored contribution for goalID.
func (r *MemoryRepository) Contributions(goalID ulid.ULID) []savings.Contribution {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]savings.Contribution, 0)
	for _, c := range r.contributions {
		if c.SavingId == goalID {
			out = append(out, c)
		}
	}
	return out
}

func (r *MemoryRepository) Goal(id ulid.ULID) (savings.Goal, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.goals[id]
	return g, ok
}

func (r *MemoryRepository) Create(ctx context.Context, g *savings.Goal) error {
	r.Seed(g)
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id ulid.ULID) (*savings.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.goals[id]
	if !ok {
		return nil, appErrors.ErrGoalNotFound
	}
	return &g, nil
}

func (r *MemoryRepository) GetByIDAndUser(ctx context.Context, id, userID ulid.ULID) (*savings.Goal, error) {
	g, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.UserId != userID {
		return nil, appErrors.ErrGoalNotFound
	}
	return g, nil
}

func (r *MemoryRepository) GetByIDForUpdate(ctx context.Context, id ulid.ULID) (*savings.Goal, error) {
	if r.GetByIDForUpdateFn != nil {
		return r.GetByIDForUpdateFn(ctx, id)
	}
	return r.GetByID(ctx, id)
}

func (r *MemoryRepository) GetByUserID(ctx context.Context, userID ulid.ULID, filters *savings.GoalFilters, pagination *pkg.PaginationParams) ([]*savings.Goal, int64, error) {
	all, _ := r.GetAllByUserID(ctx, userID)
	out := make([]*savings.Goal, 0, len(all))
	for _, g := range all {
		if filters != nil && filters.IsCompleted != nil && g.IsCompleted != *filters.IsCompleted {
			continue
		}
		out = append(out, g)
	}
	return page(out, pagination)
}

func (r *MemoryRepository) GetAllByUserID(ctx context.Context, userID ulid.ULID) ([]*savings.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*savings.Goal, 0)
	for _, g := range r.goals {
		if g.UserId == userID {
			g := g
			out = append(out, &g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id.Compare(out[j].Id) < 0 })
	return out, nil
}

func (r *MemoryRepository) ListOpenByFrequency(ctx context.Context, frequencies []savings.Frequency, pagination *pkg.PaginationParams) ([]*savings.Goal, int64, error) {
	r.mu.Lock()
	out := make([]*savings.Goal, 0)
	for _, g := range r.goals {
		if g.IsCompleted {
			continue
		}
		for _, f := range frequencies {
			if g.Frequency == f {
				g := g
				out = append(out, &g)
				break
			}
		}
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Id.Compare(out[j].Id) < 0 })
	return page(out, pagination)
}

func (r *MemoryRepository) UpdateLedgerFields(ctx context.Context, g *savings.Goal) error {
	if r.UpdateLedgerFieldsFn != nil {
		if err := r.UpdateLedgerFieldsFn(ctx, g); err != nil {
			return err
		}
	}
	r.Seed(g)
	return nil
}

func (r *MemoryRepository) UpdateGoal(_ context.Context, g *savings.Goal) error {
	r.Seed(g)
	return nil
}

func (r *MemoryRepository) CreateContribution(ctx context.Context, c *savings.Contribution) error {
	if r.CreateContributionFn != nil {
		if err := r.CreateContributionFn(ctx, c); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.contributions {
		if existing.SavingId != c.SavingId {
			continue
		}
		if c.EventKey != nil && existing.EventKey != nil && *c.EventKey == *existing.EventKey {
			return appErrors.NewConflictError("contribution")
		}
	}
	r.contributions = append(r.contributions, *c)
	return nil
}

func (r *MemoryRepository) GetContributionByEventKey(ctx context.Context, goalID ulid.ULID, eventKey string) (*savings.Contribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contributions {
		if c.SavingId == goalID && c.EventKey != nil && *c.EventKey == eventKey {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) GetContributionsByGoalID(ctx context.Context, goalID ulid.ULID, pagination *pkg.PaginationParams) ([]*savings.Contribution, int64, error) {
	items := r.Contributions(goalID)
	out := make([]*savings.Contribution, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		c := items[i]
		out = append(out, &c)
	}
	return page(out, pagination)
}

func (r *MemoryRepository) userContributions(userID ulid.ULID) []*savings.Contribution {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*savings.Contribution, 0)
	for i := len(r.contributions) - 1; i >= 0; i-- {
		c := r.contributions[i]
		if g, ok := r.goals[c.SavingId]; ok && g.UserId == userID {
			out = append(out, &c)
		}
	}
	return out
}

func (r *MemoryRepository) GetRecentContributionsByUser(ctx context.Context, userID ulid.ULID, limit int) ([]*savings.Contribution, error) {
	out := r.userContributions(userID)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) GetContributionsSince(ctx context.Context, userID ulid.ULID, since time.Time) ([]*savings.Contribution, error) {
	out := make([]*savings.Contribution, 0)
	for _, c := range r.userContributions(userID) {
		if !c.Date.Before(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *MemoryRepository) CountCompletedContributions(ctx context.Context, goalID ulid.ULID) (int64, error) {
	var n int64
	for _, c := range r.Contributions(goalID) {
		if c.Status == savings.ContributionCompleted {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) CountContributionsByUser(ctx context.Context, userID ulid.ULID) (int64, error) {
	return int64(len(r.userContributions(userID))), nil
}

func (r *MemoryRepository) SumCompletedContributions(ctx context.Context, goalID ulid.ULID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, c := range r.Contributions(goalID) {
		if c.Status == savings.ContributionCompleted {
			sum = sum.Add(c.Amount)
		}
	}
	return sum, nil
}

func page[T any](items []*T, pagination *pkg.PaginationParams) ([]*T, int64, error) {
	pagination = pkg.NormalizePagination(pagination)
	total := int64(len(items))
	start := pagination.Offset()
	if start >= len(items) {
		return []*T{}, total, nil
	}
	end := start + pagination.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], total, nil
}

type txKey struct{}

// Participant is another in-memory store that joins the unit of work.
// Checkpoint returns a func that restores the state it captured.
type Participant interface {
	Checkpoint() (restore func())
}

// Transactor serializes units of work and rolls the repository back when fn
// fails, which stands in for the row lock and rollback of a real store.
type Transactor struct {
	mu           sync.Mutex
	Repo         *MemoryRepository
	Participants []Participant
	// BeforeCommit, when set, can fail the unit after fn succeeded.
	BeforeCommit func(ctx context.Context) error
	Commits      int
	Rollbacks    int
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var snap snapshot
	if t.Repo != nil {
		snap = t.Repo.snapshot()
	}
	restores := make([]func(), 0, len(t.Participants))
	for _, p := range t.Participants {
		restores = append(restores, p.Checkpoint())
	}

	txCtx := context.WithValue(ctx, txKey{}, true)
	err := fn(txCtx)
	if err == nil && t.BeforeCommit != nil {
		err = t.BeforeCommit(txCtx)
	}
	if err != nil {
		if t.Repo != nil {
			t.Repo.restore(snap)
		}
		for _, restore := range restores {
			restore()
		}
		t.Rollbacks++
		return err
	}
	t.Commits++
	return nil
}

// RecordingNotifier collects achievements handed to it.
type RecordingNotifier struct {
	mu     sync.Mutex
	Events []Notification
}

type Notification struct {
	UserID       ulid.ULID
	GoalID       ulid.ULID
	Achievements []string
}

func (n *RecordingNotifier) Notify(ctx context.Context, userID, goalID ulid.ULID, items []achievement.Achievement) {
	n.mu.Lock()
	defer n.mu.Unlock()
	titles := make([]string, 0, len(items))
	for _, a := range items {
		titles = append(titles, a.Title)
	}
	n.Events = append(n.Events, Notification{UserID: userID, GoalID: goalID, Achievements: titles})
}

func (n *RecordingNotifier) Titles() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0)
	for _, e := range n.Events {
		out = append(out, e.Achievements...)
	}
	return out
}
