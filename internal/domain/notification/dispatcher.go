package notification

import (
	"context"
	"sync"
	"time"

	"Wanderfund/internal/domain/achievement"
	"Wanderfund/internal/logger"
	"Wanderfund/internal/metrics"
	"Wanderfund/internal/pkg"

	"github.com/oklog/ulid/v2"
)

const deliveryTimeout = 5 * time.Second

// Dispatcher persists achievement notifications on a bounded worker pool.
// Notify never blocks; events that do not fit in the queue are dropped.
type Dispatcher struct {
	repo    Repository
	workers int
	queue   chan Event

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(repo Repository, workers, buffer int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if buffer < 1 {
		buffer = 1
	}
	return &Dispatcher{
		repo:    repo,
		workers: workers,
		queue:   make(chan Event, buffer),
	}
}

func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
}

// Stop closes the queue and waits for in-flight events to drain.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) Notify(ctx context.Context, userID, goalID ulid.ULID, items []achievement.Achievement) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, a := range items {
		if d.closed {
			metrics.NotificationsDropped.Inc()
			continue
		}
		event := Event{
			UserId: userID,
			GoalId: goalID,
			Achievement: EventAchievement{
				Title:   a.Title,
				Message: a.Message,
			},
		}
		select {
		case d.queue <- event:
		default:
			metrics.NotificationsDropped.Inc()
			logger.Warn().
				Str("component", "notification").
				Str("user_id", userID.String()).
				Str("goal_id", goalID.String()).
				Str("title", a.Title).
				Msg("notification queue full, achievement dropped")
		}
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for event := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		if err := d.deliver(ctx, event); err != nil {
			logger.Error().
				Err(err).
				Str("component", "notification").
				Str("user_id", event.UserId.String()).
				Str("goal_id", event.GoalId.String()).
				Msg("failed to deliver achievement notification")
		}
		cancel()
	}
}

func (d *Dispatcher) deliver(ctx context.Context, event Event) error {
	settings, err := d.repo.GetSettings(ctx, event.UserId)
	if err != nil {
		return err
	}
	if !settings.AchievementCelebrations {
		return nil
	}

	return d.repo.Create(ctx, &Notification{
		Id:        pkg.GenerateULIDObject(),
		UserId:    event.UserId,
		SavingId:  event.GoalId,
		Type:      TypeAchievement,
		Title:     event.Achievement.Title,
		Message:   event.Achievement.Message,
		CreatedAt: time.Now().UTC(),
	})
}
