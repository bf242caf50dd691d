package infrastructure_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"Wanderfund/config"
	"Wanderfund/internal/domain/booking"
	"Wanderfund/internal/domain/notification"
	"Wanderfund/internal/domain/payment"
	"Wanderfund/internal/domain/savings"
	appErrors "Wanderfund/internal/errors"
	"Wanderfund/internal/infrastructure"
	"Wanderfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:       "sqlite",
			DSN:          ":memory:",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
			AutoMigrate:  true,
		},
		Log: config.LogConfig{Level: "error"},
	}
	db, err := infrastructure.NewDb(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedGoal(t *testing.T, repo *infrastructure.SavingsRepository, target string, freq savings.Frequency) *savings.Goal {
	t.Helper()
	g := &savings.Goal{
		Id:                 pkg.GenerateULIDObject(),
		UserId:             pkg.GenerateULIDObject(),
		Title:              "Serengeti",
		TargetAmount:       decimal.RequireFromString(target),
		CurrentAmount:      decimal.Zero,
		Progress:           decimal.Zero,
		Frequency:          freq,
		AmountPerFrequency: decimal.NewFromInt(50),
		StartDate:          fixedNow.AddDate(0, -1, 0),
		CreatedAt:          fixedNow.AddDate(0, -1, 0),
		UpdatedAt:          fixedNow.AddDate(0, -1, 0),
	}
	require.NoError(t, repo.Create(context.Background(), g))
	return g
}

type failingLedgerRepo struct {
	*infrastructure.SavingsRepository
}

func (f failingLedgerRepo) UpdateLedgerFields(ctx context.Context, g *savings.Goal) error {
	return appErrors.ErrStorageUnavailable
}

func TestSavingsRepositoryOwnership(t *testing.T) {
	db := newTestDB(t)
	repo := &infrastructure.SavingsRepository{DB: db}
	goal := seedGoal(t, repo, "1000", savings.FrequencyMonthly)

	got, err := repo.GetByIDAndUser(context.Background(), goal.Id, goal.UserId)
	require.NoError(t, err)
	assert.Equal(t, goal.Title, got.Title)
	assert.True(t, got.TargetAmount.Equal(decimal.NewFromInt(1000)))

	_, err = repo.GetByIDAndUser(context.Background(), goal.Id, pkg.GenerateULIDObject())
	assert.ErrorIs(t, err, appErrors.ErrGoalNotFound)
}

func TestContributeCommitsLedgerUnit(t *testing.T) {
	db := newTestDB(t)
	repo := &infrastructure.SavingsRepository{DB: db}
	svc := &savings.Service{Repository: repo, Tx: &infrastructure.TxManager{DB: db}, Clock: clock}
	goal := seedGoal(t, repo, "200", savings.FrequencyCustom)
	ctx := context.Background()

	result, err := svc.Contribute(ctx, savings.ContributionRequest{
		GoalID:   goal.Id,
		Amount:   decimal.NewFromInt(60),
		Trigger:  savings.ManualTrigger(),
		EventKey: savings.ManualEventKey("abc"),
	})
	require.NoError(t, err)
	assert.Len(t, result.Achievements, 1)

	replay, err := svc.Contribute(ctx, savings.ContributionRequest{
		GoalID:   goal.Id,
		Amount:   decimal.NewFromInt(60),
		Trigger:  savings.ManualTrigger(),
		EventKey: savings.ManualEventKey("abc"),
	})
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
	assert.Equal(t, result.Contribution.Id, replay.Contribution.Id)

	_, err = svc.Contribute(ctx, savings.ContributionRequest{GoalID: goal.Id, Amount: decimal.NewFromInt(140), Trigger: savings.ManualTrigger()})
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, goal.Id)
	require.NoError(t, err)
	assert.True(t, stored.CurrentAmount.Equal(decimal.NewFromInt(200)))
	assert.True(t, stored.IsCompleted)
	assert.NotNil(t, stored.CompletedAt)

	sum, err := repo.SumCompletedContributions(ctx, goal.Id)
	require.NoError(t, err)
	assert.True(t, sum.Equal(stored.CurrentAmount))

	_, err = svc.Contribute(ctx, savings.ContributionRequest{GoalID: goal.Id, Amount: decimal.NewFromInt(1), Trigger: savings.ManualTrigger()})
	assert.ErrorIs(t, err, appErrors.ErrGoalAlreadyCompleted)
}

func TestContributeRollsBackOnStorageFailure(t *testing.T) {
	db := newTestDB(t)
	repo := &infrastructure.SavingsRepository{DB: db}
	svc := &savings.Service{Repository: failingLedgerRepo{repo}, Tx: &infrastructure.TxManager{DB: db}, Clock: clock}
	goal := seedGoal(t, repo, "500", savings.FrequencyCustom)

	_, err := svc.Contribute(context.Background(), savings.ContributionRequest{GoalID: goal.Id, Amount: decimal.NewFromInt(100), Trigger: savings.ManualTrigger()})
	require.Error(t, err)
	assert.True(t, appErrors.IsRetryable(err))

	count, err := repo.CountCompletedContributions(context.Background(), goal.Id)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestContributionEventKeyIsUnique(t *testing.T) {
	db := newTestDB(t)
	repo := &infrastructure.SavingsRepository{DB: db}
	goal := seedGoal(t, repo, "500", savings.FrequencyMonthly)
	key := savings.AutoDebitEventKey(savings.FrequencyMonthly, "2026-07")

	newContribution := func() *savings.Contribution {
		k := key
		return &savings.Contribution{
			Id:        pkg.GenerateULIDObject(),
			SavingId:  goal.Id,
			Amount:    decimal.NewFromInt(50),
			Method:    savings.MethodAutoDebit,
			Status:    savings.ContributionCompleted,
			Date:      fixedNow,
			EventKey:  &k,
			CreatedAt: fixedNow,
		}
	}

	require.NoError(t, repo.CreateContribution(context.Background(), newContribution()))
	err := repo.CreateContribution(context.Background(), newContribution())
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	found, err := repo.GetContributionByEventKey(context.Background(), goal.Id, key)
	require.NoError(t, err)
	require.NotNil(t, found)

	missing, err := repo.GetContributionByEventKey(context.Background(), goal.Id, "auto:monthly:2026-08")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListOpenByFrequency(t *testing.T) {
	db := newTestDB(t)
	repo := &infrastructure.SavingsRepository{DB: db}
	monthly := seedGoal(t, repo, "500", savings.FrequencyMonthly)
	seedGoal(t, repo, "500", savings.FrequencyCustom)
	done := seedGoal(t, repo, "500", savings.FrequencyDaily)
	done.IsCompleted = true
	done.CurrentAmount = decimal.NewFromInt(500)
	require.NoError(t, repo.UpdateLedgerFields(context.Background(), done))

	goals, total, err := repo.ListOpenByFrequency(context.Background(), savings.RecurringFrequencies(), &pkg.PaginationParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, goals, 1)
	assert.Equal(t, monthly.Id, goals[0].Id)
}

func TestPaymentClaimPendingIsConditional(t *testing.T) {
	db := newTestDB(t)
	repo := &infrastructure.PaymentRepository{DB: db}
	ctx := context.Background()
	tx := &payment.Transaction{
		Id:        pkg.GenerateULIDObject(),
		UserId:    pkg.GenerateULIDObject(),
		Amount:    decimal.NewFromInt(75),
		Type:      payment.TypeRefund,
		Provider:  payment.ProviderBank,
		Status:    payment.StatusPending,
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}
	require.NoError(t, repo.Create(ctx, tx))

	claimed, err := repo.ClaimPending(ctx, tx.Id, payment.StatusCompleted, "REF-1", fixedNow)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.ClaimPending(ctx, tx.Id, payment.StatusFailed, "REF-2", fixedNow)
	require.NoError(t, err)
	assert.False(t, claimed)

	stored, err := repo.GetByID(ctx, tx.Id)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCompleted, stored.Status)
	assert.Equal(t, "REF-1", stored.Reference)
	assert.NotNil(t, stored.ReconciledAt)

	_, err = repo.GetByID(ctx, pkg.GenerateULIDObject())
	assert.ErrorIs(t, err, appErrors.ErrTransactionNotFound)
}

func TestReconcileConcurrentDeliveriesOnSQLite(t *testing.T) {
	db := newTestDB(t)
	savingsRepo := &infrastructure.SavingsRepository{DB: db}
	paymentRepo := &infrastructure.PaymentRepository{DB: db}
	txm := &infrastructure.TxManager{DB: db}
	ledger := &savings.Service{Repository: savingsRepo, Tx: txm, Clock: clock}
	svc := &payment.Service{
		Repository: paymentRepo,
		Webhooks:   &infrastructure.WebhookDeliveryRepository{DB: db},
		Bookings:   &infrastructure.BookingRepository{DB: db},
		Goals:      savingsRepo,
		Ledger:     ledger,
		Tx:         txm,
		Clock:      clock,
		Timeout:    5 * time.Second,
	}

	goal := seedGoal(t, savingsRepo, "1000", savings.FrequencyCustom)
	tx, err := svc.InitiatePayment(context.Background(), &payment.InitiatePaymentRequest{
		UserId:   goal.UserId,
		Amount:   decimal.NewFromInt(300),
		Type:     payment.TypeSavingsContribution,
		Provider: payment.ProviderMpesa,
		SavingId: &goal.Id,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	applied := 0
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Reconcile(context.Background(), payment.WebhookEvent{
				TransactionID: tx.Id,
				Outcome:       payment.OutcomeSuccess,
				Reference:     "NLJ7RT61SV",
				Provider:      payment.ProviderMpesa,
			})
			if !assert.NoError(t, err) {
				return
			}
			if result.Contribution != nil {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, applied)
	stored, err := savingsRepo.GetByID(context.Background(), goal.Id)
	require.NoError(t, err)
	assert.True(t, stored.CurrentAmount.Equal(decimal.NewFromInt(300)))

	count, err := savingsRepo.CountCompletedContributions(context.Background(), goal.Id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestBookingMarkPaidIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := &infrastructure.BookingRepository{DB: db}
	ctx := context.Background()
	b := &booking.Booking{
		Id:        pkg.GenerateULIDObject(),
		UserId:    pkg.GenerateULIDObject(),
		TripId:    pkg.GenerateULIDObject(),
		Status:    booking.StatusPending,
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}
	require.NoError(t, repo.Create(ctx, b))

	require.NoError(t, repo.MarkPaid(ctx, b.Id, fixedNow))
	require.NoError(t, repo.MarkPaid(ctx, b.Id, fixedNow.Add(time.Hour)))

	stored, err := repo.GetByIDAndUser(ctx, b.Id, b.UserId)
	require.NoError(t, err)
	assert.True(t, stored.IsPaid)
	assert.Equal(t, booking.StatusConfirmed, stored.Status)
	require.NotNil(t, stored.PaidAt)
	assert.True(t, stored.PaidAt.Equal(fixedNow))

	assert.ErrorIs(t, repo.MarkPaid(ctx, pkg.GenerateULIDObject(), fixedNow), appErrors.ErrBookingNotFound)
}

func TestNotificationSettings(t *testing.T) {
	db := newTestDB(t)
	repo := &infrastructure.NotificationRepository{DB: db}
	ctx := context.Background()
	userID := pkg.GenerateULIDObject()

	settings, err := repo.GetSettings(ctx, userID)
	require.NoError(t, err)
	assert.True(t, settings.AchievementCelebrations)

	require.NoError(t, repo.SaveSettings(ctx, &notification.Settings{UserId: userID, AchievementCelebrations: false}))
	settings, err = repo.GetSettings(ctx, userID)
	require.NoError(t, err)
	assert.False(t, settings.AchievementCelebrations)

	require.NoError(t, repo.Create(ctx, &notification.Notification{
		Id:        pkg.GenerateULIDObject(),
		UserId:    userID,
		SavingId:  pkg.GenerateULIDObject(),
		Type:      notification.TypeAchievement,
		Title:     "Halfway There!",
		Message:   "Amazing!",
		CreatedAt: fixedNow,
	}))
}

func TestPaymentStatsByUser(t *testing.T) {
	db := newTestDB(t)
	repo := &infrastructure.PaymentRepository{DB: db}
	ctx := context.Background()
	userID := pkg.GenerateULIDObject()

	seed := func(owner ulid.ULID, amount string, typ payment.Type, status payment.Status) {
		require.NoError(t, repo.Create(ctx, &payment.Transaction{
			Id:        pkg.GenerateULIDObject(),
			UserId:    owner,
			Amount:    decimal.RequireFromString(amount),
			Type:      typ,
			Provider:  payment.ProviderCard,
			Status:    status,
			CreatedAt: fixedNow,
			UpdatedAt: fixedNow,
		}))
	}
	seed(userID, "120.50", payment.TypeSavingsContribution, payment.StatusCompleted)
	seed(userID, "79.50", payment.TypeBookingPayment, payment.StatusCompleted)
	seed(userID, "10", payment.TypeSavingsContribution, payment.StatusPending)
	seed(userID, "15", payment.TypeRefund, payment.StatusFailed)
	seed(pkg.GenerateULIDObject(), "999", payment.TypeSavingsContribution, payment.StatusCompleted)

	stats, err := repo.StatsByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalTransactions)
	assert.Equal(t, int64(2), stats.SuccessfulPayments)
	assert.Equal(t, int64(1), stats.PendingPayments)
	assert.Equal(t, int64(1), stats.FailedPayments)
	assert.Equal(t, int64(2), stats.SavingsContributions)
	assert.Equal(t, int64(1), stats.BookingPayments)
	assert.True(t, stats.TotalAmount.Equal(decimal.NewFromInt(200)), stats.TotalAmount.String())

	empty, err := repo.StatsByUser(ctx, pkg.GenerateULIDObject())
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.TotalTransactions)
	assert.True(t, empty.TotalAmount.IsZero())
}

func TestSavingsUpdateGoalPersistsPlan(t *testing.T) {
	db := newTestDB(t)
	repo := &infrastructure.SavingsRepository{DB: db}
	ctx := context.Background()
	goal := seedGoal(t, repo, "1000", savings.FrequencyMonthly)

	targetDate := fixedNow.AddDate(1, 0, 0)
	goal.Title = "Ngorongoro"
	goal.TargetAmount = decimal.NewFromInt(1)
	goal.CurrentAmount = decimal.NewFromInt(1000)
	goal.Progress = pkg.Percentage(goal.CurrentAmount, goal.TargetAmount)
	goal.Frequency = savings.FrequencyWeekly
	goal.TargetDate = &targetDate
	goal.UpdatedAt = fixedNow
	require.NoError(t, repo.UpdateLedgerFields(ctx, goal))
	require.NoError(t, repo.UpdateGoal(ctx, goal))

	stored, err := repo.GetByID(ctx, goal.Id)
	require.NoError(t, err)
	assert.Equal(t, "Ngorongoro", stored.Title)
	assert.Equal(t, savings.FrequencyWeekly, stored.Frequency)
	assert.True(t, stored.TargetAmount.Equal(decimal.NewFromInt(1)))
	assert.True(t, stored.Progress.Equal(decimal.NewFromInt(100000)), stored.Progress.String())
	require.NotNil(t, stored.TargetDate)
	assert.True(t, stored.TargetDate.Equal(targetDate))

	missing := *goal
	missing.Id = pkg.GenerateULIDObject()
	assert.ErrorIs(t, repo.UpdateGoal(ctx, &missing), appErrors.ErrGoalNotFound)
}
