package infrastructure

import (
	"context"
	"errors"
	"time"

	"Wanderfund/internal/domain/savings"
	"Wanderfund/internal/domain/shared"
	appErrors "Wanderfund/internal/errors"
	"Wanderfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	goalsTable         = "savings_goals"
	contributionsTable = "savings_contributions"
)

type SavingsRepository struct {
	DB *gorm.DB
}

var _ savings.Repository = (*SavingsRepository)(nil)

type savingsGoalDB struct {
	Id                 string          `gorm:"type:varchar(26);primaryKey"`
	UserId             string          `gorm:"type:varchar(26);index;not null"`
	TripId             *string         `gorm:"type:varchar(26);index"`
	Title              string          `gorm:"type:varchar(120);not null"`
	Description        string          `gorm:"type:text"`
	TargetAmount       decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	CurrentAmount      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Progress           decimal.Decimal `gorm:"type:decimal(22,4);not null;default:0"`
	IsCompleted        bool            `gorm:"not null;default:false;index:idx_savings_goals_open,priority:1"`
	Frequency          string          `gorm:"type:varchar(20);not null;index:idx_savings_goals_open,priority:2"`
	AmountPerFrequency decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	StartDate          time.Time       `gorm:"not null"`
	TargetDate         *time.Time
	LastContribution   *time.Time
	CompletedAt        *time.Time
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

func (savingsGoalDB) TableName() string {
	return goalsTable
}

func toDomainSavingsGoal(row *savingsGoalDB) (*savings.Goal, error) {
	id, err := pkg.ParseULID(row.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	uid, err := pkg.ParseULID(row.UserId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	tripID, err := pkg.ParseULIDPtr(row.TripId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &savings.Goal{
		Id:                 id,
		UserId:             uid,
		TripId:             tripID,
		Title:              row.Title,
		Description:        row.Description,
		TargetAmount:       row.TargetAmount,
		CurrentAmount:      row.CurrentAmount,
		Progress:           row.Progress,
		IsCompleted:        row.IsCompleted,
		Frequency:          savings.Frequency(row.Frequency),
		AmountPerFrequency: row.AmountPerFrequency,
		StartDate:          row.StartDate.UTC(),
		TargetDate:         utcPtr(row.TargetDate),
		LastContribution:   utcPtr(row.LastContribution),
		CompletedAt:        utcPtr(row.CompletedAt),
		CreatedAt:          row.CreatedAt.UTC(),
		UpdatedAt:          row.UpdatedAt.UTC(),
	}, nil
}

func toDBSavingsGoal(g *savings.Goal) *savingsGoalDB {
	return &savingsGoalDB{
		Id:                 g.Id.String(),
		UserId:             g.UserId.String(),
		TripId:             pkg.ULIDPtrToString(g.TripId),
		Title:              g.Title,
		Description:        g.Description,
		TargetAmount:       g.TargetAmount,
		CurrentAmount:      g.CurrentAmount,
		Progress:           g.Progress,
		IsCompleted:        g.IsCompleted,
		Frequency:          string(g.Frequency),
		AmountPerFrequency: g.AmountPerFrequency,
		StartDate:          g.StartDate,
		TargetDate:         g.TargetDate,
		LastContribution:   g.LastContribution,
		CompletedAt:        g.CompletedAt,
		CreatedAt:          g.CreatedAt,
		UpdatedAt:          g.UpdatedAt,
	}
}

type savingsContributionDB struct {
	Id            string          `gorm:"type:varchar(26);primaryKey"`
	SavingId      string          `gorm:"type:varchar(26);not null;index;uniqueIndex:idx_contribution_event,priority:1"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Method        string          `gorm:"type:varchar(40);not null"`
	Status        string          `gorm:"type:varchar(20);not null;index"`
	Date          time.Time       `gorm:"not null;index"`
	TransactionId *string         `gorm:"type:varchar(26);uniqueIndex"`
	EventKey      *string         `gorm:"type:varchar(120);uniqueIndex:idx_contribution_event,priority:2"`
	CreatedAt     time.Time       `gorm:"not null"`
}

func (savingsContributionDB) TableName() string {
	return contributionsTable
}

func toDomainSavingsContribution(row *savingsContributionDB) (*savings.Contribution, error) {
	id, err := pkg.ParseULID(row.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	sid, err := pkg.ParseULID(row.SavingId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	txID, err := pkg.ParseULIDPtr(row.TransactionId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &savings.Contribution{
		Id:            id,
		SavingId:      sid,
		Amount:        row.Amount,
		Method:        row.Method,
		Status:        savings.ContributionStatus(row.Status),
		Date:          row.Date.UTC(),
		TransactionId: txID,
		EventKey:      row.EventKey,
		CreatedAt:     row.CreatedAt.UTC(),
	}, nil
}

func toDBSavingsContribution(c *savings.Contribution) *savingsContributionDB {
	return &savingsContributionDB{
		Id:            c.Id.String(),
		SavingId:      c.SavingId.String(),
		Amount:        c.Amount,
		Method:        c.Method,
		Status:        string(c.Status),
		Date:          c.Date,
		TransactionId: pkg.ULIDPtrToString(c.TransactionId),
		EventKey:      c.EventKey,
		CreatedAt:     c.CreatedAt,
	}
}

func (r *SavingsRepository) goals(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.DB).Table(goalsTable)
}

func (r *SavingsRepository) contributions(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.DB).Table(contributionsTable)
}

func (r *SavingsRepository) Create(ctx context.Context, g *savings.Goal) error {
	row := toDBSavingsGoal(g)
	if err := r.goals(ctx).Create(row).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *SavingsRepository) first(query *gorm.DB) (*savings.Goal, error) {
	var row savingsGoalDB
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrGoalNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainSavingsGoal(&row)
}

func (r *SavingsRepository) GetByID(ctx context.Context, id ulid.ULID) (*savings.Goal, error) {
	return r.first(r.goals(ctx).Where("id = ?", id.String()))
}

func (r *SavingsRepository) GetByIDAndUser(ctx context.Context, id, userID ulid.ULID) (*savings.Goal, error) {
	return r.first(r.goals(ctx).Where("id = ? AND user_id = ?", id.String(), userID.String()))
}

func (r *SavingsRepository) GetByIDForUpdate(ctx context.Context, id ulid.ULID) (*savings.Goal, error) {
	return r.first(r.goals(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id.String()))
}

func (r *SavingsRepository) GetByUserID(ctx context.Context, userID ulid.ULID, filters *savings.GoalFilters, pagination *pkg.PaginationParams) ([]*savings.Goal, int64, error) {
	query := r.goals(ctx).Where("user_id = ?", userID.String())
	if filters != nil {
		if filters.IsCompleted != nil {
			query = query.Where("is_completed = ?", *filters.IsCompleted)
		}
		if filters.TripId != nil {
			query = query.Where("trip_id = ?", filters.TripId.String())
		}
	}

	out, total, err := pkg.Paginate(query, pagination, "created_at DESC", toDomainSavingsGoal)
	if err != nil {
		return nil, 0, appErrors.NewDatabaseError(err)
	}
	return out, total, nil
}

func (r *SavingsRepository) GetAllByUserID(ctx context.Context, userID ulid.ULID) ([]*savings.Goal, error) {
	var rows []savingsGoalDB
	if err := r.goals(ctx).Where("user_id = ?", userID.String()).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	out := make([]*savings.Goal, 0, len(rows))
	for i := range rows {
		g, err := toDomainSavingsGoal(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (r *SavingsRepository) ListOpenByFrequency(ctx context.Context, frequencies []savings.Frequency, pagination *pkg.PaginationParams) ([]*savings.Goal, int64, error) {
	names := make([]string, 0, len(frequencies))
	for _, f := range frequencies {
		names = append(names, string(f))
	}
	query := r.goals(ctx).Where("is_completed = ? AND frequency IN ?", false, names)

	out, total, err := pkg.Paginate(query, pagination, "id ASC", toDomainSavingsGoal)
	if err != nil {
		return nil, 0, appErrors.NewDatabaseError(err)
	}
	return out, total, nil
}

func (r *SavingsRepository) UpdateLedgerFields(ctx context.Context, g *savings.Goal) error {
	result := r.goals(ctx).Where("id = ?", g.Id.String()).Updates(map[string]interface{}{
		"current_amount":    g.CurrentAmount,
		"progress":          g.Progress,
		"is_completed":      g.IsCompleted,
		"last_contribution": g.LastContribution,
		"completed_at":      g.CompletedAt,
		"updated_at":        g.UpdatedAt,
	})
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrGoalNotFound
	}
	return nil
}

func (r *SavingsRepository) UpdateGoal(ctx context.Context, g *savings.Goal) error {
	result := r.goals(ctx).Where("id = ?", g.Id.String()).Updates(map[string]interface{}{
		"title":                g.Title,
		"description":          g.Description,
		"target_amount":        g.TargetAmount,
		"frequency":            string(g.Frequency),
		"amount_per_frequency": g.AmountPerFrequency,
		"target_date":          g.TargetDate,
		"progress":             g.Progress,
		"is_completed":         g.IsCompleted,
		"completed_at":         g.CompletedAt,
		"updated_at":           g.UpdatedAt,
	})
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrGoalNotFound
	}
	return nil
}

func (r *SavingsRepository) CreateContribution(ctx context.Context, c *savings.Contribution) error {
	row := toDBSavingsContribution(c)
	if err := r.contributions(ctx).Create(row).Error; err != nil {
		if shared.IsUniqueConstraintError(err) {
			return appErrors.NewConflictError("contribution").WithError(err)
		}
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *SavingsRepository) GetContributionByEventKey(ctx context.Context, goalID ulid.ULID, eventKey string) (*savings.Contribution, error) {
	var rows []savingsContributionDB
	err := r.contributions(ctx).
		Where("saving_id = ? AND event_key = ?", goalID.String(), eventKey).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return toDomainSavingsContribution(&rows[0])
}

func (r *SavingsRepository) GetContributionsByGoalID(ctx context.Context, goalID ulid.ULID, pagination *pkg.PaginationParams) ([]*savings.Contribution, int64, error) {
	query := r.contributions(ctx).Where("saving_id = ?", goalID.String())
	out, total, err := pkg.Paginate(query, pagination, "date DESC, id DESC", toDomainSavingsContribution)
	if err != nil {
		return nil, 0, appErrors.NewDatabaseError(err)
	}
	return out, total, nil
}

func (r *SavingsRepository) userContributions(ctx context.Context, userID ulid.ULID) *gorm.DB {
	return r.contributions(ctx).
		Joins("JOIN "+goalsTable+" ON "+goalsTable+".id = "+contributionsTable+".saving_id").
		Where(goalsTable+".user_id = ?", userID.String())
}

func (r *SavingsRepository) findContributions(query *gorm.DB) ([]*savings.Contribution, error) {
	var rows []savingsContributionDB
	if err := query.Find(&rows).Error; err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	out := make([]*savings.Contribution, 0, len(rows))
	for i := range rows {
		c, err := toDomainSavingsContribution(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *SavingsRepository) GetRecentContributionsByUser(ctx context.Context, userID ulid.ULID, limit int) ([]*savings.Contribution, error) {
	return r.findContributions(r.userContributions(ctx, userID).
		Select(contributionsTable + ".*").
		Order(contributionsTable + ".date DESC").
		Limit(limit))
}

func (r *SavingsRepository) GetContributionsSince(ctx context.Context, userID ulid.ULID, since time.Time) ([]*savings.Contribution, error) {
	return r.findContributions(r.userContributions(ctx, userID).
		Select(contributionsTable+".*").
		Where(contributionsTable+".date >= ?", since).
		Order(contributionsTable + ".date ASC"))
}

func (r *SavingsRepository) CountCompletedContributions(ctx context.Context, goalID ulid.ULID) (int64, error) {
	var count int64
	err := r.contributions(ctx).
		Where("saving_id = ? AND status = ?", goalID.String(), string(savings.ContributionCompleted)).
		Count(&count).Error
	if err != nil {
		return 0, appErrors.NewDatabaseError(err)
	}
	return count, nil
}

func (r *SavingsRepository) CountContributionsByUser(ctx context.Context, userID ulid.ULID) (int64, error) {
	var count int64
	if err := r.userContributions(ctx, userID).Count(&count).Error; err != nil {
		return 0, appErrors.NewDatabaseError(err)
	}
	return count, nil
}

func (r *SavingsRepository) SumCompletedContributions(ctx context.Context, goalID ulid.ULID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.contributions(ctx).
		Select("SUM(amount)").
		Where("saving_id = ? AND status = ?", goalID.String(), string(savings.ContributionCompleted)).
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, appErrors.NewDatabaseError(err)
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
