package savings

import (
	"context"
	"sort"

	"Wanderfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

const (
	recentContributionsLimit = 5
	trendMonths              = 6
)

type Overview struct {
	TotalGoals         int             `json:"totalGoals"`
	CompletedGoals     int             `json:"completedGoals"`
	ActiveGoals        int             `json:"activeGoals"`
	TotalTarget        decimal.Decimal `json:"totalTarget"`
	TotalSaved         decimal.Decimal `json:"totalSaved"`
	OverallProgress    decimal.Decimal `json:"overallProgress"`
	TotalContributions int64           `json:"totalContributions"`
}

type MonthlyTotal struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

type Stats struct {
	Overview            Overview        `json:"overview"`
	RecentContributions []*Contribution `json:"recentContributions"`
	MonthlyTrend        []MonthlyTotal  `json:"monthlyTrend"`
}

func (s *Service) GetStats(ctx context.Context, userID ulid.ULID) (*Stats, error) {
	goals, err := s.Repository.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	overview := Overview{
		TotalTarget: decimal.Zero,
		TotalSaved:  decimal.Zero,
	}
	for _, g := range goals {
		overview.TotalGoals++
		if g.IsCompleted {
			overview.CompletedGoals++
		} else {
			overview.ActiveGoals++
		}
		overview.TotalTarget = overview.TotalTarget.Add(g.TargetAmount)
		overview.TotalSaved = overview.TotalSaved.Add(g.CurrentAmount)
	}
	overview.OverallProgress = pkg.Percentage(overview.TotalSaved, overview.TotalTarget)

	if overview.TotalContributions, err = s.Repository.CountContributionsByUser(ctx, userID); err != nil {
		return nil, err
	}

	recent, err := s.Repository.GetRecentContributionsByUser(ctx, userID, recentContributionsLimit)
	if err != nil {
		return nil, err
	}

	since := s.Clock.Now().AddDate(0, -trendMonths, 0)
	window, err := s.Repository.GetContributionsSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Overview:            overview,
		RecentContributions: recent,
		MonthlyTrend:        monthlyTrend(window),
	}, nil
}

func monthlyTrend(contributions []*Contribution) []MonthlyTotal {
	totals := make(map[string]decimal.Decimal)
	for _, c := range contributions {
		month := c.Date.UTC().Format("2006-01")
		totals[month] = totals[month].Add(c.Amount)
	}

	out := make([]MonthlyTotal, 0, len(totals))
	for month, amount := range totals {
		out = append(out, MonthlyTotal{Month: month, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
