package achievement

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Code string

const (
	Milestone25     Code = "milestone_25"
	Milestone50     Code = "milestone_50"
	Milestone75     Code = "milestone_75"
	Milestone100    Code = "milestone_100"
	ConsistentSaver Code = "consistent_saver"
)

// ConsistentSaverCount is the completed contribution count that earns the
// consistent saver badge. It fires only on the contribution that reaches it.
const ConsistentSaverCount = 5

type Achievement struct {
	Code    Code   `json:"code"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

type milestone struct {
	code      Code
	threshold decimal.Decimal
	title     string
	message   func(target, goalTitle string) string
}

var milestones = []milestone{
	{
		code:      Milestone25,
		threshold: decimal.NewFromInt(25),
		title:     "Quarter Way There!",
		message: func(target, goalTitle string) string {
			return fmt.Sprintf("You've saved 25%% of your %s target for %s. Great progress!", target, goalTitle)
		},
	},
	{
		code:      Milestone50,
		threshold: decimal.NewFromInt(50),
		title:     "Halfway There!",
		message: func(_, goalTitle string) string {
			return fmt.Sprintf("Amazing! You're halfway to your %s goal. Keep up the great work!", goalTitle)
		},
	},
	{
		code:      Milestone75,
		threshold: decimal.NewFromInt(75),
		title:     "Almost There!",
		message: func(_, goalTitle string) string {
			return fmt.Sprintf("You're 75%% of the way to %s. Your dream trip is within reach!", goalTitle)
		},
	},
	{
		code:      Milestone100,
		threshold: decimal.NewFromInt(100),
		title:     "Goal Achieved!",
		message: func(target, goalTitle string) string {
			return fmt.Sprintf("Congratulations! You've successfully saved %s for %s. Time to book your trip!", target, goalTitle)
		},
	},
}

// Evaluate returns the achievements earned by moving progress from before to
// after. A milestone fires only when before < threshold <= after, so a single
// contribution may cross several and none repeats on later contributions.
func Evaluate(before, after decimal.Decimal, contributionCount int64) []Achievement {
	out := make([]Achievement, 0)
	for _, m := range milestones {
		if before.LessThan(m.threshold) && m.threshold.LessThanOrEqual(after) {
			out = append(out, Achievement{Code: m.code, Title: m.title})
		}
	}
	if contributionCount == ConsistentSaverCount {
		out = append(out, Achievement{Code: ConsistentSaver, Title: "Consistent Saver!"})
	}
	return out
}

// Personalize fills in goal-specific copy for each achievement.
func Personalize(items []Achievement, goalTitle string, target decimal.Decimal, contributionCount int64) []Achievement {
	out := make([]Achievement, len(items))
	for i, a := range items {
		a.Message = message(a.Code, goalTitle, target.StringFixed(2), contributionCount)
		out[i] = a
	}
	return out
}

func message(code Code, goalTitle, target string, count int64) string {
	if code == ConsistentSaver {
		return fmt.Sprintf("You've made %d contributions to %s. Your dedication is paying off!", count, goalTitle)
	}
	for _, m := range milestones {
		if m.code == code {
			return m.message(target, goalTitle)
		}
	}
	return ""
}
