package achievement_test

import (
	"strings"
	"testing"

	"Wanderfund/internal/domain/achievement"

	"github.com/shopspring/decimal"
)

func codes(items []achievement.Achievement) []achievement.Code {
	out := make([]achievement.Code, 0, len(items))
	for _, a := range items {
		out = append(out, a.Code)
	}
	return out
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		before string
		after  string
		count  int64
		want   []achievement.Code
	}{
		{name: "no crossing", before: "0", after: "20", count: 1, want: []achievement.Code{}},
		{name: "exactly on threshold", before: "0", after: "25", count: 1, want: []achievement.Code{achievement.Milestone25}},
		{name: "crosses two", before: "0", after: "60", count: 1, want: []achievement.Code{achievement.Milestone25, achievement.Milestone50}},
		{name: "already past", before: "25", after: "30", count: 2, want: []achievement.Code{}},
		{name: "to completion", before: "60", after: "110", count: 3, want: []achievement.Code{achievement.Milestone75, achievement.Milestone100}},
		{name: "all at once", before: "0", after: "100", count: 1, want: []achievement.Code{achievement.Milestone25, achievement.Milestone50, achievement.Milestone75, achievement.Milestone100}},
		{name: "consistent saver", before: "10", after: "12", count: 5, want: []achievement.Code{achievement.ConsistentSaver}},
		{name: "consistent saver only once", before: "12", after: "14", count: 6, want: []achievement.Code{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := codes(achievement.Evaluate(decimal.RequireFromString(tt.before), decimal.RequireFromString(tt.after), tt.count))
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestPersonalize(t *testing.T) {
	items := achievement.Evaluate(decimal.Zero, decimal.NewFromInt(100), 5)
	out := achievement.Personalize(items, "Zanzibar", decimal.NewFromInt(1000), 5)

	if len(out) != 5 {
		t.Fatalf("expected 5 achievements, got %d", len(out))
	}
	if !strings.Contains(out[0].Message, "1000.00") || !strings.Contains(out[0].Message, "Zanzibar") {
		t.Fatalf("unexpected quarter message: %q", out[0].Message)
	}
	if !strings.Contains(out[4].Message, "5 contributions") {
		t.Fatalf("unexpected consistent saver message: %q", out[4].Message)
	}
	if items[0].Message != "" {
		t.Fatalf("expected Personalize to leave its input untouched")
	}
}
