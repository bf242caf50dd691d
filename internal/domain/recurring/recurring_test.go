package recurring_test

import (
	"testing"
	"time"

	"Wanderfund/internal/domain/recurring"
	"Wanderfund/internal/domain/savings"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(t time.Time) *time.Time {
	return &t
}

func TestIsDue(t *testing.T) {
	tests := []struct {
		name      string
		frequency savings.Frequency
		last      *time.Time
		now       time.Time
		want      bool
	}{
		{name: "never contributed", frequency: savings.FrequencyMonthly, last: nil, now: at("2026-03-10T00:00:00Z"), want: true},
		{name: "daily same date", frequency: savings.FrequencyDaily, last: ptr(at("2026-03-10T00:05:00Z")), now: at("2026-03-10T23:59:00Z"), want: false},
		{name: "daily next date", frequency: savings.FrequencyDaily, last: ptr(at("2026-03-10T23:59:00Z")), now: at("2026-03-11T00:01:00Z"), want: true},
		{name: "daily same instant different zone", frequency: savings.FrequencyDaily, last: ptr(at("2026-03-10T22:00:00-05:00")), now: at("2026-03-11T05:00:00Z"), want: false},
		{name: "weekly six days", frequency: savings.FrequencyWeekly, last: ptr(at("2026-03-01T12:00:00Z")), now: at("2026-03-07T12:00:00Z"), want: false},
		{name: "weekly just short", frequency: savings.FrequencyWeekly, last: ptr(at("2026-03-01T12:00:00Z")), now: at("2026-03-08T11:59:59Z"), want: false},
		{name: "weekly seven days", frequency: savings.FrequencyWeekly, last: ptr(at("2026-03-01T12:00:00Z")), now: at("2026-03-08T12:00:00Z"), want: true},
		{name: "monthly same month", frequency: savings.FrequencyMonthly, last: ptr(at("2026-03-01T00:00:00Z")), now: at("2026-03-31T23:59:59Z"), want: false},
		{name: "monthly next month", frequency: savings.FrequencyMonthly, last: ptr(at("2026-03-31T23:59:59Z")), now: at("2026-04-01T00:00:00Z"), want: true},
		{name: "monthly same month next year", frequency: savings.FrequencyMonthly, last: ptr(at("2025-03-15T00:00:00Z")), now: at("2026-03-15T00:00:00Z"), want: true},
		{name: "daily run dated before last debit", frequency: savings.FrequencyDaily, last: ptr(at("2026-03-11T08:00:00Z")), now: at("2026-03-10T08:00:00Z"), want: false},
		{name: "monthly run dated before last debit", frequency: savings.FrequencyMonthly, last: ptr(at("2026-04-02T00:00:00Z")), now: at("2026-03-31T00:00:00Z"), want: false},
		{name: "custom never due", frequency: savings.FrequencyCustom, last: nil, now: at("2026-03-10T00:00:00Z"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recurring.IsDue(tt.frequency, tt.last, tt.now); got != tt.want {
				t.Fatalf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPeriodKey(t *testing.T) {
	now := at("2026-03-10T23:30:00-05:00")

	if got := recurring.PeriodKey(savings.FrequencyMonthly, now); got != "2026-03" {
		t.Fatalf("expected 2026-03, got %s", got)
	}
	if got := recurring.PeriodKey(savings.FrequencyDaily, now); got != "2026-03-11" {
		t.Fatalf("expected UTC date 2026-03-11, got %s", got)
	}
}
