package savings_test

import (
	"testing"

	"Wanderfund/internal/domain/savings"
)

func TestTriggerMethod(t *testing.T) {
	tests := []struct {
		trigger savings.Trigger
		kind    savings.TriggerKind
		method  string
	}{
		{trigger: savings.ManualTrigger(), kind: savings.TriggerManual, method: "manual"},
		{trigger: savings.AutoDebitTrigger(), kind: savings.TriggerAutoDebit, method: "auto-debit"},
		{trigger: savings.ProviderTrigger("flutterwave"), kind: savings.TriggerProvider, method: "flutterwave"},
		{trigger: savings.Trigger{}, kind: savings.TriggerManual, method: "manual"},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			if tt.trigger.Kind() != tt.kind || tt.trigger.Method() != tt.method {
				t.Fatalf("expected %d/%s, got %d/%s", tt.kind, tt.method, tt.trigger.Kind(), tt.trigger.Method())
			}
		})
	}
}

func TestFrequency(t *testing.T) {
	if !savings.FrequencyWeekly.IsRecurring() || savings.FrequencyCustom.IsRecurring() {
		t.Fatalf("unexpected recurring classification")
	}
	if savings.Frequency("yearly").IsValid() {
		t.Fatalf("yearly must not be a valid savings frequency")
	}
}
