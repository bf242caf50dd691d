package payment

import "github.com/shopspring/decimal"

// Stats summarizes a user's transactions. TotalAmount sums completed ones.
type Stats struct {
	TotalTransactions    int64           `json:"totalTransactions"`
	SuccessfulPayments   int64           `json:"successfulPayments"`
	PendingPayments      int64           `json:"pendingPayments"`
	FailedPayments       int64           `json:"failedPayments"`
	TotalAmount          decimal.Decimal `json:"totalAmount"`
	SavingsContributions int64           `json:"savingsContributions"`
	BookingPayments      int64           `json:"bookingPayments"`
}

// Add folds count transactions of one status and type, worth amount in
// total, into s.
func (s *Stats) Add(status Status, typ Type, count int64, amount decimal.Decimal) {
	s.TotalTransactions += count
	switch status {
	case StatusCompleted:
		s.SuccessfulPayments += count
		s.TotalAmount = s.TotalAmount.Add(amount)
	case StatusPending:
		s.PendingPayments += count
	case StatusFailed:
		s.FailedPayments += count
	}
	switch typ {
	case TypeSavingsContribution:
		s.SavingsContributions += count
	case TypeBookingPayment:
		s.BookingPayments += count
	}
}
