package payment

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"Wanderfund/internal/domain/booking"
	"Wanderfund/internal/domain/savings"
	"Wanderfund/internal/domain/shared"
	appErrors "Wanderfund/internal/errors"
	"Wanderfund/internal/logger"
	"Wanderfund/internal/metrics"
	"Wanderfund/internal/pkg"

	"github.com/oklog/ulid/v2"
)

const (
	OutcomeLabelApplied  = "applied"
	OutcomeLabelFailed   = "failed"
	OutcomeLabelNoop     = "noop"
	OutcomeLabelPending  = "pending"
	OutcomeLabelIgnored  = "ignored"
	OutcomeLabelRejected = "rejected"
	OutcomeLabelError    = "error"
)

type Service struct {
	Repository Repository
	Webhooks   WebhookLog
	Bookings   booking.Repository
	Goals      GoalReader
	Ledger     Ledger
	Tx         shared.Transactor
	Verifier   *Verifier
	Clock      shared.Clock
	// Timeout bounds one reconciliation. Zero disables it.
	Timeout time.Duration
}

type ReconciliationResult struct {
	Transaction *Transaction `json:"transaction"`
	// AlreadyReconciled is set when the transaction was terminal before this
	// delivery, so nothing was written.
	AlreadyReconciled bool                        `json:"alreadyReconciled"`
	Acknowledged      bool                        `json:"acknowledged"`
	Contribution      *savings.ContributionResult `json:"contribution,omitempty"`
	// ContributionSkipped is set when the claim committed but the linked goal
	// could not take the money.
	ContributionSkipped bool `json:"contributionSkipped"`
	BookingConfirmed    bool `json:"bookingConfirmed"`
}

// Label names the result for metrics and the delivery log.
func (r *ReconciliationResult) Label() string {
	switch {
	case r.Acknowledged:
		return OutcomeLabelPending
	case r.AlreadyReconciled:
		return OutcomeLabelNoop
	case r.Transaction != nil && r.Transaction.Status == StatusFailed:
		return OutcomeLabelFailed
	}
	return OutcomeLabelApplied
}

type WebhookResponse struct {
	Provider Provider              `json:"provider"`
	Outcome  string                `json:"outcome"`
	Event    *WebhookEvent         `json:"-"`
	Result   *ReconciliationResult `json:"result,omitempty"`
}

// Reconcile moves a pending transaction to the event's outcome exactly once.
// The claim, the ledger credit and the booking update commit together.
func (s *Service) Reconcile(ctx context.Context, event WebhookEvent) (*ReconciliationResult, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	if event.Outcome == OutcomePending {
		tx, err := s.Repository.GetByID(ctx, event.TransactionID)
		if err != nil {
			return nil, err
		}
		return &ReconciliationResult{Transaction: tx, Acknowledged: true, AlreadyReconciled: tx.Status.IsTerminal()}, nil
	}

	var result *ReconciliationResult
	err := s.Tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		result, err = s.reconcileInTx(txCtx, event)
		return err
	})
	if err != nil {
		logger.Error().
			Err(err).
			Str("transaction_id", event.TransactionID.String()).
			Str("provider", string(event.Provider)).
			Bool("retryable", appErrors.IsRetryable(err)).
			Msg("reconciliation failed")
		return nil, err
	}

	if result.Contribution != nil {
		s.Ledger.Publish(ctx, result.Contribution)
	}

	logger.Info().
		Str("transaction_id", result.Transaction.Id.String()).
		Str("provider", string(event.Provider)).
		Str("status", string(result.Transaction.Status)).
		Str("outcome", result.Label()).
		Bool("contribution_skipped", result.ContributionSkipped).
		Bool("booking_confirmed", result.BookingConfirmed).
		Msg("transaction reconciled")
	return result, nil
}

func (s *Service) reconcileInTx(ctx context.Context, event WebhookEvent) (*ReconciliationResult, error) {
	tx, err := s.Repository.GetByID(ctx, event.TransactionID)
	if err != nil {
		return nil, err
	}
	if tx.Status.IsTerminal() {
		return &ReconciliationResult{Transaction: tx, AlreadyReconciled: true}, nil
	}

	now := s.Clock.Now()
	status := event.Outcome.status()
	claimed, err := s.Repository.ClaimPending(ctx, tx.Id, status, event.Reference, now)
	if err != nil {
		return nil, err
	}
	if !claimed {
		current, err := s.Repository.GetByID(ctx, tx.Id)
		if err != nil {
			return nil, err
		}
		return &ReconciliationResult{Transaction: current, AlreadyReconciled: true}, nil
	}

	tx.Status = status
	if event.Reference != "" {
		tx.Reference = event.Reference
	}
	tx.ReconciledAt = &now
	tx.UpdatedAt = now
	result := &ReconciliationResult{Transaction: tx}

	if status != StatusCompleted {
		return result, nil
	}

	if tx.SavingId != nil {
		owner := tx.UserId
		txID := tx.Id
		contribution, err := s.Ledger.ContributeInTx(ctx, savings.ContributionRequest{
			GoalID:        *tx.SavingId,
			OwnerID:       &owner,
			Amount:        tx.Amount,
			Trigger:       savings.ProviderTrigger(string(tx.Provider)),
			TransactionID: &txID,
			EventKey:      savings.TransactionEventKey(tx.Id),
		})
		switch {
		case err == nil:
			result.Contribution = contribution
		case errors.Is(err, appErrors.ErrGoalAlreadyCompleted), errors.Is(err, appErrors.ErrGoalNotFound):
			result.ContributionSkipped = true
			logger.Warn().
				Str("transaction_id", tx.Id.String()).
				Str("goal_id", tx.SavingId.String()).
				Str("code", appErrors.FromError(err).Code).
				Msg("payment completed but goal could not take the contribution")
		default:
			return nil, err
		}
	}

	if tx.BookingId != nil {
		err := s.Bookings.MarkPaid(ctx, *tx.BookingId, now)
		switch {
		case err == nil:
			result.BookingConfirmed = true
		case errors.Is(err, appErrors.ErrBookingNotFound):
			logger.Warn().
				Str("transaction_id", tx.Id.String()).
				Str("booking_id", tx.BookingId.String()).
				Msg("payment completed for unknown booking")
		default:
			return nil, err
		}
	}

	return result, nil
}

// HandleWebhook verifies, parses and reconciles one provider delivery, and
// appends it to the delivery log whatever the outcome.
func (s *Service) HandleWebhook(ctx context.Context, provider Provider, header http.Header, body []byte) (*WebhookResponse, error) {
	provider = Provider(strings.ToLower(string(provider)))
	if !provider.AcceptsWebhooks() {
		return nil, appErrors.ErrUnknownProvider.WithDetails(map[string]interface{}{
			"provider": string(provider),
		})
	}

	delivery := &WebhookDelivery{
		Id:         pkg.GenerateULIDObject(),
		Provider:   provider,
		Payload:    string(body),
		ReceivedAt: s.Clock.Now(),
	}

	response, err := s.handle(ctx, provider, header, body, delivery)

	processedAt := s.Clock.Now()
	delivery.ProcessedAt = &processedAt
	if err != nil {
		delivery.ProcessingError = err.Error()
		if delivery.Outcome == "" {
			delivery.Outcome = OutcomeLabelError
		}
	} else {
		delivery.Outcome = response.Outcome
	}
	metrics.Reconciliations.WithLabelValues(string(provider), delivery.Outcome).Inc()
	s.record(ctx, delivery)

	return response, err
}

func (s *Service) handle(ctx context.Context, provider Provider, header http.Header, body []byte, delivery *WebhookDelivery) (*WebhookResponse, error) {
	if s.Verifier != nil {
		if err := s.Verifier.Verify(provider, header, body); err != nil {
			delivery.Outcome = OutcomeLabelRejected
			logger.Warn().
				Str("provider", string(provider)).
				Msg("webhook signature rejected")
			return nil, err
		}
	}

	event, err := ParseWebhook(provider, body)
	if err != nil {
		delivery.Outcome = OutcomeLabelRejected
		return nil, err
	}
	delivery.EventType = event.EventType

	if event.Ignored {
		logger.Debug().
			Str("provider", string(provider)).
			Str("event_type", event.EventType).
			Msg("webhook event ignored")
		return &WebhookResponse{Provider: provider, Outcome: OutcomeLabelIgnored, Event: event}, nil
	}

	delivery.TransactionId = event.TransactionID.String()
	delivery.Reference = event.Reference
	delivery.Status = string(event.Outcome)

	result, err := s.Reconcile(ctx, *event)
	if err != nil {
		return nil, err
	}
	return &WebhookResponse{Provider: provider, Outcome: result.Label(), Event: event, Result: result}, nil
}

func (s *Service) record(ctx context.Context, delivery *WebhookDelivery) {
	if s.Webhooks == nil {
		return
	}
	if err := s.Webhooks.Record(context.WithoutCancel(ctx), delivery); err != nil {
		logger.Error().
			Err(err).
			Str("provider", string(delivery.Provider)).
			Str("transaction_id", delivery.TransactionId).
			Msg("failed to record webhook delivery")
	}
}

func (s *Service) InitiatePayment(ctx context.Context, req *InitiatePaymentRequest) (*Transaction, error) {
	if err := ValidateInitiatePayment(req); err != nil {
		return nil, err
	}

	if req.SavingId != nil {
		goal, err := s.Goals.GetByIDAndUser(ctx, *req.SavingId, req.UserId)
		if err != nil {
			return nil, err
		}
		if goal.IsCompleted {
			return nil, appErrors.ErrGoalAlreadyCompleted
		}
	}
	if req.BookingId != nil {
		if _, err := s.Bookings.GetByIDAndUser(ctx, *req.BookingId, req.UserId); err != nil {
			return nil, err
		}
	}

	now := s.Clock.Now()
	tx := &Transaction{
		Id:        pkg.GenerateULIDObject(),
		UserId:    req.UserId,
		Amount:    pkg.RoundMoney(req.Amount),
		Type:      req.Type,
		Category:  strings.TrimSpace(req.Category),
		Provider:  req.Provider,
		Status:    StatusPending,
		SavingId:  req.SavingId,
		BookingId: req.BookingId,
		Notes:     strings.TrimSpace(req.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repository.Create(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info().
		Str("transaction_id", tx.Id.String()).
		Str("user_id", tx.UserId.String()).
		Str("provider", string(tx.Provider)).
		Str("type", string(tx.Type)).
		Str("amount", tx.Amount.StringFixed(2)).
		Msg("payment initiated")
	return tx, nil
}

func (s *Service) GetPayment(ctx context.Context, id, userID ulid.ULID) (*Transaction, error) {
	return s.Repository.GetByIDAndUser(ctx, id, userID)
}

func (s *Service) ListPayments(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*Transaction, int64, error) {
	return s.Repository.GetByUserID(ctx, userID, pagination)
}

// CancelPayment fails a pending transaction on the user's behalf. It competes
// with reconciliation for the same pending row, so at most one of them wins.
func (s *Service) CancelPayment(ctx context.Context, id, userID ulid.ULID) (*Transaction, error) {
	tx, err := s.Repository.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if tx.Status != StatusPending {
		return nil, appErrors.ErrTransactionNotPending.WithDetails(map[string]interface{}{
			"status": string(tx.Status),
		})
	}

	now := s.Clock.Now()
	claimed, err := s.Repository.ClaimPending(ctx, tx.Id, StatusFailed, "", now)
	if err != nil {
		return nil, err
	}
	if !claimed {
		current, err := s.Repository.GetByID(ctx, tx.Id)
		if err != nil {
			return nil, err
		}
		return nil, appErrors.ErrTransactionNotPending.WithDetails(map[string]interface{}{
			"status": string(current.Status),
		})
	}

	tx.Status = StatusFailed
	tx.ReconciledAt = &now
	tx.UpdatedAt = now

	logger.Info().
		Str("transaction_id", tx.Id.String()).
		Str("user_id", userID.String()).
		Msg("payment cancelled")
	return tx, nil
}

// RetryPayment starts a new pending transaction for the same target as a
// failed one. The failed transaction stays failed.
func (s *Service) RetryPayment(ctx context.Context, id, userID ulid.ULID) (*Transaction, error) {
	failed, err := s.Repository.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if failed.Status != StatusFailed {
		return nil, appErrors.ErrTransactionNotFailed.WithDetails(map[string]interface{}{
			"status": string(failed.Status),
		})
	}

	retry, err := s.InitiatePayment(ctx, &InitiatePaymentRequest{
		UserId:    failed.UserId,
		Amount:    failed.Amount,
		Type:      failed.Type,
		Provider:  failed.Provider,
		Category:  failed.Category,
		Notes:     failed.Notes,
		SavingId:  failed.SavingId,
		BookingId: failed.BookingId,
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("transaction_id", retry.Id.String()).
		Str("retry_of", failed.Id.String()).
		Msg("payment retried")
	return retry, nil
}

func (s *Service) GetPaymentStats(ctx context.Context, userID ulid.ULID) (*Stats, error) {
	return s.Repository.StatsByUser(ctx, userID)
}
