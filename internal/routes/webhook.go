package routes

import (
	"io"
	"net/http"

	"Wanderfund/internal/contracts"
	"Wanderfund/internal/domain/payment"
	appErrors "Wanderfund/internal/errors"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

// HandleWebhook acknowledges a provider callback. Retryable failures answer
// 503 so the provider redelivers; everything already settled answers 200.
func (h *Handler) HandleWebhook(c *gin.Context) {
	provider := payment.Provider(c.Param("provider"))

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody+1))
	if err != nil {
		h.respondError(c, appErrors.ErrBadRequest.WithError(err))
		return
	}
	if len(body) > maxWebhookBody {
		h.respondError(c, appErrors.ErrInvalidWebhook.WithMessage("Webhook payload too large"))
		return
	}

	resp, err := h.PaymentService.HandleWebhook(c.Request.Context(), provider, c.Request.Header, body)
	if err != nil {
		if appErrors.IsRetryable(err) {
			appErr := appErrors.FromError(err)
			h.respondError(c, appErr.WithStatus(http.StatusServiceUnavailable))
			return
		}
		h.respondError(c, err)
		return
	}

	if resp.Provider == payment.ProviderMpesa {
		c.JSON(http.StatusOK, contracts.MpesaAckResponse{ResultCode: 0, ResultDesc: "Success"})
		return
	}

	ack := contracts.WebhookAckResponse{
		Received: true,
		Outcome:  resp.Outcome,
	}
	if resp.Result != nil && resp.Result.Transaction != nil {
		ack.TransactionId = resp.Result.Transaction.Id.String()
		ack.Status = string(resp.Result.Transaction.Status)
		ack.ContributionSkipped = resp.Result.ContributionSkipped
	}
	c.JSON(http.StatusOK, ack)
}
