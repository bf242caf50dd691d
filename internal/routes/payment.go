package routes

import (
	"net/http"

	"Wanderfund/internal/contracts"
	"Wanderfund/internal/domain/payment"
	appErrors "Wanderfund/internal/errors"
	"Wanderfund/internal/pkg"

	"github.com/gin-gonic/gin"
)

func (h *Handler) InitiatePayment(c *gin.Context) {
	var body contracts.PaymentCreateRequest
	if err := h.bindJSON(c, &body); err != nil {
		h.respondError(c, err)
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	savingID, err := pkg.StringPtrToULID(body.SavingId)
	if err != nil {
		h.respondError(c, appErrors.NewValidationError("savingId", "invalid format"))
		return
	}
	bookingID, err := pkg.StringPtrToULID(body.BookingId)
	if err != nil {
		h.respondError(c, appErrors.NewValidationError("bookingId", "invalid format"))
		return
	}

	req := payment.InitiatePaymentRequest{
		UserId:    userID,
		Amount:    *body.Amount,
		Type:      payment.Type(body.Type),
		Provider:  payment.Provider(body.Provider),
		Category:  body.Category,
		Notes:     body.Notes,
		SavingId:  savingID,
		BookingId: bookingID,
	}

	tx, err := h.PaymentService.InitiatePayment(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contracts.PaymentCreateResponse{
		Message:     "Payment initiated",
		Transaction: tx,
	})
}

func (h *Handler) ListPayments(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	pagination := h.parsePagination(c)
	txs, total, err := h.PaymentService.ListPayments(c.Request.Context(), userID, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(txs, pagination.Page, pagination.Limit, total))
}

func (h *Handler) GetPayment(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	id, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	tx, err := h.PaymentService.GetPayment(c.Request.Context(), id, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.PaymentResponse{Transaction: tx})
}

func (h *Handler) CancelPayment(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	id, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	tx, err := h.PaymentService.CancelPayment(c.Request.Context(), id, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.PaymentCreateResponse{
		Message:     "Payment cancelled",
		Transaction: tx,
	})
}

func (h *Handler) RetryPayment(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	id, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	tx, err := h.PaymentService.RetryPayment(c.Request.Context(), id, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contracts.PaymentCreateResponse{
		Message:     "Payment retry initiated",
		Transaction: tx,
	})
}

func (h *Handler) GetPaymentStats(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	stats, err := h.PaymentService.GetPaymentStats(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.PaymentStatsResponse{Stats: stats})
}
