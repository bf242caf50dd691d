package routes

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"Wanderfund/internal/contracts"
	"Wanderfund/internal/domain/savings"
	appErrors "Wanderfund/internal/errors"
	"Wanderfund/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const idempotencyHeader = "Idempotency-Key"

func (h *Handler) CreateSavingsGoal(c *gin.Context) {
	var body contracts.SavingsGoalCreateRequest
	if err := h.bindJSON(c, &body); err != nil {
		h.respondError(c, err)
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	tripID, err := pkg.StringPtrToULID(body.TripId)
	if err != nil {
		h.respondError(c, appErrors.NewValidationError("tripId", "invalid format"))
		return
	}

	req := savings.CreateGoalRequest{
		UserId:       userID,
		TripId:       tripID,
		Title:        body.Title,
		Description:  body.Description,
		TargetAmount: *body.TargetAmount,
		Frequency:    savings.Frequency(body.Frequency),
		StartDate:    body.StartDate,
		TargetDate:   body.TargetDate,
	}
	if body.AmountPerFrequency != nil {
		req.AmountPerFrequency = *body.AmountPerFrequency
	}

	goal, err := h.SavingsService.CreateGoal(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contracts.SavingsGoalCreateResponse{
		Message: "Savings goal created",
		Goal:    goal,
	})
}

func (h *Handler) ListSavingsGoals(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	filters := &savings.GoalFilters{}
	if raw := c.Query("isCompleted"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			h.respondError(c, appErrors.NewValidationError("isCompleted", "must be true or false"))
			return
		}
		filters.IsCompleted = &completed
	}
	if raw := c.Query("tripId"); raw != "" {
		tripID, err := pkg.ParseULID(raw)
		if err != nil {
			h.respondError(c, appErrors.NewValidationError("tripId", "invalid format"))
			return
		}
		filters.TripId = &tripID
	}

	pagination := h.parsePagination(c)
	goals, total, err := h.SavingsService.ListGoals(c.Request.Context(), userID, filters, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(goals, pagination.Page, pagination.Limit, total))
}

func (h *Handler) GetSavingsGoal(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	goalID, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	goal, err := h.SavingsService.GetGoal(c.Request.Context(), goalID, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.SavingsGoalResponse{Goal: goal})
}

func (h *Handler) UpdateSavingsGoal(c *gin.Context) {
	var body contracts.SavingsGoalUpdateRequest
	if err := h.bindJSON(c, &body); err != nil {
		h.respondError(c, err)
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	goalID, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	req := savings.UpdateGoalRequest{
		GoalId:             goalID,
		UserId:             userID,
		Title:              body.Title,
		Description:        body.Description,
		TargetAmount:       body.TargetAmount,
		AmountPerFrequency: body.AmountPerFrequency,
		TargetDate:         body.TargetDate,
	}
	if body.Frequency != nil {
		frequency := savings.Frequency(*body.Frequency)
		req.Frequency = &frequency
	}

	goal, err := h.SavingsService.UpdateGoal(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.SavingsGoalResponse{Goal: goal})
}

func (h *Handler) GetSavingsProgress(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	goalID, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	progress, err := h.SavingsService.GetProgress(c.Request.Context(), goalID, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.SavingsProgressResponse{Progress: progress})
}

func (h *Handler) GetSavingsStats(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	stats, err := h.SavingsService.GetStats(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.SavingsStatsResponse{Stats: stats})
}

// GetSavingsPlan sizes the installments for a prospective goal. It reads
// nothing from storage.
func (h *Handler) GetSavingsPlan(c *gin.Context) {
	target, err := decimal.NewFromString(c.Query("targetAmount"))
	if err != nil {
		h.respondError(c, appErrors.NewValidationError("targetAmount", "must be a decimal number"))
		return
	}

	targetDate, err := time.Parse(time.RFC3339, c.Query("targetDate"))
	if err != nil {
		if targetDate, err = time.Parse(time.DateOnly, c.Query("targetDate")); err != nil {
			h.respondError(c, appErrors.NewValidationError("targetDate", "must be a date (YYYY-MM-DD) or RFC3339 timestamp"))
			return
		}
	}

	frequency := savings.Frequency(strings.ToLower(c.DefaultQuery("frequency", string(savings.FrequencyMonthly))))
	plan, err := savings.CalculatePlan(target, frequency, targetDate, h.Clock.Now())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.SavingsPlanResponse{Plan: plan})
}

// AddContribution credits a goal by hand. A repeated Idempotency-Key returns
// the contribution recorded the first time.
func (h *Handler) AddContribution(c *gin.Context) {
	var body contracts.ContributionCreateRequest
	if err := h.bindJSON(c, &body); err != nil {
		h.respondError(c, err)
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	goalID, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	trigger := savings.ManualTrigger()
	if body.Method != "" && body.Method != savings.MethodManual {
		trigger = savings.ProviderTrigger(body.Method)
	}

	req := savings.ContributionRequest{
		GoalID:  goalID,
		OwnerID: &userID,
		Amount:  *body.Amount,
		Trigger: trigger,
	}
	if key := strings.TrimSpace(c.GetHeader(idempotencyHeader)); key != "" {
		if len(key) > 100 {
			h.respondError(c, appErrors.NewValidationError(idempotencyHeader, "must be at most 100 characters"))
			return
		}
		req.EventKey = savings.ManualEventKey(key)
	}

	result, err := h.SavingsService.Contribute(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, contracts.ContributionResponse{
		Goal:         result.Goal,
		Contribution: result.Contribution,
		Achievements: result.Achievements,
		Replayed:     result.Replayed,
	})
}

func (h *Handler) ListContributions(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	goalID, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	pagination := h.parsePagination(c)
	contributions, total, err := h.SavingsService.ListContributions(c.Request.Context(), goalID, userID, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(contributions, pagination.Page, pagination.Limit, total))
}
