package routes

import (
	"net/http"

	"Wanderfund/internal/contracts"

	"github.com/gin-gonic/gin"
)

// RunScheduler triggers one recurring pass on demand. The body is optional;
// "at" replays the pass for another instant.
func (h *Handler) RunScheduler(c *gin.Context) {
	var body contracts.SchedulerRunRequest
	if c.Request.ContentLength != 0 {
		if err := h.bindJSON(c, &body); err != nil {
			h.respondError(c, err)
			return
		}
	}

	at := h.Clock.Now()
	if body.At != nil {
		at = *body.At
	}

	report, err := h.SchedulerService.RunDuePeriod(c.Request.Context(), at)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.SchedulerRunResponse{
		Message: "Recurring pass completed",
		Report:  report,
	})
}
