package routes

import (
	"net/http"

	"Wanderfund/internal/contracts"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, contracts.HealthResponse{Status: "ok"})
}
