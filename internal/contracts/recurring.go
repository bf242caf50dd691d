package contracts

import (
	"time"

	"Wanderfund/internal/domain/recurring"
)

type SchedulerRunRequest struct {
	At *time.Time `json:"at" binding:"omitempty"`
}

type SchedulerRunResponse struct {
	Message string               `json:"message"`
	Report  *recurring.RunReport `json:"report"`
}
