package sessionmodels

import (
	"time"

	core "github.com/intakehq/intake/internal/agent/core"
)

// Record is the state held for one pending clarification round trip.
type Record struct {
	Content   core.ExtractedContent `json:"content"`
	Plan      core.ExecutionPlan    `json:"plan"`
	CreatedAt time.Time             `json:"created_at"`
}
