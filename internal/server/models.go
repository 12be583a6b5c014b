package server

import (
	"time"

	core "github.com/intakehq/intake/internal/agent/core"
)

// ProcessingStatus is the request-level outcome reported to clients.
type ProcessingStatus string

const (
	StatusCompleted          ProcessingStatus = "completed"
	StatusFailed             ProcessingStatus = "failed"
	StatusNeedsClarification ProcessingStatus = "needs_clarification"
)

// AgentResponse is the complete envelope returned by /api/process.
type AgentResponse struct {
	RequestID             string                 `json:"request_id"`
	Status                ProcessingStatus       `json:"status"`
	InputType             core.InputType         `json:"input_type"`
	ExtractedContent      *core.ExtractedContent `json:"extracted_content,omitempty"`
	ExecutionPlan         *core.ExecutionPlan    `json:"execution_plan,omitempty"`
	Result                *core.TaskResult       `json:"result,omitempty"`
	ClarificationQuestion string                 `json:"clarification_question,omitempty"`
	CostEstimate          *core.CostEstimate     `json:"cost_estimate,omitempty"`
	ErrorMessage          string                 `json:"error_message,omitempty"`
	Logs                  []string               `json:"logs"`
	TotalCost             float64                `json:"total_cost"`
	Timestamp             time.Time              `json:"timestamp"`
}

// HealthResponse reports component readiness.
type HealthResponse struct {
	Status   string                 `json:"status"`
	Version  string                 `json:"version"`
	Services map[string]bool        `json:"services"`
	Metrics  map[string]interface{} `json:"metrics,omitempty"`
}

// ModelsResponse lists the configured completion models.
type ModelsResponse struct {
	Models []string `json:"models"`
}
