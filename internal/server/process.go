package server

import (
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	core "github.com/intakehq/intake/internal/agent/core"
	"github.com/intakehq/intake/internal/agent/telemetry"
	"github.com/intakehq/intake/session"
)

// handleProcess is the single entry point: raw text, an uploaded file, or
// a clarification continuation pair.
func (s *Server) handleProcess(c echo.Context) error {
	requestID := uuid.NewString()
	logs := []string{"Request received"}
	start := time.Now()

	text := c.FormValue("text")
	clarification := c.FormValue("clarification_response")
	previousRequestID := c.FormValue("previous_request_id")

	if clarification != "" && previousRequestID != "" {
		return s.handleClarification(c, requestID, previousRequestID, clarification, start)
	}

	filename, data, err := readUpload(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid file upload")
	}

	if text == "" && len(data) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No input provided")
	}

	ctx := c.Request().Context()

	content, err := s.extractor.Extract(ctx, text, filename, data)
	if err != nil {
		return s.fail(c, requestID, logs, err)
	}
	logs = append(logs, "Content extracted ("+string(content.InputType)+")")

	plan, err := s.planner.CreatePlan(ctx, content, "")
	if err != nil {
		return s.fail(c, requestID, logs, err)
	}
	logs = append(logs, "Plan created: "+string(plan.TaskType))

	if plan.RequiresClarification {
		if err := s.sessions.Put(ctx, requestID, session.NewRecord(content, plan)); err != nil {
			return s.fail(c, requestID, logs, err)
		}
		return c.JSON(http.StatusOK, AgentResponse{
			RequestID:             requestID,
			Status:                StatusNeedsClarification,
			InputType:             content.InputType,
			ExtractedContent:      &content,
			ExecutionPlan:         &plan,
			ClarificationQuestion: plan.ClarificationQuestion,
			Logs:                  logs,
			Timestamp:             time.Now().UTC(),
		})
	}

	estimate := s.estimator.Estimate(plan.TaskType, content)

	result, err := s.executor.Execute(ctx, plan, content)
	if err != nil {
		return s.fail(c, requestID, logs, err)
	}
	logs = append(logs, "Task completed")

	s.telemetry.RecordProcessingEvent(telemetry.ProcessingEvent{
		RequestID:      requestID,
		TaskType:       string(plan.TaskType),
		Success:        true,
		ProcessingTime: time.Since(start),
		Cost:           plan.EstimatedCost,
		TokensUsed:     int64(plan.EstimatedTokens),
	})

	return c.JSON(http.StatusOK, AgentResponse{
		RequestID:        requestID,
		Status:           StatusCompleted,
		InputType:        content.InputType,
		ExtractedContent: &content,
		ExecutionPlan:    &plan,
		Result:           &result,
		CostEstimate:     &estimate,
		Logs:             logs,
		TotalCost:        plan.EstimatedCost,
		Timestamp:        time.Now().UTC(),
	})
}

// handleClarification resumes a pending request. The session record is
// consumed on read: replaying the same previous_request_id is a 404.
func (s *Server) handleClarification(c echo.Context, requestID, previousRequestID, clarification string, start time.Time) error {
	ctx := c.Request().Context()

	record, ok, err := s.sessions.Take(ctx, previousRequestID)
	if err != nil {
		return s.fail(c, requestID, []string{"Clarification lookup failed"}, err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Session not found")
	}

	plan, err := s.planner.CreatePlan(ctx, record.Content, clarification)
	if err != nil {
		return s.fail(c, requestID, []string{"Clarification handled"}, err)
	}

	result, err := s.executor.Execute(ctx, plan, record.Content)
	if err != nil {
		return s.fail(c, requestID, []string{"Clarification handled"}, err)
	}

	s.telemetry.RecordProcessingEvent(telemetry.ProcessingEvent{
		RequestID:      requestID,
		TaskType:       string(plan.TaskType),
		Success:        true,
		ProcessingTime: time.Since(start),
		Cost:           plan.EstimatedCost,
		TokensUsed:     int64(plan.EstimatedTokens),
	})

	return c.JSON(http.StatusOK, AgentResponse{
		RequestID:        requestID,
		Status:           StatusCompleted,
		InputType:        record.Content.InputType,
		ExtractedContent: &record.Content,
		ExecutionPlan:    &plan,
		Result:           &result,
		Logs:             []string{"Clarification handled"},
		TotalCost:        plan.EstimatedCost,
		Timestamp:        time.Now().UTC(),
	})
}

// fail reports an unexpected internal error without leaking details.
func (s *Server) fail(c echo.Context, requestID string, logs []string, err error) error {
	s.logger.Printf("request %s failed: %v", requestID, err)
	s.telemetry.RecordProcessingEvent(telemetry.ProcessingEvent{
		RequestID: requestID,
		TaskType:  "unknown",
		Success:   false,
	})
	return c.JSON(http.StatusOK, AgentResponse{
		RequestID:    requestID,
		Status:       StatusFailed,
		InputType:    core.InputText,
		ErrorMessage: "Internal server error",
		Logs:         logs,
		Timestamp:    time.Now().UTC(),
	})
}

func readUpload(c echo.Context) (string, []byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		// Absent file field is fine; text-only requests are valid.
		return "", nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, err
	}
	return fh.Filename, data, nil
}
