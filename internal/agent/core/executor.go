package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/intakehq/intake/config"
	"github.com/intakehq/intake/internal/agent/telemetry"
)

const conversationalFallbackReply = "I'm here to help! Could you please rephrase your question?"

// Executor routes an execution plan to its task handler. Dispatch is a
// lookup table over the closed task enumeration: adding a task type is a
// single-point change.
type Executor struct {
	config      *config.Config
	llmProvider LLMProvider
	telemetry   *telemetry.Telemetry
	logger      *log.Logger

	summarizer *Summarizer
	sentiment  *SentimentAnalyzer
	code       *CodeExplainer

	handlers map[TaskType]handlerFunc
}

type handlerFunc func(ctx context.Context, content ExtractedContent) (interface{}, ParseState, error)

// NewExecutor creates the dispatcher and its task handlers.
func NewExecutor(cfg *config.Config, llmProvider LLMProvider, tele *telemetry.Telemetry) *Executor {
	e := &Executor{
		config:      cfg,
		llmProvider: llmProvider,
		telemetry:   tele,
		logger:      log.New(log.Writer(), "[EXECUTOR] ", log.LstdFlags),
		summarizer:  NewSummarizer(cfg, llmProvider, tele),
		sentiment:   NewSentimentAnalyzer(cfg, llmProvider, tele),
		code:        NewCodeExplainer(cfg, llmProvider, tele),
	}

	e.handlers = map[TaskType]handlerFunc{
		TaskTextExtraction:    e.handleTextExtraction,
		TaskYouTubeTranscript: e.handleYouTubeTranscript,
		TaskSummarization:     e.handleSummarization,
		TaskSentimentAnalysis: e.handleSentimentAnalysis,
		TaskCodeExplanation:   e.handleCodeExplanation,
		TaskConversational:    e.handleConversational,
	}

	return e
}

// Execute runs the planned task and records wall-clock duration. Handler
// errors are logged and propagated; only the conversational path degrades
// instead of failing.
func (e *Executor) Execute(ctx context.Context, plan ExecutionPlan, content ExtractedContent) (TaskResult, error) {
	start := time.Now()
	e.logger.Printf("executing task %s", plan.TaskType)

	handler, ok := e.handlers[plan.TaskType]
	if !ok {
		return TaskResult{}, fmt.Errorf("unknown task type: %s", plan.TaskType)
	}

	output, state, err := handler(ctx, content)
	if err != nil {
		e.logger.Printf("task %s failed: %v", plan.TaskType, err)
		return TaskResult{}, err
	}
	e.telemetry.RecordParseOutcome(string(plan.TaskType), state.String())

	elapsed := time.Since(start)
	e.logger.Printf("task %s completed in %.2fs", plan.TaskType, elapsed.Seconds())

	return TaskResult{
		TaskType: plan.TaskType,
		Output:   output,
		Metadata: map[string]interface{}{
			"steps_completed": len(plan.Steps),
			"content_length":  len(content.Text),
			"parse_state":     state.String(),
		},
		ExecutionTimeSeconds: elapsed.Seconds(),
	}, nil
}

// handleTextExtraction is a pure transform: it never calls the model and
// never fails.
func (e *Executor) handleTextExtraction(_ context.Context, content ExtractedContent) (interface{}, ParseState, error) {
	return map[string]interface{}{
		"extracted_text":  content.Text,
		"confidence":      content.Confidence,
		"metadata":        content.Metadata,
		"word_count":      len(strings.Fields(content.Text)),
		"character_count": len(content.Text),
	}, ParseOK, nil
}

// handleYouTubeTranscript is a pure transform over transcript metadata.
func (e *Executor) handleYouTubeTranscript(_ context.Context, content ExtractedContent) (interface{}, ParseState, error) {
	return map[string]interface{}{
		"transcript":       content.Text,
		"duration_seconds": content.Metadata["duration_seconds"],
		"video_id":         content.Metadata["video_id"],
		"word_count":       len(strings.Fields(content.Text)),
	}, ParseOK, nil
}

func (e *Executor) handleSummarization(ctx context.Context, content ExtractedContent) (interface{}, ParseState, error) {
	return e.summarizer.Summarize(ctx, content.Text)
}

func (e *Executor) handleSentimentAnalysis(ctx context.Context, content ExtractedContent) (interface{}, ParseState, error) {
	return e.sentiment.Analyze(ctx, content.Text)
}

func (e *Executor) handleCodeExplanation(ctx context.Context, content ExtractedContent) (interface{}, ParseState, error) {
	return e.code.Explain(ctx, content.Text)
}

// handleConversational is the lowest-stakes path: any failure, including
// a transient provider error, degrades to a canned reply.
func (e *Executor) handleConversational(ctx context.Context, content ExtractedContent) (interface{}, ParseState, error) {
	model := executionModel(e.config)
	reply, inTokens, outTokens, err := e.llmProvider.CompleteWithTokens(ctx,
		"You are a helpful assistant. Provide clear, concise, and accurate responses.",
		fmt.Sprintf("Please provide a helpful response to this:\n\n%s", content.Text),
		model, 0.7, 1000)
	if err != nil {
		e.logger.Printf("conversational response failed: %v", err)
		return map[string]interface{}{
			"response":       conversationalFallbackReply,
			"conversational": true,
			"error":          err.Error(),
		}, ParseRecovered, nil
	}
	e.telemetry.RecordLLMUsage(model, inTokens, outTokens, e.llmProvider.CalculateCost(inTokens, outTokens, model))

	return map[string]interface{}{
		"response":       reply,
		"conversational": true,
	}, ParseOK, nil
}

var _ ExecutorInterface = (*Executor)(nil)
