package core

import (
	"context"
)

// TaskType identifies what the user wants performed. It is a closed set:
// dispatch tables over it must cover every value.
type TaskType string

const (
	TaskTextExtraction      TaskType = "text_extraction"
	TaskYouTubeTranscript   TaskType = "youtube_transcript"
	TaskSummarization       TaskType = "summarization"
	TaskSentimentAnalysis   TaskType = "sentiment_analysis"
	TaskCodeExplanation     TaskType = "code_explanation"
	TaskConversational      TaskType = "conversational"
	TaskClarificationNeeded TaskType = "clarification_needed"
)

// AllTaskTypes lists every member of the closed task enumeration.
var AllTaskTypes = []TaskType{
	TaskTextExtraction,
	TaskYouTubeTranscript,
	TaskSummarization,
	TaskSentimentAnalysis,
	TaskCodeExplanation,
	TaskConversational,
	TaskClarificationNeeded,
}

// InputType identifies the modality of the raw input.
type InputType string

const (
	InputText    InputType = "text"
	InputImage   InputType = "image"
	InputPDF     InputType = "pdf"
	InputAudio   InputType = "audio"
	InputUnknown InputType = "unknown"
)

// ExtractionMethodYouTubeFailed is the sentinel provenance tag meaning no
// grounded text is available for a YouTube input. The planner must never
// let a model see such content as summarizable.
const ExtractionMethodYouTubeFailed = "youtube_failed"

// ExtractedContent is the normalized output of a content extractor.
type ExtractedContent struct {
	Text             string                 `json:"text"`
	InputType        InputType              `json:"input_type"`
	Confidence       *float64               `json:"confidence,omitempty"`
	ExtractionMethod string                 `json:"extraction_method,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// Grounded reports whether the content carries usable text that downstream
// generation may be based on.
func (c ExtractedContent) Grounded() bool {
	return c.ExtractionMethod != ExtractionMethodYouTubeFailed
}

// ExecutionPlan is the planner's decision for one request.
type ExecutionPlan struct {
	TaskType              TaskType               `json:"task_type"`
	Steps                 []string               `json:"steps"`
	EstimatedTokens       int                    `json:"estimated_tokens"`
	EstimatedCost         float64                `json:"estimated_cost"`
	RequiresClarification bool                   `json:"requires_clarification"`
	ClarificationQuestion string                 `json:"clarification_question,omitempty"`
	Reasoning             string                 `json:"reasoning"`
	Metadata              map[string]interface{} `json:"metadata,omitempty"`
}

// TaskResult is the uniform outcome of executing one plan.
type TaskResult struct {
	TaskType             TaskType               `json:"task_type"`
	Output               interface{}            `json:"output"`
	Metadata             map[string]interface{} `json:"metadata,omitempty"`
	ExecutionTimeSeconds float64                `json:"execution_time_seconds"`
}

// SummaryResult is the summarization payload. Bullets always has exactly
// three entries; parsing enforces it.
type SummaryResult struct {
	OneLine      string   `json:"one_line"`
	Bullets      []string `json:"bullets"`
	FiveSentence string   `json:"five_sentence"`
}

// SentimentResult is the sentiment payload. Label is one of
// positive/negative/neutral and Confidence lies in [0,1] post-validation.
type SentimentResult struct {
	Label         string  `json:"label"`
	Confidence    float64 `json:"confidence"`
	Justification string  `json:"justification"`
}

// CodeExplanationResult is the code-explanation payload. PotentialBugs is
// never nil.
type CodeExplanationResult struct {
	Language        string   `json:"language"`
	Explanation     string   `json:"explanation"`
	PotentialBugs   []string `json:"potential_bugs"`
	TimeComplexity  string   `json:"time_complexity,omitempty"`
	SpaceComplexity string   `json:"space_complexity,omitempty"`
}

// CostEstimate is the cost estimator's observability-only breakdown.
type CostEstimate struct {
	InputTokens  int                    `json:"input_tokens"`
	OutputTokens int                    `json:"output_tokens"`
	TotalTokens  int                    `json:"total_tokens"`
	InputCost    float64                `json:"input_cost"`
	OutputCost   float64                `json:"output_cost"`
	TotalCost    float64                `json:"total_cost"`
	Model        string                 `json:"model"`
	Breakdown    map[string]interface{} `json:"breakdown,omitempty"`
	Confidence   float64                `json:"confidence"`
}

// LLMProvider is the black-box completion API. Implementations may fail
// transiently; callers decide whether that is fatal.
type LLMProvider interface {
	// Complete sends one chat completion and returns the raw text reply.
	Complete(ctx context.Context, systemPrompt, userPrompt, model string, temperature float64, maxTokens int) (string, error)

	// CompleteWithTokens is Complete plus prompt/completion token usage.
	CompleteWithTokens(ctx context.Context, systemPrompt, userPrompt, model string, temperature float64, maxTokens int) (string, int64, int64, error)

	// GetAvailableModels returns configured model keys.
	GetAvailableModels() []string

	// GetModelInfo returns information about a specific model.
	GetModelInfo(model string) (ModelInfo, error)

	// CalculateCost calculates the cost for a given number of tokens.
	CalculateCost(inputTokens, outputTokens int64, model string) float64
}

// ModelInfo contains information about an LLM model
type ModelInfo struct {
	Name            string  `json:"name"`
	Provider        string  `json:"provider"`
	MaxTokens       int     `json:"max_tokens"`
	CostPer1KInput  float64 `json:"cost_per_1k_input"`
	CostPer1KOutput float64 `json:"cost_per_1k_output"`
}

// Extractor turns raw input into normalized content. It fails only with a
// generic extraction error; YouTube caption failures come back as content
// tagged with ExtractionMethodYouTubeFailed rather than an error.
type Extractor interface {
	Extract(ctx context.Context, text string, filename string, data []byte) (ExtractedContent, error)
}

// PlannerInterface is the grounding gate contract.
type PlannerInterface interface {
	CreatePlan(ctx context.Context, content ExtractedContent, clarification string) (ExecutionPlan, error)
}

// ExecutorInterface routes a plan to its task handler.
type ExecutorInterface interface {
	Execute(ctx context.Context, plan ExecutionPlan, content ExtractedContent) (TaskResult, error)
}
