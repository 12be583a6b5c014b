package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/tidwall/gjson"

	"github.com/intakehq/intake/config"
	"github.com/intakehq/intake/internal/agent/telemetry"
)

const (
	// plannerExcerptLimit caps how much content the planner model sees.
	plannerExcerptLimit = 2000
	// planningOverheadTokens covers system prompt and formatting.
	planningOverheadTokens = 300

	clarificationQuestionYouTube = "I couldn't access captions for this YouTube video. " +
		"Please upload the transcript, enable captions, or upload the audio/video file."
	clarificationQuestionGeneric = "Could you clarify what you'd like me to do?"
)

// Planner converts extracted content into an execution plan. Content with
// no grounded text never reaches the model.
type Planner struct {
	config      *config.Config
	llmProvider LLMProvider
	telemetry   *telemetry.Telemetry
	logger      *log.Logger
}

// NewPlanner creates a new planner instance.
func NewPlanner(cfg *config.Config, llmProvider LLMProvider, tele *telemetry.Telemetry) *Planner {
	return &Planner{
		config:      cfg,
		llmProvider: llmProvider,
		telemetry:   tele,
		logger:      log.New(log.Writer(), "[PLANNER] ", log.LstdFlags),
	}
}

// CreatePlan decides what task the user wants performed. The grounding
// gate comes first: it is policy, not a model decision.
func (p *Planner) CreatePlan(ctx context.Context, content ExtractedContent, clarification string) (ExecutionPlan, error) {
	if !content.Grounded() {
		p.logger.Printf("transcript unavailable, blocking before any model call")
		return ExecutionPlan{
			TaskType:              TaskClarificationNeeded,
			Steps:                 []string{},
			EstimatedTokens:       0,
			EstimatedCost:         0,
			RequiresClarification: true,
			ClarificationQuestion: clarificationQuestionYouTube,
			Reasoning:             "YouTube transcript extraction failed; summarization would be ungrounded.",
			Metadata: map[string]interface{}{
				"blocked": true,
				"reason":  "extraction_unavailable",
			},
		}, nil
	}

	userPrompt := p.buildContext(content, clarification)

	model := p.config.LLM.Routing.Planning
	if model == "" {
		model = p.config.LLM.Routing.Fallback
	}

	reply, inTokens, outTokens, err := p.llmProvider.CompleteWithTokens(ctx, plannerSystemPrompt, userPrompt, model, 0.2, 800)
	if err != nil {
		return ExecutionPlan{}, fmt.Errorf("failed to generate plan: %w", err)
	}
	p.telemetry.RecordLLMUsage(model, inTokens, outTokens, p.llmProvider.CalculateCost(inTokens, outTokens, model))

	decision, state := p.parseDecision(reply)
	p.telemetry.RecordParseOutcome("planning", state.String())

	plan := p.assemblePlan(decision, content)
	p.logger.Printf("plan finalized task=%s tokens=%d clarify=%t", plan.TaskType, plan.EstimatedTokens, plan.RequiresClarification)
	return plan, nil
}

const plannerSystemPrompt = `You are a planning agent.

CRITICAL RULES (MUST FOLLOW):
- NEVER summarize content that is empty or unavailable
- NEVER hallucinate missing information
- If text length is 0 and the user asks to summarize, respond with clarification_needed
- If the extraction method indicates failure, respond with clarification_needed
- Prefer clarification_needed when intent is ambiguous or several task types fit equally well
- Skip clarification only when context makes intent unambiguous

AVAILABLE TASK TYPES:
- text_extraction
- youtube_transcript
- summarization
- sentiment_analysis
- code_explanation
- conversational
- clarification_needed

Respond ONLY with valid JSON:
{
  "task_type": "...",
  "reasoning": "...",
  "requires_clarification": true/false,
  "clarification_question": "... or null",
  "suggested_steps": ["step 1", "step 2"]
}`

// buildContext renders the bounded prompt context for the planner model.
func (p *Planner) buildContext(content ExtractedContent, clarification string) string {
	excerpt := content.Text
	marker := ""
	if len(excerpt) > plannerExcerptLimit {
		excerpt = excerpt[:plannerExcerptLimit]
		marker = "..."
	}

	meta, err := json.MarshalIndent(content.Metadata, "", "  ")
	if err != nil {
		meta = []byte("{}")
	}

	ctx := fmt.Sprintf(`Analyze the user's intent strictly based on AVAILABLE content.

INPUT TYPE: %s
EXTRACTION METHOD: %s
CONTENT LENGTH: %d characters

CONTENT (may be empty):
%s%s

METADATA:
%s`, content.InputType, content.ExtractionMethod, len(content.Text), excerpt, marker, meta)

	if clarification != "" {
		ctx += fmt.Sprintf("\n\nUSER CLARIFICATION:\n%s", clarification)
	}

	return ctx
}

// planDecision is the raw shape the planner model must return.
type planDecision struct {
	TaskType              string   `json:"task_type"`
	Reasoning             string   `json:"reasoning"`
	RequiresClarification bool     `json:"requires_clarification"`
	ClarificationQuestion string   `json:"clarification_question"`
	SuggestedSteps        []string `json:"suggested_steps"`
}

// parseDecision turns a raw model reply into a decision. Parse failures
// never escape: the safe default is always "ask", not "guess".
func (p *Planner) parseDecision(reply string) (planDecision, ParseState) {
	obj, err := ExtractJSONObject(reply)
	if err != nil {
		p.logger.Printf("planner reply had no JSON, defaulting to clarification")
		return fallbackDecision(), ParseRecovered
	}

	var decision planDecision
	if err := json.Unmarshal([]byte(obj), &decision); err == nil && decision.TaskType != "" {
		return decision, ParseOK
	}

	// Lenient pass: tolerate stringly-typed booleans and null fields.
	if gjson.Valid(obj) {
		res := gjson.Parse(obj)
		taskType := res.Get("task_type").String()
		if taskType != "" {
			decision = planDecision{
				TaskType:              taskType,
				Reasoning:             res.Get("reasoning").String(),
				RequiresClarification: res.Get("requires_clarification").Bool(),
				ClarificationQuestion: res.Get("clarification_question").String(),
			}
			for _, step := range res.Get("suggested_steps").Array() {
				decision.SuggestedSteps = append(decision.SuggestedSteps, step.String())
			}
			return decision, ParseOK
		}
	}

	p.logger.Printf("planner JSON parse failed, defaulting to clarification")
	return fallbackDecision(), ParseRecovered
}

func fallbackDecision() planDecision {
	return planDecision{
		TaskType:              string(TaskClarificationNeeded),
		Reasoning:             "Failed to parse planner response",
		RequiresClarification: true,
		ClarificationQuestion: clarificationQuestionGeneric,
		SuggestedSteps:        []string{},
	}
}

// assemblePlan maps a decision onto the closed task enumeration and fills
// in estimates and invariants.
func (p *Planner) assemblePlan(decision planDecision, content ExtractedContent) ExecutionPlan {
	taskType := mapTaskType(decision.TaskType)

	requiresClarification := decision.RequiresClarification
	question := decision.ClarificationQuestion
	if taskType == TaskClarificationNeeded {
		requiresClarification = true
	}
	if requiresClarification && question == "" {
		question = clarificationQuestionGeneric
	}

	steps := decision.SuggestedSteps
	if steps == nil {
		steps = []string{}
	}

	return ExecutionPlan{
		TaskType:              taskType,
		Steps:                 steps,
		EstimatedTokens:       EstimateTokens(content.Text) + planningOverheadTokens,
		EstimatedCost:         0, // informational only; groq routing is free
		RequiresClarification: requiresClarification,
		ClarificationQuestion: question,
		Reasoning:             decision.Reasoning,
		Metadata: map[string]interface{}{
			"content_length":    len(content.Text),
			"extraction_method": content.ExtractionMethod,
		},
	}
}

// mapTaskType maps a model-supplied string onto the closed enumeration.
// Unrecognized strings become conversational, the lowest-risk default.
func mapTaskType(s string) TaskType {
	for _, t := range AllTaskTypes {
		if s == string(t) {
			return t
		}
	}
	return TaskConversational
}

// EstimateTokens approximates token count from text length. One token is
// roughly four characters of English text.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(text) / 4
}

var _ PlannerInterface = (*Planner)(nil)
