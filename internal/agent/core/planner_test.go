package core

import (
	"context"
	"strings"
	"testing"

	"github.com/intakehq/intake/config"
	"github.com/intakehq/intake/internal/agent/telemetry"
)

type stubLLM struct {
	reply string
	err   error
	calls int
}

func (s *stubLLM) Complete(ctx context.Context, system, user, model string, temperature float64, maxTokens int) (string, error) {
	reply, _, _, err := s.CompleteWithTokens(ctx, system, user, model, temperature, maxTokens)
	return reply, err
}

func (s *stubLLM) CompleteWithTokens(_ context.Context, _, _, _ string, _ float64, _ int) (string, int64, int64, error) {
	s.calls++
	return s.reply, 10, 5, s.err
}

func (s *stubLLM) GetAvailableModels() []string               { return []string{"primary"} }
func (s *stubLLM) GetModelInfo(m string) (ModelInfo, error)   { return ModelInfo{Name: m}, nil }
func (s *stubLLM) CalculateCost(_, _ int64, _ string) float64 { return 0 }

func testConfig() *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{
			Routing: config.LLMRoutingConfig{Planning: "primary", Execution: "primary"},
		},
	}
}

func testTelemetry() *telemetry.Telemetry {
	return telemetry.NewTelemetry(config.TelemetryConfig{})
}

func TestCreatePlanBlocksUngroundedContent(t *testing.T) {
	llm := &stubLLM{reply: `{"task_type": "summarization"}`}
	p := NewPlanner(testConfig(), llm, testTelemetry())

	content := ExtractedContent{
		Text:             "placeholder apology text",
		InputType:        InputText,
		ExtractionMethod: ExtractionMethodYouTubeFailed,
	}

	plan, err := p.CreatePlan(context.Background(), content, "")
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if llm.calls != 0 {
		t.Fatalf("grounding gate must bypass the model, got %d calls", llm.calls)
	}
	if plan.TaskType != TaskClarificationNeeded {
		t.Fatalf("expected clarification_needed, got %s", plan.TaskType)
	}
	if !plan.RequiresClarification || plan.ClarificationQuestion == "" {
		t.Fatalf("blocked plan must carry a clarification question: %+v", plan)
	}
	if plan.EstimatedTokens != 0 || plan.EstimatedCost != 0 {
		t.Fatalf("blocked plan must carry zero estimates: %+v", plan)
	}
	if blocked, _ := plan.Metadata["blocked"].(bool); !blocked {
		t.Fatalf("expected blocked metadata, got %v", plan.Metadata)
	}
}

func TestCreatePlanParsesDecision(t *testing.T) {
	llm := &stubLLM{reply: `{"task_type": "summarization", "reasoning": "user asked for a summary", "requires_clarification": false, "suggested_steps": ["summarize"]}`}
	p := NewPlanner(testConfig(), llm, testTelemetry())

	content := ExtractedContent{Text: "Summarize this: AI is advancing.", InputType: InputText, ExtractionMethod: "direct"}
	plan, err := p.CreatePlan(context.Background(), content, "")
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if plan.TaskType != TaskSummarization {
		t.Fatalf("expected summarization, got %s", plan.TaskType)
	}
	if plan.EstimatedTokens != EstimateTokens(content.Text)+planningOverheadTokens {
		t.Fatalf("unexpected token estimate: %d", plan.EstimatedTokens)
	}
}

func TestCreatePlanFencedReply(t *testing.T) {
	llm := &stubLLM{reply: "```json\n{\"task_type\": \"sentiment_analysis\", \"requires_clarification\": false}\n```"}
	p := NewPlanner(testConfig(), llm, testTelemetry())

	plan, err := p.CreatePlan(context.Background(), ExtractedContent{Text: "I love this", ExtractionMethod: "direct"}, "")
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if plan.TaskType != TaskSentimentAnalysis {
		t.Fatalf("expected sentiment_analysis, got %s", plan.TaskType)
	}
}

func TestCreatePlanUnknownTaskTypeMapsToConversational(t *testing.T) {
	llm := &stubLLM{reply: `{"task_type": "interpretive_dance"}`}
	p := NewPlanner(testConfig(), llm, testTelemetry())

	plan, err := p.CreatePlan(context.Background(), ExtractedContent{Text: "hello", ExtractionMethod: "direct"}, "")
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if plan.TaskType != TaskConversational {
		t.Fatalf("expected conversational default, got %s", plan.TaskType)
	}
}

func TestCreatePlanGarbageReplyDefaultsToClarification(t *testing.T) {
	llm := &stubLLM{reply: "I think the user probably wants a summary."}
	p := NewPlanner(testConfig(), llm, testTelemetry())

	plan, err := p.CreatePlan(context.Background(), ExtractedContent{Text: "hello", ExtractionMethod: "direct"}, "")
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if plan.TaskType != TaskClarificationNeeded {
		t.Fatalf("expected clarification on parse failure, got %s", plan.TaskType)
	}
	if !plan.RequiresClarification || plan.ClarificationQuestion == "" {
		t.Fatalf("fallback must ask, not guess: %+v", plan)
	}
}

func TestCreatePlanClarificationImpliesQuestion(t *testing.T) {
	llm := &stubLLM{reply: `{"task_type": "clarification_needed", "requires_clarification": false, "clarification_question": null}`}
	p := NewPlanner(testConfig(), llm, testTelemetry())

	plan, err := p.CreatePlan(context.Background(), ExtractedContent{Text: "???", ExtractionMethod: "direct"}, "")
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if !plan.RequiresClarification {
		t.Fatal("clarification_needed must imply requires_clarification")
	}
	if plan.ClarificationQuestion == "" {
		t.Fatal("requires_clarification must imply a non-empty question")
	}
}

func TestBuildContextTruncatesLongContent(t *testing.T) {
	p := NewPlanner(testConfig(), &stubLLM{}, testTelemetry())
	long := strings.Repeat("a", plannerExcerptLimit+50)
	ctx := p.buildContext(ExtractedContent{Text: long, InputType: InputText, ExtractionMethod: "direct"}, "")

	if !strings.Contains(ctx, strings.Repeat("a", plannerExcerptLimit)+"...") {
		t.Fatal("expected truncation marker after capped excerpt")
	}
	if strings.Contains(ctx, strings.Repeat("a", plannerExcerptLimit+1)) {
		t.Fatal("content beyond the cap must not appear in the prompt")
	}
}

func TestBuildContextAppendsClarification(t *testing.T) {
	p := NewPlanner(testConfig(), &stubLLM{}, testTelemetry())
	ctx := p.buildContext(ExtractedContent{Text: "hi", ExtractionMethod: "direct"}, "please summarize it")
	if !strings.Contains(ctx, "USER CLARIFICATION:\nplease summarize it") {
		t.Fatalf("clarification missing from context: %q", ctx)
	}
}

func TestEstimateTokens(t *testing.T) {
	if EstimateTokens("") != 0 {
		t.Fatal("empty text must estimate zero tokens")
	}
	if got := EstimateTokens(strings.Repeat("x", 400)); got != 100 {
		t.Fatalf("expected 100 tokens for 400 chars, got %d", got)
	}
}
