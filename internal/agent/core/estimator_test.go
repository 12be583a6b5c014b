package core

import (
	"math"
	"strings"
	"testing"
)

func TestEstimateTokenBreakdown(t *testing.T) {
	est := NewCostEstimator(&stubLLM{}, "primary")
	content := ExtractedContent{Text: strings.Repeat("x", 400)}

	estimate := est.Estimate(TaskSummarization, content)
	if estimate.InputTokens != 110 {
		t.Fatalf("expected 100 tokens plus 10%% overhead, got %d", estimate.InputTokens)
	}
	if estimate.OutputTokens != 500 {
		t.Fatalf("expected summarization output estimate 500, got %d", estimate.OutputTokens)
	}
	if estimate.TotalTokens != estimate.InputTokens+estimate.OutputTokens {
		t.Fatalf("inconsistent totals: %+v", estimate)
	}
	if estimate.Model != "primary" {
		t.Fatalf("unexpected model: %q", estimate.Model)
	}
}

func TestEstimateOverheadCap(t *testing.T) {
	est := NewCostEstimator(&stubLLM{}, "primary")
	// 40000 chars is 10000 tokens; raw overhead would be 1000, capped at 500.
	content := ExtractedContent{Text: strings.Repeat("x", 40000)}

	estimate := est.Estimate(TaskSummarization, content)
	if estimate.InputTokens != 10500 {
		t.Fatalf("expected overhead capped at 500, got %d input tokens", estimate.InputTokens)
	}
}

func TestCompareModelsCoversAllConfigured(t *testing.T) {
	est := NewCostEstimator(&stubLLM{}, "primary")

	estimates := est.CompareModels(TaskSummarization, ExtractedContent{Text: "short"})
	if len(estimates) != 1 {
		t.Fatalf("expected one estimate per configured model, got %d", len(estimates))
	}
	if _, ok := estimates["primary"]; !ok {
		t.Fatalf("missing estimate for primary: %v", estimates)
	}
}

func TestEstimateConfidence(t *testing.T) {
	tests := []struct {
		name string
		task TaskType
		text string
		want float64
	}{
		{"default", TaskSummarization, "short", 0.85},
		{"code is less predictable", TaskCodeExplanation, "short", 0.70},
		{"extraction is more predictable", TaskTextExtraction, "short", 0.95},
		{"long content reduces confidence", TaskSummarization, strings.Repeat("x", 6000), 0.75},
		{"penalties compound", TaskConversational, strings.Repeat("x", 6000), 0.60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := estimateConfidence(tt.task, ExtractedContent{Text: tt.text})
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
