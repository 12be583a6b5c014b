package core

import (
	"log"
)

// outputTokenEstimates holds per-task output-size expectations.
var outputTokenEstimates = map[TaskType]int{
	TaskTextExtraction:      100,
	TaskYouTubeTranscript:   100,
	TaskSummarization:       500,
	TaskSentimentAnalysis:   150,
	TaskCodeExplanation:     800,
	TaskConversational:      400,
	TaskClarificationNeeded: 100,
}

// CostEstimator predicts token usage and spend before execution. Its
// output never affects control flow.
type CostEstimator struct {
	llmProvider LLMProvider
	model       string
	logger      *log.Logger
}

func NewCostEstimator(llmProvider LLMProvider, model string) *CostEstimator {
	return &CostEstimator{
		llmProvider: llmProvider,
		model:       model,
		logger:      log.New(log.Writer(), "[ESTIMATOR] ", log.LstdFlags),
	}
}

// Estimate returns the cost breakdown for executing a task on content.
func (c *CostEstimator) Estimate(taskType TaskType, content ExtractedContent) CostEstimate {
	inputTokens := c.countTokens(content.Text)
	outputTokens, ok := outputTokenEstimates[taskType]
	if !ok {
		outputTokens = 300
	}

	inputCost := c.llmProvider.CalculateCost(int64(inputTokens), 0, c.model)
	outputCost := c.llmProvider.CalculateCost(0, int64(outputTokens), c.model)

	return CostEstimate{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
		InputCost:    inputCost,
		OutputCost:   outputCost,
		TotalCost:    inputCost + outputCost,
		Model:        c.model,
		Breakdown: map[string]interface{}{
			"input":  map[string]interface{}{"tokens": inputTokens, "cost": inputCost},
			"output": map[string]interface{}{"tokens": outputTokens, "cost": outputCost},
		},
		Confidence: estimateConfidence(taskType, content),
	}
}

// CompareModels prices the same task across every configured model.
func (c *CostEstimator) CompareModels(taskType TaskType, content ExtractedContent) map[string]CostEstimate {
	out := make(map[string]CostEstimate)
	for _, model := range c.llmProvider.GetAvailableModels() {
		est := CostEstimator{llmProvider: c.llmProvider, model: model, logger: c.logger}
		out[model] = est.Estimate(taskType, content)
	}
	return out
}

// countTokens approximates input tokens plus prompt overhead: ten percent,
// capped at 500 tokens.
func (c *CostEstimator) countTokens(text string) int {
	tokens := EstimateTokens(text)
	overhead := tokens / 10
	if overhead > 500 {
		overhead = 500
	}
	return tokens + overhead
}

// estimateConfidence is lower for tasks whose output size varies most.
func estimateConfidence(taskType TaskType, content ExtractedContent) float64 {
	confidence := 0.85

	switch taskType {
	case TaskCodeExplanation, TaskConversational:
		confidence -= 0.15
	case TaskTextExtraction, TaskYouTubeTranscript:
		confidence += 0.10
	}

	if len(content.Text) > 5000 {
		confidence -= 0.1
	}

	if confidence < 0.5 {
		return 0.5
	}
	if confidence > 0.95 {
		return 0.95
	}
	return confidence
}
