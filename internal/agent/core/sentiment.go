package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/intakehq/intake/config"
	"github.com/intakehq/intake/internal/agent/telemetry"
)

const sentimentInputLimit = 2000

var (
	positiveLexicon = []string{"good", "great", "excellent", "amazing", "love", "wonderful"}
	negativeLexicon = []string{"bad", "terrible", "awful", "hate", "poor", "horrible"}
)

// SentimentAnalyzer labels text as positive, negative or neutral.
type SentimentAnalyzer struct {
	config      *config.Config
	llmProvider LLMProvider
	telemetry   *telemetry.Telemetry
	logger      *log.Logger
}

func NewSentimentAnalyzer(cfg *config.Config, llmProvider LLMProvider, tele *telemetry.Telemetry) *SentimentAnalyzer {
	return &SentimentAnalyzer{
		config:      cfg,
		llmProvider: llmProvider,
		telemetry:   tele,
		logger:      log.New(log.Writer(), "[SENTIMENT] ", log.LstdFlags),
	}
}

// Analyze runs one completion call. A malformed reply degrades to the
// keyword-count fallback, never to an error.
func (a *SentimentAnalyzer) Analyze(ctx context.Context, text string) (SentimentResult, ParseState, error) {
	excerpt := text
	if len(excerpt) > sentimentInputLimit {
		excerpt = excerpt[:sentimentInputLimit]
	}

	prompt := fmt.Sprintf(`Analyze the sentiment of the following text.

Text:
%s

Provide:
1. Label: "positive", "negative", or "neutral"
2. Confidence: a number between 0.0 and 1.0
3. Justification: one-line explanation of why

Respond ONLY with valid JSON (no markdown, no extra text):
{
  "label": "positive",
  "confidence": 0.85,
  "justification": "your explanation here"
}`, excerpt)

	model := executionModel(a.config)
	reply, inTokens, outTokens, err := a.llmProvider.CompleteWithTokens(ctx,
		"You are a sentiment analysis expert. Always respond with valid JSON only.",
		prompt, model, 0.2, 300)
	if err != nil {
		return SentimentResult{}, ParseUnparseable, fmt.Errorf("sentiment analysis: %w", err)
	}
	a.telemetry.RecordLLMUsage(model, inTokens, outTokens, a.llmProvider.CalculateCost(inTokens, outTokens, model))

	result, state := ParseSentimentReply(reply)
	if state == ParseRecovered {
		a.logger.Printf("sentiment reply unusable, using keyword fallback")
		result = FallbackSentiment(text)
	}
	return result, state, nil
}

// ParseSentimentReply parses and validates a sentiment reply. Out-of-range
// values are clamped or defaulted, never left invalid.
func ParseSentimentReply(reply string) (SentimentResult, ParseState) {
	obj, err := ExtractJSONObject(reply)
	if err != nil {
		return SentimentResult{}, ParseRecovered
	}

	var result SentimentResult
	if err := json.Unmarshal([]byte(obj), &result); err != nil {
		// Confidence sometimes arrives as a quoted number.
		if !gjson.Valid(obj) {
			return SentimentResult{}, ParseRecovered
		}
		res := gjson.Parse(obj)
		result = SentimentResult{
			Label:         res.Get("label").String(),
			Confidence:    res.Get("confidence").Float(),
			Justification: res.Get("justification").String(),
		}
		if result.Label == "" && result.Justification == "" {
			return SentimentResult{}, ParseRecovered
		}
	}

	switch result.Label {
	case "positive", "negative", "neutral":
	default:
		result.Label = "neutral"
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		result.Confidence = 0.5
	}
	return result, ParseOK
}

// FallbackSentiment tallies a small positive/negative lexicon. Confidence
// grows with the margin and caps at 0.9; a tie is neutral.
func FallbackSentiment(text string) SentimentResult {
	lower := strings.ToLower(text)

	posCount := 0
	for _, w := range positiveLexicon {
		if strings.Contains(lower, w) {
			posCount++
		}
	}
	negCount := 0
	for _, w := range negativeLexicon {
		if strings.Contains(lower, w) {
			negCount++
		}
	}

	label := "neutral"
	confidence := 0.5
	switch {
	case posCount > negCount:
		label = "positive"
		confidence = capConfidence(0.6 + float64(posCount)*0.1)
	case negCount > posCount:
		label = "negative"
		confidence = capConfidence(0.6 + float64(negCount)*0.1)
	}

	return SentimentResult{
		Label:         label,
		Confidence:    confidence,
		Justification: "Sentiment detected based on keyword analysis",
	}
}

func capConfidence(c float64) float64 {
	if c > 0.9 {
		return 0.9
	}
	return c
}
