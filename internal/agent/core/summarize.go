package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/intakehq/intake/config"
	"github.com/intakehq/intake/internal/agent/telemetry"
)

const summaryInputLimit = 4000

// Summarizer produces the one-line / three-bullet / five-sentence summary.
type Summarizer struct {
	config      *config.Config
	llmProvider LLMProvider
	telemetry   *telemetry.Telemetry
	logger      *log.Logger
}

func NewSummarizer(cfg *config.Config, llmProvider LLMProvider, tele *telemetry.Telemetry) *Summarizer {
	return &Summarizer{
		config:      cfg,
		llmProvider: llmProvider,
		telemetry:   tele,
		logger:      log.New(log.Writer(), "[SUMMARIZER] ", log.LstdFlags),
	}
}

// Summarize runs one completion call and repairs or falls back on any
// malformed reply.
func (s *Summarizer) Summarize(ctx context.Context, text string) (SummaryResult, ParseState, error) {
	excerpt := text
	if len(excerpt) > summaryInputLimit {
		excerpt = excerpt[:summaryInputLimit]
	}

	prompt := fmt.Sprintf(`Summarize the following text in three formats:

1. ONE-LINE SUMMARY (max 20 words)
2. THREE BULLET POINTS (key takeaways)
3. FIVE SENTENCES (comprehensive summary)

Text to summarize:
%s

Respond ONLY with valid JSON in this exact format (no markdown, no extra text):
{
  "one_line": "your one-line summary here",
  "bullets": ["bullet 1", "bullet 2", "bullet 3"],
  "five_sentence": "your five sentence summary here"
}`, excerpt)

	model := executionModel(s.config)
	reply, inTokens, outTokens, err := s.llmProvider.CompleteWithTokens(ctx,
		"You are a helpful assistant that creates concise summaries. Always respond with valid JSON only.",
		prompt, model, 0.3, 1000)
	if err != nil {
		return SummaryResult{}, ParseUnparseable, fmt.Errorf("summarization: %w", err)
	}
	s.telemetry.RecordLLMUsage(model, inTokens, outTokens, s.llmProvider.CalculateCost(inTokens, outTokens, model))

	result, state := ParseSummaryReply(reply)
	if state == ParseRecovered {
		s.logger.Printf("summary reply unusable, building deterministic fallback")
		result = FallbackSummary(text)
	}
	return result, state, nil
}

// ParseSummaryReply validates the summary shape: all three fields present
// and exactly three bullets. Anything else is a recoverable failure.
func ParseSummaryReply(reply string) (SummaryResult, ParseState) {
	obj, err := ExtractJSONObject(reply)
	if err != nil {
		return SummaryResult{}, ParseRecovered
	}
	var result SummaryResult
	if err := json.Unmarshal([]byte(obj), &result); err != nil {
		return SummaryResult{}, ParseRecovered
	}
	if result.OneLine == "" || result.FiveSentence == "" || len(result.Bullets) != 3 {
		return SummaryResult{}, ParseRecovered
	}
	return result, ParseOK
}

// FallbackSummary builds a summary from sentence boundaries alone. The
// three-bullet invariant holds here too.
func FallbackSummary(text string) SummaryResult {
	sentences := SplitSentences(text)

	oneLine := text
	if len(sentences) > 0 {
		oneLine = sentences[0]
	}
	if len(oneLine) > 100 {
		oneLine = oneLine[:100]
	}

	bullets := make([]string, 0, 3)
	for _, s := range sentences {
		if len(bullets) == 3 {
			break
		}
		bullets = append(bullets, s)
	}
	for len(bullets) < 3 {
		bullets = append(bullets, oneLine)
	}

	upTo := len(sentences)
	if upTo > 5 {
		upTo = 5
	}
	five := strings.Join(sentences[:upTo], ". ")
	if five != "" {
		five += "."
	} else {
		five = oneLine
	}

	return SummaryResult{OneLine: oneLine, Bullets: bullets, FiveSentence: five}
}

// SplitSentences splits text on sentence-ending punctuation and drops
// empty fragments.
func SplitSentences(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	var out []string
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func executionModel(cfg *config.Config) string {
	if cfg.LLM.Routing.Execution != "" {
		return cfg.LLM.Routing.Execution
	}
	if cfg.LLM.Routing.Planning != "" {
		return cfg.LLM.Routing.Planning
	}
	return cfg.LLM.Routing.Fallback
}
