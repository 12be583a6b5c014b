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

const codeInputLimit = 3000

// CodeExplainer explains code: language, behavior, bugs, complexity.
type CodeExplainer struct {
	config      *config.Config
	llmProvider LLMProvider
	telemetry   *telemetry.Telemetry
	logger      *log.Logger
}

func NewCodeExplainer(cfg *config.Config, llmProvider LLMProvider, tele *telemetry.Telemetry) *CodeExplainer {
	return &CodeExplainer{
		config:      cfg,
		llmProvider: llmProvider,
		telemetry:   tele,
		logger:      log.New(log.Writer(), "[CODE] ", log.LstdFlags),
	}
}

// Explain runs one completion call. A malformed reply degrades to the
// heuristic language-sniffing fallback.
func (e *CodeExplainer) Explain(ctx context.Context, code string) (CodeExplanationResult, ParseState, error) {
	excerpt := code
	if len(excerpt) > codeInputLimit {
		excerpt = excerpt[:codeInputLimit]
	}

	prompt := fmt.Sprintf(`Analyze the following code and provide:

1. Programming language
2. Clear explanation of what the code does
3. Any potential bugs or issues (as a list, can be empty if no bugs)
4. Time complexity (Big O notation)
5. Space complexity (Big O notation)

Code:
%s

Respond ONLY with valid JSON (no markdown, no extra text):
{
  "language": "Python",
  "explanation": "detailed explanation here",
  "potential_bugs": ["bug 1", "bug 2"],
  "time_complexity": "O(n)",
  "space_complexity": "O(1)"
}`, excerpt)

	model := executionModel(e.config)
	reply, inTokens, outTokens, err := e.llmProvider.CompleteWithTokens(ctx,
		"You are an expert code analyzer. Always respond with valid JSON only.",
		prompt, model, 0.2, 2000)
	if err != nil {
		return CodeExplanationResult{}, ParseUnparseable, fmt.Errorf("code explanation: %w", err)
	}
	e.telemetry.RecordLLMUsage(model, inTokens, outTokens, e.llmProvider.CalculateCost(inTokens, outTokens, model))

	result, state := ParseCodeExplanationReply(reply, code)
	if state == ParseRecovered {
		e.logger.Printf("code explanation reply unusable, using heuristic fallback")
		result = FallbackCodeExplanation(code)
	}
	return result, state, nil
}

// ParseCodeExplanationReply parses and normalizes a code-explanation
// reply: bugs become an empty slice, complexities and language get
// defaults when missing.
func ParseCodeExplanationReply(reply, code string) (CodeExplanationResult, ParseState) {
	obj, err := ExtractJSONObject(reply)
	if err != nil {
		return CodeExplanationResult{}, ParseRecovered
	}
	var result CodeExplanationResult
	if err := json.Unmarshal([]byte(obj), &result); err != nil {
		return CodeExplanationResult{}, ParseRecovered
	}
	if result.Explanation == "" {
		return CodeExplanationResult{}, ParseRecovered
	}

	if result.PotentialBugs == nil {
		result.PotentialBugs = []string{}
	}
	if result.TimeComplexity == "" {
		result.TimeComplexity = "O(n)"
	}
	if result.SpaceComplexity == "" {
		result.SpaceComplexity = "O(1)"
	}
	if result.Language == "" {
		result.Language = DetectLanguage(code)
	}
	return result, ParseOK
}

// FallbackCodeExplanation builds a generic explanation from syntax
// sniffing alone.
func FallbackCodeExplanation(code string) CodeExplanationResult {
	language := DetectLanguage(code)
	return CodeExplanationResult{
		Language:        language,
		Explanation:     fmt.Sprintf("This appears to be %s code. It contains functions, variables, and control structures.", language),
		PotentialBugs:   []string{"Unable to perform detailed analysis"},
		TimeComplexity:  "O(n)",
		SpaceComplexity: "O(1)",
	}
}

// DetectLanguage sniffs the language from characteristic keywords.
func DetectLanguage(code string) string {
	switch {
	case strings.Contains(code, "def ") || strings.Contains(code, "import ") || strings.Contains(code, "print("):
		return "Python"
	case strings.Contains(code, "function ") || strings.Contains(code, "const ") || strings.Contains(code, "let ") || strings.Contains(code, "=>"):
		return "JavaScript"
	case strings.Contains(code, "#include") || strings.Contains(code, "int main"):
		return "C/C++"
	case strings.Contains(code, "public class") || strings.Contains(code, "public static void"):
		return "Java"
	case strings.Contains(code, "fn ") && strings.Contains(code, "let mut"):
		return "Rust"
	case strings.Contains(code, "func ") && strings.Contains(code, "var "):
		return "Go"
	default:
		return "Unknown"
	}
}
