package core

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestExecuteTextExtractionIsPureTransform(t *testing.T) {
	llm := &stubLLM{reply: "should never be consulted"}
	e := NewExecutor(testConfig(), llm, testTelemetry())

	content := ExtractedContent{Text: "hello world from intake", InputType: InputText, ExtractionMethod: "direct"}
	result, err := e.Execute(context.Background(), ExecutionPlan{TaskType: TaskTextExtraction}, content)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if llm.calls != 0 {
		t.Fatalf("text extraction must not call the model, got %d calls", llm.calls)
	}

	output, ok := result.Output.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected output type %T", result.Output)
	}
	if output["extracted_text"] != content.Text {
		t.Fatalf("output must echo the content: %v", output)
	}
	if output["word_count"] != 4 {
		t.Fatalf("expected word_count 4, got %v", output["word_count"])
	}
}

func TestPassThroughHandlersAreIdempotent(t *testing.T) {
	e := NewExecutor(testConfig(), &stubLLM{}, testTelemetry())
	content := ExtractedContent{
		Text:      "transcript words here",
		InputType: InputText,
		Metadata:  map[string]interface{}{"video_id": "abc", "duration_seconds": 12.5},
	}

	for _, task := range []TaskType{TaskTextExtraction, TaskYouTubeTranscript} {
		first, err := e.Execute(context.Background(), ExecutionPlan{TaskType: task}, content)
		if err != nil {
			t.Fatalf("%s first run: %v", task, err)
		}
		second, err := e.Execute(context.Background(), ExecutionPlan{TaskType: task}, content)
		if err != nil {
			t.Fatalf("%s second run: %v", task, err)
		}
		if !reflect.DeepEqual(first.Output, second.Output) {
			t.Fatalf("%s output differs across runs: %v vs %v", task, first.Output, second.Output)
		}
	}
}

func TestExecuteSummarization(t *testing.T) {
	llm := &stubLLM{reply: `{"one_line": "x", "bullets": ["a", "b", "c"], "five_sentence": "y"}`}
	e := NewExecutor(testConfig(), llm, testTelemetry())

	result, err := e.Execute(context.Background(), ExecutionPlan{TaskType: TaskSummarization}, ExtractedContent{Text: "Some text."})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	summary, ok := result.Output.(SummaryResult)
	if !ok {
		t.Fatalf("unexpected output type %T", result.Output)
	}
	if len(summary.Bullets) != 3 {
		t.Fatalf("expected three bullets, got %d", len(summary.Bullets))
	}
	if result.Metadata["parse_state"] != "ok" {
		t.Fatalf("expected parse_state ok, got %v", result.Metadata["parse_state"])
	}
}

func TestExecuteConversationalDegradesOnProviderError(t *testing.T) {
	llm := &stubLLM{err: errors.New("rate limited")}
	e := NewExecutor(testConfig(), llm, testTelemetry())

	result, err := e.Execute(context.Background(), ExecutionPlan{TaskType: TaskConversational}, ExtractedContent{Text: "hi"})
	if err != nil {
		t.Fatalf("conversational path must not fail: %v", err)
	}
	output, ok := result.Output.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected output type %T", result.Output)
	}
	if output["response"] != conversationalFallbackReply {
		t.Fatalf("expected canned reply, got %v", output["response"])
	}
}

func TestExecuteSummarizationPropagatesProviderError(t *testing.T) {
	llm := &stubLLM{err: errors.New("provider down")}
	e := NewExecutor(testConfig(), llm, testTelemetry())

	if _, err := e.Execute(context.Background(), ExecutionPlan{TaskType: TaskSummarization}, ExtractedContent{Text: "x"}); err == nil {
		t.Fatal("expected provider error to propagate")
	}
}

func TestExecuteUnknownTaskType(t *testing.T) {
	e := NewExecutor(testConfig(), &stubLLM{}, testTelemetry())

	if _, err := e.Execute(context.Background(), ExecutionPlan{TaskType: TaskClarificationNeeded}, ExtractedContent{}); err == nil {
		t.Fatal("clarification_needed must not be executable")
	}
}
