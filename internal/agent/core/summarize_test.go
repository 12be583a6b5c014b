package core

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func TestParseSummaryReplyAcceptsFencedJSON(t *testing.T) {
	reply := "```json\n{\"one_line\": \"AI advances fast.\", \"bullets\": [\"a\", \"b\", \"c\"], \"five_sentence\": \"Five sentences here.\"}\n```"
	result, state := ParseSummaryReply(reply)
	if state != ParseOK {
		t.Fatalf("expected ParseOK, got %s", state)
	}
	if result.OneLine != "AI advances fast." || len(result.Bullets) != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestParseSummaryReplyRejectsWrongBulletCount(t *testing.T) {
	for _, reply := range []string{
		`{"one_line": "x", "bullets": ["a", "b"], "five_sentence": "y"}`,
		`{"one_line": "x", "bullets": ["a", "b", "c", "d"], "five_sentence": "y"}`,
		`{"one_line": "x", "bullets": [], "five_sentence": "y"}`,
	} {
		if _, state := ParseSummaryReply(reply); state != ParseRecovered {
			t.Errorf("reply %q: expected ParseRecovered, got %s", reply, state)
		}
	}
}

func TestParseSummaryReplyRejectsMissingFields(t *testing.T) {
	reply := `{"bullets": ["a", "b", "c"]}`
	if _, state := ParseSummaryReply(reply); state != ParseRecovered {
		t.Fatalf("expected ParseRecovered, got %s", state)
	}
}

func TestFallbackSummaryAlwaysThreeBullets(t *testing.T) {
	for _, text := range []string{
		"One sentence only.",
		"First. Second.",
		"First. Second. Third. Fourth. Fifth. Sixth.",
		"no terminal punctuation at all",
	} {
		result := FallbackSummary(text)
		if len(result.Bullets) != 3 {
			t.Errorf("text %q: got %d bullets, want 3", text, len(result.Bullets))
		}
		if result.OneLine == "" || result.FiveSentence == "" {
			t.Errorf("text %q: empty field in %+v", text, result)
		}
	}
}

func TestFallbackSummaryCapsOneLine(t *testing.T) {
	long := strings.Repeat("word ", 40) + "."
	result := FallbackSummary(long)
	if len(result.OneLine) > 100 {
		t.Fatalf("one_line exceeds 100 chars: %d", len(result.OneLine))
	}
}

func TestSummarizeRecoversFromGarbageReply(t *testing.T) {
	llm := &stubLLM{reply: "Sure, here's a summary: the text is about dogs."}
	s := NewSummarizer(testConfig(), llm, testTelemetry())

	result, state, err := s.Summarize(context.Background(), "Dogs are loyal. Cats are aloof. Both are pets.")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if state != ParseRecovered {
		t.Fatalf("expected ParseRecovered, got %s", state)
	}
	if len(result.Bullets) != 3 {
		t.Fatalf("fallback must keep three bullets, got %d", len(result.Bullets))
	}
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("First. Second! Third? ")
	want := []string{"First", "Second", "Third"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if SplitSentences("") != nil {
		t.Fatal("empty text must yield no sentences")
	}
}
