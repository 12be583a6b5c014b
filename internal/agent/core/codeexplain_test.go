package core

import (
	"context"
	"testing"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"python def", "def add(a, b):\n    return a + b", "Python"},
		{"python import", "import os\nos.getcwd()", "Python"},
		{"javascript const", "const x = 1;\nconsole.log(x);", "JavaScript"},
		{"javascript arrow", "items.map(x => x * 2)", "JavaScript"},
		{"c include", "#include <stdio.h>\nint main() { return 0; }", "C/C++"},
		{"java class", "public class Main { public static void main(String[] a) {} }", "Java"},
		{"rust", "fn main() { let mut x = 0; }", "Rust"},
		{"go", "func main() { var x int; _ = x }", "Go"},
		{"unknown", "SELECT * FROM users;", "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLanguage(tt.code); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseCodeExplanationReplyDefaults(t *testing.T) {
	reply := `{"explanation": "adds two numbers"}`
	code := "def add(a, b):\n    return a + b"
	result, state := ParseCodeExplanationReply(reply, code)
	if state != ParseOK {
		t.Fatalf("expected ParseOK, got %s", state)
	}
	if result.PotentialBugs == nil || len(result.PotentialBugs) != 0 {
		t.Fatalf("missing bugs must normalize to empty slice, got %v", result.PotentialBugs)
	}
	if result.TimeComplexity != "O(n)" || result.SpaceComplexity != "O(1)" {
		t.Fatalf("unexpected complexity defaults: %+v", result)
	}
	if result.Language != "Python" {
		t.Fatalf("missing language must come from sniffing, got %q", result.Language)
	}
}

func TestParseCodeExplanationReplyRequiresExplanation(t *testing.T) {
	reply := `{"language": "Go", "potential_bugs": []}`
	if _, state := ParseCodeExplanationReply(reply, "func main() {}"); state != ParseRecovered {
		t.Fatalf("expected ParseRecovered, got %s", state)
	}
}

func TestExplainFallsBackOnGarbageReply(t *testing.T) {
	llm := &stubLLM{reply: "Looks like Python to me."}
	e := NewCodeExplainer(testConfig(), llm, testTelemetry())

	result, state, err := e.Explain(context.Background(), "def f():\n    print('hi')")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if state != ParseRecovered {
		t.Fatalf("expected ParseRecovered, got %s", state)
	}
	if result.Language != "Python" {
		t.Fatalf("fallback should sniff Python, got %q", result.Language)
	}
	if len(result.PotentialBugs) == 0 {
		t.Fatal("fallback must flag the lack of detailed analysis")
	}
}
