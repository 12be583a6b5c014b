package extract

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/intakehq/intake/config"
	core "github.com/intakehq/intake/internal/agent/core"
)

func testProcessor() *Processor {
	// A sub-millisecond caption timeout keeps these tests off the network.
	cfg := config.ExtractConfig{CaptionTimeout: time.Millisecond}
	return NewProcessor(cfg, config.LLMConfig{}, nil)
}

func TestYouTubePatternExtractsVideoID(t *testing.T) {
	tests := []struct {
		name string
		text string
		id   string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"no scheme", "youtube.com/watch?v=abc123", "abc123"},
		{"embedded in prose", "summarize this https://youtu.be/xyz789 please", "xyz789"},
		{"query suffix stripped", "https://www.youtube.com/watch?v=abc123&t=42s", "abc123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := youtubePattern.FindStringSubmatch(tt.text)
			if m == nil {
				t.Fatalf("pattern did not match %q", tt.text)
			}
			got := strings.SplitN(m[1], "&", 2)[0]
			if got != tt.id {
				t.Fatalf("got id %q, want %q", got, tt.id)
			}
		})
	}
}

func TestYouTubePatternIgnoresPlainText(t *testing.T) {
	for _, text := range []string{
		"summarize this article about video platforms",
		"https://vimeo.com/12345",
		"",
	} {
		if youtubePattern.MatchString(text) {
			t.Errorf("pattern must not match %q", text)
		}
	}
}

func TestExtractDirectText(t *testing.T) {
	p := testProcessor()

	content, err := p.Extract(context.Background(), "  hello world  ", "", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if content.Text != "hello world" {
		t.Fatalf("text must be trimmed, got %q", content.Text)
	}
	if content.InputType != core.InputText || content.ExtractionMethod != "direct" {
		t.Fatalf("unexpected provenance: %+v", content)
	}
}

func TestExtractNoInput(t *testing.T) {
	p := testProcessor()

	if _, err := p.Extract(context.Background(), "", "", nil); err == nil {
		t.Fatal("empty input must be an error")
	}
}

func TestExtractUnsupportedFileType(t *testing.T) {
	p := testProcessor()

	if _, err := p.Extract(context.Background(), "", "archive.zip", []byte("PK\x03\x04junk")); err == nil {
		t.Fatal("unsupported file type must be an error")
	}
}

func TestExtractYouTubeFailureIsSentinelNotError(t *testing.T) {
	p := testProcessor()

	content, err := p.Extract(context.Background(), "https://youtu.be/nonexistent0", "", nil)
	if err != nil {
		t.Fatalf("caption failure must not surface as an error: %v", err)
	}
	if content.ExtractionMethod != core.ExtractionMethodYouTubeFailed {
		t.Fatalf("expected youtube_failed sentinel, got %q", content.ExtractionMethod)
	}
	if content.Grounded() {
		t.Fatal("sentinel content must not count as grounded")
	}
	if content.Confidence == nil || *content.Confidence != 0 {
		t.Fatalf("sentinel content must carry zero confidence, got %v", content.Confidence)
	}
	if content.Metadata["video_id"] != "nonexistent0" {
		t.Fatalf("video id missing from metadata: %v", content.Metadata)
	}
}

func TestSniffMIME(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		want     string
	}{
		{"png magic", "shot", []byte("\x89PNG\r\n\x1a\n rest"), "image/png"},
		{"pdf extension", "doc.pdf", []byte("plain looking bytes"), "application/pdf"},
		{"mp3 extension", "song.MP3", []byte("plain looking bytes"), "audio/mpeg"},
		{"wav extension", "clip.wav", []byte("plain looking bytes"), "audio/wav"},
		{"jpeg extension", "photo.jpeg", []byte("plain looking bytes"), "image/jpeg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sniffMIME(tt.filename, tt.data); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
