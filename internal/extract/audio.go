package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/intakehq/intake/config"
	core "github.com/intakehq/intake/internal/agent/core"
)

// Transcriber sends audio to a Whisper-compatible transcription endpoint.
type Transcriber struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewTranscriber(cfg config.LLMConfig) *Transcriber {
	t := &Transcriber{
		model:  cfg.Routing.Transcription,
		client: &http.Client{Timeout: 120 * time.Second},
	}
	for _, provider := range cfg.Providers {
		t.apiKey = provider.APIKey
		t.baseURL = provider.BaseURL
		if t.baseURL == "" && provider.Type == "groq" {
			t.baseURL = "https://api.groq.com/openai/v1"
		}
		if t.baseURL == "" {
			t.baseURL = "https://api.openai.com/v1"
		}
		break
	}
	return t
}

// Transcribe uploads the audio file and returns its transcript.
func (t *Transcriber) Transcribe(ctx context.Context, filename string, data []byte) (core.ExtractedContent, error) {
	if t.model == "" {
		return core.ExtractedContent{}, fmt.Errorf("no transcription model configured")
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return core.ExtractedContent{}, err
	}
	if _, err := part.Write(data); err != nil {
		return core.ExtractedContent{}, err
	}
	if err := w.WriteField("model", t.model); err != nil {
		return core.ExtractedContent{}, err
	}
	if err := w.Close(); err != nil {
		return core.ExtractedContent{}, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return core.ExtractedContent{}, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return core.ExtractedContent{}, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return core.ExtractedContent{}, fmt.Errorf("transcription failed: %s: %s", resp.Status, b)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return core.ExtractedContent{}, fmt.Errorf("transcription decode: %w", err)
	}

	return core.ExtractedContent{
		Text:             out.Text,
		InputType:        core.InputAudio,
		ExtractionMethod: "whisper_api",
		Metadata: map[string]interface{}{
			"filename": filename,
			"bytes":    len(data),
		},
	}, nil
}
