// Package extract normalizes raw input (text, YouTube URLs, uploaded
// files) into content the planner can reason about.
package extract

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/intakehq/intake/config"
	core "github.com/intakehq/intake/internal/agent/core"
)

var youtubePattern = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?(?:youtube\.com/watch\?v=|youtu\.be/)([^\s&]+)`)

// Processor dispatches input to the matching extractor collaborator.
type Processor struct {
	config      config.ExtractConfig
	llmProvider core.LLMProvider
	whisper     *Transcriber
	youtube     *CaptionFetcher
	ocr         *OCRClient
	logger      *log.Logger
}

func NewProcessor(cfg config.ExtractConfig, llmCfg config.LLMConfig, llmProvider core.LLMProvider) *Processor {
	httpc := core.NewHTTPClient(cfg.CaptionTimeout, cfg.MaxRetries, cfg.RetryBackoff)
	return &Processor{
		config:      cfg,
		llmProvider: llmProvider,
		whisper:     NewTranscriber(llmCfg),
		youtube:     NewCaptionFetcher(httpc),
		ocr:         NewOCRClient(cfg.OCREndpoint, httpc),
		logger:      log.New(log.Writer(), "[EXTRACT] ", log.LstdFlags),
	}
}

// Extract normalizes one input. Precedence follows the input surface:
// YouTube URL in the text field, then uploaded file, then direct text.
func (p *Processor) Extract(ctx context.Context, text string, filename string, data []byte) (core.ExtractedContent, error) {
	p.logger.Printf("processing input text=%t file=%t", text != "", len(data) > 0)

	if text != "" && youtubePattern.MatchString(text) {
		return p.processYouTube(ctx, text)
	}

	if len(data) > 0 {
		return p.processFile(ctx, filename, data)
	}

	if text != "" {
		trimmed := strings.TrimSpace(text)
		return core.ExtractedContent{
			Text:             trimmed,
			InputType:        core.InputText,
			ExtractionMethod: "direct",
			Metadata:         map[string]interface{}{"length": len(trimmed)},
		}, nil
	}

	return core.ExtractedContent{}, fmt.Errorf("no valid input provided")
}

// processYouTube fetches captions. Caption failure is not an error: the
// result carries the youtube_failed sentinel so the planner's grounding
// gate can act deterministically.
func (p *Processor) processYouTube(ctx context.Context, text string) (core.ExtractedContent, error) {
	m := youtubePattern.FindStringSubmatch(text)
	if m == nil {
		return core.ExtractedContent{}, fmt.Errorf("could not extract YouTube video id")
	}
	videoID := strings.SplitN(m[1], "&", 2)[0]

	transcript, err := p.youtube.Fetch(ctx, videoID)
	if err != nil {
		p.logger.Printf("caption fetch failed for %s: %v", videoID, err)
		zero := 0.0
		return core.ExtractedContent{
			Text: "I couldn't access captions for this YouTube video. " +
				"Please upload the transcript, enable captions, or upload the audio/video file.",
			InputType:        core.InputText,
			ExtractionMethod: core.ExtractionMethodYouTubeFailed,
			Confidence:       &zero,
			Metadata: map[string]interface{}{
				"video_id": videoID,
				"error":    err.Error(),
			},
		}, nil
	}

	confidence := 0.9
	return core.ExtractedContent{
		Text:             transcript.Text,
		InputType:        core.InputText,
		ExtractionMethod: "youtube_transcript",
		Confidence:       &confidence,
		Metadata: map[string]interface{}{
			"video_id":         videoID,
			"duration_seconds": transcript.Duration,
			"language":         transcript.Language,
			"segment_count":    transcript.SegmentCount,
		},
	}, nil
}

func (p *Processor) processFile(ctx context.Context, filename string, data []byte) (core.ExtractedContent, error) {
	mimeType := sniffMIME(filename, data)
	p.logger.Printf("processing file %s (%s)", filename, mimeType)

	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return p.ocr.ExtractText(ctx, filename, data)
	case mimeType == "application/pdf":
		return ExtractPDFText(data)
	case strings.HasPrefix(mimeType, "audio/"):
		return p.whisper.Transcribe(ctx, filename, data)
	default:
		return core.ExtractedContent{}, fmt.Errorf("unsupported file type: %s", mimeType)
	}
}

// sniffMIME combines content sniffing with the filename extension, since
// DetectContentType cannot tell several audio containers apart.
func sniffMIME(filename string, data []byte) string {
	mimeType := http.DetectContentType(data)
	if mimeType != "application/octet-stream" && !strings.HasPrefix(mimeType, "text/") {
		return mimeType
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	case ".ogg":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".bmp":
		return "image/bmp"
	}
	return mimeType
}

var _ core.Extractor = (*Processor)(nil)
