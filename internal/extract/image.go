package extract

import (
	"context"
	"encoding/base64"
	"fmt"

	core "github.com/intakehq/intake/internal/agent/core"
)

// OCRClient talks to an external OCR HTTP service. The engine itself is a
// collaborator; only its normalized output enters the pipeline.
type OCRClient struct {
	endpoint string
	http     *core.HTTPClient
}

func NewOCRClient(endpoint string, httpc *core.HTTPClient) *OCRClient {
	return &OCRClient{endpoint: endpoint, http: httpc}
}

// ExtractText sends the image to the OCR service and normalizes the
// result.
func (c *OCRClient) ExtractText(ctx context.Context, filename string, data []byte) (core.ExtractedContent, error) {
	if c.endpoint == "" {
		return core.ExtractedContent{}, fmt.Errorf("image OCR not configured (extract.ocr_endpoint)")
	}

	req := map[string]interface{}{
		"filename":     filename,
		"image_base64": base64.StdEncoding.EncodeToString(data),
	}
	var resp struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	}
	if err := c.http.DoJSON(ctx, "POST", c.endpoint, nil, req, &resp); err != nil {
		return core.ExtractedContent{}, fmt.Errorf("ocr request: %w", err)
	}

	confidence := resp.Confidence
	return core.ExtractedContent{
		Text:             resp.Text,
		InputType:        core.InputImage,
		ExtractionMethod: "ocr",
		Confidence:       &confidence,
	}, nil
}
