package extract

import (
	"bytes"
	"fmt"
	"strings"

	pdfx "github.com/ledongthuc/pdf"

	core "github.com/intakehq/intake/internal/agent/core"
)

// ExtractPDFText pulls plain text from every page of a PDF document.
func ExtractPDFText(data []byte) (core.ExtractedContent, error) {
	reader, err := pdfx.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return core.ExtractedContent{}, fmt.Errorf("pdf open: %w", err)
	}

	var out strings.Builder
	totalPages := reader.NumPage()
	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		txt, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		txt = strings.TrimSpace(txt)
		if txt != "" {
			out.WriteString(txt)
			out.WriteString("\n\n")
		}
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return core.ExtractedContent{}, fmt.Errorf("pdf contains no extractable text")
	}

	return core.ExtractedContent{
		Text:             text,
		InputType:        core.InputPDF,
		ExtractionMethod: "pdf_text",
		Metadata: map[string]interface{}{
			"pages": totalPages,
			"bytes": len(data),
		},
	}, nil
}
