package extract

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"net/url"
	"strings"

	core "github.com/intakehq/intake/internal/agent/core"
)

const timedTextURL = "https://video.google.com/timedtext"

// Transcript is the normalized caption payload for one video.
type Transcript struct {
	Text         string
	Duration     float64
	Language     string
	SegmentCount int
}

// CaptionFetcher pulls captions from the public timedtext endpoint.
type CaptionFetcher struct {
	http *core.HTTPClient
}

func NewCaptionFetcher(httpc *core.HTTPClient) *CaptionFetcher {
	return &CaptionFetcher{http: httpc}
}

type timedText struct {
	Texts []struct {
		Start    float64 `xml:"start,attr"`
		Duration float64 `xml:"dur,attr"`
		Body     string  `xml:",chardata"`
	} `xml:"text"`
}

// Fetch returns the full caption text for a video, or an error when
// captions are disabled or absent.
func (f *CaptionFetcher) Fetch(ctx context.Context, videoID string) (Transcript, error) {
	q := url.Values{}
	q.Set("lang", "en")
	q.Set("v", videoID)

	body, err := f.http.Get(ctx, timedTextURL+"?"+q.Encode(), nil)
	if err != nil {
		return Transcript{}, fmt.Errorf("caption fetch: %w", err)
	}
	if len(body) == 0 {
		return Transcript{}, fmt.Errorf("no transcript found for video %s", videoID)
	}

	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return Transcript{}, fmt.Errorf("caption parse: %w", err)
	}
	if len(doc.Texts) == 0 {
		return Transcript{}, fmt.Errorf("transcripts disabled or empty for video %s", videoID)
	}

	parts := make([]string, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		s := strings.TrimSpace(html.UnescapeString(t.Body))
		if s != "" {
			parts = append(parts, s)
		}
	}

	last := doc.Texts[len(doc.Texts)-1]
	return Transcript{
		Text:         strings.Join(parts, " "),
		Duration:     last.Start + last.Duration,
		Language:     "en",
		SegmentCount: len(doc.Texts),
	}, nil
}
