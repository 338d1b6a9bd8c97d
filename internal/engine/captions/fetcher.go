package captions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"canvas-transcriber/internal/engine"
)

// Origin identifies which extraction strategy produced a candidate.
const (
	OriginNetworkAPI     = "network_api"
	OriginNetworkAPILate = "network_api_late"
	OriginDomUI          = "dom_ui"
	OriginVTTTrack       = "vtt_track"
)

// Getter performs one timeout-bounded HTTP GET and returns the body text
// and status code. Wired to the stealth client in production; stubbed in
// tests.
type Getter func(ctx context.Context, url string) (body string, status int, err error)

// FetchResult is the fetcher's contribution to an extraction outcome.
// Errors holds one entry per rejected or unreachable URL, in try order.
type FetchResult struct {
	Found             bool
	Text              string
	SourceType        string
	CandidateSource   string
	CandidateSelector string
	ValidationPassed  bool
	RejectionReason   string
	Errors            []string
}

// Fetcher resolves candidate caption-serving URLs to validated transcripts.
type Fetcher struct {
	get Getter
}

func NewFetcher(get Getter) *Fetcher {
	return &Fetcher{get: get}
}

// FetchFirstValid tries each URL in order and stops at the first whose
// parsed text passes validation. Transport failures and validation
// rejections are recorded and the next URL is tried; no URL is retried.
func (f *Fetcher) FetchFirstValid(ctx context.Context, urls []string, origin string) FetchResult {
	res := FetchResult{}
	label := originLabel(origin)

	for _, serveURL := range urls {
		engine.IncrCaptionFetches()

		body, status, err := f.get(ctx, serveURL)
		if err != nil {
			engine.IncrCaptionFetchErrors()
			res.Errors = append(res.Errors, fmt.Sprintf("%s fetch error: %v", label, err))
			continue
		}
		if status != 200 || strings.TrimSpace(body) == "" {
			engine.IncrCaptionFetchErrors()
			res.Errors = append(res.Errors, fmt.Sprintf("%s serve HTTP %d", label, status))
			continue
		}

		text := Parse(body)
		verdict := Validate(text)

		res.CandidateSource = origin
		res.CandidateSelector = serveURL
		res.ValidationPassed = verdict.Valid
		res.RejectionReason = verdict.Reason

		if verdict.Valid {
			res.Found = true
			res.Text = text
			res.SourceType = origin
			slog.Debug("caption fetch succeeded",
				slog.String("origin", origin),
				slog.Int("chars", len(text)),
			)
			return res
		}

		engine.IncrValidationRejections()
		res.Errors = append(res.Errors, fmt.Sprintf("%s caption rejected: %s", label, verdict.Reason))
	}
	return res
}

// originLabel renders an origin constant for human-readable error entries.
func originLabel(origin string) string {
	switch origin {
	case OriginNetworkAPILate:
		return "late API"
	case OriginVTTTrack:
		return "VTT track"
	default:
		return "API"
	}
}
