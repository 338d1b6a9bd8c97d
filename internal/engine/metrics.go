package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	VideosProcessed      atomic.Int64
	TranscriptsFound     atomic.Int64
	CaptionFetches       atomic.Int64
	CaptionFetchErrors   atomic.Int64
	ValidationRejections atomic.Int64
	NetworkCaptures      atomic.Int64
	DomFallbacks         atomic.Int64
	LateRetries          atomic.Int64
	PagesCrawled         atomic.Int64
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"videos_processed":      metrics.VideosProcessed.Load(),
		"transcripts_found":     metrics.TranscriptsFound.Load(),
		"caption_fetches":       metrics.CaptionFetches.Load(),
		"caption_fetch_errors":  metrics.CaptionFetchErrors.Load(),
		"validation_rejections": metrics.ValidationRejections.Load(),
		"network_captures":      metrics.NetworkCaptures.Load(),
		"dom_fallbacks":         metrics.DomFallbacks.Load(),
		"late_retries":          metrics.LateRetries.Load(),
		"pages_crawled":         metrics.PagesCrawled.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for the HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"videos_processed", "transcripts_found",
		"caption_fetches", "caption_fetch_errors",
		"validation_rejections", "network_captures",
		"dom_fallbacks", "late_retries",
		"pages_crawled",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sub-packages.
func IncrVideosProcessed()      { metrics.VideosProcessed.Add(1) }
func IncrTranscriptsFound()     { metrics.TranscriptsFound.Add(1) }
func IncrCaptionFetches()       { metrics.CaptionFetches.Add(1) }
func IncrCaptionFetchErrors()   { metrics.CaptionFetchErrors.Add(1) }
func IncrValidationRejections() { metrics.ValidationRejections.Add(1) }
func IncrNetworkCaptures()      { metrics.NetworkCaptures.Add(1) }
func IncrDomFallbacks()         { metrics.DomFallbacks.Add(1) }
func IncrLateRetries()          { metrics.LateRetries.Add(1) }
func IncrPagesCrawled()         { metrics.PagesCrawled.Add(1) }
