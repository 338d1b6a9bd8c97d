package browser

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"canvas-transcriber/internal/engine"
)

// Markers a response URL must carry (case-insensitive) to be treated as a
// caption-API response worth decoding.
const (
	captionAssetMarker = "caption_captionasset"
	getURLMarker       = "geturl"
)

// hijackClient fetches hijacked caption-API responses. Bounded so a stalled
// caption endpoint cannot hold the page's request in flight indefinitely.
var hijackClient = &http.Client{Timeout: 15 * time.Second}

// SignalCollector passively observes one page's responses and accumulates
// signed caption-serving URLs in first-seen order. It never blocks the
// page load; malformed bodies are ignored silently.
type SignalCollector struct {
	mu     sync.Mutex
	urls   []string
	router *rod.HijackRouter
}

// StartCollector attaches a network observer to the page. Must be called
// before navigation so player-initialization traffic is not missed.
func StartCollector(page *Page) (*SignalCollector, error) {
	c := &SignalCollector{}
	router := page.p.HijackRequests()

	err := router.Add("*", "", func(h *rod.Hijack) {
		reqURL := h.Request.URL().String()
		if !IsCaptionAPIURL(reqURL) {
			h.ContinueRequest(&proto.FetchContinueRequest{})
			return
		}
		if err := h.LoadResponse(hijackClient, true); err != nil {
			slog.Debug("caption response load failed", slog.Any("error", err))
			// let the browser fetch it itself rather than serving an
			// empty hijacked response
			h.ContinueRequest(&proto.FetchContinueRequest{})
			return
		}
		captured := CaptionServeURLs(h.Response.Body())
		if len(captured) == 0 {
			return
		}
		c.mu.Lock()
		c.urls = append(c.urls, captured...)
		c.mu.Unlock()
		engine.IncrNetworkCaptures()
		slog.Debug("caption serve URL intercepted", slog.Int("count", len(captured)))
	})
	if err != nil {
		return nil, err
	}

	c.router = router
	go router.Run()
	return c, nil
}

// Stop detaches the observer.
func (c *SignalCollector) Stop() {
	if c.router != nil {
		if err := c.router.Stop(); err != nil {
			slog.Debug("collector stop", slog.Any("error", err))
		}
	}
}

// URLs returns a snapshot of the collected serving URLs in capture order.
func (c *SignalCollector) URLs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.urls))
	copy(out, c.urls)
	return out
}

// Wait polls until at least one URL has been collected or timeout elapses.
// Returns true when a URL arrived in time. Timing out is a normal "no
// signal yet" outcome, not an error.
func (c *SignalCollector) Wait(ctx context.Context, timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if len(c.URLs()) > 0 {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
	return len(c.URLs()) > 0
}

// IsCaptionAPIURL reports whether a response URL carries both the
// caption-asset namespace marker and the URL-retrieval action marker.
func IsCaptionAPIURL(u string) bool {
	lower := strings.ToLower(u)
	return strings.Contains(lower, captionAssetMarker) && strings.Contains(lower, getURLMarker)
}

// CaptionServeURLs decodes a caption-API response body. The body is
// expected to be a JSON array; every string element longer than 10
// characters is a candidate serving URL. Anything else yields nil.
func CaptionServeURLs(body string) []string {
	var arr []any
	if err := json.Unmarshal([]byte(body), &arr); err != nil {
		return nil
	}
	var out []string
	for _, item := range arr {
		if s, ok := item.(string); ok && len(s) > 10 {
			out = append(out, s)
		}
	}
	return out
}
