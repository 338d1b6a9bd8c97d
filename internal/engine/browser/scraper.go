package browser

import (
	"context"
	"encoding/json"
	"fmt"
)

// scrapeJS inspects the rendered player page in three tiers: visible
// transcript/caption panels first, then subtitle <track> elements, then
// clickable transcript/CC controls (diagnostic only). First hit wins.
const scrapeJS = `() => {
	const out = { transcript: null, source: null, selector: null, vttUrl: null };

	const selectors = [
		'[class*="transcript"]', '[id*="transcript"]',
		'[class*="caption"]',
		'[role="tabpanel"]:not([aria-hidden="true"])',
		'[aria-label*="transcript"]', '[aria-label*="caption"]',
		'[data-testid*="transcript"]',
		'.kaltura-transcript', '.transcript-panel', '.captions-panel'
	];

	for (const sel of selectors) {
		for (const el of document.querySelectorAll(sel)) {
			const rect = el.getBoundingClientRect();
			if (rect.width > 0 && rect.height > 0) {
				const tag = el.tagName.toLowerCase();
				if (tag === 'script' || tag === 'style' || tag === 'noscript') continue;
				const text = el.textContent?.trim();
				if (text && text.length > 50 && text.length < 50000) {
					out.transcript = text;
					out.source = 'ui_panel';
					out.selector = sel;
					return JSON.stringify(out);
				}
			}
		}
	}

	const tracks = document.querySelectorAll('track[kind="subtitles"], track[kind="captions"]');
	if (tracks.length > 0) {
		out.vttUrl = tracks[0].src;
		out.source = 'vtt_track';
		out.selector = 'track[kind="subtitles"]';
		return JSON.stringify(out);
	}

	for (const btn of document.querySelectorAll('button, a, div[role="button"]')) {
		const t = (btn.textContent || '').toLowerCase();
		if (t.includes('transcript') || t.includes('cc') ||
			t.includes('captions') || t.includes('subtitle')) {
			const rect = btn.getBoundingClientRect();
			if (rect.width > 0 && rect.height > 0) {
				out.source = 'ui_button_found';
				out.selector = btn.tagName + (btn.className ? '.' + btn.className.split(' ').join('.') : '');
				return JSON.stringify(out);
			}
		}
	}

	return JSON.stringify(out);
}`

// ScrapeResult is the outcome of one DOM inspection pass. Exactly one of
// Transcript / VTTUrl is populated on a usable hit; Source "ui_button_found"
// carries no payload and only signals that manual interaction may be needed.
type ScrapeResult struct {
	Transcript string `json:"transcript"`
	Source     string `json:"source"`
	Selector   string `json:"selector"`
	VTTUrl     string `json:"vttUrl"`
}

// Empty reports whether no tier matched anything.
func (r *ScrapeResult) Empty() bool {
	return r.Transcript == "" && r.VTTUrl == "" && r.Source == ""
}

// Scrape runs the tiered DOM inspection against the live page.
func (p *Page) Scrape(ctx context.Context) (*ScrapeResult, error) {
	raw, err := p.EvalString(ctx, scrapeJS)
	if err != nil {
		return nil, fmt.Errorf("DOM extraction error: %w", err)
	}
	return ParseScrapeResult(raw)
}

// ParseScrapeResult decodes the JSON produced by the inspection script.
func ParseScrapeResult(raw string) (*ScrapeResult, error) {
	var res ScrapeResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, fmt.Errorf("decode scrape result: %w", err)
	}
	return &res, nil
}
