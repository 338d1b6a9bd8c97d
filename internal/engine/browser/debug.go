package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod/lib/proto"
)

// debugJS takes a full diagnostic snapshot of the player page: every
// transcript/caption-adjacent element, text tracks, iframes, CC buttons,
// and caption URLs mined from inline player config.
const debugJS = `() => {
	const snap = {
		elements: [], text_tracks: [], iframes: [],
		transcript_buttons: [], captions_buttons: [],
		player_config: { entryId: null, mediaId: null, captionUrls: [] }
	};

	const els = document.querySelectorAll(
		'button, a, div[role="button"], [aria-label], [aria-controls], ' +
		'[class*="transcript"], [class*="caption"], [id*="transcript"], [id*="caption"]'
	);
	els.forEach(el => {
		const tag = el.tagName.toUpperCase();
		if (tag === 'STYLE' || tag === 'SCRIPT' || tag === 'NOSCRIPT') return;
		const text = (el.textContent || '').toLowerCase();
		const aria = (el.getAttribute('aria-label') || '').toLowerCase();
		const cls  = (typeof el.className === 'string' ? el.className : '').toLowerCase();
		const id   = (el.id || '').toLowerCase();
		if (text.includes('transcript') || text.includes('captions') || text.includes('subtitle') ||
			aria.includes('transcript') || aria.includes('caption') || aria.includes('cc') ||
			cls.includes('transcript') || cls.includes('caption') ||
			id.includes('transcript') || id.includes('caption')) {
			const rect = el.getBoundingClientRect();
			snap.elements.push({
				tag: el.tagName, id: el.id || null,
				text: el.textContent?.trim().substring(0, 100),
				aria_label: el.getAttribute('aria-label'),
				visible: rect.width > 0 && rect.height > 0,
			});
			if (text.includes('transcript') || aria.includes('transcript'))
				snap.transcript_buttons.push({ tag: el.tagName, text: el.textContent?.trim().substring(0, 50) });
			else
				snap.captions_buttons.push({ tag: el.tagName, text: el.textContent?.trim().substring(0, 50) });
		}
	});

	document.querySelectorAll('track[kind="subtitles"], track[kind="captions"]').forEach(t => {
		snap.text_tracks.push({ kind: t.kind, src: t.src, srclang: t.srclang, label: t.label });
	});
	document.querySelectorAll('iframe').forEach(f => {
		snap.iframes.push({ src: f.src, title: f.title });
	});

	for (const s of document.querySelectorAll('script')) {
		const c = s.textContent || '';
		const em = c.match(/entryId["']?\s*:\s*["']?([a-z0-9_]+)/i);
		if (em) snap.player_config.entryId = em[1];
		const mm = c.match(/mediaId["']?\s*:\s*["']?([a-z0-9_]+)/i);
		if (mm) snap.player_config.mediaId = mm[1];
		snap.player_config.captionUrls.push(
			...(c.match(/https?:[^"'\s]+\.(?:vtt|srt)[^"'\s]*/gi) || []),
			...(c.match(/https?:[^"'\s]*(?:caption|transcript|subtitle)[^"'\s]*/gi) || [])
		);
	}
	snap.player_config.captionUrls = [...new Set(snap.player_config.captionUrls)];

	return JSON.stringify(snap);
}`

// ResponseInfo is one observed network response during a debug run.
type ResponseInfo struct {
	URL    string `json:"url"`
	Status int    `json:"status"`
	Type   string `json:"content_type"`
}

// DebugElement is one transcript/caption-adjacent DOM element.
type DebugElement struct {
	Tag       string `json:"tag"`
	ID        string `json:"id"`
	Text      string `json:"text"`
	AriaLabel string `json:"aria_label"`
	Visible   bool   `json:"visible"`
}

// DebugButton is a clickable transcript/CC control.
type DebugButton struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

// DebugTrack mirrors a subtitle <track> element.
type DebugTrack struct {
	Kind    string `json:"kind"`
	Src     string `json:"src"`
	SrcLang string `json:"srclang"`
	Label   string `json:"label"`
}

// DebugIframe mirrors an embedded iframe.
type DebugIframe struct {
	Src   string `json:"src"`
	Title string `json:"title"`
}

// PlayerConfig is caption-related data mined from inline scripts.
type PlayerConfig struct {
	EntryID     string   `json:"entryId"`
	MediaID     string   `json:"mediaId"`
	CaptionURLs []string `json:"captionUrls"`
}

// DebugSnapshot is the full diagnostic picture of one video page. It
// answers "why can't this video's transcript be extracted".
type DebugSnapshot struct {
	Title             string                    `json:"title"`
	SourceURL         string                    `json:"source_url"`
	FinalURL          string                    `json:"final_url"`
	PageTitle         string                    `json:"page_title"`
	Elements          []DebugElement            `json:"elements"`
	NetworkURLs       map[string][]ResponseInfo `json:"network_urls"`
	TextTracks        []DebugTrack              `json:"text_tracks"`
	Iframes           []DebugIframe             `json:"iframes"`
	TranscriptButtons []DebugButton             `json:"transcript_buttons"`
	CaptionsButtons   []DebugButton             `json:"captions_buttons"`
	PlayerConfig      *PlayerConfig             `json:"player_config"`
	SuggestedActions  []string                  `json:"suggested_actions"`
	Error             string                    `json:"error,omitempty"`
}

// responseRecorder accumulates every response the page produces. The
// event loop ends when the page closes.
type responseRecorder struct {
	mu        sync.Mutex
	responses []ResponseInfo
}

// recordResponses starts observing all network responses on the page.
func recordResponses(page *Page) *responseRecorder {
	rec := &responseRecorder{}
	wait := page.p.EachEvent(func(e *proto.NetworkResponseReceived) {
		rec.mu.Lock()
		rec.responses = append(rec.responses, ResponseInfo{
			URL:    e.Response.URL,
			Status: e.Response.Status,
			Type:   e.Response.MIMEType,
		})
		rec.mu.Unlock()
	})
	go wait()
	return rec
}

func (r *responseRecorder) snapshot() []ResponseInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ResponseInfo, len(r.responses))
	copy(out, r.responses)
	return out
}

// Inspect navigates to a video page and returns a diagnostic snapshot.
func (s *Session) Inspect(ctx context.Context, title, href string) *DebugSnapshot {
	snap := &DebugSnapshot{
		Title:       title,
		SourceURL:   href,
		NetworkURLs: map[string][]ResponseInfo{},
	}

	page, err := s.NewPage()
	if err != nil {
		snap.Error = err.Error()
		return snap
	}
	defer page.Close()

	rec := recordResponses(page)

	if err := page.Navigate(ctx, href); err != nil {
		snap.Error = err.Error()
		return snap
	}
	// let the player initialise before snapshotting
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}

	snap.FinalURL = page.URL()
	snap.PageTitle = page.Title()

	raw, err := page.EvalString(ctx, debugJS)
	if err != nil {
		snap.Error = err.Error()
		return snap
	}
	var dom struct {
		Elements          []DebugElement `json:"elements"`
		TextTracks        []DebugTrack   `json:"text_tracks"`
		Iframes           []DebugIframe  `json:"iframes"`
		TranscriptButtons []DebugButton  `json:"transcript_buttons"`
		CaptionsButtons   []DebugButton  `json:"captions_buttons"`
		PlayerConfig      *PlayerConfig  `json:"player_config"`
	}
	if err := json.Unmarshal([]byte(raw), &dom); err != nil {
		snap.Error = fmt.Sprintf("decode debug snapshot: %v", err)
		return snap
	}
	snap.Elements = dom.Elements
	snap.TextTracks = dom.TextTracks
	snap.Iframes = dom.Iframes
	snap.TranscriptButtons = dom.TranscriptButtons
	snap.CaptionsButtons = dom.CaptionsButtons
	snap.PlayerConfig = dom.PlayerConfig

	snap.NetworkURLs = BucketResponses(rec.snapshot())
	snap.SuggestedActions = suggestActions(snap)
	return snap
}

// BucketResponses groups observed responses by caption-related keyword.
func BucketResponses(responses []ResponseInfo) map[string][]ResponseInfo {
	buckets := map[string][]ResponseInfo{}
	for _, r := range responses {
		lower := strings.ToLower(r.URL)
		for _, key := range []string{"vtt", "srt", "caption", "transcript", "kaltura"} {
			if strings.Contains(lower, "."+key) || strings.Contains(lower, key) {
				buckets[key] = append(buckets[key], r)
			}
		}
	}
	return buckets
}

func suggestActions(snap *DebugSnapshot) []string {
	var actions []string
	if len(snap.TextTracks) > 0 || len(snap.TranscriptButtons) > 0 ||
		len(snap.CaptionsButtons) > 0 || len(snap.Elements) > 0 {
		actions = append(actions, "Transcript/caption UI elements found — may need to click a button first")
	}
	if len(snap.NetworkURLs["vtt"]) > 0 || len(snap.NetworkURLs["caption"]) > 0 {
		actions = append(actions, "Caption URLs in network traffic — can fetch directly")
	}
	if snap.PlayerConfig != nil && len(snap.PlayerConfig.CaptionURLs) > 0 {
		actions = append(actions, "Caption/VTT URLs in page scripts — check player_config.captionUrls")
	}
	if len(actions) == 0 {
		actions = append(actions, "No transcript/caption sources detected — video likely has no captions")
	}
	return actions
}
