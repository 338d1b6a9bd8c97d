package browser

import (
	"context"
	"encoding/json"
	"fmt"
)

// metadataJS mines the page for basic video metadata. The provider entry
// id lives in inline player-bootstrap scripts, not in the DOM proper.
const metadataJS = `() => {
	const data = { title: null, duration: null, entry_id: null };

	const titleEl = document.querySelector('h1, h2, [class*="title"], [itemprop="name"]');
	if (titleEl) data.title = titleEl.textContent?.trim();

	const og = document.querySelector('meta[property="og:title"]');
	if (og) data.title = og.content || data.title;

	for (const script of document.querySelectorAll('script')) {
		const c = script.textContent || '';
		const m = c.match(/entryId["']?\s*:\s*["']?([a-z0-9_]+)/i);
		if (m) { data.entry_id = m[1]; break; }
	}

	const dur = document.querySelector('[class*="duration"], [class*="time"]');
	if (dur) data.duration = dur.textContent?.trim();

	return JSON.stringify(data);
}`

// Metadata is what the page itself knows about the embedded video.
type Metadata struct {
	Title    string `json:"title"`
	Duration string `json:"duration"`
	EntryID  string `json:"entry_id"`
}

// Metadata extracts title, duration, and the provider entry id.
func (p *Page) Metadata(ctx context.Context) (*Metadata, error) {
	raw, err := p.EvalString(ctx, metadataJS)
	if err != nil {
		return nil, fmt.Errorf("metadata extraction: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if meta.EntryID == "null" {
		meta.EntryID = ""
	}
	return &meta, nil
}
