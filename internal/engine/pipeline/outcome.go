// Package pipeline sequences the extraction strategies for one video into
// a deterministic chain and folds every attempt into a single outcome
// record. Strategy order per video: network API, DOM fallback, late API
// retry. Videos are processed strictly one at a time.
package pipeline

import (
	"fmt"

	"canvas-transcriber/internal/engine/captions"
)

// Outcome is the result record for one video link. Invariant: when
// TranscriptFound is true, TranscriptText is non-empty and
// ValidationPassed is true. Errors preserves every rejected candidate
// across all attempted strategies, chronologically.
type Outcome struct {
	Title                string   `json:"title"`
	SourceURL            string   `json:"source_url"`
	Provider             string   `json:"provider"`
	ModuleName           string   `json:"module_name,omitempty"`
	LinkType             string   `json:"link_type"`
	TranscriptFound      bool     `json:"transcript_found"`
	TranscriptSourceType string   `json:"transcript_source_type,omitempty"`
	CandidateSource      string   `json:"transcript_candidate_source,omitempty"`
	CandidateSelector    string   `json:"transcript_candidate_selector,omitempty"`
	ValidationPassed     bool     `json:"transcript_validation_passed"`
	RejectionReason      string   `json:"rejection_reason,omitempty"`
	TranscriptText       string   `json:"transcript_text,omitempty"`
	ProviderEntryID      string   `json:"provider_entry_id,omitempty"`
	Errors               []string `json:"errors"`

	// Populated by the output writer, not the pipeline.
	TranscriptPath    string `json:"transcript_path,omitempty"`
	TranscriptPreview string `json:"transcript_preview,omitempty"`
}

// AddError appends one diagnostic entry to the audit trail.
func (o *Outcome) AddError(format string, args ...any) {
	o.Errors = append(o.Errors, fmt.Sprintf(format, args...))
}

// applyFetch folds a fetcher pass into the outcome. The fetcher's
// per-URL errors are appended even when a later URL succeeded.
func (o *Outcome) applyFetch(res captions.FetchResult) {
	o.Errors = append(o.Errors, res.Errors...)
	if res.CandidateSelector != "" {
		o.CandidateSource = res.CandidateSource
		o.CandidateSelector = res.CandidateSelector
		o.ValidationPassed = res.ValidationPassed
		o.RejectionReason = res.RejectionReason
	}
	if res.Found {
		o.TranscriptFound = true
		o.TranscriptSourceType = res.SourceType
		o.TranscriptText = res.Text
	}
}

// StripText returns a copy suitable for metadata archiving: the full
// transcript body removed, everything else intact.
func (o Outcome) StripText() Outcome {
	o.TranscriptText = ""
	return o
}

// Summary is the batch-level report: one entry per input link, in input
// order, with transcript bodies stripped.
type Summary struct {
	TotalVideos      int       `json:"total_videos"`
	TranscriptsFound int       `json:"transcripts_found"`
	Videos           []Outcome `json:"videos"`
}

// BuildSummary assembles the batch report from finalized outcomes.
func BuildSummary(outcomes []*Outcome) *Summary {
	s := &Summary{TotalVideos: len(outcomes)}
	for _, o := range outcomes {
		if o.TranscriptFound {
			s.TranscriptsFound++
		}
		s.Videos = append(s.Videos, o.StripText())
	}
	return s
}
