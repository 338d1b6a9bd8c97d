package pipeline

import (
	"encoding/json"
	"strings"
	"testing"

	"canvas-transcriber/internal/engine/captions"
)

func TestApplyFetch_PartialFailureKeepsErrorTrail(t *testing.T) {
	out := &Outcome{Errors: []string{}}
	out.applyFetch(captions.FetchResult{
		Found:             true,
		Text:              "spoken words",
		SourceType:        captions.OriginNetworkAPI,
		CandidateSource:   captions.OriginNetworkAPI,
		CandidateSelector: "https://cdn/serve/2",
		ValidationPassed:  true,
		Errors:            []string{"API serve HTTP 403"},
	})

	if !out.TranscriptFound || out.TranscriptText != "spoken words" {
		t.Fatalf("fetch result not applied: %+v", out)
	}
	if len(out.Errors) != 1 || out.Errors[0] != "API serve HTTP 403" {
		t.Errorf("Errors = %v, want the per-URL trail", out.Errors)
	}
	if out.CandidateSelector != "https://cdn/serve/2" {
		t.Errorf("CandidateSelector = %q", out.CandidateSelector)
	}
}

func TestApplyFetch_NoCandidateLeavesFieldsUntouched(t *testing.T) {
	out := &Outcome{
		CandidateSource:   captions.OriginDomUI,
		CandidateSelector: ".transcript-line",
		Errors:            []string{},
	}
	// all URLs failed at transport level: no candidate was ever parsed
	out.applyFetch(captions.FetchResult{
		Errors: []string{"late API fetch error: timeout"},
	})

	if out.CandidateSource != captions.OriginDomUI || out.CandidateSelector != ".transcript-line" {
		t.Errorf("earlier candidate fields overwritten: %+v", out)
	}
	if len(out.Errors) != 1 {
		t.Errorf("Errors = %v", out.Errors)
	}
}

func TestBuildSummary(t *testing.T) {
	outcomes := []*Outcome{
		{Title: "A", TranscriptFound: true, TranscriptText: "full body A", Errors: []string{}},
		{Title: "B", Errors: []string{"No transcript found in DOM"}},
		{Title: "C", TranscriptFound: true, TranscriptText: "full body C", Errors: []string{}},
	}

	s := BuildSummary(outcomes)

	if s.TotalVideos != 3 || s.TranscriptsFound != 2 {
		t.Fatalf("counts = %d/%d, want 3/2", s.TotalVideos, s.TranscriptsFound)
	}
	for i, v := range s.Videos {
		if v.TranscriptText != "" {
			t.Errorf("video[%d] still carries transcript text", i)
		}
	}
	if !outcomes[0].TranscriptFound || outcomes[0].TranscriptText != "full body A" {
		t.Error("source outcomes must not be mutated")
	}
}

func TestOutcomeJSONShape(t *testing.T) {
	out := Outcome{
		Title:     "Lecture 1",
		SourceURL: "https://example.com/v",
		Provider:  "kaltura",
		LinkType:  "anchor",
		Errors:    []string{},
	}
	data, err := json.Marshal(out)
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)

	for _, key := range []string{`"source_url"`, `"transcript_found"`, `"transcript_validation_passed"`, `"errors":[]`} {
		if !strings.Contains(body, key) {
			t.Errorf("marshaled outcome missing %s: %s", key, body)
		}
	}
	for _, absent := range []string{`"transcript_text"`, `"rejection_reason"`, `"module_name"`} {
		if strings.Contains(body, absent) {
			t.Errorf("empty field %s should be omitted: %s", absent, body)
		}
	}
}
