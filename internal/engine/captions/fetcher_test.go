package captions

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const validVTT = "WEBVTT\n\n00:00:01.000 --> 00:00:05.000\n" +
	"Welcome everyone to this week's lecture where we will be talking\n\n" +
	"00:00:05.000 --> 00:00:09.000\n" +
	"about shortest path algorithms on directed weighted graphs."

func stubGetter(responses map[string]func() (string, int, error)) Getter {
	return func(_ context.Context, url string) (string, int, error) {
		fn, ok := responses[url]
		if !ok {
			return "", 0, errors.New("unexpected url " + url)
		}
		return fn()
	}
}

func TestFetchFirstValid_SkipsFailuresUntilValid(t *testing.T) {
	f := NewFetcher(stubGetter(map[string]func() (string, int, error){
		"https://cdn/a": func() (string, int, error) { return "", 0, errors.New("connection reset") },
		"https://cdn/b": func() (string, int, error) { return "not found", 404, nil },
		"https://cdn/c": func() (string, int, error) { return validVTT, 200, nil },
	}))

	res := f.FetchFirstValid(context.Background(),
		[]string{"https://cdn/a", "https://cdn/b", "https://cdn/c"}, OriginNetworkAPI)

	if !res.Found {
		t.Fatalf("Found = false, errors: %v", res.Errors)
	}
	if res.SourceType != OriginNetworkAPI {
		t.Errorf("SourceType = %q, want %q", res.SourceType, OriginNetworkAPI)
	}
	if res.CandidateSelector != "https://cdn/c" {
		t.Errorf("CandidateSelector = %q, want the third url", res.CandidateSelector)
	}
	if !res.ValidationPassed {
		t.Error("ValidationPassed = false")
	}
	if len(res.Errors) != 2 {
		t.Errorf("len(Errors) = %d, want 2: %v", len(res.Errors), res.Errors)
	}
	if !strings.Contains(res.Text, "shortest path algorithms") {
		t.Errorf("Text = %q, missing cue content", res.Text)
	}
}

func TestFetchFirstValid_RejectedCandidateRecorded(t *testing.T) {
	css := "body { color: red } .nav { display: none } " + strings.Repeat("x; ", 30)
	f := NewFetcher(stubGetter(map[string]func() (string, int, error){
		"https://cdn/css": func() (string, int, error) { return "00:01 --> 00:02\n" + css, 200, nil },
	}))

	res := f.FetchFirstValid(context.Background(), []string{"https://cdn/css"}, OriginDomUI)

	if res.Found {
		t.Fatal("Found = true for stylesheet payload")
	}
	if res.ValidationPassed {
		t.Error("ValidationPassed = true for rejected candidate")
	}
	if res.RejectionReason == "" {
		t.Error("RejectionReason is empty")
	}
	if res.CandidateSelector != "https://cdn/css" {
		t.Errorf("CandidateSelector = %q, want the tried url", res.CandidateSelector)
	}
	if len(res.Errors) != 1 {
		t.Errorf("len(Errors) = %d, want 1: %v", len(res.Errors), res.Errors)
	}
}

func TestFetchFirstValid_StopsAtFirstValid(t *testing.T) {
	calls := 0
	f := NewFetcher(func(_ context.Context, url string) (string, int, error) {
		calls++
		return validVTT, 200, nil
	})

	res := f.FetchFirstValid(context.Background(),
		[]string{"https://cdn/a", "https://cdn/b"}, OriginNetworkAPILate)

	if !res.Found {
		t.Fatal("Found = false")
	}
	if calls != 1 {
		t.Errorf("getter called %d times, want 1", calls)
	}
	if res.SourceType != OriginNetworkAPILate {
		t.Errorf("SourceType = %q, want %q", res.SourceType, OriginNetworkAPILate)
	}
}

func TestFetchFirstValid_EmptyBodyIsError(t *testing.T) {
	f := NewFetcher(stubGetter(map[string]func() (string, int, error){
		"https://cdn/empty": func() (string, int, error) { return "   \n ", 200, nil },
	}))

	res := f.FetchFirstValid(context.Background(), []string{"https://cdn/empty"}, OriginVTTTrack)

	if res.Found {
		t.Fatal("Found = true for empty body")
	}
	if len(res.Errors) != 1 {
		t.Fatalf("len(Errors) = %d, want 1", len(res.Errors))
	}
	if !strings.Contains(res.Errors[0], "VTT track") {
		t.Errorf("error entry %q should carry the origin label", res.Errors[0])
	}
}

func TestFetchFirstValid_NoURLs(t *testing.T) {
	f := NewFetcher(func(_ context.Context, _ string) (string, int, error) {
		t.Fatal("getter should not be called")
		return "", 0, nil
	})

	res := f.FetchFirstValid(context.Background(), nil, OriginNetworkAPI)
	if res.Found || len(res.Errors) != 0 || res.CandidateSelector != "" {
		t.Errorf("zero-url result not empty: %+v", res)
	}
}
