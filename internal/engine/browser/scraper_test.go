package browser

import "testing"

func TestParseScrapeResult(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    ScrapeResult
		empty   bool
		wantErr bool
	}{
		{
			name: "panel hit",
			raw:  `{"transcript":"hello world","source":"transcript_panel","selector":".transcript-line","vttUrl":""}`,
			want: ScrapeResult{Transcript: "hello world", Source: "transcript_panel", Selector: ".transcript-line"},
		},
		{
			name: "vtt track hit",
			raw:  `{"transcript":"","source":"track_element","selector":"track[kind=captions]","vttUrl":"https://cdn/l.vtt"}`,
			want: ScrapeResult{Source: "track_element", Selector: "track[kind=captions]", VTTUrl: "https://cdn/l.vtt"},
		},
		{
			name: "button only",
			raw:  `{"transcript":"","source":"ui_button_found","selector":"button[aria-label*=transcript]","vttUrl":""}`,
			want: ScrapeResult{Source: "ui_button_found", Selector: "button[aria-label*=transcript]"},
		},
		{
			name:  "nothing found",
			raw:   `{"transcript":"","source":"","selector":"","vttUrl":""}`,
			empty: true,
		},
		{
			name:    "malformed json",
			raw:     `not json`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScrapeResult(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if *got != tt.want {
				t.Errorf("result = %+v, want %+v", *got, tt.want)
			}
			if got.Empty() != tt.empty {
				t.Errorf("Empty() = %v, want %v", got.Empty(), tt.empty)
			}
		})
	}
}

func TestNeedsLogin(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://canvas.example.edu/login/saml", true},
		{"https://sso.example.edu/idp/profile", true},
		{"https://auth.example.edu/LOGIN?service=canvas", true},
		{"https://canvas.example.edu/courses/101", false},
		{"https://canvas.example.edu/", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := NeedsLogin(tt.url); got != tt.want {
				t.Errorf("NeedsLogin(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}
