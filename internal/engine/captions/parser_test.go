package captions

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "vtt basic",
			doc: "WEBVTT\n\n00:00:01.000 --> 00:00:04.000\nWelcome to the lecture.\n\n" +
				"00:00:04.000 --> 00:00:08.000\nToday we cover graphs.",
			want: "Welcome to the lecture. Today we cover graphs.",
		},
		{
			name: "srt with numeric indexes",
			doc: "1\n00:00:01,000 --> 00:00:04,000\nFirst line.\n\n" +
				"2\n00:00:04,000 --> 00:00:08,000\nSecond line.",
			want: "First line. Second line.",
		},
		{
			name: "multi line cue joined with spaces",
			doc:  "WEBVTT\n\n00:01.000 --> 00:04.000\nline one\nline two\nline three",
			want: "line one line two line three",
		},
		{
			name: "note blocks dropped",
			doc:  "WEBVTT\nNOTE this is metadata\n\n00:00:01.000 --> 00:00:02.000\nhello",
			want: "hello",
		},
		{
			name: "bare short timestamp opens cue",
			doc:  "02:15\nspoken words here",
			want: "spoken words here",
		},
		{
			name: "bare long timestamp opens cue",
			doc:  "00:02:15\nmore spoken words",
			want: "more spoken words",
		},
		{
			name: "blank line closes cue",
			doc:  "00:01 --> 00:02\ninside cue\n\norphan line outside any cue",
			want: "inside cue",
		},
		{
			name: "text before any cue ignored",
			doc:  "stray preamble\n00:00:01 --> 00:00:02\nkept",
			want: "kept",
		},
		{
			name: "empty input",
			doc:  "",
			want: "",
		},
		{
			name: "header only",
			doc:  "WEBVTT\n\n",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.doc)
			if got != tt.want {
				t.Errorf("Parse() = %q, want %q", got, tt.want)
			}
		})
	}
}
