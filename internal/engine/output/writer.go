// Package output persists extraction results: transcript text files laid
// out per module, and a metadata JSON with transcript bodies stripped.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"canvas-transcriber/internal/engine"
	"canvas-transcriber/internal/engine/pipeline"
)

// Writer persists one batch's artifacts under a root directory.
type Writer struct {
	root string
}

func NewWriter(root string) *Writer {
	return &Writer{root: root}
}

// WriteTranscript saves the outcome's transcript text. Files land in a
// per-module subdirectory when a module name is known; name collisions get
// a numeric suffix. The outcome's TranscriptPath and TranscriptPreview are
// populated in place.
func (w *Writer) WriteTranscript(out *pipeline.Outcome) error {
	if !out.TranscriptFound || out.TranscriptText == "" {
		return nil
	}

	dir := w.root
	if out.ModuleName != "" {
		if sub := engine.SafeDirName(out.ModuleName); sub != "" {
			dir = filepath.Join(w.root, sub)
		}
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}

	stem := engine.SanitizeFilename(out.Title)
	path := filepath.Join(dir, stem+".txt")
	for counter := 1; fileExists(path); counter++ {
		path = filepath.Join(dir, fmt.Sprintf("%s_%d.txt", stem, counter))
	}

	if err := os.WriteFile(path, []byte(out.TranscriptText), 0640); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}

	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	out.TranscriptPath = rel
	out.TranscriptPreview = engine.Truncate(out.TranscriptText, 200)
	return nil
}

// WriteMetadata saves the batch summary as metadata.json. Transcript
// bodies are already stripped by the summary builder.
func (w *Writer) WriteMetadata(summary *pipeline.Summary) (string, error) {
	if err := os.MkdirAll(w.root, 0750); err != nil {
		return "", fmt.Errorf("output dir: %w", err)
	}
	path := filepath.Join(w.root, "metadata.json")
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0640); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}
	return path, nil
}

// ReadMetadata loads a previous run's summary, for retry-failed mode.
func (w *Writer) ReadMetadata() (*pipeline.Summary, error) {
	data, err := os.ReadFile(filepath.Join(w.root, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var s pipeline.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &s, nil
}

// FailedURLs returns the source URLs of videos that had no transcript in
// a previous run, or nil when no metadata exists yet.
func (w *Writer) FailedURLs() map[string]bool {
	prev, err := w.ReadMetadata()
	if err != nil {
		return nil
	}
	failed := make(map[string]bool)
	for _, v := range prev.Videos {
		if !v.TranscriptFound {
			failed[v.SourceURL] = true
		}
	}
	return failed
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
