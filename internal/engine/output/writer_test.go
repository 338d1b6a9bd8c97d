package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas-transcriber/internal/engine/pipeline"
)

func found(title, module, text string) *pipeline.Outcome {
	return &pipeline.Outcome{
		Title:           title,
		ModuleName:      module,
		TranscriptFound: true,
		TranscriptText:  text,
		Errors:          []string{},
	}
}

func TestWriteTranscript(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	out := found("Lecture 1: Graphs", "Week 1: Introductions", "spoken transcript body")
	require.NoError(t, w.WriteTranscript(out))

	wantPath := filepath.Join("Week_1_Introductions", "Lecture 1 Graphs.txt")
	assert.Equal(t, wantPath, out.TranscriptPath)

	data, err := os.ReadFile(filepath.Join(dir, wantPath))
	require.NoError(t, err)
	assert.Equal(t, "spoken transcript body", string(data))
	assert.Equal(t, "spoken transcript body", out.TranscriptPreview)
}

func TestWriteTranscript_CollisionSuffix(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	first := found("Lecture", "", "first body")
	second := found("Lecture", "", "second body")
	require.NoError(t, w.WriteTranscript(first))
	require.NoError(t, w.WriteTranscript(second))

	assert.Equal(t, "Lecture.txt", first.TranscriptPath)
	assert.Equal(t, "Lecture_1.txt", second.TranscriptPath)

	data, err := os.ReadFile(filepath.Join(dir, second.TranscriptPath))
	require.NoError(t, err)
	assert.Equal(t, "second body", string(data))
}

func TestWriteTranscript_SkipsNotFound(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	out := &pipeline.Outcome{Title: "Nothing here", Errors: []string{}}
	require.NoError(t, w.WriteTranscript(out))
	assert.Empty(t, out.TranscriptPath)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteTranscript_PreviewTruncated(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	long := strings.Repeat("word ", 100)
	out := found("Long", "", long)
	require.NoError(t, w.WriteTranscript(out))
	assert.Len(t, out.TranscriptPreview, 200)
}

func TestMetadataRoundTripAndFailedURLs(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	summary := pipeline.BuildSummary([]*pipeline.Outcome{
		{Title: "A", SourceURL: "https://v/a", TranscriptFound: true, TranscriptText: "body", Errors: []string{}},
		{Title: "B", SourceURL: "https://v/b", Errors: []string{"No transcript found in DOM"}},
	})

	path, err := w.WriteMetadata(summary)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "metadata.json"), path)

	got, err := w.ReadMetadata()
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalVideos)
	assert.Equal(t, 1, got.TranscriptsFound)
	assert.Empty(t, got.Videos[0].TranscriptText, "metadata must not embed transcript bodies")

	failed := w.FailedURLs()
	assert.Equal(t, map[string]bool{"https://v/b": true}, failed)
}

func TestFailedURLs_NoMetadata(t *testing.T) {
	w := NewWriter(t.TempDir())
	assert.Nil(t, w.FailedURLs())
}
