package transcriber

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas-transcriber/internal/engine/archive"
	"canvas-transcriber/internal/engine/output"
	"canvas-transcriber/internal/engine/pipeline"
)

// A batch archived under the default base URL must be visible to a later
// retry_failed call that also omits course_url. The lookup has to use the
// defaulted URL, not the raw empty input.
func TestFailedURLSet_ArchiveFallbackUsesDefaultedCourseURL(t *testing.T) {
	archive.SetDir(t.TempDir())
	ctx := context.Background()
	baseURL := "https://canvas.instructure.com"

	summary := pipeline.BuildSummary([]*pipeline.Outcome{
		{Title: "Lecture 1", SourceURL: "https://v/ok", Provider: "kaltura",
			TranscriptFound: true, TranscriptSourceType: "network_api", Errors: []string{}},
		{Title: "Lecture 2", SourceURL: "https://v/failed", Provider: "kaltura",
			Errors: []string{"No transcript found in DOM"}},
	})
	_, err := archive.SaveBatch(ctx, baseURL, summary)
	require.NoError(t, err)

	// empty output dir, so there is no metadata.json and the archive is
	// the only history
	writer := output.NewWriter(t.TempDir())

	failed := failedURLSet(ctx, writer, baseURL)
	require.NotNil(t, failed)
	assert.True(t, failed["https://v/failed"])
	assert.False(t, failed["https://v/ok"])

	// a course URL no batch was saved under finds nothing
	assert.Nil(t, failedURLSet(ctx, writer, ""))
	assert.Nil(t, failedURLSet(ctx, writer, "https://canvas.example.edu/courses/999"))
}

// metadata.json wins over the archive when both exist.
func TestFailedURLSet_PrefersMetadata(t *testing.T) {
	archive.SetDir(t.TempDir())
	ctx := context.Background()
	baseURL := "https://canvas.instructure.com"

	archived := pipeline.BuildSummary([]*pipeline.Outcome{
		{Title: "Old", SourceURL: "https://v/old-failure", Provider: "kaltura",
			Errors: []string{"No transcript found in DOM"}},
	})
	_, err := archive.SaveBatch(ctx, baseURL, archived)
	require.NoError(t, err)

	writer := output.NewWriter(t.TempDir())
	local := pipeline.BuildSummary([]*pipeline.Outcome{
		{Title: "New", SourceURL: "https://v/new-failure", Provider: "kaltura",
			Errors: []string{"No transcript found in DOM"}},
	})
	_, err = writer.WriteMetadata(local)
	require.NoError(t, err)

	failed := failedURLSet(ctx, writer, baseURL)
	require.NotNil(t, failed)
	assert.True(t, failed["https://v/new-failure"])
	assert.False(t, failed["https://v/old-failure"])
}
