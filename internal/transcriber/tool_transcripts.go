package transcriber

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"canvas-transcriber/internal/engine"
	"canvas-transcriber/internal/engine/archive"
	"canvas-transcriber/internal/engine/captions"
	"canvas-transcriber/internal/engine/links"
	"canvas-transcriber/internal/engine/output"
	"canvas-transcriber/internal/engine/pipeline"
)

// player render delay before scraping direct links
const settleDelay = 3 * time.Second

// ExtractTranscriptsInput is the input for extract_video_transcripts.
type ExtractTranscriptsInput struct {
	Links       []links.Link `json:"links,omitempty"`
	CourseURL   string       `json:"course_url,omitempty"`
	RetryFailed bool         `json:"retry_failed,omitempty"`
	Limit       int          `json:"limit,omitempty"`
}

// ExtractTranscriptsOutput is the output for extract_video_transcripts.
type ExtractTranscriptsOutput struct {
	TotalVideos      int                `json:"total_videos"`
	TranscriptsFound int                `json:"transcripts_found"`
	BatchID          string             `json:"batch_id,omitempty"`
	MetadataPath     string             `json:"metadata_path,omitempty"`
	Videos           []pipeline.Outcome `json:"videos"`
}

func registerExtractTranscripts(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_video_transcripts",
		Description: "Extract transcripts for video links: captures signed Kaltura caption URLs from player network traffic, falls back to DOM transcript panels and VTT tracks, validates the text, and saves transcript files plus metadata.json. Uses links passed inline or the last saved links file. Set retry_failed to reprocess only videos that previously produced no transcript.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ExtractTranscriptsInput) (*mcp.CallToolResult, *ExtractTranscriptsOutput, error) {
		videoLinks := input.Links
		if len(videoLinks) == 0 {
			pl, err := links.Load(engine.Cfg.LinksFile)
			if err != nil {
				return nil, nil, errors.New("no links provided and no saved links file; run extract_page_links or extract_course_videos with save first")
			}
			videoLinks = pl.Links
		}
		videoLinks = links.FilterVideoLinks(videoLinks)
		if len(videoLinks) == 0 {
			return nil, nil, errors.New("no links with a recognized video provider")
		}

		courseURL := input.CourseURL
		if courseURL == "" {
			courseURL = engine.Cfg.BaseURL
		}

		writer := output.NewWriter(engine.Cfg.OutputDir)
		if input.RetryFailed {
			failed := failedURLSet(ctx, writer, courseURL)
			if failed == nil {
				return nil, nil, errors.New("retry_failed requires a previous run (metadata.json or archived batch)")
			}
			kept := videoLinks[:0]
			for _, l := range videoLinks {
				if failed[l.Href] {
					kept = append(kept, l)
				}
			}
			videoLinks = kept
		}
		if input.Limit > 0 && len(videoLinks) > input.Limit {
			videoLinks = videoLinks[:input.Limit]
		}
		if len(videoLinks) == 0 {
			return nil, &ExtractTranscriptsOutput{Videos: []pipeline.Outcome{}}, nil
		}

		s, err := getSession(ctx)
		if err != nil {
			return nil, nil, err
		}

		orch := pipeline.New(pipeline.Config{
			NetworkWaitTimeout:  engine.Cfg.NetworkWaitTimeout,
			NetworkPollInterval: engine.Cfg.NetworkPollInterval,
			SettleDelay:         settleDelay,
			VideoDelay:          engine.Cfg.VideoDelay,
		}, pipeline.SessionOpener(s), captions.NewFetcher(engine.CaptionGetter()))

		outcomes := orch.ProcessBatch(ctx, videoLinks)

		for _, out := range outcomes {
			if err := writer.WriteTranscript(out); err != nil {
				out.AddError("save transcript: %v", err)
			}
		}

		summary := pipeline.BuildSummary(outcomes)
		metaPath, err := writer.WriteMetadata(summary)
		if err != nil {
			slog.Warn("metadata save failed", slog.Any("error", err))
		}

		result := &ExtractTranscriptsOutput{
			TotalVideos:      summary.TotalVideos,
			TranscriptsFound: summary.TranscriptsFound,
			MetadataPath:     metaPath,
			Videos:           summary.Videos,
		}

		batchID, err := archive.SaveBatch(ctx, courseURL, summary)
		if err != nil {
			slog.Warn("archive save failed", slog.Any("error", err))
		} else {
			result.BatchID = batchID
			if db := archive.GetMirror(); db != nil {
				if err := db.SaveBatch(ctx, batchID, courseURL, summary); err != nil {
					slog.Warn("archive mirror failed", slog.Any("error", err))
				}
			}
		}

		slog.Info("batch complete",
			slog.Int("total", summary.TotalVideos),
			slog.Int("found", summary.TranscriptsFound),
			slog.String("batch", result.BatchID))
		return nil, result, nil
	})
}

// failedURLSet resolves the URLs worth retrying: the last metadata.json if one
// exists, otherwise every URL archived for courseURL that never yielded a
// transcript. courseURL must already be defaulted to the value batches were
// saved under. Returns nil when neither source has history.
func failedURLSet(ctx context.Context, writer *output.Writer, courseURL string) map[string]bool {
	if failed := writer.FailedURLs(); failed != nil {
		return failed
	}
	urls, err := archive.FailedSince(ctx, courseURL)
	if err != nil || len(urls) == 0 {
		return nil
	}
	failed := make(map[string]bool, len(urls))
	for _, u := range urls {
		failed[u] = true
	}
	return failed
}
