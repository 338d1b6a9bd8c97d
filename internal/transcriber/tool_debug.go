package transcriber

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"canvas-transcriber/internal/engine/browser"
)

// DebugVideoInput is the input for debug_video.
type DebugVideoInput struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

func registerDebugVideo(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "debug_video",
		Description: "Inspect a single video page without extracting: reports player iframes, transcript/caption buttons, track elements, caption-related network responses, and suggested extraction strategies. Use when extract_video_transcripts finds nothing for a video.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input DebugVideoInput) (*mcp.CallToolResult, *browser.DebugSnapshot, error) {
		if input.URL == "" {
			return nil, nil, errors.New("url is required")
		}
		title := input.Title
		if title == "" {
			title = input.URL
		}

		s, err := getSession(ctx)
		if err != nil {
			return nil, nil, err
		}
		return nil, s.Inspect(ctx, title, input.URL), nil
	})
}
