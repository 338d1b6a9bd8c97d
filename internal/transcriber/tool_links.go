package transcriber

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"canvas-transcriber/internal/engine"
	"canvas-transcriber/internal/engine/links"
)

// ExtractLinksInput is the input for extract_page_links.
type ExtractLinksInput struct {
	URL       string `json:"url"`
	VideoOnly bool   `json:"video_only,omitempty"`
	Save      bool   `json:"save,omitempty"`
}

// ExtractLinksOutput is the output for extract_page_links.
type ExtractLinksOutput struct {
	links.PageLinks
	SavedTo string `json:"saved_to,omitempty"`
}

func registerExtractLinks(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_page_links",
		Description: "Extract all links from a Canvas page, classifying video links by provider (Panopto, Kaltura, YuJa, Zoom, YouTube, Vimeo, Canvas media). Set video_only to return just video links, and save to persist them for extract_video_transcripts.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ExtractLinksInput) (*mcp.CallToolResult, *ExtractLinksOutput, error) {
		if input.URL == "" {
			return nil, nil, errors.New("url is required")
		}

		s, err := getSession(ctx)
		if err != nil {
			return nil, nil, err
		}

		doc, title, err := s.VisitHTML(ctx, input.URL)
		if err != nil {
			return nil, nil, err
		}
		engine.IncrPagesCrawled()

		all := links.ExtractFromHTML(doc, input.URL)
		videos := links.FilterVideoLinks(all)

		out := &ExtractLinksOutput{PageLinks: links.PageLinks{
			PageURL:         input.URL,
			PageTitle:       title,
			Links:           all,
			TotalLinks:      len(all),
			VideoLinksCount: len(videos),
		}}
		if input.VideoOnly {
			out.Links = videos
		}

		if input.Save {
			if err := links.Save(engine.Cfg.LinksFile, &out.PageLinks); err != nil {
				slog.Warn("links save failed", slog.Any("error", err))
			} else {
				out.SavedTo = engine.Cfg.LinksFile
			}
		}

		slog.Info("links extracted",
			slog.String("url", input.URL),
			slog.Int("total", len(all)),
			slog.Int("videos", len(videos)))
		return nil, out, nil
	})
}
