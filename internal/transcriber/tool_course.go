package transcriber

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"canvas-transcriber/internal/engine"
	"canvas-transcriber/internal/engine/links"
)

// ExtractCourseInput is the input for extract_course_videos.
type ExtractCourseInput struct {
	CourseURL string `json:"course_url"`
	Save      bool   `json:"save,omitempty"`
}

// ExtractCourseOutput is the output for extract_course_videos.
type ExtractCourseOutput struct {
	CourseURL   string             `json:"course_url"`
	Modules     []links.ModuleItem `json:"modules"`
	VideoLinks  []links.Link       `json:"video_links"`
	TotalVideos int                `json:"total_videos"`
	SavedTo     string             `json:"saved_to,omitempty"`
}

func registerExtractCourse(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_course_videos",
		Description: "Crawl a Canvas course's Modules page, visit every module item, and collect all embedded video links with their module names. Set save to persist the links for extract_video_transcripts.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ExtractCourseInput) (*mcp.CallToolResult, *ExtractCourseOutput, error) {
		if input.CourseURL == "" {
			return nil, nil, errors.New("course_url is required")
		}

		s, err := getSession(ctx)
		if err != nil {
			return nil, nil, err
		}

		modulesURL := strings.TrimRight(input.CourseURL, "/") + "/modules"
		doc, _, err := s.VisitHTML(ctx, modulesURL)
		if err != nil {
			return nil, nil, err
		}
		engine.IncrPagesCrawled()

		items := links.ParseModuleItems(doc, modulesURL)
		videos := links.CrawlModules(ctx, s, doc, modulesURL)

		out := &ExtractCourseOutput{
			CourseURL:   input.CourseURL,
			Modules:     items,
			VideoLinks:  videos,
			TotalVideos: len(videos),
		}

		if input.Save {
			pl := links.PageLinks{
				PageURL:         input.CourseURL,
				Links:           videos,
				TotalLinks:      len(videos),
				VideoLinksCount: len(videos),
			}
			if err := links.Save(engine.Cfg.LinksFile, &pl); err != nil {
				slog.Warn("links save failed", slog.Any("error", err))
			} else {
				out.SavedTo = engine.Cfg.LinksFile
			}
		}

		slog.Info("course crawled",
			slog.String("course", input.CourseURL),
			slog.Int("modules", len(items)),
			slog.Int("videos", len(videos)))
		return nil, out, nil
	})
}
