// canvas-transcriber — lecture transcript extraction MCP server.
//
// Exposes tools for discovering video links in a Canvas course and pulling
// transcripts out of embedded players (Kaltura, Panopto, YuJa, Zoom and
// others): extract_page_links, extract_course_videos,
// extract_video_transcripts, debug_video, archive_list, archive_show.
package main

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"canvas-transcriber/internal/engine"
	"canvas-transcriber/internal/engine/archive"
	"canvas-transcriber/internal/transcriber"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8894")
)

func main() {
	initEngine()
	defer transcriber.CloseSession()

	slog.Info("starting canvas-transcriber",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "canvas-transcriber",
		Version: version,
	}, nil)

	transcriber.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", 6))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "canvas-transcriber",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	headless, err := strconv.ParseBool(env.Str("HEADLESS", "true"))
	if err != nil {
		headless = true
	}

	c := engine.Config{
		BaseURL:             env.Str("CANVAS_BASE_URL", "https://canvas.instructure.com"),
		SessionFile:         env.Str("SESSION_FILE", "canvas_session.json"),
		LinksFile:           env.Str("LINKS_FILE", "video_links.json"),
		OutputDir:           env.Str("OUTPUT_DIR", "transcripts"),
		ArchiveDir:          env.Str("ARCHIVE_DIR", ""),
		Headless:            headless,
		LoginTimeout:        env.Duration("LOGIN_TIMEOUT", 300*time.Second),
		PageLoadTimeout:     env.Duration("PAGE_LOAD_TIMEOUT", 30*time.Second),
		NetworkWaitTimeout:  env.Duration("NETWORK_WAIT_TIMEOUT", 15*time.Second),
		NetworkPollInterval: env.Duration("NETWORK_POLL_INTERVAL", 500*time.Millisecond),
		FetchTimeout:        env.Duration("FETCH_TIMEOUT", 15*time.Second),
		VideoDelay:          env.Duration("VIDEO_DELAY", 2*time.Second),
		DatabaseURL:         env.Str("DATABASE_URL", ""),
	}

	bc, err := stealth.NewClient(stealth.WithTimeout(int(c.FetchTimeout.Seconds())))
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
	} else {
		c.FetchClient = bc
		slog.Info("stealth fetch client initialized")
	}

	engine.Init(c)

	if c.ArchiveDir != "" {
		archive.SetDir(c.ArchiveDir)
	}

	// Shared Postgres archive (optional)
	if c.DatabaseURL != "" {
		ctx := context.Background()
		db, err := engine.RetryDo(ctx, engine.DefaultRetryConfig, func() (*archive.MirrorDB, error) {
			return archive.ConnectMirror(ctx, c.DatabaseURL)
		})
		if err != nil {
			slog.Warn("archive mirror init failed", slog.Any("error", err))
		} else {
			archive.SetMirror(db)
		}
	}
}
