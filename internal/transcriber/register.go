// Package transcriber exposes the transcript extraction pipeline as MCP
// tools: link discovery, course crawling, batch transcript extraction,
// player diagnostics, and run history.
package transcriber

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"canvas-transcriber/internal/engine"
	"canvas-transcriber/internal/engine/browser"
)

// RegisterTools registers all transcript tools on the given MCP server.
func RegisterTools(server *mcp.Server) {
	registerExtractLinks(server)
	registerExtractCourse(server)
	registerExtractTranscripts(server)
	registerDebugVideo(server)
	registerArchiveList(server)
	registerArchiveShow(server)
}

// Package-level browser session, shared across tool calls. Launching
// Chromium and re-authenticating per call would be wasteful and would
// trip rate limits, so the first tool call pays the cost and later calls
// reuse the logged-in session.
var (
	sessionMu sync.Mutex
	session   *browser.Session
)

// getSession returns the shared logged-in browser session, launching and
// authenticating it on first use.
func getSession(ctx context.Context) (*browser.Session, error) {
	sessionMu.Lock()
	defer sessionMu.Unlock()

	if session != nil {
		return session, nil
	}

	s, err := browser.Launch(engine.Cfg.Headless, engine.Cfg.PageLoadTimeout)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	if err := s.LoadSession(engine.Cfg.SessionFile); err != nil {
		slog.Debug("no saved session", slog.Any("error", err))
	}

	page, err := s.NewPage()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	if err := page.Navigate(ctx, engine.Cfg.BaseURL); err != nil {
		s.Close()
		return nil, fmt.Errorf("open %s: %w", engine.Cfg.BaseURL, err)
	}

	if browser.NeedsLogin(page.URL()) {
		slog.Info("login required, waiting for manual sign-in",
			slog.String("url", page.URL()),
			slog.Duration("timeout", engine.Cfg.LoginTimeout))
		if !s.WaitForLogin(ctx, page, engine.Cfg.LoginTimeout) {
			s.Close()
			return nil, fmt.Errorf("login not completed within %s", engine.Cfg.LoginTimeout)
		}
	}

	if err := s.SaveSession(engine.Cfg.SessionFile); err != nil {
		slog.Warn("session save failed", slog.Any("error", err))
	}

	session = s
	return session, nil
}

// CloseSession shuts down the shared browser session if one is open.
func CloseSession() {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	if session != nil {
		session.Close()
		session = nil
	}
}
