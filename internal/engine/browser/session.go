// Package browser wraps go-rod: one authenticated browsing context shared
// by all sequential page operations, plus the page-level capabilities the
// pipeline consumes (navigation, network observation, DOM evaluation).
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"

// Session owns the browser process and its cookie state.
type Session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher

	pageLoadTimeout time.Duration
}

// Launch starts a Chromium instance and connects to it.
func Launch(headless bool, pageLoadTimeout time.Duration) (*Session, error) {
	l := launcher.New().
		Headless(headless).
		Set("--mute-audio").
		Set("--disable-blink-features", "AutomationControlled").
		Set("--user-agent", chromeUA)

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser launch: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("browser connect: %w", err)
	}

	slog.Info("browser started", slog.Bool("headless", headless))
	return &Session{browser: b, launcher: l, pageLoadTimeout: pageLoadTimeout}, nil
}

// Close shuts the browser down and reaps the process.
func (s *Session) Close() {
	if err := s.browser.Close(); err != nil {
		slog.Warn("browser close", slog.Any("error", err))
	}
	s.launcher.Cleanup()
}

// Page is one tab. All operations honor the session's page-load timeout.
type Page struct {
	p       *rod.Page
	timeout time.Duration
}

// NewPage opens a fresh tab without navigating anywhere.
func (s *Session) NewPage() (*Page, error) {
	p, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}
	return &Page{p: p, timeout: s.pageLoadTimeout}, nil
}

// Navigate loads url and waits for the load state.
func (p *Page) Navigate(ctx context.Context, url string) error {
	page := p.p.Context(ctx).Timeout(p.timeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	return nil
}

// URL returns the page's current URL, empty on error.
func (p *Page) URL() string {
	info, err := p.p.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Title returns the page's current title, empty on error.
func (p *Page) Title() string {
	info, err := p.p.Info()
	if err != nil {
		return ""
	}
	return info.Title
}

// EvalString runs a JS function expected to return a string (typically
// JSON.stringify output) and yields that string.
func (p *Page) EvalString(ctx context.Context, js string) (string, error) {
	obj, err := p.p.Context(ctx).Evaluate(rod.Eval(js).ByPromise())
	if err != nil {
		return "", fmt.Errorf("evaluate: %w", err)
	}
	return obj.Value.Str(), nil
}

// HTML returns the page's current outer HTML.
func (p *Page) HTML(ctx context.Context) (string, error) {
	return p.EvalString(ctx, `() => document.documentElement.outerHTML`)
}

// Close closes the tab. Safe to call after a failed navigation.
func (p *Page) Close() {
	if err := p.p.Close(); err != nil {
		slog.Debug("page close", slog.Any("error", err))
	}
}

// VisitHTML opens a throwaway tab, navigates, and returns the rendered
// HTML and title. Used by the modules crawl.
func (s *Session) VisitHTML(ctx context.Context, url string) (string, string, error) {
	page, err := s.NewPage()
	if err != nil {
		return "", "", err
	}
	defer page.Close()

	if err := page.Navigate(ctx, url); err != nil {
		return "", "", err
	}
	html, err := page.HTML(ctx)
	if err != nil {
		return "", "", err
	}
	return html, page.Title(), nil
}
