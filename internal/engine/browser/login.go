package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/proto"
)

// loginCheckJS reports whether a known authenticated Canvas DOM root is
// present; SSO pages have none of these.
const loginCheckJS = `() => JSON.stringify(
	document.querySelector('#content, .user_content, .ic-app') !== null
)`

// LoadSession restores cookies from a previous run into the browser.
// Returns an error when the file is missing or malformed; the caller falls
// back to interactive login.
func (s *Session) LoadSession(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	var cookies []*proto.NetworkCookieParam
	if err := json.Unmarshal(data, &cookies); err != nil {
		return fmt.Errorf("decode session: %w", err)
	}
	if err := s.browser.SetCookies(cookies); err != nil {
		return fmt.Errorf("set cookies: %w", err)
	}
	slog.Info("session restored", slog.String("file", path), slog.Int("cookies", len(cookies)))
	return nil
}

// SaveSession persists the current browser cookies.
func (s *Session) SaveSession(path string) error {
	cookies, err := s.browser.GetCookies()
	if err != nil {
		return fmt.Errorf("get cookies: %w", err)
	}
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: c.SameSite,
			Expires:  c.Expires,
		})
	}
	data, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	slog.Info("session saved", slog.String("file", path), slog.Int("cookies", len(params)))
	return nil
}

// NeedsLogin reports whether a page URL looks like an SSO/login redirect.
func NeedsLogin(pageURL string) bool {
	lower := strings.ToLower(pageURL)
	for _, k := range []string{"sso", "login", "saml"} {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// WaitForLogin blocks until the page lands on an authenticated course
// page, polling every two seconds up to timeout. The user completes
// SSO/MFA in the (non-headless) browser window meanwhile.
func (s *Session) WaitForLogin(ctx context.Context, page *Page, timeout time.Duration) bool {
	slog.Info("waiting for login", slog.Duration("timeout", timeout))
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return false
		}

		url := strings.ToLower(page.URL())
		title := page.Title()

		onCourse := strings.Contains(url, "instructure.com/courses/")
		notLoginTitle := !strings.Contains(strings.ToLower(title), "login")
		hasCanvasDOM := false
		if v, err := page.EvalString(ctx, loginCheckJS); err == nil {
			hasCanvasDOM = v == "true"
		}

		if onCourse && (notLoginTitle || hasCanvasDOM) {
			slog.Info("logged in", slog.String("title", title))
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(2 * time.Second):
		}
	}

	slog.Warn("login timed out", slog.Duration("timeout", timeout))
	return false
}
