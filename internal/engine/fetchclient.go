package engine

import (
	"context"
	"errors"
	"fmt"
)

// captionHeaders are sent with caption-serving URL fetches. The signed
// CDN endpoints are picky about clients that look like scripts.
func captionHeaders() map[string]string {
	return map[string]string{
		"accept":          "text/vtt,text/plain,*/*;q=0.8",
		"accept-language": "en-US,en;q=0.9",
		"user-agent":      RandomUserAgent(),
	}
}

// CaptionGetter returns a closure that GETs one URL through the stealth
// client and yields body text plus status code. The returned function is
// what the captions fetcher consumes.
func CaptionGetter() func(ctx context.Context, url string) (string, int, error) {
	return func(ctx context.Context, url string) (string, int, error) {
		if cfg.FetchClient == nil {
			return "", 0, errors.New("fetch client not configured")
		}
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		data, _, status, err := cfg.FetchClient.Do("GET", url, captionHeaders(), nil)
		if err != nil {
			return "", status, fmt.Errorf("caption fetch: %w", err)
		}
		return string(data), status, nil
	}
}
