package links

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"canvas-transcriber/internal/engine"
)

// ModuleItem is one entry on a course /modules page, tagged with the name
// of the module section it lives under.
type ModuleItem struct {
	ModuleName string
	Text       string
	Href       string
}

// PageVisitor fetches the rendered HTML of a URL through the shared
// authenticated browsing context.
type PageVisitor interface {
	VisitHTML(ctx context.Context, url string) (html, title string, err error)
}

// ParseModuleItems extracts every module item link from a /modules page,
// with its parent module's display name attached.
func ParseModuleItems(doc, baseURL string) []ModuleItem {
	root, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil
	}
	base := baseURL

	var items []ModuleItem
	root.Find(".context_module").Each(func(_ int, mod *goquery.Selection) {
		name := strings.TrimSpace(mod.Find(".ig-header .name, .ig-header strong").First().Text())
		if name == "" {
			name, _ = mod.Attr("aria-label")
		}
		if name == "" {
			name = "Unknown Module"
		}
		mod.Find(`a.ig-title[href*="/modules/items/"]`).Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok {
				return
			}
			if resolved := resolveModuleHref(base, href); resolved != "" {
				items = append(items, ModuleItem{
					ModuleName: name,
					Text:       truncateText(a.Text(), 200),
					Href:       resolved,
				})
			}
		})
	})
	return items
}

// CrawlModules visits every module item page and collects the video links
// found there, each tagged with its module name and item title. Transient
// fetch errors are retried; an item page that still fails is logged and
// skipped, never aborting the crawl.
func CrawlModules(ctx context.Context, visitor PageVisitor, modulesHTML, baseURL string) []Link {
	items := ParseModuleItems(modulesHTML, baseURL)
	slog.Info("crawling module items", slog.Int("count", len(items)))

	collected := make(map[string]bool)
	var out []Link

	for i, item := range items {
		html, err := engine.RetryDo(ctx, engine.DefaultRetryConfig, func() (string, error) {
			h, _, err := visitor.VisitHTML(ctx, item.Href)
			return h, err
		})
		if err != nil {
			slog.Warn("module item failed",
				slog.Int("index", i+1),
				slog.String("item", engine.Truncate(item.Text, 40)),
				slog.Any("error", err),
			)
			continue
		}
		engine.IncrPagesCrawled()

		for _, link := range ExtractFromHTML(html, item.Href) {
			if link.VideoProvider == "" || collected[link.Href] {
				continue
			}
			collected[link.Href] = true
			link.ModuleName = item.ModuleName
			link.ItemText = item.Text
			out = append(out, link)
			slog.Info("video link found",
				slog.String("provider", link.VideoProvider),
				slog.String("module", engine.Truncate(item.ModuleName, 30)),
				slog.String("item", engine.Truncate(item.Text, 40)),
			)
		}
	}
	return out
}

func resolveModuleHref(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	return resolveHref(b, href)
}
