package links

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Link is one discovered link record. VideoProvider is empty for links
// that do not point at a known video platform.
type Link struct {
	Text          string `json:"text"`
	Href          string `json:"href"`
	LinkType      string `json:"link_type"` // "anchor" | "iframe"
	VideoProvider string `json:"video_provider,omitempty"`
	ModuleName    string `json:"module_name,omitempty"`
	ItemText      string `json:"canvas_item_text,omitempty"`
}

// PageLinks is the persisted output of a link-discovery run.
type PageLinks struct {
	PageURL         string `json:"page_url"`
	PageTitle       string `json:"page_title"`
	Links           []Link `json:"links"`
	TotalLinks      int    `json:"total_links"`
	VideoLinksCount int    `json:"video_links_count"`
}

// ExtractFromHTML walks an HTML document and returns deduplicated link
// records for every anchor href and iframe src, resolved against baseURL.
// javascript:, about: and fragment-only targets are skipped.
func ExtractFromHTML(doc, baseURL string) []Link {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil
	}
	base, _ := url.Parse(baseURL)

	var out []Link
	seen := make(map[string]bool)

	add := func(href, text, linkType string) {
		href = resolveHref(base, href)
		if href == "" || seen[href] {
			return
		}
		seen[href] = true
		out = append(out, Link{
			Text:          truncateText(text, 200),
			Href:          href,
			LinkType:      linkType,
			VideoProvider: DetectProvider(href),
		})
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a":
				if href := attr(n, "href"); href != "" {
					add(href, nodeText(n), "anchor")
				}
			case "iframe":
				if src := attr(n, "src"); src != "" {
					title := attr(n, "title")
					if title == "" {
						title = attr(n, "aria-label")
					}
					if title == "" {
						title = "Embedded iframe"
					}
					add(src, title, "iframe")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// FilterVideoLinks keeps only links with a recognized video provider.
func FilterVideoLinks(all []Link) []Link {
	var vids []Link
	for _, l := range all {
		if l.VideoProvider != "" {
			vids = append(vids, l)
		}
	}
	return vids
}

func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "about:") ||
		strings.HasPrefix(href, "#") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	return ref.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func truncateText(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n]
}
