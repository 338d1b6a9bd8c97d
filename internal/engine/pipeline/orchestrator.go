package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"canvas-transcriber/internal/engine"
	"canvas-transcriber/internal/engine/browser"
	"canvas-transcriber/internal/engine/captions"
	"canvas-transcriber/internal/engine/links"
)

// wrappedLinkMarker identifies video links served through the LMS
// external-tools redirect; only those players fire the caption API during
// initialization, so only they get the network-interception path.
const wrappedLinkMarker = "external_tools/retrieve"

// state is one step of the per-video strategy chain.
type state int

const (
	stateStart state = iota
	stateNetworkWait
	stateAPIFetch
	stateDOMFallback
	stateLateRetry
	stateDone
)

func (s state) String() string {
	switch s {
	case stateStart:
		return "START"
	case stateNetworkWait:
		return "NETWORK_WAIT"
	case stateAPIFetch:
		return "API_FETCH"
	case stateDOMFallback:
		return "DOM_FALLBACK"
	case stateLateRetry:
		return "LATE_API_RETRY"
	default:
		return "DONE"
	}
}

// VideoPage is the slice of a live page the orchestrator needs.
type VideoPage interface {
	URL() string
	Scrape(ctx context.Context) (*browser.ScrapeResult, error)
	Metadata(ctx context.Context) (*browser.Metadata, error)
	Close()
}

// Collector is the network-signal observer attached to a video page.
type Collector interface {
	URLs() []string
	Wait(ctx context.Context, timeout, interval time.Duration) bool
	Stop()
}

// Opener opens one isolated, observed, navigated page per video.
type Opener interface {
	OpenVideoPage(ctx context.Context, href string) (VideoPage, Collector, error)
}

// Config carries all tunables explicitly so pipelines for different
// target sites can run side by side in tests.
type Config struct {
	NetworkWaitTimeout  time.Duration
	NetworkPollInterval time.Duration
	SettleDelay         time.Duration // direct links: wait for player render before scraping
	VideoDelay          time.Duration // pause between videos
}

// Orchestrator drives the strategy chain for each video in a batch.
type Orchestrator struct {
	cfg     Config
	opener  Opener
	fetcher *captions.Fetcher
}

func New(cfg Config, opener Opener, fetcher *captions.Fetcher) *Orchestrator {
	return &Orchestrator{cfg: cfg, opener: opener, fetcher: fetcher}
}

// ProcessBatch runs every link in input order, one at a time, with a
// fixed delay between videos. A single video's failure never aborts the
// batch; its outcome carries the error trail instead.
func (o *Orchestrator) ProcessBatch(ctx context.Context, videoLinks []links.Link) []*Outcome {
	limiter := rate.NewLimiter(rate.Every(o.cfg.VideoDelay), 1)

	outcomes := make([]*Outcome, 0, len(videoLinks))
	for i, link := range videoLinks {
		if i > 0 {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		}
		slog.Info("processing video",
			slog.Int("index", i+1),
			slog.Int("total", len(videoLinks)),
			slog.String("title", engine.Truncate(link.Text, 60)),
		)
		outcomes = append(outcomes, o.ProcessLink(ctx, link))
	}
	return outcomes
}

// ProcessLink extracts the transcript for one video link. It never
// returns an error: every failure mode is folded into the outcome.
func (o *Orchestrator) ProcessLink(ctx context.Context, link links.Link) (out *Outcome) {
	title := strings.TrimSpace(link.Text)
	if title == "" {
		title = "Unknown"
	}
	out = &Outcome{
		Title:      title,
		SourceURL:  link.Href,
		Provider:   link.VideoProvider,
		ModuleName: link.ModuleName,
		LinkType:   link.LinkType,
		Errors:     []string{},
	}
	engine.IncrVideosProcessed()

	defer func() {
		if r := recover(); r != nil {
			out.AddError("navigation/extraction error: %v", r)
		}
		if out.TranscriptFound {
			engine.IncrTranscriptsFound()
		}
	}()

	page, collector, err := o.opener.OpenVideoPage(ctx, link.Href)
	if err != nil {
		out.AddError("navigation/extraction error: %v", err)
		return out
	}
	defer page.Close()
	defer collector.Stop()

	o.run(ctx, page, collector, link.Href, out)

	if meta, err := page.Metadata(ctx); err == nil {
		if meta.Title != "" && out.Title == "Unknown" {
			out.Title = meta.Title
		}
		out.ProviderEntryID = meta.EntryID
	}
	return out
}

// run walks the strategy state machine for one opened page.
func (o *Orchestrator) run(ctx context.Context, page VideoPage, collector Collector, href string, out *Outcome) {
	wrapped := strings.Contains(href, wrappedLinkMarker)
	preDOMErrors := 0

	st := stateStart
	for st != stateDone {
		slog.Debug("strategy state", slog.String("state", st.String()))

		switch st {
		case stateStart:
			if wrapped {
				st = stateNetworkWait
			} else {
				// direct player links never fire the caption API;
				// give the player a moment to render, then scrape
				o.settle(ctx)
				st = stateDOMFallback
			}

		case stateNetworkWait:
			if collector.Wait(ctx, o.cfg.NetworkWaitTimeout, o.cfg.NetworkPollInterval) {
				slog.Debug("caption URL signal arrived")
			} else {
				slog.Debug("no caption URL signal within wait window")
			}
			st = stateAPIFetch

		case stateAPIFetch:
			if urls := collector.URLs(); len(urls) > 0 {
				out.applyFetch(o.fetcher.FetchFirstValid(ctx, urls, captions.OriginNetworkAPI))
				if out.TranscriptFound {
					st = stateDone
					continue
				}
			}
			st = stateDOMFallback

		case stateDOMFallback:
			engine.IncrDomFallbacks()
			preDOMErrors = len(out.Errors)
			o.domFallback(ctx, page, out)
			switch {
			case out.TranscriptFound:
				st = stateDone
			case wrapped && len(collector.URLs()) > 0:
				st = stateLateRetry
			default:
				st = stateDone
			}

		case stateLateRetry:
			engine.IncrLateRetries()
			slog.Info("caption URL arrived late, retrying API", slog.String("url", page.URL()))
			// drop the first API pass's trail, keep the DOM fallback's
			out.Errors = append([]string{}, out.Errors[preDOMErrors:]...)
			out.applyFetch(o.fetcher.FetchFirstValid(ctx, collector.URLs(), captions.OriginNetworkAPILate))
			st = stateDone
		}
	}
}

// domFallback runs the UI scraper and validates whatever it found. A
// subtitle-track pointer is dispatched through the caption fetcher; a
// button hit is recorded as diagnostic only.
func (o *Orchestrator) domFallback(ctx context.Context, page VideoPage, out *Outcome) {
	res, err := page.Scrape(ctx)
	if err != nil {
		out.AddError("%v", err)
		return
	}

	switch {
	case res.Transcript != "":
		verdict := captions.Validate(res.Transcript)
		out.CandidateSource = captions.OriginDomUI
		out.CandidateSelector = res.Selector
		out.ValidationPassed = verdict.Valid
		out.RejectionReason = verdict.Reason
		if verdict.Valid {
			out.TranscriptFound = true
			out.TranscriptSourceType = captions.OriginDomUI
			out.TranscriptText = res.Transcript
			slog.Debug("transcript via DOM fallback", slog.String("selector", res.Selector))
		} else {
			engine.IncrValidationRejections()
			out.AddError("DOM transcript rejected: %s", verdict.Reason)
		}

	case res.VTTUrl != "":
		out.applyFetch(o.fetcher.FetchFirstValid(ctx, []string{res.VTTUrl}, captions.OriginVTTTrack))

	case res.Source == "ui_button_found":
		out.CandidateSource = res.Source
		out.CandidateSelector = res.Selector
		out.AddError("transcript control present but not activated: %s", res.Selector)

	default:
		out.AddError("No transcript found in DOM")
	}
}

func (o *Orchestrator) settle(ctx context.Context) {
	if o.cfg.SettleDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(o.cfg.SettleDelay):
	}
}

// SessionOpener adapts a browser session to the Opener interface: new
// tab, collector attached before navigation, then navigate.
func SessionOpener(s *browser.Session) Opener {
	return sessionOpener{s: s}
}

type sessionOpener struct {
	s *browser.Session
}

func (o sessionOpener) OpenVideoPage(ctx context.Context, href string) (VideoPage, Collector, error) {
	page, err := o.s.NewPage()
	if err != nil {
		return nil, nil, err
	}
	collector, err := browser.StartCollector(page)
	if err != nil {
		page.Close()
		return nil, nil, err
	}
	if err := page.Navigate(ctx, href); err != nil {
		collector.Stop()
		page.Close()
		return nil, nil, err
	}
	return page, collector, nil
}
