package engine

import (
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	BaseURL     string // course site root, used for the login fallback
	SessionFile string // cookie jar path
	LinksFile   string // discovered-links JSON path
	OutputDir   string // transcript output directory
	ArchiveDir  string // local archive directory (sqlite)

	Headless     bool
	LoginTimeout time.Duration

	PageLoadTimeout     time.Duration // navigation + load-state wait
	NetworkWaitTimeout  time.Duration // bounded poll for the caption URL signal
	NetworkPollInterval time.Duration
	FetchTimeout        time.Duration // per caption-URL HTTP GET
	VideoDelay          time.Duration // pause between videos

	DatabaseURL string // optional shared Postgres archive; empty = disabled

	FetchClient *BrowserClient // nil = caption fetching disabled
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (captions, pipeline, browser).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}
