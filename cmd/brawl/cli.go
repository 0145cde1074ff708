package main

import (
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/brawl"
)

// Fetch engines.
const (
	EngineBrowser = "browser"
	EngineHTTP    = "http"
)

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	URL    string `arg:"" help:"Seed URL to start crawling from"`
	Output string `arg:"" help:"File to write visited URLs to, one per line"`

	Engine         string          `short:"e" enum:"browser,http" default:"browser" help:"Page fetcher: headless browser or plain HTTP (${enum})"`
	Concurrency    int             `short:"c" default:"1" help:"Concurrent page fetches (1 keeps strict BFS order)"`
	Timeout        time.Duration   `short:"t" default:"10s" help:"Fetch timeout per page"`
	Retries        int             `default:"0" help:"Retries per failed page fetch"`
	MaxTime        time.Duration   `name:"max-time" default:"0s" help:"Stop crawling after this long and write what was found (0 = no limit)"`
	Marker         string          `default:".html" help:"Substring a link must contain to be followed"`
	DB             string          `name:"db" env:"BRAWL_DB" help:"SQLite file to record crawl history in"`
	BrowserRecycle int64           `name:"browser-recycle" default:"75" help:"Pages per browser instance before relaunch (0 = never)"`
	Chrome         string          `env:"BRAWL_CHROME" type:"path" help:"Chrome or Chromium executable (default: detect or download)"`
	Verbose        bool            `short:"v" help:"Log every fetch"`
	Config         kong.ConfigFlag `help:"YAML file with flag defaults"`
}

// check rejects flag values the crawler cannot run with.
func (c *CLI) check() error {
	if c.Concurrency < 1 {
		return brawl.Errorf(brawl.EINVALID, "--concurrency must be at least 1")
	}
	if c.Timeout <= 0 {
		return brawl.Errorf(brawl.EINVALID, "--timeout must be positive")
	}
	if c.Retries < 0 {
		return brawl.Errorf(brawl.EINVALID, "--retries must not be negative")
	}
	if c.MaxTime < 0 {
		return brawl.Errorf(brawl.EINVALID, "--max-time must not be negative")
	}
	if c.BrowserRecycle < 0 {
		return brawl.Errorf(brawl.EINVALID, "--browser-recycle must not be negative")
	}
	return nil
}
