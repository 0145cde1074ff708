package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/brawl"
	"github.com/fwojciec/brawl/crawl"
	"github.com/fwojciec/brawl/fs"
	brawlhttp "github.com/fwojciec/brawl/http"
	"github.com/fwojciec/brawl/rod"
	brawlslog "github.com/fwojciec/brawl/slog"
	"github.com/fwojciec/brawl/sqlite"
)

const usage = "usage: brawl [flags] <url> <output>"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	m := NewMain()

	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		if brawl.ErrorCode(err) == brawl.EINTERNAL {
			fmt.Fprintln(os.Stderr, "error:", err)
		} else {
			fmt.Fprintln(os.Stderr, "error:", brawl.ErrorMessage(err))
		}
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Config file read for flag defaults. Set before calling Run().
	ConfigPath string

	// Fetcher, when set, is used instead of the engine chosen by --engine.
	Fetcher brawl.LinkFetcher

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// SQLite database opened when --db is given.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		ConfigPath: DefaultConfigPath(),
		Now:        time.Now,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	options := []kong.Option{
		kong.Name("brawl"),
		kong.Description("Enumerate the HTML pages reachable from a seed URL, breadth first"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	}
	if m.ConfigPath != "" {
		options = append(options, kong.Configuration(LoadYAMLConfig, m.ConfigPath))
	} else {
		options = append(options, kong.Configuration(LoadYAMLConfig))
	}
	parser, err := kong.New(cli, options...)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			_, _ = parser.Parse([]string{"--help"})
			return nil
		}
	}

	if _, err := parser.Parse(args); err != nil {
		fmt.Fprintln(stderr, usage)
		return brawl.Errorf(brawl.EINVALID, "%v", err)
	}
	if err := cli.check(); err != nil {
		fmt.Fprintln(stderr, usage)
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	return m.crawl(ctx, cli, logger, stdout, stderr)
}

func (m *Main) crawl(ctx context.Context, cli *CLI, logger *slog.Logger, stdout, stderr io.Writer) error {
	now := m.Now
	if now == nil {
		now = time.Now
	}
	startedAt := now().UTC()

	// Open history first so a bad --db fails before any traversal.
	var history *historyRecorder
	if cli.DB != "" {
		m.DB = sqlite.NewDB(cli.DB)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintln(stderr, "Hint: Set BRAWL_DB or --db to a writable path")
			return fmt.Errorf("failed to open database at %q: %w", cli.DB, err)
		}
		defer m.Close()

		var err error
		history, err = newHistoryRecorder(ctx, sqlite.NewCrawlService(m.DB), cli.URL, startedAt)
		if err != nil {
			return err
		}
	}

	fetcher, err := m.newFetcher(cli, logger)
	if err != nil {
		return err
	}
	defer fetcher.Close()

	if cli.MaxTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cli.MaxTime)
		defer cancel()
	}

	crawler := &crawl.Crawler{
		Fetcher:      fetcher,
		Filter:       brawl.NewLinkFilter(cli.Marker),
		Concurrency:  cli.Concurrency,
		FetchTimeout: cli.Timeout,
		Logger:       logger,
	}

	progress := func(ev crawl.ProgressEvent) {
		switch ev.Type {
		case crawl.ProgressFailed:
			fmt.Fprintf(stderr, "skip %s: %v\n", ev.URL, ev.Error)
		case crawl.ProgressFetched:
			if cli.Verbose {
				fmt.Fprintf(stdout, "[%d visited, %d queued] %s\n", ev.Visited, ev.Pending, crawl.TruncateURL(ev.URL, 60))
			}
		}
	}

	result, err := crawler.Crawl(ctx, cli.URL, progress)
	if err != nil {
		return err
	}
	if result.Canceled {
		fmt.Fprintf(stderr, "crawl stopped early (%d fetches interrupted); writing partial results\n", result.Interrupted)
	}

	// Results are written even after the stop signal.
	writeCtx := context.WithoutCancel(ctx)

	file := fs.NewSink(cli.Output)
	sinks := brawl.MultiSink{
		brawlslog.NewLoggingSink(file, "file", logger),
	}
	if history != nil {
		history.record.FinishedAt = now().UTC()
		history.record.Fetched = result.Fetched
		history.record.Failed = result.Failed
		history.record.Canceled = result.Canceled
		sinks = append(sinks, brawlslog.NewLoggingSink(history.sink(), "history", logger))
	}

	if err := sinks.WriteURLs(writeCtx, result.URLs); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Wrote %d URLs to %s (%d fetched, %d failed)\n",
		len(result.URLs), file.Path(), result.Fetched, result.Failed)
	if history != nil {
		history.report(stdout)
	}
	return nil
}

// newFetcher builds the fetch chain: engine, optional retries, logging.
func (m *Main) newFetcher(cli *CLI, logger *slog.Logger) (brawl.LinkFetcher, error) {
	var fetcher brawl.LinkFetcher
	switch {
	case m.Fetcher != nil:
		fetcher = m.Fetcher
	case cli.Engine == EngineHTTP:
		fetcher = brawlhttp.NewFetcher(brawlhttp.WithTimeout(cli.Timeout))
	default:
		rodFetcher, err := rod.NewFetcher(
			rod.WithFetchTimeout(cli.Timeout),
			rod.WithManagerOptions(
				rod.WithMaxPages(cli.BrowserRecycle),
				rod.WithBin(cli.Chrome),
			),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to start browser (Chrome or Chromium must be installed, or use --engine http): %w", err)
		}
		fetcher = rodFetcher
	}

	if cli.Retries > 0 {
		fetcher = crawl.NewRetryFetcher(fetcher, crawl.RetryDelays(cli.Retries, time.Second), logger)
	}
	return brawlslog.NewLoggingFetcher(fetcher, logger), nil
}
