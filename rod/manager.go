package rod

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/brawl"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// DefaultMaxPages is the default number of pages loaded before the browser
// is replaced.
const DefaultMaxPages = 75

// instance is one launched Chrome and the tabs currently leased from it.
// tabs and retired are guarded by BrowserManager.mu.
type instance struct {
	browser *rod.Browser
	pid     int
	stop    func() error

	tabs    int
	retired bool
}

// BrowserManager owns the Chrome process used by a Fetcher and replaces it
// after a fixed number of page loads. Chrome memory grows over a long crawl
// and does not return to baseline even when every tab is closed.
//
// Callers lease the browser with Acquire. A replaced browser keeps running
// until its last lease is released, so tabs open during a recycle finish
// their page loads.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	bin       string
	maxPages  int64
	pageCount atomic.Int64
	launch    func() (*instance, error)

	mu        sync.Mutex
	current   *instance
	recycling chan struct{} // closed when the running relaunch ends; nil if none
	closed    atomic.Bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets the number of page loads after which the browser is
// replaced. Zero or less disables recycling.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// WithBin sets the Chrome executable. By default rod looks up a local
// installation and downloads one if none is found.
func WithBin(path string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.bin = path
	}
}

// NewBrowserManager launches a headless Chrome.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		maxPages: DefaultMaxPages,
	}
	bm.launch = bm.launchChrome
	for _, opt := range opts {
		opt(bm)
	}
	if err := bm.start(); err != nil {
		return nil, err
	}
	return bm, nil
}

// start installs the first browser.
func (bm *BrowserManager) start() error {
	inst, err := bm.launch()
	if err != nil {
		return err
	}
	bm.current = inst
	return nil
}

// Acquire leases the current browser for one page load. The returned release
// function must be called once the tab is closed.
//
// When the page limit is reached Acquire waits for a replacement browser,
// giving up when ctx is done. If the relaunch fails the current browser keeps
// serving and the next Acquire tries again.
func (bm *BrowserManager) Acquire(ctx context.Context) (*rod.Browser, func(), error) {
	if err := bm.awaitRecycle(ctx); err != nil {
		return nil, nil, err
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.closed.Load() || bm.current == nil {
		return nil, nil, brawl.Errorf(brawl.EINVALID, "browser is closed")
	}
	inst := bm.current
	inst.tabs++

	var once sync.Once
	release := func() {
		once.Do(func() { bm.release(inst) })
	}
	return inst.browser, release, nil
}

// awaitRecycle starts a relaunch if the page limit is reached and waits for
// the running one, if any.
func (bm *BrowserManager) awaitRecycle(ctx context.Context) error {
	bm.mu.Lock()
	if bm.maxPages > 0 && bm.pageCount.Load() >= bm.maxPages && bm.recycling == nil && !bm.closed.Load() {
		done := make(chan struct{})
		bm.recycling = done
		go bm.recycle(done)
	}
	wait := bm.recycling
	bm.mu.Unlock()

	if wait == nil {
		return ctx.Err()
	}
	select {
	case <-wait:
		return ctx.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// recycle launches a replacement browser and retires the current one, which
// is stopped once its last lease is released.
func (bm *BrowserManager) recycle(done chan struct{}) {
	defer close(done)

	inst, err := bm.launch()

	bm.mu.Lock()
	bm.recycling = nil
	if err != nil {
		bm.mu.Unlock()
		return
	}
	if bm.closed.Load() {
		bm.mu.Unlock()
		_ = inst.stop()
		return
	}
	old := bm.current
	bm.current = inst
	bm.pageCount.Store(0)
	idle := bm.retire(old)
	bm.mu.Unlock()

	if idle {
		_ = old.stop()
	}
}

// retire marks inst as replaced and reports whether it has no open tabs and
// can be stopped now. Must be called with mu held.
func (bm *BrowserManager) retire(inst *instance) bool {
	if inst == nil || inst.retired {
		return false
	}
	inst.retired = true
	return inst.tabs == 0
}

// release returns a lease and stops a retired browser after its last tab.
func (bm *BrowserManager) release(inst *instance) {
	bm.mu.Lock()
	inst.tabs--
	stop := inst.retired && inst.tabs == 0
	bm.mu.Unlock()

	if stop {
		_ = inst.stop()
	}
}

// IncrementPageCount records one completed page load.
func (bm *BrowserManager) IncrementPageCount() {
	bm.pageCount.Add(1)
}

// Close shuts down the browser, waiting for a running relaunch first.
// Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	if !bm.closed.CompareAndSwap(false, true) {
		return nil
	}

	bm.mu.Lock()
	wait := bm.recycling
	bm.mu.Unlock()
	if wait != nil {
		<-wait
	}

	bm.mu.Lock()
	inst := bm.current
	bm.current = nil
	if inst != nil {
		inst.retired = true
	}
	bm.mu.Unlock()

	if inst == nil {
		return nil
	}
	return inst.stop()
}

// LauncherPID returns the process ID of the current browser launcher, or 0
// once closed.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.current == nil {
		return 0
	}
	return bm.current.pid
}

// launchChrome starts a headless Chrome tuned for unattended crawling:
// background tabs are not throttled and /dev/shm is not used for shared
// memory.
func (bm *BrowserManager) launchChrome() (*instance, error) {
	l := launcher.New().
		Headless(true).
		Leakless(true)
	for _, flag := range []string{
		"disable-background-timer-throttling",
		"disable-backgrounding-occluded-windows",
		"disable-renderer-backgrounding",
		"disable-dev-shm-usage",
	} {
		l = l.Set(flags.Flag(flag))
	}
	if bm.bin != "" {
		l = l.Bin(bm.bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	var once sync.Once
	var stopErr error
	return &instance{
		browser: browser,
		pid:     l.PID(),
		stop: func() error {
			once.Do(func() {
				stopErr = browser.Close()
				l.Kill()
			})
			return stopErr
		},
	}, nil
}
