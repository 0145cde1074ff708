package rod

import "github.com/go-rod/rod"

// NewStubBrowserManager returns a BrowserManager whose browsers come from
// launch instead of a Chrome process. Launched browsers get PIDs 1, 2, ...
func NewStubBrowserManager(maxPages int64, launch func() (*rod.Browser, func() error, error)) (*BrowserManager, error) {
	pid := 0
	bm := &BrowserManager{maxPages: maxPages}
	bm.launch = func() (*instance, error) {
		browser, stop, err := launch()
		if err != nil {
			return nil, err
		}
		pid++
		return &instance{browser: browser, pid: pid, stop: stop}, nil
	}
	if err := bm.start(); err != nil {
		return nil, err
	}
	return bm, nil
}
