package rod

import (
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// DefaultMaxPages is the number of rendered pages after which the browser
// process is replaced. Chrome's baseline memory grows with every page even
// when contexts are disposed.
const DefaultMaxPages = 50

// launchFlags keep background pages rendering at full speed inside
// containers.
var launchFlags = []flags.Flag{
	"disable-background-timer-throttling",
	"disable-backgrounding-occluded-windows",
	"disable-renderer-backgrounding",
	"disable-dev-shm-usage",
	"disable-hang-monitor",
}

// BrowserManager owns the headless browser process and replaces it after a
// fixed number of pages. BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	pages    int64
	maxPages int64
	closed   bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets the number of pages before the browser is recycled.
// Values below one disable recycling.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// NewBrowserManager launches a headless browser.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{maxPages: DefaultMaxPages}
	for _, opt := range opts {
		opt(bm)
	}

	b, l, err := launch()
	if err != nil {
		return nil, err
	}
	bm.browser, bm.launcher = b, l
	return bm, nil
}

// Browser returns the current browser, replacing it first when the page
// budget is spent. If the replacement cannot be launched the old browser
// stays in service.
func (bm *BrowserManager) Browser() *rod.Browser {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.maxPages > 0 && bm.pages >= bm.maxPages && !bm.closed {
		if b, l, err := launch(); err == nil {
			_ = bm.browser.Close()
			bm.launcher.Kill()
			bm.browser, bm.launcher = b, l
			bm.pages = 0
		}
	}
	return bm.browser
}

// IncrementPageCount records one rendered page.
func (bm *BrowserManager) IncrementPageCount() {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	bm.pages++
}

// Close shuts down the browser and kills its process.
// Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true

	var err error
	if bm.browser != nil {
		err = bm.browser.Close()
	}
	if bm.launcher != nil {
		bm.launcher.Kill()
	}
	return err
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}

func launch() (*rod.Browser, *launcher.Launcher, error) {
	l := launcher.New().Leakless(true).Headless(true)
	for _, flag := range launchFlags {
		l = l.Set(flag)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launching browser: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return b, l, nil
}
