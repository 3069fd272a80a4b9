// Package browser owns the shared headless Chrome instance of the
// render daemon. Pages are rendered in short-lived tabs over one
// long-lived browser process.
package browser

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"

	cdpopts "github.com/tenderdesk/parser/pkg/chromedp"
	"github.com/tenderdesk/parser/pkg/logger"
)

const profileDir = "/data/browser-profile"

var (
	global *Browser
	mu     sync.Mutex
)

// Browser is the process-wide browser singleton. The semaphore bounds
// concurrent tabs; the limiter paces tab creation so a burst of render
// requests does not stampede the target site.
type Browser struct {
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	semaphore     chan struct{}
	limiter       *rate.Limiter
	pageLoadDelay time.Duration
}

// Init starts the global browser. Must be called once at startup.
func Init(ctx context.Context, pageLoadDelay time.Duration, maxTabs int, tabsPerSecond float64) error {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return fmt.Errorf("browser already initialized")
	}

	if maxTabs < 1 {
		maxTabs = 10
	}
	if tabsPerSecond <= 0 {
		tabsPerSecond = 2
	}

	if err := os.MkdirAll(profileDir, 0755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}

	opts := cdpopts.ExecAllocatorOptions()
	opts = append(opts, chromedp.UserDataDir(profileDir))

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		allocCancel()
		return fmt.Errorf("start browser: %w", err)
	}

	global = &Browser{
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		semaphore:     make(chan struct{}, maxTabs),
		limiter:       rate.NewLimiter(rate.Limit(tabsPerSecond), 1),
		pageLoadDelay: pageLoadDelay,
	}

	logger.Log.Info().
		Str("profile", profileDir).
		Int("max_tabs", maxTabs).
		Float64("tabs_per_second", tabsPerSecond).
		Dur("page_load_delay", pageLoadDelay).
		Msg("global browser initialized")
	return nil
}

// Get returns the global browser. Panics if Init was not called.
func Get() *Browser {
	mu.Lock()
	defer mu.Unlock()

	if global == nil {
		panic("browser not initialized, call browser.Init() first")
	}
	return global
}

// IsInitialized reports whether the global browser is up.
func IsInitialized() bool {
	mu.Lock()
	defer mu.Unlock()
	return global != nil
}

// Close shuts down the global browser.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if global == nil {
		return
	}

	if global.browserCancel != nil {
		global.browserCancel()
	}
	if global.allocCancel != nil {
		global.allocCancel()
	}

	logger.Log.Info().Msg("global browser closed")
	global = nil
}

// acquireTab waits for the pacing limiter and a free tab slot.
func (b *Browser) acquireTab(ctx context.Context) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	select {
	case b.semaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Browser) releaseTab() {
	<-b.semaphore
}
