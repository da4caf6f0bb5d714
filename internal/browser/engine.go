package browser

import (
	"context"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
)

// Engine owns one headless Chrome instance. It is created for a single
// indexing run and must be closed exactly once when the run ends; page
// contexts opened through Render are released individually.
type Engine struct {
	browserCtx  context.Context
	cancelAlloc context.CancelFunc
	cancelCtx   context.CancelFunc
	pageTimeout time.Duration
}

// NewEngine starts a headless browser. The returned engine stays alive until
// Close; ctx only bounds startup.
func NewEngine(ctx context.Context, pageTimeout time.Duration) (*Engine, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(),
		chromedp.DefaultExecAllocatorOptions[:]...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	// Launch now so startup failures surface here, not on the first page.
	startCtx, cancel := context.WithTimeout(browserCtx, pageTimeout)
	defer cancel()
	if err := chromedp.Run(startCtx); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, err
	}

	slog.DebugContext(ctx, "browser engine started")
	return &Engine{
		browserCtx:  browserCtx,
		cancelAlloc: cancelAlloc,
		cancelCtx:   cancelCtx,
		pageTimeout: pageTimeout,
	}, nil
}

// Render opens a new tab and navigates it to url. The caller must Close the
// returned page; Render itself releases the tab when navigation fails.
func (e *Engine) Render(ctx context.Context, url string) (*Page, error) {
	tabCtx, cancelTab := chromedp.NewContext(e.browserCtx)

	navCtx, cancel := context.WithTimeout(tabCtx, e.pageTimeout)
	defer cancel()

	if err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		cancelTab()
		return nil, err
	}

	return &Page{ctx: tabCtx, cancel: cancelTab, timeout: e.pageTimeout, url: url}, nil
}

func (e *Engine) Close() {
	e.cancelCtx()
	e.cancelAlloc()
}
