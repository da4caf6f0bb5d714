package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

const linksJS = `Array.from(document.querySelectorAll('a[href]')).map(a => a.href)`

// Page is one rendered browser tab. Close releases the tab; it is safe to
// call once per page and must always be called.
type Page struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	url     string
}

func (p *Page) URL() string { return p.url }

// HTML returns the serialized DOM after rendering, scripts applied.
func (p *Page) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	var raw string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &raw, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return raw, nil
}

// Links returns every hyperlink target on the page as resolved by the
// browser, absolute URLs included for relative hrefs.
func (p *Page) Links(ctx context.Context) ([]string, error) {
	runCtx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	var links []string
	if err := chromedp.Run(runCtx, chromedp.Evaluate(linksJS, &links)); err != nil {
		return nil, err
	}
	return links, nil
}

func (p *Page) Close() {
	p.cancel()
}
