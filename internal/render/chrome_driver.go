package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/ourlovestory/scrapbook/pkg/logger"
)

// A4 landscape paper size in inches. The surface bakes in its own 40px
// padding, so the print margins stay at zero.
const (
	paperWidthIn  = 11.69
	paperHeightIn = 8.27
)

// ChromeDriver rasterizes the render surface with a headless Chromium
// instance via the DevTools protocol. One instance per export; the driver
// itself holds no per-export state and is safe for concurrent use.
type ChromeDriver struct {
	// NavigationTimeout bounds page load; generous because the surface
	// may be cold-starting.
	NavigationTimeout time.Duration
	// ReadyTimeout bounds the wait for the pdf-ready signal. Soft: on
	// expiry the driver proceeds with whatever has rendered.
	ReadyTimeout time.Duration
	// SettleDelay is a short fixed pause after readiness so we don't
	// capture a mid-paint frame.
	SettleDelay time.Duration
}

func NewChromeDriver() *ChromeDriver {
	return &ChromeDriver{
		NavigationTimeout: 120 * time.Second,
		ReadyTimeout:      30 * time.Second,
		SettleDelay:       3 * time.Second,
	}
}

func (d *ChromeDriver) RenderPDF(ctx context.Context, url string, observe func(State)) ([]byte, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	observe(StateBrowserLaunched)

	navCtx, cancelNav := context.WithTimeout(browserCtx, d.NavigationTimeout)
	defer cancelNav()
	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	observe(StatePageLoaded)

	observe(StateAwaitingReady)
	var ready bool
	err := chromedp.Run(browserCtx, chromedp.Poll("window.pdfReady === true", &ready,
		chromedp.WithPollingInterval(200*time.Millisecond),
		chromedp.WithPollingTimeout(d.ReadyTimeout)))
	if err != nil {
		if !errors.Is(err, chromedp.ErrPollingTimeout) {
			return nil, fmt.Errorf("await ready signal: %w", err)
		}
		// a partially-loaded export beats no export
		logger.Warnf("timed out waiting for pdf-ready, proceeding anyway")
	}
	observe(StateReady)

	// let web fonts finish and give layout a moment to settle
	var fontsLoaded bool
	if err := chromedp.Run(browserCtx,
		chromedp.Evaluate(`document.fonts.ready.then(() => true)`, &fontsLoaded,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
				return p.WithAwaitPromise(true)
			}),
		chromedp.Sleep(d.SettleDelay),
	); err != nil {
		logger.Warnf("font readiness wait failed: %v", err)
	}

	var pdf []byte
	err = chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		buf, _, err := page.PrintToPDF().
			WithLandscape(true).
			WithPrintBackground(true).
			WithPreferCSSPageSize(false).
			WithPaperWidth(paperWidthIn).
			WithPaperHeight(paperHeightIn).
			WithMarginTop(0).
			WithMarginBottom(0).
			WithMarginLeft(0).
			WithMarginRight(0).
			Do(ctx)
		if err != nil {
			return err
		}
		pdf = buf
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	observe(StateRasterized)
	return pdf, nil
}
