package render

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"
)

var ErrRendererUnavailable = errors.New("pdf renderer unavailable")

// ChromiumConverter prints HTML to PDF with a headless Chromium kept open
// for the life of the process.
type ChromiumConverter struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
}

func NewChromiumConverter() (*ChromiumConverter, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	return &ChromiumConverter{pw: pw, browser: browser}, nil
}

func (c *ChromiumConverter) HTMLToPDF(ctx context.Context, html string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	browser := c.browser
	c.mu.Unlock()
	if browser == nil {
		return nil, ErrRendererUnavailable
	}

	page, err := browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	if err := page.SetContent(html, playwright.PageSetContentOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		return nil, fmt.Errorf("set page content: %w", err)
	}

	pdf, err := page.PDF(playwright.PagePdfOptions{
		Format:          playwright.String("A4"),
		Landscape:       playwright.Bool(true),
		PrintBackground: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return pdf, nil
}

func (c *ChromiumConverter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.browser != nil {
		errs = append(errs, c.browser.Close())
		c.browser = nil
	}
	if c.pw != nil {
		errs = append(errs, c.pw.Stop())
		c.pw = nil
	}
	return errors.Join(errs...)
}
