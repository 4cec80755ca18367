package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"labFinder/pkg/scraper"
)

const (
	labListSelector = `.content > .inline-block-right > ul`
	todaySelector   = `.today`
	endSelector     = `.date-display-end`
)

// Options configure the browser
type Options struct {
	// BaseURL resolves relative lab links; CalendarURL is used when empty
	BaseURL         string
	CalendarURL     string
	MaxRetries      int
	PageTimeout     time.Duration
	RequestInterval time.Duration
}

// Browser handles the Chrome automation. It implements scraper.Source.
type Browser struct {
	allocCtx      context.Context
	cancelAlloc   context.CancelFunc
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	started       bool

	opts    Options
	limiter *rate.Limiter
	logger  *zap.Logger
}

var _ scraper.Source = (*Browser)(nil)

// New creates a new browser instance. Chrome is launched on first use.
func New(opts Options, logger *zap.Logger) *Browser {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = time.Minute
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(1920, 1080),
		chromedp.NoSandbox,
		chromedp.Headless,
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(browserLogf(logger)))

	limit := rate.Inf
	if opts.RequestInterval > 0 {
		limit = rate.Every(opts.RequestInterval)
	}

	return &Browser{
		allocCtx:      allocCtx,
		cancelAlloc:   cancelAlloc,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		opts:          opts,
		limiter:       rate.NewLimiter(limit, 1),
		logger:        logger,
	}
}

// Close closes the browser and its allocator
func (b *Browser) Close() {
	b.cancelBrowser()
	b.cancelAlloc()
}

// browserLogf only passes through critical browser errors
func browserLogf(logger *zap.Logger) func(string, ...interface{}) {
	return func(format string, args ...interface{}) {
		msg := fmt.Sprintf(format, args...)
		if (strings.Contains(msg, "error") || strings.Contains(msg, "failed")) &&
			!strings.Contains(msg, "cookiePart") &&
			!strings.Contains(msg, "unmarshal event") {
			logger.Debug("browser", zap.String("msg", msg))
		}
	}
}

// tab opens a new tab that is closed when ctx is done or the returned cancel is called
func (b *Browser) tab(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if !b.started {
		if err := chromedp.Run(b.browserCtx); err != nil {
			return nil, nil, fmt.Errorf("failed to start browser: %w", err)
		}
		b.started = true
	}

	tabCtx, cancel := chromedp.NewContext(b.browserCtx)
	stop := context.AfterFunc(ctx, cancel)
	return tabCtx, func() {
		stop()
		cancel()
	}, nil
}

// load navigates to pageURL, retrying with quadratic backoff, then runs actions
func (b *Browser) load(ctx, tabCtx context.Context, pageURL string, actions ...chromedp.Action) error {
	var err error
	for retry := 0; retry < b.opts.MaxRetries; retry++ {
		if retry > 0 {
			backoffDuration := time.Duration(retry*retry) * time.Second
			b.logger.Warn("retrying page load",
				zap.String("url", pageURL),
				zap.Int("attempt", retry+1),
				zap.Int("max_retries", b.opts.MaxRetries),
				zap.Duration("backoff", backoffDuration),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoffDuration):
			}
		}

		if err = b.limiter.Wait(ctx); err != nil {
			return err
		}

		pageCtx, cancel := context.WithTimeout(tabCtx, b.opts.PageTimeout)
		err = chromedp.Run(pageCtx, append([]chromedp.Action{chromedp.Navigate(pageURL)}, actions...)...)
		cancel()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		b.logger.Warn("page load timed out", zap.String("url", pageURL))
	}
	return fmt.Errorf("failed to load %s after %d retries: %w", pageURL, b.opts.MaxRetries, err)
}

type labLink struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

// Labs fetches all the visible lab rooms
func (b *Browser) Labs(ctx context.Context) ([]scraper.Lab, error) {
	tabCtx, cancel, err := b.tab(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var links []labLink
	if err := b.load(ctx, tabCtx, b.opts.CalendarURL,
		chromedp.WaitReady(labListSelector, chromedp.ByQuery),
		chromedp.Evaluate(labListScript(), &links),
	); err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("no lab rooms found at %s", b.opts.CalendarURL)
	}

	return b.labsFromLinks(links)
}

// linkBase returns the URL relative lab links are resolved against
func (b *Browser) linkBase() string {
	if b.opts.BaseURL != "" {
		return b.opts.BaseURL
	}
	return b.opts.CalendarURL
}

func (b *Browser) labsFromLinks(links []labLink) ([]scraper.Lab, error) {
	labs := make([]scraper.Lab, 0, len(links))
	for _, link := range links {
		labURL, err := resolveURL(b.linkBase(), link.Href)
		if err != nil {
			return nil, fmt.Errorf("lab %q: %w", link.Name, err)
		}
		labs = append(labs, scraper.Lab{Name: link.Name, URL: labURL})
	}
	return labs, nil
}

type todayCell struct {
	Found bool                 `json:"found"`
	Rows  []scraper.RawBooking `json:"rows"`
}

// Bookings fetches today's bookings of a lab room, in calendar order.
// End times are read from each booking's own page since the calendar does not list them.
func (b *Browser) Bookings(ctx context.Context, lab scraper.Lab) ([]scraper.RawBooking, error) {
	tabCtx, cancel, err := b.tab(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var cell todayCell
	if err := b.load(ctx, tabCtx, lab.URL,
		chromedp.WaitReady(`body`, chromedp.ByQuery),
		chromedp.Evaluate(todayScript(), &cell),
	); err != nil {
		return nil, err
	}
	if !cell.Found {
		return nil, fmt.Errorf("no %s cell on the calendar of %s", todaySelector, lab.Name)
	}

	bookings := make([]scraper.RawBooking, 0, len(cell.Rows))
	for _, row := range cell.Rows {
		bookingURL, err := resolveURL(lab.URL, row.URL)
		if err != nil {
			return nil, fmt.Errorf("booking %q: %w", row.Name, err)
		}
		row.URL = bookingURL

		if err := b.load(ctx, tabCtx, row.URL,
			chromedp.WaitReady(`body`, chromedp.ByQuery),
			chromedp.Evaluate(endTimeScript(), &row.EndText),
		); err != nil {
			return nil, fmt.Errorf("booking %q: %w", row.Name, err)
		}

		b.logger.Debug("booking found",
			zap.String("room", lab.Name),
			zap.String("name", row.Name),
			zap.String("start", row.StartText),
			zap.String("end", row.EndText))
		bookings = append(bookings, row)
	}
	return bookings, nil
}

func resolveURL(base, href string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("invalid link %q: %w", href, err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}
