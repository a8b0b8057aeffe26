package anwb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"lease-scraper/config"
	"lease-scraper/models"
	"lease-scraper/utils"
)

const offerPathMarker = "/auto/private-lease/anwb-private-lease/aanbod/"

// collectOfferLinksJS gathers the detail-page links currently present on
// the listing page, skipping the listing page itself and navigation links.
const collectOfferLinksJS = `
(function() {
	var links = document.querySelectorAll('a[href*="` + offerPathMarker + `"]');
	var seen = {};
	var urls = [];
	for (var i = 0; i < links.length; i++) {
		var href = links[i].href;
		if (!href || seen[href]) continue;
		if (href.indexOf('aanbod=new') !== -1 || href.indexOf('begin-bij') !== -1) continue;
		if (href.split('/').length < 7) continue;
		seen[href] = true;
		urls.push(href);
	}
	return urls;
})()
`

// clickLoadMoreJS clicks the "Laad de volgende 15 resultaten" button if it
// is still on the page.
const clickLoadMoreJS = `
(function() {
	var buttons = Array.prototype.slice.call(document.querySelectorAll('button'));
	for (var i = 0; i < buttons.length; i++) {
		if (buttons[i].textContent.indexOf('Laad de volgende') !== -1) {
			buttons[i].scrollIntoView({block: 'center'});
			buttons[i].click();
			return true;
		}
	}
	return false;
})()
`

// Scraper drives the ANWB private-lease crawl: discover all offer URLs by
// clicking through the listing page, then fetch each detail page and hand
// the parsed raw tuples back to the caller.
type Scraper struct {
	cfg     *config.Config
	logger  *utils.Logger
	pool    *utils.WorkerPool
	visited *utils.URLSet
	retry   *utils.RetryConfig

	mu        sync.Mutex
	offers    []*models.RawOffer
	processed int
	failed    int
}

// New creates a ready-to-use ANWB Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:     cfg,
		logger:  logger,
		pool:    utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		visited: utils.NewURLSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Scrape runs one full crawl and returns the raw offers in discovery order.
func (s *Scraper) Scrape() ([]*models.RawOffer, error) {
	chromeBin := findChromeBinary(s.cfg.ChromeBin)
	s.logger.Info("[anwb] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	urls, err := s.collectOfferURLs(browserCtx)
	if err != nil {
		return nil, fmt.Errorf("collect offer urls: %w", err)
	}
	if len(urls) == 0 {
		return nil, errors.New("listing page yielded no offer URLs")
	}
	s.logger.Info("[anwb] Found %d offer URLs", len(urls))

	for _, url := range urls {
		u := url
		if !s.visited.Add(u) {
			continue
		}
		s.pool.Submit(func() {
			raw, err := s.scrapeDetailPage(browserCtx, u)

			s.mu.Lock()
			defer s.mu.Unlock()
			s.processed++
			if err != nil {
				s.failed++
				s.logger.Warn("[anwb] Detail page failed for %s: %v", u, err)
				return
			}
			s.offers = append(s.offers, raw)
		})
	}
	s.pool.Wait()

	s.logger.Info("[anwb] Crawl done — links %d, processed %d, extracted %d, failed %d",
		s.visited.Size(), s.processed, len(s.offers), s.failed)
	return s.offers, nil
}

// collectOfferURLs loads the listing page and keeps clicking the load-more
// button until the link count stops growing or the click budget runs out.
func (s *Scraper) collectOfferURLs(browserCtx context.Context) ([]string, error) {
	var urls []string

	err := s.retry.Do("listing-page", func() error {
		ctx, cancel := context.WithTimeout(browserCtx, 5*time.Minute)
		defer cancel()

		if err := chromedp.Run(ctx,
			chromedp.Navigate(s.cfg.StartURL),
			chromedp.Sleep(5*time.Second),
		); err != nil {
			return fmt.Errorf("navigate listing page: %w", err)
		}

		previous := -1
		for click := 0; click < s.cfg.MaxLoadMoreClicks; click++ {
			if err := chromedp.Run(ctx, chromedp.Evaluate(collectOfferLinksJS, &urls)); err != nil {
				return fmt.Errorf("collect links: %w", err)
			}
			s.logger.Debug("[anwb] Showing %d offers after %d clicks", len(urls), click)

			if len(urls) == previous {
				s.logger.Warn("[anwb] No new offers loaded after click — assuming end of list")
				break
			}
			previous = len(urls)

			var clicked bool
			if err := chromedp.Run(ctx, chromedp.Evaluate(clickLoadMoreJS, &clicked)); err != nil {
				return fmt.Errorf("click load more: %w", err)
			}
			if !clicked {
				break
			}
			if err := chromedp.Run(ctx, chromedp.Sleep(3*time.Second)); err != nil {
				return err
			}
		}

		return chromedp.Run(ctx, chromedp.Evaluate(collectOfferLinksJS, &urls))
	})

	return urls, err
}

// scrapeDetailPage fetches one detail page and parses it into a RawOffer.
// Only the fetch is retried; a page that parses as a non-offer is final.
func (s *Scraper) scrapeDetailPage(browserCtx context.Context, url string) (*models.RawOffer, error) {
	var htmlSrc string

	err := s.retry.Do("detail-page", func() error {
		ctx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
		defer cancelTimeout()

		if err := chromedp.Run(ctx,
			chromedp.Navigate(url),
			chromedp.Sleep(3*time.Second),
			chromedp.OuterHTML("html", &htmlSrc, chromedp.ByQuery),
		); err != nil {
			return fmt.Errorf("chromedp detail fetch: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ParseDetailPage(htmlSrc, url)
}

// findChromeBinary locates the Chrome/Chromium binary, preferring the
// configured path.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
