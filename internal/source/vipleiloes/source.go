// Package vipleiloes scrapes the VIP Leilões site, which renders its lot
// grid client-side and needs a real browser.
package vipleiloes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"leilauto/internal/source"
	"leilauto/internal/source/browser"
)

const (
	SourceID   = "vipleiloes"
	SourceName = "VIP Leilões"
)

// Config holds VIP Leilões adapter configuration.
type Config struct {
	BaseURL     string
	MaxPages    int
	PageTimeout time.Duration
	Browser     browser.Options
}

// Adapter drives a headless browser over the lot grid.
type Adapter struct {
	baseURL     string
	maxPages    int
	pageTimeout time.Duration
	browserOpts browser.Options
	logger      *slog.Logger
}

// New creates a VIP Leilões adapter.
func New(cfg Config, logger *slog.Logger) *Adapter {
	return &Adapter{
		baseURL:     cfg.BaseURL,
		maxPages:    cfg.MaxPages,
		pageTimeout: cfg.PageTimeout,
		browserOpts: cfg.Browser,
		logger:      logger.With("source", SourceID),
	}
}

func (a *Adapter) ID() string      { return SourceID }
func (a *Adapter) Name() string    { return SourceName }
func (a *Adapter) BaseURL() string { return a.baseURL }

// card mirrors what the in-page extraction script returns per lot.
type card struct {
	ExternalID  string `json:"externalId"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	Lot         string `json:"lot"`
	BidText     string `json:"bidText"`
	MinBidText  string `json:"minBidText"`
	Location    string `json:"location"`
	Modality    string `json:"modality"`
	Category    string `json:"category"`
	DateISO     string `json:"dateIso"`
	KmText      string `json:"kmText"`
	Financeable bool   `json:"financeable"`
}

// FetchListings opens one browser session for the whole run of this adapter
// and closes it on every exit path. Per-page navigation gets its own tab
// and timeout; a navigation failure aborts the adapter.
func (a *Adapter) FetchListings(ctx context.Context) ([]source.RawListing, error) {
	allocCtx, cancelAlloc := browser.NewAllocator(ctx, a.browserOpts)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	var all []source.RawListing

	for page := 1; page <= a.maxPages; page++ {
		pageURL := fmt.Sprintf("%s/veiculos/proximos-leiloes?page=%d", a.baseURL, page)

		cards, err := a.scrapePage(browserCtx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("scrape page %d: %w", page, err)
		}
		if len(cards) == 0 {
			break
		}

		for _, c := range cards {
			raw, err := a.toRawListing(c)
			if err != nil {
				a.logger.Warn("skipping card", "error", err, "lot", c.Lot)
				continue
			}
			all = append(all, raw)
		}

		a.logger.Debug("scraped page", "page", page, "cards", len(cards), "total", len(all))
	}

	return all, nil
}

func (a *Adapter) scrapePage(browserCtx context.Context, pageURL string) ([]card, error) {
	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, a.pageTimeout)
	defer cancelTimeout()

	var cards []card
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(3*time.Second),
		chromedp.Evaluate(extractScript, &cards),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp run: %w", err)
	}
	return cards, nil
}

func (a *Adapter) toRawListing(c card) (source.RawListing, error) {
	title := strings.TrimSpace(c.Title)
	if title == "" || (c.URL == "" && c.ExternalID == "") {
		return source.RawListing{}, fmt.Errorf("card missing title or identity (title=%q)", c.Title)
	}

	raw := source.RawListing{
		ExternalID:      c.ExternalID,
		Title:           title,
		DetailURL:       c.URL,
		ThumbURL:        c.Image,
		LotNumber:       strings.TrimSpace(c.Lot),
		LocationText:    c.Location,
		AuctionTypeText: c.Modality,
		VehicleTypeText: c.Category,
		CurrentBid:      source.ParseMoney(c.BidText),
		MinimumBid:      source.ParseMoney(c.MinBidText),
		Mileage:         source.ParseInt(c.KmText),
		HasFinancing:    c.Financeable,
	}

	if c.DateISO != "" {
		when, err := time.Parse(time.RFC3339, c.DateISO)
		if err != nil {
			a.logger.Warn("failed to parse auction date", "date", c.DateISO, "lot", c.Lot)
		} else {
			raw.AuctionDate = &when
		}
	}

	return raw, nil
}

// extractScript walks the rendered lot grid. Selectors track the site's
// markup as of the last adapter revision.
const extractScript = `
(function() {
	var results = [];
	var cards = document.querySelectorAll('div[data-testid="lot-card"], div.lot-card');
	for (var i = 0; i < cards.length; i++) {
		var c = cards[i];
		var link = c.querySelector('a[href*="/lote/"]');
		var title = c.querySelector('.lot-card-title, h3');
		results.push({
			externalId: c.getAttribute('data-lot-id') || '',
			title: title ? title.innerText.trim() : '',
			url: link ? link.href : '',
			image: (c.querySelector('img') || {}).src || '',
			lot: (c.querySelector('.lot-card-number') || {}).innerText || '',
			bidText: (c.querySelector('.lot-card-current-bid') || {}).innerText || '',
			minBidText: (c.querySelector('.lot-card-min-bid') || {}).innerText || '',
			location: (c.querySelector('.lot-card-location') || {}).innerText || '',
			modality: (c.querySelector('.lot-card-modality') || {}).innerText || '',
			category: (c.querySelector('.lot-card-category') || {}).innerText || '',
			dateIso: c.getAttribute('data-auction-date') || '',
			kmText: (c.querySelector('.lot-card-km') || {}).innerText || '',
			financeable: !!c.querySelector('.lot-card-financing')
		});
	}
	return results;
})()
`
