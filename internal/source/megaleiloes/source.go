// Package megaleiloes scrapes the server-rendered Mega Leilões vehicle
// listing pages.
package megaleiloes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"leilauto/internal/source"
)

const (
	SourceID   = "megaleiloes"
	SourceName = "Mega Leilões"

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config holds Mega Leilões adapter configuration.
type Config struct {
	BaseURL  string
	MaxPages int
	Timeout  time.Duration
}

// Adapter extracts vehicle lots from the site's card markup.
type Adapter struct {
	httpClient *http.Client
	baseURL    string
	maxPages   int
	logger     *slog.Logger
}

// New creates a Mega Leilões adapter.
func New(cfg Config, logger *slog.Logger) *Adapter {
	return &Adapter{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		maxPages:   cfg.MaxPages,
		logger:     logger.With("source", SourceID),
	}
}

func (a *Adapter) ID() string      { return SourceID }
func (a *Adapter) Name() string    { return SourceName }
func (a *Adapter) BaseURL() string { return a.baseURL }

// FetchListings walks the paginated vehicle section, only auctions still to
// come (the site's "proximos" filter). A navigation failure aborts this
// adapter; a single bad card is skipped.
func (a *Adapter) FetchListings(ctx context.Context) ([]source.RawListing, error) {
	var all []source.RawListing

	for page := 1; page <= a.maxPages; page++ {
		pageURL := fmt.Sprintf("%s/veiculos?status=proximos&pagina=%d", a.baseURL, page)

		doc, err := a.fetchDocument(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		listings, hasNext := a.parsePage(doc)
		all = append(all, listings...)

		a.logger.Debug("parsed page",
			"page", page,
			"listings", len(listings),
			"total", len(all),
		)

		if !hasNext || len(listings) == 0 {
			break
		}
	}

	return all, nil
}

func (a *Adapter) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// parsePage extracts listing cards from one result page and reports whether
// a next page link exists.
func (a *Adapter) parsePage(doc *goquery.Document) ([]source.RawListing, bool) {
	var listings []source.RawListing

	doc.Find("div.card-lote").Each(func(_ int, card *goquery.Selection) {
		raw, err := a.parseCard(card)
		if err != nil {
			a.logger.Warn("skipping card", "error", err)
			return
		}
		listings = append(listings, raw)
	})

	hasNext := doc.Find("ul.pagination a[rel='next']").Length() > 0
	return listings, hasNext
}

func (a *Adapter) parseCard(card *goquery.Selection) (source.RawListing, error) {
	link, _ := card.Find("a.card-lote-link").Attr("href")
	title := strings.TrimSpace(card.Find("h3.card-lote-title").Text())
	if link == "" || title == "" {
		return source.RawListing{}, fmt.Errorf("card missing link or title (title=%q)", title)
	}

	raw := source.RawListing{
		Title:           title,
		DetailURL:       link,
		ExternalID:      card.AttrOr("data-lote-id", ""),
		LotNumber:       strings.TrimSpace(card.Find("span.card-lote-numero").Text()),
		LocationText:    strings.TrimSpace(card.Find("div.card-lote-local").Text()),
		AuctionTypeText: strings.TrimSpace(card.Find("span.card-lote-modalidade").Text()),
		VehicleTypeText: strings.TrimSpace(card.Find("span.card-lote-categoria").Text()),
		CurrentBid:      source.ParseMoney(card.Find("span.card-lote-lance-atual").Text()),
		MinimumBid:      source.ParseMoney(card.Find("span.card-lote-lance-inicial").Text()),
		AppraisedValue:  source.ParseMoney(card.Find("span.card-lote-avaliacao").Text()),
		Mileage:         source.ParseInt(card.Find("span.card-lote-km").Text()),
	}

	if img, ok := card.Find("img.card-lote-foto").Attr("src"); ok {
		raw.ThumbURL = img
	}

	if badge := strings.ToLower(card.Find("span.card-lote-badge").Text()); strings.Contains(badge, "financi") {
		raw.HasFinancing = true
	}

	if dateText, ok := card.Find("time.card-lote-data").Attr("datetime"); ok {
		when, err := time.Parse(time.RFC3339, strings.TrimSpace(dateText))
		if err != nil {
			a.logger.Warn("failed to parse auction date", "date", dateText, "title", title)
		} else {
			raw.AuctionDate = &when
		}
	}

	return raw, nil
}
