// Package superbid scrapes the Superbid lot search JSON API.
package superbid

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"leilauto/internal/source"
)

const (
	SourceID   = "superbid"
	SourceName = "Superbid"
)

// Config holds Superbid adapter configuration.
type Config struct {
	BaseURL        string
	PageSize       int
	MaxPages       int
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Adapter fetches vehicle lots from the Superbid API.
type Adapter struct {
	httpClient     *http.Client
	baseURL        string
	pageSize       int
	maxPages       int
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

// New creates a Superbid adapter.
func New(cfg Config, logger *slog.Logger) *Adapter {
	return &Adapter{
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		baseURL:        cfg.BaseURL,
		pageSize:       cfg.PageSize,
		maxPages:       cfg.MaxPages,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("source", SourceID),
		now:            time.Now,
	}
}

func (a *Adapter) ID() string      { return SourceID }
func (a *Adapter) Name() string    { return SourceName }
func (a *Adapter) BaseURL() string { return a.baseURL }

// FetchListings pages through the lot search API, restricted to auctions
// that have not happened yet. A page-level failure aborts the fetch and
// surfaces the error; lots gathered so far are discarded by the caller.
func (a *Adapter) FetchListings(ctx context.Context) ([]source.RawListing, error) {
	var all []Lot

	for page := 0; page < a.maxPages; page++ {
		resp, err := a.fetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		all = append(all, resp.Lots...)

		a.logger.Debug("fetched page",
			"page", page,
			"lots", len(resp.Lots),
			"total", len(all),
		)

		if page >= resp.PageInfo.NumPages-1 {
			break
		}
	}

	return a.transform(all), nil
}

func (a *Adapter) fetchPage(ctx context.Context, page int) (*APIResponse, error) {
	q := url.Values{}
	q.Set("pageSize", fmt.Sprint(a.pageSize))
	q.Set("page", fmt.Sprint(page))
	q.Set("category", "veiculos")
	q.Set("auctionDateFrom", a.now().UTC().Format("2006-01-02"))
	endpoint := fmt.Sprintf("%s/api/lots/search?%s", a.baseURL, q.Encode())

	var resp *APIResponse
	var err error

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		resp, err = a.doRequest(ctx, endpoint)
		if err == nil {
			return resp, nil
		}

		if attempt == a.maxAttempts {
			break
		}

		backoff := a.calculateBackoff(attempt)
		a.logger.Warn("request failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", a.maxAttempts, err)
}

func (a *Adapter) doRequest(ctx context.Context, endpoint string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "leilauto/1.0")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var apiResp APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &apiResp, nil
}

func (a *Adapter) calculateBackoff(attempt int) time.Duration {
	backoff := a.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > a.maxBackoff {
		backoff = a.maxBackoff
	}
	return backoff
}

func (a *Adapter) transform(lots []Lot) []source.RawListing {
	listings := make([]source.RawListing, 0, len(lots))

	for _, lot := range lots {
		if lot.Title == "" || (lot.ID == "" && lot.DetailURL == "") {
			a.logger.Warn("skipping lot without identity", "lot_number", lot.LotNumber)
			continue
		}

		raw := source.RawListing{
			ExternalID:      lot.ID,
			Title:           lot.Title,
			DetailURL:       lot.DetailURL,
			ThumbURL:        lot.PhotoURL,
			LotNumber:       lot.LotNumber,
			CurrentBid:      lot.CurrentBid,
			MinimumBid:      lot.MinimumBid,
			AppraisedValue:  lot.AppraisedValue,
			HasFinancing:    lot.AcceptsFinancing,
			City:            lot.City,
			State:           lot.State,
			AuctionTypeText: lot.Modality,
			VehicleTypeText: lot.Category,
		}

		if lot.AuctionDate != "" {
			when, err := time.Parse(time.RFC3339, lot.AuctionDate)
			if err != nil {
				a.logger.Warn("failed to parse auction date",
					"external_id", lot.ID,
					"date", lot.AuctionDate,
				)
			} else {
				raw.AuctionDate = &when
			}
		}

		if lot.Vehicle != nil {
			raw.Brand = lot.Vehicle.Brand
			raw.Model = lot.Vehicle.Model
			raw.Version = lot.Vehicle.Version
			raw.YearModel = lot.Vehicle.YearModel
			raw.YearManufacture = lot.Vehicle.YearManufacture
			raw.Mileage = lot.Vehicle.Mileage
			raw.Color = lot.Vehicle.Color
			raw.FuelType = lot.Vehicle.FuelType
			raw.Transmission = lot.Vehicle.Transmission
			raw.Condition = lot.Vehicle.Condition
		}

		listings = append(listings, raw)
	}

	return listings
}
