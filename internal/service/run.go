package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"leilauto/internal/domain"
	"leilauto/internal/normalizer"
)

// ErrRunInProgress is returned when a run is requested while another one is
// still executing. Runs never queue; the caller retries later.
var ErrRunInProgress = errors.New("scraping run already in progress")

// RunService orchestrates one full scraping cycle: each registered adapter
// in sequence, each one fetched, normalized and reconciled independently so
// a broken site cannot take the others down with it.
type RunService struct {
	adapters       []Adapter
	auctioneers    AuctioneerStore
	reconciler     *Reconciler
	publisher      Publisher
	logger         *slog.Logger
	adapterTimeout time.Duration

	running atomic.Bool

	mu         sync.Mutex
	state      domain.RunState
	lastReport *domain.RunReport
}

func NewRunService(
	adapters []Adapter,
	auctioneers AuctioneerStore,
	reconciler *Reconciler,
	publisher Publisher,
	logger *slog.Logger,
	adapterTimeout time.Duration,
) *RunService {
	return &RunService{
		adapters:       adapters,
		auctioneers:    auctioneers,
		reconciler:     reconciler,
		publisher:      publisher,
		logger:         logger,
		adapterTimeout: adapterTimeout,
		state:          domain.RunIdle,
	}
}

// Run executes one scraping cycle and returns its report. At most one run
// executes at a time: a second caller gets ErrRunInProgress immediately
// instead of blocking.
func (s *RunService) Run(ctx context.Context) (*domain.RunReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	s.setState(domain.RunRunning)
	start := time.Now()

	s.logger.Info("starting scraping run", "adapters", len(s.adapters))

	report := &domain.RunReport{
		Success:   true,
		Timestamp: start.UTC(),
		Results:   make([]domain.SourceResult, 0, len(s.adapters)),
	}

	for _, adapter := range s.adapters {
		result := s.runSource(ctx, adapter)
		report.Results = append(report.Results, result)

		report.Summary.TotalScraped += result.Scraped
		report.Summary.TotalCreated += result.Created
		report.Summary.TotalUpdated += result.Updated
		report.Summary.TotalErrors += result.Errors
		if !result.Success {
			report.Success = false
		}
	}

	report.Summary.TotalAuctioneers = len(s.adapters)
	report.ExecutionTimeMs = time.Since(start).Milliseconds()

	if report.Success {
		s.setState(domain.RunCompleted)
	} else {
		s.setState(domain.RunFailed)
	}
	s.storeReport(report)

	if s.publisher != nil {
		if err := s.publisher.PublishReport(ctx, report); err != nil {
			s.logger.Error("publish run report failed", "error", err)
		}
	}

	s.logger.Info("scraping run finished",
		"success", report.Success,
		"scraped", report.Summary.TotalScraped,
		"created", report.Summary.TotalCreated,
		"updated", report.Summary.TotalUpdated,
		"errors", report.Summary.TotalErrors,
		"duration_ms", report.ExecutionTimeMs,
	)

	return report, nil
}

// runSource handles one adapter end to end. Failures are contained here:
// the result reports them, the run moves on to the next source.
func (s *RunService) runSource(ctx context.Context, adapter Adapter) domain.SourceResult {
	start := time.Now()
	logger := s.logger.With("source", adapter.ID())
	result := domain.SourceResult{Auctioneer: adapter.Name()}

	defer func() {
		result.ExecutionTimeMs = time.Since(start).Milliseconds()
	}()

	auctioneer, err := s.auctioneers.GetByName(ctx, adapter.Name())
	if err != nil {
		logger.Error("auctioneer not registered", "error", err)
		result.Errors++
		return result
	}

	norm, err := normalizer.New(adapter.BaseURL(), logger)
	if err != nil {
		logger.Error("invalid source base url", "error", err)
		result.Errors++
		return result
	}

	fetchCtx := ctx
	if s.adapterTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.adapterTimeout)
		defer cancel()
	}

	listings, err := adapter.FetchListings(fetchCtx)
	if err != nil {
		logger.Error("fetch failed", "error", err)
		result.Errors++
		return result
	}
	result.Scraped = len(listings)

	scrapedAt := time.Now().UTC()
	batch := make([]*domain.Vehicle, 0, len(listings))
	for _, raw := range listings {
		v, err := norm.Normalize(raw, auctioneer.ID, scrapedAt)
		if err != nil {
			logger.Warn("dropping listing", "title", raw.Title, "error", err)
			result.Errors++
			continue
		}
		batch = append(batch, v)
	}

	stats := s.reconciler.Apply(ctx, auctioneer.ID, batch)
	result.Created = stats.Created
	result.Updated = stats.Updated
	result.Errors += stats.Errors
	result.Success = true

	logger.Info("source reconciled",
		"scraped", result.Scraped,
		"created", stats.Created,
		"updated", stats.Updated,
		"deactivated", stats.Deactivated,
		"errors", result.Errors,
	)

	return result
}

// Status reports the current lifecycle state and the last finished report.
// The report may be nil before the first run completes.
func (s *RunService) Status() (domain.RunState, *domain.RunReport) {
	if s.running.Load() {
		return domain.RunRunning, s.loadReport()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.lastReport
}

func (s *RunService) setState(state domain.RunState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *RunService) storeReport(report *domain.RunReport) {
	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()
}

func (s *RunService) loadReport() *domain.RunReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport
}
