package domain

import "time"

// RunState is the lifecycle of the scraping orchestrator.
type RunState string

const (
	RunIdle      RunState = "idle"
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
	RunFailed    RunState = "failed"
)

// SourceResult holds the outcome of one auctioneer within a run.
type SourceResult struct {
	Auctioneer      string `json:"auctioneer"`
	Success         bool   `json:"success"`
	Scraped         int    `json:"scraped"`
	Created         int    `json:"created"`
	Updated         int    `json:"updated"`
	Errors          int    `json:"errors"`
	ExecutionTimeMs int64  `json:"executionTimeMs"`
}

// RunSummary aggregates the per-source results of a run.
type RunSummary struct {
	TotalAuctioneers int `json:"totalAuctioneers"`
	TotalScraped     int `json:"totalScraped"`
	TotalCreated     int `json:"totalCreated"`
	TotalUpdated     int `json:"totalUpdated"`
	TotalErrors      int `json:"totalErrors"`
}

// RunReport is the structured result handed back to whatever triggered the
// run. Success means every source succeeded; a partially failed run still
// carries the results of the sources that worked.
type RunReport struct {
	Success         bool           `json:"success"`
	Timestamp       time.Time      `json:"timestamp"`
	ExecutionTimeMs int64          `json:"executionTimeMs"`
	Summary         RunSummary     `json:"summary"`
	Results         []SourceResult `json:"results"`
}

// ReconcileStats counts what one source's batch did to the store.
type ReconcileStats struct {
	Created     int
	Updated     int
	Deactivated int
	Errors      int
}
