// Package api exposes the admin surface: trigger a scraping run, inspect
// the last run, query the stored vehicles. No auth; this listens on an
// internal port.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"leilauto/internal/domain"
	"leilauto/internal/service"
	"leilauto/internal/storage/postgres"
)

// Runner is the orchestrator surface the API drives.
type Runner interface {
	Run(ctx context.Context) (*domain.RunReport, error)
	Status() (domain.RunState, *domain.RunReport)
}

// VehicleSearcher serves the read side.
type VehicleSearcher interface {
	Search(ctx context.Context, f postgres.SearchFilter) ([]domain.Vehicle, error)
}

type Server struct {
	runner   Runner
	vehicles VehicleSearcher
	logger   *slog.Logger
}

func NewServer(runner Runner, vehicles VehicleSearcher, logger *slog.Logger) *Server {
	return &Server{
		runner:   runner,
		vehicles: vehicles,
		logger:   logger,
	}
}

func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/scraping/run", s.handleRun).Methods(http.MethodPost)
	r.HandleFunc("/api/scraping/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/vehicles", s.handleVehicles).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	return r
}

// handleRun triggers a run and blocks until it finishes, returning the full
// report. A run already in flight yields 409, never a queued second run.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	report, err := s.runner.Run(r.Context())
	if errors.Is(err, service.ErrRunInProgress) {
		s.writeJSON(w, http.StatusConflict, map[string]string{
			"error": "scraping run already in progress",
		})
		return
	}
	if err != nil {
		s.logger.Error("run failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "scraping run failed",
		})
		return
	}

	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	state, last := s.runner.Status()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"state":      state,
		"lastReport": last,
	})
}

func (s *Server) handleVehicles(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSearchFilter(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	vehicles, err := s.vehicles.Search(r.Context(), filter)
	if err != nil {
		s.logger.Error("vehicle search failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "search failed",
		})
		return
	}
	if vehicles == nil {
		vehicles = []domain.Vehicle{}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(vehicles),
		"vehicles": vehicles,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseSearchFilter(r *http.Request) (postgres.SearchFilter, error) {
	q := r.URL.Query()
	filter := postgres.SearchFilter{
		OnlyActive: q.Get("include_inactive") != "true",
		OrderBy:    q.Get("order_by"),
		Desc:       q.Get("order") != "asc",
	}

	if v := q.Get("auctioneer_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, errors.New("invalid auctioneer_id")
		}
		filter.AuctioneerID = &id
	}
	if v := q.Get("brand"); v != "" {
		filter.Brand = &v
	}
	if v := q.Get("model"); v != "" {
		filter.Model = &v
	}
	if v := q.Get("state"); v != "" {
		state := strings.ToUpper(v)
		filter.State = &state
	}
	if v := q.Get("vehicle_type"); v != "" {
		vt := domain.VehicleType(v)
		filter.VehicleType = &vt
	}
	if v := q.Get("auction_type"); v != "" {
		at := domain.AuctionType(v)
		filter.AuctionType = &at
	}
	if v := q.Get("min_score"); v != "" {
		score, err := strconv.Atoi(v)
		if err != nil {
			return filter, errors.New("invalid min_score")
		}
		filter.MinScore = &score
	}
	if v := q.Get("max_bid"); v != "" {
		bid, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, errors.New("invalid max_bid")
		}
		filter.MaxBid = &bid
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return filter, errors.New("invalid limit")
		}
		filter.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return filter, errors.New("invalid offset")
		}
		filter.Offset = offset
	}

	return filter, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("write response failed", "error", err)
	}
}
