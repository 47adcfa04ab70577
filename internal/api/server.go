package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/armadafleet/fleetsynth/internal/catalog"
	"github.com/armadafleet/fleetsynth/internal/generator"
	"github.com/armadafleet/fleetsynth/internal/models"
	"github.com/armadafleet/fleetsynth/internal/schedule"
	"github.com/gorilla/mux"
)

// Config holds the API server configuration
type Config struct {
	Host      string
	Port      int
	CacheSize int
	Version   string
}

// Server serves the catalog, the schedules and generated series over HTTP
type Server struct {
	config    Config
	catalog   *catalog.Catalog
	schedules *schedule.Registry
	cache     *SeriesCache
	router    *mux.Router
	server    *http.Server
	now       func() time.Time
	mu        sync.RWMutex
	stats     Stats
}

// Stats holds server statistics
type Stats struct {
	TotalRequests   int `json:"total_requests"`
	SeriesGenerated int `json:"series_generated"`
	CacheHits       int `json:"cache_hits"`
	TotalErrors     int `json:"total_errors"`
}

// NewServer creates a new API server
func NewServer(config Config, cat *catalog.Catalog, schedules *schedule.Registry) *Server {
	s := &Server{
		config:    config,
		catalog:   cat,
		schedules: schedules,
		cache:     NewSeriesCache(config.CacheSize),
		now:       time.Now,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.countRequests)

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/sensors", s.handleSensors).Methods(http.MethodGet)
	v1.HandleFunc("/sensors/{id}", s.handleSensor).Methods(http.MethodGet)
	v1.HandleFunc("/vessels", s.handleVessels).Methods(http.MethodGet)
	v1.HandleFunc("/schedules", s.handleSchedules).Methods(http.MethodGet)
	v1.HandleFunc("/schedules/select", s.handleSelectSchedule).Methods(http.MethodGet)
	v1.HandleFunc("/schedules/{name}", s.handleSchedule).Methods(http.MethodGet)
	v1.HandleFunc("/series", s.handleSeries).Methods(http.MethodGet)
	v1.HandleFunc("/series/summary", s.handleSummary).Methods(http.MethodGet)
	v1.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Handle mounts an extra handler, such as a point stream, on the router
func (s *Server) Handle(path string, h http.Handler) {
	s.router.Handle(path, h)
}

// Start serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:     s.router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("API listening on %s", s.Address())
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("http://%s:%d", s.config.Host, s.config.Port)
}

// Stats returns current server statistics
func (s *Server) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.stats.TotalRequests++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"service":  "fleetsynth",
		"version":  s.config.Version,
		"endpoint": "/v1/series",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Stats())
}

func (s *Server) handleSensors(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		s.writeJSON(w, http.StatusOK, map[string]any{"sensors": s.catalog.Sensors})
		return
	}

	for _, group := range s.catalog.ByCategory() {
		if strings.EqualFold(group.Category, category) {
			s.writeJSON(w, http.StatusOK, map[string]any{"sensors": group.Sensors})
			return
		}
	}
	s.writeError(w, http.StatusNotFound, fmt.Sprintf("category '%s' not found", category))
}

func (s *Server) handleSensor(w http.ResponseWriter, r *http.Request) {
	sensor, err := s.catalog.Get(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, sensor)
}

func (s *Server) handleVessels(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"vessels": s.catalog.Vessels})
}

func (s *Server) handleSchedules(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"schedules": s.schedules.List()})
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	sched, err := s.schedules.Get(mux.Vars(r)["name"])
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, sched)
}

func (s *Server) handleSelectSchedule(w http.ResponseWriter, r *http.Request) {
	dr, err := s.parseRange(r)
	if err != nil {
		s.writeRequestError(w, err)
		return
	}

	sched, err := s.schedules.Select(dr.Hours())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"range":    dr,
		"hours":    dr.Hours(),
		"schedule": sched,
	})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	series, _, err := s.series(r)
	if err != nil {
		s.writeRequestError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, series)
}

// SummaryResponse is the body of /v1/series/summary
type SummaryResponse struct {
	RunID     string              `json:"run_id"`
	Range     models.DateRange    `json:"range"`
	Schedule  string              `json:"schedule"`
	Intervals []models.Interval   `json:"intervals"`
	Summary   generator.Summary   `json:"summary"`
	Axes      []AxisGroupResponse `json:"axes"`
}

// AxisGroupResponse is a unit group with its padded value domain
type AxisGroupResponse struct {
	generator.UnitGroup
	Domain [2]float64 `json:"domain"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	series, sensors, err := s.series(r)
	if err != nil {
		s.writeRequestError(w, err)
		return
	}

	agg := generator.NewAggregator()
	agg.AddSeries(series)

	resp := SummaryResponse{
		RunID:     series.RunID,
		Range:     series.Range,
		Schedule:  series.Schedule,
		Intervals: series.Intervals,
		Summary:   agg.Summarize(sensors),
	}
	for _, group := range generator.GroupByUnit(sensors) {
		resp.Axes = append(resp.Axes, AxisGroupResponse{
			UnitGroup: group,
			Domain:    agg.AxisDomain(group),
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// series resolves the query into a generated (or cached) series plus the
// sensors it covers.
func (s *Server) series(r *http.Request) (*models.Series, []catalog.Sensor, error) {
	q := r.URL.Query()

	dr, err := s.parseRange(r)
	if err != nil {
		return nil, nil, err
	}

	var ids []string
	if raw := q.Get("sensors"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	sensors, err := s.catalog.Filter(ids)
	if err != nil {
		return nil, nil, &models.ValidationError{Field: "sensors", Message: err.Error()}
	}

	vessel := q.Get("vessel")
	if vessel != "" {
		if _, err := s.catalog.Vessel(vessel); err != nil {
			return nil, nil, &notFoundError{err}
		}
	}

	seed := s.now().UnixNano()
	seeded := q.Get("seed") != ""
	if seeded {
		seed, err = strconv.ParseInt(q.Get("seed"), 10, 64)
		if err != nil {
			return nil, nil, &models.ValidationError{Field: "seed", Message: fmt.Sprintf("invalid seed %q", q.Get("seed"))}
		}
	}

	key := fmt.Sprintf("%s|%d|%s|%s", dr.Key(), seed, vessel, strings.Join(ids, ","))
	if seeded {
		if cached, ok := s.cache.Get(key); ok {
			s.mu.Lock()
			s.stats.CacheHits++
			s.mu.Unlock()
			return cached, sensors, nil
		}
	}

	cat := &catalog.Catalog{Sensors: sensors, Vessels: s.catalog.Vessels}
	gen := generator.NewGenerator(cat, s.schedules, generator.Config{Seed: seed, Vessel: vessel})
	series, err := gen.Generate(dr)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	s.stats.SeriesGenerated++
	s.mu.Unlock()

	if seeded {
		s.cache.Put(key, series)
	}
	return series, sensors, nil
}

// parseRange reads from/to, or a last=<preset|ISO-8601 duration> lookback
func (s *Server) parseRange(r *http.Request) (models.DateRange, error) {
	q := r.URL.Query()
	if last := q.Get("last"); last != "" {
		if q.Get("from") != "" || q.Get("to") != "" {
			return models.DateRange{}, &models.ValidationError{Field: "last", Message: "cannot be combined with from/to"}
		}
		return models.LastRange(s.now(), last)
	}
	return models.ParseDateRange(q.Get("from"), q.Get("to"))
}

type notFoundError struct {
	err error
}

func (e *notFoundError) Error() string { return e.err.Error() }
func (e *notFoundError) Unwrap() error { return e.err }

// writeRequestError maps domain errors to status codes
func (s *Server) writeRequestError(w http.ResponseWriter, err error) {
	var (
		rangeErr    *models.InvalidRangeError
		validErr    *models.ValidationError
		notFoundErr *notFoundError
	)
	switch {
	case errors.As(err, &rangeErr), errors.As(err, &validErr):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &notFoundErr):
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("API: failed to write response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.mu.Lock()
	s.stats.TotalErrors++
	s.mu.Unlock()
	s.writeJSON(w, status, map[string]string{"error": message})
}
