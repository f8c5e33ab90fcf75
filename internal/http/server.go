package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"nregadash/internal/cache"
	"nregadash/internal/core"
	"nregadash/internal/log"
	"nregadash/internal/middleware/ratelimit"
	"nregadash/internal/middleware/security"
	"nregadash/internal/middleware/trace"
	"nregadash/internal/services"
)

// PerformanceReader is what the handlers need from the service layer.
type PerformanceReader interface {
	YearReport(ctx context.Context, finYear string) (services.YearReport, error)
	DistrictReport(ctx context.Context, district, finYear string) (services.DistrictReport, error)
	Districts(ctx context.Context) ([]core.District, error)
	Years(ctx context.Context) ([]string, error)
}

// Server serves the dashboard API. Year and district reports are cached
// with TTL plus explicit invalidation when an ingest run announces new
// data.
type Server struct {
	http.Server

	reader       PerformanceReader
	logger       *log.Logger
	structured   *log.StructuredLogger
	rateLimiter  *ratelimit.Limiter
	detector     *security.Detector
	cacheManager *cache.Manager

	yearCache     *cache.LRUCache[services.YearReport]
	districtCache *cache.LRUCache[services.DistrictReport]

	shutdownOnce sync.Once
}

// Options tunes the server; zero values fall back to defaults.
type Options struct {
	CacheSize int
	CacheTTL  time.Duration
	Logger    *log.Logger
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, reader PerformanceReader, opts Options) *Server {
	cacheSize := opts.CacheSize
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cacheTTL := opts.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	httpLogger := logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:           addr,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 16,
		},
		reader:        reader,
		logger:        httpLogger,
		structured:    log.NewStructuredLogger(httpLogger),
		rateLimiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:      security.NewDetector(),
		cacheManager:  cache.NewManager(),
		yearCache:     cache.NewLRUCache[services.YearReport](cacheSize, cacheTTL),
		districtCache: cache.NewLRUCache[services.DistrictReport](cacheSize, cacheTTL),
	}

	s.cacheManager.Register(s.yearCache)
	s.cacheManager.Register(s.districtCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/performance", s.handleYearPerformance)
	mux.HandleFunc("GET /api/performance/{district}", s.handleDistrictPerformance)
	mux.HandleFunc("GET /api/districts", s.handleDistricts)
	mux.HandleFunc("GET /api/years", s.handleYears)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.detector.ExtractClientIP, s.structured)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited)(handler)
	handler = s.detector.Middleware(s.handleSuspicious)(handler)
	handler = headers.Middleware(handler)
	handler = log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(handler)
	handler = tracer.Middleware(handler)
	handler = log.Middleware(httpLogger)(handler)
	s.Handler = handler

	return s
}

// InvalidateYear drops every cached report touching the given financial
// year. Called when a refresh message arrives from the ingest pipeline.
func (s *Server) InvalidateYear(finYear string) {
	s.yearCache.Delete(finYear)
	dropped := s.districtCache.DeletePrefix(finYear + "|")
	s.logger.Info("caches invalidated",
		log.FieldFinYear, finYear,
		"district_entries_dropped", dropped,
	)
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path,
	)
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
}

func (s *Server) handleSuspicious(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "suspicious request rejected",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path,
	)
	writeError(w, http.StatusBadRequest, "bad request")
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// The store backs every endpoint; a cheap listing proves it reachable.
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if _, err := s.reader.Years(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
