package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	chimux "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/citygrid/placedex/internal/domain"
	"github.com/citygrid/placedex/internal/domain/criteria"
	healthuc "github.com/citygrid/placedex/internal/usecase/health"
	recommenduc "github.com/citygrid/placedex/internal/usecase/recommend"
	searchuc "github.com/citygrid/placedex/internal/usecase/search"
	statsuc "github.com/citygrid/placedex/internal/usecase/stats"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the search engine over HTTP.
type Server struct {
	search        *searchuc.Service
	stats         *statsuc.Service
	recommend     *recommenduc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	stats *statsuc.Service,
	recommend *recommenduc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:    search,
		stats:     stats,
		recommend: recommend,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidCriteria, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrNoQueryText, http.StatusBadRequest, CodeNoQueryText),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadGateway, CodeVectorDimMismatch),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, CodeEmbeddingProvider),
		sentinelHandler(domain.ErrRetrieval, http.StatusBadGateway, CodeRetrievalFailed),
	}
	return s
}

// Register mounts all routes on the router.
func (s *Server) Register(r chimux.Router) {
	r.Get("/search/places", s.SearchPlaces)
	r.Get("/search/events", s.SearchEvents)
	r.Get("/search/zip-codes", s.ZipCodes)
	r.Get("/search/categories", s.Categories)
	r.Get("/search/heatmap", s.Heatmap)
	r.Get("/search/rating-distribution", s.RatingDistribution)
	r.Get("/search/category-count", s.CategoryCount)
	r.Get("/search/region-stats", s.RegionStats)
	r.Post("/search/recommend", s.Recommend)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// SearchPlaces handles GET /search/places.
func (s *Server) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	c, err := criteriaFromQuery(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	places, err := s.search.Places(r.Context(), c)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, placesToResponse(places))
}

// SearchEvents handles GET /search/events.
func (s *Server) SearchEvents(w http.ResponseWriter, r *http.Request) {
	c, err := criteriaFromQuery(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	events, err := s.search.Events(r.Context(), c)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, eventsToResponse(events))
}

// ZipCodes handles GET /search/zip-codes.
func (s *Server) ZipCodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.ZipCodes(r.Context()))
}

// Categories handles GET /search/categories.
func (s *Server) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Categories(r.Context()))
}

// Heatmap handles GET /search/heatmap.
func (s *Server) Heatmap(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pointsToResponse(s.stats.Heatmap(r.Context())))
}

// RatingDistribution handles GET /search/rating-distribution.
func (s *Server) RatingDistribution(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.RatingDistribution(r.Context()))
}

// CategoryCount handles GET /search/category-count.
func (s *Server) CategoryCount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.CategoryCounts(r.Context()))
}

// RegionStats handles GET /search/region-stats.
func (s *Server) RegionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, bucketsToResponse(s.stats.RegionStats(r.Context())))
}

// Recommend handles POST /search/recommend.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	account := AccountFromContext(r.Context())
	places, err := s.recommend.Recommend(r.Context(), account, req.QueryText)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, placesToResponse(places))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// criteriaFromQuery parses the shared search filter parameters.
func criteriaFromQuery(r *http.Request) (criteria.Criteria, error) {
	q := r.URL.Query()

	limit, err := intParam(q.Get("limit"))
	if err != nil {
		return criteria.Criteria{}, err
	}
	offset, err := intParam(q.Get("offset"))
	if err != nil {
		return criteria.Criteria{}, err
	}

	var categories []string
	for _, raw := range q["categories"] {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				categories = append(categories, c)
			}
		}
	}

	return criteria.New(q.Get("search"), q.Get("zip_code"), categories, limit, offset)
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ErrInvalidCriteria
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidCriteria,
		domain.ErrNoQueryText,
		domain.ErrVectorDimMismatch,
		domain.ErrEmbeddingProvider,
		domain.ErrRetrieval,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
