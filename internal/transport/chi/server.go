// Package chi exposes the search engine as a JSON HTTP API on a chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/querygate/internal/domain"
	"github.com/kailas-cloud/querygate/internal/domain/search/request"
	"github.com/kailas-cloud/querygate/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/querygate/internal/logger"
	"github.com/kailas-cloud/querygate/internal/metrics"
	healthuc "github.com/kailas-cloud/querygate/internal/usecase/health"
	"github.com/kailas-cloud/querygate/internal/version"
)

const maxBodyBytes = 1 << 20

// Searcher runs search operations.
type Searcher interface {
	Query(ctx context.Context, req request.Request) (result.Documents[result.Result], error)
	QueryPromotions(ctx context.Context, req request.Request) (result.Documents[result.Result], error)
	FindSimilar(ctx context.Context, req request.SimilarRequest) (result.Documents[result.Result], error)
	GetContent(ctx context.Context, req request.ContentRequest) (result.Documents[result.Result], error)
	StateToken(ctx context.Context, restrictions request.Restrictions, maxResults int) (string, error)
	RelatedConcepts(ctx context.Context, req request.RelatedConceptsRequest) ([]result.Concept, error)
}

// DatabaseLister lists the databases the backend serves.
type DatabaseLister interface {
	List(ctx context.Context) ([]string, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the HTTP API.
type Server struct {
	search        Searcher
	databases     DatabaseLister
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, databases DatabaseLister, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search:    search,
		databases: databases,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		invalidRequestHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrChannelUnavailable, http.StatusServiceUnavailable, ErrorCodeChannelUnavailable),
		sentinelHandler(domain.ErrBackend, http.StatusBadGateway, ErrorCodeBackendError),
		sentinelHandler(domain.ErrMalformedResponse, http.StatusBadGateway, ErrorCodeBackendError),
	}
	return s
}

// Register mounts every route on r.
func (s *Server) Register(r chirouter.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})
	r.Route("/search", func(r chirouter.Router) {
		r.Post("/query", s.Query)
		r.Post("/promotions", s.QueryPromotions)
		r.Post("/similar", s.FindSimilar)
		r.Post("/content", s.GetContent)
		r.Post("/state-token", s.StateToken)
		r.Post("/related-concepts", s.RelatedConcepts)
	})
	r.Get("/databases", s.ListDatabases)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Query handles POST /search/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	searchReq, err := queryRequestFromDTO(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	docs, err := s.search.Query(r.Context(), searchReq)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentsToDTO(docs))
}

// QueryPromotions handles POST /search/promotions.
func (s *Server) QueryPromotions(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	searchReq, err := queryRequestFromDTO(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	docs, err := s.search.QueryPromotions(r.Context(), searchReq)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentsToDTO(docs))
}

// FindSimilar handles POST /search/similar.
func (s *Server) FindSimilar(w http.ResponseWriter, r *http.Request) {
	var req SimilarRequest
	if !decodeBody(w, r, &req) {
		return
	}
	similarReq, err := similarRequestFromDTO(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	docs, err := s.search.FindSimilar(r.Context(), similarReq)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentsToDTO(docs))
}

// GetContent handles POST /search/content.
func (s *Server) GetContent(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	contentReq, err := contentRequestFromDTO(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	docs, err := s.search.GetContent(r.Context(), contentReq)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentsToDTO(docs))
}

// StateToken handles POST /search/state-token.
func (s *Server) StateToken(w http.ResponseWriter, r *http.Request) {
	var req StateTokenRequest
	if !decodeBody(w, r, &req) {
		return
	}
	restrictions, err := restrictionsFromDTO(req.Restrictions)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}
	if req.MaxResults > request.MaxMaxResults {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "max_results is too large")
		return
	}

	token, err := s.search.StateToken(r.Context(), restrictions, req.MaxResults)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StateTokenResponse{Token: token})
}

// RelatedConcepts handles POST /search/related-concepts.
func (s *Server) RelatedConcepts(w http.ResponseWriter, r *http.Request) {
	var req RelatedConceptsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	conceptsReq, err := relatedConceptsRequestFromDTO(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	concepts, err := s.search.RelatedConcepts(r.Context(), conceptsReq)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RelatedConceptsResponse{Concepts: conceptsToDTO(concepts)})
}

// ListDatabases handles GET /databases.
func (s *Server) ListDatabases(w http.ResponseWriter, r *http.Request) {
	dbs, err := s.databases.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if dbs == nil {
		dbs = []string{}
	}
	writeJSON(w, http.StatusOK, DatabasesResponse{Databases: dbs})
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

	build := version.Get()
	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Version: build.Version,
		Commit:  build.Commit,
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	metrics.ReportErrorCode(w, string(code))
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrChannelUnavailable,
		domain.ErrBackend,
		domain.ErrMalformedResponse,
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

// invalidRequestHandler reports validation failures with their full message.
func invalidRequestHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrInvalidRequest) {
		return false
	}
	writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.logger
	if l, ok := logpkg.Lookup(r.Context()); ok {
		log = l
	}
	log.Warn("Domain error", zap.Error(err), zap.String("path", r.URL.Path))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("Internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
