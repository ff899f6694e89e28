// Package server exposes the beacon query API over HTTP and maps classified
// access failures to transport status codes: Unauthorized to 401, Forbidden
// to 403, a primary key-retrieval failure to 500.
package server

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/vireolabs/beacon/auth"
	"github.com/vireolabs/beacon/catalog"
	"github.com/vireolabs/beacon/config"
)

// Server handles beacon API requests.
type Server struct {
	cfg      config.ServerConfig
	log      *zap.SugaredLogger
	verifier *auth.Verifier
	visas    *auth.VisaValidator
	catalog  *catalog.Store
	limiters *limiterPool
}

// New creates a beacon API server.
func New(cfg config.ServerConfig, verifier *auth.Verifier, visas *auth.VisaValidator, store *catalog.Store, log *zap.SugaredLogger) *Server {
	return &Server{
		cfg:      cfg,
		log:      log,
		verifier: verifier,
		visas:    visas,
		catalog:  store,
		limiters: newLimiterPool(cfg.RequestsPerSecond, cfg.RequestBurst),
	}
}

// Handler returns the routed HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/query", s.wrap(s.handleQuery))
	mux.HandleFunc("/info", s.wrap(s.handleInfo))
	return mux
}

// Addr returns the listen address for the configured port.
func (s *Server) Addr() string {
	return fmt.Sprintf(":%d", s.cfg.Port)
}

// wrap applies the standard middleware chain: request ID, rate limiting,
// request logging.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return s.withRequestID(s.withRateLimit(s.withLogging(next)))
}
