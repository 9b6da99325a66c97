// Package api is the HTTP boundary: routing, request validation, and mapping
// of the core's typed failures to status codes. It holds no search logic.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"serpd/search"
)

// SearchService is the slice of the core the transport needs.
type SearchService interface {
	Engines() []string
	Search(ctx context.Context, engine, query string, page int) (*search.Response, error)
}

// Server serves the JSON API.
type Server struct {
	svc    SearchService
	logger *zap.Logger
	httpd  *http.Server
}

// ServerConfig holds the transport settings.
type ServerConfig struct {
	Port      int
	APIPrefix string
	APIKey    string
}

// NewServer builds the server and its routes.
func NewServer(cfg ServerConfig, svc SearchService, logger *zap.Logger) *Server {
	s := &Server{svc: svc, logger: logger}

	prefix := strings.TrimSuffix(cfg.APIPrefix, "/")

	mux := http.NewServeMux()
	mux.HandleFunc(prefix+"/v1/engines", s.handleEngines)
	mux.HandleFunc(prefix+"/v1/search", s.handleSearch)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	var handler http.Handler = mux
	if cfg.APIKey != "" {
		handler = s.requireBearer(cfg.APIKey, handler)
	}

	s.httpd = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.httpd.Addr))
	if err := s.httpd.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpd.Shutdown(ctx)
}
