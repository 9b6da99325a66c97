package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"serpd/browser"
	"serpd/search"
)

type searchRequest struct {
	Engine string `json:"engine"`
	Query  string `json:"query"`
	// Page is a pointer so an explicit 0 stays distinguishable from an
	// absent field. Only absence defaults to the first page; an explicit 0
	// is invalid input and the core rejects it.
	Page *int `json:"page"`
}

type enginesResponse struct {
	Engines []string `json:"engines"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleEngines(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, enginesResponse{Engines: s.svc.Engines()})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	page := 1
	if req.Page != nil {
		page = *req.Page
	}

	resp, err := s.svc.Search(r.Context(), req.Engine, req.Query, page)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("search failed",
				zap.String("engine", req.Engine),
				zap.Int("status", status),
				zap.Error(err))
		}
		s.writeError(w, status, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Unix(),
	})
}

// statusFor maps the core's failure taxonomy onto stable status codes. Pool
// exhaustion is modeled as backpressure; navigation and extraction failures
// are upstream errors, kept distinct so operators can tell rate-limiting from
// markup drift.
func statusFor(err error) int {
	switch {
	case errors.Is(err, search.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, search.ErrUnknownEngine):
		return http.StatusNotFound
	case errors.Is(err, browser.ErrPoolExhausted):
		return http.StatusTooManyRequests
	case errors.Is(err, browser.ErrPoolClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, search.ErrNavigationTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, search.ErrExtractionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}
