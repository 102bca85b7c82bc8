package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	electionengine "electoral/contexts/governance/election-engine"

	_ "electoral/internal/platform/httpserver/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	elections electionengine.Module
	srv       *http.Server
}

func New(elections electionengine.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		elections: elections,
	}
	s.registerRoutes()
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return s.srv.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /v1/elections", s.handleCreateElection)
	s.mux.HandleFunc("GET /v1/elections/{election_key}", s.handleGetElection)
	s.mux.HandleFunc("GET /v1/elections/{election_key}/winners", s.handleListWinners)
	s.mux.HandleFunc("POST /v1/elections/{election_key}/applications", s.handleApply)
	s.mux.HandleFunc("POST /v1/elections/{election_key}/candidates", s.handleRegisterCandidate)
	s.mux.HandleFunc("GET /v1/elections/{election_key}/candidates/{candidate_id}", s.handleGetCandidate)
	s.mux.HandleFunc("POST /v1/elections/{election_key}/stage", s.handleAdvanceStage)
	s.mux.HandleFunc("POST /v1/elections/{election_key}/votes", s.handleCastVote)
	s.mux.HandleFunc("GET /v1/elections/{election_key}/votes/me", s.handleMyVote)
	s.mux.HandleFunc("GET /v1/elections/{election_key}/results", s.handleGetResult)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
