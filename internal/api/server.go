package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/panarchynow/initiation/internal/ipfs"
	"github.com/panarchynow/initiation/internal/relay"
	"github.com/panarchynow/initiation/internal/stellar"
	"github.com/panarchynow/initiation/internal/storage"
)

// Server represents the HTTP API server
// Provides the transaction build endpoints, the signing relay, file upload,
// submission history, health checks and Prometheus metrics
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	generator  *stellar.Generator
	relay      *relay.Client
	uploads    *ipfs.Client
	repository storage.Repository
	passphrase string
	port       int
}

// NewServer creates a new API server instance. The repository and upload
// client may be nil; their endpoints answer 503 then.
func NewServer(
	port int,
	generator *stellar.Generator,
	relayClient *relay.Client,
	uploads *ipfs.Client,
	repository storage.Repository,
	networkPassphrase string,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		mux:        mux,
		generator:  generator,
		relay:      relayClient,
		uploads:    uploads,
		repository: repository,
		passphrase: networkPassphrase,
		port:       port,
	}

	// Register all HTTP routes
	s.registerRoutes()

	return s
}

// registerRoutes sets up all HTTP routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/metrics", s.handleMetrics())

	// Transaction build endpoints
	s.mux.HandleFunc("/transactions/", s.handleTransactionRoutes)

	// Pass-through collaborators
	s.mux.HandleFunc("/stellar-uri", s.handleStellarURI)
	s.mux.HandleFunc("/upload", s.handleUpload)

	// Submission history
	s.mux.HandleFunc("/accounts/", s.handleAccountRoutes)
}

// handleTransactionRoutes routes POST /transactions/{kind}
func (s *Server) handleTransactionRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	kind := strings.TrimPrefix(r.URL.Path, "/transactions/")
	switch kind {
	case stellar.FormCorporate:
		s.handleBuildCorporate(w, r)
	case stellar.FormParticipant:
		s.handleBuildParticipant(w, r)
	case stellar.FormPersonal:
		s.handleBuildPersonal(w, r)
	default:
		s.sendError(w, "Unknown form kind", http.StatusNotFound)
	}
}

// handleAccountRoutes routes account sub-endpoints
func (s *Server) handleAccountRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/accounts/")
	parts := strings.Split(path, "/")

	// GET /accounts/{id}/submissions
	if len(parts) == 2 && parts[1] == "submissions" {
		s.handleListSubmissions(w, r, parts[0])
		return
	}

	s.sendError(w, "Endpoint not found", http.StatusNotFound)
}

// Start starts the HTTP server in a goroutine
// Returns immediately after starting the server
func (s *Server) Start() error {
	go func() {
		slog.Info("API server starting",
			"port", s.port,
			"endpoints", []string{"/", "/health", "/metrics", "/transactions/{kind}", "/stellar-uri", "/upload"},
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("API server error", "error", err)
		}
	}()

	// Give the server a moment to start
	time.Sleep(100 * time.Millisecond)

	return nil
}

// Shutdown gracefully shuts down the HTTP server
// Waits for active connections to close or context to timeout
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("API server shutting down...")
	return s.httpServer.Shutdown(ctx)
}
