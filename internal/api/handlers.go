package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/panarchynow/initiation/internal/forms"
	"github.com/panarchynow/initiation/internal/ipfs"
	"github.com/panarchynow/initiation/internal/models"
	"github.com/panarchynow/initiation/internal/relay"
	"github.com/panarchynow/initiation/internal/sep7"
	"github.com/panarchynow/initiation/internal/stellar"
)

// handleIndex returns basic service information
// GET / - Returns service info and available endpoints
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	info := map[string]interface{}{
		"service":     "Initiation",
		"version":     "1.0.0",
		"description": "Builds unsigned Stellar manage-data transactions from profile forms",
		"endpoints": map[string]string{
			"GET /":                          "This page - Service information",
			"GET /health":                    "Health check endpoint",
			"GET /metrics":                   "Prometheus metrics for monitoring",
			"POST /transactions/corporate":   "Build an envelope from an organization form",
			"POST /transactions/participant": "Build an envelope from a participant form",
			"POST /transactions/personal":    "Build an envelope from a personal form",
			"POST /stellar-uri":              "Forward a SEP-0007 URI to the signing relay",
			"POST /upload":                   "Upload a file to the content store (max 1 MiB)",
			"GET /accounts/{id}/submissions": "Submission history for an account (supports ?limit=, ?offset=)",
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

// handleHealth returns health status
// GET /health - Health check for monitoring systems
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "initiation",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// handleMetrics returns Prometheus metrics
// GET /metrics - Prometheus scraping endpoint
func (s *Server) handleMetrics() http.Handler {
	return promhttp.Handler()
}

// =============================================================================
// TRANSACTION BUILD ENDPOINTS
// =============================================================================

// handleBuildCorporate builds an envelope from an organization form
// POST /transactions/corporate
func (s *Server) handleBuildCorporate(w http.ResponseWriter, r *http.Request) {
	var form forms.CorporateForm
	if !s.decodeBody(w, r, &form) {
		return
	}

	result, err := s.generator.Corporate(r.Context(), form)
	if err != nil {
		s.sendBuildError(w, err)
		return
	}

	s.finishBuild(w, r, stellar.FormCorporate, result)
}

// handleBuildParticipant builds an envelope from a participant form
// POST /transactions/participant
func (s *Server) handleBuildParticipant(w http.ResponseWriter, r *http.Request) {
	var form forms.ParticipantForm
	if !s.decodeBody(w, r, &form) {
		return
	}

	result, err := s.generator.Participant(r.Context(), form)
	if err != nil {
		s.sendBuildError(w, err)
		return
	}

	s.finishBuild(w, r, stellar.FormParticipant, result)
}

// handleBuildPersonal builds an envelope from a personal form
// POST /transactions/personal
func (s *Server) handleBuildPersonal(w http.ResponseWriter, r *http.Request) {
	var form forms.PersonalForm
	if !s.decodeBody(w, r, &form) {
		return
	}

	result, err := s.generator.Personal(r.Context(), form)
	if err != nil {
		s.sendBuildError(w, err)
		return
	}

	s.finishBuild(w, r, stellar.FormPersonal, result)
}

// =============================================================================
// PASS-THROUGH COLLABORATORS
// =============================================================================

// handleStellarURI forwards a SEP-0007 URI to the signing relay
// POST /stellar-uri {"uri": "web+stellar:tx?..."}
func (s *Server) handleStellarURI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		URI       string `json:"uri"`
		ReturnURL string `json:"return_url"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	uri := relay.EnsureReturnURL(req.URI, req.ReturnURL)
	url, err := s.relay.AddURI(r.Context(), uri)
	if err != nil {
		slog.Error("Relay request failed", "error", err)
		s.sendError(w, err.Error(), http.StatusBadGateway)
		return
	}

	s.sendJSON(w, models.RelayResponse{URL: url}, http.StatusOK)
}

// handleUpload stores a file in the content store and returns its CID
// POST /upload - multipart form with a "file" part
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.uploads == nil {
		s.sendError(w, "File uploads are not configured", http.StatusServiceUnavailable)
		return
	}

	if err := r.ParseMultipartForm(ipfs.MaxFileSize); err != nil {
		s.sendError(w, "Invalid multipart request", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.sendError(w, "File part is missing", http.StatusBadRequest)
		return
	}
	defer file.Close()

	cid, err := s.uploads.Upload(r.Context(), header.Filename, file)
	if err == ipfs.ErrFileTooLarge {
		s.sendError(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil {
		slog.Error("Upload failed", "file", header.Filename, "error", err)
		s.sendError(w, "Upload failed", http.StatusBadGateway)
		return
	}

	s.sendJSON(w, models.UploadResponse{CID: cid, IPFSURL: "ipfs://" + cid}, http.StatusOK)
}

// =============================================================================
// SUBMISSION HISTORY
// =============================================================================

// handleListSubmissions lists an account's submission history
// GET /accounts/{id}/submissions?limit=50&offset=0
func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request, accountID string) {
	if s.repository == nil {
		s.sendError(w, "Submission history is not configured", http.StatusServiceUnavailable)
		return
	}

	limit, offset := parsePagination(r, 50)
	submissions, err := s.repository.ListSubmissionsByAccount(r.Context(), accountID, limit, offset)
	if err != nil {
		slog.Error("Failed to list submissions", "account", accountID, "error", err)
		s.sendError(w, "Failed to list submissions", http.StatusInternalServerError)
		return
	}

	s.sendJSON(w, models.SubmissionListResponse{
		AccountID:   accountID,
		Submissions: submissions,
		Count:       len(submissions),
	}, http.StatusOK)
}

// finishBuild records the submission and answers with the envelope and its
// SEP-0007 signing URI.
func (s *Server) finishBuild(w http.ResponseWriter, r *http.Request, kind string, result *stellar.BuildResult) {
	s.recordSubmission(r, kind, result)

	uri := sep7.TransactionURI(result.XDR, sep7.TxOptions{
		NetworkPassphrase: s.passphrase,
	})

	s.sendJSON(w, models.TransactionResponse{
		AccountID:      result.AccountID,
		OperationCount: result.OperationCount,
		XDR:            result.XDR,
		SigningURI:     uri,
	}, http.StatusOK)
}
