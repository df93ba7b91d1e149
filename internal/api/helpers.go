package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/panarchynow/initiation/internal/forms"
	"github.com/panarchynow/initiation/internal/models"
	"github.com/panarchynow/initiation/internal/stellar"
)

// decodeBody decodes a JSON request body, answering 400 on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

// sendBuildError maps a build failure onto an HTTP status: validation
// problems are the client's to fix, classified submission errors carry
// their category, everything else is a 500.
func (s *Server) sendBuildError(w http.ResponseWriter, err error) {
	var verr *forms.ValidationError
	if errors.As(err, &verr) {
		s.sendJSON(w, models.ErrorResponse{
			Error:   http.StatusText(http.StatusBadRequest),
			Message: "Form validation failed",
			Code:    http.StatusBadRequest,
			Fields:  verr.Fields,
		}, http.StatusBadRequest)
		return
	}

	if errors.Is(err, stellar.ErrNoChanges) {
		s.sendError(w, "The form matches the current account state; nothing to submit", http.StatusBadRequest)
		return
	}

	serr := stellar.Categorize(err)
	status := statusForCategory(serr.Category)
	if status == http.StatusInternalServerError {
		slog.Error("Transaction build failed", "error", err)
	}
	s.sendError(w, serr.Message, status)
}

func statusForCategory(c stellar.Category) int {
	switch c {
	case stellar.CategoryNotFound:
		return http.StatusNotFound
	case stellar.CategoryRateLimited:
		return http.StatusTooManyRequests
	case stellar.CategoryTimeout:
		return http.StatusGatewayTimeout
	case stellar.CategoryServerUnavailable:
		return http.StatusBadGateway
	case stellar.CategoryBadSequence,
		stellar.CategoryFeeTooLow,
		stellar.CategoryInsufficientBalance,
		stellar.CategoryOperationFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// recordSubmission appends the build to the history when a repository is
// configured. History is best-effort; a storage failure never fails the
// build.
func (s *Server) recordSubmission(r *http.Request, kind string, result *stellar.BuildResult) {
	if s.repository == nil {
		return
	}

	hash := sha256.Sum256([]byte(result.XDR))
	submission := &models.Submission{
		AccountID:      result.AccountID,
		FormKind:       kind,
		OperationCount: result.OperationCount,
		EnvelopeXDR:    result.XDR,
		EnvelopeHash:   hex.EncodeToString(hash[:]),
	}

	if err := s.repository.SaveSubmission(r.Context(), submission); err != nil {
		slog.Error("Failed to record submission", "account", result.AccountID, "error", err)
	}
}

// parsePagination reads limit/offset query parameters with sane bounds.
func parsePagination(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	offset = 0

	query := r.URL.Query()
	if v := query.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := query.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// sendJSON writes a JSON response with the given status code.
func (s *Server) sendJSON(w http.ResponseWriter, payload any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) sendError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
	})
}
