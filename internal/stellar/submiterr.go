package stellar

import (
	"errors"
	"net/http"
	"strings"

	"github.com/stellar/go/clients/horizonclient"
)

// Category classifies a sequence or submission failure so callers can show
// a specific message and decide on a retry. The library never retries these
// itself.
type Category string

const (
	// CategoryBadSequence means the sequence number was stale; refetch the
	// account and rebuild.
	CategoryBadSequence Category = "bad_sequence"

	// CategoryFeeTooLow means the network rejected the offered fee.
	CategoryFeeTooLow Category = "fee_too_low"

	// CategoryInsufficientBalance means the account cannot cover the fee or
	// reserve.
	CategoryInsufficientBalance Category = "insufficient_balance"

	// CategoryOperationFailed means one or more operations were rejected;
	// per-operation codes are attached when available.
	CategoryOperationFailed Category = "operation_failed"

	// CategoryNotFound means the account does not exist on the ledger.
	CategoryNotFound Category = "not_found"

	// CategoryRateLimited means the server asked us to back off.
	CategoryRateLimited Category = "rate_limited"

	// CategoryServerUnavailable means the server could not be reached or
	// answered with a server error.
	CategoryServerUnavailable Category = "server_unavailable"

	// CategoryTimeout means the request timed out and the outcome is
	// ambiguous: the transaction may or may not have been accepted.
	CategoryTimeout Category = "timeout_ambiguous"

	// CategoryUnknown covers everything else.
	CategoryUnknown Category = "unknown"
)

// SubmissionError carries a classified failure with a human-readable
// message.
type SubmissionError struct {
	Category       Category
	Message        string
	OperationCodes []string
	err            error
}

func (e *SubmissionError) Error() string { return e.Message }

func (e *SubmissionError) Unwrap() error { return e.err }

// Categorize maps an error from an account fetch or transaction submission
// onto the failure taxonomy. Nil input returns nil.
func Categorize(err error) *SubmissionError {
	if err == nil {
		return nil
	}

	if herr := horizonError(err); herr != nil {
		return categorizeHorizon(herr, err)
	}

	return &SubmissionError{
		Category: categorizeTransport(err),
		Message:  transportMessage(categorizeTransport(err)),
		err:      err,
	}
}

func horizonError(err error) *horizonclient.Error {
	var ptr *horizonclient.Error
	if errors.As(err, &ptr) {
		return ptr
	}
	var val horizonclient.Error
	if errors.As(err, &val) {
		return &val
	}
	return nil
}

func categorizeHorizon(herr *horizonclient.Error, cause error) *SubmissionError {
	if codes, err := herr.ResultCodes(); err == nil && codes != nil {
		switch codes.TransactionCode {
		case "tx_bad_seq":
			return &SubmissionError{
				Category: CategoryBadSequence,
				Message:  "transaction sequence number is stale; refetch the account and rebuild",
				err:      cause,
			}
		case "tx_insufficient_fee":
			return &SubmissionError{
				Category: CategoryFeeTooLow,
				Message:  "offered fee is below the network minimum",
				err:      cause,
			}
		case "tx_insufficient_balance":
			return &SubmissionError{
				Category: CategoryInsufficientBalance,
				Message:  "account balance cannot cover the fee and reserve",
				err:      cause,
			}
		case "tx_failed":
			return &SubmissionError{
				Category:       CategoryOperationFailed,
				Message:        "one or more operations were rejected",
				OperationCodes: codes.OperationCodes,
				err:            cause,
			}
		}
	}

	switch herr.Problem.Status {
	case http.StatusNotFound:
		return &SubmissionError{
			Category: CategoryNotFound,
			Message:  "account not found or not funded; make sure the account exists on the network",
			err:      cause,
		}
	case http.StatusTooManyRequests:
		return &SubmissionError{
			Category: CategoryRateLimited,
			Message:  "rate limited by the server; wait before trying again",
			err:      cause,
		}
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return &SubmissionError{
			Category: CategoryTimeout,
			Message:  "request timed out; the transaction may or may not have been accepted",
			err:      cause,
		}
	}
	if herr.Problem.Status >= 500 {
		return &SubmissionError{
			Category: CategoryServerUnavailable,
			Message:  "server is unavailable; try again later",
			err:      cause,
		}
	}

	return &SubmissionError{
		Category: CategoryUnknown,
		Message:  herr.Problem.Title,
		err:      cause,
	}
}

// categorizeTransport classifies errors that never reached the server.
// Pattern set follows the transient failures seen against public horizon
// instances.
func categorizeTransport(err error) Category {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadline exceeded"):
		return CategoryTimeout
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "network is unreachable"),
		strings.Contains(msg, "broken pipe"):
		return CategoryServerUnavailable
	case strings.Contains(msg, "not found"):
		return CategoryNotFound
	}
	return CategoryUnknown
}

func transportMessage(c Category) string {
	switch c {
	case CategoryTimeout:
		return "request timed out; the transaction may or may not have been accepted"
	case CategoryServerUnavailable:
		return "server is unavailable; try again later"
	case CategoryNotFound:
		return "account not found or not funded; make sure the account exists on the network"
	default:
		return "unexpected error talking to the network"
	}
}
