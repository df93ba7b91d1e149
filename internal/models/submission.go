package models

import (
	"time"
)

// Submission records one successfully built envelope so the UI can show a
// per-account history. The envelope is stored unsigned; signing happens in
// the user's wallet.
type Submission struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"account_id"`
	FormKind       string    `json:"form_kind"`
	OperationCount int       `json:"operation_count"`
	EnvelopeXDR    string    `json:"envelope_xdr"`
	EnvelopeHash   string    `json:"envelope_hash"`
	CreatedAt      time.Time `json:"created_at"`
}
