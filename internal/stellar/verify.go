package stellar

import (
	"strings"

	"github.com/stellar/go/txnbuild"
)

// IsValidEnvelope reports whether the string is a structurally valid
// base64-encoded transaction envelope. Malformed, truncated or empty input
// yields false; it never panics.
func IsValidEnvelope(envelope string) bool {
	if strings.TrimSpace(envelope) == "" {
		return false
	}
	_, err := txnbuild.TransactionFromXDR(envelope)
	return err == nil
}
