package stellar

import (
	"testing"
)

func TestIsValidEnvelopeRejectsGarbage(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"not base64", "not-a-real-envelope"},
		{"base64 but not xdr", "aGVsbG8gd29ybGQ="},
		{"truncated", "AAAAAgAAAAC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if IsValidEnvelope(tt.input) {
				t.Errorf("IsValidEnvelope(%q) = true, expected false", tt.input)
			}
		})
	}
}

func TestIsValidEnvelopeAcceptsAssembledTransaction(t *testing.T) {
	assembler := newTestAssembler()

	tx, err := assembler.Assemble(assembleAccount, []Operation{{Key: "Name", Value: []byte("Acme")}})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	xdr, err := tx.Base64()
	if err != nil {
		t.Fatalf("Expected envelope to encode, got: %v", err)
	}

	if !IsValidEnvelope(xdr) {
		t.Error("Expected a freshly assembled envelope to verify")
	}
}
