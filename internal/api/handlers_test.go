package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/support/render/problem"

	"github.com/panarchynow/initiation/internal/models"
	"github.com/panarchynow/initiation/internal/relay"
	"github.com/panarchynow/initiation/internal/stellar"
)

type fakeAccountSource struct {
	entries map[string]string
}

func (f *fakeAccountSource) AccountData(ctx context.Context, address string) ([]byte, error) {
	data := make(map[string]string, len(f.entries))
	for k, v := range f.entries {
		data[k] = base64.StdEncoding.EncodeToString([]byte(v))
	}
	return json.Marshal(map[string]any{"data": data})
}

type fakeSequenceSource struct {
	sequence int64
	err      error
}

func (f *fakeSequenceSource) AccountDetail(req horizonclient.AccountRequest) (horizon.Account, error) {
	if f.err != nil {
		return horizon.Account{}, f.err
	}
	return horizon.Account{AccountID: req.AccountID, Sequence: f.sequence}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	generator := &stellar.Generator{
		Snapshots: stellar.NewSnapshotReader(&fakeAccountSource{}),
		Assembler: &stellar.Assembler{
			Source:  &fakeSequenceSource{sequence: 100},
			BaseFee: 100,
		},
		Tags: stellar.DefaultTags,
	}
	return NewServer(0, generator, relay.New("http://unused.invalid"), nil, nil, network.TestNetworkPassphrase)
}

func postJSON(t *testing.T, s *Server, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func TestBuildPersonalTransaction(t *testing.T) {
	server := newTestServer(t)
	account := keypair.MustRandom().Address()

	rec := postJSON(t, server, "/transactions/personal", map[string]any{
		"account_id": account,
		"name":       "Jane",
		"about":      "About Jane",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp models.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.AccountID != account {
		t.Errorf("AccountID = %q, expected %q", resp.AccountID, account)
	}
	if resp.OperationCount != 2 {
		t.Errorf("OperationCount = %d, expected 2", resp.OperationCount)
	}
	if !stellar.IsValidEnvelope(resp.XDR) {
		t.Error("Expected a valid envelope in the response")
	}
	if !strings.HasPrefix(resp.SigningURI, "web+stellar:tx?") {
		t.Errorf("SigningURI = %q, expected a web+stellar:tx URI", resp.SigningURI)
	}
	if !strings.Contains(resp.SigningURI, "network_passphrase=") {
		t.Errorf("SigningURI %q is missing the network passphrase", resp.SigningURI)
	}
}

func TestBuildValidationFailure(t *testing.T) {
	server := newTestServer(t)

	rec := postJSON(t, server, "/transactions/corporate", map[string]any{
		"account_id": "not-a-key",
		"name":       "Acme",
		"about":      "Builders",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Status = %d, expected 400, body: %s", rec.Code, rec.Body.String())
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if _, ok := resp.Fields["accountid"]; !ok {
		t.Errorf("Expected a per-field message for accountid, got: %v", resp.Fields)
	}
}

func TestBuildNoChanges(t *testing.T) {
	server := newTestServer(t)
	account := keypair.MustRandom().Address()

	rec := postJSON(t, server, "/transactions/personal", map[string]any{
		"account_id": account,
		"name":       "Jane",
		"about":      "About Jane",
		"loaded": map[string]any{
			"name":  "Jane",
			"about": "About Jane",
		},
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, expected 400, body: %s", rec.Code, rec.Body.String())
	}
}

func TestBuildAccountNotFound(t *testing.T) {
	server := newTestServer(t)
	server.generator.Assembler.Source = &fakeSequenceSource{
		err: &horizonclient.Error{
			Problem: problem.P{Status: http.StatusNotFound, Title: "Resource Missing"},
		},
	}

	rec := postJSON(t, server, "/transactions/personal", map[string]any{
		"account_id": keypair.MustRandom().Address(),
		"name":       "Jane",
		"about":      "About Jane",
	})

	if rec.Code != http.StatusNotFound {
		t.Errorf("Status = %d, expected 404, body: %s", rec.Code, rec.Body.String())
	}
}

func TestBuildUnknownKind(t *testing.T) {
	server := newTestServer(t)

	rec := postJSON(t, server, "/transactions/club", map[string]any{})
	if rec.Code != http.StatusNotFound {
		t.Errorf("Status = %d, expected 404", rec.Code)
	}
}

func TestBuildMethodNotAllowed(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/transactions/personal", nil)
	rec := httptest.NewRecorder()
	server.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Status = %d, expected 405", rec.Code)
	}
}

func TestBuildInvalidJSON(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/transactions/personal", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	server.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, expected 400", rec.Code)
	}
}

func TestStellarURIForwarding(t *testing.T) {
	relayServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URI string `json:"uri"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if !strings.Contains(req.URI, "return_url=") {
			t.Errorf("Expected return_url to be appended, got %q", req.URI)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"url":"https://t.me/MyMTLWalletBot?start=sign_abc"}`))
	}))
	defer relayServer.Close()

	server := newTestServer(t)
	server.relay = relay.New(relayServer.URL)

	rec := postJSON(t, server, "/stellar-uri", map[string]any{
		"uri":        "web+stellar:tx?xdr=AAAA",
		"return_url": "https://example.org/done",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp models.RelayResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.URL != "https://t.me/MyMTLWalletBot?start=sign_abc" {
		t.Errorf("URL = %q", resp.URL)
	}
}

func TestStellarURIRelayFailure(t *testing.T) {
	relayServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer relayServer.Close()

	server := newTestServer(t)
	server.relay = relay.New(relayServer.URL)

	rec := postJSON(t, server, "/stellar-uri", map[string]any{
		"uri": "web+stellar:tx?xdr=AAAA",
	})

	if rec.Code != http.StatusBadGateway {
		t.Errorf("Status = %d, expected 502", rec.Code)
	}
}

func TestUploadWithoutClient(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	rec := httptest.NewRecorder()
	server.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, expected 503", rec.Code)
	}
}

func TestListSubmissionsWithoutRepository(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/accounts/GABC/submissions", nil)
	rec := httptest.NewRecorder()
	server.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, expected 503", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}

	var health map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if health["status"] != "healthy" {
		t.Errorf("status = %v", health["status"])
	}
}
