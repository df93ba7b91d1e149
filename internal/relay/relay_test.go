package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAddURI(t *testing.T) {
	var gotBody addRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(addResponse{URL: "https://t.me/MyMTLWalletBot?start=sign_abc"})
	}))
	defer server.Close()

	client := New(server.URL)

	uri := "web+stellar:tx?xdr=AAAA"
	got, err := client.AddURI(context.Background(), uri)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != "https://t.me/MyMTLWalletBot?start=sign_abc" {
		t.Errorf("Unexpected signing URL: %q", got)
	}
	if gotBody.URI != uri {
		t.Errorf("Relay received URI %q, expected %q", gotBody.URI, uri)
	}
}

func TestAddURIRejectsNonStellarURI(t *testing.T) {
	client := New("http://unused.invalid")

	if _, err := client.AddURI(context.Background(), "https://example.org/not-a-stellar-uri"); err == nil {
		t.Error("Expected an error for a non web+stellar URI")
	}
}

func TestAddURIServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL)

	_, err := client.AddURI(context.Background(), "web+stellar:tx?xdr=AAAA")
	if err == nil {
		t.Fatal("Expected an error for a 500 response")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("Expected the status in the error, got: %v", err)
	}
}

func TestAddURIMissingURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New(server.URL)

	if _, err := client.AddURI(context.Background(), "web+stellar:tx?xdr=AAAA"); err == nil {
		t.Error("Expected an error for a response without a signing URL")
	}
}

func TestEnsureReturnURL(t *testing.T) {
	tests := []struct {
		name      string
		uri       string
		returnURL string
		want      string
	}{
		{
			name:      "appends to existing query",
			uri:       "web+stellar:tx?xdr=AAAA",
			returnURL: "https://example.org/done",
			want:      "web+stellar:tx?xdr=AAAA&return_url=https%3A%2F%2Fexample.org%2Fdone",
		},
		{
			name:      "starts query when none",
			uri:       "web+stellar:tx",
			returnURL: "https://example.org/done",
			want:      "web+stellar:tx?return_url=https%3A%2F%2Fexample.org%2Fdone",
		},
		{
			name:      "keeps existing return_url",
			uri:       "web+stellar:tx?xdr=AAAA&return_url=https%3A%2F%2Fother",
			returnURL: "https://example.org/done",
			want:      "web+stellar:tx?xdr=AAAA&return_url=https%3A%2F%2Fother",
		},
		{
			name:      "empty return URL is a no-op",
			uri:       "web+stellar:tx?xdr=AAAA",
			returnURL: "",
			want:      "web+stellar:tx?xdr=AAAA",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EnsureReturnURL(tt.uri, tt.returnURL); got != tt.want {
				t.Errorf("EnsureReturnURL() = %q, expected %q", got, tt.want)
			}
		})
	}
}
