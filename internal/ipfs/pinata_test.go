package ipfs

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestUpload(t *testing.T) {
	const cid = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"

	var gotAuth string
	var gotContent []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("Failed to read multipart file: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		defer file.Close()
		if header.Filename != "contract.pdf" {
			t.Errorf("Filename = %q, expected contract.pdf", header.Filename)
		}
		gotContent, _ = io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"cid":"` + cid + `","name":"contract.pdf","size":12}}`))
	}))
	defer server.Close()

	client := New(server.URL, "test-jwt")

	got, err := client.Upload(context.Background(), "contract.pdf", strings.NewReader("file content"))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != cid {
		t.Errorf("CID = %q, expected %q", got, cid)
	}
	if gotAuth != "Bearer test-jwt" {
		t.Errorf("Authorization = %q, expected the bearer token", gotAuth)
	}
	if string(gotContent) != "file content" {
		t.Errorf("Uploaded content = %q", gotContent)
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	client := New("http://unused.invalid", "test-jwt")

	oversized := strings.NewReader(strings.Repeat("a", MaxFileSize+1))
	_, err := client.Upload(context.Background(), "big.bin", oversized)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("Expected ErrFileTooLarge, got: %v", err)
	}
}

func TestUploadAcceptsFileAtLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"cid":"QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"}}`))
	}))
	defer server.Close()

	client := New(server.URL, "test-jwt")

	atLimit := strings.NewReader(strings.Repeat("a", MaxFileSize))
	if _, err := client.Upload(context.Background(), "exact.bin", atLimit); err != nil {
		t.Errorf("Expected a file at the limit to pass, got: %v", err)
	}
}

func TestUploadServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(server.URL, "bad-jwt")

	_, err := client.Upload(context.Background(), "contract.pdf", strings.NewReader("x"))
	if err == nil {
		t.Fatal("Expected an error for a 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("Expected the status in the error, got: %v", err)
	}
}

func TestUploadMissingCID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	client := New(server.URL, "test-jwt")

	if _, err := client.Upload(context.Background(), "contract.pdf", strings.NewReader("x")); err == nil {
		t.Error("Expected an error for a response without a CID")
	}
}
