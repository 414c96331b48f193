package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSupabaseStorageUploadAndSign(t *testing.T) {
	var uploadedPath, uploadedType string
	var uploadedBody []byte
	var signedTTL int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer service-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/storage/v1/object/certs/certificates/CERT-2026-000001.pdf":
			uploadedPath = r.URL.Path
			uploadedType = r.Header.Get("Content-Type")
			uploadedBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		case "/storage/v1/object/sign/certs/certificates/CERT-2026-000001.pdf":
			var payload map[string]int
			_ = json.NewDecoder(r.Body).Decode(&payload)
			signedTTL = payload["expiresIn"]
			_ = json.NewEncoder(w).Encode(map[string]string{"signedURL": "/object/sign/certs/certificates/CERT-2026-000001.pdf?token=abc"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	storage := NewSupabaseStorageService(server.URL+"/", "certs", "service-key")
	fileURL, err := storage.Upload(context.Background(), []byte("%PDF-1.7"), "CERT-2026-000001.pdf", "/certificates/", "application/pdf")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if uploadedPath == "" || uploadedType != "application/pdf" || string(uploadedBody) != "%PDF-1.7" {
		t.Fatalf("unexpected upload %q %q %q", uploadedPath, uploadedType, uploadedBody)
	}

	signed, err := storage.SignedURL(context.Background(), fileURL, 15*time.Minute)
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	if signedTTL != 900 {
		t.Fatalf("expected 900 second ttl, got %d", signedTTL)
	}
	if signed != server.URL+"/storage/v1/object/sign/certs/certificates/CERT-2026-000001.pdf?token=abc" {
		t.Fatalf("unexpected signed url %q", signed)
	}
}

func TestSupabaseStorageRejectsForeignURL(t *testing.T) {
	storage := NewSupabaseStorageService("https://project.supabase.co", "certs", "key")
	if _, err := storage.SignedURL(context.Background(), "https://elsewhere.example/file.pdf", time.Minute); err == nil {
		t.Fatalf("expected foreign url to be rejected")
	}
}
