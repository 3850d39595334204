package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestResolvePrefersForwardedHeader(t *testing.T) {
	// The resolver must not touch the network when a header is present.
	r := &Resolver{
		httpClient: &http.Client{Timeout: time.Second},
		lookupURL:  "http://127.0.0.1:0/unreachable",
	}

	tests := []struct {
		header string
		want   string
	}{
		{"203.0.113.7", "203.0.113.7"},
		{"203.0.113.7, 10.0.0.1, 10.0.0.2", "203.0.113.7"},
		{"  203.0.113.7 , 10.0.0.1", "203.0.113.7"},
	}
	for _, tt := range tests {
		if got := r.Resolve(context.Background(), tt.header); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestResolveUsesExternalLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ip":"198.51.100.9"}`))
	}))
	defer srv.Close()

	r := &Resolver{
		httpClient: srv.Client(),
		lookupURL:  srv.URL,
	}

	if got := r.Resolve(context.Background(), ""); got != "198.51.100.9" {
		t.Errorf("expected the looked-up address, got %q", got)
	}
}

func TestResolveNeverFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := &Resolver{
		httpClient: srv.Client(),
		lookupURL:  srv.URL,
	}

	if got := r.Resolve(context.Background(), ""); got == "" {
		t.Errorf("Resolve must always return an identifier")
	}
}
