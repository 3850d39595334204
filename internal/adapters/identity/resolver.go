// Package identity resolves a best-effort stable client identifier,
// used as the session id when the browser does not supply one.
package identity

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jfernandezp/agente-ia-uni/internal/observability"
)

const (
	defaultLookupURL = "https://api.ipify.org?format=json"
	fallbackID       = "0.0.0.0"
)

// Resolver tries, in order: the X-Forwarded-For header, an external IP
// lookup service, the local hostname's address, and finally a constant
// placeholder. Resolve never fails.
type Resolver struct {
	httpClient *http.Client
	lookupURL  string
}

func NewResolver() *Resolver {
	return &Resolver{
		httpClient: &http.Client{Timeout: 2 * time.Second},
		lookupURL:  defaultLookupURL,
	}
}

func (r *Resolver) Resolve(ctx context.Context, forwardedFor string) string {
	if forwardedFor != "" {
		// A proxy chain lists the original client first.
		first := strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
		if first != "" {
			return first
		}
	}

	if ip := r.lookupExternal(ctx); ip != "" {
		return ip
	}

	if ip := lookupLocal(); ip != "" {
		return ip
	}

	return fallbackID
}

func (r *Resolver) lookupExternal(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.lookupURL, nil)
	if err != nil {
		return ""
	}

	res, err := r.httpClient.Do(req)
	if err != nil {
		observability.LoggerFromContext(ctx).Debug("external ip lookup failed", "error", err)
		return ""
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return ""
	}

	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return ""
	}
	return body.IP
}

func lookupLocal() string {
	hostname, err := os.Hostname()
	if err != nil {
		return ""
	}
	addrs, err := net.LookupHost(hostname)
	if err != nil || len(addrs) == 0 {
		return ""
	}
	return addrs[0]
}
