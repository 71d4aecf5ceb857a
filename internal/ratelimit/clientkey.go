package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// UnknownClient is the shared bucket for requests whose origin cannot be
// determined. Lumping unknowns together is deliberately conservative.
const UnknownClient = "unknown"

// keyPrefix namespaces limiter keys, mirroring the cache-key scheme.
const keyPrefix = "search:"

// Strategy extracts a client identity from a request. Strategies are tried
// in order; the first one that reports ok wins.
type Strategy struct {
	// Name identifies the strategy in logs and tests.
	Name string

	// Extract returns the client IP and whether this strategy applied.
	Extract func(r *http.Request) (string, bool)
}

// DefaultStrategies returns the extraction order: trusted connecting-IP
// header, then the first hop of a forwarded-for chain, then the socket peer.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{
			Name: "cf-connecting-ip",
			Extract: func(r *http.Request) (string, bool) {
				ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP"))
				return ip, ip != ""
			},
		},
		{
			Name: "x-forwarded-for",
			Extract: func(r *http.Request) (string, bool) {
				chain := r.Header.Get("X-Forwarded-For")
				if chain == "" {
					return "", false
				}
				first, _, _ := strings.Cut(chain, ",")
				first = strings.TrimSpace(first)
				return first, first != ""
			},
		},
		{
			Name: "remote-addr",
			Extract: func(r *http.Request) (string, bool) {
				host, _, err := net.SplitHostPort(r.RemoteAddr)
				if err != nil || host == "" {
					return "", false
				}
				return host, true
			},
		},
	}
}

// ClientKey derives the limiter key for a request by trying strategies in
// order, falling back to the shared unknown bucket.
func ClientKey(strategies []Strategy, r *http.Request) string {
	for _, s := range strategies {
		if ip, ok := s.Extract(r); ok {
			return keyPrefix + ip
		}
	}
	return keyPrefix + UnknownClient
}
