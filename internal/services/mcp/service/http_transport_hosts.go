package service

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// validateLocalRequest checks Host and Origin against the allowed hosts to
// block DNS rebinding.
func (t *HTTPTransport) validateLocalRequest(r *http.Request) error {
	if r == nil {
		return fmt.Errorf("invalid request")
	}
	if !t.isAllowedHostHeader(r.Host) {
		return fmt.Errorf("invalid host")
	}

	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return nil
	}
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("invalid origin")
	}
	if !t.isAllowedHostHeader(parsed.Host) {
		return fmt.Errorf("invalid origin")
	}
	return nil
}

func (t *HTTPTransport) isAllowedHostHeader(host string) bool {
	resolved, ok := normalizeHost(host)
	if !ok {
		return false
	}
	if isLoopbackHost(resolved) {
		return true
	}
	_, ok = t.allowedHosts[strings.ToLower(resolved)]
	return ok
}

func isLoopbackHost(host string) bool {
	switch strings.ToLower(strings.TrimSpace(host)) {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}

func parseAllowedHosts(hosts []string) map[string]struct{} {
	result := make(map[string]struct{}, len(hosts))
	for _, entry := range hosts {
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			continue
		}
		result[strings.ToLower(trimmed)] = struct{}{}
	}
	return result
}

// normalizeHost strips the port and IPv6 brackets from a Host or Origin host.
func normalizeHost(host string) (string, bool) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", false
	}

	if strings.HasPrefix(host, "[") {
		if splitHost, _, err := net.SplitHostPort(host); err == nil {
			return splitHost, true
		}
		if strings.HasSuffix(host, "]") {
			return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]"), true
		}
		return "", false
	}
	// Bare IPv6.
	if strings.Count(host, ":") > 1 {
		return host, true
	}
	if strings.Contains(host, ":") {
		splitHost, _, err := net.SplitHostPort(host)
		if err != nil {
			return "", false
		}
		return splitHost, true
	}
	return host, true
}

func (t *HTTPTransport) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := t.validateLocalRequest(r); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		t.server.logger.Warn("write health response", "error", err)
	}
}
