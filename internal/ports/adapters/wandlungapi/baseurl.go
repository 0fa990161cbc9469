package wandlungapi

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

const defaultBaseURL = "http://localhost:8000"

// defaultAllowedHosts applies when WANDLUNG_ALLOWED_HOSTS is empty.
var defaultAllowedHosts = map[string]struct{}{
	"localhost": {},
	"127.0.0.1": {},
	"::1":       {},
}

// loopbackNames are non-IP hosts that resolve to this machine.
var loopbackNames = map[string]struct{}{
	"localhost":             {},
	"localhost.localdomain": {},
	"ip6-localhost":         {},
}

func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return strings.TrimRight(baseURL, "/")
}

func ValidateBaseURL(baseURL string, allowedHosts []string) error {
	baseURL = normalizeBaseURL(baseURL)

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid WANDLUNG_BASE_URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("invalid WANDLUNG_BASE_URL %q: absolute URL with host is required", baseURL)
	}
	if u.User != nil {
		return fmt.Errorf("invalid WANDLUNG_BASE_URL %q: userinfo is not allowed", baseURL)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("invalid WANDLUNG_BASE_URL %q: query and fragment are not allowed", baseURL)
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("invalid WANDLUNG_BASE_URL %q: host is required", baseURL)
	}

	switch scheme {
	case "https":
	case "http":
		// Plain http only for a server on this machine.
		if !isLoopback(host) {
			return fmt.Errorf("invalid WANDLUNG_BASE_URL %q: https is required for non-local hosts", baseURL)
		}
	default:
		return fmt.Errorf("invalid WANDLUNG_BASE_URL %q: scheme must be http or https", baseURL)
	}

	allowed := normalizeAllowedHosts(allowedHosts)
	if _, ok := allowed[host]; !ok {
		return fmt.Errorf("invalid WANDLUNG_BASE_URL %q: host %q is not in WANDLUNG_ALLOWED_HOSTS", baseURL, host)
	}
	return nil
}

// isLoopback reports whether plain http to host stays on this machine.
// It says nothing about whether host is allowed.
func isLoopback(host string) bool {
	if _, ok := loopbackNames[host]; ok {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func normalizeAllowedHosts(allowedHosts []string) map[string]struct{} {
	if len(allowedHosts) == 0 {
		return defaultAllowedHosts
	}

	out := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		v := strings.ToLower(strings.TrimSpace(h))
		v = strings.TrimPrefix(v, "http://")
		v = strings.TrimPrefix(v, "https://")
		v = strings.Trim(v, "/")
		if v == "" {
			continue
		}
		if strings.HasPrefix(v, "[") {
			// [::1]:8000
			if i := strings.Index(v, "]"); i >= 0 {
				v = v[1:i]
			}
		} else if i := strings.LastIndex(v, ":"); i >= 0 && strings.Count(v, ":") == 1 {
			v = v[:i]
		}
		out[v] = struct{}{}
	}
	if len(out) == 0 {
		return defaultAllowedHosts
	}
	return out
}
