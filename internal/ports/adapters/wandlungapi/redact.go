package wandlungapi

import (
	"regexp"
	"strings"
)

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key"?\s*[:=]\s*)([^\n\r,;}]+)`)
	skKeyRE       = regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{8,}`)
)

func redactSecrets(s string, secrets ...string) string {
	if s == "" {
		return s
	}
	out := s
	for _, k := range secrets {
		if k != "" {
			out = strings.ReplaceAll(out, k, "[REDACTED]")
		}
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = skKeyRE.ReplaceAllString(out, "[REDACTED]")
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
