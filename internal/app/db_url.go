package app

import (
	"net/url"
	"strings"
)

// redactDSN hides the password of URL-style DSNs for logs. File paths and
// keyword DSNs without a password pass through.
func redactDSN(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" && parsed.User != nil {
		return parsed.Redacted()
	}

	fields := strings.Fields(trimmed)
	if len(fields) < 2 {
		return trimmed
	}
	for idx, token := range fields {
		if strings.HasPrefix(token, "password=") {
			fields[idx] = "password=xxxxx"
		}
	}
	return strings.Join(fields, " ")
}
