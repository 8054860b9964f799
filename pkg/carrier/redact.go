package carrier

import (
	"net/http"
	"strings"
)

const redactedValue = "[REDACTED]"

// sensitiveHeaders are never written to logs or error payloads,
// regardless of error category. Matching is case-insensitive.
var sensitiveHeaders = map[string]struct{}{
	"authorization": {},
	"api-key":       {},
	"x-api-key":     {},
	"password":      {},
	"token":         {},
	"cookie":        {},
	"set-cookie":    {},
}

// SensitiveHeader reports whether the named header must be redacted
// before any diagnostic representation of a request or response.
func SensitiveHeader(name string) bool {
	_, ok := sensitiveHeaders[strings.ToLower(name)]
	return ok
}

// RedactHeaders returns a copy of h with sensitive values replaced.
// The input header is left untouched.
func RedactHeaders(h http.Header) http.Header {
	if h == nil {
		return nil
	}
	out := make(http.Header, len(h))
	for name, values := range h {
		if SensitiveHeader(name) {
			out[name] = []string{redactedValue}
			continue
		}
		copied := make([]string, len(values))
		copy(copied, values)
		out[name] = copied
	}
	return out
}
