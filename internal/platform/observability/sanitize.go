package observability

import (
	"strings"
	"unicode"
)

// Rune limits for values copied into structured logs.
const (
	routeLimit  = 180
	methodLimit = 10
	idLimit     = 64
	valueLimit  = 256
)

// clip drops control characters and keeps at most limit runes.
func clip(value string, limit int) string {
	if limit <= 0 {
		limit = valueLimit
	}
	var b strings.Builder
	b.Grow(min(len(value), limit))
	kept := 0
	for _, r := range value {
		if kept == limit {
			break
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
		kept++
	}
	return b.String()
}

// SanitizeRoute cleans a route or path for logging.
func SanitizeRoute(route string) string {
	if route == "" {
		return "/"
	}
	return clip(route, routeLimit)
}

// SanitizeMethod cleans an HTTP method for logging.
func SanitizeMethod(method string) string { return clip(method, methodLimit) }

// SanitizeUserID cleans a user identifier for logging.
func SanitizeUserID(uid string) string { return clip(uid, idLimit) }

// eventValue clips free text such as cake messages or customer names before
// it reaches an event log line. Non-string values pass through.
func eventValue(v any) any {
	switch value := v.(type) {
	case string:
		return clip(value, valueLimit)
	case []string:
		out := make([]string, len(value))
		for i, s := range value {
			out[i] = clip(s, valueLimit)
		}
		return out
	default:
		return v
	}
}
