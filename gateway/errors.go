package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

const maxPlainErrorLength = 200

// StatusError is a non-2xx response from an upstream service. Message is
// ready to show in the checkout error banner.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %d: %s", e.StatusCode, e.Message)
}

// ErrorMessage extracts the most specific display message from an error
// response body. Handled shapes: a JSON string, {"error": …}, {"message": …},
// and field → [messages] validation maps (bare or under "error"/"errors").
// Non-JSON bodies are truncated; empty ones fall back to the status text.
func ErrorMessage(statusCode int, status string, body []byte) string {
	fallback := statusText(statusCode, status)
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fallback
	}

	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return truncate(trimmed, maxPlainErrorLength)
	}
	if msg := messageFrom(v); msg != "" {
		return msg
	}
	return fallback
}

func messageFrom(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		for _, key := range []string{"error", "message", "errors"} {
			inner, ok := t[key]
			if !ok {
				continue
			}
			if msg := messageFrom(inner); msg != "" {
				return msg
			}
		}
		return flattenValidation(t)
	case []any:
		return joinMessages(t)
	}
	return ""
}

// flattenValidation joins field → messages maps into one string, ordered by field.
func flattenValidation(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var parts []string
	for _, k := range keys {
		switch val := m[k].(type) {
		case []any:
			if msg := joinMessages(val); msg != "" {
				parts = append(parts, msg)
			}
		case string:
			if s := strings.TrimSpace(val); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, ", ")
}

func joinMessages(list []any) string {
	var parts []string
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	return strings.Join(parts, ", ")
}

func statusText(code int, status string) string {
	if s := strings.TrimSpace(status); s != "" {
		// http.Response.Status is "502 Bad Gateway"; keep the text part.
		if _, text, ok := strings.Cut(s, " "); ok && strings.HasPrefix(s, fmt.Sprint(code)) {
			return text
		}
		return s
	}
	if t := http.StatusText(code); t != "" {
		return t
	}
	return "Request failed"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
