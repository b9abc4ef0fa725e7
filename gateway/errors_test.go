package gateway

import (
	"strings"
	"testing"
)

func TestErrorMessageShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"json string", `"card declined"`, "card declined"},
		{"error field", `{"error":"amount too low","message":"ignored"}`, "amount too low"},
		{"message field", `{"message":"gateway unavailable"}`, "gateway unavailable"},
		{"validation map", `{"errors":{"tx_ref":["has already been taken"],"email":["is invalid","is required"]}}`,
			"is invalid, is required, has already been taken"},
		{"validation under error", `{"error":{"amount":["must be positive"]}}`, "must be positive"},
		{"bare validation map", `{"email":["is invalid"]}`, "is invalid"},
	}
	for _, tc := range cases {
		if got := ErrorMessage(400, "400 Bad Request", []byte(tc.body)); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestErrorMessageFallsBackToStatusText(t *testing.T) {
	if got := ErrorMessage(502, "502 Bad Gateway", nil); got != "Bad Gateway" {
		t.Fatalf("expected status text, got %q", got)
	}
	if got := ErrorMessage(503, "", []byte(`{"detail":42}`)); got != "Service Unavailable" {
		t.Fatalf("expected status text for unrecognized JSON, got %q", got)
	}
}

func TestErrorMessageTruncatesPlainBodies(t *testing.T) {
	body := "<html>" + strings.Repeat("x", 500) + "</html>"
	got := ErrorMessage(500, "500 Internal Server Error", []byte(body))
	if len([]rune(got)) != maxPlainErrorLength+1 {
		t.Fatalf("expected truncated message, got %d runes", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis, got %q", got[len(got)-5:])
	}

	if got := ErrorMessage(500, "", []byte("short failure")); got != "short failure" {
		t.Fatalf("expected short body verbatim, got %q", got)
	}
}
