package httpclient

import (
	"fmt"
	"strings"
)

// UpstreamError represents an error returned by an upstream service
type UpstreamError struct {
	StatusCode int
	Body       []byte
	URL        string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status %d from %s", e.StatusCode, e.URL)
}

// Blocked reports whether the upstream body looks like an anti-bot block
// page rather than an API response.
func (e *UpstreamError) Blocked() bool {
	return LooksLikeBlockPage(string(e.Body))
}

// LooksLikeBlockPage detects HTML where text was expected. Free-tier
// backends answer blocked or redirected requests with a full HTML page;
// the substring check is the only signature those pages share.
func LooksLikeBlockPage(s string) bool {
	return strings.Contains(strings.ToLower(s), "<html")
}

// LooksLikeMissingKey guesses whether an unstructured provider error was
// caused by absent credentials. Backend failure text is free-form, so
// this stays a substring match.
func LooksLikeMissingKey(errText string) bool {
	lower := strings.ToLower(errText)
	for _, marker := range []string{"api_key", "apikey", "token", "key"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
