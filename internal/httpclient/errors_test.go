package httpclient_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/booomerangs/relay-api/internal/httpclient"
)

func TestLooksLikeBlockPage(t *testing.T) {
	assert.True(t, httpclient.LooksLikeBlockPage("<html><body>Access denied</body></html>"))
	assert.True(t, httpclient.LooksLikeBlockPage("<!DOCTYPE html>\n<HTML>"))
	assert.True(t, httpclient.LooksLikeBlockPage("prefix text <html> suffix"))

	assert.False(t, httpclient.LooksLikeBlockPage("ordinary model output"))
	assert.False(t, httpclient.LooksLikeBlockPage("use the <table> tag"))
	assert.False(t, httpclient.LooksLikeBlockPage(""))
}

func TestLooksLikeMissingKey(t *testing.T) {
	assert.True(t, httpclient.LooksLikeMissingKey("401: invalid api_key"))
	assert.True(t, httpclient.LooksLikeMissingKey("missing APIKEY header"))
	assert.True(t, httpclient.LooksLikeMissingKey("bearer token expired"))
	assert.True(t, httpclient.LooksLikeMissingKey("no key supplied"))

	assert.False(t, httpclient.LooksLikeMissingKey("connection refused"))
	assert.False(t, httpclient.LooksLikeMissingKey("model overloaded"))
}

func TestUpstreamErrorBlocked(t *testing.T) {
	blocked := &httpclient.UpstreamError{
		StatusCode: 403,
		Body:       []byte("<html><body>Forbidden</body></html>"),
		URL:        "https://example.com/v1/chat/completions",
	}
	assert.True(t, blocked.Blocked())
	assert.Contains(t, blocked.Error(), "403")

	plain := &httpclient.UpstreamError{StatusCode: 500, Body: []byte(`{"error":"oops"}`)}
	assert.False(t, plain.Blocked())
}
