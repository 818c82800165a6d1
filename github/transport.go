package github

import (
	"net/http"
	"time"

	"github.com/reenignearcher/pagegate/fetch"
)

// tokenTransport is an HTTP RoundTripper that attaches the personal access
// token and the GitHub media type to every request.
type tokenTransport struct {
	token string
	base  http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	req2 := req.Clone(req.Context())
	req2.Header.Set("Authorization", "token "+t.token)
	req2.Header.Set("Accept", "application/vnd.github+json")

	return base.RoundTrip(req2)
}

// newHTTPClient builds the authenticated, retrying client used for both the
// REST and GraphQL endpoints.
func newHTTPClient(token string, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &fetch.RetryTransport{
			Base: &tokenTransport{token: token},
		},
		Timeout: timeout,
	}
}
