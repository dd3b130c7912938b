// Package fetcher defines the contract shared by the REST, plain HTTP and
// headless-browser fetchers.
package fetcher

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Source names label fetches in logs and metrics.
const (
	SourceREST     = "rest"
	SourceHTTP     = "http"
	SourceHeadless = "headless"
)

// BasicAuth carries HTTP basic credentials.
type BasicAuth struct {
	Username string
	Password string
}

// Request captures everything needed to fetch a URL.
type Request struct {
	URL     string
	Query   url.Values
	Headers http.Header
	Auth    *BasicAuth
}

// Response is the raw payload returned by a Fetcher.
type Response struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
	Rendered   bool
}

// Fetcher performs a single request and returns the raw body. Non-2xx
// responses and transport failures are reported as *FetchError. No retry is
// attempted.
type Fetcher interface {
	Fetch(ctx context.Context, request Request) (Response, error)
}

// Successful reports whether status is a 2xx code.
func Successful(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// WithQuery returns raw with query merged into its existing parameters.
func WithQuery(raw string, query url.Values) (string, error) {
	if len(query) == 0 {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", &FetchError{URL: raw, Err: err}
	}
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
