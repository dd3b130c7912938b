package fetcher

import (
	"errors"
	"fmt"
)

// ErrFetch is matched by every FetchError via errors.Is.
var ErrFetch = errors.New("fetch failed")

// FetchError reports a transport failure (StatusCode 0) or an unsuccessful
// HTTP status.
type FetchError struct {
	Source     string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s fetch %s: status %d: %v", e.Source, e.URL, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s fetch %s: status %d", e.Source, e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("%s fetch %s: %v", e.Source, e.URL, e.Err)
	}
}

// Unwrap exposes the transport error.
func (e *FetchError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrFetch) match.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// StatusError builds a FetchError for an unsuccessful response.
func StatusError(source, url string, status int) *FetchError {
	return &FetchError{Source: source, URL: url, StatusCode: status}
}

// TransportError builds a FetchError for a failed round trip.
func TransportError(source, url string, err error) *FetchError {
	return &FetchError{Source: source, URL: url, Err: err}
}
