package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/webanalysis/internal/fetcher"
)

func newIncidentServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/api/now/table/incident", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("Accept") != "application/json" {
			w.WriteHeader(http.StatusNotAcceptable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Fields", r.URL.Query().Get("sysparm_fields"))
		_, _ = w.Write([]byte(`{"result":[{"number":"INC001","state":"1"}]}`))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientFetchSuccess(t *testing.T) {
	t.Parallel()

	srv := newIncidentServer(t)
	client := New(Config{UserAgent: "webanalysis-test", Timeout: 5 * time.Second}, nil)

	resp, err := client.Fetch(context.Background(), fetcher.Request{
		URL:   srv.URL + "/api/now/table/incident",
		Query: url.Values{"sysparm_fields": {"number,state"}},
		Auth:  &fetcher.BasicAuth{Username: "admin", Password: "secret"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "number,state", resp.Headers.Get("X-Fields"))
	assert.JSONEq(t, `{"result":[{"number":"INC001","state":"1"}]}`, string(resp.Body))
	assert.False(t, resp.Rendered)
}

func TestClientFetchStatusError(t *testing.T) {
	t.Parallel()

	srv := newIncidentServer(t)
	client := New(Config{}, nil)

	_, err := client.Fetch(context.Background(), fetcher.Request{
		URL:  srv.URL + "/api/now/table/incident",
		Auth: &fetcher.BasicAuth{Username: "admin", Password: "wrong"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fetcher.ErrFetch))
	var fe *fetcher.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusUnauthorized, fe.StatusCode)
	assert.Equal(t, fetcher.SourceREST, fe.Source)
}

func TestClientFetchTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	client := New(Config{Timeout: time.Second}, nil)
	_, err := client.Fetch(context.Background(), fetcher.Request{URL: addr})
	require.Error(t, err)
	var fe *fetcher.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Zero(t, fe.StatusCode)
	assert.Error(t, fe.Unwrap())
}
