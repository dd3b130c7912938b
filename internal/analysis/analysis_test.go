package analysis

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/webanalysis/internal/fetcher"
	"github.com/JakeFAU/webanalysis/internal/present"
	"github.com/JakeFAU/webanalysis/internal/storage/memory"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "extract", "testdata", name))
	require.NoError(t, err)
	return b
}

type harness struct {
	deps  Deps
	store *memory.BlobStore
	out   *bytes.Buffer
}

func newHarness() *harness {
	h := &harness{store: memory.NewBlobStore(), out: &bytes.Buffer{}}
	console := present.NewConsole(h.out, nil)
	h.deps = Deps{
		Presenter: present.Multi{console, present.NewHTML(h.store, "run", nil)},
		Reporter:  console,
		HeadRows:  5,
	}
	return h
}

func serve(t *testing.T, r chi.Router) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// staticFetcher returns a canned response, standing in for a browser.
type staticFetcher struct {
	body     []byte
	err      error
	requests []fetcher.Request
}

func (f *staticFetcher) Fetch(_ context.Context, req fetcher.Request) (fetcher.Response, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return fetcher.Response{}, f.err
	}
	return fetcher.Response{URL: req.URL, StatusCode: http.StatusOK, Body: f.body, Rendered: true}, nil
}
