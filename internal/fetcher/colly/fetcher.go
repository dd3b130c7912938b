// Package collyfetcher implements fetcher.Fetcher using gocolly for plain
// GETs of robots.txt files, sitemaps and static pages.
package collyfetcher

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/webanalysis/internal/fetcher"
	"github.com/JakeFAU/webanalysis/internal/metrics"
)

// DefaultMaxBodySize covers the largest sitemap sitemaps.org allows (50 MB).
const DefaultMaxBodySize = 50 << 20

// ErrBodyTooLarge is wrapped by the FetchError of a response that reached
// the body limit. Colly truncates such bodies silently.
var ErrBodyTooLarge = errors.New("response body reached size limit")

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	// MaxBodySize caps the bytes read per response. Zero means
	// DefaultMaxBodySize, negative means unlimited.
	MaxBodySize int
}

// Fetcher implements fetcher.Fetcher using the Colly collector.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
	logger        *zap.Logger
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := colly.NewCollector(
		colly.Async(false),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	c.WithTransport(newHTTPTransport())

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
		logger:        logger,
	}
}

// Fetch executes a single HTTP GET using Colly.
func (f *Fetcher) Fetch(ctx context.Context, request fetcher.Request) (fetcher.Response, error) {
	target, err := fetcher.WithQuery(request.URL, request.Query)
	if err != nil {
		return fetcher.Response{}, err
	}

	var (
		result   fetcher.Response
		fetchErr error
	)
	start := time.Now()
	collector := f.buildCollector()
	f.configureCollectorHooks(collector, request, start, &result, &fetchErr)

	err = f.runCollector(ctx, collector, target, &fetchErr)
	if err == nil && !fetcher.Successful(result.StatusCode) {
		err = fetcher.StatusError(fetcher.SourceHTTP, target, result.StatusCode)
	}
	if limit := collector.MaxBodySize; err == nil && limit > 0 && len(result.Body) >= limit {
		err = &fetcher.FetchError{
			Source:     fetcher.SourceHTTP,
			URL:        target,
			StatusCode: result.StatusCode,
			Err:        fmt.Errorf("%w of %d bytes", ErrBodyTooLarge, limit),
		}
	}
	metrics.ObserveFetch(fetcher.SourceHTTP, target, err, len(result.Body), time.Since(start))
	if err != nil {
		f.logger.Warn("http fetch failed", zap.String("url", target), zap.Error(err))
		return fetcher.Response{}, err
	}
	f.logger.Debug("http fetch complete",
		zap.String("url", result.URL),
		zap.Int("status", result.StatusCode),
		zap.Int("bytes", len(result.Body)),
	)
	return result, nil
}

func (f *Fetcher) buildCollector() *colly.Collector {
	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	timeout := f.cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collector.SetRequestTimeout(timeout)
	switch {
	case f.cfg.MaxBodySize < 0:
		collector.MaxBodySize = 0
	case f.cfg.MaxBodySize == 0:
		collector.MaxBodySize = DefaultMaxBodySize
	default:
		collector.MaxBodySize = f.cfg.MaxBodySize
	}
	return collector
}

func (f *Fetcher) configureCollectorHooks(
	hooks collectorHooks,
	request fetcher.Request,
	start time.Time,
	result *fetcher.Response,
	fetchErr *error,
) {
	hooks.OnRequest(func(r *colly.Request) {
		copyHeaders(request, r)
	})

	hooks.OnResponse(func(r *colly.Response) {
		*result = fetcher.Response{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Headers:    r.Headers.Clone(),
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})

	hooks.OnError(func(r *colly.Response, err error) {
		target := request.URL
		status := 0
		if r != nil {
			status = r.StatusCode
			if r.Request != nil && r.Request.URL != nil {
				target = r.Request.URL.String()
			}
		}
		*fetchErr = &fetcher.FetchError{
			Source:     fetcher.SourceHTTP,
			URL:        target,
			StatusCode: status,
			Err:        err,
		}
	})
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fetcher.TransportError(fetcher.SourceHTTP, url, fmt.Errorf("colly fetch canceled: %w", ctx.Err()))
	case err := <-done:
		if *fetchErr != nil {
			return *fetchErr
		}
		if err != nil {
			return fetcher.TransportError(fetcher.SourceHTTP, url, fmt.Errorf("colly visit failed: %w", err))
		}
		return nil
	}
}

func copyHeaders(request fetcher.Request, r *colly.Request) {
	for key, values := range request.Headers {
		for _, v := range values {
			r.Headers.Add(key, v)
		}
	}
	if request.Auth != nil {
		r.Headers.Set("Authorization", basicAuthHeader(request.Auth))
	}
}

func basicAuthHeader(auth *fetcher.BasicAuth) string {
	token := base64.StdEncoding.EncodeToString([]byte(auth.Username + ":" + auth.Password))
	return "Basic " + token
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
