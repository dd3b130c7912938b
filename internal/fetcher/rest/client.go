// Package rest implements fetcher.Fetcher for JSON REST endpoints using resty.
package rest

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/webanalysis/internal/fetcher"
	"github.com/JakeFAU/webanalysis/internal/metrics"
)

// Config controls the REST client.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Client is a single-shot JSON fetcher. It never retries.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// New builds a Client.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	return &Client{http: client, logger: logger}
}

// Fetch issues a GET and returns the raw JSON body.
func (c *Client) Fetch(ctx context.Context, request fetcher.Request) (fetcher.Response, error) {
	req := c.http.R().SetContext(ctx)
	if request.Auth != nil {
		req.SetBasicAuth(request.Auth.Username, request.Auth.Password)
	}
	if len(request.Query) > 0 {
		req.SetQueryParamsFromValues(request.Query)
	}
	for key, values := range request.Headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	start := time.Now()
	resp, err := req.Get(request.URL)
	duration := time.Since(start)
	if err != nil {
		fetchErr := fetcher.TransportError(fetcher.SourceREST, request.URL, err)
		metrics.ObserveFetch(fetcher.SourceREST, request.URL, fetchErr, 0, duration)
		return fetcher.Response{}, fetchErr
	}

	finalURL := request.URL
	if resp.Request != nil && resp.Request.URL != "" {
		finalURL = resp.Request.URL
	}
	if !fetcher.Successful(resp.StatusCode()) {
		fetchErr := fetcher.StatusError(fetcher.SourceREST, finalURL, resp.StatusCode())
		metrics.ObserveFetch(fetcher.SourceREST, request.URL, fetchErr, len(resp.Body()), duration)
		c.logger.Warn("rest fetch unsuccessful",
			zap.String("url", request.URL),
			zap.Int("status", resp.StatusCode()),
		)
		return fetcher.Response{}, fetchErr
	}

	body := append([]byte(nil), resp.Body()...)
	metrics.ObserveFetch(fetcher.SourceREST, request.URL, nil, len(body), duration)
	c.logger.Debug("rest fetch complete",
		zap.String("url", request.URL),
		zap.Int("status", resp.StatusCode()),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", duration),
	)
	return fetcher.Response{
		URL:        finalURL,
		StatusCode: resp.StatusCode(),
		Headers:    resp.Header().Clone(),
		Body:       body,
		Duration:   duration,
	}, nil
}
