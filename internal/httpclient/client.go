// Package httpclient is the shared HTTP transport: a resty client paced by
// a per-exchange token bucket. It surfaces the raw status and body so each
// venue's error classifier can inspect them; it never retries on its own.
package httpclient

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"cexlink/internal/exchange"
	"cexlink/internal/metrics"
	"cexlink/logger"
)

const defaultTimeout = 15 * time.Second

// Client executes signed requests for one exchange.
type Client struct {
	exchangeID string
	rest       *resty.Client
	limiter    *rate.Limiter
	log        *logger.Entry
}

// New builds a transport for one exchange. rps <= 0 disables pacing.
func New(exchangeID string, timeout time.Duration, rps float64, burst int) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	rest := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		exchangeID: exchangeID,
		rest:       rest,
		limiter:    limiter,
		log:        logger.GetLogger().WithComponent("httpclient").WithExchange(exchangeID),
	}
}

// Do executes the wire request produced by a venue's signer and returns the
// HTTP status and raw body. A non-2xx status is not an error here: the
// venue's handleErrors decides what it means.
func (c *Client) Do(ctx context.Context, req exchange.Request) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := endpointLabel(req.URL)
	start := time.Now()

	r := c.rest.R().SetContext(ctx)
	if len(req.Headers) > 0 {
		r.SetHeaders(req.Headers)
	}
	if req.Body != "" {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.URL)
	elapsed := time.Since(start).Seconds()
	metrics.ObserveRequest(c.exchangeID, endpoint, req.Method, elapsed)

	if err != nil {
		metrics.ObserveError(c.exchangeID, endpoint, "transport")
		c.log.WithError(err).WithFields(logger.Fields{
			"method":   req.Method,
			"endpoint": endpoint,
		}).Error("request failed")
		return 0, nil, fmt.Errorf("%s request to %s failed: %w", c.exchangeID, endpoint, err)
	}

	c.log.WithFields(logger.Fields{
		"method":   req.Method,
		"endpoint": endpoint,
		"status":   resp.StatusCode(),
		"elapsed":  elapsed,
	}).Debug("request complete")

	return resp.StatusCode(), resp.Body(), nil
}

// ReportError feeds a classified error back into the request metrics.
func (c *Client) ReportError(rawURL string, kind exchange.Kind) {
	metrics.ObserveError(c.exchangeID, endpointLabel(rawURL), string(kind))
}

func endpointLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}
