// Package xapi is a client for the device management API, it lists devices
// and runs xAPI commands on them.
package xapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/metal-toolbox/xapictl/internal/app"
	"github.com/metal-toolbox/xapictl/internal/metrics"
	"github.com/metal-toolbox/xapictl/internal/version"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

const (
	pkgName = "internal/xapi"

	// trackingIDHeader correlates the requests of one run on the server side.
	trackingIDHeader = "TrackingID"

	// maxErrorBody limits the response body read back on a failed request.
	maxErrorBody = 64 << 10
)

var (
	ErrClientInit = errors.New("error initializing API client")
	ErrRequest    = errors.New("error in API request")
	ErrResponse   = errors.New("error in API response")
)

// StatusError is returned when the API responds with a non success status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	// Body is the raw response body.
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Client is the device management API client.
type Client struct {
	endpoint   *url.URL
	pageSize   int
	trackingID string
	client     *retryablehttp.Client
	logger     *logrus.Logger
}

// Option sets optional Client parameters.
type Option func(*Client)

// WithTrackingID sets the TrackingID header sent on every request.
func WithTrackingID(id string) Option {
	return func(c *Client) {
		c.trackingID = id
	}
}

// WithHTTPClient sets the base HTTP client the bearer token and retry transports wrap.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client.HTTPClient = hc
	}
}

// NewClient returns an API client which authenticates requests with the given bearer token.
//
// Requests are not retried unless the configuration sets RetryMax.
func NewClient(cfg *app.Configuration, token string, logger *logrus.Logger, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, errors.Wrap(ErrClientInit, app.ErrNoToken.Error())
	}

	endpoint := cfg.EndpointURL
	if endpoint == nil {
		if cfg.Endpoint == "" {
			return nil, errors.Wrap(ErrClientInit, "endpoint not defined")
		}

		var err error
		if endpoint, err = url.Parse(cfg.Endpoint); err != nil {
			return nil, errors.Wrap(ErrClientInit, "endpoint URL error: "+err.Error())
		}
	}

	// init retryable http client
	retryableClient := retryablehttp.NewClient()
	retryableClient.RetryMax = cfg.RetryMax

	// hand back the last response instead of an error once retries are exhausted,
	// so non success statuses are reported with their body.
	retryableClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	// disable default debug logging on the retryable client
	if logger.Level < logrus.DebugLevel {
		retryableClient.Logger = nil
	} else {
		retryableClient.Logger = logger
	}

	c := &Client{
		endpoint: endpoint,
		pageSize: cfg.PageSize,
		client:   retryableClient,
		logger:   logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	base := c.client.HTTPClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	// wrap the bearer token transport around the otel transport to collect telemetry
	c.client.HTTPClient.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
		Base:   otelhttp.NewTransport(base),
	}

	if cfg.HTTPTimeout > 0 {
		c.client.HTTPClient.Timeout = cfg.HTTPTimeout
	}

	return c, nil
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body interface{}) (*retryablehttp.Request, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, errors.Wrap(ErrRequest, err.Error())
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.trackingID != "" {
		req.Header.Set(trackingIDHeader, c.trackingID)
	}

	return req, nil
}

// do sends the request and records its duration under the endpoint label.
func (c *Client) do(req *retryablehttp.Request, endpoint string) (*http.Response, error) {
	started := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		// the passthrough error handler returns the last response along with the retry policy error,
		// the response is what gets reported.
		if resp != nil {
			c.logger.WithError(err).WithField("url", req.URL.String()).Debug("request retries exhausted")
			metrics.ObserveAPIRequest(endpoint, resp.StatusCode, started)

			return resp, nil
		}

		metrics.ObserveAPIRequest(endpoint, 0, started)

		return nil, err
	}

	metrics.ObserveAPIRequest(endpoint, resp.StatusCode, started)

	return resp, nil
}

// statusError reads back the response body into a StatusError.
func statusError(req *retryablehttp.Request, resp *http.Response) *StatusError {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		body = []byte("unreadable response body: " + err.Error())
	}

	return &StatusError{
		Method:     req.Method,
		URL:        req.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}
