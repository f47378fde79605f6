// Package http dispatches assembled requests over the wire and measures
// them. It is the only suspending step in the send flow: everything before
// (resolve, assemble) and after (normalize) is synchronous.
package http

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/avdeev/apilab/internal/core"
	"golang.org/x/net/publicsuffix"
)

// DefaultTimeout caps how long a dispatch may take. The original tool could
// hang forever on a silent endpoint; every send here carries a deadline.
const DefaultTimeout = 30 * time.Second

// RawResponse is the untouched result of one dispatch, before
// normalization. Elapsed is measured from just before the request goes out
// until the status line and headers are available.
type RawResponse struct {
	Status     int
	StatusText string
	Headers    map[string]string
	Body       []byte
	Elapsed    time.Duration
}

// Client dispatches requests via net/http.
type Client struct {
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// NewClient creates a dispatcher with a cookie jar and the default timeout.
func NewClient(opts ...Option) *Client {
	jar, _ := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})

	client := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// WithTimeout sets the request timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithNoRedirects disables automatic redirect following.
func WithNoRedirects() Option {
	return func(c *Client) {
		c.httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
}

// WithCookieJar replaces the default cookie jar. Nil disables cookies.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.httpClient.Jar = jar
	}
}

// WithTransport sets a custom HTTP transport.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = transport
	}
}

// Send dispatches the assembled request and captures the raw response. A
// transport failure (DNS, refused connection, timeout, cancellation) is
// returned as-is for the caller to fold into a single user-facing message.
func (c *Client) Send(ctx context.Context, req *core.Assembled) (*RawResponse, error) {
	var bodyReader io.Reader
	if req.HasBody() {
		bodyReader = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(req.Method), req.URL, bodyReader)
	if err != nil {
		return nil, err
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	startTime := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	endTime := time.Now()
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	return &RawResponse{
		Status:     httpResp.StatusCode,
		StatusText: core.StatusTextOf(httpResp.Status, httpResp.StatusCode),
		Headers:    flattenHeaders(httpResp.Header),
		Body:       bodyBytes,
		Elapsed:    endTime.Sub(startTime),
	}, nil
}

// flattenHeaders collapses response headers into a plain string map.
// Repeated headers are joined the way the browser's header iterator
// presents them.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for key, values := range h {
		result[key] = strings.Join(values, ", ")
	}
	return result
}
