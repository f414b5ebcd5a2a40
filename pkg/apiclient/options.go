package apiclient

import (
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout is the fixed per-call timeout after which a call fails with
// KindTimeout.
const DefaultTimeout = 30 * time.Second

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client. Its Timeout is left untouched.
// This is useful for testing, proxying, or custom transport configurations.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-call timeout. Defaults to 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for request tracing and refresh failures.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithWebSocketURL sets the push endpoint. When unset it is derived from the
// base URL by swapping the scheme and appending /ws.
func WithWebSocketURL(u string) Option {
	return func(c *Client) {
		c.wsURL = u
	}
}

// CallOption adjusts a single call.
type CallOption func(*request)

// WithQuery adds query parameters to the call.
func WithQuery(q url.Values) CallOption {
	return func(r *request) {
		for k, vs := range q {
			for _, v := range vs {
				r.query.Add(k, v)
			}
		}
	}
}

// WithHeader sets an extra request header.
func WithHeader(key, value string) CallOption {
	return func(r *request) {
		r.header.Set(key, value)
	}
}

// WithoutAuth sends the call without a bearer token.
func WithoutAuth() CallOption {
	return func(r *request) {
		r.noAuth = true
	}
}

// WithoutRefresh disables the refresh protocol for the call; a 401 is
// returned to the caller as KindAuthExpired.
func WithoutRefresh() CallOption {
	return func(r *request) {
		r.noRefresh = true
	}
}
