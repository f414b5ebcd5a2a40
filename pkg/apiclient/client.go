// Package apiclient is the BarangayLink API client: an HTTP core with bearer
// attachment and a single-retry token refresh protocol, thin call groups for
// each REST resource, and a Session that owns the signed-in user's tokens.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Credentials is the read side of a session as seen by the Client. The
// Session is the only implementation that writes tokens; the Client only
// reads the access token and asks for a refresh or an invalidation.
type Credentials interface {
	AccessToken() string
	Refresh(ctx context.Context) error
	Invalidate(reason error)
}

// Client sends calls to the BarangayLink REST API.
type Client struct {
	baseURL    string
	wsURL      string
	timeout    time.Duration
	httpClient *http.Client
	userAgent  string
	logger     logrus.FieldLogger

	mu    sync.RWMutex
	creds Credentials
}

// New creates a Client for the API rooted at baseURL (for example
// "https://barangay.example.org/api").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   DefaultTimeout,
		userAgent: "barangaylink-go/1.0",
		logger:    logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.timeout,
		}
	}
	if c.wsURL == "" {
		c.wsURL = deriveWebSocketURL(c.baseURL)
	}

	return c
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetCredentials attaches the token source used for bearer auth and the
// refresh protocol. Passing nil detaches it.
func (c *Client) SetCredentials(creds Credentials) {
	c.mu.Lock()
	c.creds = creds
	c.mu.Unlock()
}

func (c *Client) credentials() Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creds
}

// request describes one logical call. It is never mutated once built, so the
// same descriptor can be re-issued by the retry path.
type request struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   []byte
	// stream builds a fresh body for each attempt; set for uploads.
	stream     func() (io.Reader, string, error)
	replayable bool
	noAuth     bool
	noRefresh  bool
}

// attempt is the record threaded through the retry path: the original
// descriptor plus how many times it has been sent before.
type attempt struct {
	req *request
	n   int
}

func (a attempt) retry() attempt {
	return attempt{req: a.req, n: a.n + 1}
}

// Response is a successful reply unwrapped from the {success, data, message}
// envelope.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Success    bool
	Message    string
	Data       json.RawMessage
}

// Decode unmarshals the envelope's data field into v.
func (r *Response) Decode(v any) error {
	if v == nil || len(r.Data) == 0 || string(r.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

type envelope struct {
	Success *bool           `json:"success"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
	Detail  json.RawMessage `json:"detail"`
	Data    json.RawMessage `json:"data"`
}

// Send issues a call and applies the refresh protocol on a 401. body may be
// nil, a []byte of JSON, or any value that encodes to JSON.
func (c *Client) Send(ctx context.Context, method, path string, body any, opts ...CallOption) (*Response, error) {
	req, err := newRequest(method, path, body, opts)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, attempt{req: req})
}

// Get issues a GET and decodes the response data into out.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.call(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post issues a POST and decodes the response data into out.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.call(ctx, http.MethodPost, path, body, out, opts...)
}

// Put issues a PUT and decodes the response data into out.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.call(ctx, http.MethodPut, path, body, out, opts...)
}

// Patch issues a PATCH and decodes the response data into out.
func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.call(ctx, http.MethodPatch, path, body, out, opts...)
}

// Delete issues a DELETE and decodes the response data into out.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.call(ctx, http.MethodDelete, path, nil, out, opts...)
}

func (c *Client) call(ctx context.Context, method, path string, body, out any, opts ...CallOption) error {
	resp, err := c.Send(ctx, method, path, body, opts...)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

func newRequest(method, path string, body any, opts []CallOption) (*request, error) {
	req := &request{
		method:     method,
		path:       path,
		query:      url.Values{},
		header:     http.Header{},
		replayable: true,
	}

	switch b := body.(type) {
	case nil:
	case []byte:
		req.body = b
	case json.RawMessage:
		req.body = b
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		req.body = encoded
	}

	for _, opt := range opts {
		opt(req)
	}
	return req, nil
}

// do runs one attempt and, on a 401, the refresh-then-retry path. The retry
// is strictly sequential and happens at most once per logical call.
func (c *Client) do(ctx context.Context, a attempt) (*Response, error) {
	resp, sentToken, err := c.roundTrip(ctx, a)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 400 {
		return resp, nil
	}

	callErr := c.responseError(a.req, resp)
	if resp.StatusCode != http.StatusUnauthorized || a.req.noRefresh {
		return nil, callErr
	}

	creds := c.credentials()
	if creds == nil {
		callErr.Kind = KindAuthInvalid
		return nil, callErr
	}

	if a.n > 0 {
		c.logger.WithFields(logrus.Fields{
			"method": a.req.method,
			"path":   a.req.path,
		}).Warn("call rejected again after token refresh")
		callErr.Kind = KindAuthInvalid
		creds.Invalidate(callErr)
		return nil, callErr
	}

	// Another call may already have rotated the token while this one was in
	// flight; in that case retry with the new token instead of refreshing again.
	if current := creds.AccessToken(); current == "" || current == sentToken {
		err := creds.Refresh(ctx)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			// The caller's context ended; the session stays as it is.
			return nil, &Error{
				Kind:   kindForTransport(ctx, ctx.Err()),
				Method: a.req.method,
				Path:   a.req.path,
				Err:    ctx.Err(),
			}
		case errors.Is(err, ErrSessionChanged):
			if creds.AccessToken() == "" {
				callErr.Kind = KindAuthInvalid
				return nil, callErr
			}
		default:
			c.logger.WithError(err).WithField("path", a.req.path).Warn("token refresh failed")
			invalid := &Error{
				Kind:    KindAuthInvalid,
				Status:  http.StatusUnauthorized,
				Message: callErr.Message,
				Method:  a.req.method,
				Path:    a.req.path,
				Err:     err,
			}
			creds.Invalidate(invalid)
			return nil, invalid
		}
	}

	if !a.req.replayable {
		return nil, callErr
	}
	return c.do(ctx, a.retry())
}

// roundTrip sends a single attempt and reads the full body. It returns the
// bearer token that was attached so the retry path can tell whether a
// refresh already happened elsewhere.
func (c *Client) roundTrip(ctx context.Context, a attempt) (*Response, string, error) {
	r := a.req
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var (
		bodyReader  io.Reader
		contentType string
	)
	switch {
	case r.stream != nil:
		reader, ct, err := r.stream()
		if err != nil {
			return nil, "", err
		}
		bodyReader, contentType = reader, ct
	case r.body != nil:
		bodyReader, contentType = bytes.NewReader(r.body), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.method, target, bodyReader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	for k, vs := range r.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", uuid.New().String())
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	var token string
	if !r.noAuth {
		if creds := c.credentials(); creds != nil {
			token = creds.AccessToken()
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.logger.WithFields(logrus.Fields{
		"method":  r.method,
		"path":    r.path,
		"attempt": a.n,
	}).Debug("api call")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, token, &Error{
			Kind:   kindForTransport(ctx, err),
			Method: r.method,
			Path:   r.path,
			Err:    err,
		}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, token, &Error{
			Kind:   kindForTransport(ctx, err),
			Status: httpResp.StatusCode,
			Method: r.method,
			Path:   r.path,
			Err:    fmt.Errorf("failed to read response body: %w", err),
		}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       raw,
		Success:    httpResp.StatusCode < 400,
	}

	var env envelope
	if len(raw) > 0 && json.Unmarshal(raw, &env) == nil {
		if env.Success != nil {
			resp.Success = *env.Success
		}
		resp.Message = env.Message
		resp.Data = env.Data
	}

	return resp, token, nil
}

// responseError builds the error for a non-2xx response, preferring the
// server's own message.
func (c *Client) responseError(r *request, resp *Response) *Error {
	return &Error{
		Kind:    kindForStatus(resp.StatusCode),
		Status:  resp.StatusCode,
		Message: errorMessage(resp),
		Method:  r.method,
		Path:    r.path,
	}
}

func errorMessage(resp *Response) string {
	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err == nil {
		if env.Message != "" {
			return env.Message
		}
		for _, raw := range []json.RawMessage{env.Error, env.Detail} {
			var s string
			if len(raw) > 0 && json.Unmarshal(raw, &s) == nil && s != "" {
				return s
			}
		}
	}
	return http.StatusText(resp.StatusCode)
}

func deriveWebSocketURL(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String()
}

// IsAuthFailure reports whether err means the caller must sign in again.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrAuthInvalid) || errors.Is(err, ErrNoSession)
}
