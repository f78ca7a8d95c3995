// Package httpclient provides the HTTP client used to reach the ingestion
// service: scheme validation, a redirect cap and request IDs on every call.
package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/git1file/git1file/errors"
	"github.com/git1file/git1file/logger"
	"github.com/git1file/git1file/version"
)

// RequestIDHeader carries the per-request correlation ID
const RequestIDHeader = "X-Request-ID"

// Client wraps http.Client with URL validation and request tagging
type Client struct {
	*http.Client
	allowedSchemes []string
	maxRedirects   int
}

// Options customizes a Client. Zero values take the defaults.
type Options struct {
	AllowedSchemes []string          // Default: ["http", "https"]
	MaxRedirects   int               // Default: 10
	Transport      http.RoundTripper // Default: a tuned http.Transport
}

// New creates a client with the given overall request timeout.
// A zero timeout means no client-side limit (the context still applies).
func New(timeout time.Duration, opts Options) *Client {
	allowedSchemes := opts.AllowedSchemes
	if len(allowedSchemes) == 0 {
		allowedSchemes = []string{"http", "https"}
	}

	maxRedirects := opts.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 10
	}

	base := opts.Transport
	if base == nil {
		dialer := &net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}
		base = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
	}

	client := &Client{
		Client: &http.Client{
			Timeout:   timeout,
			Transport: &requestIDTransport{base: base},
		},
		allowedSchemes: allowedSchemes,
		maxRedirects:   maxRedirects,
	}

	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= client.maxRedirects {
			return errors.Newf("stopped after %d redirects", client.maxRedirects)
		}
		if err := client.validateURL(req.URL); err != nil {
			return errors.Wrap(err, "redirect blocked")
		}
		return nil
	}

	return client
}

// validateURL rejects schemes outside the allow list and URLs without a host
func (c *Client) validateURL(u *url.URL) error {
	scheme := strings.ToLower(u.Scheme)
	allowed := false
	for _, allowedScheme := range c.allowedSchemes {
		if scheme == allowedScheme {
			allowed = true
			break
		}
	}
	if !allowed {
		return errors.Newf("scheme %q not allowed (allowed: %v)", scheme, c.allowedSchemes)
	}

	if u.Hostname() == "" {
		return errors.New("URL missing hostname")
	}

	return nil
}

// ValidateURL validates a URL string before creating a request
func (c *Client) ValidateURL(urlStr string) (*url.URL, error) {
	u, err := url.Parse(urlStr)
	if err != nil {
		return nil, errors.Wrap(err, "invalid URL")
	}

	if err := c.validateURL(u); err != nil {
		return nil, err
	}

	return u, nil
}

// Do validates and executes the request
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := c.validateURL(req.URL); err != nil {
		return nil, errors.Wrap(err, "request blocked")
	}
	return c.Client.Do(req)
}

// requestIDTransport stamps every outgoing request with a request ID,
// reusing the one already on the context if present.
type requestIDTransport struct {
	base http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(RequestIDHeader) != "" {
		return t.base.RoundTrip(req)
	}

	id := logger.RequestIDFromContext(req.Context())
	if id == "" {
		id = uuid.NewString()
	}

	// RoundTrippers must not modify the caller's request
	clone := req.Clone(req.Context())
	clone.Header.Set(RequestIDHeader, id)
	if clone.Header.Get("User-Agent") == "" {
		clone.Header.Set("User-Agent", version.UserAgent())
	}
	return t.base.RoundTrip(clone)
}

// WithRequestID returns a context carrying a fresh request ID, for callers
// that want to log with the same ID the service will see.
func WithRequestID(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return logger.WithRequestID(ctx, id), id
}
