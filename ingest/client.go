// Package ingest talks to the git1file ingestion service: the live stats
// query, the full ingestion request and its markdown-only variant.
//
// Every call is one-shot. Non-2xx responses become *errors.ServiceError
// carrying the service's "detail" message when it sent one.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/git1file/git1file/errors"
	"github.com/git1file/git1file/internal/httpclient"
	"github.com/git1file/git1file/logger"
)

// Client is an ingestion service client
type Client struct {
	baseURL    string
	httpClient *httpclient.Client
	logger     *zap.SugaredLogger
}

// Config holds client configuration
type Config struct {
	BaseURL      string             // e.g. "http://localhost:8000/api/v1"
	Timeout      time.Duration      // overall per-request cap; 0 = none
	MaxRedirects int                // 0 = default
	HTTPClient   *httpclient.Client // overrides Timeout/MaxRedirects when set
	Logger       *zap.SugaredLogger // nil = nop logger
}

// NewClient creates a client for the service at cfg.BaseURL
func NewClient(cfg Config) (*Client, error) {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = httpclient.New(cfg.Timeout, httpclient.Options{MaxRedirects: cfg.MaxRedirects})
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if _, err := httpClient.ValidateURL(base); err != nil {
		return nil, errors.Wrapf(err, "invalid service URL %q", cfg.BaseURL)
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		logger:     logger.OrNop(cfg.Logger),
	}, nil
}

// BaseURL returns the normalized service base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Stats fetches the live preview for source
func (c *Client) Stats(ctx context.Context, source string, mode Mode) (StatsSnapshot, error) {
	q := url.Values{}
	q.Set("source", source)
	q.Set("mode", string(mode))

	body, err := c.do(ctx, http.MethodGet, c.baseURL+"/stats?"+q.Encode(), nil)
	if err != nil {
		return StatsSnapshot{}, err
	}

	var snapshot StatsSnapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return StatsSnapshot{}, errors.Wrap(err, "failed to decode stats response")
	}
	return snapshot, nil
}

// Ingest submits the full ingestion request and returns the flattened text
func (c *Client) Ingest(ctx context.Context, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	includeMarkdown := opts.IncludeMarkdown
	body, err := c.post(ctx, c.baseURL+"/ingest", ingestRequest{
		Source:          opts.Source,
		Format:          opts.Format,
		Mode:            opts.Mode,
		IncludeMarkdown: &includeMarkdown,
		Compress:        opts.Compress,
	})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// IngestMarkdown requests only the repository's markdown documents.
// Compression is always off for this export.
func (c *Client) IngestMarkdown(ctx context.Context, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	body, err := c.post(ctx, c.baseURL+"/ingest/markdown", ingestRequest{
		Source:   opts.Source,
		Format:   opts.Format,
		Mode:     opts.Mode,
		Compress: false,
	})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Health queries the service's health endpoint, which lives at the service
// root rather than under the API prefix.
func (c *Client) Health(ctx context.Context) (Health, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return Health{}, errors.Wrap(err, "invalid service URL")
	}
	u.Path = "/health"
	u.RawQuery = ""

	body, err := c.do(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Health{}, err
	}

	var health Health
	if err := json.Unmarshal(body, &health); err != nil {
		return Health{}, errors.Wrap(err, "failed to decode health response")
	}
	return health, nil
}

func (c *Client) post(ctx context.Context, endpoint string, req ingestRequest) ([]byte, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}
	return c.do(ctx, http.MethodPost, endpoint, reqBody)
}

// do performs one request and returns the body of a 2xx response
func (c *Client) do(ctx context.Context, method, endpoint string, reqBody []byte) ([]byte, error) {
	// the service sees the same request ID the log lines carry
	if logger.RequestIDFromContext(ctx) == "" {
		ctx, _ = httpclient.WithRequestID(ctx)
	}

	var bodyReader io.Reader
	if reqBody != nil {
		bodyReader = bytes.NewReader(reqBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	log := c.logger.With(logger.FieldsFromContext(ctx)...)
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Debugw("request failed",
			logger.FieldMethod, method,
			logger.FieldURL, endpoint,
			logger.FieldError, err,
		)
		return nil, errors.Mark(errors.Wrapf(err, "%s %s", method, endpoint), errors.ErrServiceUnavailable)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	log.Debugw("request completed",
		logger.FieldMethod, method,
		logger.FieldURL, endpoint,
		logger.FieldStatus, resp.StatusCode,
		logger.FieldSize, len(respBody),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.NewServiceError(resp.StatusCode, detailFrom(respBody))
	}
	return respBody, nil
}

// detailFrom extracts a non-empty string "detail" field from an error body
func detailFrom(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if s, ok := eb.Detail.(string); ok {
		return s
	}
	return ""
}
