// Package restclient issues authenticated JSON requests against the botdash API.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/botdash/botdash-cli/internal/constants"
	"github.com/botdash/botdash-cli/internal/credentials"
	"github.com/botdash/botdash-cli/internal/environments"
)

// Response is a raw HTTP response with its body already read.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zerolog.Logger
	maxBody    int64
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client. Its transport is used as-is,
// so callers are responsible for wrapping it with a HeaderTransport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		c.maxBody = n
	}
}

func New(creds *credentials.Credentials, environmentSet *environments.EnvironmentSet, l *zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(environmentSet.APIURL, "/"),
		httpClient: &http.Client{
			Transport: NewHeaderTransport(creds, nil),
		},
		log:     l,
		maxBody: constants.MaxProvisioningResponseSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostJSON marshals body, posts it to path and returns the response whatever
// its status. Only transport-level failures are returned as errors.
func (c *Client) PostJSON(ctx context.Context, path string, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug().Str("client", "REST").Str("method", req.Method).Str("path", path).Msg("sending request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.log.Debug().Str("client", "REST").Str("path", path).Int("status", resp.StatusCode).Msg("received response")

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}
