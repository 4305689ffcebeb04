// Package marketplace implements the gallery API client: extension search
// via the query endpoint and package fetch via the publisher download URL.
// Transient failures are retried with exponential backoff under an injected
// policy so tests can run with zero delay.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/vsget/pkg/domain/interfaces"
	"github.com/m-mizutani/vsget/pkg/domain/model"
	"github.com/m-mizutani/vsget/pkg/domain/types"
	"github.com/m-mizutani/vsget/pkg/utils/logging"
)

const (
	// DefaultEndpoint is the public gallery API root.
	DefaultEndpoint = "https://marketplace.visualstudio.com/_apis/public/gallery"

	apiVersion = "7.2-preview.1"

	// The gallery occasionally rejects clients without a browser-like agent.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

const (
	// DefaultSearchTimeout bounds one query attempt.
	DefaultSearchTimeout = 15 * time.Second
	// DefaultTransferTimeout bounds one package fetch including the body
	// read, sized for large packages on slow links.
	DefaultTransferTimeout = 5 * time.Minute
)

// RetryPolicy bounds the retry loop for transient gallery failures. The
// wait before attempt n+1 is BaseDelay doubled per prior failure.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultRetryPolicy mirrors the gallery's documented rate-limit guidance.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: time.Second}

func (p RetryPolicy) backoff(failed int) time.Duration {
	if failed <= 1 {
		return p.BaseDelay
	}
	return p.BaseDelay << (failed - 1)
}

var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

type client struct {
	endpoint        string
	policy          RetryPolicy
	searchTimeout   time.Duration
	transferTimeout time.Duration

	search   *http.Client
	transfer *http.Client
}

// Option configures the gallery client.
type Option func(*client)

// WithEndpoint overrides the gallery API root, mainly for tests and
// self-hosted galleries. Empty values keep the default.
func WithEndpoint(endpoint string) Option {
	return func(c *client) {
		if endpoint != "" {
			c.endpoint = strings.TrimSuffix(endpoint, "/")
		}
	}
}

// WithRetryPolicy replaces the retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *client) {
		if p.Attempts > 0 {
			c.policy = p
		}
	}
}

// WithSearchTimeout sets the per-attempt deadline for queries.
func WithSearchTimeout(d time.Duration) Option {
	return func(c *client) {
		if d > 0 {
			c.searchTimeout = d
		}
	}
}

// WithTransferTimeout sets the deadline for a package fetch including the
// body read.
func WithTransferTimeout(d time.Duration) Option {
	return func(c *client) {
		if d > 0 {
			c.transferTimeout = d
		}
	}
}

// New creates a gallery client. Both operations share one transport; the
// client is safe for sequential reuse but not for concurrent calls.
func New(opts ...Option) interfaces.MarketplaceClient {
	c := &client{
		endpoint:        DefaultEndpoint,
		policy:          DefaultRetryPolicy,
		searchTimeout:   DefaultSearchTimeout,
		transferTimeout: DefaultTransferTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	c.search = &http.Client{Transport: transport, Timeout: c.searchTimeout}
	c.transfer = &http.Client{Transport: transport, Timeout: c.transferTimeout}
	return c
}

// Search runs one extension query and returns the candidates of the page in
// gallery order.
func (c *client) Search(ctx context.Context, query model.SearchQuery) ([]*model.Candidate, error) {
	payload, err := json.Marshal(newQueryRequest(query))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode gallery query")
	}

	url := c.endpoint + "/extensionquery"
	resp, err := c.do(ctx, c.search, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json; charset=utf-8; api-version="+apiVersion)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, goerr.Wrap(err, "failed to decode gallery response",
			goerr.T(types.TagNetwork), goerr.V("url", url))
	}

	if len(decoded.Results) == 0 {
		return nil, nil
	}
	exts := decoded.Results[0].Extensions
	candidates := make([]*model.Candidate, 0, len(exts))
	for i := range exts {
		candidates = append(candidates, exts[i].toCandidate())
	}
	return candidates, nil
}

// Fetch opens the package stream for the target. TotalBytes is -1 when the
// gallery omits the content length.
func (c *client) Fetch(ctx context.Context, target *model.DownloadTarget) (*model.Payload, error) {
	url := fmt.Sprintf("%s/publishers/%s/vsextensions/%s/%s/vspackage",
		c.endpoint, target.Publisher, target.ExtensionID, target.Version)

	resp, err := c.do(ctx, c.transfer, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	})
	if err != nil {
		return nil, err
	}

	return &model.Payload{
		Body:       resp.Body,
		TotalBytes: resp.ContentLength,
	}, nil
}

// do runs one logical request under the retry policy. Retryable statuses and
// connection-level failures consume the budget; a timeout on any attempt and
// non-retryable statuses fail immediately. The caller owns the response body
// on success.
func (c *client) do(ctx context.Context, hc *http.Client, build func() (*http.Request, error)) (*http.Response, error) {
	logger := logging.From(ctx)

	for attempt := 1; ; attempt++ {
		req, err := build()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build gallery request")
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := hc.Do(req)
		switch {
		case err != nil:
			if types.IsTimeout(err) {
				return nil, goerr.Wrap(err, "gallery request timed out",
					goerr.T(types.TagTimeout), goerr.V("url", req.URL.String()))
			}
			if ctx.Err() != nil {
				return nil, goerr.Wrap(err, "gallery request aborted",
					goerr.V("url", req.URL.String()))
			}
			if attempt >= c.policy.Attempts {
				return nil, goerr.Wrap(err, "gallery unreachable after retries",
					goerr.T(types.TagNetwork),
					goerr.V("attempts", attempt), goerr.V("url", req.URL.String()))
			}
			logger.Warn(fmt.Sprintf("Request failed (attempt %d/%d), retrying: %v",
				attempt, c.policy.Attempts, err))

		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil

		case retryableStatus[resp.StatusCode]:
			resp.Body.Close()
			if attempt >= c.policy.Attempts {
				return nil, goerr.New("gallery kept failing after retries",
					goerr.T(types.TagNetwork),
					goerr.V("status", resp.StatusCode),
					goerr.V("attempts", attempt), goerr.V("url", req.URL.String()))
			}
			logger.Warn(fmt.Sprintf("Gallery returned status %d (attempt %d/%d), retrying",
				resp.StatusCode, attempt, c.policy.Attempts))

		default:
			resp.Body.Close()
			return nil, goerr.New("gallery rejected the request",
				goerr.T(types.TagNetwork),
				goerr.V("status", resp.StatusCode), goerr.V("url", req.URL.String()))
		}

		if err := wait(ctx, c.policy.backoff(attempt)); err != nil {
			return nil, goerr.Wrap(err, "retry wait interrupted")
		}
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
