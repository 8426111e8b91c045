// Package meteo fetches the nowcasting warning feed over HTTP.
package meteo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/sony/gobreaker/v2"

	"github.com/couchcryptid/nowcast-alerts/internal/domain"
)

const userAgent = "nowcast-alerts/1.0 (+https://github.com/couchcryptid/nowcast-alerts)"

// Client retrieves the feed document. Each Fetch is a single GET; retrying is
// left to the poll schedule.
type Client struct {
	url             string
	httpClient      *http.Client
	validateTimeout time.Duration
	maxBytes        int64
	breaker         *gobreaker.CircuitBreaker[[]byte]
	logger          *slog.Logger
}

// Options configures a Client.
type Options struct {
	URL             string
	PollTimeout     time.Duration
	ValidateTimeout time.Duration
	MaxBytes        int64
}

// NewClient creates a feed client. PollTimeout bounds every Fetch;
// ValidateTimeout bounds Validate.
func NewClient(opts Options, logger *slog.Logger) *Client {
	c := &Client{
		url: opts.URL,
		httpClient: &http.Client{
			Timeout: opts.PollTimeout,
		},
		validateTimeout: opts.ValidateTimeout,
		maxBytes:        opts.MaxBytes,
		logger:          logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "meteo-feed",
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// URL returns the feed URL this client polls.
func (c *Client) URL() string { return c.url }

// Fetch performs one GET of the feed. Failures are *domain.FetchError.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		data, _, err := c.get(ctx, c.httpClient, c.url)
		return data, err
	})
	if err != nil {
		var fe *domain.FetchError
		if errors.As(err, &fe) {
			return "", err
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", &domain.FetchError{Kind: domain.FetchErrorNetwork, Err: fmt.Errorf("feed circuit breaker: %w", err)}
		}
		return "", &domain.FetchError{Kind: domain.FetchErrorNetwork, Err: err}
	}
	return string(body), nil
}

// get issues the request and returns the decoded body. Transport failures and
// non-2xx statuses are *domain.FetchError; body decoding failures are plain
// errors.
func (c *Client) get(ctx context.Context, client *http.Client, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml, text/xml;q=0.9, */*;q=0.1")
	req.Header.Set("Accept-Encoding", "gzip, zstd")
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, resp.StatusCode, &domain.FetchError{Kind: domain.FetchErrorHTTP, Status: resp.StatusCode}
	}

	body, err := c.readBody(resp)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func (c *Client) readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("decode gzip body: %w", err)
		}
		defer zr.Close()
		r = zr
	case "zstd":
		zr, err := zstd.NewReader(resp.Body, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("decode zstd body: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	limit := c.maxBytes
	if limit <= 0 {
		return readAll(r)
	}
	data, err := readAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("feed body exceeds %d bytes", limit)
	}
	return data, nil
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		var fe *domain.FetchError
		if t := transportError(err); errors.As(t, &fe) && fe.Kind == domain.FetchErrorTimeout {
			return nil, t
		}
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &domain.FetchError{Kind: domain.FetchErrorTimeout, Err: err}
	}
	return &domain.FetchError{Kind: domain.FetchErrorNetwork, Err: err}
}
