package savvy

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

// Config controls the provider client.
type Config struct {
	// BaseURL points at the JSON facade, scheme and port included.
	BaseURL string
	// User and Pass ride along as plain header values on every request.
	// The facade accepts nothing stronger; do not mistake this for auth.
	User      string
	Pass      string
	UserAgent string
	Timeout   time.Duration
	// Delay is the courtesy pause after every successful read.
	Delay time.Duration
}

// pauser abstracts the courtesy pause so tests can skip real sleeping.
type pauser interface {
	Pause(ctx context.Context, delay time.Duration)
}

type timerPauser struct{}

func (timerPauser) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Client fetches provider payloads over HTTP via a Colly collector.
type Client struct {
	cfg           Config
	baseCollector *colly.Collector
	pauser        pauser
	logger        *zap.Logger
}

// NewClient builds a provider client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("provider base url required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts []colly.CollectorOption
	if cfg.UserAgent != "" {
		opts = append(opts, colly.UserAgent(cfg.UserAgent))
	}
	base := colly.NewCollector(opts...)
	base.IgnoreRobotsTxt = true
	// Clones share the visited-URL store, and re-reading a facade path is
	// legitimate, so revisit bookkeeping must not reject it.
	base.AllowURLRevisit = true
	base.WithTransport(newHTTPTransport())

	return &Client{
		cfg:           cfg,
		baseCollector: base,
		pauser:        timerPauser{},
		logger:        logger,
	}, nil
}

// Fetch performs a single blocking read of path and returns the raw payload.
// Credentials are attached to the request, the courtesy pause runs after the
// body arrives, and any transport failure comes back as a *FetchError. There
// are no retries.
func (c *Client) Fetch(ctx context.Context, path string) ([]byte, error) {
	collector := c.baseCollector.Clone()
	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	collector.SetRequestTimeout(timeout)

	var (
		body     []byte
		fetchErr error
	)
	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("user", c.cfg.User)
		r.Headers.Set("pass", c.cfg.Pass)
	})
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = &FetchError{Path: path, Status: status, Err: err}
	})

	c.logger.Debug("fetching", zap.String("path", path))
	if err := c.runCollector(ctx, collector, joinURL(c.cfg.BaseURL, path), path, &fetchErr); err != nil {
		return nil, err
	}

	c.pauser.Pause(ctx, c.cfg.Delay)
	return body, nil
}

// runCollector executes the visit in its own goroutine so a canceled context
// does not leave the caller stuck behind a slow response.
func (c *Client) runCollector(ctx context.Context, collector *colly.Collector, target, path string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(target)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if *fetchErr != nil {
			return *fetchErr
		}
		if err != nil {
			return &FetchError{Path: path, Err: err}
		}
		return nil
	}
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
	}
}
