package aci

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/querygate/internal/domain"
	"github.com/kailas-cloud/querygate/internal/metrics"
)

// maxErrorBody bounds how much of a non-200 body is kept for the error message.
const maxErrorBody = 512

// Config holds the settings of one backend channel.
type Config struct {
	Channel    Channel
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client executes actions against one backend channel over HTTP.
type Client struct {
	channel Channel
	baseURL string
	timeout time.Duration
	http    *http.Client
	logger  *zap.Logger
}

// NewClient validates cfg and creates a channel client.
func NewClient(cfg *Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid %s backend url %q", cfg.Channel, cfg.BaseURL)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		channel: cfg.Channel,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		http:    hc,
		logger:  log.With(zap.String("channel", string(cfg.Channel))),
	}, nil
}

// Channel returns the channel this client talks to.
func (c *Client) Channel() Channel { return c.channel }

// Execute posts the action and returns the <responsedata> node of a successful response.
// Backend-reported failures are returned as *domain.BackendError.
func (c *Client) Execute(ctx context.Context, params *Parameters) (*Node, error) {
	action := params.Action()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	data, errType, err := c.do(ctx, params)
	duration := time.Since(start)

	metrics.BackendRequestDuration.WithLabelValues(string(c.channel), action).Observe(duration.Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(string(c.channel), action, "error").Inc()
		metrics.BackendErrorsTotal.WithLabelValues(string(c.channel), action, errType).Inc()
		c.logger.Debug("Backend request failed",
			zap.String("action", action),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.BackendRequestsTotal.WithLabelValues(string(c.channel), action, "success").Inc()
	c.logger.Debug("Backend request",
		zap.String("action", action),
		zap.Int("params", params.Len()),
		zap.Duration("duration", duration),
	)
	return data, nil
}

func (c *Client) do(ctx context.Context, params *Parameters) (*Node, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, "transport", fmt.Errorf("build %s request: %w", params.Action(), err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, "transport", fmt.Errorf("%s %s: %w", c.channel, params.Action(), err)
		}
		return nil, "transport", fmt.Errorf("%s %s: %v: %w", c.channel, params.Action(), err, domain.ErrBackend)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, "http_status", fmt.Errorf("%s %s: http %d: %s: %w",
			c.channel, params.Action(), resp.StatusCode, strings.TrimSpace(string(body)), domain.ErrBackend)
	}

	root, err := Decode(resp.Body)
	if err != nil {
		return nil, "decode", fmt.Errorf("%s %s: %w", c.channel, params.Action(), err)
	}
	data, err := Unwrap(params.Action(), root)
	if err != nil {
		var be *domain.BackendError
		if errors.As(err, &be) {
			return nil, "aci", err
		}
		return nil, "decode", fmt.Errorf("%s %s: %w", c.channel, params.Action(), err)
	}
	return data, "", nil
}

// Ping checks the channel is reachable with GetVersion.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.Execute(ctx, NewParameters(ActionGetVersion)); err != nil {
		return fmt.Errorf("ping %s: %w", c.channel, err)
	}
	return nil
}
