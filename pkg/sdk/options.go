package querygate

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	contentURL string
	qmsURL     string
	timeout    time.Duration

	qmEnabled   bool
	blacklist   string
	expandQuery *bool
	fields      []FieldConfig

	httpClient *http.Client
	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithContentServer sets the content backend address. Required.
func WithContentServer(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.contentURL = url
	})
}

// WithQMSServer sets the query manipulation backend address.
// Without it, enhanced queries run on the content backend and promotions are empty.
func WithQMSServer(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.qmsURL = url
	})
}

// WithQueryManipulation enables query manipulation with an optional blacklist.
func WithQueryManipulation(enabled bool, blacklist string) Option {
	return optionFunc(func(c *clientConfig) {
		c.qmEnabled = enabled
		c.blacklist = blacklist
	})
}

// WithExpandQuery controls query expansion on the query manipulation backend.
// Defaults to true.
func WithExpandQuery(expand bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.expandQuery = &expand
	})
}

// WithFields declares the fields extracted from every hit.
func WithFields(fields ...FieldConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.fields = append(c.fields, fields...)
	})
}

// WithHTTPClient sets the HTTP client used for both backends.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithTimeout bounds every backend request. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
