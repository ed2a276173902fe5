package frappe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/c360/docgraph/datasource"
	"github.com/c360/docgraph/errors"
	"github.com/c360/docgraph/metric"
	"github.com/c360/docgraph/pkg/retry"
)

const (
	// connectionMethodAPI marks REST access in ConnectionStatus.Method.
	connectionMethodAPI = "api"

	// probeTimeout caps a single reachability probe so a dead host
	// does not stall the whole connection check.
	probeTimeout = 5 * time.Second

	pingPath     = "/api/method/ping"
	resourcePath = "/api/resource/"
	typeResource = "DocType"
)

// Config holds connection settings for a Frappe-compatible backend.
type Config struct {
	// BaseURL is the root of the backend instance.
	BaseURL string `json:"base_url"`

	// APIKey and APISecret form the token credential pair. Both empty
	// means unauthenticated access, which only reaches guest endpoints.
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`

	// Timeout is the per-request timeout in seconds. Zero selects the
	// default.
	Timeout int `json:"timeout"`

	// RetryCount is how many times a failed request is retried after
	// the first attempt. Zero disables retries.
	RetryCount int `json:"retry_count"`

	// ListLimit bounds how many type names a single listing request
	// returns. Zero selects the default.
	ListLimit int `json:"list_limit"`

	// DiscoveryPorts are probed on localhost when the configured
	// BaseURL does not answer. Empty selects the default ports.
	DiscoveryPorts []int `json:"discovery_ports"`
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"base_url is required")
	}

	if _, err := url.Parse(c.BaseURL); err != nil {
		return errors.WrapInvalid(err, "Config", "Validate", "invalid base_url format")
	}

	if c.Timeout < 0 || c.Timeout > 300 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"timeout must be between 0 and 300 seconds")
	}

	if c.RetryCount < 0 || c.RetryCount > 10 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"retry_count must be between 0 and 10")
	}

	if c.ListLimit < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"list_limit cannot be negative")
	}

	for _, port := range c.DiscoveryPorts {
		if port < 1 || port > 65535 {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				fmt.Sprintf("discovery port %d out of range", port))
		}
	}

	if (c.APIKey == "") != (c.APISecret == "") {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"api_key and api_secret must be set together")
	}

	return nil
}

// DefaultConfig returns default configuration for a local backend
func DefaultConfig() Config {
	return Config{
		BaseURL:        "http://localhost:8000",
		Timeout:        30,
		RetryCount:     3,
		ListLimit:      500,
		DiscoveryPorts: []int{8000, 8001, 8080, 9000},
	}
}

// Option configures optional client collaborators.
type Option func(*Client)

// WithLogger sets the logger used for request and discovery events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics wires the client into the core metrics set.
func WithMetrics(m *metric.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// Client is a datasource.Source backed by the Frappe REST API. All
// reads go through /api/resource endpoints with token authentication;
// transient failures are retried with exponential backoff.
//
// The base URL can move during CheckConnection when port discovery
// finds the backend on another local port, so every request reads it
// under a lock.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metric.Metrics
	retryCfg   retry.Config

	mu      sync.RWMutex
	baseURL string
}

// compile-time interface check
var _ datasource.Source = (*Client)(nil)

// NewClient validates cfg, fills unset fields from DefaultConfig and
// returns a ready client. No network traffic happens until the first
// operation.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	def := DefaultConfig()
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.ListLimit == 0 {
		cfg.ListLimit = def.ListLimit
	}
	if len(cfg.DiscoveryPorts) == 0 {
		cfg.DiscoveryPorts = def.DiscoveryPorts
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.RetryCount + 1

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
		logger:     slog.Default(),
		retryCfg:   retryCfg,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the backend root the client currently targets. The
// value changes when CheckConnection adopts a discovered instance.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

func (c *Client) setBaseURL(base string) {
	c.mu.Lock()
	c.baseURL = strings.TrimRight(base, "/")
	c.mu.Unlock()
}

// CheckConnection pings the configured instance and, when it does not
// answer, probes the discovery ports on localhost. The first instance
// that answers becomes the client's base URL. An unreachable backend
// is reported through the status, not as an error.
func (c *Client) CheckConnection(ctx context.Context) (*datasource.ConnectionStatus, error) {
	start := time.Now()
	status := &datasource.ConnectionStatus{}

	configured := c.BaseURL()
	err := retry.Do(ctx, retry.Quick(), func() error {
		return c.ping(ctx, configured)
	})
	if err == nil {
		status.Connected = true
		status.Method = connectionMethodAPI
		status.Detail = configured
		status.InstancesFound = 1
		c.finishCheck(status, start)
		return status, nil
	}
	if ctx.Err() != nil {
		return nil, errors.WrapTransient(ctx.Err(), "frappe", "CheckConnection",
			"connection check")
	}

	c.logger.Warn("configured instance unreachable, probing local ports",
		"base_url", configured,
		"ports", c.cfg.DiscoveryPorts,
		"error", err)

	instances := c.discoverInstances(ctx)
	status.InstancesFound = len(instances)
	if len(instances) == 0 {
		status.Detail = fmt.Sprintf("no instance reachable at %s or on local ports", configured)
		c.finishCheck(status, start)
		return status, nil
	}

	adopted := instances[0]
	c.setBaseURL(adopted)
	if err := retry.Do(ctx, retry.Quick(), func() error {
		return c.ping(ctx, adopted)
	}); err != nil {
		status.Detail = fmt.Sprintf("discovered instance %s stopped answering: %v", adopted, err)
		c.finishCheck(status, start)
		return status, nil
	}

	status.Connected = true
	status.Method = connectionMethodAPI
	status.Detail = adopted
	c.finishCheck(status, start)
	return status, nil
}

// finishCheck records metrics and logs the outcome of CheckConnection.
func (c *Client) finishCheck(status *datasource.ConnectionStatus, start time.Time) {
	if c.metrics != nil {
		result := "error"
		if status.Connected {
			result = "success"
		}
		c.metrics.RecordSourceRequest("ping", result, time.Since(start))
		c.metrics.RecordSourceStatus(status.Connected)
	}
	if status.Connected {
		c.logger.Info("connected to backend",
			"base_url", status.Detail,
			"instances_found", status.InstancesFound)
	} else {
		c.logger.Warn("backend unreachable", "detail", status.Detail)
	}
}

// discoverInstances probes the discovery ports on localhost and
// returns the base URLs that answered, in port order.
func (c *Client) discoverInstances(ctx context.Context) []string {
	var found []string
	for _, port := range c.cfg.DiscoveryPorts {
		candidate := fmt.Sprintf("http://localhost:%d", port)
		err := retry.Do(ctx, retry.Quick(), func() error {
			return c.ping(ctx, candidate)
		})
		if err == nil {
			c.logger.Debug("instance answered probe", "url", candidate)
			found = append(found, candidate)
			continue
		}
		if ctx.Err() != nil {
			break
		}
	}
	return found
}

// ping issues the unauthenticated health probe against base.
func (c *Client) ping(ctx context.Context, base string) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+pingPath, nil)
	if err != nil {
		return retry.NonRetryable(fmt.Errorf("build probe request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d: %s", errors.ErrBadStatus, resp.StatusCode, resp.Status)
	}
	return nil
}

// ListTypes returns the names of all entity types the backend hosts,
// bounded by the configured list limit.
func (c *Client) ListTypes(ctx context.Context) ([]string, error) {
	start := time.Now()

	query := url.Values{}
	query.Set("limit_page_length", strconv.Itoa(c.cfg.ListLimit))

	var envelope listEnvelope
	err := c.get(ctx, resourcePath+typeResource+"?"+query.Encode(), &envelope)
	c.observe("list_types", start, err)
	if err != nil {
		return nil, errors.Wrap(err, "frappe", "ListTypes", "type listing")
	}

	names := make([]string, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		if item.Name == "" {
			continue
		}
		names = append(names, item.Name)
	}

	c.logger.Debug("listed entity types", "count", len(names))
	return names, nil
}

// GetSchema fetches the full schema document for one entity type.
func (c *Client) GetSchema(ctx context.Context, typeName string) (*datasource.Schema, error) {
	if typeName == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingField, "frappe", "GetSchema",
			"type name is required")
	}

	start := time.Now()

	var envelope schemaEnvelope
	err := c.get(ctx, resourcePath+typeResource+"/"+url.PathEscape(typeName), &envelope)
	c.observe("schema", start, err)
	if err != nil {
		return nil, errors.Wrap(err, "frappe", "GetSchema", "schema fetch")
	}

	if envelope.Data.empty() {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %s", errors.ErrEmptySchema, typeName),
			"frappe", "GetSchema", "schema validation")
	}

	return envelope.Data.toSchema(typeName), nil
}

// SampleRecords fetches up to limit full documents of the given type.
// The request asks for all fields so relationship discovery sees real
// values rather than bare names.
func (c *Client) SampleRecords(ctx context.Context, typeName string, limit int) ([]datasource.Record, error) {
	if typeName == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingField, "frappe", "SampleRecords",
			"type name is required")
	}
	if limit <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "frappe", "SampleRecords",
			fmt.Sprintf("limit must be positive, got %d", limit))
	}

	start := time.Now()

	query := url.Values{}
	query.Set("fields", `["*"]`)
	query.Set("limit_page_length", strconv.Itoa(limit))

	var envelope recordsEnvelope
	err := c.get(ctx, resourcePath+url.PathEscape(typeName)+"?"+query.Encode(), &envelope)
	c.observe("records", start, err)
	if err != nil {
		return nil, errors.Wrap(err, "frappe", "SampleRecords", "record sampling")
	}

	c.logger.Debug("sampled records", "type", typeName, "count", len(envelope.Data))
	return envelope.Data, nil
}

// observe records one source request metric with its outcome.
func (c *Client) observe(endpoint string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	c.metrics.RecordSourceRequest(endpoint, result, time.Since(start))
}

// get issues an authenticated GET with retry and decodes the JSON
// response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	return retry.Do(ctx, c.retryCfg, func() error {
		return c.getOnce(ctx, path, out)
	})
}

func (c *Client) getOnce(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL()+path, nil)
	if err != nil {
		return retry.NonRetryable(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain the body so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		statusErr := fmt.Errorf("%w: HTTP %d: %s", errors.ErrBadStatus, resp.StatusCode, resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return retry.NonRetryable(statusErr)
		}
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return retry.NonRetryable(fmt.Errorf("decode response: %w", err))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// authorize attaches the token credential header when configured.
func (c *Client) authorize(req *http.Request) {
	if c.cfg.APIKey == "" {
		return
	}
	req.Header.Set("Authorization", "token "+c.cfg.APIKey+":"+c.cfg.APISecret)
}
