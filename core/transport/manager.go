package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config configures a Manager.
type Config struct {
	// Name labels the endpoint in logs, metrics and errors (e.g. "management").
	Name string

	// URL is the GraphQL endpoint.
	URL string

	// Credentials are attached to every request.
	Credentials Credentials

	// MaxWorkers bounds the number of in-flight calls (default: 5).
	MaxWorkers int

	// RateLimit is the allowed requests per second. Zero disables rate limiting.
	RateLimit float64

	// RateBurst is the token bucket size (default: MaxWorkers).
	RateBurst int

	// Timeout for a single attempt (default: 60s).
	Timeout time.Duration

	// MaxRetries for retryable failures (default: 3). Negative disables retries.
	MaxRetries int

	// RetryBaseDelay is the first backoff delay (default: 200ms).
	RetryBaseDelay time.Duration

	// HTTPClient overrides the HTTP client (for tests/stubs).
	HTTPClient *http.Client

	// Logger receives debug traces of every call.
	Logger *zap.Logger

	// OnError is notified of every failed call.
	OnError ErrorNotifier
}

// DefaultMaxWorkers is the worker budget suited for independent-item writes.
const DefaultMaxWorkers = 5

// Manager executes GraphQL calls against one endpoint.
type Manager struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger

	sem *semaphore.Weighted

	mu          sync.RWMutex
	credentials Credentials
}

// New creates a Manager, applying defaults to unset fields.
func New(cfg Config) *Manager {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = DefaultMaxWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 200 * time.Millisecond
	}
	if cfg.Name == "" {
		cfg.Name = "graphql"
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = cfg.MaxWorkers
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Manager{
		cfg:         cfg,
		client:      client,
		limiter:     rate.NewLimiter(limit, burst),
		logger:      logger.With(zap.String("endpoint", cfg.Name)),
		credentials: cfg.Credentials,
		sem:         semaphore.NewWeighted(int64(cfg.MaxWorkers)),
	}
}

// Name returns the endpoint label.
func (m *Manager) Name() string {
	return m.cfg.Name
}

// MaxWorkers returns the worker budget.
func (m *Manager) MaxWorkers() int {
	return m.cfg.MaxWorkers
}

// SetCredentials replaces the credentials attached to subsequent requests.
func (m *Manager) SetCredentials(c Credentials) {
	m.mu.Lock()
	m.credentials = c
	m.mu.Unlock()
}

// Push executes one call under the worker budget and rate limit.
func (m *Manager) Push(ctx context.Context, req Request) (*Response, error) {
	m.mu.RLock()
	creds := m.credentials
	m.mu.RUnlock()

	if err := m.sem.Acquire(ctx, 1); err != nil {
		return nil, m.fail(fmt.Errorf("%s: acquire worker: %w", m.cfg.Name, err))
	}
	defer m.sem.Release(1)

	inFlight.WithLabelValues(m.cfg.Name).Inc()
	defer inFlight.WithLabelValues(m.cfg.Name).Dec()

	if err := m.limiter.Wait(ctx); err != nil {
		return nil, m.fail(fmt.Errorf("%s: rate limiter: %w", m.cfg.Name, err))
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, m.fail(fmt.Errorf("%s: marshal request: %w", m.cfg.Name, err))
	}

	started := time.Now()
	resp, err := m.doWithRetry(ctx, body, creds, req.IsMutation())
	observeCall(m.cfg.Name, time.Since(started), err, resp)

	if err != nil {
		return nil, m.fail(err)
	}
	if len(resp.Errors) > 0 {
		return resp, m.fail(&RemoteError{Endpoint: m.cfg.Name, Errors: resp.Errors})
	}
	return resp, nil
}

func (m *Manager) doWithRetry(ctx context.Context, body []byte, creds Credentials, mutation bool) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt <= m.cfg.MaxRetries; attempt++ {
		resp, err := m.doOnce(ctx, body, creds)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRetryable(ctx, err, mutation) || attempt == m.cfg.MaxRetries {
			break
		}

		backoff := m.cfg.RetryBaseDelay * time.Duration(1<<uint(attempt))
		m.logger.Debug("Retrying call", zap.Int("attempt", attempt+1), zap.Duration("backoff", backoff), zap.Error(err))
		retries.WithLabelValues(m.cfg.Name).Inc()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return nil, fmt.Errorf("%s: %w", m.cfg.Name, lastErr)
}

func (m *Manager) doOnce(ctx context.Context, body []byte, creds Credentials) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	creds.Apply(httpReq.Header)

	httpResp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: httpResp.StatusCode, Message: string(raw)}
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &resp, nil
}

func (m *Manager) fail(err error) error {
	m.logger.Debug("Call failed", zap.Error(err))
	if m.cfg.OnError != nil {
		m.cfg.OnError(err)
	}
	return err
}

// isRetryable determines if an error should be retried. A mutation is only sent
// again when the server cannot have applied it: a 429 answer or a failed dial.
func isRetryable(ctx context.Context, err error, mutation bool) bool {
	if ctx.Err() != nil {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if mutation {
			return httpErr.IsRateLimited()
		}
		return httpErr.IsRateLimited() || httpErr.IsServerError()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if mutation {
		var opErr *net.OpError
		return errors.As(err, &opErr) && opErr.Op == "dial"
	}
	// Network level failures surface as wrapped *url.Error values.
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
