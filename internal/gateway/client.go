package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-report-portal/pkg/middleware/requestid"
	"github.com/noah-isme/faculty-report-portal/pkg/retry"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
)

const maxBodyBytes = 8 << 20

// Observer receives one observation per upstream attempt.
type Observer interface {
	ObserveUpstream(method, endpoint string, status int, duration time.Duration)
}

// Config wires the upstream client.
type Config struct {
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Retry        retry.Policy
	HTTPClient   *http.Client
	Observer     Observer
	Logger       *zap.Logger
}

// Client talks to the faculty REST API on behalf of a portal session.
type Client struct {
	baseURL      string
	readTimeout  time.Duration
	writeTimeout time.Duration
	policy       retry.Policy
	http         *http.Client
	observer     Observer
	logger       *zap.Logger
}

// New constructs a Client. Zero timeouts fall back to 10s reads and 15s writes.
func New(cfg Config) *Client {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		policy:       cfg.Retry,
		http:         cfg.HTTPClient,
		observer:     cfg.Observer,
		logger:       cfg.Logger,
	}
}

// statusError carries the raw upstream status behind a typed error.
type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Body)
}

func retryable(err error) bool {
	if errors.Is(err, appErrors.ErrNetwork) {
		return true
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.Status == http.StatusTooManyRequests || se.Status >= http.StatusInternalServerError
	}
	return false
}

// get performs an idempotent read with the retry policy and decodes into out.
func (c *Client) get(ctx context.Context, token, path string, out interface{}) error {
	var body []byte
	err := retry.Do(ctx, c.policy, retryable, func(ctx context.Context, attempt int) error {
		callCtx, cancel := context.WithTimeout(ctx, c.readTimeout)
		defer cancel()
		var err error
		body, err = c.roundTrip(callCtx, http.MethodGet, token, path, nil)
		if err != nil && attempt > 1 {
			c.logger.Debug("upstream read retry failed", zap.String("path", path), zap.Int("attempt", attempt), zap.Error(err))
		}
		return err
	})
	if err != nil {
		return err
	}
	return decodeBody(body, out)
}

// send performs a single write under the write timeout. Writes are never
// retried and require a token.
func (c *Client) send(ctx context.Context, method, token, path string, payload, out interface{}) error {
	if token == "" {
		return appErrors.ErrMissingToken
	}
	return c.sendRaw(ctx, method, token, path, payload, out)
}

func (c *Client) sendRaw(ctx context.Context, method, token, path string, payload, out interface{}) error {
	var encoded []byte
	if payload != nil {
		var err error
		if encoded, err = json.Marshal(payload); err != nil {
			return appErrors.WithCause(appErrors.ErrInternal, fmt.Errorf("encode %s %s: %w", method, path, err))
		}
	}
	callCtx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()
	body, err := c.roundTrip(callCtx, method, token, path, encoded)
	if err != nil {
		return err
	}
	return decodeBody(body, out)
}

func (c *Client) roundTrip(ctx context.Context, method, token, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, appErrors.WithCause(appErrors.ErrInternal, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(method, path, 0, time.Since(start))
		return nil, appErrors.WithCause(appErrors.ErrNetwork, fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.observe(method, path, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, appErrors.WithCause(appErrors.ErrNetwork, fmt.Errorf("read %s %s: %w", method, path, err))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, mapStatus(resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) observe(method, path string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstream(method, endpointLabel(path), status, d)
	}
}

// endpointLabel collapses numeric path segments so metrics stay low-cardinality.
func endpointLabel(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if s != "" && strings.Trim(s, "0123456789") == "" {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}

// mapStatus converts an upstream error status into the portal taxonomy.
func mapStatus(status int, body []byte) error {
	cause := &statusError{Status: status, Body: truncate(string(body), 512)}
	msg := serverMessage(body)
	switch {
	case status == http.StatusUnauthorized:
		return appErrors.WithCause(appErrors.ErrSessionExpired, cause)
	case status == http.StatusForbidden:
		return appErrors.WithCause(appErrors.Clone(appErrors.ErrForbidden, msg), cause)
	case status == http.StatusNotFound:
		return appErrors.WithCause(appErrors.Clone(appErrors.ErrNotFound, msg), cause)
	case status == http.StatusBadRequest, status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		return appErrors.WithCause(appErrors.Clone(appErrors.ErrValidation, msg), cause)
	default:
		return appErrors.WithCause(appErrors.ErrUpstream, cause)
	}
}

// serverMessage extracts the upstream's human readable message, if any.
func serverMessage(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return ""
}

// decodeBody decodes a JSON payload that is either the value itself or
// wrapped as {"data": value}.
func decodeBody(body []byte, out interface{}) error {
	if out == nil {
		return nil
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '{' {
		var wrapper struct {
			Data json.RawMessage `json:"data"`
		}
		if json.Unmarshal(trimmed, &wrapper) == nil && len(wrapper.Data) > 0 && !bytes.Equal(wrapper.Data, []byte("null")) {
			if err := json.Unmarshal(wrapper.Data, out); err == nil {
				return nil
			}
		}
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return appErrors.WithCause(appErrors.ErrMalformedResponse, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
