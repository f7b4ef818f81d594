// Package transport - HTTP клиент бэкенда проверок. Все ответы приходят в конверте {success, data, message}.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"verification_portal/internal/apperrors"
	"verification_portal/internal/metrics"
	"verification_portal/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultTimeout = 30 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type tokenKey struct{}

// WithToken кладет токен вызывающего в контекст, клиент передает его как Bearer
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path
	start := time.Now()

	err := c.roundTrip(ctx, op, method, path, body, out)

	metrics.UpstreamDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	outcome := "success"
	if err != nil {
		outcome = strings.ToLower(string(apperrors.KindOf(err)))
		c.logger.Warn("upstream request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
	} else {
		c.logger.Debug("upstream request completed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", time.Since(start)))
	}
	metrics.UpstreamRequests.WithLabelValues(method, outcome).Inc()

	return err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.Transport(op, fmt.Errorf("failed to marshal request body: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.Transport(op, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.New().String())
	if token := TokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Transport(op, fmt.Errorf("failed to execute request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Transport(op, fmt.Errorf("failed to read response body: %w", err))
	}

	var env model.RawEnvelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp.StatusCode, env.Message)
	}
	if decodeErr != nil {
		return apperrors.Transport(op, fmt.Errorf("failed to decode response: %w", decodeErr))
	}
	if !env.Success {
		return apperrors.TransportMessage(op, env.Message)
	}

	if out == nil || len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperrors.Transport(op, fmt.Errorf("failed to decode response data: %w", err))
	}
	return nil
}

func statusError(op string, status int, message string) error {
	switch status {
	case http.StatusNotFound:
		if message == "" {
			message = "resource not found"
		}
		return apperrors.NotFound(op, message)
	case http.StatusConflict:
		if message == "" {
			message = "operation not allowed in current status"
		}
		return apperrors.InvalidState(op, message)
	case http.StatusUnauthorized, http.StatusForbidden:
		if message == "" {
			message = "access denied by backend"
		}
		return apperrors.Forbidden(op, message)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if message == "" {
			message = "request rejected by backend"
		}
		return apperrors.ValidationMessage(op, message)
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return apperrors.TransportMessage(op, fmt.Sprintf("unexpected status %d: %s", status, message))
}

// IsTransport - true для сетевых ошибок и неуспешных ответов без бизнес-смысла
func IsTransport(err error) bool {
	return err != nil && apperrors.KindOf(err) == apperrors.KindTransport
}
