package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"lingo_learn_client/internal/config"
	"lingo_learn_client/internal/util"
	"lingo_learn_client/pkg/monitoring"
	"lingo_learn_client/pkg/tracing"

	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

// TokenSource 提供当前持久化令牌，空串表示无会话
type TokenSource interface {
	GetToken() string
}

// Client 远端课程/进度API的HTTP封装：固定超时、自动注入Bearer令牌、
// 出站限流、typed错误翻译
type Client struct {
	baseURL    string
	deviceName string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
	timeout    time.Duration
}

func New(cfg *config.APIConfig, tokens TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		deviceName: cfg.DeviceName,
		httpClient: &http.Client{},
		tokens:     tokens,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RatePerSecond),
		timeout:    cfg.Timeout,
	}
}

// do 发送一次请求并把响应解码到out（out可为nil）。
// 所有错误都翻译为util的typed错误。
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return util.WrapNetwork(err, errors.Is(err, context.DeadlineExceeded))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := tracing.Tracer.Start(ctx, fmt.Sprintf("%s %s", method, path))
	defer span.End()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// 已有令牌且调用方未显式设置时自动注入
	if req.Header.Get("Authorization") == "" {
		if token := c.tokens.GetToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	monitoring.RemoteRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	if err != nil {
		monitoring.RemoteRequestCounter.WithLabelValues(path, "network_error").Inc()
		span.SetStatus(codes.Error, err.Error())
		return util.WrapNetwork(err, isTimeout(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		monitoring.RemoteRequestCounter.WithLabelValues(path, "network_error").Inc()
		return util.WrapNetwork(err, isTimeout(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		monitoring.RemoteRequestCounter.WithLabelValues(path, fmt.Sprintf("http_%d", resp.StatusCode)).Inc()
		span.SetStatus(codes.Error, resp.Status)
		return translateError(resp.StatusCode, data)
	}

	monitoring.RemoteRequestCounter.WithLabelValues(path, "ok").Inc()

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// translateError 解析失败响应体并映射到typed错误
func translateError(status int, body []byte) error {
	var parsed struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	_ = json.Unmarshal(body, &parsed)

	if status == http.StatusUnprocessableEntity {
		return &util.ValidationError{Message: flattenFieldErrors(parsed.Message, parsed.Errors)}
	}

	return &util.APIError{Status: status, Message: parsed.Message}
}

// flattenFieldErrors 把422的字段错误摊平拼成一条消息
func flattenFieldErrors(message string, fields map[string][]string) string {
	if len(fields) == 0 {
		if message != "" {
			return message
		}
		return http.StatusText(http.StatusUnprocessableEntity)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		parts = append(parts, fields[k]...)
	}
	return strings.Join(parts, " ")
}
