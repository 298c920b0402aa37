package util

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNoHearts         = errors.New("没有剩余红心")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoCourseLoaded   = errors.New("no course loaded")
	ErrNoProfileLoaded  = errors.New("no profile loaded")
	ErrModuleNotFound   = errors.New("module not found")
	ErrCacheMiss        = errors.New("cache miss")
)

// NetworkError 网络层错误（超时/离线），提示用户检查网络
type NetworkError struct {
	Err     error
	Timeout bool
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return "请求超时，请检查网络连接"
	}
	return "网络不可用，请检查网络连接"
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError 服务端非2xx响应
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}

// ValidationError 422响应，所有字段错误拼接为一条消息
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsSessionInvalid 判断错误是否为会话失效（/auth/me 返回401）
func IsSessionInvalid(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNetworkError 判断是否为传输层错误
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

func WrapNetwork(err error, timeout bool) error {
	return &NetworkError{Err: fmt.Errorf("request failed: %w", err), Timeout: timeout}
}
