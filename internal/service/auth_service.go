package service

import (
	"context"
	"sync"

	"lingo_learn_client/internal/client"
	"lingo_learn_client/internal/model"
	"lingo_learn_client/internal/repository"
	"lingo_learn_client/internal/util"
	"lingo_learn_client/pkg/logger"

	"go.uber.org/zap"
)

// AuthService 持有认证状态（用户 + 令牌），独立于课程与profile状态，
// 但决定后两者是否可用。持久化令牌是"会话是否存在"的唯一依据。
type AuthService struct {
	client *client.Client
	tokens *repository.TokenStore

	mu       sync.Mutex
	user     *model.User
	token    string
	checking bool
	lastErr  error
}

type AuthState struct {
	State           model.SessionState `json:"state"`
	User            *model.User        `json:"user,omitempty"`
	IsAuthenticated bool               `json:"isAuthenticated"`
	Error           string             `json:"error,omitempty"`
}

func NewAuthService(apiClient *client.Client, tokens *repository.TokenStore) *AuthService {
	return &AuthService{
		client: apiClient,
		tokens: tokens,
	}
}

func (s *AuthService) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.token != ""
}

func (s *AuthService) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := AuthState{State: model.SessionUnauthenticated}
	switch {
	case s.checking:
		state.State = model.SessionChecking
	case s.user != nil && s.token != "":
		state.State = model.SessionAuthenticated
		state.User = s.user
		state.IsAuthenticated = true
	}
	if s.lastErr != nil {
		state.Error = s.lastErr.Error()
	}
	return state
}

// CheckAuth 冷启动时执行一次：无令牌直接判定未登录；有令牌则向服务端
// 验证。验证失败时只清内存状态，令牌留在存储中——确实失效（401）的令牌
// 已由fetchCurrentUser里的HTTP层处理移除，这里不重复判断，瞬时故障因此
// 不会误删令牌。
func (s *AuthService) CheckAuth(ctx context.Context) error {
	token := s.tokens.GetToken()
	if token == "" {
		s.mu.Lock()
		s.user = nil
		s.token = ""
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.checking = true
	s.mu.Unlock()

	user, err := s.fetchCurrentUser(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.checking = false

	if err != nil {
		logger.Log.Warn("session check failed", zap.Error(err))
		s.user = nil
		s.token = ""
		return err
	}

	s.user = user
	s.token = token
	return nil
}

// fetchCurrentUser /auth/me 的封装；401即令牌失效，就地移除持久化令牌
func (s *AuthService) fetchCurrentUser(ctx context.Context) (*model.User, error) {
	user, err := s.client.Me(ctx)
	if err != nil {
		if util.IsSessionInvalid(err) {
			if rmErr := s.tokens.RemoveToken(); rmErr != nil {
				logger.Log.Error("failed to remove invalid token", zap.Error(rmErr))
			}
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	resp, err := s.client.Login(ctx, email, password)
	return s.establishSession(resp, err)
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	resp, err := s.client.Register(ctx, name, email, password)
	return s.establishSession(resp, err)
}

func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*model.User, error) {
	resp, err := s.client.LoginWithGoogle(ctx, idToken)
	return s.establishSession(resp, err)
}

// establishSession 持久化令牌并写入内存状态；错误记入状态后继续抛给
// 调用方，UI据此渲染内联错误提示
func (s *AuthService) establishSession(resp *model.AuthResponse, err error) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = err
		return nil, err
	}

	if err := s.tokens.SaveToken(resp.Token); err != nil {
		s.lastErr = err
		return nil, err
	}

	user := resp.User
	s.user = &user
	s.token = resp.Token
	s.lastErr = nil
	return &user, nil
}

// Logout 远端调用尽力而为；无论结果如何都清除本地用户与令牌
func (s *AuthService) Logout(ctx context.Context) {
	if err := s.client.Logout(ctx); err != nil {
		logger.Log.Warn("remote logout failed", zap.Error(err))
	}
	s.clearSession()
}

// LogoutAll 注销所有设备，本地语义与Logout相同
func (s *AuthService) LogoutAll(ctx context.Context) {
	if err := s.client.LogoutAll(ctx); err != nil {
		logger.Log.Warn("remote logout-all failed", zap.Error(err))
	}
	s.clearSession()
}

func (s *AuthService) clearSession() {
	if err := s.tokens.RemoveToken(); err != nil {
		logger.Log.Error("failed to remove token", zap.Error(err))
	}
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.lastErr = nil
	s.mu.Unlock()
}
