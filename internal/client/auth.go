package client

import (
	"context"
	"net/http"

	"lingo_learn_client/internal/model"
)

type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceName string `json:"device_name"`
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceName string `json:"device_name"`
}

type googleLoginRequest struct {
	IDToken    string `json:"id_token"`
	DeviceName string `json:"device_name"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", registerRequest{
		Name:       name,
		Email:      email,
		Password:   password,
		DeviceName: c.deviceName,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{
		Email:      email,
		Password:   password,
		DeviceName: c.deviceName,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) LoginWithGoogle(ctx context.Context, idToken string) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/google", googleLoginRequest{
		IDToken:    idToken,
		DeviceName: c.deviceName,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me 获取当前用户；401表示令牌失效，由调用方负责移除令牌
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var resp struct {
		User model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *Client) LogoutAll(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout-all", nil, nil)
}
