package model

// AuthResponse 认证接口统一返回 {user, token}
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type SessionState string

const (
	SessionUnauthenticated SessionState = "unauthenticated"
	SessionChecking        SessionState = "checking"
	SessionAuthenticated   SessionState = "authenticated"
)
