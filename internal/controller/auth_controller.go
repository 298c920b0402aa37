package controller

import (
	"lingo_learn_client/internal/service"
	"lingo_learn_client/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// RegisterRequest defines model for registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// Register godoc
// @Summary 注册新用户
// @Tags 认证
// @Router /api/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Register(ctx.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	util.Success(ctx, user)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary 邮箱密码登录
// @Tags 认证
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	util.Success(ctx, user)
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

func (c *AuthController) LoginWithGoogle(ctx *gin.Context) {
	var req GoogleLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.LoginWithGoogle(ctx.Request.Context(), req.IDToken)
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	util.Success(ctx, user)
}

// Session godoc
// @Summary 当前会话状态
// @Tags 认证
// @Router /api/auth/session [get]
func (c *AuthController) Session(ctx *gin.Context) {
	util.Success(ctx, c.AuthService.State())
}

// CheckAuth 冷启动会话恢复；远端校验失败不算接口错误，状态里已体现
func (c *AuthController) CheckAuth(ctx *gin.Context) {
	_ = c.AuthService.CheckAuth(ctx.Request.Context())
	util.Success(ctx, c.AuthService.State())
}

func (c *AuthController) Logout(ctx *gin.Context) {
	c.AuthService.Logout(ctx.Request.Context())
	util.Success(ctx, c.AuthService.State())
}

func (c *AuthController) LogoutAll(ctx *gin.Context) {
	c.AuthService.LogoutAll(ctx.Request.Context())
	util.Success(ctx, c.AuthService.State())
}
