package util

import (
	"errors"
	"lingo_learn_client/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

// FromError 按错误分类映射为本地接口的HTTP状态
func FromError(c *gin.Context, err error) {
	var apiErr *APIError
	var valErr *ValidationError
	switch {
	case errors.Is(err, ErrNoHearts):
		Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotAuthenticated):
		Unauthorized(c)
	case errors.Is(err, ErrModuleNotFound), errors.Is(err, ErrNoCourseLoaded), errors.Is(err, ErrNoProfileLoaded):
		NotFound(c)
	case errors.As(err, &valErr):
		Error(c, http.StatusUnprocessableEntity, valErr.Message)
	case errors.As(err, &apiErr):
		Error(c, apiErr.Status, apiErr.Error())
	case IsNetworkError(err):
		Error(c, http.StatusBadGateway, err.Error())
	default:
		logger.Log.Error("Internal server error", zap.Error(err))
		InternalServerError(c)
	}
}
