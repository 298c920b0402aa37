package controller

import (
	"context"
	"net/http"
	"time"

	"lingo_learn_client/internal/util"
	"lingo_learn_client/pkg/kvstore"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	Store kvstore.Store
}

func NewHealthController(store kvstore.Store) *HealthController {
	return &HealthController{Store: store}
}

// @Summary 健康检查
// @Tags 系统
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 检查本地存储可用性
	probeCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if _, err := c.Store.Get(probeCtx, "health:probe"); err != nil && err != kvstore.ErrNotFound {
		util.Error(ctx, http.StatusServiceUnavailable, "Local store unavailable")
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"store": "ok",
		},
	})
}
