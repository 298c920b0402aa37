package controller

import (
	"lingo_learn_client/internal/client"
	"lingo_learn_client/internal/model"
	"lingo_learn_client/internal/service"
	"lingo_learn_client/internal/util"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	ProfileService *service.ProfileService
	APIClient      *client.Client
}

func NewProfileController(profileService *service.ProfileService, apiClient *client.Client) *ProfileController {
	return &ProfileController{
		ProfileService: profileService,
		APIClient:      apiClient,
	}
}

// GetProfile godoc
// @Summary 加载profile（读穿缓存）
// @Tags 进度
// @Router /api/profile [get]
func (c *ProfileController) GetProfile(ctx *gin.Context) {
	force := ctx.Query("force") == "true"
	// 加载失败也有兜底profile可渲染，错误体现在状态里
	_ = c.ProfileService.LoadProfile(ctx.Request.Context(), force)
	util.Success(ctx, c.ProfileService.State())
}

func (c *ProfileController) RefreshProfile(ctx *gin.Context) {
	if err := c.ProfileService.LoadProfile(ctx.Request.Context(), true); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, c.ProfileService.State())
}

// UseHeart godoc
// @Summary 消耗一颗红心
// @Tags 进度
// @Router /api/profile/heart/use [post]
func (c *ProfileController) UseHeart(ctx *gin.Context) {
	ok, err := c.ProfileService.UseHeart(ctx.Request.Context())
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	if !ok {
		util.FromError(ctx, util.ErrNoHearts)
		return
	}
	util.Success(ctx, c.ProfileService.State())
}

func (c *ProfileController) RestoreHeart(ctx *gin.Context) {
	if err := c.ProfileService.RestoreHeart(ctx.Request.Context()); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, c.ProfileService.State())
}

func (c *ProfileController) RefillHearts(ctx *gin.Context) {
	if err := c.ProfileService.RefillHearts(ctx.Request.Context()); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, c.ProfileService.State())
}

type AddXPRequest struct {
	Amount int `json:"amount" binding:"required,gt=0"`
}

func (c *ProfileController) AddXP(ctx *gin.Context) {
	var req AddXPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.ProfileService.AddXP(ctx.Request.Context(), req.Amount); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, c.ProfileService.State())
}

// CompleteLesson godoc
// @Summary 上报一次课程完成
// @Tags 进度
// @Router /api/profile/lesson/complete [post]
func (c *ProfileController) CompleteLesson(ctx *gin.Context) {
	var result model.LessonResult
	if err := ctx.ShouldBindJSON(&result); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.ProfileService.CompleteLesson(ctx.Request.Context(), result); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, c.ProfileService.State())
}

type UnlockModuleRequest struct {
	ModuleID string `json:"moduleId" binding:"required"`
}

func (c *ProfileController) UnlockModule(ctx *gin.Context) {
	var req UnlockModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.ProfileService.UnlockModule(ctx.Request.Context(), req.ModuleID); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, c.ProfileService.State())
}

type UnlockAchievementRequest struct {
	AchievementID string `json:"achievementId" binding:"required"`
}

func (c *ProfileController) UnlockAchievement(ctx *gin.Context) {
	var req UnlockAchievementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.ProfileService.UnlockAchievement(ctx.Request.Context(), req.AchievementID); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, c.ProfileService.State())
}

// FetchLesson 透传拉取单个模块，仅供展示
func (c *ProfileController) FetchLesson(ctx *gin.Context) {
	module, err := c.APIClient.FetchModule(ctx.Request.Context(), ctx.Param("moduleId"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, module)
}
