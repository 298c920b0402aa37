package controller

import (
	"lingo_learn_client/internal/repository"
	"lingo_learn_client/internal/util"

	"github.com/gin-gonic/gin"
)

type PrefsController struct {
	Prefs *repository.PrefsRepository
}

func NewPrefsController(prefs *repository.PrefsRepository) *PrefsController {
	return &PrefsController{Prefs: prefs}
}

func (c *PrefsController) GetPrefs(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	util.Success(ctx, gin.H{
		"language":            c.Prefs.Language(reqCtx),
		"onboardingCompleted": c.Prefs.OnboardingCompleted(reqCtx),
	})
}

type SetLanguageRequest struct {
	Language string `json:"language" binding:"required"`
}

func (c *PrefsController) SetLanguage(ctx *gin.Context) {
	var req SetLanguageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.Prefs.SetLanguage(ctx.Request.Context(), req.Language); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"language": req.Language})
}

func (c *PrefsController) CompleteOnboarding(ctx *gin.Context) {
	if err := c.Prefs.SetOnboardingCompleted(ctx.Request.Context(), true); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"onboardingCompleted": true})
}
