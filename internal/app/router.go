package app

import (
	"lingo_learn_client/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", c.auth.Register)
			auth.POST("/login", c.auth.Login)
			auth.POST("/google", c.auth.LoginWithGoogle)
			auth.GET("/session", c.auth.Session)
			auth.POST("/session/check", c.auth.CheckAuth)
			auth.POST("/logout", c.auth.Logout)
			auth.POST("/logout-all", c.auth.LogoutAll)
		}

		course := api.Group("/course")
		{
			course.GET("/:id", c.course.GetCourse)
			course.POST("/refresh", c.course.RefreshCourse)
			course.POST("/retry", c.course.RetryCourse)
			course.GET("/module/:moduleId", c.course.GetModule)
		}

		api.GET("/lessons/:moduleId", c.profile.FetchLesson)

		profile := api.Group("/profile")
		{
			profile.GET("", c.profile.GetProfile)
			profile.POST("/refresh", c.profile.RefreshProfile)
			profile.POST("/heart/use", c.profile.UseHeart)
			profile.POST("/heart/restore", c.profile.RestoreHeart)
			profile.POST("/heart/refill", c.profile.RefillHearts)
			profile.POST("/xp", c.profile.AddXP)
			profile.POST("/lesson/complete", c.profile.CompleteLesson)
			profile.POST("/module/unlock", c.profile.UnlockModule)
			profile.POST("/achievement/unlock", c.profile.UnlockAchievement)
		}

		prefs := api.Group("/prefs")
		{
			prefs.GET("", c.prefs.GetPrefs)
			prefs.POST("/language", c.prefs.SetLanguage)
			prefs.POST("/onboarding/complete", c.prefs.CompleteOnboarding)
		}
	}
}
