package controller

import (
	"lingo_learn_client/internal/service"
	"lingo_learn_client/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// GetCourse godoc
// @Summary 加载课程（读穿缓存）
// @Tags 课程
// @Router /api/course/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	courseID := ctx.Param("id")
	force := ctx.Query("force") == "true"

	if err := c.CourseService.LoadCourse(ctx.Request.Context(), courseID, force); err != nil {
		state := c.CourseService.State()
		if state.Course == nil {
			util.FromError(ctx, err)
			return
		}
		// 有过期数据可渲染时正常返回，错误在状态里
	}

	util.Success(ctx, c.CourseService.State())
}

// RefreshCourse 下拉刷新路径
func (c *CourseController) RefreshCourse(ctx *gin.Context) {
	if err := c.CourseService.Refresh(ctx.Request.Context()); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, c.CourseService.State())
}

// RetryCourse 错误恢复路径
func (c *CourseController) RetryCourse(ctx *gin.Context) {
	if err := c.CourseService.Retry(ctx.Request.Context()); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, c.CourseService.State())
}

func (c *CourseController) GetModule(ctx *gin.Context) {
	module, err := c.CourseService.GetModuleByID(ctx.Param("moduleId"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, module)
}
