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

// CourseService 持有内存中的课程文档。课程对客户端只读，
// 只通过整体替换（一次新的拉取）更新。
type CourseService struct {
	client *client.Client
	cache  *repository.CourseCache

	mu                  sync.Mutex
	course              *model.Course
	lastCourseID        string
	loading             bool
	updating            bool
	initialLoadComplete bool
	lastErr             error
}

// CourseState 暴露给UI层的状态快照。Updating仅在缓存命中后的
// 后台刷新期间为true，UI据此显示非阻塞的"同步中"提示。
type CourseState struct {
	Course              *model.Course `json:"course"`
	Loading             bool          `json:"loading"`
	Updating            bool          `json:"updating"`
	InitialLoadComplete bool          `json:"initialLoadComplete"`
	Error               string        `json:"error,omitempty"`
}

func NewCourseService(apiClient *client.Client, cache *repository.CourseCache) *CourseService {
	return &CourseService{
		client: apiClient,
		cache:  cache,
	}
}

func (s *CourseService) State() CourseState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := CourseState{
		Course:              s.course,
		Loading:             s.loading,
		Updating:            s.updating,
		InitialLoadComplete: s.initialLoadComplete,
	}
	if s.lastErr != nil {
		state.Error = s.lastErr.Error()
	}
	return state
}

func (s *CourseService) LoadCourse(ctx context.Context, courseID string, force bool) error {
	s.mu.Lock()
	s.lastCourseID = courseID
	s.loading = true
	s.mu.Unlock()

	refresh := func(ctx context.Context) (*model.Course, error) {
		return s.client.FetchCourse(ctx, courseID)
	}
	onRevalidated := func(course *model.Course, err error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.updating = false
		// 后台刷新静默覆盖；期间用户切换了课程则丢弃结果
		if err == nil && course != nil && s.lastCourseID == courseID {
			s.course = course
		}
	}

	course, revalidating, err := s.cache.Fetch(ctx, courseID, force, refresh, onRevalidated)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.initialLoadComplete = true
	s.updating = revalidating

	if err != nil {
		s.lastErr = err
		if course != nil {
			// 过期缓存可渲染，错误照常暴露以便重试
			logger.Log.Warn("course load failed, keeping stale cache",
				zap.String("courseId", courseID), zap.Error(err))
			s.course = course
		}
		return err
	}

	s.lastErr = nil
	s.course = course
	return nil
}

// Retry 错误恢复路径：对最后一次请求的课程强制刷新
func (s *CourseService) Retry(ctx context.Context) error {
	return s.forceReload(ctx)
}

// Refresh 用户下拉刷新路径，行为与Retry一致，分开命名便于调用方表意
func (s *CourseService) Refresh(ctx context.Context) error {
	return s.forceReload(ctx)
}

func (s *CourseService) forceReload(ctx context.Context) error {
	s.mu.Lock()
	courseID := s.lastCourseID
	s.mu.Unlock()
	if courseID == "" {
		return util.ErrNoCourseLoaded
	}
	return s.LoadCourse(ctx, courseID, true)
}

// GetModuleByID 跨章节线性查找模块
func (s *CourseService) GetModuleByID(moduleID string) (*model.Module, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.course == nil {
		return nil, util.ErrNoCourseLoaded
	}
	module := s.course.ModuleByID(moduleID)
	if module == nil {
		return nil, util.ErrModuleNotFound
	}
	return module, nil
}
