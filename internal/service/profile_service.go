package service

import (
	"context"
	"math"
	"sync"
	"time"

	"lingo_learn_client/internal/client"
	"lingo_learn_client/internal/model"
	"lingo_learn_client/internal/repository"
	"lingo_learn_client/internal/util"
	"lingo_learn_client/pkg/logger"

	"go.uber.org/zap"
)

// ProfileService 持有内存中的UserProfile，所有变更走
// "服务端优先、失败本地回退"的协议（见mutation.go），
// 且必须经过saveProfileLocked这一个出口同时更新内存与缓存。
type ProfileService struct {
	client *client.Client
	cache  *repository.ProfileCache

	mu      sync.Mutex
	profile *model.UserProfile
	loading bool
	lastErr error
}

// ProfileState 暴露给UI层的状态快照
type ProfileState struct {
	Profile *model.UserProfile `json:"profile"`
	Loading bool               `json:"loading"`
	Error   string             `json:"error,omitempty"`
}

func NewProfileService(apiClient *client.Client, cache *repository.ProfileCache) *ProfileService {
	return &ProfileService{
		client: apiClient,
		cache:  cache,
	}
}

func (s *ProfileService) State() ProfileState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := ProfileState{Loading: s.loading}
	if s.profile != nil {
		state.Profile = s.profile.Clone()
	}
	if s.lastErr != nil {
		state.Error = s.lastErr.Error()
	}
	return state
}

func (s *ProfileService) Profile() *model.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	return s.profile.Clone()
}

// LoadProfile 加载协议：
//   - 新鲜缓存命中：立即用缓存值填充状态（UI不阻塞），同时无条件触发
//     后台拉取；后台成功则静默覆盖，失败不打扰UI。
//   - 缓存缺失/过期/强制：前台拉取；失败时按 过期缓存 → 内置默认profile
//     的顺序兜底，但无论兜底是否成功，错误都对外暴露。
//
// 每次加载完成后执行一次连胜与当日计数的校准。
func (s *ProfileService) LoadProfile(ctx context.Context, force bool) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	refresh := func(ctx context.Context) (*model.UserProfile, error) {
		return s.client.FetchProfile(ctx)
	}
	onRevalidated := func(p *model.UserProfile, err error) {
		if err != nil || p == nil {
			return
		}
		s.mu.Lock()
		s.profile = p
		s.mu.Unlock()
	}

	profile, _, err := s.cache.Fetch(ctx, force, refresh, onRevalidated)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.lastErr = err
		if profile == nil {
			profile = model.DefaultProfile()
			logger.Log.Warn("profile load failed, using default profile", zap.Error(err))
		} else {
			logger.Log.Warn("profile load failed, using stale cache", zap.Error(err))
		}
		s.profile = profile
		s.reconcileDailyStateLocked(ctx)
		return err
	}

	s.lastErr = nil
	s.profile = profile
	s.reconcileDailyStateLocked(ctx)
	return nil
}

// saveProfileLocked 变更的唯一出口：内存状态与缓存一起写，
// 任何变更不得绕过它只改其一。缓存写失败只记日志。
func (s *ProfileService) saveProfileLocked(ctx context.Context, p *model.UserProfile) {
	s.profile = p
	if err := s.cache.Write(ctx, p); err != nil {
		logger.Log.Warn("profile cache write failed", zap.Error(err))
	}
}

// UseHeart 红心耗尽时拒绝（返回false，无任何副作用）。
// 接受时服务端路径扣减权威红心并整体重拉；本地回退恰好减1。
func (s *ProfileService) UseHeart(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.profile == nil {
		s.mu.Unlock()
		return false, util.ErrNoProfileLoaded
	}
	if s.profile.Stats.Hearts <= 0 {
		s.mu.Unlock()
		return false, nil
	}
	s.mu.Unlock()

	err := s.applyMutation(ctx, "use_heart",
		func(ctx context.Context) error { return s.client.UseHeart(ctx) },
		func(p *model.UserProfile) {
			if p.Stats.Hearts > 0 {
				p.Stats.Hearts--
			}
		})
	if err != nil {
		return false, err
	}
	return true, nil
}

// RestoreHeart 本地恢复一颗红心，不超过上限
func (s *ProfileService) RestoreHeart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return util.ErrNoProfileLoaded
	}
	if s.profile.Stats.Hearts >= s.profile.Stats.MaxHearts {
		return nil
	}
	p := s.profile.Clone()
	p.Stats.Hearts++
	s.saveProfileLocked(ctx, p)
	return nil
}

// RefillHearts 补满红心
func (s *ProfileService) RefillHearts(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return util.ErrNoProfileLoaded
	}
	if s.profile.Stats.Hearts == s.profile.Stats.MaxHearts {
		return nil
	}
	p := s.profile.Clone()
	p.Stats.Hearts = p.Stats.MaxHearts
	s.saveProfileLocked(ctx, p)
	return nil
}

func (s *ProfileService) AddXP(ctx context.Context, amount int) error {
	return s.applyMutation(ctx, "add_xp",
		func(ctx context.Context) error { return s.client.AddXP(ctx, amount) },
		func(p *model.UserProfile) {
			p.Stats.AddXP(amount)
			p.Stats.DailyXP += amount
		})
}

// CompleteLesson 记录一次课程完成，完成时间由引擎补打。
// 服务端路径是单次原子调用（记录、加经验、升级、连胜、解锁全在服务端）；
// 本地回退是三步串行变更：追加记录与统计、AddXP、UpdateStreak，各自再走
// 一遍自己的协议。与服务端路径相比存在已知的非原子不一致窗口，刻意保留。
func (s *ProfileService) CompleteLesson(ctx context.Context, result model.LessonResult) error {
	if err := validateLessonResult(result); err != nil {
		return err
	}

	lesson := model.CompletedLesson{
		LessonResult: result,
		CompletedAt:  time.Now(),
	}

	s.mu.Lock()
	if s.profile == nil {
		s.mu.Unlock()
		return util.ErrNoProfileLoaded
	}
	s.mu.Unlock()

	outcome, err := s.client.RecordLesson(ctx, lesson)
	if err == nil {
		logger.Log.Info("lesson recorded",
			zap.String("lessonId", result.LessonID),
			zap.Int("level", outcome.Level),
			zap.Int("streak", outcome.Streak))
		if err := s.LoadProfile(ctx, true); err != nil {
			logger.Log.Warn("authoritative refresh after lesson failed", zap.Error(err))
		}
		return nil
	}

	logger.Log.Warn("lesson record failed, applying local fallback",
		zap.String("lessonId", result.LessonID), zap.Error(err))

	s.mu.Lock()
	p := s.profile.Clone()
	p.Progress.CompletedLessons = append(p.Progress.CompletedLessons, lesson)

	ls := &p.LearningStats
	n := ls.TotalLessonsCompleted + 1
	ls.AverageAccuracy = round2((ls.AverageAccuracy*float64(n-1) + result.Accuracy) / float64(n))
	ls.TotalLessonsCompleted = n
	ls.TotalTimeMinutes += result.TimeSpentMinutes
	if util.IsToday(ls.LastLessonDate) {
		ls.LessonsCompletedToday++
	} else {
		ls.LessonsCompletedToday = 1
	}
	ls.LastLessonDate = lesson.CompletedAt
	s.saveProfileLocked(ctx, p)
	s.mu.Unlock()

	if err := s.AddXP(ctx, result.XPEarned); err != nil {
		logger.Log.Warn("xp award after lesson failed", zap.Error(err))
	}
	if err := s.UpdateStreak(ctx); err != nil {
		logger.Log.Warn("streak update after lesson failed", zap.Error(err))
	}
	return nil
}

// UpdateStreak 按日历日推进连胜：今天已活跃则no-op；
// 昨天活跃则+1；否则（含首次活跃）重置为1。
func (s *ProfileService) UpdateStreak(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return util.ErrNoProfileLoaded
	}
	if util.IsToday(s.profile.Stats.LastActiveDate) {
		return nil
	}

	p := s.profile.Clone()
	if util.IsYesterday(p.Stats.LastActiveDate) {
		p.Stats.Streak++
	} else {
		p.Stats.Streak = 1
	}
	if p.Stats.Streak > p.Stats.LongestStreak {
		p.Stats.LongestStreak = p.Stats.Streak
	}
	if p.Stats.Streak > p.LearningStats.BestStreak {
		p.LearningStats.BestStreak = p.Stats.Streak
	}
	p.Stats.LastActiveDate = time.Now()
	s.saveProfileLocked(ctx, p)
	return nil
}

// reconcileDailyStateLocked 每次profile加载后执行一次：
// 最后活跃不是今天则清零当日计数；断档超过一天且连胜大于0则清零连胜
// （只清零，不推进——推进由UpdateStreak负责）。
func (s *ProfileService) reconcileDailyStateLocked(ctx context.Context) {
	st := s.profile.Stats
	if util.IsToday(st.LastActiveDate) {
		return
	}

	p := s.profile.Clone()
	changed := p.Stats.DailyXP != 0 || p.LearningStats.LessonsCompletedToday != 0
	p.Stats.DailyXP = 0
	p.LearningStats.LessonsCompletedToday = 0

	if !util.IsYesterday(p.Stats.LastActiveDate) && p.Stats.Streak > 0 {
		p.Stats.Streak = 0
		changed = true
	}

	if changed {
		s.saveProfileLocked(ctx, p)
	}
}

// UnlockModule 幂等：已解锁时不发请求、不改状态
func (s *ProfileService) UnlockModule(ctx context.Context, moduleID string) error {
	s.mu.Lock()
	if s.profile == nil {
		s.mu.Unlock()
		return util.ErrNoProfileLoaded
	}
	if s.profile.Progress.HasModule(moduleID) {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	return s.applyMutation(ctx, "unlock_module",
		func(ctx context.Context) error { return s.client.UnlockModule(ctx, moduleID) },
		func(p *model.UserProfile) {
			p.Progress.UnlockedModules = append(p.Progress.UnlockedModules, moduleID)
		})
}

// UnlockAchievement 幂等，协议同UnlockModule
func (s *ProfileService) UnlockAchievement(ctx context.Context, achievementID string) error {
	s.mu.Lock()
	if s.profile == nil {
		s.mu.Unlock()
		return util.ErrNoProfileLoaded
	}
	if s.profile.Progress.HasAchievement(achievementID) {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	return s.applyMutation(ctx, "unlock_achievement",
		func(ctx context.Context) error { return s.client.UnlockAchievement(ctx, achievementID) },
		func(p *model.UserProfile) {
			p.Progress.Achievements = append(p.Progress.Achievements, achievementID)
		})
}

func validateLessonResult(result model.LessonResult) error {
	switch {
	case result.LessonID == "" || result.ModuleID == "":
		return &util.ValidationError{Message: "lessonId and moduleId are required"}
	case result.Accuracy < 0 || result.Accuracy > 1:
		return &util.ValidationError{Message: "accuracy must be between 0 and 1"}
	case result.TimeSpentMinutes < 1:
		return &util.ValidationError{Message: "timeSpentMinutes must be at least 1"}
	case result.Mistakes < 0:
		return &util.ValidationError{Message: "mistakes must not be negative"}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
