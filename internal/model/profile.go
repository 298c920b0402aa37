package model

import "time"

// swagger:model User
type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Avatar   string    `json:"avatar"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Stats 用户当前数值状态。Level/Tier 由 XP 派生，只能通过 SetXP/AddXP 变更，
// 或在整体替换profile（服务端权威数据）时一并写入。
type Stats struct {
	Hearts         int       `json:"hearts"`
	MaxHearts      int       `json:"maxHearts"`
	XP             int       `json:"xp"`
	DailyXP        int       `json:"dailyXP"`
	Streak         int       `json:"streak"`
	LongestStreak  int       `json:"longestStreak"`
	Level          int       `json:"level"`
	Tier           Tier      `json:"tier"`
	LastActiveDate time.Time `json:"lastActiveDate"`
}

// SetXP 写入总经验并重新计算等级与段位
func (s *Stats) SetXP(xp int) {
	s.XP = xp
	s.Level = LevelForXP(xp)
	s.Tier = TierForLevel(s.Level)
}

func (s *Stats) AddXP(amount int) {
	s.SetXP(s.XP + amount)
}

// LessonResult 一次课程完成的上报载荷，完成时间由引擎补打
type LessonResult struct {
	LessonID         string  `json:"lessonId"`
	ModuleID         string  `json:"moduleId"`
	Score            int     `json:"score"`
	Accuracy         float64 `json:"accuracy"`
	XPEarned         int     `json:"xpEarned"`
	TimeSpentMinutes int     `json:"timeSpentMinutes"`
	Mistakes         int     `json:"mistakes"`
}

type CompletedLesson struct {
	LessonResult
	CompletedAt time.Time `json:"completedAt"`
}

type Progress struct {
	CurrentCheckpoint int               `json:"currentCheckpoint"`
	UnlockedModules   []string          `json:"unlockedModules"`
	CompletedLessons  []CompletedLesson `json:"completedLessons"`
	Achievements      []string          `json:"achievements"`
}

func (p *Progress) HasModule(moduleID string) bool {
	for _, id := range p.UnlockedModules {
		if id == moduleID {
			return true
		}
	}
	return false
}

func (p *Progress) HasAchievement(achievementID string) bool {
	for _, id := range p.Achievements {
		if id == achievementID {
			return true
		}
	}
	return false
}

// LearningStats 累计统计，始终跟随Progress派生，不独立作为权威数据
type LearningStats struct {
	TotalTimeMinutes      int       `json:"totalTimeMinutes"`
	TotalLessonsCompleted int       `json:"totalLessonsCompleted"`
	AverageAccuracy       float64   `json:"averageAccuracy"`
	BestStreak            int       `json:"bestStreak"`
	LessonsCompletedToday int       `json:"lessonsCompletedToday"`
	LastLessonDate        time.Time `json:"lastLessonDate"`
}

type UserProfile struct {
	User          User          `json:"user"`
	Stats         Stats         `json:"stats"`
	Progress      Progress      `json:"progress"`
	LearningStats LearningStats `json:"learningStats"`
}

// Clone 深拷贝，供本地回退变更使用，避免半途失败污染内存状态
func (p *UserProfile) Clone() *UserProfile {
	cp := *p
	cp.Progress.UnlockedModules = append([]string(nil), p.Progress.UnlockedModules...)
	cp.Progress.CompletedLessons = append([]CompletedLesson(nil), p.Progress.CompletedLessons...)
	cp.Progress.Achievements = append([]string(nil), p.Progress.Achievements...)
	return &cp
}

// DefaultProfile 内置兜底profile，所有网络与缓存回退都失败时使用
func DefaultProfile() *UserProfile {
	p := &UserProfile{
		User: User{
			Name: "Learner",
		},
		Stats: Stats{
			Hearts:    5,
			MaxHearts: 5,
		},
		Progress: Progress{
			UnlockedModules:  []string{},
			CompletedLessons: []CompletedLesson{},
			Achievements:     []string{},
		},
	}
	p.Stats.SetXP(0)
	return p
}
