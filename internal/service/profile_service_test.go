package service

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"lingo_learn_client/internal/model"
	"lingo_learn_client/internal/repository"
	"lingo_learn_client/internal/util"
	"lingo_learn_client/pkg/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileHarness(t *testing.T, mux *http.ServeMux, ttl time.Duration) (*ProfileService, *repository.ProfileCache) {
	t.Helper()
	srv := newUpstream(t, mux)
	cache := repository.NewProfileCache(kvstore.NewMemory(), ttl)
	return NewProfileService(newAPIClient(srv, emptyTokens()), cache), cache
}

// loadSeed 强制拉取一次，用mux里/profile返回的数据填充服务状态
func loadSeed(t *testing.T, s *ProfileService) {
	t.Helper()
	require.NoError(t, s.LoadProfile(context.Background(), true))
}

func TestLoadProfileFromServer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, seedProfile(5, 1000, time.Now(), 2))
	})
	s, _ := newProfileHarness(t, mux, time.Hour)

	loadSeed(t, s)

	state := s.State()
	require.NotNil(t, state.Profile)
	assert.Equal(t, 1000, state.Profile.Stats.XP)
	assert.Equal(t, 6, state.Profile.Stats.Level)
	assert.Equal(t, model.TierSilver, state.Profile.Stats.Tier)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
}

func TestLoadProfileKeepsStaleCacheOnFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	s, cache := newProfileHarness(t, mux, time.Nanosecond)

	stale := seedProfile(3, 700, time.Now(), 1)
	require.NoError(t, cache.Write(context.Background(), stale))

	err := s.LoadProfile(context.Background(), false)
	require.Error(t, err)

	state := s.State()
	require.NotNil(t, state.Profile)
	assert.Equal(t, 3, state.Profile.Stats.Hearts, "stale cache is rendered despite the error")
	assert.NotEmpty(t, state.Error)
}

func TestLoadProfileFallsBackToDefault(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	s, _ := newProfileHarness(t, mux, time.Hour)

	err := s.LoadProfile(context.Background(), false)
	require.Error(t, err)

	state := s.State()
	require.NotNil(t, state.Profile)
	assert.Equal(t, "Learner", state.Profile.User.Name)
	assert.Equal(t, 5, state.Profile.Stats.Hearts)
	assert.NotEmpty(t, state.Error)
}

func TestUseHeartAtZeroHasNoSideEffects(t *testing.T) {
	var mutations int32
	mux := http.NewServeMux()
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, seedProfile(0, 0, time.Now(), 0))
	})
	mux.HandleFunc("/progress/use-heart", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&mutations, 1)
	})
	s, _ := newProfileHarness(t, mux, time.Hour)
	loadSeed(t, s)

	ok, err := s.UseHeart(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int32(0), atomic.LoadInt32(&mutations), "exhausted hearts must not reach the server")
	assert.Equal(t, 0, s.Profile().Stats.Hearts)
}

func TestUseHeartServerPathReloadsAuthoritative(t *testing.T) {
	var profileCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		hearts := 5
		if atomic.AddInt32(&profileCalls, 1) > 1 {
			hearts = 4
		}
		writeJSON(w, seedProfile(hearts, 0, time.Now(), 0))
	})
	mux.HandleFunc("/progress/use-heart", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s, _ := newProfileHarness(t, mux, time.Hour)
	loadSeed(t, s)

	ok, err := s.UseHeart(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, s.Profile().Stats.Hearts)
}

func TestUseHeartLocalFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, seedProfile(2, 0, time.Now(), 0))
	})
	// /progress/use-heart 未注册，变更走本地回退
	s, _ := newProfileHarness(t, mux, time.Hour)
	loadSeed(t, s)

	ok, err := s.UseHeart(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, s.Profile().Stats.Hearts)
}

func TestRestoreAndRefillHearts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, seedProfile(2, 0, time.Now(), 0))
	})
	s, _ := newProfileHarness(t, mux, time.Hour)
	loadSeed(t, s)
	ctx := context.Background()

	require.NoError(t, s.RestoreHeart(ctx))
	assert.Equal(t, 3, s.Profile().Stats.Hearts)

	require.NoError(t, s.RefillHearts(ctx))
	assert.Equal(t, 5, s.Profile().Stats.Hearts)

	// 已满时恢复是no-op，不得超过上限
	require.NoError(t, s.RestoreHeart(ctx))
	assert.Equal(t, 5, s.Profile().Stats.Hearts)
}

func TestAddXPLocalFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, seedProfile(5, 90, time.Now(), 0))
	})
	s, _ := newProfileHarness(t, mux, time.Hour)
	loadSeed(t, s)

	require.NoError(t, s.AddXP(context.Background(), 20))

	p := s.Profile()
	assert.Equal(t, 110, p.Stats.XP)
	assert.Equal(t, 2, p.Stats.Level, "crossing a threshold levels up")
	assert.Equal(t, 20, p.Stats.DailyXP)
}

func TestCompleteLessonLocalFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		p := seedProfile(5, 0, time.Time{}, 0)
		p.LearningStats.TotalLessonsCompleted = 2
		p.LearningStats.AverageAccuracy = 0.9
		p.LearningStats.TotalTimeMinutes = 10
		writeJSON(w, p)
	})
	s, _ := newProfileHarness(t, mux, time.Hour)
	loadSeed(t, s)

	err := s.CompleteLesson(context.Background(), model.LessonResult{
		LessonID:         "l1",
		ModuleID:         "m1",
		Score:            80,
		Accuracy:         0.72,
		XPEarned:         15,
		TimeSpentMinutes: 5,
	})
	require.NoError(t, err)

	p := s.Profile()
	require.Len(t, p.Progress.CompletedLessons, 1)
	assert.Equal(t, "l1", p.Progress.CompletedLessons[0].LessonID)
	assert.False(t, p.Progress.CompletedLessons[0].CompletedAt.IsZero())

	ls := p.LearningStats
	assert.Equal(t, 3, ls.TotalLessonsCompleted)
	assert.Equal(t, 0.84, ls.AverageAccuracy) // (0.9*2 + 0.72) / 3
	assert.Equal(t, 15, ls.TotalTimeMinutes)
	assert.Equal(t, 1, ls.LessonsCompletedToday)
	assert.True(t, util.IsToday(ls.LastLessonDate))

	assert.Equal(t, 15, p.Stats.XP)
	assert.Equal(t, 15, p.Stats.DailyXP)
	assert.Equal(t, 1, p.Stats.Streak)
	assert.Equal(t, 1, p.Stats.LongestStreak)
	assert.Equal(t, 1, ls.BestStreak)
}

func TestCompleteLessonServerPathIsAtomic(t *testing.T) {
	authoritative := seedProfile(5, 500, time.Now(), 3)
	mux := http.NewServeMux()
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, authoritative)
	})
	mux.HandleFunc("/progress/lesson", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"xp": 500, "level": 4, "streak": 3})
	})
	s, _ := newProfileHarness(t, mux, time.Hour)
	loadSeed(t, s)

	err := s.CompleteLesson(context.Background(), model.LessonResult{
		LessonID:         "l1",
		ModuleID:         "m1",
		Accuracy:         0.9,
		XPEarned:         15,
		TimeSpentMinutes: 5,
	})
	require.NoError(t, err)

	// 服务端成功后整体重拉，本地不再追加记录或叠加经验
	p := s.Profile()
	assert.Empty(t, p.Progress.CompletedLessons)
	assert.Equal(t, 500, p.Stats.XP)
	assert.Equal(t, 3, p.Stats.Streak)
}

func TestCompleteLessonValidation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, seedProfile(5, 0, time.Now(), 0))
	})
	s, _ := newProfileHarness(t, mux, time.Hour)
	loadSeed(t, s)
	ctx := context.Background()

	cases := []model.LessonResult{
		{ModuleID: "m1", Accuracy: 0.5, TimeSpentMinutes: 1},
		{LessonID: "l1", ModuleID: "m1", Accuracy: 1.2, TimeSpentMinutes: 1},
		{LessonID: "l1", ModuleID: "m1", Accuracy: 0.5, TimeSpentMinutes: 0},
		{LessonID: "l1", ModuleID: "m1", Accuracy: 0.5, TimeSpentMinutes: 1, Mistakes: -1},
	}
	for _, c := range cases {
		err := s.CompleteLesson(ctx, c)
		var vErr *util.ValidationError
		assert.ErrorAs(t, err, &vErr)
	}
}

func TestUpdateStreak(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name       string
		lastActive time.Time
		streak     int
		want       int
	}{
		{"consecutive day increments", now.AddDate(0, 0, -1), 3, 4},
		{"same day is a no-op", now, 2, 2},
		{"gap resets to one", now.AddDate(0, 0, -5), 0, 1},
		{"first activity starts at one", time.Time{}, 0, 1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, seedProfile(5, 0, c.lastActive, c.streak))
			})
			s, _ := newProfileHarness(t, mux, time.Hour)
			loadSeed(t, s)

			require.NoError(t, s.UpdateStreak(context.Background()))

			p := s.Profile()
			assert.Equal(t, c.want, p.Stats.Streak)
			assert.GreaterOrEqual(t, p.Stats.LongestStreak, p.Stats.Streak)
		})
	}
}

func TestLoadReconcilesDailyState(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		p := seedProfile(5, 800, time.Now().AddDate(0, 0, -5), 4)
		p.Stats.DailyXP = 30
		p.LearningStats.LessonsCompletedToday = 2
		writeJSON(w, p)
	})
	s, _ := newProfileHarness(t, mux, time.Hour)
	loadSeed(t, s)

	p := s.Profile()
	assert.Equal(t, 0, p.Stats.DailyXP)
	assert.Equal(t, 0, p.LearningStats.LessonsCompletedToday)
	assert.Equal(t, 0, p.Stats.Streak, "a broken streak is zeroed on load, not advanced")
	assert.Equal(t, 4, p.Stats.LongestStreak)
}

func TestUnlockModuleIdempotent(t *testing.T) {
	var unlocks int32
	mux := http.NewServeMux()
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		p := seedProfile(5, 0, time.Now(), 0)
		p.Progress.UnlockedModules = []string{"m1"}
		writeJSON(w, p)
	})
	mux.HandleFunc("/progress/unlock-module", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&unlocks, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	s, _ := newProfileHarness(t, mux, time.Hour)
	loadSeed(t, s)
	ctx := context.Background()

	require.NoError(t, s.UnlockModule(ctx, "m1"))
	assert.Equal(t, int32(0), atomic.LoadInt32(&unlocks), "already unlocked modules skip the server")

	require.NoError(t, s.UnlockModule(ctx, "m2"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&unlocks))
	assert.True(t, s.Profile().Progress.HasModule("m2"), "local fallback records the unlock")
}

func TestMutationsRequireLoadedProfile(t *testing.T) {
	mux := http.NewServeMux()
	s, _ := newProfileHarness(t, mux, time.Hour)
	ctx := context.Background()

	_, err := s.UseHeart(ctx)
	assert.ErrorIs(t, err, util.ErrNoProfileLoaded)
	assert.ErrorIs(t, s.AddXP(ctx, 10), util.ErrNoProfileLoaded)
	assert.ErrorIs(t, s.UpdateStreak(ctx), util.ErrNoProfileLoaded)
	assert.ErrorIs(t, s.UnlockModule(ctx, "m1"), util.ErrNoProfileLoaded)
}
