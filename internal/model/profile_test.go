package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneIsIndependent(t *testing.T) {
	p := DefaultProfile()
	p.Progress.UnlockedModules = []string{"m1"}
	p.Progress.CompletedLessons = []CompletedLesson{{
		LessonResult: LessonResult{LessonID: "l1", ModuleID: "m1"},
		CompletedAt:  time.Now(),
	}}
	p.Progress.Achievements = []string{"first-lesson"}

	cp := p.Clone()
	cp.Stats.Hearts = 0
	cp.Progress.UnlockedModules[0] = "changed"
	cp.Progress.Achievements = append(cp.Progress.Achievements, "extra")

	assert.Equal(t, 5, p.Stats.Hearts)
	assert.Equal(t, "m1", p.Progress.UnlockedModules[0])
	assert.Len(t, p.Progress.Achievements, 1)
}

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()
	require.NotNil(t, p)
	assert.Equal(t, 5, p.Stats.Hearts)
	assert.Equal(t, 5, p.Stats.MaxHearts)
	assert.Equal(t, 0, p.Stats.XP)
	assert.Equal(t, 1, p.Stats.Level)
	assert.Equal(t, TierBronze, p.Stats.Tier)
	assert.NotNil(t, p.Progress.UnlockedModules)
}

func TestProgressLookups(t *testing.T) {
	p := Progress{
		UnlockedModules: []string{"m1", "m2"},
		Achievements:    []string{"a1"},
	}
	assert.True(t, p.HasModule("m2"))
	assert.False(t, p.HasModule("m3"))
	assert.True(t, p.HasAchievement("a1"))
	assert.False(t, p.HasAchievement("a2"))
}
