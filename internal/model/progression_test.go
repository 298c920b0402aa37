package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{1000, 6},
		{19999, 19},
		{20199, 19},
		{20200, 20},
		{999999, 20},
	}
	for _, c := range cases {
		assert.Equal(t, c.level, LevelForXP(c.xp), "xp=%d", c.xp)
	}

	// 负数经验不应低于1级
	assert.Equal(t, 1, LevelForXP(-50))
}

func TestTierForLevel(t *testing.T) {
	cases := []struct {
		level int
		tier  Tier
	}{
		{1, TierBronze},
		{5, TierBronze},
		{6, TierSilver},
		{9, TierSilver},
		{10, TierGold},
		{13, TierGold},
		{14, TierPlatinum},
		{17, TierPlatinum},
		{18, TierDiamond},
		{20, TierDiamond},
	}
	for _, c := range cases {
		assert.Equal(t, c.tier, TierForLevel(c.level), "level=%d", c.level)
	}
}

func TestStatsSetXPRecomputesDerived(t *testing.T) {
	var s Stats
	s.SetXP(1000)
	assert.Equal(t, 1000, s.XP)
	assert.Equal(t, 6, s.Level)
	assert.Equal(t, TierSilver, s.Tier)

	s.AddXP(19200)
	assert.Equal(t, 20200, s.XP)
	assert.Equal(t, 20, s.Level)
	assert.Equal(t, TierDiamond, s.Tier)
}
