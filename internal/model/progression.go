package model

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
	TierDiamond  Tier = "diamond"
)

// levelThresholds 升级曲线，下标i为等级i+1所需总经验
var levelThresholds = []int{
	0, 100, 250, 450, 700, 1000, 1400, 1900, 2500, 3200,
	4000, 5000, 6200, 7600, 9200, 11000, 13000, 15200, 17600, 20200,
}

const MaxLevel = 20

// LevelForXP 返回满足 xp >= 阈值 的最大等级，下限为1
func LevelForXP(xp int) int {
	level := 1
	for i, threshold := range levelThresholds {
		if xp >= threshold {
			level = i + 1
		} else {
			break
		}
	}
	return level
}

func TierForLevel(level int) Tier {
	switch {
	case level >= 18:
		return TierDiamond
	case level >= 14:
		return TierPlatinum
	case level >= 10:
		return TierGold
	case level >= 6:
		return TierSilver
	default:
		return TierBronze
	}
}
