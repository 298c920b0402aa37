package client

import (
	"context"
	"net/http"

	"lingo_learn_client/internal/model"
)

// LessonOutcome 服务端记录课程完成后返回的派生结果。
// 客户端随后总是整体重拉profile，这里仅用于日志。
type LessonOutcome struct {
	XP                   int      `json:"xp"`
	Level                int      `json:"level"`
	Streak               int      `json:"streak"`
	UnlockedModules      []string `json:"unlockedModules"`
	UnlockedAchievements []string `json:"unlockedAchievements"`
}

func (c *Client) RecordLesson(ctx context.Context, lesson model.CompletedLesson) (*LessonOutcome, error) {
	var outcome LessonOutcome
	if err := c.do(ctx, http.MethodPost, "/progress/lesson", lesson, &outcome); err != nil {
		return nil, err
	}
	return &outcome, nil
}

func (c *Client) AddXP(ctx context.Context, amount int) error {
	body := struct {
		Amount int `json:"amount"`
	}{Amount: amount}
	return c.do(ctx, http.MethodPost, "/progress/xp", body, nil)
}

func (c *Client) UseHeart(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/progress/use-heart", nil, nil)
}

func (c *Client) UnlockModule(ctx context.Context, moduleID string) error {
	body := struct {
		ModuleID string `json:"moduleId"`
	}{ModuleID: moduleID}
	return c.do(ctx, http.MethodPost, "/progress/unlock-module", body, nil)
}

func (c *Client) UnlockAchievement(ctx context.Context, achievementID string) error {
	body := struct {
		AchievementID string `json:"achievementId"`
	}{AchievementID: achievementID}
	return c.do(ctx, http.MethodPost, "/progress/unlock-achievement", body, nil)
}
