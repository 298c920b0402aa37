package service

import (
	"context"

	"lingo_learn_client/internal/model"
	"lingo_learn_client/internal/util"
	"lingo_learn_client/pkg/logger"

	"go.uber.org/zap"
)

// applyMutation 所有profile变更共用的对账策略：
//  1. 先尝试服务端调用（最小变更载荷）。
//  2. 成功：丢弃本地计算结果，强制整体重拉profile，服务端派生字段
//     （升级、解锁、连胜）以重拉结果为准。重拉失败不影响变更本身的结果。
//  3. 失败：在内存profile的副本上执行本地近似变更并持久化，UI保持可用。
//     失败只记日志，不上抛（local-fallback-applied）。
func (s *ProfileService) applyMutation(ctx context.Context, name string, remote func(context.Context) error, local func(p *model.UserProfile)) error {
	s.mu.Lock()
	if s.profile == nil {
		s.mu.Unlock()
		return util.ErrNoProfileLoaded
	}
	s.mu.Unlock()

	if err := remote(ctx); err != nil {
		logger.Log.Warn("server mutation failed, applying local fallback",
			zap.String("mutation", name), zap.Error(err))
		s.mu.Lock()
		defer s.mu.Unlock()
		p := s.profile.Clone()
		local(p)
		s.saveProfileLocked(ctx, p)
		return nil
	}

	if err := s.LoadProfile(ctx, true); err != nil {
		logger.Log.Warn("authoritative refresh after mutation failed",
			zap.String("mutation", name), zap.Error(err))
	}
	return nil
}
