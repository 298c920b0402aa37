package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"lingo_learn_client/internal/util"
	"lingo_learn_client/pkg/kvstore"
	"lingo_learn_client/pkg/logger"
	"lingo_learn_client/pkg/monitoring"

	"go.uber.org/zap"
)

// envelope 缓存信封：载荷与写入时间戳一起序列化为单条记录，
// 读者不会看到比时间戳新的载荷
type envelope struct {
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"` // Unix毫秒
}

// RefreshFunc 拉取最新值（通常是一次远端请求）
type RefreshFunc[T any] func(ctx context.Context) (*T, error)

// RevalidatedFunc 后台刷新完成回调，成功时携带新值
type RevalidatedFunc[T any] func(val *T, err error)

// Cache 泛型stale-while-revalidate缓存，按TTL和刷新函数参数化，
// course与profile共用同一协议
type Cache[T any] struct {
	store  kvstore.Store
	entity string

	mu  sync.RWMutex
	ttl time.Duration

	// 测试注入
	now func() time.Time
}

func NewCache[T any](store kvstore.Store, entity string, ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		store:  store,
		entity: entity,
		ttl:    ttl,
		now:    time.Now,
	}
}

// SetTTL 支持配置热更新
func (c *Cache[T]) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	c.ttl = ttl
	c.mu.Unlock()
}

// Read 返回缓存值及其新鲜度；不存在或无法解析视为miss
func (c *Cache[T]) Read(ctx context.Context, key string) (*T, bool, error) {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if err != kvstore.ErrNotFound {
			logger.Log.Warn("cache read failed", zap.String("entity", c.entity), zap.Error(err))
		}
		return nil, false, util.ErrCacheMiss
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Log.Warn("cache entry corrupted", zap.String("entity", c.entity), zap.Error(err))
		return nil, false, util.ErrCacheMiss
	}

	var val T
	if err := json.Unmarshal(env.Payload, &val); err != nil {
		logger.Log.Warn("cache payload corrupted", zap.String("entity", c.entity), zap.Error(err))
		return nil, false, util.ErrCacheMiss
	}

	c.mu.RLock()
	ttl := c.ttl
	c.mu.RUnlock()

	age := c.now().Sub(time.UnixMilli(env.Timestamp))
	return &val, age < ttl, nil
}

func (c *Cache[T]) Write(ctx context.Context, key string, val *T) error {
	payload, err := json.Marshal(val)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(envelope{Payload: payload, Timestamp: c.now().UnixMilli()})
	if err != nil {
		return err
	}
	return c.store.Set(ctx, key, raw)
}

func (c *Cache[T]) Clear(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// Fetch 读穿协议：
//   - force：跳过缓存读，单次前台刷新，成功时写穿。
//   - 新鲜命中：立即返回缓存值，同时触发一次后台刷新（fire-and-forget，
//     成功写穿并回调，失败仅记录日志）。第二个返回值为true。
//   - 过期/缺失：前台刷新。前台失败且有过期缓存时，同时返回过期值与错误，
//     由调用方决定兜底策略。
func (c *Cache[T]) Fetch(ctx context.Context, key string, force bool, refresh RefreshFunc[T], onRevalidated RevalidatedFunc[T]) (*T, bool, error) {
	if !force {
		if cached, fresh, err := c.Read(ctx, key); err == nil {
			if fresh {
				monitoring.CacheReads.WithLabelValues(c.entity, "hit").Inc()
				go c.revalidate(key, refresh, onRevalidated)
				return cached, true, nil
			}

			monitoring.CacheReads.WithLabelValues(c.entity, "stale").Inc()
			val, err := refresh(ctx)
			if err != nil {
				return cached, false, err
			}
			c.writeThrough(key, val)
			return val, false, nil
		}
		monitoring.CacheReads.WithLabelValues(c.entity, "miss").Inc()
	}

	val, err := refresh(ctx)
	if err != nil {
		return nil, false, err
	}
	c.writeThrough(key, val)
	return val, false, nil
}

// revalidate 后台刷新，不持有触发方的context，跑完为止
func (c *Cache[T]) revalidate(key string, refresh RefreshFunc[T], onRevalidated RevalidatedFunc[T]) {
	val, err := refresh(context.Background())
	if err != nil {
		// 静默降级：前台已有可用数据
		monitoring.CacheRevalidations.WithLabelValues(c.entity, "failed").Inc()
		logger.Log.Debug("background revalidation failed", zap.String("entity", c.entity), zap.Error(err))
	} else {
		monitoring.CacheRevalidations.WithLabelValues(c.entity, "ok").Inc()
		c.writeThrough(key, val)
	}
	if onRevalidated != nil {
		onRevalidated(val, err)
	}
}

func (c *Cache[T]) writeThrough(key string, val *T) {
	if err := c.Write(context.Background(), key, val); err != nil {
		logger.Log.Warn("cache write failed", zap.String("entity", c.entity), zap.Error(err))
	}
}
