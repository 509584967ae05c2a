package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache 定義服務使用的 Redis 操作介面
// Set 供健康檢查寫入探針鍵，Publish / PSubscribe 供即時事件跨實例廣播
// *redis.Client 直接實作此介面，測試時以 FakeCache 替換
// ttl <= 0 表示不設過期

type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	PSubscribe(ctx context.Context, patterns ...string) *redis.PubSub
	Close() error
}

type FakeCache struct {
	SetFn        func(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	PublishFn    func(ctx context.Context, channel string, message any) *redis.IntCmd
	PSubscribeFn func(ctx context.Context, patterns ...string) *redis.PubSub
	CloseFn      func() error
}

// Set 執行 Fake 設定或 panic
func (f *FakeCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.SetFn != nil {
		return f.SetFn(ctx, key, value, expiration)
	}
	panic("unexpected Set")
}

// Publish 執行 Fake 設定或 panic
func (f *FakeCache) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	if f.PublishFn != nil {
		return f.PublishFn(ctx, channel, message)
	}
	panic("unexpected Publish")
}

// PSubscribe 執行 Fake 設定或 panic
func (f *FakeCache) PSubscribe(ctx context.Context, patterns ...string) *redis.PubSub {
	if f.PSubscribeFn != nil {
		return f.PSubscribeFn(ctx, patterns...)
	}
	panic("unexpected PSubscribe")
}

// Close 執行 Fake 設定或 no-op
func (f *FakeCache) Close() error {
	if f.CloseFn != nil {
		return f.CloseFn()
	}
	return nil
}
