package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/yockii/notion_blog/internal/constant"
	"github.com/yockii/notion_blog/pkg/config"
	"github.com/yockii/notion_blog/pkg/logger"
)

// key前缀
const previewPrefix = "preview:"

// CachedFetcher 带redis缓存的预览获取，只缓存成功结果
type CachedFetcher struct {
	next Fetcher
	rdb  *redis.Client
	ttl  time.Duration
}

// NewCachedFetcher rdb为nil时不使用缓存
func NewCachedFetcher(next Fetcher, rdb *redis.Client, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{next: next, rdb: rdb, ttl: ttl}
}

// NewRedisClient 按配置创建redis客户端，未启用时返回nil
func NewRedisClient() *redis.Client {
	if !config.GetBool("cache.redis.enabled") {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%d",
			config.GetString("cache.redis.host"),
			config.GetInt("cache.redis.port")),
		Password:     config.GetString("cache.redis.password"),
		DB:           config.GetInt("cache.redis.db"),
		PoolSize:     config.GetInt("cache.redis.pool_size"),
		MinIdleConns: config.GetInt("cache.redis.pool_size") / 2,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

func cacheKey(url string) string {
	return previewPrefix + url
}

// Fetch 先查缓存，未命中再请求，缓存读写失败只记录日志
func (c *CachedFetcher) Fetch(ctx context.Context, url string) (*Preview, error) {
	if c.rdb == nil {
		return c.next.Fetch(ctx, url)
	}

	key := cacheKey(url)
	cached, err := c.load(ctx, key)
	if err != nil {
		logger.Warn("读取预览缓存失败", logger.F("key", key), logger.F("error", err))
	} else if cached != nil {
		return cached, nil
	}

	p, err := c.next.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := c.store(ctx, key, p); err != nil {
		logger.Warn("写入预览缓存失败", logger.F("key", key), logger.F("error", err))
	}
	return p, nil
}

// load 未命中时返回nil, nil
func (c *CachedFetcher) load(ctx context.Context, key string) (*Preview, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constant.ErrCacheError, err)
	}
	var p Preview
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", constant.ErrDeserializeError, err)
	}
	return &p, nil
}

func (c *CachedFetcher) store(ctx context.Context, key string, p *Preview) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: %v", constant.ErrSerializeError, err)
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", constant.ErrCacheError, err)
	}
	return nil
}
