package rediscache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"conduit-backend/internal/repository"
)

// 缓存条目的生存时间。缓存不是权威数据，过期后由惰性回填重建。
const (
	countTTL       = 1 * time.Hour
	favoriteSetTTL = 30 * time.Minute
)

// RedisFavoriteCache 是 FavoriteCache 接口的 Redis 实现。
// 键空间：每篇文章一个收藏数键，每个查看者一个收藏集合键。
type RedisFavoriteCache struct {
	client *redis.Client // 依赖 Redis 客户端
	// Redis key 的前缀，方便管理
	keyPrefix string
}

// NewRedisFavoriteCache 创建 RedisFavoriteCache 实例
func NewRedisFavoriteCache(client *redis.Client, keyPrefix string) *RedisFavoriteCache {
	if client == nil {
		panic("redis client cannot be nil for RedisFavoriteCache")
	}
	if keyPrefix == "" {
		keyPrefix = "cb:" // 默认前缀 "cb:" (conduit backend)
	}
	return &RedisFavoriteCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// --- Key Generation Helpers ---

func (r *RedisFavoriteCache) countKey(slug string) string {
	return fmt.Sprintf("%sarticle:%s:favcount", r.keyPrefix, slug)
}

func (r *RedisFavoriteCache) favoriteSetKey(username string) string {
	return fmt.Sprintf("%suser:%s:favslugs", r.keyPrefix, username)
}

// --- FavoriteCache Interface Implementation ---

// SetCount 写入单篇文章的收藏数
func (r *RedisFavoriteCache) SetCount(ctx context.Context, slug string, count int64) error {
	key := r.countKey(slug)
	if err := r.client.Set(ctx, key, count, countTTL).Err(); err != nil {
		return fmt.Errorf("redis: set favorite count for '%s' on %s: %w", slug, key, err)
	}
	return nil
}

// GetCounts 用一次 MGET 批量读取整批 slug 的收藏数。
// 未缓存的 slug 不出现在结果中，由调用方回退到存储聚合。
func (r *RedisFavoriteCache) GetCounts(ctx context.Context, slugs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(slugs))
	if len(slugs) == 0 {
		return result, nil
	}
	keys := make([]string, len(slugs))
	for i, slug := range slugs {
		keys[i] = r.countKey(slug)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: mget favorite counts: %w", err)
	}
	for i, value := range values {
		if value == nil {
			continue // 未命中，留给存储回退
		}
		str, ok := value.(string)
		if !ok {
			continue
		}
		count, parseErr := strconv.ParseInt(str, 10, 64)
		if parseErr != nil {
			continue // 损坏的条目按未命中处理
		}
		result[slugs[i]] = count
	}
	return result, nil
}

// SetCounts 用 pipeline 批量回填收藏数
func (r *RedisFavoriteCache) SetCounts(ctx context.Context, counts map[string]int64) error {
	if len(counts) == 0 {
		return nil
	}
	pipe := r.client.Pipeline()
	for slug, count := range counts {
		pipe.Set(ctx, r.countKey(slug), count, countTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: backfill favorite counts: %w", err)
	}
	return nil
}

// InvalidateCount 丢弃单篇文章的收藏数缓存
func (r *RedisFavoriteCache) InvalidateCount(ctx context.Context, slug string) error {
	key := r.countKey(slug)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis: invalidate favorite count for '%s' on %s: %w", slug, key, err)
	}
	return nil
}

// GetFavoriteSet 读取用户收藏的全部 slug 集合。
// 空的 Redis 集合与不存在的键无法区分，因此空结果一律按未命中处理；
// 代价是零收藏用户的读取总是回退存储，换来的是集合永不残缺。
func (r *RedisFavoriteCache) GetFavoriteSet(ctx context.Context, username string) (map[string]struct{}, error) {
	key := r.favoriteSetKey(username)
	members, err := r.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: get favorite set for '%s' from %s: %w", username, key, err)
	}
	if len(members) == 0 {
		return nil, repository.ErrCacheMiss
	}
	set := make(map[string]struct{}, len(members))
	for _, member := range members {
		set[member] = struct{}{}
	}
	return set, nil
}

// FillFavoriteSet 用存储计算出的完整集合回填缓存。
// 空集合不回填 (见 GetFavoriteSet)。
func (r *RedisFavoriteCache) FillFavoriteSet(ctx context.Context, username string, slugs map[string]struct{}) error {
	if len(slugs) == 0 {
		return nil
	}
	key := r.favoriteSetKey(username)
	members := make([]interface{}, 0, len(slugs))
	for slug := range slugs {
		members = append(members, slug)
	}
	pipe := r.client.Pipeline()
	pipe.Del(ctx, key) // 整体替换，避免叠加到残留条目上
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, favoriteSetTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: fill favorite set for '%s' on %s: %w", username, key, err)
	}
	return nil
}

// AddFavorite 在用户的已缓存集合中加入一个 slug。
// 集合不存在时什么都不做：对冷键 SADD 会造出只有一个元素的残缺集合。
func (r *RedisFavoriteCache) AddFavorite(ctx context.Context, username, slug string) error {
	key := r.favoriteSetKey(username)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis: check favorite set for '%s' on %s: %w", username, key, err)
	}
	if exists == 0 {
		return nil // 冷集合留给惰性回填
	}
	pipe := r.client.Pipeline()
	pipe.SAdd(ctx, key, slug)
	pipe.Expire(ctx, key, favoriteSetTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: add favorite '%s' for '%s' on %s: %w", slug, username, key, err)
	}
	return nil
}

// RemoveFavorite 从用户的已缓存集合中移除一个 slug。
// 对不存在的键执行 SREM 无害，不需要存在性检查。
func (r *RedisFavoriteCache) RemoveFavorite(ctx context.Context, username, slug string) error {
	key := r.favoriteSetKey(username)
	if err := r.client.SRem(ctx, key, slug).Err(); err != nil {
		return fmt.Errorf("redis: remove favorite '%s' for '%s' on %s: %w", slug, username, key, err)
	}
	return nil
}
