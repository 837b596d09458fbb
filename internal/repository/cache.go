package repository

import "context"

// FavoriteCache 定义了收藏聚合的键值加速层，通常由 Redis 实现。
// 缓存只覆盖两个派生视图：每篇文章的收藏数，和每个查看者的收藏集合。
// 它不是权威数据：任何时刻都可以从关系存储重建。
//
// 缓存未命中返回 ErrCacheMiss；其他错误由调用方在内部吞掉并回退到
// 存储计算，绝不向上层暴露 —— 缓存缺席或故障只能影响性能，不能影响行为。
type FavoriteCache interface {
	// === 收藏数 (按文章 slug 键控) ===

	// SetCount 写入单篇文章的收藏数。
	SetCount(ctx context.Context, slug string, count int64) error

	// GetCounts 批量读取整批 slug 的收藏数，返回 slug -> count 映射。
	// 未缓存的 slug 不出现在结果中，不视为错误。
	GetCounts(ctx context.Context, slugs []string) (map[string]int64, error)

	// SetCounts 批量写入收藏数 (惰性回填路径)。
	SetCounts(ctx context.Context, counts map[string]int64) error

	// InvalidateCount 丢弃单篇文章的收藏数缓存 (文章删除路径)。
	InvalidateCount(ctx context.Context, slug string) error

	// === 收藏集合 (按查看者用户名键控) ===

	// GetFavoriteSet 读取用户收藏的全部 slug 集合。未缓存时返回 ErrCacheMiss。
	GetFavoriteSet(ctx context.Context, username string) (map[string]struct{}, error)

	// FillFavoriteSet 用存储计算出的完整集合回填缓存。
	FillFavoriteSet(ctx context.Context, username string, slugs map[string]struct{}) error

	// AddFavorite 在用户的已缓存集合中加入一个 slug。
	// 集合尚未缓存时必须不做任何事：冷集合留给惰性回填重建，
	// 否则会以残缺集合污染缓存。
	AddFavorite(ctx context.Context, username, slug string) error

	// RemoveFavorite 从用户的已缓存集合中移除一个 slug。
	RemoveFavorite(ctx context.Context, username, slug string) error
}

// NoopFavoriteCache 是 FavoriteCache 的空实现，用于未配置缓存的部署和测试。
// 所有读取都未命中，所有写入都被丢弃，行为与直连存储完全一致。
type NoopFavoriteCache struct{}

func (NoopFavoriteCache) SetCount(ctx context.Context, slug string, count int64) error {
	return nil
}

func (NoopFavoriteCache) GetCounts(ctx context.Context, slugs []string) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (NoopFavoriteCache) SetCounts(ctx context.Context, counts map[string]int64) error {
	return nil
}

func (NoopFavoriteCache) InvalidateCount(ctx context.Context, slug string) error {
	return nil
}

func (NoopFavoriteCache) GetFavoriteSet(ctx context.Context, username string) (map[string]struct{}, error) {
	return nil, ErrCacheMiss
}

func (NoopFavoriteCache) FillFavoriteSet(ctx context.Context, username string, slugs map[string]struct{}) error {
	return nil
}

func (NoopFavoriteCache) AddFavorite(ctx context.Context, username, slug string) error {
	return nil
}

func (NoopFavoriteCache) RemoveFavorite(ctx context.Context, username, slug string) error {
	return nil
}
