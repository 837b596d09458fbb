package repository

import (
	"context"

	"conduit-backend/internal/domain"
)

// FollowRepository 定义了关注边的存储和检索操作。
// Exists 是无副作用的幂等谓词，是缓存缺席或未命中时的回退路径。
type FollowRepository interface {
	// Exists 判断 follower 是否关注了 followed。
	Exists(ctx context.Context, follower, followed string) (bool, error)

	// Create 创建一条关注边。重复的 (follower, followed) 对返回 ErrDuplicateEntry；
	// 唯一约束由存储层兜底，并发的相同请求只会有一个成功。
	Create(ctx context.Context, follow *domain.Follow) error

	// Delete 删除一条关注边。边不存在时返回 ErrNotFound。
	Delete(ctx context.Context, follower, followed string) error

	// FollowedUsernames 一次查询取回 follower 关注的全部用户名集合。
	FollowedUsernames(ctx context.Context, follower string) (map[string]struct{}, error)
}

// FavoriteRepository 定义了收藏边的存储、检索和聚合操作。
type FavoriteRepository interface {
	// Exists 判断 username 是否收藏了 slug 对应的文章。
	Exists(ctx context.Context, username, slug string) (bool, error)

	// Create 创建一条收藏边。重复的 (username, slug) 对返回 ErrDuplicateEntry。
	Create(ctx context.Context, favorite *domain.Favorite) error

	// Delete 删除一条收藏边。边不存在时返回 ErrNotFound。
	Delete(ctx context.Context, username, slug string) error

	// CountBySlug 返回单篇文章的收藏总数。
	CountBySlug(ctx context.Context, slug string) (int64, error)

	// CountBySlugs 一次聚合查询 (GROUP BY) 取回整批文章的收藏数，
	// 返回 slug -> count 映射。没有收藏的 slug 不出现在结果中，调用方视为 0。
	CountBySlugs(ctx context.Context, slugs []string) (map[string]int64, error)

	// SlugsByUser 一次查询取回用户收藏的全部文章 slug 集合。
	SlugsByUser(ctx context.Context, username string) (map[string]struct{}, error)
}
