package gormpersistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"conduit-backend/internal/domain"
	"conduit-backend/internal/repository"
)

// GormFollowRepository 是 FollowRepository 接口的 GORM 实现
type GormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository 创建 GormFollowRepository 实例
func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	if db == nil {
		panic("database connection cannot be nil for GormFollowRepository")
	}
	return &GormFollowRepository{db: db}
}

// Exists 实现关注边的存在性检查 (无副作用的幂等谓词)
func (r *GormFollowRepository) Exists(ctx context.Context, follower, followed string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Follow{}).
		Where("follower = ? AND followed = ?", follower, followed).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: check follow edge (%s -> %s): %w", follower, followed, err)
	}
	return count > 0, nil
}

// Create 实现创建关注边。
// 唯一索引是并发下的最终仲裁：两个相同的并发请求只会有一个成功，
// 另一个拿到 ErrDuplicateEntry。
func (r *GormFollowRepository) Create(ctx context.Context, follow *domain.Follow) error {
	err := r.db.WithContext(ctx).Create(follow).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create follow edge (%s -> %s): %w", follow.Follower, follow.Followed, err)
	}
	return nil
}

// Delete 实现删除关注边
func (r *GormFollowRepository) Delete(ctx context.Context, follower, followed string) error {
	result := r.db.WithContext(ctx).
		Where("follower = ? AND followed = ?", follower, followed).
		Delete(&domain.Follow{})
	if result.Error != nil {
		return fmt.Errorf("gorm: delete follow edge (%s -> %s): %w", follower, followed, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// FollowedUsernames 实现一次查询取回用户关注的全部作者
func (r *GormFollowRepository) FollowedUsernames(ctx context.Context, follower string) (map[string]struct{}, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&domain.Follow{}).
		Where("follower = ?", follower).
		Pluck("followed", &names).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list followed usernames for '%s': %w", follower, err)
	}
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set, nil
}

// GormFavoriteRepository 是 FavoriteRepository 接口的 GORM 实现
type GormFavoriteRepository struct {
	db *gorm.DB
}

// NewGormFavoriteRepository 创建 GormFavoriteRepository 实例
func NewGormFavoriteRepository(db *gorm.DB) *GormFavoriteRepository {
	if db == nil {
		panic("database connection cannot be nil for GormFavoriteRepository")
	}
	return &GormFavoriteRepository{db: db}
}

// Exists 实现收藏边的存在性检查
func (r *GormFavoriteRepository) Exists(ctx context.Context, username, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Favorite{}).
		Where("username = ? AND article_slug = ?", username, slug).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: check favorite edge (%s -> %s): %w", username, slug, err)
	}
	return count > 0, nil
}

// Create 实现创建收藏边，唯一约束由数据库兜底
func (r *GormFavoriteRepository) Create(ctx context.Context, favorite *domain.Favorite) error {
	err := r.db.WithContext(ctx).Create(favorite).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create favorite edge (%s -> %s): %w", favorite.Username, favorite.ArticleSlug, err)
	}
	return nil
}

// Delete 实现删除收藏边
func (r *GormFavoriteRepository) Delete(ctx context.Context, username, slug string) error {
	result := r.db.WithContext(ctx).
		Where("username = ? AND article_slug = ?", username, slug).
		Delete(&domain.Favorite{})
	if result.Error != nil {
		return fmt.Errorf("gorm: delete favorite edge (%s -> %s): %w", username, slug, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountBySlug 实现单篇文章的收藏数聚合
func (r *GormFavoriteRepository) CountBySlug(ctx context.Context, slug string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Favorite{}).
		Where("article_slug = ?", slug).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gorm: count favorites for '%s': %w", slug, err)
	}
	return count, nil
}

// favoriteCountRow 是 CountBySlugs 的扫描目标
type favoriteCountRow struct {
	ArticleSlug string
	Total       int64
}

// CountBySlugs 实现整批文章的收藏数聚合 (单次 GROUP BY)
func (r *GormFavoriteRepository) CountBySlugs(ctx context.Context, slugs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(slugs))
	if len(slugs) == 0 {
		return result, nil
	}
	var rows []favoriteCountRow
	err := r.db.WithContext(ctx).Model(&domain.Favorite{}).
		Select("article_slug", "COUNT(*) AS total").
		Where("article_slug IN ?", slugs).
		Group("article_slug").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: count favorites for slug batch: %w", err)
	}
	for _, row := range rows {
		result[row.ArticleSlug] = row.Total
	}
	return result, nil
}

// SlugsByUser 实现一次查询取回用户收藏的全部文章 slug
func (r *GormFavoriteRepository) SlugsByUser(ctx context.Context, username string) (map[string]struct{}, error) {
	var slugs []string
	err := r.db.WithContext(ctx).Model(&domain.Favorite{}).
		Where("username = ?", username).
		Pluck("article_slug", &slugs).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list favorite slugs for '%s': %w", username, err)
	}
	set := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		set[slug] = struct{}{}
	}
	return set, nil
}
