package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"conduit-backend/internal/domain"
	"conduit-backend/internal/repository"
)

// GormCommentRepository 是 CommentRepository 接口的 GORM 实现
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository 创建 GormCommentRepository 实例
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	if db == nil {
		panic("database connection cannot be nil for GormCommentRepository")
	}
	return &GormCommentRepository{db: db}
}

// FindByIDAndSlug 实现查找指定文章下的指定评论
func (r *GormCommentRepository) FindByIDAndSlug(ctx context.Context, id uint, slug string) (*domain.Comment, error) {
	var comment domain.Comment
	err := r.db.WithContext(ctx).
		Where("id = ? AND article_slug = ?", id, slug).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCommentNotFound
		}
		return nil, fmt.Errorf("gorm: find comment %d for article '%s': %w", id, slug, err)
	}
	return &comment, nil
}

// FindByArticle 实现返回指定文章的全部评论
func (r *GormCommentRepository) FindByArticle(ctx context.Context, slug string) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := r.db.WithContext(ctx).
		Where("article_slug = ?", slug).
		Order("created_at, id").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list comments for article '%s': %w", slug, err)
	}
	return comments, nil
}

// Create 实现创建评论
func (r *GormCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("gorm: create comment for article '%s': %w", comment.ArticleSlug, err)
	}
	return nil
}

// Delete 实现删除指定文章下的指定评论
func (r *GormCommentRepository) Delete(ctx context.Context, id uint, slug string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND article_slug = ?", id, slug).
		Delete(&domain.Comment{})
	if result.Error != nil {
		return fmt.Errorf("gorm: delete comment %d for article '%s': %w", id, slug, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrCommentNotFound
	}
	return nil
}
