package repository

import (
	"context"

	"conduit-backend/internal/domain"
)

// CommentRepository 定义了评论数据的存储和检索操作。
type CommentRepository interface {
	// FindByIDAndSlug 查找指定文章下的指定评论。
	// 评论不存在 (或不属于该文章) 时返回 ErrCommentNotFound。
	FindByIDAndSlug(ctx context.Context, id uint, slug string) (*domain.Comment, error)

	// FindByArticle 返回指定文章的全部评论，按创建时间升序。
	FindByArticle(ctx context.Context, slug string) ([]domain.Comment, error)

	// Create 创建一条评论。
	Create(ctx context.Context, comment *domain.Comment) error

	// Delete 删除指定文章下的指定评论。评论不存在时返回 ErrCommentNotFound。
	Delete(ctx context.Context, id uint, slug string) error
}
