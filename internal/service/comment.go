package service

import (
	"context"
	"errors"

	"conduit-backend/internal/domain"
	"conduit-backend/internal/repository"

	"github.com/sirupsen/logrus"
)

// CommentService 负责评论的创建、检索和删除。
// 评论作者的 Following 标记同样按整批富化：一次查询取回全部作者，
// 一次查询取回查看者的关注集合。
type CommentService struct {
	commentRepo repository.CommentRepository
	articleRepo repository.ArticleRepository
	userRepo    repository.UserRepository
	followRepo  repository.FollowRepository
}

// NewCommentService 创建 CommentService 实例。
func NewCommentService(
	commentRepo repository.CommentRepository,
	articleRepo repository.ArticleRepository,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
) *CommentService {
	if commentRepo == nil || articleRepo == nil || userRepo == nil || followRepo == nil {
		panic("repositories cannot be nil for CommentService")
	}
	return &CommentService{
		commentRepo: commentRepo,
		articleRepo: articleRepo,
		userRepo:    userRepo,
		followRepo:  followRepo,
	}
}

// List 返回文章的全部评论视图。viewer 可以匿名。
func (s *CommentService) List(ctx context.Context, articleSlug string, viewer domain.Viewer) ([]domain.CommentView, error) {
	if err := s.requireArticle(ctx, articleSlug); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.FindByArticle(ctx, articleSlug)
	if err != nil {
		logrus.WithError(err).WithField("slug", articleSlug).Error("List comments: repository error")
		return nil, ErrStoreUnavailable
	}

	views := make([]domain.CommentView, 0, len(comments))
	if len(comments) == 0 {
		return views, nil
	}

	// 1. 批量取回评论作者
	idSet := make(map[uint]struct{})
	ids := make([]uint, 0, len(comments))
	for i := range comments {
		if _, ok := idSet[comments[i].AuthorID]; !ok {
			idSet[comments[i].AuthorID] = struct{}{}
			ids = append(ids, comments[i].AuthorID)
		}
	}
	authors, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		logrus.WithError(err).Error("List comments: failed to fetch authors")
		return nil, ErrStoreUnavailable
	}

	// 2. 查看者在场时取回其关注集合
	var followedSet map[string]struct{}
	if !viewer.IsAnonymous() {
		followedSet, err = s.followRepo.FollowedUsernames(ctx, viewer.Username())
		if err != nil {
			logrus.WithError(err).Error("List comments: failed to fetch followed set")
			return nil, ErrStoreUnavailable
		}
	}

	// 3. 在内存中组装视图
	for i := range comments {
		comment := &comments[i]
		profile := domain.Profile{}
		if author, ok := authors[comment.AuthorID]; ok {
			_, following := followedSet[author.Username]
			profile = domain.ProfileOf(author, following)
		}
		views = append(views, domain.CommentView{
			ID:        comment.ID,
			Body:      comment.Body,
			CreatedAt: comment.CreatedAt,
			UpdatedAt: comment.UpdatedAt,
			Author:    profile,
		})
	}
	return views, nil
}

// Create 给文章添加一条评论。
func (s *CommentService) Create(ctx context.Context, viewer *domain.User, articleSlug, body string) (domain.CommentView, error) {
	logCtx := logrus.WithFields(logrus.Fields{"viewer": viewer.Username, "slug": articleSlug})

	if err := s.requireArticle(ctx, articleSlug); err != nil {
		return domain.CommentView{}, err
	}

	comment := &domain.Comment{
		Body:        body,
		AuthorID:    viewer.ID,
		ArticleSlug: articleSlug,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		logCtx.WithError(err).Error("Create comment: repository error")
		return domain.CommentView{}, ErrStoreUnavailable
	}

	logCtx.WithField("comment_id", comment.ID).Info("Comment created")
	return domain.CommentView{
		ID:        comment.ID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
		Author:    domain.ProfileOf(viewer, false),
	}, nil
}

// Delete 删除一条评论。只有评论作者本人可以删除。
func (s *CommentService) Delete(ctx context.Context, viewer *domain.User, articleSlug string, commentID uint) error {
	logCtx := logrus.WithFields(logrus.Fields{"viewer": viewer.Username, "slug": articleSlug, "comment_id": commentID})

	if err := s.requireArticle(ctx, articleSlug); err != nil {
		return err
	}

	comment, err := s.commentRepo.FindByIDAndSlug(ctx, commentID, articleSlug)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		logCtx.WithError(err).Error("Delete comment: repository error")
		return ErrStoreUnavailable
	}
	if comment.AuthorID != viewer.ID {
		logCtx.Warn("Delete comment rejected: viewer is not the author")
		return ErrForbidden
	}

	if err := s.commentRepo.Delete(ctx, commentID, articleSlug); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		logCtx.WithError(err).Error("Delete comment: repository error")
		return ErrStoreUnavailable
	}

	logCtx.Info("Comment deleted")
	return nil
}

func (s *CommentService) requireArticle(ctx context.Context, articleSlug string) error {
	_, err := s.articleRepo.FindBySlug(ctx, articleSlug)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return ErrArticleNotFound
		}
		logrus.WithError(err).WithField("slug", articleSlug).Error("Find article: repository error")
		return ErrStoreUnavailable
	}
	return nil
}
