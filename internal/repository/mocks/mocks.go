// Package mocks 提供 repository 接口的 testify Mock 实现，供服务层测试使用。
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"conduit-backend/internal/domain"
	"conduit-backend/internal/repository"
)

// UserRepository 是 repository.UserRepository 的 Mock 实现
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	args := m.Called(ctx, id)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *UserRepository) FindByUsernames(ctx context.Context, usernames []string) (map[string]*domain.User, error) {
	args := m.Called(ctx, usernames)
	var users map[string]*domain.User
	if args.Get(0) != nil {
		users = args.Get(0).(map[string]*domain.User)
	}
	return users, args.Error(1)
}

func (m *UserRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]*domain.User, error) {
	args := m.Called(ctx, ids)
	var users map[uint]*domain.User
	if args.Get(0) != nil {
		users = args.Get(0).(map[uint]*domain.User)
	}
	return users, args.Error(1)
}

func (m *UserRepository) Save(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// ArticleRepository 是 repository.ArticleRepository 的 Mock 实现
type ArticleRepository struct {
	mock.Mock
}

func (m *ArticleRepository) FindBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	args := m.Called(ctx, slug)
	var article *domain.Article
	if args.Get(0) != nil {
		article = args.Get(0).(*domain.Article)
	}
	return article, args.Error(1)
}

func (m *ArticleRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *ArticleRepository) List(ctx context.Context, filter repository.ListFilter) ([]domain.Article, int64, error) {
	args := m.Called(ctx, filter)
	var articles []domain.Article
	if args.Get(0) != nil {
		articles = args.Get(0).([]domain.Article)
	}
	return articles, args.Get(1).(int64), args.Error(2)
}

func (m *ArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	args := m.Called(ctx, article)
	return args.Error(0)
}

func (m *ArticleRepository) Update(ctx context.Context, article *domain.Article) error {
	args := m.Called(ctx, article)
	return args.Error(0)
}

func (m *ArticleRepository) Delete(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

func (m *ArticleRepository) TagNamesByArticleIDs(ctx context.Context, articleIDs []uint) (map[uint][]string, error) {
	args := m.Called(ctx, articleIDs)
	var tags map[uint][]string
	if args.Get(0) != nil {
		tags = args.Get(0).(map[uint][]string)
	}
	return tags, args.Error(1)
}

func (m *ArticleRepository) EnsureTags(ctx context.Context, names []string) ([]domain.Tag, error) {
	args := m.Called(ctx, names)
	var tags []domain.Tag
	if args.Get(0) != nil {
		tags = args.Get(0).([]domain.Tag)
	}
	return tags, args.Error(1)
}

func (m *ArticleRepository) AllTagNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	var names []string
	if args.Get(0) != nil {
		names = args.Get(0).([]string)
	}
	return names, args.Error(1)
}

func (m *ArticleRepository) AllSlugs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	var slugs []string
	if args.Get(0) != nil {
		slugs = args.Get(0).([]string)
	}
	return slugs, args.Error(1)
}

// FollowRepository 是 repository.FollowRepository 的 Mock 实现
type FollowRepository struct {
	mock.Mock
}

func (m *FollowRepository) Exists(ctx context.Context, follower, followed string) (bool, error) {
	args := m.Called(ctx, follower, followed)
	return args.Bool(0), args.Error(1)
}

func (m *FollowRepository) Create(ctx context.Context, follow *domain.Follow) error {
	args := m.Called(ctx, follow)
	return args.Error(0)
}

func (m *FollowRepository) Delete(ctx context.Context, follower, followed string) error {
	args := m.Called(ctx, follower, followed)
	return args.Error(0)
}

func (m *FollowRepository) FollowedUsernames(ctx context.Context, follower string) (map[string]struct{}, error) {
	args := m.Called(ctx, follower)
	var usernames map[string]struct{}
	if args.Get(0) != nil {
		usernames = args.Get(0).(map[string]struct{})
	}
	return usernames, args.Error(1)
}

// FavoriteRepository 是 repository.FavoriteRepository 的 Mock 实现
type FavoriteRepository struct {
	mock.Mock
}

func (m *FavoriteRepository) Exists(ctx context.Context, username, slug string) (bool, error) {
	args := m.Called(ctx, username, slug)
	return args.Bool(0), args.Error(1)
}

func (m *FavoriteRepository) Create(ctx context.Context, favorite *domain.Favorite) error {
	args := m.Called(ctx, favorite)
	return args.Error(0)
}

func (m *FavoriteRepository) Delete(ctx context.Context, username, slug string) error {
	args := m.Called(ctx, username, slug)
	return args.Error(0)
}

func (m *FavoriteRepository) CountBySlug(ctx context.Context, slug string) (int64, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(int64), args.Error(1)
}

func (m *FavoriteRepository) CountBySlugs(ctx context.Context, slugs []string) (map[string]int64, error) {
	args := m.Called(ctx, slugs)
	var counts map[string]int64
	if args.Get(0) != nil {
		counts = args.Get(0).(map[string]int64)
	}
	return counts, args.Error(1)
}

func (m *FavoriteRepository) SlugsByUser(ctx context.Context, username string) (map[string]struct{}, error) {
	args := m.Called(ctx, username)
	var slugs map[string]struct{}
	if args.Get(0) != nil {
		slugs = args.Get(0).(map[string]struct{})
	}
	return slugs, args.Error(1)
}

// CommentRepository 是 repository.CommentRepository 的 Mock 实现
type CommentRepository struct {
	mock.Mock
}

func (m *CommentRepository) FindByIDAndSlug(ctx context.Context, id uint, slug string) (*domain.Comment, error) {
	args := m.Called(ctx, id, slug)
	var comment *domain.Comment
	if args.Get(0) != nil {
		comment = args.Get(0).(*domain.Comment)
	}
	return comment, args.Error(1)
}

func (m *CommentRepository) FindByArticle(ctx context.Context, slug string) ([]domain.Comment, error) {
	args := m.Called(ctx, slug)
	var comments []domain.Comment
	if args.Get(0) != nil {
		comments = args.Get(0).([]domain.Comment)
	}
	return comments, args.Error(1)
}

func (m *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *CommentRepository) Delete(ctx context.Context, id uint, slug string) error {
	args := m.Called(ctx, id, slug)
	return args.Error(0)
}

// FavoriteCache 是 repository.FavoriteCache 的 Mock 实现
type FavoriteCache struct {
	mock.Mock
}

func (m *FavoriteCache) SetCount(ctx context.Context, slug string, count int64) error {
	args := m.Called(ctx, slug, count)
	return args.Error(0)
}

func (m *FavoriteCache) GetCounts(ctx context.Context, slugs []string) (map[string]int64, error) {
	args := m.Called(ctx, slugs)
	var counts map[string]int64
	if args.Get(0) != nil {
		counts = args.Get(0).(map[string]int64)
	}
	return counts, args.Error(1)
}

func (m *FavoriteCache) SetCounts(ctx context.Context, counts map[string]int64) error {
	args := m.Called(ctx, counts)
	return args.Error(0)
}

func (m *FavoriteCache) InvalidateCount(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

func (m *FavoriteCache) GetFavoriteSet(ctx context.Context, username string) (map[string]struct{}, error) {
	args := m.Called(ctx, username)
	var slugs map[string]struct{}
	if args.Get(0) != nil {
		slugs = args.Get(0).(map[string]struct{})
	}
	return slugs, args.Error(1)
}

func (m *FavoriteCache) FillFavoriteSet(ctx context.Context, username string, slugs map[string]struct{}) error {
	args := m.Called(ctx, username, slugs)
	return args.Error(0)
}

func (m *FavoriteCache) AddFavorite(ctx context.Context, username, slug string) error {
	args := m.Called(ctx, username, slug)
	return args.Error(0)
}

func (m *FavoriteCache) RemoveFavorite(ctx context.Context, username, slug string) error {
	args := m.Called(ctx, username, slug)
	return args.Error(0)
}

// TaskEnqueuer 是 service.TaskEnqueuer 的 Mock 实现
type TaskEnqueuer struct {
	mock.Mock
}

func (m *TaskEnqueuer) EnqueueCacheReconcile(ctx context.Context, slugs []string) error {
	args := m.Called(ctx, slugs)
	return args.Error(0)
}
