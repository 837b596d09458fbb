package service_test

import (
	"context"
	"errors"
	"testing"

	"conduit-backend/internal/domain"
	"conduit-backend/internal/repository"
	"conduit-backend/internal/repository/mocks"
	"conduit-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newFavoriteServiceForTest() (*service.FavoriteService, *mocks.ArticleRepository, *mocks.UserRepository, *mocks.FollowRepository, *mocks.FavoriteRepository, *mocks.FavoriteCache, *mocks.TaskEnqueuer) {
	mockArticleRepo := new(mocks.ArticleRepository)
	mockUserRepo := new(mocks.UserRepository)
	mockFollowRepo := new(mocks.FollowRepository)
	mockFavoriteRepo := new(mocks.FavoriteRepository)
	mockCache := new(mocks.FavoriteCache)
	mockTasks := new(mocks.TaskEnqueuer)
	enricher := service.NewEnricher(mockUserRepo, mockArticleRepo, mockFollowRepo, mockFavoriteRepo, mockCache)
	favoriteService := service.NewFavoriteService(mockArticleRepo, mockFavoriteRepo, mockCache, enricher, mockTasks)
	return favoriteService, mockArticleRepo, mockUserRepo, mockFollowRepo, mockFavoriteRepo, mockCache, mockTasks
}

// 设置收藏写入后富化阶段的 Mock 预期
func expectEnrichment(ctx context.Context, article *domain.Article, viewer *domain.User, favorited bool,
	mockArticleRepo *mocks.ArticleRepository, mockUserRepo *mocks.UserRepository,
	mockFollowRepo *mocks.FollowRepository, mockCache *mocks.FavoriteCache) {

	mockArticleRepo.On("TagNamesByArticleIDs", ctx, []uint{article.ID}).
		Return(map[uint][]string{}, nil).Once()
	mockUserRepo.On("FindByUsernames", ctx, []string{article.Author}).
		Return(map[string]*domain.User{article.Author: {Username: article.Author}}, nil).Once()
	mockCache.On("GetCounts", ctx, []string{article.Slug}).
		Return(map[string]int64{article.Slug: 1}, nil).Once()

	set := map[string]struct{}{}
	if favorited {
		set[article.Slug] = struct{}{}
	}
	mockCache.On("GetFavoriteSet", ctx, viewer.Username).Return(set, nil).Once()
	mockFollowRepo.On("FollowedUsernames", ctx, viewer.Username).
		Return(map[string]struct{}{}, nil).Once()
}

// --- 测试 Favorite 方法 ---

func TestFavoriteService_Favorite_Success(t *testing.T) {
	// Arrange
	favoriteService, mockArticleRepo, mockUserRepo, mockFollowRepo, mockFavoriteRepo, mockCache, _ := newFavoriteServiceForTest()
	ctx := context.Background()
	viewer := &domain.User{ID: 9, Username: "carol"}
	article := &domain.Article{ID: 4, Slug: "nice-post", Author: "alice"}

	mockArticleRepo.On("FindBySlug", ctx, "nice-post").Return(article, nil).Once()
	mockFavoriteRepo.On("Create", ctx, mock.MatchedBy(func(f *domain.Favorite) bool {
		return f.Username == "carol" && f.ArticleSlug == "nice-post"
	})).Return(nil).Once()

	// 写入完成后：从存储重新聚合计数并写穿缓存，再更新查看者集合
	mockFavoriteRepo.On("CountBySlug", ctx, "nice-post").Return(int64(1), nil).Once()
	mockCache.On("SetCount", ctx, "nice-post", int64(1)).Return(nil).Once()
	mockCache.On("AddFavorite", ctx, "carol", "nice-post").Return(nil).Once()

	expectEnrichment(ctx, article, viewer, true, mockArticleRepo, mockUserRepo, mockFollowRepo, mockCache)

	// Act
	view, err := favoriteService.Favorite(ctx, viewer, "nice-post")

	// Assert
	require.NoError(t, err)
	assert.True(t, view.Favorited)
	assert.Equal(t, int64(1), view.FavoritesCount)

	mockFavoriteRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestFavoriteService_Favorite_AlreadyFavorited(t *testing.T) {
	// Arrange
	favoriteService, mockArticleRepo, _, _, mockFavoriteRepo, mockCache, _ := newFavoriteServiceForTest()
	ctx := context.Background()
	viewer := &domain.User{ID: 9, Username: "carol"}

	mockArticleRepo.On("FindBySlug", ctx, "nice-post").
		Return(&domain.Article{ID: 4, Slug: "nice-post", Author: "alice"}, nil).Once()
	// 唯一约束仲裁重复收藏
	mockFavoriteRepo.On("Create", ctx, mock.AnythingOfType("*domain.Favorite")).
		Return(repository.ErrDuplicateEntry).Once()

	// Act
	_, err := favoriteService.Favorite(ctx, viewer, "nice-post")

	// Assert: 重复收藏以冲突失败，而不是静默成功
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrAlreadyFavorited))
	mockCache.AssertNotCalled(t, "SetCount", mock.Anything, mock.Anything, mock.Anything)
}

func TestFavoriteService_Favorite_ArticleNotFound(t *testing.T) {
	// Arrange
	favoriteService, mockArticleRepo, _, _, mockFavoriteRepo, _, _ := newFavoriteServiceForTest()
	ctx := context.Background()

	mockArticleRepo.On("FindBySlug", ctx, "missing").
		Return(nil, repository.ErrArticleNotFound).Once()

	// Act
	_, err := favoriteService.Favorite(ctx, &domain.User{Username: "carol"}, "missing")

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrArticleNotFound))
	mockFavoriteRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFavoriteService_Favorite_CacheFailureSchedulesReconcile(t *testing.T) {
	// Arrange
	favoriteService, mockArticleRepo, mockUserRepo, mockFollowRepo, mockFavoriteRepo, mockCache, mockTasks := newFavoriteServiceForTest()
	ctx := context.Background()
	viewer := &domain.User{ID: 9, Username: "carol"}
	article := &domain.Article{ID: 4, Slug: "nice-post", Author: "alice"}

	mockArticleRepo.On("FindBySlug", ctx, "nice-post").Return(article, nil).Once()
	mockFavoriteRepo.On("Create", ctx, mock.AnythingOfType("*domain.Favorite")).Return(nil).Once()

	// 同步缓存更新失败 -> 排队一次针对该文章的对账，错误不出函数
	mockFavoriteRepo.On("CountBySlug", ctx, "nice-post").Return(int64(1), nil).Once()
	mockCache.On("SetCount", ctx, "nice-post", int64(1)).
		Return(errors.New("redis: connection refused")).Once()
	mockTasks.On("EnqueueCacheReconcile", ctx, []string{"nice-post"}).Return(nil).Once()

	expectEnrichment(ctx, article, viewer, true, mockArticleRepo, mockUserRepo, mockFollowRepo, mockCache)

	// Act
	view, err := favoriteService.Favorite(ctx, viewer, "nice-post")

	// Assert: 缓存故障只影响性能，请求本身成功
	require.NoError(t, err)
	assert.True(t, view.Favorited)
	mockTasks.AssertExpectations(t)
	mockCache.AssertNotCalled(t, "AddFavorite", mock.Anything, mock.Anything, mock.Anything)
}

// --- 测试 Unfavorite 方法 ---

func TestFavoriteService_Unfavorite_Success(t *testing.T) {
	// Arrange
	favoriteService, mockArticleRepo, mockUserRepo, mockFollowRepo, mockFavoriteRepo, mockCache, _ := newFavoriteServiceForTest()
	ctx := context.Background()
	viewer := &domain.User{ID: 9, Username: "carol"}
	article := &domain.Article{ID: 4, Slug: "nice-post", Author: "alice"}

	mockArticleRepo.On("FindBySlug", ctx, "nice-post").Return(article, nil).Once()
	mockFavoriteRepo.On("Delete", ctx, "carol", "nice-post").Return(nil).Once()

	mockFavoriteRepo.On("CountBySlug", ctx, "nice-post").Return(int64(0), nil).Once()
	mockCache.On("SetCount", ctx, "nice-post", int64(0)).Return(nil).Once()
	mockCache.On("RemoveFavorite", ctx, "carol", "nice-post").Return(nil).Once()

	mockArticleRepo.On("TagNamesByArticleIDs", ctx, []uint{4}).
		Return(map[uint][]string{}, nil).Once()
	mockUserRepo.On("FindByUsernames", ctx, []string{"alice"}).
		Return(map[string]*domain.User{"alice": {Username: "alice"}}, nil).Once()
	mockCache.On("GetCounts", ctx, []string{"nice-post"}).
		Return(map[string]int64{"nice-post": 0}, nil).Once()
	mockCache.On("GetFavoriteSet", ctx, "carol").Return(map[string]struct{}{}, nil).Once()
	mockFollowRepo.On("FollowedUsernames", ctx, "carol").Return(map[string]struct{}{}, nil).Once()

	// Act
	view, err := favoriteService.Unfavorite(ctx, viewer, "nice-post")

	// Assert
	require.NoError(t, err)
	assert.False(t, view.Favorited)
	assert.Equal(t, int64(0), view.FavoritesCount)
	mockFavoriteRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestFavoriteService_Unfavorite_NotFavorited(t *testing.T) {
	// Arrange
	favoriteService, mockArticleRepo, _, _, mockFavoriteRepo, mockCache, _ := newFavoriteServiceForTest()
	ctx := context.Background()

	mockArticleRepo.On("FindBySlug", ctx, "nice-post").
		Return(&domain.Article{ID: 4, Slug: "nice-post", Author: "alice"}, nil).Once()
	mockFavoriteRepo.On("Delete", ctx, "carol", "nice-post").
		Return(repository.ErrNotFound).Once()

	// Act
	_, err := favoriteService.Unfavorite(ctx, &domain.User{Username: "carol"}, "nice-post")

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNotFavorited))
	mockCache.AssertNotCalled(t, "SetCount", mock.Anything, mock.Anything, mock.Anything)
}
