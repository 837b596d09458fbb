package worker_test

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"conduit-backend/internal/repository/mocks"
	"conduit-backend/internal/tasks"
	"conduit-backend/internal/worker"
)

func TestCacheReconcileHandler_TargetedSlugs(t *testing.T) {
	// Arrange
	mockArticleRepo := new(mocks.ArticleRepository)
	mockFavoriteRepo := new(mocks.FavoriteRepository)
	mockCache := new(mocks.FavoriteCache)
	handler := worker.NewCacheReconcileHandler(mockArticleRepo, mockFavoriteRepo, mockCache)
	ctx := context.Background()

	mockFavoriteRepo.On("CountBySlugs", ctx, []string{"a-post", "b-post"}).
		Return(map[string]int64{"a-post": 3}, nil).Once()
	// 聚合结果里没有的 slug 以 0 写回，清掉陈旧的非零条目
	mockCache.On("SetCounts", ctx, map[string]int64{"a-post": 3, "b-post": 0}).
		Return(nil).Once()

	task, err := tasks.NewCacheReconcileTask([]string{"a-post", "b-post"})
	require.NoError(t, err)

	// Act
	err = handler.ProcessTask(ctx, task)

	// Assert
	assert.NoError(t, err)
	mockFavoriteRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
	mockArticleRepo.AssertNotCalled(t, "AllSlugs", mock.Anything)
}

func TestCacheReconcileHandler_FullReconcile(t *testing.T) {
	// Arrange
	mockArticleRepo := new(mocks.ArticleRepository)
	mockFavoriteRepo := new(mocks.FavoriteRepository)
	mockCache := new(mocks.FavoriteCache)
	handler := worker.NewCacheReconcileHandler(mockArticleRepo, mockFavoriteRepo, mockCache)
	ctx := context.Background()

	// 空 slug 列表表示全量对账
	mockArticleRepo.On("AllSlugs", ctx).Return([]string{"only-post"}, nil).Once()
	mockFavoriteRepo.On("CountBySlugs", ctx, []string{"only-post"}).
		Return(map[string]int64{"only-post": 1}, nil).Once()
	mockCache.On("SetCounts", ctx, map[string]int64{"only-post": 1}).Return(nil).Once()

	task, err := tasks.NewCacheReconcileTask(nil)
	require.NoError(t, err)

	// Act
	err = handler.ProcessTask(ctx, task)

	// Assert
	assert.NoError(t, err)
	mockArticleRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestCacheReconcileHandler_MalformedPayloadSkipsRetry(t *testing.T) {
	// Arrange
	handler := worker.NewCacheReconcileHandler(new(mocks.ArticleRepository), new(mocks.FavoriteRepository), new(mocks.FavoriteCache))

	// Act
	err := handler.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeCacheReconcile, []byte("{not json")))

	// Assert: 损坏的 payload 重试也不会成功
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
