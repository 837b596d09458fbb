package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"conduit-backend/internal/repository"
	"conduit-backend/internal/tasks"
)

// CacheReconcileHandler 处理收藏数缓存对账任务。
// 同步缓存更新失败后，写路径会排队一次针对受影响文章的对账；
// 调度器另外周期性触发一次全量对账，消除任何来源的漂移。
type CacheReconcileHandler struct {
	articleRepo  repository.ArticleRepository
	favoriteRepo repository.FavoriteRepository
	cache        repository.FavoriteCache
}

// NewCacheReconcileHandler 创建 Handler 实例
func NewCacheReconcileHandler(
	articleRepo repository.ArticleRepository,
	favoriteRepo repository.FavoriteRepository,
	cache repository.FavoriteCache,
) *CacheReconcileHandler {
	if articleRepo == nil || favoriteRepo == nil {
		panic("repositories cannot be nil for CacheReconcileHandler")
	}
	if cache == nil {
		cache = repository.NoopFavoriteCache{}
	}
	return &CacheReconcileHandler{
		articleRepo:  articleRepo,
		favoriteRepo: favoriteRepo,
		cache:        cache,
	}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *CacheReconcileHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())

	var payload tasks.CacheReconcilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal task payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	// 1. 确定对账范围：payload 为空时覆盖全部文章
	slugs := payload.Slugs
	if len(slugs) == 0 {
		var err error
		slugs, err = h.articleRepo.AllSlugs(ctx)
		if err != nil {
			logCtx.WithError(err).Error("Failed to list article slugs for reconcile")
			return fmt.Errorf("failed to list slugs: %w", err)
		}
	}
	if len(slugs) == 0 {
		logCtx.Info("No articles to reconcile")
		return nil
	}
	logCtx = logCtx.WithField("slugs", len(slugs))

	// 2. 从存储重新聚合真实计数
	counts, err := h.favoriteRepo.CountBySlugs(ctx, slugs)
	if err != nil {
		logCtx.WithError(err).Error("Failed to recount favorites for reconcile")
		return fmt.Errorf("failed to recount favorites: %w", err)
	}
	// 没有收藏的文章计数为 0，也要写回，否则陈旧的非零条目会一直留在缓存里
	for _, slug := range slugs {
		if _, ok := counts[slug]; !ok {
			counts[slug] = 0
		}
	}

	// 3. 批量写回缓存
	if err := h.cache.SetCounts(ctx, counts); err != nil {
		logCtx.WithError(err).Error("Failed to write reconciled counts to cache")
		return fmt.Errorf("failed to write counts: %w", err)
	}

	logCtx.Info("Cache reconcile task processed successfully")
	return nil
}
