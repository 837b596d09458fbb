package service

import (
	"context"
	"errors"

	"conduit-backend/internal/domain"
	"conduit-backend/internal/repository"

	"github.com/sirupsen/logrus"
)

// TaskEnqueuer 把缓存修复任务投递到后台队列。
// 同步缓存更新失败时不向调用方暴露错误，而是排队一次对账来消除漂移。
type TaskEnqueuer interface {
	EnqueueCacheReconcile(ctx context.Context, slugs []string) error
}

// FavoriteService 负责收藏边的创建和删除。
// 每次写入都同步把两个受影响的缓存条目更新到位 (而不是仅仅失效)：
// 写完成后缓存中的收藏数必须等于存储中的真实计数。
type FavoriteService struct {
	articleRepo  repository.ArticleRepository
	favoriteRepo repository.FavoriteRepository
	cache        repository.FavoriteCache
	enricher     *Enricher
	tasks        TaskEnqueuer
}

// NewFavoriteService 创建 FavoriteService 实例。
// tasks 传 nil 表示没有后台队列，缓存修复退化为只记日志。
func NewFavoriteService(
	articleRepo repository.ArticleRepository,
	favoriteRepo repository.FavoriteRepository,
	cache repository.FavoriteCache,
	enricher *Enricher,
	tasks TaskEnqueuer,
) *FavoriteService {
	if articleRepo == nil || favoriteRepo == nil {
		panic("repositories cannot be nil for FavoriteService")
	}
	if enricher == nil {
		panic("Enricher cannot be nil for FavoriteService")
	}
	if cache == nil {
		cache = repository.NoopFavoriteCache{}
	}
	return &FavoriteService{
		articleRepo:  articleRepo,
		favoriteRepo: favoriteRepo,
		cache:        cache,
		enricher:     enricher,
		tasks:        tasks,
	}
}

// Favorite 把文章加入用户的收藏。
// 收藏不是幂等创建：重复收藏以冲突失败，而不是静默成功。
func (s *FavoriteService) Favorite(ctx context.Context, viewer *domain.User, articleSlug string) (domain.ArticleView, error) {
	logCtx := logrus.WithFields(logrus.Fields{"viewer": viewer.Username, "slug": articleSlug})

	// 1. 文章必须存在
	article, err := s.articleRepo.FindBySlug(ctx, articleSlug)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return domain.ArticleView{}, ErrArticleNotFound
		}
		logCtx.WithError(err).Error("Favorite: repository error")
		return domain.ArticleView{}, ErrStoreUnavailable
	}

	// 2. 直接插入，唯一约束是并发下的最终仲裁
	//    (检查后插入不是单个逻辑单元，两个并发的相同请求会双双通过检查)
	favorite := &domain.Favorite{Username: viewer.Username, ArticleSlug: articleSlug}
	if err := s.favoriteRepo.Create(ctx, favorite); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.Warn("Favorite rejected: edge already exists")
			return domain.ArticleView{}, ErrAlreadyFavorited
		}
		logCtx.WithError(err).Error("Favorite: repository error")
		return domain.ArticleView{}, ErrStoreUnavailable
	}

	// 3. 与写入同步更新两个缓存条目
	s.syncCache(ctx, viewer.Username, articleSlug, true)

	logCtx.Info("Article favorited")
	return s.enricher.EnrichArticle(ctx, article, domain.Identified(viewer))
}

// Unfavorite 把文章移出用户的收藏。边不存在时以未找到失败。
func (s *FavoriteService) Unfavorite(ctx context.Context, viewer *domain.User, articleSlug string) (domain.ArticleView, error) {
	logCtx := logrus.WithFields(logrus.Fields{"viewer": viewer.Username, "slug": articleSlug})

	article, err := s.articleRepo.FindBySlug(ctx, articleSlug)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return domain.ArticleView{}, ErrArticleNotFound
		}
		logCtx.WithError(err).Error("Unfavorite: repository error")
		return domain.ArticleView{}, ErrStoreUnavailable
	}

	if err := s.favoriteRepo.Delete(ctx, viewer.Username, articleSlug); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logCtx.Warn("Unfavorite rejected: edge does not exist")
			return domain.ArticleView{}, ErrNotFavorited
		}
		logCtx.WithError(err).Error("Unfavorite: repository error")
		return domain.ArticleView{}, ErrStoreUnavailable
	}

	s.syncCache(ctx, viewer.Username, articleSlug, false)

	logCtx.Info("Article unfavorited")
	return s.enricher.EnrichArticle(ctx, article, domain.Identified(viewer))
}

// syncCache 在收藏写入完成后同步更新收藏数条目和查看者集合条目。
// 计数从存储重新聚合后写穿，保证写完成的瞬间缓存与存储一致。
// 任何一步失败都只记日志并排队一次针对该文章的对账，错误不出函数。
func (s *FavoriteService) syncCache(ctx context.Context, username, articleSlug string, added bool) {
	logCtx := logrus.WithFields(logrus.Fields{"viewer": username, "slug": articleSlug})

	count, err := s.favoriteRepo.CountBySlug(ctx, articleSlug)
	if err != nil {
		logCtx.WithError(err).Warn("Cache sync: failed to recount favorites, scheduling reconcile")
		s.scheduleReconcile(ctx, articleSlug)
		return
	}
	if err := s.cache.SetCount(ctx, articleSlug, count); err != nil {
		logCtx.WithError(err).Warn("Cache sync: failed to write favorite count, scheduling reconcile")
		s.scheduleReconcile(ctx, articleSlug)
		return
	}

	if added {
		err = s.cache.AddFavorite(ctx, username, articleSlug)
	} else {
		err = s.cache.RemoveFavorite(ctx, username, articleSlug)
	}
	if err != nil {
		logCtx.WithError(err).Warn("Cache sync: failed to update viewer favorite set, scheduling reconcile")
		s.scheduleReconcile(ctx, articleSlug)
	}
}

func (s *FavoriteService) scheduleReconcile(ctx context.Context, articleSlug string) {
	if s.tasks == nil {
		return
	}
	if err := s.tasks.EnqueueCacheReconcile(ctx, []string{articleSlug}); err != nil {
		logrus.WithError(err).WithField("slug", articleSlug).Error("Failed to enqueue cache reconcile task")
	}
}
