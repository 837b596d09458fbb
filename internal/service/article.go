package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"conduit-backend/internal/domain"
	"conduit-backend/internal/repository"

	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
)

// makeSlug 从标题确定性派生 slug。下划线先归一为空格再交给 slug 库，
// 这样 "first_title" 和 "first title" 派生出同一个 "first-title"，
// 保证 slug 只含小写字母数字和连字符。
func makeSlug(title string) string {
	return slug.Make(strings.ReplaceAll(title, "_", " "))
}

// DefaultPageSize 是未显式指定 limit 时的页大小。
// limit 没有上限：调用方是被信任的。
const DefaultPageSize = 20

// ListParams 是列表查询的对外参数，过滤条件以 AND 组合。
type ListParams struct {
	Tag         string
	Author      string
	FavoritedBy string
	Limit       int
	Offset      int
}

// ArticleInput 是创建文章的输入。
type ArticleInput struct {
	Title       string
	Description string
	Body        string
	TagList     []string
}

// ArticleChanges 描述一次文章更新，nil 字段表示不修改。
type ArticleChanges struct {
	Title       *string
	Description *string
	Body        *string
}

// ArticleService 负责文章的发布、检索和列表富化相关的业务逻辑。
type ArticleService struct {
	articleRepo repository.ArticleRepository
	cache       repository.FavoriteCache
	enricher    *Enricher
}

// NewArticleService 创建 ArticleService 实例。
func NewArticleService(articleRepo repository.ArticleRepository, cache repository.FavoriteCache, enricher *Enricher) *ArticleService {
	if articleRepo == nil {
		panic("ArticleRepository cannot be nil for ArticleService")
	}
	if enricher == nil {
		panic("Enricher cannot be nil for ArticleService")
	}
	if cache == nil {
		cache = repository.NoopFavoriteCache{}
	}
	return &ArticleService{
		articleRepo: articleRepo,
		cache:       cache,
		enricher:    enricher,
	}
}

// List 执行全局文章列表查询并富化结果。
// 返回当前页的富化视图和分页前满足过滤条件的真实总数。
// viewer 可以匿名：此时只有查看者相关字段默认为 false，聚合字段照常填充。
func (s *ArticleService) List(ctx context.Context, params ListParams, viewer domain.Viewer) ([]domain.ArticleView, int64, error) {
	filter := repository.ListFilter{
		Tag:         params.Tag,
		Author:      params.Author,
		FavoritedBy: params.FavoritedBy,
		Limit:       normalizeLimit(params.Limit),
		Offset:      normalizeOffset(params.Offset),
	}
	return s.list(ctx, filter, viewer)
}

// Feed 返回查看者所关注作者的文章，排序与全局列表一致。需要认证。
func (s *ArticleService) Feed(ctx context.Context, viewer domain.Viewer, limit, offset int) ([]domain.ArticleView, int64, error) {
	if viewer.IsAnonymous() {
		return nil, 0, ErrNotAuthorized
	}
	filter := repository.ListFilter{
		FollowedBy: viewer.Username(),
		Limit:      normalizeLimit(limit),
		Offset:     normalizeOffset(offset),
	}
	return s.list(ctx, filter, viewer)
}

func (s *ArticleService) list(ctx context.Context, filter repository.ListFilter, viewer domain.Viewer) ([]domain.ArticleView, int64, error) {
	articles, total, err := s.articleRepo.List(ctx, filter)
	if err != nil {
		logrus.WithError(err).Error("List articles: repository error")
		return nil, 0, ErrStoreUnavailable
	}
	views, err := s.enricher.EnrichArticles(ctx, articles, viewer)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// Get 根据 slug 取回单篇富化文章。
func (s *ArticleService) Get(ctx context.Context, articleSlug string, viewer domain.Viewer) (domain.ArticleView, error) {
	article, err := s.articleRepo.FindBySlug(ctx, articleSlug)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return domain.ArticleView{}, ErrArticleNotFound
		}
		logrus.WithError(err).WithField("slug", articleSlug).Error("Get article: repository error")
		return domain.ArticleView{}, ErrStoreUnavailable
	}
	return s.enricher.EnrichArticle(ctx, article, viewer)
}

// Create 发布一篇新文章。
// slug 由标题确定性派生；冲突是创建时错误，不做自动消歧。
// 未见过的标签自动创建后关联 (而不是悄悄丢弃)。
func (s *ArticleService) Create(ctx context.Context, author *domain.User, input ArticleInput) (domain.ArticleView, error) {
	logCtx := logrus.WithFields(logrus.Fields{"author": author.Username, "title": input.Title})

	// 1. 从标题派生 slug
	articleSlug := makeSlug(input.Title)
	if articleSlug == "" {
		return domain.ArticleView{}, fmt.Errorf("article title is required")
	}

	// 2. 解析标签 (不存在则创建)
	tags, err := s.articleRepo.EnsureTags(ctx, input.TagList)
	if err != nil {
		logCtx.WithError(err).Error("Create article: failed to ensure tags")
		return domain.ArticleView{}, ErrStoreUnavailable
	}

	// 3. 创建文章，slug 唯一索引兜底并发下的冲突
	article := &domain.Article{
		Slug:        articleSlug,
		Title:       input.Title,
		Description: input.Description,
		Body:        input.Body,
		Author:      author.Username,
		Tags:        tags,
	}
	if err := s.articleRepo.Create(ctx, article); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.Warn("Create article rejected: slug already exists")
			return domain.ArticleView{}, ErrDuplicateSlug
		}
		logCtx.WithError(err).Error("Create article: repository error")
		return domain.ArticleView{}, ErrStoreUnavailable
	}

	logCtx.WithField("slug", articleSlug).Info("Article created successfully")
	return s.enricher.EnrichArticle(ctx, article, domain.Identified(author))
}

// Update 修改文章的标题/描述/正文。只有作者本人可以修改；
// 标题变化时 slug 重新派生并重新检查唯一性。
func (s *ArticleService) Update(ctx context.Context, viewer *domain.User, articleSlug string, changes ArticleChanges) (domain.ArticleView, error) {
	logCtx := logrus.WithFields(logrus.Fields{"viewer": viewer.Username, "slug": articleSlug})

	// 1. 取回文章并校验所有权
	article, err := s.articleRepo.FindBySlug(ctx, articleSlug)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return domain.ArticleView{}, ErrArticleNotFound
		}
		logCtx.WithError(err).Error("Update article: repository error")
		return domain.ArticleView{}, ErrStoreUnavailable
	}
	if article.Author != viewer.Username {
		logCtx.Warn("Update article rejected: viewer is not the author")
		return domain.ArticleView{}, ErrForbidden
	}

	// 2. 应用变更
	if changes.Title != nil && *changes.Title != article.Title {
		article.Title = *changes.Title
		newSlug := makeSlug(article.Title)
		if newSlug != article.Slug {
			exists, err := s.articleRepo.SlugExists(ctx, newSlug)
			if err != nil {
				logCtx.WithError(err).Error("Update article: slug check failed")
				return domain.ArticleView{}, ErrStoreUnavailable
			}
			if exists {
				return domain.ArticleView{}, ErrDuplicateSlug
			}
			article.Slug = newSlug
		}
	}
	if changes.Description != nil {
		article.Description = *changes.Description
	}
	if changes.Body != nil {
		article.Body = *changes.Body
	}

	// 3. 保存 (UpdatedAt 在每次修改时刷新)
	if err := s.articleRepo.Update(ctx, article); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return domain.ArticleView{}, ErrDuplicateSlug
		}
		logCtx.WithError(err).Error("Update article: repository error")
		return domain.ArticleView{}, ErrStoreUnavailable
	}

	logCtx.WithField("new_slug", article.Slug).Info("Article updated successfully")
	return s.enricher.EnrichArticle(ctx, article, domain.Identified(viewer))
}

// Delete 删除文章。只有作者本人可以删除；收藏、评论和标签关联级联删除，
// 对应的收藏数缓存条目一并丢弃。
func (s *ArticleService) Delete(ctx context.Context, viewer *domain.User, articleSlug string) error {
	logCtx := logrus.WithFields(logrus.Fields{"viewer": viewer.Username, "slug": articleSlug})

	article, err := s.articleRepo.FindBySlug(ctx, articleSlug)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return ErrArticleNotFound
		}
		logCtx.WithError(err).Error("Delete article: repository error")
		return ErrStoreUnavailable
	}
	if article.Author != viewer.Username {
		logCtx.Warn("Delete article rejected: viewer is not the author")
		return ErrForbidden
	}

	if err := s.articleRepo.Delete(ctx, articleSlug); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return ErrArticleNotFound
		}
		logCtx.WithError(err).Error("Delete article: repository error")
		return ErrStoreUnavailable
	}

	// 缓存故障不向调用方暴露。这里只丢弃收藏数键；
	// 各查看者已缓存收藏集合里残留的 slug 由集合 TTL 兜底过期，
	// 同名 slug 在该窗口内重建时 favorited 可能短暂读到旧值。
	if err := s.cache.InvalidateCount(ctx, articleSlug); err != nil {
		logCtx.WithError(err).Warn("Delete article: cache invalidation failed")
	}

	logCtx.Info("Article deleted successfully")
	return nil
}

// Tags 返回全部标签名。
func (s *ArticleService) Tags(ctx context.Context) ([]string, error) {
	names, err := s.articleRepo.AllTagNames(ctx)
	if err != nil {
		logrus.WithError(err).Error("List tags: repository error")
		return nil, ErrStoreUnavailable
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
