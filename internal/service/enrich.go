package service

import (
	"context"
	"errors"

	"conduit-backend/internal/domain"
	"conduit-backend/internal/repository"

	"github.com/sirupsen/logrus"
)

// Enricher 负责文章列表的社交富化：给一批原始文章行附加标签列表、
// 作者资料、收藏总数，以及相对于查看者的收藏/关注标记。
//
// 所有派生数据都按"整批一次查询"取回：一次标签关联查询、一次收藏数
// 聚合 (优先读缓存)、查看者在场时再各一次收藏集合与关注集合查询，
// 然后在内存中与输入列表求交。逐行逐关系发查询是这个组件存在的
// 意义所要消灭的反模式。
//
// 缓存错误在这里被吞掉并回退到存储计算，绝不向调用方暴露。
type Enricher struct {
	userRepo     repository.UserRepository
	articleRepo  repository.ArticleRepository
	followRepo   repository.FollowRepository
	favoriteRepo repository.FavoriteRepository
	cache        repository.FavoriteCache
}

// NewEnricher 创建 Enricher 实例。
// cache 传 nil 表示未配置缓存，行为不变，只是每次都从存储计算。
func NewEnricher(
	userRepo repository.UserRepository,
	articleRepo repository.ArticleRepository,
	followRepo repository.FollowRepository,
	favoriteRepo repository.FavoriteRepository,
	cache repository.FavoriteCache,
) *Enricher {
	if userRepo == nil || articleRepo == nil || followRepo == nil || favoriteRepo == nil {
		panic("repositories cannot be nil for Enricher")
	}
	if cache == nil {
		cache = repository.NoopFavoriteCache{}
	}
	return &Enricher{
		userRepo:     userRepo,
		articleRepo:  articleRepo,
		followRepo:   followRepo,
		favoriteRepo: favoriteRepo,
		cache:        cache,
	}
}

// EnrichArticles 富化一批文章，保持输入顺序。
// 要么返回完整富化的列表，要么整体失败，不返回部分富化的结果。
func (e *Enricher) EnrichArticles(ctx context.Context, articles []domain.Article, viewer domain.Viewer) ([]domain.ArticleView, error) {
	views := make([]domain.ArticleView, 0, len(articles))
	if len(articles) == 0 {
		return views, nil
	}

	// 1. 收集这一批的 ID、slug 和作者名 (作者去重)
	ids := make([]uint, len(articles))
	slugs := make([]string, len(articles))
	authorSet := make(map[string]struct{})
	authorNames := make([]string, 0)
	for i := range articles {
		ids[i] = articles[i].ID
		slugs[i] = articles[i].Slug
		if _, ok := authorSet[articles[i].Author]; !ok {
			authorSet[articles[i].Author] = struct{}{}
			authorNames = append(authorNames, articles[i].Author)
		}
	}

	// 2. 一次查询取回整批的标签名
	tagsByID, err := e.articleRepo.TagNamesByArticleIDs(ctx, ids)
	if err != nil {
		logrus.WithError(err).Error("Enrich: failed to fetch tag names for batch")
		return nil, ErrStoreUnavailable
	}

	// 3. 一次查询取回整批的作者
	authors, err := e.userRepo.FindByUsernames(ctx, authorNames)
	if err != nil {
		logrus.WithError(err).Error("Enrich: failed to fetch authors for batch")
		return nil, ErrStoreUnavailable
	}

	// 4. 收藏数：缓存读穿透，未命中部分回退到一次 GROUP BY 聚合
	counts, err := e.favoriteCounts(ctx, slugs)
	if err != nil {
		return nil, err
	}

	// 5. 查看者在场时，各一次查询取回其收藏集合与关注集合
	var favoriteSet map[string]struct{}
	var followedSet map[string]struct{}
	if !viewer.IsAnonymous() {
		favoriteSet, err = e.viewerFavoriteSet(ctx, viewer.Username())
		if err != nil {
			return nil, err
		}
		followedSet, err = e.followRepo.FollowedUsernames(ctx, viewer.Username())
		if err != nil {
			logrus.WithError(err).Error("Enrich: failed to fetch followed set")
			return nil, ErrStoreUnavailable
		}
	}

	// 6. 在内存中组装视图
	for i := range articles {
		article := &articles[i]

		tagList := tagsByID[article.ID]
		if tagList == nil {
			tagList = []string{} // 零标签返回空列表，绝不为 null
		}

		authorProfile := domain.Profile{Username: article.Author}
		if author, ok := authors[article.Author]; ok {
			_, following := followedSet[article.Author]
			authorProfile = domain.ProfileOf(author, following)
		}

		_, favorited := favoriteSet[article.Slug]

		views = append(views, domain.ArticleView{
			Slug:           article.Slug,
			Title:          article.Title,
			Description:    article.Description,
			Body:           article.Body,
			TagList:        tagList,
			CreatedAt:      article.CreatedAt,
			UpdatedAt:      article.UpdatedAt,
			Favorited:      favorited,
			FavoritesCount: counts[article.Slug],
			Author:         authorProfile,
		})
	}
	return views, nil
}

// EnrichArticle 富化单篇文章 (走同一条批处理路径)。
func (e *Enricher) EnrichArticle(ctx context.Context, article *domain.Article, viewer domain.Viewer) (domain.ArticleView, error) {
	views, err := e.EnrichArticles(ctx, []domain.Article{*article}, viewer)
	if err != nil {
		return domain.ArticleView{}, err
	}
	return views[0], nil
}

// favoriteCounts 取回整批 slug 的收藏数：先批量读缓存，
// 未命中的 slug 用一次聚合查询补齐并回填缓存 (零值也回填，
// 否则无收藏的文章永远不命中)。
func (e *Enricher) favoriteCounts(ctx context.Context, slugs []string) (map[string]int64, error) {
	counts, err := e.cache.GetCounts(ctx, slugs)
	if err != nil {
		// 缓存故障只影响性能：记录后当作全部未命中
		logrus.WithError(err).Warn("Enrich: favorite count cache read failed, falling back to store")
		counts = map[string]int64{}
	}

	missing := make([]string, 0)
	for _, slug := range slugs {
		if _, ok := counts[slug]; !ok {
			missing = append(missing, slug)
		}
	}
	if len(missing) == 0 {
		return counts, nil
	}

	computed, err := e.favoriteRepo.CountBySlugs(ctx, missing)
	if err != nil {
		logrus.WithError(err).Error("Enrich: failed to aggregate favorite counts")
		return nil, ErrStoreUnavailable
	}

	backfill := make(map[string]int64, len(missing))
	for _, slug := range missing {
		count := computed[slug] // 聚合结果里没有的 slug 就是 0
		counts[slug] = count
		backfill[slug] = count
	}
	if err := e.cache.SetCounts(ctx, backfill); err != nil {
		logrus.WithError(err).Warn("Enrich: favorite count cache backfill failed")
	}
	return counts, nil
}

// viewerFavoriteSet 取回查看者的完整收藏集合：缓存读穿透，
// 未命中时从存储取回并回填。
func (e *Enricher) viewerFavoriteSet(ctx context.Context, username string) (map[string]struct{}, error) {
	set, err := e.cache.GetFavoriteSet(ctx, username)
	if err == nil {
		return set, nil
	}
	if !errors.Is(err, repository.ErrCacheMiss) {
		logrus.WithError(err).Warn("Enrich: favorite set cache read failed, falling back to store")
	}

	set, err = e.favoriteRepo.SlugsByUser(ctx, username)
	if err != nil {
		logrus.WithError(err).Error("Enrich: failed to fetch viewer favorite set")
		return nil, ErrStoreUnavailable
	}
	if err := e.cache.FillFavoriteSet(ctx, username, set); err != nil {
		logrus.WithError(err).Warn("Enrich: favorite set cache backfill failed")
	}
	return set, nil
}
