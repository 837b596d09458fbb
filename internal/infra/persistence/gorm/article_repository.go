package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"conduit-backend/internal/domain"
	"conduit-backend/internal/repository"
)

// GormArticleRepository 是 ArticleRepository 接口的 GORM 实现。
// 列表查询在这里把过滤参数 (标签/作者/收藏者/关注流/分页)
// 合成为单个带 JOIN 的查询计划。
type GormArticleRepository struct {
	db *gorm.DB
}

// NewGormArticleRepository 创建 GormArticleRepository 实例
func NewGormArticleRepository(db *gorm.DB) *GormArticleRepository {
	if db == nil {
		panic("database connection cannot be nil for GormArticleRepository")
	}
	return &GormArticleRepository{db: db}
}

// FindBySlug 实现根据 slug 查找文章
func (r *GormArticleRepository) FindBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	var article domain.Article
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&article).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrArticleNotFound
		}
		return nil, fmt.Errorf("gorm: find article by slug '%s': %w", slug, err)
	}
	return &article, nil
}

// SlugExists 实现检查 slug 是否已被占用
func (r *GormArticleRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	// 使用 Count() 优化查询，只查询数量
	err := r.db.WithContext(ctx).Model(&domain.Article{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: count articles by slug '%s': %w", slug, err)
	}
	return count > 0, nil
}

// List 实现组合过滤的文章列表查询。
// 所有过滤条件以 AND 组合成一个查询计划；排序是对外保证的契约：
// 创建时间降序，主键降序兜底保证稳定。返回的总数是分页前的真实总数。
func (r *GormArticleRepository) List(ctx context.Context, filter repository.ListFilter) ([]domain.Article, int64, error) {
	base := r.db.WithContext(ctx).Model(&domain.Article{})

	// 1. 按需拼接 JOIN 和过滤条件
	if filter.Tag != "" {
		// 标签不存在时 JOIN 自然得到空结果，不是错误
		base = base.
			Joins("JOIN article_tags ON article_tags.article_id = articles.id").
			Joins("JOIN tags ON tags.id = article_tags.tag_id").
			Where("tags.name = ?", filter.Tag)
	}
	if filter.Author != "" {
		base = base.Where("articles.author = ?", filter.Author)
	}
	if filter.FavoritedBy != "" {
		base = base.
			Joins("JOIN favorites ON favorites.article_slug = articles.slug").
			Where("favorites.username = ?", filter.FavoritedBy)
	}
	if filter.FollowedBy != "" {
		// Feed 模式：只保留查看者所关注作者的文章
		base = base.
			Joins("JOIN follows ON follows.followed = articles.author").
			Where("follows.follower = ?", filter.FollowedBy)
	}

	// 2. 统计分页前的真实总数 (与页查询共用同一组过滤条件)
	var total int64
	if err := base.Session(&gorm.Session{}).Distinct("articles.id").Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("gorm: count articles for list: %w", err)
	}

	// 3. 排序后再分页
	q := base.Session(&gorm.Session{}).
		Order("articles.created_at DESC, articles.id DESC").
		Offset(filter.Offset)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var articles []domain.Article
	if err := q.Find(&articles).Error; err != nil {
		return nil, 0, fmt.Errorf("gorm: list articles: %w", err)
	}
	return articles, total, nil
}

// Create 实现创建文章及其标签关联
func (r *GormArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	err := r.db.WithContext(ctx).Create(article).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry // slug 冲突
		}
		return fmt.Errorf("gorm: create article (slug: %s): %w", article.Slug, err)
	}
	return nil
}

// Update 实现保存文章可变字段并替换标签关联
func (r *GormArticleRepository) Update(ctx context.Context, article *domain.Article) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 保存文章本体 (UpdatedAt 由 GORM 自动刷新)
		if err := tx.Omit("Tags").Save(article).Error; err != nil {
			return err
		}
		// 2. 整体替换标签关联
		return tx.Model(article).Association("Tags").Replace(article.Tags)
	})
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: update article (slug: %s): %w", article.Slug, err)
	}
	return nil
}

// Delete 实现删除文章并级联删除其收藏、评论和标签关联。
// 级联在事务中显式执行，不依赖底层数据库的外键配置；Tag 本身从不删除。
func (r *GormArticleRepository) Delete(ctx context.Context, slug string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var article domain.Article
		if err := tx.Where("slug = ?", slug).First(&article).Error; err != nil {
			return err
		}
		if err := tx.Where("article_slug = ?", slug).Delete(&domain.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_slug = ?", slug).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM article_tags WHERE article_id = ?", article.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Article{}, article.ID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrArticleNotFound
		}
		return fmt.Errorf("gorm: delete article (slug: %s): %w", slug, err)
	}
	return nil
}

// articleTagRow 是 TagNamesByArticleIDs 的扫描目标
type articleTagRow struct {
	ArticleID uint
	Name      string
}

// TagNamesByArticleIDs 实现为整批文章一次取回全部标签名。
// 逐行查询是这条路径明确要避免的反模式。
func (r *GormArticleRepository) TagNamesByArticleIDs(ctx context.Context, articleIDs []uint) (map[uint][]string, error) {
	result := make(map[uint][]string, len(articleIDs))
	if len(articleIDs) == 0 {
		return result, nil // 避免空的 IN 查询
	}
	var rows []articleTagRow
	err := r.db.WithContext(ctx).
		Table("article_tags").
		Select("article_tags.article_id AS article_id", "tags.name AS name").
		Joins("JOIN tags ON tags.id = article_tags.tag_id").
		Where("article_tags.article_id IN ?", articleIDs).
		Order("article_tags.article_id, tags.id"). // 按关联顺序，而非字母序
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: fetch tag names for article batch: %w", err)
	}
	for _, row := range rows {
		result[row.ArticleID] = append(result[row.ArticleID], row.Name)
	}
	return result, nil
}

// EnsureTags 实现标签的"不存在则创建"语义。
// 先用 ON CONFLICT DO NOTHING 批量补齐缺失的标签行，再整体读回，
// 避免逐个 FirstOrCreate。
func (r *GormArticleRepository) EnsureTags(ctx context.Context, names []string) ([]domain.Tag, error) {
	if len(names) == 0 {
		return nil, nil
	}
	// 去重并保持输入顺序
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}
	if len(unique) == 0 {
		return nil, nil
	}

	rows := make([]domain.Tag, len(unique))
	for i, name := range unique {
		rows[i] = domain.Tag{Name: name}
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: ensure tags: %w", err)
	}

	var tags []domain.Tag
	if err := r.db.WithContext(ctx).Where("name IN ?", unique).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("gorm: reload ensured tags: %w", err)
	}
	// 按输入顺序返回
	byName := make(map[string]domain.Tag, len(tags))
	for _, tag := range tags {
		byName[tag.Name] = tag
	}
	ordered := make([]domain.Tag, 0, len(unique))
	for _, name := range unique {
		if tag, ok := byName[name]; ok {
			ordered = append(ordered, tag)
		}
	}
	return ordered, nil
}

// AllTagNames 实现返回全部标签名
func (r *GormArticleRepository) AllTagNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&domain.Tag{}).Order("id").Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list tag names: %w", err)
	}
	return names, nil
}

// AllSlugs 实现返回全部文章 slug (供缓存对账任务使用)
func (r *GormArticleRepository) AllSlugs(ctx context.Context) ([]string, error) {
	var slugs []string
	err := r.db.WithContext(ctx).Model(&domain.Article{}).Pluck("slug", &slugs).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list article slugs: %w", err)
	}
	return slugs, nil
}
