package repository

import (
	"context"

	"conduit-backend/internal/domain"
)

// ListFilter 描述一次文章列表查询的过滤与分页参数。
// 所有过滤条件以 AND 组合；Limit/Offset 在排序和过滤之后生效。
type ListFilter struct {
	Tag         string // 只返回关联了该标签的文章；标签不存在时结果为空列表而非错误
	Author      string // 只返回该作者的文章
	FavoritedBy string // 只返回被该用户收藏的文章
	FollowedBy  string // Feed 模式：只返回该用户所关注作者的文章
	Limit       int
	Offset      int
}

// ArticleRepository 定义了文章数据的存储、检索和批量关联查询操作。
type ArticleRepository interface {
	// FindBySlug 根据 slug 查找文章。
	// 如果文章不存在，返回 ErrArticleNotFound。
	FindBySlug(ctx context.Context, slug string) (*domain.Article, error)

	// SlugExists 检查 slug 是否已被占用。
	SlugExists(ctx context.Context, slug string) (bool, error)

	// List 执行一次组合过滤查询，返回按创建时间降序 (并以主键降序稳定排序)
	// 的一页文章，以及分页前满足全部过滤条件的真实总数。
	List(ctx context.Context, filter ListFilter) ([]domain.Article, int64, error)

	// Create 创建文章及其标签关联。slug 冲突返回 ErrDuplicateEntry。
	Create(ctx context.Context, article *domain.Article) error

	// Update 保存文章的可变字段，并替换标签关联。
	Update(ctx context.Context, article *domain.Article) error

	// Delete 根据 slug 删除文章。级联删除其收藏、评论和标签关联，
	// 但不删除 Tag 本身。文章不存在时返回 ErrArticleNotFound。
	Delete(ctx context.Context, slug string) error

	// TagNamesByArticleIDs 一次查询取回整批文章的标签名，
	// 返回 articleID -> 标签名列表 (按关联顺序)。没有标签的文章不出现在结果中。
	TagNamesByArticleIDs(ctx context.Context, articleIDs []uint) (map[uint][]string, error)

	// EnsureTags 确保一组标签名存在 (未见过的标签自动创建)，返回对应的 Tag 行。
	EnsureTags(ctx context.Context, names []string) ([]domain.Tag, error)

	// AllTagNames 返回全部标签名。
	AllTagNames(ctx context.Context) ([]string, error)

	// AllSlugs 返回全部文章的 slug，供缓存对账任务使用。
	AllSlugs(ctx context.Context) ([]string, error)
}
