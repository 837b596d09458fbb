package gormpersistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"conduit-backend/internal/domain"
	gormpersistence "conduit-backend/internal/infra/persistence/gorm"
	"conduit-backend/internal/repository"
)

// newTestDB 创建一个内存 SQLite 数据库并执行迁移。
// 限制为单连接，避免连接池拿到不同的内存数据库实例。
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "打开内存数据库不应失败")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&domain.User{},
		&domain.Tag{},
		&domain.Article{},
		&domain.Follow{},
		&domain.Favorite{},
		&domain.Comment{},
	)
	require.NoError(t, err, "迁移不应失败")
	return db
}

// seedSocialGraph 构造一套固定的测试数据:
//   - alice 发表三篇文章 (两篇带 go 标签)，bob 发表一篇
//   - carol 关注 alice，收藏了 alice 的两篇文章
func seedSocialGraph(t *testing.T, db *gorm.DB) {
	t.Helper()
	ctx := context.Background()
	articleRepo := gormpersistence.NewGormArticleRepository(db)

	for _, username := range []string{"alice", "bob", "carol"} {
		require.NoError(t, db.Create(&domain.User{
			Username: username,
			Email:    username + "@example.com",
			Password: "hashed",
		}).Error)
	}

	goTag, err := articleRepo.EnsureTags(ctx, []string{"go"})
	require.NoError(t, err)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	articles := []domain.Article{
		{Slug: "alice-first", Title: "Alice First", Author: "alice", CreatedAt: base, Tags: goTag},
		{Slug: "alice-second", Title: "Alice Second", Author: "alice", CreatedAt: base.Add(time.Hour), Tags: goTag},
		{Slug: "alice-third", Title: "Alice Third", Author: "alice", CreatedAt: base.Add(2 * time.Hour)},
		{Slug: "bob-first", Title: "Bob First", Author: "bob", CreatedAt: base.Add(3 * time.Hour)},
	}
	for i := range articles {
		require.NoError(t, articleRepo.Create(ctx, &articles[i]))
	}

	require.NoError(t, db.Create(&domain.Follow{Follower: "carol", Followed: "alice"}).Error)
	for _, slug := range []string{"alice-first", "alice-second"} {
		require.NoError(t, db.Create(&domain.Favorite{Username: "carol", ArticleSlug: slug}).Error)
	}
}

// --- 测试 List 的过滤组合 ---

func TestGormArticleRepository_List_NoFilter(t *testing.T) {
	db := newTestDB(t)
	seedSocialGraph(t, db)
	repo := gormpersistence.NewGormArticleRepository(db)

	articles, total, err := repo.List(context.Background(), repository.ListFilter{Limit: 20})

	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, articles, 4)
	// 创建时间降序
	assert.Equal(t, "bob-first", articles[0].Slug)
	assert.Equal(t, "alice-third", articles[1].Slug)
	assert.Equal(t, "alice-second", articles[2].Slug)
	assert.Equal(t, "alice-first", articles[3].Slug)
}

func TestGormArticleRepository_List_FilterByTag(t *testing.T) {
	db := newTestDB(t)
	seedSocialGraph(t, db)
	repo := gormpersistence.NewGormArticleRepository(db)

	articles, total, err := repo.List(context.Background(), repository.ListFilter{Tag: "go", Limit: 20})

	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, articles, 2)
	assert.Equal(t, "alice-second", articles[0].Slug)
	assert.Equal(t, "alice-first", articles[1].Slug)
}

func TestGormArticleRepository_List_UnknownTagYieldsEmptyPage(t *testing.T) {
	db := newTestDB(t)
	seedSocialGraph(t, db)
	repo := gormpersistence.NewGormArticleRepository(db)

	// 标签不存在是空结果，不是错误
	articles, total, err := repo.List(context.Background(), repository.ListFilter{Tag: "nonexistent", Limit: 20})

	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, articles)
}

func TestGormArticleRepository_List_FilterByAuthorAndTag(t *testing.T) {
	db := newTestDB(t)
	seedSocialGraph(t, db)
	repo := gormpersistence.NewGormArticleRepository(db)

	// 过滤条件以 AND 组合
	articles, total, err := repo.List(context.Background(), repository.ListFilter{Author: "alice", Tag: "go", Limit: 20})

	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, articles, 2)
	for _, a := range articles {
		assert.Equal(t, "alice", a.Author)
	}
}

func TestGormArticleRepository_List_FilterByFavoritedBy(t *testing.T) {
	db := newTestDB(t)
	seedSocialGraph(t, db)
	repo := gormpersistence.NewGormArticleRepository(db)

	articles, total, err := repo.List(context.Background(), repository.ListFilter{FavoritedBy: "carol", Limit: 20})

	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, articles, 2)
	assert.Equal(t, "alice-second", articles[0].Slug)
	assert.Equal(t, "alice-first", articles[1].Slug)
}

func TestGormArticleRepository_List_FeedFilter(t *testing.T) {
	db := newTestDB(t)
	seedSocialGraph(t, db)
	repo := gormpersistence.NewGormArticleRepository(db)

	// carol 只关注 alice，Feed 不应包含 bob 的文章
	articles, total, err := repo.List(context.Background(), repository.ListFilter{FollowedBy: "carol", Limit: 20})

	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, articles, 3)
	for _, a := range articles {
		assert.Equal(t, "alice", a.Author)
	}
}

func TestGormArticleRepository_List_PaginationReportsTrueTotal(t *testing.T) {
	db := newTestDB(t)
	seedSocialGraph(t, db)
	repo := gormpersistence.NewGormArticleRepository(db)

	articles, total, err := repo.List(context.Background(), repository.ListFilter{Limit: 2, Offset: 1})

	require.NoError(t, err)
	assert.Equal(t, int64(4), total, "总数是分页前满足过滤条件的真实总数")
	require.Len(t, articles, 2)
	assert.Equal(t, "alice-third", articles[0].Slug)
	assert.Equal(t, "alice-second", articles[1].Slug)
}

func TestGormArticleRepository_List_StableOrderForEqualTimestamps(t *testing.T) {
	db := newTestDB(t)
	repo := gormpersistence.NewGormArticleRepository(db)
	ctx := context.Background()

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, slug := range []string{"same-a", "same-b", "same-c"} {
		require.NoError(t, repo.Create(ctx, &domain.Article{
			Slug: slug, Title: slug, Author: "alice", CreatedAt: ts,
		}))
	}

	articles, _, err := repo.List(ctx, repository.ListFilter{Limit: 20})

	// 创建时间相同的文章按主键降序，排序稳定
	require.NoError(t, err)
	require.Len(t, articles, 3)
	assert.Equal(t, "same-c", articles[0].Slug)
	assert.Equal(t, "same-b", articles[1].Slug)
	assert.Equal(t, "same-a", articles[2].Slug)
}

// --- 测试 Create / Update / Delete ---

func TestGormArticleRepository_Create_DuplicateSlug(t *testing.T) {
	db := newTestDB(t)
	repo := gormpersistence.NewGormArticleRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Article{Slug: "taken", Title: "Taken", Author: "alice"}))
	err := repo.Create(ctx, &domain.Article{Slug: "taken", Title: "Taken Again", Author: "bob"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrDuplicateEntry))
}

func TestGormArticleRepository_Update_ReplacesTags(t *testing.T) {
	db := newTestDB(t)
	repo := gormpersistence.NewGormArticleRepository(db)
	ctx := context.Background()

	tags, err := repo.EnsureTags(ctx, []string{"go", "redis"})
	require.NoError(t, err)
	article := &domain.Article{Slug: "a-post", Title: "A Post", Author: "alice", Tags: tags}
	require.NoError(t, repo.Create(ctx, article))

	newTags, err := repo.EnsureTags(ctx, []string{"gorm"})
	require.NoError(t, err)
	article.Tags = newTags
	require.NoError(t, repo.Update(ctx, article))

	byID, err := repo.TagNamesByArticleIDs(ctx, []uint{article.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"gorm"}, byID[article.ID], "标签关联应整体替换")
}

func TestGormArticleRepository_Delete_CascadesButKeepsTags(t *testing.T) {
	db := newTestDB(t)
	seedSocialGraph(t, db)
	repo := gormpersistence.NewGormArticleRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&domain.Comment{Body: "hi", AuthorID: 3, ArticleSlug: "alice-first"}).Error)

	require.NoError(t, repo.Delete(ctx, "alice-first"))

	// 文章本体、收藏、评论和标签关联都被删除
	_, err := repo.FindBySlug(ctx, "alice-first")
	assert.True(t, errors.Is(err, repository.ErrArticleNotFound))

	var favCount int64
	require.NoError(t, db.Model(&domain.Favorite{}).Where("article_slug = ?", "alice-first").Count(&favCount).Error)
	assert.Equal(t, int64(0), favCount)

	var commentCount int64
	require.NoError(t, db.Model(&domain.Comment{}).Where("article_slug = ?", "alice-first").Count(&commentCount).Error)
	assert.Equal(t, int64(0), commentCount)

	// Tag 本身从不删除
	names, err := repo.AllTagNames(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "go")
}

func TestGormArticleRepository_Delete_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := gormpersistence.NewGormArticleRepository(db)

	err := repo.Delete(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrArticleNotFound))
}

// --- 测试标签操作 ---

func TestGormArticleRepository_EnsureTags_CreatesMissingOnly(t *testing.T) {
	db := newTestDB(t)
	repo := gormpersistence.NewGormArticleRepository(db)
	ctx := context.Background()

	first, err := repo.EnsureTags(ctx, []string{"go"})
	require.NoError(t, err)
	require.Len(t, first, 1)

	// 已有标签复用，未见过的标签自动创建；重复和空串被丢弃
	tags, err := repo.EnsureTags(ctx, []string{"go", "brand-new", "go", ""})
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "go", tags[0].Name)
	assert.Equal(t, first[0].ID, tags[0].ID, "已有标签应复用同一行")
	assert.Equal(t, "brand-new", tags[1].Name)

	names, err := repo.AllTagNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "brand-new"}, names)
}

func TestGormArticleRepository_TagNamesByArticleIDs_Batch(t *testing.T) {
	db := newTestDB(t)
	seedSocialGraph(t, db)
	repo := gormpersistence.NewGormArticleRepository(db)
	ctx := context.Background()

	var withTag, withoutTag domain.Article
	require.NoError(t, db.Where("slug = ?", "alice-first").First(&withTag).Error)
	require.NoError(t, db.Where("slug = ?", "alice-third").First(&withoutTag).Error)

	byID, err := repo.TagNamesByArticleIDs(ctx, []uint{withTag.ID, withoutTag.ID})

	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, byID[withTag.ID])
	// 没有标签的文章不出现在结果中
	_, ok := byID[withoutTag.ID]
	assert.False(t, ok)
}

func TestGormArticleRepository_TagNamesByArticleIDs_EmptyBatch(t *testing.T) {
	db := newTestDB(t)
	repo := gormpersistence.NewGormArticleRepository(db)

	byID, err := repo.TagNamesByArticleIDs(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, byID)
}
