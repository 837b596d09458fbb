package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"conduit-backend/internal/domain"
)

// MigrateDB handles all database migrations using the provided GORM DB instance.
// 返回错误以便调用者知道迁移是否成功。
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}

	err := db.AutoMigrate(
		&domain.User{},
		&domain.Article{},
		&domain.Tag{},
		&domain.Follow{},
		&domain.Favorite{},
		&domain.Comment{},
	)
	if err != nil {
		logrus.Errorf("Failed to auto-migrate tables: %v", err)
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}

	ensureCascadeConstraints(db)

	logrus.Info("Database migration completed successfully")
	return nil
}

// cascadeConstraint 描述一条需要 ON DELETE CASCADE 的外键
type cascadeConstraint struct {
	name   string
	table  string
	column string
	refSQL string
}

// ensureCascadeConstraints 给 MySQL 补上级联删除外键：
// 删除用户级联其文章/评论/收藏/关注边，删除文章级联其收藏/评论。
// 仓库层的删除路径也显式执行级联，因此这些约束缺失 (例如在
// 不支持该语法的数据库上) 只会降级为兜底缺失，不影响正确性。
func ensureCascadeConstraints(db *gorm.DB) {
	constraints := []cascadeConstraint{
		{"fk_articles_author", "articles", "author", "users (username)"},
		{"fk_comments_author", "comments", "author_id", "users (id)"},
		{"fk_comments_article", "comments", "article_slug", "articles (slug)"},
		{"fk_favorites_user", "favorites", "username", "users (username)"},
		{"fk_favorites_article", "favorites", "article_slug", "articles (slug)"},
		{"fk_follows_follower", "follows", "follower", "users (username)"},
		{"fk_follows_followed", "follows", "followed", "users (username)"},
	}
	for _, c := range constraints {
		var count int64
		db.Raw(
			"SELECT COUNT(*) FROM information_schema.table_constraints WHERE constraint_schema = DATABASE() AND table_name = ? AND constraint_name = ?",
			c.table, c.name,
		).Count(&count)
		if count > 0 {
			continue // 约束已存在
		}
		sql := fmt.Sprintf(
			"ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s ON DELETE CASCADE",
			c.table, c.name, c.column, c.refSQL,
		)
		if err := db.Exec(sql).Error; err != nil {
			// 可能不是严重错误 (例如测试数据库不支持)，记录后继续
			logrus.Warnf("Could not add constraint %s: %v", c.name, err)
		}
	}
}
