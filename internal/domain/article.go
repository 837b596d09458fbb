package domain

import "time"

// Article 表示一篇已发布的文章。
// Slug 由标题在创建时确定性派生，是文章对外的稳定标识符。
type Article struct {
	ID          uint      `gorm:"primaryKey"`                                      // 文章唯一标识符 (主键)
	Slug        string    `gorm:"type:varchar(100);uniqueIndex:idx_slug;not null"` // URL 安全的唯一标识，从标题派生
	Title       string    `gorm:"type:varchar(100);not null"`
	Description string    `gorm:"type:text"`
	Body        string    `gorm:"type:text"`
	Author      string    `gorm:"type:varchar(50);index;not null"` // 作者用户名 (外键关联到 users.username)
	CreatedAt   time.Time `gorm:"autoCreateTime"`                  // 文章创建时间 (GORM 自动填充)
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`                  // 每次修改时刷新 (GORM 自动填充)

	// 文章与标签是多对多关系，通过 article_tags 关联表维护。
	// 删除文章只解除关联，不删除 Tag 本身。
	Tags []Tag `gorm:"many2many:article_tags"`
}

// Tag 表示一个标签。标签全局共享，只在首次使用时创建，从不隐式删除。
type Tag struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(50);uniqueIndex:idx_tag_name;not null"`
}

// ArticleView 是返回给调用方的富化文章视图：
// 在原始 Article 行之上附加了标签列表、作者资料以及
// 相对于查看者的收藏状态和聚合收藏数。
type ArticleView struct {
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Body           string    `json:"body"`
	TagList        []string  `json:"tagList"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Favorited      bool      `json:"favorited"`
	FavoritesCount int64     `json:"favoritesCount"`
	Author         Profile   `json:"author"`
}
