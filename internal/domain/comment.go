package domain

import "time"

// Comment 表示文章下的一条评论。
// 生命周期独立于 Favorite/Follow，随所属文章级联删除。
type Comment struct {
	ID          uint      `gorm:"primaryKey"`
	Body        string    `gorm:"type:text;not null"`
	AuthorID    uint      `gorm:"index;not null"`                  // 评论作者 (外键关联到 users.id)
	ArticleSlug string    `gorm:"type:varchar(100);index;not null"` // 所属文章 (外键关联到 articles.slug)
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// CommentView 是返回给调用方的富化评论视图。
type CommentView struct {
	ID        uint      `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Author    Profile   `json:"author"`
}
