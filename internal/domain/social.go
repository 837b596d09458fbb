package domain

// Follow 表示一条有向的关注边 (follower -> followed)。
// (Follower, Followed) 对必须唯一，不允许自己关注自己。
type Follow struct {
	ID       uint   `gorm:"primaryKey"`
	Follower string `gorm:"type:varchar(50);uniqueIndex:idx_follow_pair;not null"` // 发起关注的用户名
	Followed string `gorm:"type:varchar(50);uniqueIndex:idx_follow_pair;not null"` // 被关注的用户名
}

// Favorite 表示一条有向的收藏边 (user -> article)。
// (Username, ArticleSlug) 对必须唯一：同一用户对同一文章至多一条记录。
type Favorite struct {
	ID          uint   `gorm:"primaryKey"`
	Username    string `gorm:"type:varchar(50);uniqueIndex:idx_favorite_pair;not null"`
	ArticleSlug string `gorm:"type:varchar(100);uniqueIndex:idx_favorite_pair;not null"`
}
