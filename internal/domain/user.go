// Package domain 定义了应用程序中使用的数据结构 (数据库模型和视图)。
package domain

import "time"

// User 表示应用程序中的用户。
type User struct {
	ID        uint      `gorm:"primaryKey"`                                         // 用户唯一标识符 (主键)
	Username  string    `gorm:"type:varchar(50);uniqueIndex:idx_username;not null"` // 用户名，全局唯一
	Email     string    `gorm:"type:varchar(50);uniqueIndex:idx_email;not null"`    // 邮箱，全局唯一
	Password  string    `gorm:"type:text;not null"`                                 // 存储的是哈希后的密码，不能为空
	Bio       string    `gorm:"type:text"`                                          // 个人简介
	Image     string    `gorm:"type:varchar(250)"`                                  // 头像 URL
	CreatedAt time.Time `gorm:"autoCreateTime"`                                     // 用户记录创建时间 (GORM 自动填充)
	UpdatedAt time.Time `gorm:"autoUpdateTime"`                                     // 用户记录最后更新时间 (GORM 自动填充)
}

// Profile 是对外暴露的用户视图，Following 相对于查看者计算。
// 匿名查看者的 Following 恒为 false，绝不为 null。
type Profile struct {
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	Image     string `json:"image"`
	Following bool   `json:"following"`
}

// ProfileOf 从 User 构建 Profile 视图。
func ProfileOf(user *User, following bool) Profile {
	return Profile{
		Username:  user.Username,
		Bio:       user.Bio,
		Image:     user.Image,
		Following: following,
	}
}
