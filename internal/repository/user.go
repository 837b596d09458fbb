package repository

import (
	"context"

	"conduit-backend/internal/domain"
)

// UserRepository 定义了用户数据的存储和检索操作。
type UserRepository interface {
	// FindByID 根据用户 ID 查找用户。
	// 如果用户不存在，应返回明确的错误，例如 ErrUserNotFound。
	FindByID(ctx context.Context, id uint) (*domain.User, error)

	// FindByUsername 根据用户名查找用户。
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindByEmail 根据邮箱查找用户。
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindByUsernames 批量查询一组用户名对应的用户，返回 username -> User 映射。
	// 未找到的用户名不出现在结果中，不视为错误。
	FindByUsernames(ctx context.Context, usernames []string) (map[string]*domain.User, error)

	// FindByIDs 批量查询一组用户 ID 对应的用户，返回 id -> User 映射。
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*domain.User, error)

	// Save 保存用户信息。
	// 如果用户已存在 (基于 ID)，则更新；否则创建新用户。
	// 唯一约束冲突返回 ErrDuplicateEntry。
	Save(ctx context.Context, user *domain.User) error
}
