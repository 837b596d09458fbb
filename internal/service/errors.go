package service

import "errors"

// 业务层错误分类。四类面向用户的终态错误 (未找到/冲突/未认证/无权限)
// 都不在内部重试；存储连接故障单独作为 ErrStoreUnavailable 向上传播，
// 绝不悄悄退化成空结果。
var (
	// --- NotFound ---
	ErrUserNotFound    = errors.New("user not found")
	ErrArticleNotFound = errors.New("article not found")
	ErrCommentNotFound = errors.New("comment not found")

	// --- Conflict ---
	ErrRegistrationFailed = errors.New("registration failed: username or email already exists")
	ErrDuplicateSlug      = errors.New("an article with this title already exists")
	ErrAlreadyFavorited   = errors.New("article is already in favorites")
	ErrNotFavorited       = errors.New("article is not in favorites")
	ErrAlreadyFollowing   = errors.New("already following this user")
	ErrNotFollowing       = errors.New("not following this user")
	ErrSelfFollow         = errors.New("you cannot follow yourself")

	// --- Unauthorized / Forbidden ---
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotAuthorized        = errors.New("authentication required")
	ErrForbidden            = errors.New("you are not the author of this resource")

	// --- 基础设施 ---
	ErrStoreUnavailable = errors.New("storage temporarily unavailable")
	ErrInternalServer   = errors.New("internal server error")
)
