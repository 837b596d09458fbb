package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"conduit-backend/internal/domain"
	"conduit-backend/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 负责用户注册、登录和资料更新相关的业务逻辑。
type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte        // 存储密钥的字节形式
	jwtExpiry time.Duration // JWT 过期时间
}

// NewAuthService 创建 AuthService 实例。
// jwtSecretKey 应从安全配置中获取。
// jwtExpiryHours 定义 token 过期的小时数。
func NewAuthService(userRepo repository.UserRepository, jwtSecretKey string, jwtExpiryHours int) (*AuthService, error) {
	if userRepo == nil {
		panic("UserRepository cannot be nil for AuthService")
	}
	if jwtSecretKey == "" {
		return nil, fmt.Errorf("JWT secret key cannot be empty")
	}
	if jwtExpiryHours <= 0 {
		jwtExpiryHours = 24 // 默认 24 小时
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecretKey),
		jwtExpiry: time.Duration(jwtExpiryHours) * time.Hour,
	}, nil
}

// Register 处理用户注册。
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	logCtx := logrus.WithFields(logrus.Fields{"username": username, "email": email})

	// 1. 基本验证
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("username, email and password are required")
	}

	// 2. 哈希密码
	hashedPassword, err := hashPassword(password)
	if err != nil {
		logCtx.WithError(err).Error("Failed to hash password during registration")
		return nil, ErrInternalServer
	}

	// 3. 保存用户，唯一索引是用户名/邮箱冲突的最终仲裁
	user := &domain.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.Warn("Registration rejected: username or email already exists")
			return nil, ErrRegistrationFailed
		}
		logCtx.WithError(err).Error("Failed to save new user")
		return nil, ErrStoreUnavailable
	}

	// 不向调用方返回密码哈希
	user.Password = ""
	logCtx.WithField("user_id", user.ID).Info("User registered successfully")
	return user, nil
}

// Login 处理登录：按邮箱查找用户，校验密码，签发 token。
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	logCtx := logrus.WithField("email", email)

	// 1. 查找用户
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logCtx.Warn("Login failed: user not found")
			return "", nil, ErrAuthenticationFailed
		}
		logCtx.WithError(err).Error("Login failed: repository error")
		return "", nil, ErrStoreUnavailable
	}

	// 2. 校验密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		logCtx.Warn("Login failed: incorrect password")
		return "", nil, ErrAuthenticationFailed
	}

	// 3. 签发 token
	token, err := s.GenerateToken(user)
	if err != nil {
		logCtx.WithError(err).Error("Login failed: could not sign token")
		return "", nil, ErrInternalServer
	}

	user.Password = ""
	logCtx.WithField("user_id", user.ID).Info("User logged in successfully")
	return token, user, nil
}

// UserChanges 描述一次资料更新，nil 字段表示不修改。
type UserChanges struct {
	Username *string
	Email    *string
	Password *string
	Bio      *string
	Image    *string
}

// UpdateUser 更新当前用户的资料。
func (s *AuthService) UpdateUser(ctx context.Context, user *domain.User, changes UserChanges) (*domain.User, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username})

	if changes.Username != nil {
		user.Username = *changes.Username
	}
	if changes.Email != nil {
		user.Email = *changes.Email
	}
	if changes.Bio != nil {
		user.Bio = *changes.Bio
	}
	if changes.Image != nil {
		user.Image = *changes.Image
	}
	if changes.Password != nil {
		hashedPassword, err := hashPassword(*changes.Password)
		if err != nil {
			logCtx.WithError(err).Error("Failed to hash password during update")
			return nil, ErrInternalServer
		}
		user.Password = hashedPassword
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.Warn("User update rejected: username or email already taken")
			return nil, ErrRegistrationFailed
		}
		logCtx.WithError(err).Error("Failed to save user update")
		return nil, ErrStoreUnavailable
	}

	user.Password = ""
	logCtx.Info("User updated successfully")
	return user, nil
}

// GenerateToken 为用户签发 JWT。claims 同时携带 user_id 和 username，
// 供中间件还原查看者身份。
func (s *AuthService) GenerateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.jwtExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// hashPassword 使用 bcrypt 哈希密码
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(bytes), nil
}
