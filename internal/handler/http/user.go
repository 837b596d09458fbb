package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"conduit-backend/internal/domain"
	"conduit-backend/internal/middleware"
	"conduit-backend/internal/service"
)

// UserHandler 封装了用户注册、登录和资料管理相关的 HTTP 处理逻辑
type UserHandler struct {
	authService *service.AuthService
}

// NewUserHandler 创建 UserHandler 实例
func NewUserHandler(authService *service.AuthService) *UserHandler {
	if authService == nil {
		panic("AuthService cannot be nil for UserHandler")
	}
	return &UserHandler{authService: authService}
}

// userBody 是用户响应中的 user 对象
type userBody struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`
}

// UserResponse 包装单个用户
type UserResponse struct {
	User userBody `json:"user"`
}

// RegisterRequest 定义注册请求的结构体
type RegisterRequest struct {
	User struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	} `json:"user" binding:"required"`
}

// Register 处理用户注册请求
func (h *UserHandler) Register(c *gin.Context) {
	// 1. 绑定并验证输入 JSON
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Register: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: username, email and password are required")
		return
	}

	// 2. 调用 Service 层注册
	user, err := h.authService.Register(c.Request.Context(), req.User.Username, req.User.Email, req.User.Password)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	// 3. 注册即登录：签发 token
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		logrus.WithError(err).Error("Handler.Register: Failed to sign token")
		ErrorResponse(c, http.StatusInternalServerError, "Failed to process registration")
		return
	}

	SuccessResponse(c, http.StatusCreated, UserResponse{User: userView(user, token)})
}

// LoginRequest 定义登录请求的结构体
type LoginRequest struct {
	User struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	} `json:"user" binding:"required"`
}

// Login 处理用户登录请求
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Login: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: email and password are required")
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.User.Email, req.User.Password)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, UserResponse{User: userView(user, token)})
}

// Current 返回当前已认证用户
func (h *UserHandler) Current(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	if viewer.IsAnonymous() {
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	user := viewer.User()

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		logrus.WithError(err).Error("Handler.Current: Failed to sign token")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}
	SuccessResponse(c, http.StatusOK, UserResponse{User: userView(user, token)})
}

// UpdateUserRequest 定义资料更新请求的结构体，省略的字段不修改
type UpdateUserRequest struct {
	User struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
		Bio      *string `json:"bio"`
		Image    *string `json:"image"`
	} `json:"user" binding:"required"`
}

// Update 处理当前用户的资料更新请求
func (h *UserHandler) Update(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	if viewer.IsAnonymous() {
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Update: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input format")
		return
	}

	user, err := h.authService.UpdateUser(c.Request.Context(), viewer.User(), service.UserChanges{
		Username: req.User.Username,
		Email:    req.User.Email,
		Password: req.User.Password,
		Bio:      req.User.Bio,
		Image:    req.User.Image,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		logrus.WithError(err).Error("Handler.Update: Failed to sign token")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}
	SuccessResponse(c, http.StatusOK, UserResponse{User: userView(user, token)})
}

func userView(user *domain.User, token string) userBody {
	return userBody{
		Email:    user.Email,
		Token:    token,
		Username: user.Username,
		Bio:      user.Bio,
		Image:    user.Image,
	}
}
