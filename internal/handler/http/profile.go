package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"conduit-backend/internal/domain"
	"conduit-backend/internal/middleware"
	"conduit-backend/internal/service"
)

// ProfileHandler 封装用户资料和关注关系相关的 HTTP 处理逻辑
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler 创建 ProfileHandler 实例
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	if profileService == nil {
		panic("ProfileService cannot be nil for ProfileHandler")
	}
	return &ProfileHandler{profileService: profileService}
}

// ProfileResponse 包装单个用户资料
type ProfileResponse struct {
	Profile domain.Profile `json:"profile"`
}

// Get 返回指定用户的资料，Following 相对于当前查看者计算
func (h *ProfileHandler) Get(c *gin.Context) {
	username := c.Param("username")
	viewer := middleware.ViewerFrom(c)

	profile, err := h.profileService.Get(c.Request.Context(), username, viewer)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, ProfileResponse{Profile: profile})
}

// Follow 关注指定用户
func (h *ProfileHandler) Follow(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	if viewer.IsAnonymous() {
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	profile, err := h.profileService.Follow(c.Request.Context(), viewer.User(), c.Param("username"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, ProfileResponse{Profile: profile})
}

// Unfollow 取消关注指定用户
func (h *ProfileHandler) Unfollow(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	if viewer.IsAnonymous() {
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	profile, err := h.profileService.Unfollow(c.Request.Context(), viewer.User(), c.Param("username"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, ProfileResponse{Profile: profile})
}
