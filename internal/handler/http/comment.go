package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"conduit-backend/internal/domain"
	"conduit-backend/internal/middleware"
	"conduit-backend/internal/service"
)

// CommentHandler 封装评论相关的 HTTP 处理逻辑
type CommentHandler struct {
	commentService *service.CommentService
}

// NewCommentHandler 创建 CommentHandler 实例
func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	if commentService == nil {
		panic("CommentService cannot be nil for CommentHandler")
	}
	return &CommentHandler{commentService: commentService}
}

// CommentResponse 包装单条评论
type CommentResponse struct {
	Comment domain.CommentView `json:"comment"`
}

// CommentsResponse 包装文章的全部评论
type CommentsResponse struct {
	Comments []domain.CommentView `json:"comments"`
}

// List 返回文章的全部评论
func (h *CommentHandler) List(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)

	views, err := h.commentService.List(c.Request.Context(), c.Param("slug"), viewer)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, CommentsResponse{Comments: views})
}

// CreateCommentRequest 定义添加评论请求的结构体
type CreateCommentRequest struct {
	Comment struct {
		Body string `json:"body" binding:"required"`
	} `json:"comment" binding:"required"`
}

// Create 给文章添加一条评论
func (h *CommentHandler) Create(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	if viewer.IsAnonymous() {
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.CreateComment: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: comment body is required")
		return
	}

	view, err := h.commentService.Create(c.Request.Context(), viewer.User(), c.Param("slug"), req.Comment.Body)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, CommentResponse{Comment: view})
}

// Delete 删除一条评论，仅评论作者本人可以删除
func (h *CommentHandler) Delete(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	if viewer.IsAnonymous() {
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid comment ID")
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), viewer.User(), c.Param("slug"), uint(commentID)); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
