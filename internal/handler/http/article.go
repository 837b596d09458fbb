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

// ArticleHandler 封装文章发布、检索、列表和收藏相关的 HTTP 处理逻辑
type ArticleHandler struct {
	articleService  *service.ArticleService
	favoriteService *service.FavoriteService
}

// NewArticleHandler 创建 ArticleHandler 实例
func NewArticleHandler(articleService *service.ArticleService, favoriteService *service.FavoriteService) *ArticleHandler {
	if articleService == nil {
		panic("ArticleService cannot be nil for ArticleHandler")
	}
	if favoriteService == nil {
		panic("FavoriteService cannot be nil for ArticleHandler")
	}
	return &ArticleHandler{articleService: articleService, favoriteService: favoriteService}
}

// ArticleResponse 包装单篇文章
type ArticleResponse struct {
	Article domain.ArticleView `json:"article"`
}

// ArticlesResponse 包装一页文章。
// ArticlesCount 是当前页的长度，Total 是分页前满足过滤条件的真实总数。
type ArticlesResponse struct {
	Articles      []domain.ArticleView `json:"articles"`
	ArticlesCount int                  `json:"articlesCount"`
	Total         int64                `json:"total"`
}

// TagsResponse 包装全部标签名
type TagsResponse struct {
	Tags []string `json:"tags"`
}

// List 处理全局文章列表查询，过滤条件来自查询参数并以 AND 组合
func (h *ArticleHandler) List(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	params := service.ListParams{
		Tag:         c.Query("tag"),
		Author:      c.Query("author"),
		FavoritedBy: c.Query("favorited"),
		Limit:       queryInt(c, "limit", 0),
		Offset:      queryInt(c, "offset", 0),
	}

	views, total, err := h.articleService.List(c.Request.Context(), params, viewer)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, ArticlesResponse{
		Articles:      views,
		ArticlesCount: len(views),
		Total:         total,
	})
}

// Feed 返回查看者所关注作者的文章
func (h *ArticleHandler) Feed(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	if viewer.IsAnonymous() {
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	views, total, err := h.articleService.Feed(c.Request.Context(), viewer, queryInt(c, "limit", 0), queryInt(c, "offset", 0))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, ArticlesResponse{
		Articles:      views,
		ArticlesCount: len(views),
		Total:         total,
	})
}

// Get 根据 slug 返回单篇文章
func (h *ArticleHandler) Get(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)

	view, err := h.articleService.Get(c.Request.Context(), c.Param("slug"), viewer)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, ArticleResponse{Article: view})
}

// CreateArticleRequest 定义发布文章请求的结构体
type CreateArticleRequest struct {
	Article struct {
		Title       string   `json:"title" binding:"required"`
		Description string   `json:"description"`
		Body        string   `json:"body" binding:"required"`
		TagList     []string `json:"tagList"`
	} `json:"article" binding:"required"`
}

// Create 处理文章发布请求
func (h *ArticleHandler) Create(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	if viewer.IsAnonymous() {
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.CreateArticle: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: title and body are required")
		return
	}

	view, err := h.articleService.Create(c.Request.Context(), viewer.User(), service.ArticleInput{
		Title:       req.Article.Title,
		Description: req.Article.Description,
		Body:        req.Article.Body,
		TagList:     req.Article.TagList,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, ArticleResponse{Article: view})
}

// UpdateArticleRequest 定义文章更新请求的结构体，省略的字段不修改
type UpdateArticleRequest struct {
	Article struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Body        *string `json:"body"`
	} `json:"article" binding:"required"`
}

// Update 处理文章更新请求，仅作者本人可以修改
func (h *ArticleHandler) Update(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	if viewer.IsAnonymous() {
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.UpdateArticle: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input format")
		return
	}

	view, err := h.articleService.Update(c.Request.Context(), viewer.User(), c.Param("slug"), service.ArticleChanges{
		Title:       req.Article.Title,
		Description: req.Article.Description,
		Body:        req.Article.Body,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, ArticleResponse{Article: view})
}

// Delete 处理文章删除请求，仅作者本人可以删除
func (h *ArticleHandler) Delete(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	if viewer.IsAnonymous() {
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.articleService.Delete(c.Request.Context(), viewer.User(), c.Param("slug")); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Favorite 把文章加入当前用户的收藏
func (h *ArticleHandler) Favorite(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	if viewer.IsAnonymous() {
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	view, err := h.favoriteService.Favorite(c.Request.Context(), viewer.User(), c.Param("slug"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, ArticleResponse{Article: view})
}

// Unfavorite 把文章移出当前用户的收藏
func (h *ArticleHandler) Unfavorite(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	if viewer.IsAnonymous() {
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	view, err := h.favoriteService.Unfavorite(c.Request.Context(), viewer.User(), c.Param("slug"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, ArticleResponse{Article: view})
}

// Tags 返回全部标签名
func (h *ArticleHandler) Tags(c *gin.Context) {
	tags, err := h.articleService.Tags(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, TagsResponse{Tags: tags})
}

// queryInt 解析整数查询参数，缺失或非法时返回默认值
func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
