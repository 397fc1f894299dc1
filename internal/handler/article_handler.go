package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"backoffice/internal/middleware"
	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ArticleHandler struct {
	articleService service.ArticleService
	uploadDir      string
}

func NewArticleHandler(articleService service.ArticleService, uploadDir string) *ArticleHandler {
	return &ArticleHandler{articleService: articleService, uploadDir: uploadDir}
}

func (h *ArticleHandler) RegisterRoutes(router *gin.RouterGroup) {
	articles := router.Group("/api/articles")
	{
		articles.GET("", middleware.RequirePermission("menu-sales:read"), h.ListArticles)
		articles.GET("/:id", middleware.RequirePermission("menu-sales:read"), h.GetArticle)
		articles.POST("", middleware.RequirePermission("menu-sales:create"), h.CreateArticle)
		articles.PUT("/:id", middleware.RequirePermission("menu-sales:update"), h.UpdateArticle)
		articles.POST("/:id/photo", middleware.RequirePermission("menu-sales:update"), h.UploadPhoto)
		articles.DELETE("/:id", middleware.RequirePermission("menu-sales:delete"), h.DeleteArticle)
	}
}

// ListArticles returns the article catalog
// @Summary      List articles
// @Tags         articles
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/articles [get]
func (h *ArticleHandler) ListArticles(c *gin.Context) {
	articles, err := h.articleService.List(c.Request.Context())
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, articles))
}

// GetArticle returns one article
// @Summary      Get article
// @Tags         articles
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Article ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/articles/{id} [get]
func (h *ArticleHandler) GetArticle(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid article ID"))
		return
	}
	article, err := h.articleService.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, article))
}

// CreateArticle adds an article to the catalog
// @Summary      Create article
// @Tags         articles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.ArticleRequest  true  "Article payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/articles [post]
func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	var req service.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	article, err := h.articleService.Create(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, article))
}

// UpdateArticle updates an existing article
// @Summary      Update article
// @Tags         articles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                  true  "Article ID"
// @Param        payload  body  service.ArticleRequest  true  "Article payload"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/articles/{id} [put]
func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid article ID"))
		return
	}

	var req service.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	article, err := h.articleService.Update(c.Request.Context(), id, req, requestMeta(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, article))
}

// UploadPhoto stores an article photo and records its path
// @Summary      Upload article photo
// @Tags         articles
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        id     path      string  true  "Article ID"
// @Param        photo  formData  file    true  "Photo file"
// @Success      200    {object}  response.Response
// @Router       /api/articles/{id}/photo [post]
func (h *ArticleHandler) UploadPhoto(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid article ID"))
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Photo file is required"))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Unsupported image format"))
		return
	}

	path := filepath.Join(h.uploadDir, "articles", fmt.Sprintf("%s%s", uuid.New().String(), ext))
	if err := c.SaveUploadedFile(file, path); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to store photo"))
		return
	}

	article, err := h.articleService.SetPhoto(c.Request.Context(), id, path)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, article))
}

// DeleteArticle removes an article from the catalog
// @Summary      Delete article
// @Tags         articles
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Article ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/articles/{id} [delete]
func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid article ID"))
		return
	}
	if err := h.articleService.Delete(c.Request.Context(), id, requestMeta(c)); err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
