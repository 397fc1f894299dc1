package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"backoffice/internal/middleware"
	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CompanyHandler struct {
	companyService service.CompanyService
	uploadDir      string
}

func NewCompanyHandler(companyService service.CompanyService, uploadDir string) *CompanyHandler {
	return &CompanyHandler{companyService: companyService, uploadDir: uploadDir}
}

func (h *CompanyHandler) RegisterRoutes(router *gin.RouterGroup) {
	company := router.Group("/api/company")
	{
		company.GET("", middleware.RequirePermission("menu-settings:read"), h.GetCompany)
		company.PUT("", middleware.RequirePermission("menu-settings:update"), h.UpdateCompany)
		company.POST("/logo", middleware.RequirePermission("menu-settings:update"), h.UploadLogo)
	}
}

// GetCompany returns the company settings record
// @Summary      Get company settings
// @Tags         company
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/company [get]
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	company, err := h.companyService.Get(c.Request.Context())
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

// UpdateCompany updates the company settings record
// @Summary      Update company settings
// @Tags         company
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CompanyRequest  true  "Company payload"
// @Success      200  {object}  response.Response
// @Router       /api/company [put]
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	var req service.CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	company, err := h.companyService.Update(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

// UploadLogo replaces the company logo, removing the previous file
// @Summary      Upload company logo
// @Tags         company
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        logo  formData  file  true  "Logo file"
// @Success      200   {object}  response.Response
// @Router       /api/company/logo [post]
func (h *CompanyHandler) UploadLogo(c *gin.Context) {
	file, err := c.FormFile("logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Logo file is required"))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".svg", ".webp":
	default:
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Unsupported image format"))
		return
	}

	current, err := h.companyService.Get(c.Request.Context())
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	path := filepath.Join(h.uploadDir, "company", fmt.Sprintf("logo-%s%s", uuid.New().String(), ext))
	if err := c.SaveUploadedFile(file, path); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to store logo"))
		return
	}

	company, err := h.companyService.SetLogo(c.Request.Context(), path, requestMeta(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	if current.Logo != "" && current.Logo != path {
		_ = os.Remove(current.Logo)
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}
