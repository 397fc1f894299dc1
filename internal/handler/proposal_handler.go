package handler

import (
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/service"
	"backoffice/pkg/pagination"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProposalHandler struct {
	proposalService service.ProposalService
}

func NewProposalHandler(proposalService service.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposalService: proposalService}
}

func (h *ProposalHandler) RegisterRoutes(router *gin.RouterGroup) {
	proposals := router.Group("/api/proposals")
	{
		proposals.GET("", middleware.RequirePermission("menu-sales:read"), h.ListProposals)
		proposals.GET("/:id", middleware.RequirePermission("menu-sales:read"), h.GetProposal)
		proposals.POST("", middleware.RequirePermission("menu-sales:create"), h.CreateProposal)
		proposals.PUT("/:id", middleware.RequirePermission("menu-sales:update"), h.UpdateProposal)
		proposals.POST("/:id/convert", middleware.RequirePermission("menu-sales:update"), h.ConvertProposal)
	}
}

// ListProposals returns paginated proposals, newest first
// @Summary      List proposals
// @Tags         proposals
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default: 1)"
// @Param        limit  query     int  false  "Items per page (default: 20)"
// @Success      200    {object}  response.Response
// @Router       /api/proposals [get]
func (h *ProposalHandler) ListProposals(c *gin.Context) {
	params := pagination.Parse(c)
	proposals, total, err := h.proposalService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, proposals, params.Page, params.Limit, total))
}

// GetProposal returns one proposal with its lines
// @Summary      Get proposal
// @Tags         proposals
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/proposals/{id} [get]
func (h *ProposalHandler) GetProposal(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid proposal ID"))
		return
	}
	proposal, err := h.proposalService.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, proposal))
}

// CreateProposal creates a draft proposal with the next number
// @Summary      Create proposal
// @Tags         proposals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.ProposalRequest  true  "Proposal payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/proposals [post]
func (h *ProposalHandler) CreateProposal(c *gin.Context) {
	var req service.ProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	proposal, err := h.proposalService.Create(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, proposal))
}

// UpdateProposal replaces a draft proposal's data and lines
// @Summary      Update proposal
// @Tags         proposals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                   true  "Proposal ID"
// @Param        payload  body  service.ProposalRequest  true  "Proposal payload"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/proposals/{id} [put]
func (h *ProposalHandler) UpdateProposal(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid proposal ID"))
		return
	}

	var req service.ProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	proposal, err := h.proposalService.Update(c.Request.Context(), id, req, requestMeta(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, proposal))
}

// ConvertProposal closes a draft proposal
// @Summary      Convert proposal
// @Tags         proposals
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/proposals/{id}/convert [post]
func (h *ProposalHandler) ConvertProposal(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid proposal ID"))
		return
	}
	proposal, err := h.proposalService.Convert(c.Request.Context(), id, requestMeta(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, proposal))
}
