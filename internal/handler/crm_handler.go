package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CRMHandler struct {
	crmService service.CRMService
}

func NewCRMHandler(crmService service.CRMService) *CRMHandler {
	return &CRMHandler{crmService: crmService}
}

func (h *CRMHandler) RegisterRoutes(router *gin.RouterGroup) {
	clients := router.Group("/api/clients")
	clients.Use(middleware.RequireRole(anyRole...))
	{
		clients.POST("", h.CreateClient)
		clients.GET("", h.ListClients)
		clients.PUT("/:id", h.UpdateClient)
	}

	funnel := router.Group("/api/sales-funnel")
	funnel.Use(middleware.RequireRole(anyRole...))
	{
		funnel.POST("", h.CreateOpportunity)
		funnel.GET("", h.ListOpportunities)
		funnel.PUT("/:id", h.UpdateOpportunity)
		funnel.GET("/summary", h.GetFunnelSummary)
		funnel.POST("/meddpicc", h.CreateAssessment)
		funnel.GET("/meddpicc", h.ListMyAssessments)
	}
}

// CreateClient registers a new client company
// @Summary      Create client
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ClientRequest  true  "Client Payload"
// @Success      201      {object}  response.Response{data=model.Client}
// @Failure      400      {object}  response.Response
// @Router       /api/clients [post]
func (h *CRMHandler) CreateClient(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	client, err := h.crmService.CreateClient(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, client))
}

// ListClients lists active clients
// @Summary      List clients
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Company name search"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Items per page"
// @Success      200     {object}  response.Response{data=response.PagedData}
// @Router       /api/clients [get]
func (h *CRMHandler) ListClients(c *gin.Context) {
	params := pagination.Parse(c)
	clients, total, err := h.crmService.ListClients(c.Request.Context(), c.Query("search"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, clients, total, params))
}

// UpdateClient rewrites a client's contact details
// @Summary      Update client
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Client ID"
// @Param        payload  body      service.ClientRequest  true  "Client Payload"
// @Success      200      {object}  response.Response{data=model.Client}
// @Failure      404      {object}  response.Response
// @Router       /api/clients/{id} [put]
func (h *CRMHandler) UpdateClient(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	client, err := h.crmService.UpdateClient(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}

// CreateOpportunity files a new deal in the pipeline
// @Summary      Create sales opportunity
// @Tags         sales-funnel
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.OpportunityRequest  true  "Opportunity Payload"
// @Success      201      {object}  response.Response{data=service.OpportunityResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/sales-funnel [post]
func (h *CRMHandler) CreateOpportunity(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.OpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	opportunity, err := h.crmService.CreateOpportunity(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, opportunity))
}

// ListOpportunities lists pipeline deals; staff see their own, managers all
// @Summary      List sales opportunities
// @Tags         sales-funnel
// @Security     BearerAuth
// @Produce      json
// @Param        stage  query     string  false  "Filter by stage"
// @Success      200    {object}  response.Response{data=[]service.OpportunityResponse}
// @Router       /api/sales-funnel [get]
func (h *CRMHandler) ListOpportunities(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	opportunities, err := h.crmService.ListOpportunities(c.Request.Context(), userID, currentUserRole(c),
		service.OpportunityListFilter{Stage: c.Query("stage")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, opportunities))
}

// UpdateOpportunity rewrites a deal's stage, probability and details
// @Summary      Update sales opportunity
// @Tags         sales-funnel
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Opportunity ID"
// @Param        payload  body      service.OpportunityRequest  true  "Opportunity Payload"
// @Success      200      {object}  response.Response{data=service.OpportunityResponse}
// @Failure      403      {object}  response.Response
// @Router       /api/sales-funnel/{id} [put]
func (h *CRMHandler) UpdateOpportunity(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.OpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	opportunity, err := h.crmService.UpdateOpportunity(c.Request.Context(), userID, currentUserRole(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, opportunity))
}

// GetFunnelSummary totals the visible pipeline per stage
// @Summary      Funnel summary
// @Tags         sales-funnel
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.FunnelSummary}
// @Router       /api/sales-funnel/summary [get]
func (h *CRMHandler) GetFunnelSummary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	summary, err := h.crmService.GetFunnelSummary(c.Request.Context(), userID, currentUserRole(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// CreateAssessment files a MEDDPICC qualification worksheet
// @Summary      Create MEDDPICC assessment
// @Tags         sales-funnel
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.AssessmentRequest  true  "Assessment Payload"
// @Success      201      {object}  response.Response{data=model.MEDDPICCAssessment}
// @Router       /api/sales-funnel/meddpicc [post]
func (h *CRMHandler) CreateAssessment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.AssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	assessment, err := h.crmService.CreateAssessment(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, assessment))
}

// ListMyAssessments lists the caller's qualification worksheets
// @Summary      List my MEDDPICC assessments
// @Tags         sales-funnel
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.MEDDPICCAssessment}
// @Router       /api/sales-funnel/meddpicc [get]
func (h *CRMHandler) ListMyAssessments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	assessments, err := h.crmService.ListMyAssessments(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, assessments))
}
