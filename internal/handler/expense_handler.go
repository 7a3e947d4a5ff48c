package handler

import (
	"net/http"
	"time"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

var anyRole = []string{model.RoleAdmin, model.RoleManager, model.RoleHR, model.RoleStaff}

type ExpenseHandler struct {
	expenseService  service.ExpenseService
	workflowService service.WorkflowService
}

func NewExpenseHandler(expenseService service.ExpenseService, workflowService service.WorkflowService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, workflowService: workflowService}
}

func (h *ExpenseHandler) RegisterRoutes(router *gin.RouterGroup) {
	expenses := router.Group("/api/expenses")
	expenses.Use(middleware.RequireRole(anyRole...))
	{
		expenses.GET("/categories", h.ListCategories)
		expenses.POST("/categories", middleware.RequireRole(model.RoleAdmin), h.CreateCategory)
		expenses.GET("/workflows", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.ListWorkflows)
		expenses.POST("/workflows", middleware.RequireRole(model.RoleAdmin), h.CreateWorkflow)
		expenses.POST("/create", h.CreateExpense)
		expenses.POST("/:id/submit", h.SubmitExpense)
		expenses.GET("/my-expenses", h.GetMyExpenses)
		expenses.GET("/pending-approvals", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.GetPendingApprovals)
		expenses.POST("/process-approval", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.ProcessApproval)
	}
}

// ListCategories returns the active expense categories
// @Summary      List expense categories
// @Tags         expenses
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.ExpenseCategory}
// @Router       /api/expenses/categories [get]
func (h *ExpenseHandler) ListCategories(c *gin.Context) {
	categories, err := h.expenseService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, categories))
}

// CreateCategory adds a new expense category
// @Summary      Create expense category
// @Tags         expenses
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateCategoryRequest  true  "Category Payload"
// @Success      201      {object}  response.Response{data=model.ExpenseCategory}
// @Failure      400      {object}  response.Response
// @Router       /api/expenses/categories [post]
func (h *ExpenseHandler) CreateCategory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	category, err := h.expenseService.CreateCategory(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, category))
}

// ListWorkflows returns the active approval workflows in creation order
// @Summary      List approval workflows
// @Tags         expenses
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.ApprovalWorkflow}
// @Router       /api/expenses/workflows [get]
func (h *ExpenseHandler) ListWorkflows(c *gin.Context) {
	workflows, err := h.workflowService.ListWorkflows(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, workflows))
}

// CreateWorkflow adds a new approval workflow
// @Summary      Create approval workflow
// @Tags         expenses
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateWorkflowRequest  true  "Workflow Payload"
// @Success      201      {object}  response.Response{data=model.ApprovalWorkflow}
// @Failure      400      {object}  response.Response
// @Router       /api/expenses/workflows [post]
func (h *ExpenseHandler) CreateWorkflow(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	workflow, err := h.workflowService.CreateWorkflow(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, workflow))
}

// CreateExpense handles draft expense creation with auto-categorization and
// workflow assignment
// @Summary      Create expense
// @Tags         expenses
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateExpenseRequest  true  "Expense Payload"
// @Success      201      {object}  response.Response{data=service.CreateExpenseResult}
// @Failure      400      {object}  response.Response
// @Router       /api/expenses/create [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.expenseService.CreateExpense(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// SubmitExpense moves a draft into the approval pipeline
// @Summary      Submit expense for approval
// @Tags         expenses
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Expense ID"
// @Success      200  {object}  response.Response{data=service.SubmitExpenseResult}
// @Failure      409  {object}  response.Response
// @Router       /api/expenses/{id}/submit [post]
func (h *ExpenseHandler) SubmitExpense(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.expenseService.SubmitExpense(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// GetMyExpenses lists the caller's expenses with optional filters
// @Summary      List my expenses
// @Tags         expenses
// @Security     BearerAuth
// @Produce      json
// @Param        status     query     string  false  "Filter by status"
// @Param        date_from  query     string  false  "Filter from date (YYYY-MM-DD)"
// @Param        date_to    query     string  false  "Filter to date (YYYY-MM-DD)"
// @Success      200        {object}  response.Response{data=[]service.ExpenseResponse}
// @Router       /api/expenses/my-expenses [get]
func (h *ExpenseHandler) GetMyExpenses(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := service.MyExpensesFilter{Status: c.Query("status")}
	if raw := c.Query("date_from"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			filter.DateFrom = &parsed
		}
	}
	if raw := c.Query("date_to"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			filter.DateTo = &parsed
		}
	}

	expenses, err := h.expenseService.GetMyExpenses(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, expenses))
}

// GetPendingApprovals lists approval rows awaiting the caller's decision
// @Summary      List pending expense approvals
// @Tags         expenses
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.PendingApprovalResponse}
// @Router       /api/expenses/pending-approvals [get]
func (h *ExpenseHandler) GetPendingApprovals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	approvals, err := h.expenseService.GetPendingApprovals(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, approvals))
}

// ProcessApproval records an approve/reject decision on a submitted expense
// @Summary      Process expense approval
// @Tags         expenses
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ProcessApprovalRequest  true  "Decision Payload"
// @Success      200      {object}  response.Response{data=service.ProcessApprovalResult}
// @Failure      409      {object}  response.Response
// @Router       /api/expenses/process-approval [post]
func (h *ExpenseHandler) ProcessApproval(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.ProcessApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.expenseService.ProcessApproval(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
