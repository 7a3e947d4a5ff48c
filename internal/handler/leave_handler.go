package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type LeaveHandler struct {
	leaveService service.LeaveService
}

func NewLeaveHandler(leaveService service.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaveService: leaveService}
}

func (h *LeaveHandler) RegisterRoutes(router *gin.RouterGroup) {
	leave := router.Group("/api/leave")
	leave.Use(middleware.RequireRole(anyRole...))
	{
		leave.GET("/policies", h.ListPolicies)
		leave.GET("/balances", h.GetMyBalances)
		leave.POST("/apply", h.ApplyLeave)
		leave.GET("/my-applications", h.GetMyApplications)
		leave.GET("/reports/summary", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleHR), h.GetSummary)
		leave.GET("/pending-approvals", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleHR), h.GetPendingApprovals)
		leave.POST("/:id/approve", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleHR), h.DecideLeave)
		leave.POST("/initialize-balances/:year", middleware.RequireRole(model.RoleAdmin), h.InitializeBalances)
	}
}

// ListPolicies returns the active leave policies
// @Summary      List leave policies
// @Tags         leave
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.LeavePolicy}
// @Router       /api/leave/policies [get]
func (h *LeaveHandler) ListPolicies(c *gin.Context) {
	policies, err := h.leaveService.ListPolicies(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, policies))
}

// GetMyBalances returns the caller's leave balances for a year, creating rows
// lazily from the policies on first access
// @Summary      Get my leave balances
// @Tags         leave
// @Security     BearerAuth
// @Produce      json
// @Param        year  query     int  false  "Year (default current)"
// @Success      200   {object}  response.Response{data=[]service.LeaveBalanceResponse}
// @Router       /api/leave/balances [get]
func (h *LeaveHandler) GetMyBalances(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	balances, err := h.leaveService.GetBalances(c.Request.Context(), userID, yearParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, balances))
}

// ApplyLeave files a new leave application
// @Summary      Apply for leave
// @Tags         leave
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ApplyLeaveRequest  true  "Leave Application Payload"
// @Success      201      {object}  response.Response{data=service.LeaveApplicationResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/leave/apply [post]
func (h *LeaveHandler) ApplyLeave(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.ApplyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	application, err := h.leaveService.ApplyLeave(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, application))
}

// GetMyApplications lists the caller's leave applications
// @Summary      List my leave applications
// @Tags         leave
// @Security     BearerAuth
// @Produce      json
// @Param        year    query     int     false  "Filter by year"
// @Param        status  query     string  false  "Filter by status"
// @Success      200     {object}  response.Response{data=[]service.LeaveApplicationResponse}
// @Router       /api/leave/my-applications [get]
func (h *LeaveHandler) GetMyApplications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	year, _ := strconv.Atoi(c.Query("year"))
	applications, err := h.leaveService.GetMyApplications(c.Request.Context(), userID, year, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, applications))
}

// GetSummary returns the yearly leave report for HR and management
// @Summary      Get leave summary report
// @Tags         leave
// @Security     BearerAuth
// @Produce      json
// @Param        year        query     int     false  "Year (default current)"
// @Param        leave_type  query     string  false  "Filter by leave type"
// @Param        department  query     string  false  "Filter by department"
// @Success      200         {object}  response.Response{data=service.LeaveSummary}
// @Router       /api/leave/reports/summary [get]
func (h *LeaveHandler) GetSummary(c *gin.Context) {
	summary, err := h.leaveService.GetSummary(c.Request.Context(), service.LeaveSummaryFilter{
		Year:       yearParam(c),
		LeaveType:  c.Query("leave_type"),
		Department: c.Query("department"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// GetPendingApprovals lists pending applications assigned to the caller
// @Summary      List pending leave approvals
// @Tags         leave
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.LeaveApplicationResponse}
// @Router       /api/leave/pending-approvals [get]
func (h *LeaveHandler) GetPendingApprovals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	applications, err := h.leaveService.GetPendingApprovals(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, applications))
}

// DecideLeave approves or rejects a pending application
// @Summary      Decide leave application
// @Tags         leave
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Application ID"
// @Param        payload  body      service.DecideLeaveRequest  true  "Decision Payload"
// @Success      200      {object}  response.Response{data=service.LeaveApplicationResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/leave/{id}/approve [post]
func (h *LeaveHandler) DecideLeave(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.DecideLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	application, err := h.leaveService.DecideLeave(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, application))
}

// InitializeBalances creates balance rows for every user for a year
// @Summary      Initialize yearly leave balances
// @Tags         leave
// @Security     BearerAuth
// @Produce      json
// @Param        year  path      int  true  "Year"
// @Success      200   {object}  response.Response{data=object}
// @Failure      400   {object}  response.Response
// @Router       /api/leave/initialize-balances/{year} [post]
func (h *LeaveHandler) InitializeBalances(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 2000 || year > 2100 {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid year"))
		return
	}

	count, err := h.leaveService.InitializeBalances(c.Request.Context(), actorID, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Leave balances initialized for %d users for year %d", count, year),
	}))
}

func yearParam(c *gin.Context) int {
	year, _ := strconv.Atoi(c.Query("year"))
	if year == 0 {
		year = time.Now().Year()
	}
	return year
}
